package dialogue

// RetryPolicy bounds how many plain re-asks a slot gets before the flow
// pauses instead of looping the same question.
type RetryPolicy struct {
	// Ceiling is the number of failed re-asks tolerated before pausing.
	// With the default of 2, the third consecutive failure pauses the flow.
	Ceiling int
}

// DefaultRetryCeiling is how many consecutive misses we tolerate before pausing.
const DefaultRetryCeiling = 2

// Exhausted reports whether a slot's retry count has passed the ceiling.
func (p RetryPolicy) Exhausted(count int) bool {
	ceiling := p.Ceiling
	if ceiling <= 0 {
		ceiling = DefaultRetryCeiling
	}
	return count > ceiling
}

// PauseReply invites the user to resume later with an explicit command.
const PauseReply = "I don't seem to be getting that right, so let's pause here. " +
	"Say \"book\" whenever you'd like to pick the booking back up."
