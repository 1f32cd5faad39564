package dialogue

import "strings"

// smalltalkRule maps trigger keywords to a set of interchangeable replies.
// Rules are checked in order; the first keyword hit wins.
type smalltalkRule struct {
	keywords []string
	replies  []string
}

var smalltalkRules = []smalltalkRule{
	{
		keywords: []string{"hello", "hiya", "hey", "hi"},
		replies: []string{
			"Hey! 👋 How can I help today?",
			"Hiya! Need a hand with a booking?",
			"Hello! What can I do for you?",
		},
	},
	{
		keywords: []string{"thank", "cheers", "ta"},
		replies: []string{
			"You're welcome!",
			"Any time!",
			"Happy to help 👍",
		},
	},
	{
		keywords: []string{"bye", "goodbye", "see you", "later"},
		replies: []string{
			"See you soon! 👋",
			"Bye for now — come back any time.",
		},
	},
	{
		keywords: []string{"joke", "funny", "laugh"},
		replies: []string{
			"Why did the hairdresser win the race? She knew a shortcut. ✂️",
			"I'd tell you a massage joke, but it rubs some people the wrong way.",
		},
	},
	{
		keywords: []string{"hungry", "food", "pizza", "lunch"},
		replies: []string{
			"I can't cook, but I can make sure you're pampered — fancy a booking?",
			"Food's not on my menu, but a relaxing appointment is!",
		},
	},
}

// Picker chooses an index in [0, n). Injected so tests pin the phrasing;
// production uses a rand-backed picker.
type Picker func(n int) int

// Smalltalk returns a canned reply when the message matches a smalltalk rule.
// Short keywords match whole words only so "hi" doesn't fire inside "this".
func Smalltalk(message string, pick Picker) (string, bool) {
	m := strings.ToLower(message)
	words := strings.FieldsFunc(m, func(r rune) bool {
		return !('a' <= r && r <= 'z')
	})
	for _, rule := range smalltalkRules {
		for _, kw := range rule.keywords {
			if len(kw) <= 3 {
				for _, w := range words {
					if w == kw {
						return rule.replies[pick(len(rule.replies))], true
					}
				}
				continue
			}
			if strings.Contains(m, kw) {
				return rule.replies[pick(len(rule.replies))], true
			}
		}
	}
	return "", false
}
