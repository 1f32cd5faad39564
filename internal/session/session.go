// Package session holds per-conversation state for the assistant: the
// booking slots being collected, retry counters, a bounded history of
// exchanges, and the log of completed bookings.
package session

import "time"

// Slot identifies one piece of booking information.
type Slot string

const (
	SlotService  Slot = "service"
	SlotDateTime Slot = "datetime"
	SlotName     Slot = "name"
	SlotContact  Slot = "contact"
)

// Order is the canonical collection order. The controller never prompts for a
// later slot while an earlier one is empty.
var Order = []Slot{SlotService, SlotDateTime, SlotName, SlotContact}

// Label returns the customer-facing name of a slot.
func Label(s Slot) string {
	switch s {
	case SlotService:
		return "service"
	case SlotDateTime:
		return "date and time"
	case SlotName:
		return "name"
	case SlotContact:
		return "contact details"
	}
	return string(s)
}

// DateTimeValue pairs the machine timestamp with its display form. Both come
// from the same parse so they cannot diverge.
type DateTimeValue struct {
	At     time.Time `json:"at"`
	Pretty string    `json:"pretty"`
}

// SlotValues holds the four booking slots. The zero value means nothing
// collected yet; every key is always representable.
type SlotValues struct {
	Service  string         `json:"service"`
	DateTime *DateTimeValue `json:"datetime"`
	Name     string         `json:"name"`
	Contact  string         `json:"contact"`
}

// Filled reports whether the given slot has a value.
func (v *SlotValues) Filled(s Slot) bool {
	switch s {
	case SlotService:
		return v.Service != ""
	case SlotDateTime:
		return v.DateTime != nil
	case SlotName:
		return v.Name != ""
	case SlotContact:
		return v.Contact != ""
	}
	return false
}

// FirstMissing returns the earliest unfilled slot in canonical order.
// ok is false when every slot is filled.
func (v *SlotValues) FirstMissing() (slot Slot, ok bool) {
	for _, s := range Order {
		if !v.Filled(s) {
			return s, true
		}
	}
	return "", false
}

// Snapshot renders the slots as a plain map for debug output.
func (v *SlotValues) Snapshot() map[string]string {
	m := map[string]string{
		"service":  v.Service,
		"datetime": "",
		"name":     v.Name,
		"contact":  v.Contact,
	}
	if v.DateTime != nil {
		m["datetime"] = v.DateTime.Pretty
	}
	return m
}

// Exchange is one user/assistant turn pair.
type Exchange struct {
	User string `json:"user"`
	Bot  string `json:"bot"`
}

// Booking is an immutable snapshot of a completed booking.
type Booking struct {
	Service   string        `json:"service"`
	DateTime  DateTimeValue `json:"datetime"`
	Name      string        `json:"name"`
	Contact   string        `json:"contact"`
	CreatedAt time.Time     `json:"created_at"`
}

// DefaultHistoryLimit caps the rolling exchange log.
const DefaultHistoryLimit = 10

// Session is the state of one conversation.
type Session struct {
	ID         string       `json:"id"`
	Slots      SlotValues   `json:"slots"`
	LastIntent string       `json:"last_intent,omitempty"`
	Retries    map[Slot]int `json:"retries,omitempty"`
	History    []Exchange   `json:"history,omitempty"`
	Bookings   []Booking    `json:"bookings,omitempty"`
	LastSeen   time.Time    `json:"last_seen"`
}

// New returns an empty session with the given id.
func New(id string) *Session {
	return &Session{
		ID:       id,
		Retries:  make(map[Slot]int),
		LastSeen: time.Now().UTC(),
	}
}

// RetryCount returns the number of failed re-asks recorded for a slot.
func (s *Session) RetryCount(slot Slot) int {
	if s.Retries == nil {
		return 0
	}
	return s.Retries[slot]
}

// BumpRetry increments the retry counter for a slot and returns the new count.
func (s *Session) BumpRetry(slot Slot) int {
	if s.Retries == nil {
		s.Retries = make(map[Slot]int)
	}
	s.Retries[slot]++
	return s.Retries[slot]
}

// ResetRetry clears the retry counter for one slot.
func (s *Session) ResetRetry(slot Slot) {
	delete(s.Retries, slot)
}

// ClearRetries zeroes all retry counters.
func (s *Session) ClearRetries() {
	s.Retries = make(map[Slot]int)
}

// ClearSlots drops all in-progress slot values and retry counters. Completed
// bookings are untouched: cancel abandons the flow, it does not undo outcomes.
func (s *Session) ClearSlots() {
	s.Slots = SlotValues{}
	s.ClearRetries()
}

// ResetFlow is the explicit restart command: slots, retries, intent and
// history go; the booking log stays.
func (s *Session) ResetFlow() {
	s.ClearSlots()
	s.LastIntent = ""
	s.History = nil
}

// AppendHistory records one exchange, evicting the oldest entries beyond the
// limit. A non-positive limit uses DefaultHistoryLimit.
func (s *Session) AppendHistory(user, bot string, limit int) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	s.History = append(s.History, Exchange{User: user, Bot: bot})
	if excess := len(s.History) - limit; excess > 0 {
		s.History = append([]Exchange(nil), s.History[excess:]...)
	}
}

// CompleteBooking snapshots the current slots into the booking log and clears
// the flow for a fresh booking. The caller must ensure all slots are filled.
func (s *Session) CompleteBooking(now time.Time) Booking {
	b := Booking{
		Service:   s.Slots.Service,
		Name:      s.Slots.Name,
		Contact:   s.Slots.Contact,
		CreatedAt: now,
	}
	if s.Slots.DateTime != nil {
		b.DateTime = *s.Slots.DateTime
	}
	s.Bookings = append(s.Bookings, b)
	s.ClearSlots()
	return b
}

// Touch refreshes the last-seen timestamp used for TTL expiry.
func (s *Session) Touch(now time.Time) {
	s.LastSeen = now
}
