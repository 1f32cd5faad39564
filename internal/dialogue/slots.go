// Package dialogue implements the slot-filling booking engine: extractors
// for each booking slot, the off-topic classifier, the retry policy, and the
// per-message controller that drives a session to a completed booking.
package dialogue

import (
	"github.com/kaidodd21-ctrl/kai-assistant/internal/session"
)

// prompt returns the standard ask for a slot and its suggestion chips.
// The service ask is handled separately (it shows the catalog).
func prompt(slot session.Slot) (string, []string) {
	switch slot {
	case session.SlotDateTime:
		return "When would you like it?", []string{"Tomorrow 3pm", "Saturday 11am"}
	case session.SlotName:
		return "What's your name?", nil
	case session.SlotContact:
		return "Your phone or email?", nil
	}
	return "Which service would you like?", nil
}
