package dialogue

import (
	"strings"
	"testing"
	"time"

	"github.com/kaidodd21-ctrl/kai-assistant/internal/business"
	"github.com/kaidodd21-ctrl/kai-assistant/internal/session"
	"github.com/kaidodd21-ctrl/kai-assistant/pkg/logging"
)

func newTestController(t *testing.T) *Controller {
	t.Helper()
	return NewController(business.DefaultConfig(), Config{
		HistoryLimit: 10,
		Picker:       pickFirst,
		Now:          func() time.Time { return clock },
	}, logging.Default())
}

func TestBookingRoundTrip(t *testing.T) {
	c := newTestController(t)
	sess := session.New("s1")

	steps := []struct {
		message string
		wantIn  string
	}{
		{"I want a haircut", "I've got you down for Haircut"},
		{"Tomorrow at 1pm", "What's your name?"},
		{"My name is Kai", "Your phone or email?"},
		{"07123456789", "✅ Booked Haircut"},
	}
	var last Result
	for _, step := range steps {
		last = c.HandleMessage(sess, step.message)
		if !strings.Contains(last.Reply, step.wantIn) {
			t.Fatalf("HandleMessage(%q) reply = %q, want substring %q", step.message, last.Reply, step.wantIn)
		}
	}

	if last.Completed == nil {
		t.Fatal("final turn did not complete a booking")
	}
	b := *last.Completed
	if b.Service != "Haircut" || b.Name != "Kai" || b.Contact != "07123456789" {
		t.Errorf("booking = %+v", b)
	}
	if b.DateTime.Pretty != "Thursday 03 Sep, 01:00 PM" {
		t.Errorf("booking time = %q", b.DateTime.Pretty)
	}

	// Completion resets the flow but keeps the booking log.
	if sess.Slots.Service != "" || sess.Slots.Name != "" {
		t.Errorf("slots not cleared after completion: %+v", sess.Slots)
	}
	if sess.LastIntent != "" {
		t.Errorf("intent = %q, want cleared", sess.LastIntent)
	}
	if len(sess.Bookings) != 1 {
		t.Errorf("bookings = %d, want 1", len(sess.Bookings))
	}
	if len(sess.History) != 4 {
		t.Errorf("history = %d exchanges, want 4", len(sess.History))
	}
}

func TestMultiIntentPrefill(t *testing.T) {
	c := newTestController(t)
	sess := session.New("s1")

	res := c.HandleMessage(sess, "Book a massage tomorrow at 2pm, I'm Dana")
	if sess.Slots.Service != "Massage" || sess.Slots.Name != "Dana" {
		t.Fatalf("prefill slots = %+v", sess.Slots)
	}
	if sess.Slots.DateTime == nil {
		t.Fatal("datetime not captured from combined message")
	}
	// Only the contact is left; the ask skips straight to it.
	if !strings.Contains(res.Reply, "phone or email") {
		t.Errorf("reply = %q, want contact ask", res.Reply)
	}
}

func TestPrefillIgnoresCasualPhraseClauses(t *testing.T) {
	c := newTestController(t)
	sess := session.New("s1")

	res := c.HandleMessage(sess, "I'm looking for a haircut")
	if sess.Slots.Service != "Haircut" {
		t.Fatalf("service = %q, want Haircut", sess.Slots.Service)
	}
	if sess.Slots.Name != "" {
		t.Fatalf("name = %q, want empty: %q is not an introduction", sess.Slots.Name, "I'm looking")
	}
	if !strings.Contains(res.Reply, "When would you like it?") {
		t.Errorf("reply = %q, want datetime ask", res.Reply)
	}
}

func TestOpportunisticContactIsStrict(t *testing.T) {
	c := newTestController(t)
	sess := session.New("s1")

	// A sentence with 7+ digits must not fill contact while an earlier
	// slot is being collected.
	c.HandleMessage(sess, "book a haircut")
	c.HandleMessage(sess, "2026-09-04 15:00")
	if sess.Slots.Contact != "" {
		t.Errorf("contact = %q, want empty after a datetime answer", sess.Slots.Contact)
	}
}

func TestServiceSlotNotOverwritten(t *testing.T) {
	c := newTestController(t)
	sess := session.New("s1")

	c.HandleMessage(sess, "book a haircut")
	c.HandleMessage(sess, "actually massage")
	if sess.Slots.Service != "Haircut" {
		t.Errorf("service = %q, want first answer kept", sess.Slots.Service)
	}
}

func TestPastDateGetsDistinctReply(t *testing.T) {
	c := newTestController(t)
	sess := session.New("s1")

	c.HandleMessage(sess, "book a haircut")
	res := c.HandleMessage(sess, "yesterday 10:00")
	if !strings.Contains(res.Reply, "already passed") {
		t.Errorf("reply = %q, want past-date explanation", res.Reply)
	}
	if got := sess.RetryCount(session.SlotDateTime); got != 1 {
		t.Errorf("retry count = %d, want 1", got)
	}
}

func TestRetryCeilingPausesFlow(t *testing.T) {
	c := newTestController(t)
	sess := session.New("s1")
	c.HandleMessage(sess, "book a haircut")

	var res Result
	for i := 0; i < 3; i++ {
		res = c.HandleMessage(sess, "asdf qwerty")
	}
	if res.Reply != PauseReply {
		t.Errorf("third failure reply = %q, want pause", res.Reply)
	}
	if sess.LastIntent != "" {
		t.Errorf("intent = %q, want cleared on pause", sess.LastIntent)
	}
	// Captured slots survive the pause so "book" resumes where we left off.
	if sess.Slots.Service != "Haircut" {
		t.Errorf("service = %q, want kept through pause", sess.Slots.Service)
	}
}

func TestPauseThenBookResumesFlow(t *testing.T) {
	c := newTestController(t)
	sess := session.New("s1")
	c.HandleMessage(sess, "book a haircut")
	for i := 0; i < 3; i++ {
		c.HandleMessage(sess, "asdf qwerty")
	}

	res := c.HandleMessage(sess, "book")
	if res.Reply == PauseReply {
		t.Fatalf("explicit booking command after pause re-paused: %q", res.Reply)
	}
	if !strings.Contains(res.Reply, "When would you like it?") {
		t.Errorf("resume reply = %q, want the pending slot question", res.Reply)
	}
	if got := sess.RetryCount(session.SlotDateTime); got != 0 {
		t.Errorf("retry count after resume = %d, want 0", got)
	}

	// The resumed flow gets a fresh retry budget, not an instant re-pause.
	if res := c.HandleMessage(sess, "asdf qwerty"); res.Reply == PauseReply {
		t.Errorf("first failure after resume paused immediately")
	}
}

func TestOffTopicDeflectionDoesNotBurnRetries(t *testing.T) {
	c := newTestController(t)
	sess := session.New("s1")
	c.HandleMessage(sess, "book a haircut")

	res := c.HandleMessage(sess, "why do you need that?")
	if !strings.Contains(res.Reply, "date and time") {
		t.Errorf("reply = %q, want deflection naming the pending slot", res.Reply)
	}
	if got := sess.RetryCount(session.SlotDateTime); got != 0 {
		t.Errorf("retry count = %d, want 0 after deflection", got)
	}
}

func TestCancelClearsFlowKeepsCompleted(t *testing.T) {
	c := newTestController(t)
	sess := session.New("s1")

	// Complete one booking, start another, then cancel the second.
	for _, m := range []string{"book a haircut", "tomorrow 3pm", "i'm Kai", "07123456789"} {
		c.HandleMessage(sess, m)
	}
	c.HandleMessage(sess, "book a massage")
	res := c.HandleMessage(sess, "cancel")

	if !strings.Contains(res.Reply, "cancelled") {
		t.Errorf("reply = %q", res.Reply)
	}
	if sess.Slots.Service != "" {
		t.Errorf("service = %q, want cleared by cancel", sess.Slots.Service)
	}
	if len(sess.Bookings) != 1 {
		t.Errorf("bookings = %d, want completed booking untouched", len(sess.Bookings))
	}
}

func TestUtilityIntents(t *testing.T) {
	c := newTestController(t)

	tests := []struct {
		message string
		wantIn  string
	}{
		{"pay", "checkout link"},
		{"what are your opening hours?", "Mon–Sat, 9am–6pm"},
		{"contact details please", "01234 567890"},
	}
	for _, tt := range tests {
		sess := session.New("s1")
		res := c.HandleMessage(sess, tt.message)
		if !strings.Contains(res.Reply, tt.wantIn) {
			t.Errorf("HandleMessage(%q) = %q, want substring %q", tt.message, res.Reply, tt.wantIn)
		}
		if res.Branch != BranchUtility {
			t.Errorf("HandleMessage(%q) branch = %q", tt.message, res.Branch)
		}
	}
}

func TestDiscoveryListsCatalog(t *testing.T) {
	c := newTestController(t)
	sess := session.New("s1")

	res := c.HandleMessage(sess, "what services do you offer?")
	for _, svc := range []string{"Haircut", "Massage", "Nails"} {
		if !strings.Contains(res.Reply, svc) {
			t.Errorf("catalog reply missing %s: %q", svc, res.Reply)
		}
	}
	if res.Branch != BranchDiscovery {
		t.Errorf("branch = %q, want discovery", res.Branch)
	}
	if len(res.Suggestions) != 3 {
		t.Errorf("suggestions = %v, want the three services", res.Suggestions)
	}
}

func TestSmalltalkAndFallback(t *testing.T) {
	c := newTestController(t)
	sess := session.New("s1")

	res := c.HandleMessage(sess, "hello")
	if res.Branch != BranchSmalltalk {
		t.Errorf("greeting branch = %q", res.Branch)
	}

	res = c.HandleMessage(sess, "what's the meaning of life?")
	if res.Branch != BranchFallback {
		t.Errorf("fallback branch = %q", res.Branch)
	}
	if !strings.Contains(res.Reply, "bookings, opening hours or contact details") {
		t.Errorf("fallback reply = %q", res.Reply)
	}
}

func TestFallbackUsesKnownName(t *testing.T) {
	c := newTestController(t)
	sess := session.New("s1")
	sess.Slots.Name = "Kai"
	sess.LastIntent = "" // not in a booking flow

	res := c.HandleMessage(sess, "what's the meaning of life?")
	if !strings.Contains(res.Reply, "Kai") {
		t.Errorf("fallback reply = %q, want personalization", res.Reply)
	}
}

func TestHistoryIsBounded(t *testing.T) {
	c := newTestController(t)
	sess := session.New("s1")

	for i := 0; i < 15; i++ {
		c.HandleMessage(sess, "hello")
	}
	if len(sess.History) != 10 {
		t.Errorf("history = %d exchanges, want capped at 10", len(sess.History))
	}
}
