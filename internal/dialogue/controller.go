package dialogue

import (
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"github.com/kaidodd21-ctrl/kai-assistant/internal/business"
	"github.com/kaidodd21-ctrl/kai-assistant/internal/session"
	"github.com/kaidodd21-ctrl/kai-assistant/pkg/logging"
)

// Branch labels which part of the engine produced a reply. Used for metrics.
const (
	BranchUtility   = "utility"
	BranchBooking   = "booking"
	BranchDiscovery = "discovery"
	BranchSmalltalk = "smalltalk"
	BranchFallback  = "fallback"
	BranchLLM       = "llm"
)

// Result is the engine's answer for one inbound message.
type Result struct {
	Reply       string
	Suggestions []string
	// Completed is set when this turn finalized a booking.
	Completed *session.Booking
	// Escalated is set when the reply should offer a human handoff.
	Escalated bool
	Branch    string
}

// Config tunes the controller. Zero values fall back to sane defaults.
type Config struct {
	RetryCeiling    int
	HistoryLimit    int
	PaymentLinkBase string
	Picker          Picker
	Now             func() time.Time
}

// Controller drives the extractive slot-filling conversation.
type Controller struct {
	biz          *business.Config
	retries      RetryPolicy
	historyLimit int
	paymentLink  string
	pick         Picker
	now          func() time.Time
	logger       *logging.Logger
}

// NewController wires the engine. The business catalog is required.
func NewController(biz *business.Config, cfg Config, logger *logging.Logger) *Controller {
	if biz == nil {
		panic("dialogue: business config cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	pick := cfg.Picker
	if pick == nil {
		pick = rand.Intn
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	payment := cfg.PaymentLinkBase
	if payment == "" {
		payment = "https://example-payments/checkout"
	}
	return &Controller{
		biz:          biz,
		retries:      RetryPolicy{Ceiling: cfg.RetryCeiling},
		historyLimit: cfg.HistoryLimit,
		paymentLink:  payment,
		pick:         pick,
		now:          now,
		logger:       logger,
	}
}

var (
	discoveryRE     = regexp.MustCompile(`(?i)what services|which services|services do you (?:offer|have)|what do you offer|service menu|\bmenu\b`)
	contactDetailRE = regexp.MustCompile(`(?i)details|number|email|reach`)
)

// HandleMessage runs one turn of the conversation and mutates the session in
// place: slots, retries, booking log and history. The caller persists the
// session afterwards.
func (c *Controller) HandleMessage(sess *session.Session, message string) Result {
	message = strings.TrimSpace(message)
	low := strings.ToLower(message)

	// Utility intents short-circuit before any slot filling.
	switch {
	case low == "pay" || low == "pay now" || low == "checkout":
		link := fmt.Sprintf("%s?ref=%s", c.paymentLink, sess.ID)
		return c.respond(sess, message, "Here's your checkout link: "+link,
			[]string{"Make another booking"}, BranchUtility)
	case strings.Contains(low, "opening") || strings.Contains(low, "open hours") || strings.Contains(low, "what time are you open"):
		return c.respond(sess, message,
			fmt.Sprintf("We're open %s ⏰", c.biz.Business.HoursText),
			[]string{"Make a booking"}, BranchUtility)
	case strings.Contains(low, "contact") && contactDetailRE.MatchString(low):
		return c.respond(sess, message,
			fmt.Sprintf("☎ %s ✉ %s", c.biz.Business.ContactPhone, c.biz.Business.ContactEmail),
			[]string{"Make a booking"}, BranchUtility)
	case strings.Contains(low, "cancel"):
		sess.ClearSlots()
		sess.LastIntent = ""
		return c.respond(sess, message, "Booking cancelled ✅",
			[]string{"Make a new booking"}, BranchUtility)
	case low == "restart" || low == "reset" || low == "start over" || low == "start again":
		sess.ResetFlow()
		return c.respond(sess, message,
			fmt.Sprintf("Fresh start! I'm the %s assistant — how can I help?", c.biz.Business.Name),
			[]string{"Make a booking", "Opening hours"}, BranchUtility)
	}

	// Catalog discovery answers "what do you offer" instead of treating the
	// question as a failed slot answer.
	if discoveryRE.MatchString(low) {
		sess.LastIntent = "booking"
		return c.respond(sess, message, c.biz.ServiceList(), c.biz.ServiceNames(), BranchDiscovery)
	}

	// Booking branch: an active flow, an explicit "book", or any service
	// mention pulls the message into slot filling.
	if sess.LastIntent == "booking" || strings.Contains(low, "book") || c.biz.FindService(low) != "" {
		sess.LastIntent = "booking"
		return c.handleBooking(sess, message, low)
	}

	if reply, ok := Smalltalk(low, c.pick); ok {
		return c.respond(sess, message, reply, []string{"Make a booking"}, BranchSmalltalk)
	}

	reply := "I mostly help with bookings, opening hours or contact details. Want me to show you?"
	if sess.Slots.Name != "" {
		reply = fmt.Sprintf("I mostly help with bookings, opening hours or contact details, %s. Want me to show you?", sess.Slots.Name)
	}
	return c.respond(sess, message, reply,
		[]string{"Make a booking", "Opening hours", "Contact details"}, BranchFallback)
}

// handleBooking fills slots in canonical order, capturing any later slots the
// current message happens to contain, then asks for the first gap.
func (c *Controller) handleBooking(sess *session.Session, message, low string) Result {
	needed, _ := sess.Slots.FirstMissing()
	now := c.now()

	progress := false
	dtCaptured := false
	var dtErr error

	// Multi-intent pre-fill. A filled slot is never overwritten.
	if !sess.Slots.Filled(session.SlotService) {
		if svc := c.biz.FindService(low); svc != "" {
			sess.Slots.Service = svc
			progress = true
		}
	}
	if !sess.Slots.Filled(session.SlotDateTime) {
		var dt *session.DateTimeValue
		dt, dtErr = ExtractDateTime(message, now)
		if dt != nil {
			sess.Slots.DateTime = dt
			progress = true
			dtCaptured = true
		}
	}
	if !sess.Slots.Filled(session.SlotName) {
		name := ExtractName(message, c.biz, needed == session.SlotName)
		if name != "" {
			sess.Slots.Name = CanonicalizeName(name, c.biz.KnownNames)
			progress = true
		}
	}
	if !sess.Slots.Filled(session.SlotContact) {
		var contact string
		if needed == session.SlotContact {
			contact = ExtractContact(message)
		} else if !dtCaptured {
			// Opportunistic capture is stricter: only a message that is
			// plainly an email or phone number fills contact early, and a
			// message already consumed as a date never qualifies.
			contact = strictContact(message)
		}
		if contact != "" {
			sess.Slots.Contact = contact
			progress = true
		}
	}

	missing, ok := sess.Slots.FirstMissing()
	if !ok {
		booking := sess.CompleteBooking(now.UTC())
		sess.LastIntent = ""
		reply := fmt.Sprintf("✅ Booked %s on %s for %s.\nWe'll confirm to %s.\nPay now?",
			booking.Service, booking.DateTime.Pretty, booking.Name, booking.Contact)
		res := c.respond(sess, message, reply,
			[]string{"Pay now", "Change time", "Make another booking"}, BranchBooking)
		res.Completed = &booking
		return res
	}

	if progress {
		reply, sugg := c.askFor(sess, missing)
		return c.respond(sess, message, reply, sugg, BranchBooking)
	}

	// The message didn't move any slot forward. Deflect when we can tell
	// what the user was doing; otherwise re-ask under the retry policy.
	if missing != session.SlotDateTime || dtErr == nil {
		if reply, ok := Deflection(ClassifyOffTopic(message), missing); ok {
			return c.respond(sess, message, reply, nil, BranchBooking)
		}
	}

	// An explicit booking command that moved nothing forward is a resume
	// (or a repeat), not a failed answer. It restores the slot's retry
	// budget and re-asks cleanly, so "book" after a pause always picks the
	// flow back up instead of re-pausing.
	if strings.Contains(low, "book") {
		sess.ResetRetry(missing)
		reply, sugg := c.askFor(sess, missing)
		return c.respond(sess, message, reply, sugg, BranchBooking)
	}

	count := sess.BumpRetry(missing)
	if c.retries.Exhausted(count) {
		sess.LastIntent = ""
		return c.respond(sess, message, PauseReply, []string{"Make a booking"}, BranchBooking)
	}

	if missing == session.SlotDateTime && dtErr == ErrPastDate {
		return c.respond(sess, message,
			"That time has already passed — could you pick a future slot?",
			[]string{"Tomorrow 3pm", "Saturday 11am"}, BranchBooking)
	}

	ask, sugg := c.askFor(sess, missing)
	return c.respond(sess, message, "Sorry, I didn't catch that. "+ask, sugg, BranchBooking)
}

// askFor renders the standard question for a slot, acknowledging progress on
// the service slot the way a receptionist would.
func (c *Controller) askFor(sess *session.Session, slot session.Slot) (string, []string) {
	if slot == session.SlotService {
		return c.biz.ServiceList(), c.biz.ServiceNames()
	}
	if slot == session.SlotDateTime && sess.Slots.Service != "" {
		return fmt.Sprintf("Great, I've got you down for %s. When would you like it?", sess.Slots.Service),
			[]string{"Tomorrow 3pm", "Saturday 11am"}
	}
	ask, sugg := prompt(slot)
	return ask, sugg
}

// respond appends the exchange to the bounded history and packages the reply.
func (c *Controller) respond(sess *session.Session, userMsg, reply string, suggestions []string, branch string) Result {
	sess.AppendHistory(userMsg, reply, c.historyLimit)
	return Result{Reply: reply, Suggestions: suggestions, Branch: branch}
}

var phoneShapeRE = regexp.MustCompile(`^[\d\s()+.-]{7,}$`)

// strictContact accepts only messages that are unambiguously contact details.
func strictContact(text string) string {
	t := strings.TrimSpace(text)
	if t == "" {
		return ""
	}
	if at := strings.Index(t, "@"); at > 0 && !strings.ContainsAny(t, " \t") && strings.Contains(t[at:], ".") {
		return t
	}
	if phoneShapeRE.MatchString(t) {
		digits := 0
		for _, r := range t {
			if r >= '0' && r <= '9' {
				digits++
			}
		}
		if digits >= 7 {
			return t
		}
	}
	return ""
}
