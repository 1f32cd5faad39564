package dialogue

import (
	"context"
	"time"

	"github.com/kaidodd21-ctrl/kai-assistant/internal/business"
	"github.com/kaidodd21-ctrl/kai-assistant/internal/llm"
	"github.com/kaidodd21-ctrl/kai-assistant/internal/session"
	"github.com/kaidodd21-ctrl/kai-assistant/pkg/logging"
)

// PlanSource produces a structured plan for one turn. Satisfied by
// *llm.Planner; tests substitute a canned implementation.
type PlanSource interface {
	Plan(ctx context.Context, sess *session.Session, message string) (llm.Plan, error)
	ShouldEscalate(plan llm.Plan) bool
}

// LLMEngine drives the conversation from model plans instead of the
// rule-based controller. Slot values proposed by the model still pass
// through the deterministic extractors, so the session never holds a date
// the parser couldn't read or a contact that fails validation.
type LLMEngine struct {
	planner      PlanSource
	biz          *business.Config
	historyLimit int
	now          func() time.Time
	logger       *logging.Logger
}

func NewLLMEngine(planner PlanSource, biz *business.Config, historyLimit int, now func() time.Time, logger *logging.Logger) *LLMEngine {
	if planner == nil {
		panic("dialogue: planner cannot be nil")
	}
	if biz == nil {
		panic("dialogue: business config cannot be nil")
	}
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &LLMEngine{planner: planner, biz: biz, historyLimit: historyLimit, now: now, logger: logger}
}

const escalationReply = "Let me hand you over to a member of the team — " +
	"someone will pick this up shortly. Anything else I can note down for them?"

// HandleMessage asks the planner for a plan and applies it to the session.
func (e *LLMEngine) HandleMessage(ctx context.Context, sess *session.Session, message string) Result {
	plan, err := e.planner.Plan(ctx, sess, message)
	if err != nil {
		// The safe plan still carries a usable reply.
		e.logger.Warn("plan failed, using safe reply", "session_id", sess.ID, "error", err)
	}

	e.mergeSlots(sess, plan.Slots)

	if e.planner.ShouldEscalate(plan) {
		sess.LastIntent = ""
		return e.respond(sess, message, escalationReply, plan.Suggest, true)
	}

	switch plan.Action {
	case llm.ActionBook:
		if _, missing := sess.Slots.FirstMissing(); !missing {
			booking := sess.CompleteBooking(e.now().UTC())
			sess.LastIntent = ""
			reply := plan.Reply
			if reply == "" {
				reply = "✅ Booked " + booking.Service + " on " + booking.DateTime.Pretty +
					" for " + booking.Name + ".\nWe'll confirm to " + booking.Contact + "."
			}
			res := e.respond(sess, message, reply, plan.Suggest, false)
			res.Completed = &booking
			return res
		}
		// The model jumped the gun: ask for the first gap instead.
		missingSlot, _ := sess.Slots.FirstMissing()
		ask, sugg := prompt(missingSlot)
		return e.respond(sess, message, ask, sugg, false)

	case llm.ActionCancelBooking:
		sess.ClearSlots()
		sess.LastIntent = ""
		reply := plan.Reply
		if reply == "" {
			reply = "Booking cancelled ✅"
		}
		return e.respond(sess, message, reply, plan.Suggest, false)

	default:
		// REPLY, ASK and CHECK_AVAILABILITY all just speak the model's
		// reply; availability is advisory only in this deployment.
		sess.LastIntent = "booking"
		return e.respond(sess, message, plan.Reply, plan.Suggest, false)
	}
}

// mergeSlots applies model-proposed values additively: a filled slot is
// never overwritten, and every value must survive its extractor.
func (e *LLMEngine) mergeSlots(sess *session.Session, proposed map[string]string) {
	if len(proposed) == 0 {
		return
	}
	if v := proposed["service"]; v != "" && !sess.Slots.Filled(session.SlotService) {
		if svc := e.biz.FindService(v); svc != "" {
			sess.Slots.Service = svc
		}
	}
	if v := proposed["datetime"]; v != "" && !sess.Slots.Filled(session.SlotDateTime) {
		if dt, err := ExtractDateTime(v, e.now()); err == nil && dt != nil {
			sess.Slots.DateTime = dt
		}
	}
	if v := proposed["name"]; v != "" && !sess.Slots.Filled(session.SlotName) {
		if name := ExtractName(v, e.biz, true); name != "" {
			sess.Slots.Name = CanonicalizeName(name, e.biz.KnownNames)
		}
	}
	if v := proposed["contact"]; v != "" && !sess.Slots.Filled(session.SlotContact) {
		if contact := ExtractContact(v); contact != "" {
			sess.Slots.Contact = contact
		}
	}
}

func (e *LLMEngine) respond(sess *session.Session, userMsg, reply string, suggestions []string, escalated bool) Result {
	sess.AppendHistory(userMsg, reply, e.historyLimit)
	return Result{Reply: reply, Suggestions: suggestions, Escalated: escalated, Branch: BranchLLM}
}
