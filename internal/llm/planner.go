package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaidodd21-ctrl/kai-assistant/internal/business"
	"github.com/kaidodd21-ctrl/kai-assistant/internal/session"
	"github.com/kaidodd21-ctrl/kai-assistant/pkg/logging"
)

// Plan actions. BOOK is only honored once every slot is filled; the chat
// layer downgrades a premature BOOK to an ASK for the first gap.
const (
	ActionReply             = "REPLY"
	ActionAsk               = "ASK"
	ActionBook              = "BOOK"
	ActionCancelBooking     = "CANCEL_BOOKING"
	ActionEscalate          = "ESCALATE"
	ActionCheckAvailability = "CHECK_AVAILABILITY"
)

// Plan is the structured decision the model must answer with.
type Plan struct {
	Action     string            `json:"action"`
	Reply      string            `json:"reply"`
	Slots      map[string]string `json:"slots,omitempty"`
	Suggest    []string          `json:"suggest,omitempty"`
	Confidence float64           `json:"confidence"`
}

// DefaultEscalationFloor is the confidence below which a plan is treated as
// a request for human help.
const DefaultEscalationFloor = 0.45

// hedgingPhrases in a reply mean the model is guessing; combined with a low
// confidence they trigger escalation.
var hedgingPhrases = []string{
	"i'm not sure", "i am not sure", "i don't know", "i cannot help",
	"i can't help", "unable to assist", "not certain",
}

// PlannerConfig tunes prompting and escalation.
type PlannerConfig struct {
	Model           string
	Temperature     float32
	MaxTokens       int32
	EscalationFloor float64
	// ReformatRetry re-prompts the model once when its output fails to
	// parse as JSON, before falling back to the safe default plan.
	ReformatRetry bool
}

// Planner asks the model for a structured plan each turn.
type Planner struct {
	client Client
	biz    *business.Config
	cfg    PlannerConfig
	logger *logging.Logger
}

// NewPlanner wires the planner. Client and business catalog are required.
func NewPlanner(client Client, biz *business.Config, cfg PlannerConfig, logger *logging.Logger) *Planner {
	if client == nil {
		panic("llm: client cannot be nil")
	}
	if biz == nil {
		panic("llm: business config cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.EscalationFloor <= 0 {
		cfg.EscalationFloor = DefaultEscalationFloor
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 512
	}
	return &Planner{client: client, biz: biz, cfg: cfg, logger: logger}
}

// Plan runs one planning turn. It never returns a zero Plan: on model or
// parse failure the safe default plan is returned alongside the error so the
// caller can still reply.
func (p *Planner) Plan(ctx context.Context, sess *session.Session, message string) (Plan, error) {
	req := Request{
		Model:       p.cfg.Model,
		System:      []string{p.systemPrompt(sess)},
		Messages:    p.buildMessages(sess, message),
		MaxTokens:   p.cfg.MaxTokens,
		Temperature: p.cfg.Temperature,
	}

	resp, err := p.client.Complete(ctx, req)
	if err != nil {
		return safePlan(), fmt.Errorf("llm: planning failed: %w", err)
	}

	plan, err := ParsePlan(resp.Text)
	if err != nil && p.cfg.ReformatRetry {
		p.logger.Warn("plan output unparseable, retrying", "error", err)
		plan, err = p.reformat(ctx, resp.Text)
	}
	if err != nil {
		p.logger.Error("plan output unparseable", "error", err)
		return safePlan(), fmt.Errorf("llm: plan parse: %w", err)
	}
	return p.sanitize(plan), nil
}

// ShouldEscalate reports whether a plan asks for, or implies needing, a human.
func (p *Planner) ShouldEscalate(plan Plan) bool {
	if plan.Action == ActionEscalate {
		return true
	}
	if plan.Confidence > 0 && plan.Confidence < p.cfg.EscalationFloor {
		return true
	}
	reply := strings.ToLower(plan.Reply)
	for _, phrase := range hedgingPhrases {
		if strings.Contains(reply, phrase) {
			return true
		}
	}
	return false
}

func (p *Planner) reformat(ctx context.Context, raw string) (Plan, error) {
	req := Request{
		Model: p.cfg.Model,
		Messages: []ChatMessage{{
			Role: ChatRoleUser,
			Content: "Rewrite the following as a single valid JSON object matching the schema " +
				`{"action","reply","slots","suggest","confidence"}` +
				" with no surrounding text:\n\n" + raw,
		}},
		MaxTokens: p.cfg.MaxTokens,
	}
	resp, err := p.client.Complete(ctx, req)
	if err != nil {
		return Plan{}, err
	}
	return ParsePlan(resp.Text)
}

// sanitize normalizes the model's output so downstream code can trust it.
func (p *Planner) sanitize(plan Plan) Plan {
	plan.Action = strings.ToUpper(strings.TrimSpace(plan.Action))
	switch plan.Action {
	case ActionReply, ActionAsk, ActionBook, ActionCancelBooking, ActionEscalate, ActionCheckAvailability:
	default:
		plan.Action = ActionReply
	}
	if strings.TrimSpace(plan.Reply) == "" && plan.Action != ActionBook && plan.Action != ActionCancelBooking {
		plan.Reply = "Could you tell me a little more about what you need?"
	}
	for k, v := range plan.Slots {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			delete(plan.Slots, k)
			continue
		}
		plan.Slots[k] = trimmed
	}
	return plan
}

// safePlan is what the user sees when the model misbehaves.
func safePlan() Plan {
	return Plan{
		Action:     ActionReply,
		Reply:      "Sorry, I'm having a little trouble right now. Could you rephrase that?",
		Confidence: 0,
	}
}

// ParsePlan decodes a model answer defensively: code fences are stripped,
// then a direct decode is attempted, then the first {...} block is tried.
func ParsePlan(raw string) (Plan, error) {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var plan Plan
	if err := json.Unmarshal([]byte(text), &plan); err == nil {
		return plan, nil
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(text[start:end+1]), &plan); err == nil {
			return plan, nil
		}
	}
	return Plan{}, fmt.Errorf("llm: no decodable plan in %q", truncate(raw, 120))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}

func (p *Planner) systemPrompt(sess *session.Session) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are the booking assistant for %s (hours: %s, phone: %s, email: %s).\n",
		p.biz.Business.Name, p.biz.Business.HoursText, p.biz.Business.ContactPhone, p.biz.Business.ContactEmail)
	b.WriteString("Services:\n")
	b.WriteString(p.biz.ServiceList())
	if p.biz.KnowledgeText != "" {
		b.WriteString("\n\nBusiness notes:\n")
		b.WriteString(p.biz.KnowledgeText)
	}
	b.WriteString("\n\nCollect booking details in this order: service, date and time, name, contact.\n")
	b.WriteString("Known so far:\n")
	for slot, value := range sess.Slots.Snapshot() {
		fmt.Fprintf(&b, "- %s: %s\n", slot, value)
	}
	b.WriteString("\nAnswer ONLY with a JSON object: " +
		`{"action": "REPLY|ASK|BOOK|CANCEL_BOOKING|ESCALATE|CHECK_AVAILABILITY", ` +
		`"reply": "text for the customer", ` +
		`"slots": {"service": "", "datetime": "", "name": "", "contact": ""}, ` +
		`"suggest": ["quick reply chips"], "confidence": 0.0}` + "\n")
	b.WriteString("Include in slots only values the customer stated this turn. " +
		"Use BOOK only when every slot is known. Use ESCALATE when the customer should talk to a person.\n")
	return b.String()
}

func (p *Planner) buildMessages(sess *session.Session, message string) []ChatMessage {
	msgs := make([]ChatMessage, 0, len(sess.History)*2+1)
	for _, ex := range sess.History {
		msgs = append(msgs,
			ChatMessage{Role: ChatRoleUser, Content: ex.User},
			ChatMessage{Role: ChatRoleAssistant, Content: ex.Bot},
		)
	}
	return append(msgs, ChatMessage{Role: ChatRoleUser, Content: message})
}
