// Package chat is the application layer of the assistant: it resolves the
// session, runs the configured dialogue engine, and fans out side effects
// (archiving, confirmation email, metrics) for completed bookings.
package chat

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/kaidodd21-ctrl/kai-assistant/internal/dialogue"
	"github.com/kaidodd21-ctrl/kai-assistant/internal/observability/metrics"
	"github.com/kaidodd21-ctrl/kai-assistant/internal/session"
	"github.com/kaidodd21-ctrl/kai-assistant/pkg/logging"
)

// ModeRules uses the deterministic slot-filling controller; ModeLLM delegates
// each turn to the model planner.
const (
	ModeRules = "rules"
	ModeLLM   = "llm"
)

// Archiver persists completed bookings. Satisfied by *bookings.Archive.
type Archiver interface {
	Record(ctx context.Context, sessionID string, b session.Booking) error
}

// Notifier sends booking confirmations. Satisfied by *notify.Confirmer.
type Notifier interface {
	ConfirmBooking(ctx context.Context, b session.Booking) error
}

// Reply is the chat response surfaced to every transport (HTTP, websocket).
type Reply struct {
	Reply       string
	Suggestions []string
	SessionID   string
	Escalated   bool
	Debug       Debug
}

// Debug carries introspection data for the demo UI.
type Debug struct {
	Slots map[string]string `json:"slots"`
}

// Service runs one conversation turn end to end.
type Service struct {
	store   session.Store
	rules   *dialogue.Controller
	llm     *dialogue.LLMEngine
	mode    string
	archive Archiver
	notify  Notifier
	metrics *metrics.ChatMetrics
	logger  *logging.Logger
	locks   sessionLocks
}

// sessionLocks serializes turns per session id with striped mutexes, so
// concurrent requests for the same session cannot lose slot updates.
type sessionLocks struct {
	stripes [64]sync.Mutex
}

func (l *sessionLocks) acquire(id string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	mu := &l.stripes[h.Sum32()%uint32(len(l.stripes))]
	mu.Lock()
	return mu
}

// NewService wires the chat application service. Store and rules controller
// are required; archive, notifier, metrics and the LLM engine are optional.
func NewService(store session.Store, rules *dialogue.Controller, opts Options) *Service {
	if store == nil {
		panic("chat: session store cannot be nil")
	}
	if rules == nil {
		panic("chat: dialogue controller cannot be nil")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}
	mode := opts.Mode
	if mode != ModeLLM || opts.LLM == nil {
		mode = ModeRules
	}
	return &Service{
		store:   store,
		rules:   rules,
		llm:     opts.LLM,
		mode:    mode,
		archive: opts.Archive,
		notify:  opts.Notifier,
		metrics: opts.Metrics,
		logger:  logger,
	}
}

// Options are the optional collaborators of the chat service.
type Options struct {
	Mode     string
	LLM      *dialogue.LLMEngine
	Archive  Archiver
	Notifier Notifier
	Metrics  *metrics.ChatMetrics
	Logger   *logging.Logger
}

// Respond handles one inbound message. It never returns an error: any
// failure inside the engine degrades to an apology so the widget always has
// something to render.
func (s *Service) Respond(ctx context.Context, sessionID, message string) (reply Reply) {
	mu := s.locks.acquire(sessionID)
	defer mu.Unlock()

	sess, created, err := s.store.GetOrCreate(ctx, sessionID)
	if err != nil {
		s.logger.Error("session load failed", "session_id", sessionID, "error", err)
		return Reply{
			Reply:     "Sorry, something went wrong on my end. Could you try again?",
			SessionID: sessionID,
		}
	}
	if created {
		s.logger.Info("session created", "session_id", sess.ID)
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("chat turn panicked", "session_id", sess.ID, "panic", r)
			reply = Reply{
				Reply:     "Sorry, something went wrong on my end. Could you try again?",
				SessionID: sess.ID,
				Debug:     Debug{Slots: sess.Slots.Snapshot()},
			}
		}
	}()

	var result dialogue.Result
	if s.mode == ModeLLM {
		result = s.llm.HandleMessage(ctx, sess, message)
	} else {
		result = s.rules.HandleMessage(sess, message)
	}
	sess.Touch(time.Now().UTC())

	s.metrics.ObserveMessage(result.Branch)
	if result.Escalated {
		s.metrics.ObserveEscalation()
	}
	if result.Completed != nil {
		s.metrics.ObserveBookingCompleted()
		s.fanOutBooking(ctx, sess.ID, *result.Completed)
	}

	if err := s.store.Save(ctx, sess); err != nil {
		// The reply still goes out; only continuity suffers.
		s.logger.Error("session save failed", "session_id", sess.ID, "error", err)
	}

	return Reply{
		Reply:       result.Reply,
		Suggestions: result.Suggestions,
		SessionID:   sess.ID,
		Escalated:   result.Escalated,
		Debug:       Debug{Slots: sess.Slots.Snapshot()},
	}
}

// fanOutBooking runs the completion side effects. Failures are logged, never
// surfaced: the booking itself already succeeded.
func (s *Service) fanOutBooking(ctx context.Context, sessionID string, b session.Booking) {
	if s.archive != nil {
		if err := s.archive.Record(ctx, sessionID, b); err != nil {
			s.logger.Error("booking archive failed", "session_id", sessionID, "error", err)
		}
	}
	if s.notify != nil {
		if err := s.notify.ConfirmBooking(ctx, b); err != nil {
			s.logger.Error("booking confirmation failed", "session_id", sessionID, "error", err)
		}
	}
	s.logger.Info("booking completed",
		"session_id", sessionID,
		"service", b.Service,
		"scheduled_for", b.DateTime.At,
	)
}
