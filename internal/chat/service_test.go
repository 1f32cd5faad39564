package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kaidodd21-ctrl/kai-assistant/internal/business"
	"github.com/kaidodd21-ctrl/kai-assistant/internal/dialogue"
	"github.com/kaidodd21-ctrl/kai-assistant/internal/session"
	"github.com/kaidodd21-ctrl/kai-assistant/pkg/logging"
)

var testClock = time.Date(2026, time.September, 2, 10, 0, 0, 0, time.UTC)

type recordingArchive struct {
	records []session.Booking
	err     error
}

func (r *recordingArchive) Record(_ context.Context, _ string, b session.Booking) error {
	r.records = append(r.records, b)
	return r.err
}

type recordingNotifier struct {
	confirmed []session.Booking
}

func (r *recordingNotifier) ConfirmBooking(_ context.Context, b session.Booking) error {
	r.confirmed = append(r.confirmed, b)
	return nil
}

func newTestService(t *testing.T, opts Options) *Service {
	t.Helper()
	controller := dialogue.NewController(business.DefaultConfig(), dialogue.Config{
		Picker: func(int) int { return 0 },
		Now:    func() time.Time { return testClock },
	}, logging.Default())
	store := session.NewMemoryStore(0, "")
	return NewService(store, controller, opts)
}

func TestRespondMintsSessionID(t *testing.T) {
	svc := newTestService(t, Options{})

	reply := svc.Respond(context.Background(), "", "hello")
	if reply.SessionID == "" {
		t.Fatal("want a minted session id")
	}
	if reply.Reply == "" {
		t.Fatal("want a reply")
	}

	// Second turn with the returned id continues the same session.
	svc.Respond(context.Background(), reply.SessionID, "book a haircut")
	next := svc.Respond(context.Background(), reply.SessionID, "tomorrow 3pm")
	if next.SessionID != reply.SessionID {
		t.Errorf("session id changed: %s -> %s", reply.SessionID, next.SessionID)
	}
	if next.Debug.Slots["service"] != "Haircut" {
		t.Errorf("debug slots = %v, want service carried across turns", next.Debug.Slots)
	}
}

func TestRespondFansOutCompletedBooking(t *testing.T) {
	archive := &recordingArchive{}
	notifier := &recordingNotifier{}
	svc := newTestService(t, Options{Archive: archive, Notifier: notifier})

	var sessionID string
	for _, m := range []string{"book a haircut", "tomorrow 3pm", "i'm Kai", "kai@example.com"} {
		reply := svc.Respond(context.Background(), sessionID, m)
		sessionID = reply.SessionID
	}

	if len(archive.records) != 1 {
		t.Fatalf("archived = %d, want 1", len(archive.records))
	}
	if archive.records[0].Service != "Haircut" || archive.records[0].Contact != "kai@example.com" {
		t.Errorf("archived booking = %+v", archive.records[0])
	}
	if len(notifier.confirmed) != 1 {
		t.Errorf("confirmed = %d, want 1", len(notifier.confirmed))
	}
}

func TestRespondSurvivesArchiveFailure(t *testing.T) {
	archive := &recordingArchive{err: errors.New("db down")}
	svc := newTestService(t, Options{Archive: archive})

	var sessionID string
	var reply Reply
	for _, m := range []string{"book a haircut", "tomorrow 3pm", "i'm Kai", "07123456789"} {
		reply = svc.Respond(context.Background(), sessionID, m)
		sessionID = reply.SessionID
	}
	if reply.Reply == "" {
		t.Fatal("booking reply lost to archive failure")
	}
}

func TestRespondEmptyMessageIsSilence(t *testing.T) {
	svc := newTestService(t, Options{})

	first := svc.Respond(context.Background(), "", "book a haircut")
	reply := svc.Respond(context.Background(), first.SessionID, "")
	if reply.Reply == "" {
		t.Fatal("want a deflection for silence")
	}
}

func TestModeFallsBackToRulesWithoutEngine(t *testing.T) {
	svc := newTestService(t, Options{Mode: ModeLLM}) // no LLM engine wired
	if svc.mode != ModeRules {
		t.Errorf("mode = %q, want rules fallback", svc.mode)
	}
}

func TestRespondSerializesPerSession(t *testing.T) {
	svc := newTestService(t, Options{})
	first := svc.Respond(context.Background(), "", "hello")

	const turns = 8
	var wg sync.WaitGroup
	for i := 0; i < turns; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.Respond(context.Background(), first.SessionID, "thanks")
		}()
	}
	wg.Wait()

	sess, err := svc.store.Peek(context.Background(), first.SessionID)
	if err != nil {
		t.Fatalf("Peek returned error: %v", err)
	}
	// 1 opening turn + 8 concurrent turns, capped at the history limit.
	want := turns + 1
	if want > session.DefaultHistoryLimit {
		want = session.DefaultHistoryLimit
	}
	if len(sess.History) != want {
		t.Fatalf("history length = %d, want %d (lost update?)", len(sess.History), want)
	}
}
