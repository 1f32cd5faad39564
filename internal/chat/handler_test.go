package chat

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kaidodd21-ctrl/kai-assistant/pkg/logging"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	return NewHandler(newTestService(t, Options{}), logging.Default())
}

func postChat(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Chat(rec, req)
	return rec
}

func TestChatEndpointContract(t *testing.T) {
	h := newTestHandler(t)

	rec := postChat(t, h, `{"message":"book a haircut","session_id":""}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	var resp ChatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.SessionID == "" {
		t.Error("response missing session_id")
	}
	if !strings.Contains(resp.Reply, "Haircut") {
		t.Errorf("reply = %q", resp.Reply)
	}
	if resp.Debug.Slots["service"] != "Haircut" {
		t.Errorf("debug slots = %v", resp.Debug.Slots)
	}
}

func TestChatEndpointContinuesSession(t *testing.T) {
	h := newTestHandler(t)

	rec := postChat(t, h, `{"message":"book a massage"}`)
	var first ChatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &first); err != nil {
		t.Fatalf("decode: %v", err)
	}

	rec = postChat(t, h, `{"message":"tomorrow 3pm","session_id":"`+first.SessionID+`"}`)
	var second ChatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &second); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if second.SessionID != first.SessionID {
		t.Errorf("session id changed across turns")
	}
	if second.Debug.Slots["datetime"] == "" {
		t.Errorf("debug slots = %v, want datetime filled", second.Debug.Slots)
	}
}

func TestChatEndpointRejectsBadJSON(t *testing.T) {
	h := newTestHandler(t)
	rec := postChat(t, h, `{"message": `)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	h := newTestHandler(t)
	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("body = %s", rec.Body)
	}
}
