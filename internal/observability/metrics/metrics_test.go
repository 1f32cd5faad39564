package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestChatMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewChatMetrics(reg)
	m.ObserveMessage("booking")
	m.ObserveMessage("smalltalk")
	m.ObserveBookingCompleted()
	m.ObserveEscalation()
	m.ObserveLLMLatency(0.5)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	names := make(map[string]*dto.MetricFamily, len(families))
	for _, f := range families {
		names[f.GetName()] = f
	}
	for _, want := range []string{
		"kai_chat_messages_total",
		"kai_chat_bookings_completed_total",
		"kai_chat_escalations_total",
		"kai_chat_llm_latency_seconds",
	} {
		if names[want] == nil {
			t.Errorf("metric %s not registered", want)
		}
	}

	messages := names["kai_chat_messages_total"]
	if got := len(messages.GetMetric()); got != 2 {
		t.Errorf("messages_total series = %d, want one per branch", got)
	}
}

func TestChatMetricsNilSafe(t *testing.T) {
	var m *ChatMetrics
	m.ObserveMessage("booking")
	m.ObserveBookingCompleted()
	m.ObserveEscalation()
	m.ObserveLLMLatency(0.1)
}
