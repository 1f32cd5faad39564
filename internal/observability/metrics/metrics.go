package metrics

import "github.com/prometheus/client_golang/prometheus"

// ChatMetrics exposes counters/histograms for the assistant's chat flow.
type ChatMetrics struct {
	messagesTotal     *prometheus.CounterVec
	bookingsCompleted prometheus.Counter
	escalationsTotal  prometheus.Counter
	llmLatency        prometheus.Histogram
}

func NewChatMetrics(reg prometheus.Registerer) *ChatMetrics {
	m := &ChatMetrics{
		messagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kai",
			Subsystem: "chat",
			Name:      "messages_total",
			Help:      "Inbound chat messages by handling branch",
		}, []string{"branch"}),
		bookingsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "kai",
			Subsystem: "chat",
			Name:      "bookings_completed_total",
			Help:      "Bookings finalized through the assistant",
		}),
		escalationsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "kai",
			Subsystem: "chat",
			Name:      "escalations_total",
			Help:      "Turns handed off to a human",
		}),
		llmLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "kai",
			Subsystem: "chat",
			Name:      "llm_latency_seconds",
			Help:      "Latency of model planning calls",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.messagesTotal, m.bookingsCompleted, m.escalationsTotal, m.llmLatency)
	return m
}

func (m *ChatMetrics) ObserveMessage(branch string) {
	if m == nil {
		return
	}
	m.messagesTotal.WithLabelValues(branch).Inc()
}

func (m *ChatMetrics) ObserveBookingCompleted() {
	if m == nil {
		return
	}
	m.bookingsCompleted.Inc()
}

func (m *ChatMetrics) ObserveEscalation() {
	if m == nil {
		return
	}
	m.escalationsTotal.Inc()
}

func (m *ChatMetrics) ObserveLLMLatency(seconds float64) {
	if m == nil {
		return
	}
	m.llmLatency.Observe(seconds)
}
