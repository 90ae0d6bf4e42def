package metrics

import "github.com/prometheus/client_golang/prometheus"

// ChatbotMetrics exposes counters/histograms for the public lead-intake chatbot.
type ChatbotMetrics struct {
	turnsTotal    *prometheus.CounterVec
	leadsTotal    *prometheus.CounterVec
	phoneRetries  prometheus.Counter
	errorsTotal   *prometheus.CounterVec
	turnLatency   *prometheus.HistogramVec
	conversations *prometheus.CounterVec
}

func NewChatbotMetrics(reg prometheus.Registerer) *ChatbotMetrics {
	m := &ChatbotMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "propdesk",
			Subsystem: "chatbot",
			Name:      "turns_total",
			Help:      "Processed visitor turns by step reached and outcome",
		}, []string{"step", "outcome"}),
		leadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "propdesk",
			Subsystem: "chatbot",
			Name:      "leads_total",
			Help:      "Lead materialization results by flow",
		}, []string{"flow", "result"}),
		phoneRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "propdesk",
			Subsystem: "chatbot",
			Name:      "phone_retries_total",
			Help:      "Invalid phone submissions that triggered a re-prompt",
		}),
		errorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "propdesk",
			Subsystem: "chatbot",
			Name:      "errors_total",
			Help:      "Turns that failed and were answered with an apology",
		}, []string{"stage"}),
		turnLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "propdesk",
			Subsystem: "chatbot",
			Name:      "turn_latency_seconds",
			Help:      "Latency of a full load-process-persist turn",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
		conversations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "propdesk",
			Subsystem: "chatbot",
			Name:      "conversations_started_total",
			Help:      "Conversations created by brand",
		}, []string{"brand"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turnsTotal, m.leadsTotal, m.phoneRetries, m.errorsTotal, m.turnLatency, m.conversations)
	return m
}

func (m *ChatbotMetrics) ObserveTurn(step, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(step, outcome).Inc()
	m.turnLatency.WithLabelValues(outcome).Observe(seconds)
}

func (m *ChatbotMetrics) ObserveLead(flow, result string) {
	if m == nil {
		return
	}
	m.leadsTotal.WithLabelValues(flow, result).Inc()
}

func (m *ChatbotMetrics) ObservePhoneRetry() {
	if m == nil {
		return
	}
	m.phoneRetries.Inc()
}

func (m *ChatbotMetrics) ObserveError(stage string) {
	if m == nil {
		return
	}
	m.errorsTotal.WithLabelValues(stage).Inc()
}

func (m *ChatbotMetrics) ObserveConversationStarted(brand string) {
	if m == nil {
		return
	}
	m.conversations.WithLabelValues(brand).Inc()
}
