package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestChatbotMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewChatbotMetrics(reg)
	m.ObserveTurn("rent_name", "ok", 0.02)
	m.ObserveLead("rent_long", "created")
	m.ObserveLead("rent_long", "created")
	m.ObservePhoneRetry()
	m.ObserveError("persist")
	m.ObserveConversationStarted("default")

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	leads := findFamily(families, "propdesk_chatbot_leads_total")
	if leads == nil {
		t.Fatal("expected leads_total family")
	}
	if got := leads.GetMetric()[0].GetCounter().GetValue(); got != 2 {
		t.Fatalf("expected 2 leads, got %v", got)
	}
	if findFamily(families, "propdesk_chatbot_turn_latency_seconds") == nil {
		t.Fatal("expected latency histogram")
	}
}

func TestChatbotMetricsDefaultRegistry(t *testing.T) {
	m := NewChatbotMetrics(nil)
	m.ObserveTurn("greeting", "ok", 0.1)
}

func TestChatbotMetricsNilSafe(t *testing.T) {
	var m *ChatbotMetrics
	m.ObserveTurn("greeting", "ok", 0.1)
	m.ObserveLead("buy", "reused")
	m.ObservePhoneRetry()
	m.ObserveError("load")
	m.ObserveConversationStarted("rentals")
}

func findFamily(families []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, f := range families {
		if f.GetName() == name {
			return f
		}
	}
	return nil
}
