package events

import (
	"time"

	"github.com/wolfman30/propdesk-ai-platform/internal/leads"
)

// Event types written to the outbox.
const (
	TypeLeadCreatedV1 = "chatbot.lead_created.v1"
)

// LeadCreatedV1 is emitted when the chatbot registers a lead. The lead is
// embedded so deliveries do not need to read it back.
type LeadCreatedV1 struct {
	EventID    string     `json:"event_id"`
	AgencyID   string     `json:"agency_id"`
	LeadID     string     `json:"lead_id"`
	Lead       leads.Lead `json:"lead"`
	OccurredAt time.Time  `json:"occurred_at"`
}
