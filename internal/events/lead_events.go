package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wolfman30/propdesk-ai-platform/internal/leads"
)

type eventInserter interface {
	Insert(ctx context.Context, agencyID string, eventType string, payload any) (uuid.UUID, error)
}

// OutboxLeadNotifier records lead creations in the outbox instead of
// notifying inline. A Deliverer picks them up.
type OutboxLeadNotifier struct {
	outbox eventInserter
	now    func() time.Time
}

func NewOutboxLeadNotifier(outbox *OutboxStore) *OutboxLeadNotifier {
	if outbox == nil {
		panic("events: outbox store required")
	}
	return &OutboxLeadNotifier{outbox: outbox, now: func() time.Time { return time.Now().UTC() }}
}

// LeadCreated enqueues a LeadCreatedV1 event.
func (n *OutboxLeadNotifier) LeadCreated(ctx context.Context, lead *leads.Lead) error {
	if n == nil || lead == nil {
		return nil
	}
	event := LeadCreatedV1{
		EventID:    uuid.NewString(),
		AgencyID:   lead.AgencyID,
		LeadID:     lead.ID,
		Lead:       *lead,
		OccurredAt: n.now(),
	}
	if _, err := n.outbox.Insert(ctx, lead.AgencyID, TypeLeadCreatedV1, event); err != nil {
		return fmt.Errorf("events: enqueue lead created: %w", err)
	}
	return nil
}

// LeadCreatedSink receives delivered lead events.
type LeadCreatedSink interface {
	LeadCreated(ctx context.Context, lead *leads.Lead) error
}

// LeadCreatedHandler delivers LeadCreatedV1 entries to sink. Other event
// types are acknowledged and dropped.
type LeadCreatedHandler struct {
	sink LeadCreatedSink
}

func NewLeadCreatedHandler(sink LeadCreatedSink) *LeadCreatedHandler {
	return &LeadCreatedHandler{sink: sink}
}

func (h *LeadCreatedHandler) Handle(ctx context.Context, entry OutboxEntry) error {
	if entry.Type != TypeLeadCreatedV1 || h.sink == nil {
		return nil
	}
	var event LeadCreatedV1
	if err := json.Unmarshal(entry.Payload, &event); err != nil {
		return fmt.Errorf("events: decode %s: %w", entry.Type, err)
	}
	return h.sink.LeadCreated(ctx, &event.Lead)
}
