package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/propdesk-ai-platform/internal/leads"
)

type recordedInsert struct {
	agencyID  string
	eventType string
	payload   any
}

type fakeInserter struct {
	inserts []recordedInsert
	err     error
}

func (f *fakeInserter) Insert(_ context.Context, agencyID, eventType string, payload any) (uuid.UUID, error) {
	if f.err != nil {
		return uuid.Nil, f.err
	}
	f.inserts = append(f.inserts, recordedInsert{agencyID, eventType, payload})
	return uuid.New(), nil
}

type recordingSink struct {
	leads []*leads.Lead
	err   error
}

func (s *recordingSink) LeadCreated(_ context.Context, lead *leads.Lead) error {
	s.leads = append(s.leads, lead)
	return s.err
}

func TestOutboxLeadNotifierEnqueues(t *testing.T) {
	outbox := &fakeInserter{}
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	n := &OutboxLeadNotifier{outbox: outbox, now: func() time.Time { return fixed }}

	lead := &leads.Lead{ID: "lead-1", AgencyID: "agency-1", FirstName: "Ana", Phone: "+529981234567"}
	require.NoError(t, n.LeadCreated(context.Background(), lead))

	require.Len(t, outbox.inserts, 1)
	got := outbox.inserts[0]
	assert.Equal(t, "agency-1", got.agencyID)
	assert.Equal(t, TypeLeadCreatedV1, got.eventType)
	event, ok := got.payload.(LeadCreatedV1)
	require.True(t, ok)
	assert.Equal(t, "lead-1", event.LeadID)
	assert.Equal(t, "Ana", event.Lead.FirstName)
	assert.Equal(t, fixed, event.OccurredAt)
	assert.NotEmpty(t, event.EventID)
}

func TestOutboxLeadNotifierErrors(t *testing.T) {
	n := &OutboxLeadNotifier{outbox: &fakeInserter{err: errors.New("db down")}, now: time.Now}
	err := n.LeadCreated(context.Background(), &leads.Lead{ID: "lead-1", AgencyID: "agency-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "enqueue lead created")

	var nilNotifier *OutboxLeadNotifier
	assert.NoError(t, nilNotifier.LeadCreated(context.Background(), &leads.Lead{}))
	assert.NoError(t, n.LeadCreated(context.Background(), nil))
}

func TestLeadCreatedHandler(t *testing.T) {
	sink := &recordingSink{}
	h := NewLeadCreatedHandler(sink)

	payload, err := json.Marshal(LeadCreatedV1{LeadID: "lead-1", Lead: leads.Lead{ID: "lead-1", FirstName: "Ana"}})
	require.NoError(t, err)

	require.NoError(t, h.Handle(context.Background(), OutboxEntry{Type: TypeLeadCreatedV1, Payload: payload}))
	require.Len(t, sink.leads, 1)
	assert.Equal(t, "Ana", sink.leads[0].FirstName)

	require.NoError(t, h.Handle(context.Background(), OutboxEntry{Type: "other.v1", Payload: payload}))
	assert.Len(t, sink.leads, 1)

	assert.Error(t, h.Handle(context.Background(), OutboxEntry{Type: TypeLeadCreatedV1, Payload: []byte("{")}))

	sink.err = errors.New("smtp down")
	assert.Error(t, h.Handle(context.Background(), OutboxEntry{Type: TypeLeadCreatedV1, Payload: payload}))
}
