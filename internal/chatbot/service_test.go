package chatbot

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/propdesk-ai-platform/internal/conversation"
	"github.com/wolfman30/propdesk-ai-platform/internal/leads"
	"github.com/wolfman30/propdesk-ai-platform/internal/observability/metrics"
	"github.com/wolfman30/propdesk-ai-platform/pkg/logging"
)

type serviceFixture struct {
	svc   *Service
	store *conversation.MemoryStore
	leads *leads.InMemoryRepository
}

func newServiceFixture(t *testing.T) serviceFixture {
	t.Helper()
	store := conversation.NewMemoryStore()
	return newServiceFixtureWithStore(t, store, store)
}

func newServiceFixtureWithStore(t *testing.T, backing *conversation.MemoryStore, store ConversationStore) serviceFixture {
	t.Helper()
	repo := leads.NewInMemoryRepository()
	m := metrics.NewChatbotMetrics(prometheus.NewRegistry())
	logger := logging.Discard()
	svc := NewService(store, NewMaterializer(repo, nil, m, logger), DefaultBrandCatalog(), m, logger)
	return serviceFixture{svc: svc, store: backing, leads: repo}
}

func (f serviceFixture) start(t *testing.T, agencyID, sessionID string) *conversation.Conversation {
	t.Helper()
	conv, err := f.svc.CreateConversation(context.Background(), agencyID, sessionID, nil)
	require.NoError(t, err)
	return conv
}

func (f serviceFixture) send(t *testing.T, conv *conversation.Conversation, message string) *ChatResponse {
	t.Helper()
	resp, err := f.svc.ProcessMessage(context.Background(), conv.ID, message, conv.AgencyID, nil)
	require.NoError(t, err)
	require.NotNil(t, resp)
	return resp
}

func (f serviceFixture) state(t *testing.T, id string) State {
	t.Helper()
	conv, err := f.store.GetConversation(context.Background(), id)
	require.NoError(t, err)
	st, err := DecodeState(conv.Metadata)
	require.NoError(t, err)
	return st
}

// seedState overwrites the stored state of a conversation.
func (f serviceFixture) seedState(t *testing.T, conv *conversation.Conversation, st State) {
	t.Helper()
	raw, err := st.Encode()
	require.NoError(t, err)
	_, err = f.store.UpdateConversation(context.Background(), conv.ID, conversation.ChatUpdate{Metadata: raw})
	require.NoError(t, err)
}

func TestService_CreateConversation(t *testing.T) {
	f := newServiceFixture(t)

	conv := f.start(t, "agency-1", "session-1")
	assert.Equal(t, conversation.StatusActive, conv.Status)
	require.Len(t, conv.Messages, 1)
	greeting := conv.Messages[0]
	assert.Equal(t, conversation.RoleAssistant, greeting.Role)
	assert.Contains(t, greeting.Content, "PropDesk")
	assert.Equal(t, "greeting", greeting.Metadata["step"])
	assert.NotEmpty(t, greeting.QuickReplies)

	st := f.state(t, conv.ID)
	assert.Equal(t, StepGreeting, st.CurrentStep)
	assert.Equal(t, LanguageES, st.Language)
	assert.Equal(t, BrandDefault, st.Brand)
}

func TestService_CreateConversation_RentalsBrand(t *testing.T) {
	f := newServiceFixture(t)

	conv, err := f.svc.CreateConversation(context.Background(), "agency-1", "session-1",
		&RequestContext{SourcePage: "https://example.com/rentas/depa-centro", PropertyID: "unit-7"})
	require.NoError(t, err)
	assert.Contains(t, conv.Messages[0].Content, "PropDesk Rentas")

	st := f.state(t, conv.ID)
	assert.Equal(t, BrandRentals, st.Brand)
	assert.Equal(t, "unit-7", st.LeadData.PropertyID)
}

func TestService_CreateConversation_Errors(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.CreateConversation(context.Background(), " ", "session-1", nil)
	assert.ErrorIs(t, err, ErrMissingAgencyID)

	f.start(t, "agency-1", "session-1")
	_, err = f.svc.CreateConversation(context.Background(), "agency-1", "session-1", nil)
	assert.ErrorIs(t, err, conversation.ErrSessionExists)
}

func TestService_GreetingBranchesToRent(t *testing.T) {
	f := newServiceFixture(t)
	conv := f.start(t, "agency-1", "session-1")

	resp := f.send(t, conv, "quiero rentar")
	assert.Equal(t, "¿Cuál es tu nombre completo?", resp.Message)
	assert.Equal(t, InputText, resp.InputType)

	st := f.state(t, conv.ID)
	assert.Equal(t, StepRentName, st.CurrentStep)
	assert.Equal(t, FlowRentLong, st.FlowType)
	assert.Equal(t, "rent_long", st.LeadData.OperationType)
	assert.Equal(t, LanguageES, st.Language)

	stored, err := f.store.GetConversation(context.Background(), conv.ID)
	require.NoError(t, err)
	require.Len(t, stored.Messages, 3)
	assert.Equal(t, conversation.RoleUser, stored.Messages[1].Role)
	assert.Equal(t, "quiero rentar", stored.Messages[1].Content)
	assert.Equal(t, "greeting", stored.Messages[1].Metadata["step"])
	assert.Equal(t, "rent_name", stored.Messages[2].Metadata["step"])
	assert.Equal(t, "rent_long", stored.Messages[2].Metadata["flowType"])
}

func TestService_PhoneRetry(t *testing.T) {
	f := newServiceFixture(t)
	conv := f.start(t, "agency-1", "session-1")

	st := NewState()
	st.CurrentStep = StepRentPhone
	st.FlowType = FlowRentLong
	st.LeadData = LeadData{Name: "Ana", OperationType: "rent_long"}
	f.seedState(t, conv, st)

	resp := f.send(t, conv, "abc")
	assert.Equal(t, copyText(LanguageES, msgPhoneRetry), resp.Message)
	assert.Equal(t, InputPhone, resp.InputType)

	got := f.state(t, conv.ID)
	assert.Equal(t, StepRentPhone, got.CurrentStep)
	assert.Equal(t, 1, got.RetryCount)
}

func TestService_PhoneRetryExhausted(t *testing.T) {
	f := newServiceFixture(t)
	conv := f.start(t, "agency-1", "session-1")

	st := NewState()
	st.CurrentStep = StepRentPhone
	st.FlowType = FlowRentLong
	st.RetryCount = 2
	st.LeadData = LeadData{Name: "Ana", OperationType: "rent_long"}
	f.seedState(t, conv, st)

	resp := f.send(t, conv, "abc")
	assert.Equal(t, copyText(LanguageES, msgRentBudget), resp.Message)

	got := f.state(t, conv.ID)
	assert.Equal(t, StepRentBudget, got.CurrentStep)
	assert.Equal(t, 0, got.RetryCount)
	assert.Empty(t, got.LeadData.Phone)
}

func TestService_LanguageSwitchRerendersStep(t *testing.T) {
	f := newServiceFixture(t)
	conv := f.start(t, "agency-1", "session-1")

	st := NewState()
	st.CurrentStep = StepRentZone
	st.FlowType = FlowRentLong
	st.LeadData = LeadData{Name: "Ana", Phone: "+529981234567", OperationType: "rent_long"}
	f.seedState(t, conv, st)

	resp := f.send(t, conv, "change to english")
	assert.Equal(t, copyText(LanguageEN, msgSearchZone), resp.Message)
	require.NotEmpty(t, resp.QuickReplies)

	got := f.state(t, conv.ID)
	assert.Equal(t, StepRentZone, got.CurrentStep)
	assert.Equal(t, LanguageEN, got.Language)
	assert.True(t, got.LanguagePinned)
	assert.Equal(t, st.LeadData, got.LeadData)

	// A pinned language is not overridden by later detection.
	resp = f.send(t, conv, "quiero vivir en el centro por favor")
	assert.Equal(t, copyText(LanguageEN, msgMoveDate), resp.Message)
	assert.Equal(t, LanguageEN, f.state(t, conv.ID).Language)
}

func TestService_FirstMessageSetsLanguage(t *testing.T) {
	f := newServiceFixture(t)
	conv := f.start(t, "agency-1", "session-1")

	resp := f.send(t, conv, "Hi, I want to buy a house")
	assert.Equal(t, copyText(LanguageEN, msgAskName), resp.Message)

	st := f.state(t, conv.ID)
	assert.Equal(t, LanguageEN, st.Language)
	assert.Equal(t, StepBuyName, st.CurrentStep)
	assert.Equal(t, FlowBuy, st.FlowType)
}

func TestService_RentFlowCreatesLead(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	conv, err := f.svc.CreateConversation(ctx, "agency-1", "session-1",
		&RequestContext{SourcePage: "/rentas/depa-7", PropertyID: "unit-7"})
	require.NoError(t, err)

	for _, msg := range []string{"quiero rentar", "Ana López", "+52 998 123 4567", "rent_budget_2", "centro", "el próximo mes", "bedrooms_2"} {
		f.send(t, conv, msg)
	}
	resp := f.send(t, conv, "no")
	assert.Contains(t, resp.Message, copyText(LanguageES, msgConfirmIntro))
	assert.Contains(t, resp.Message, "• Nombre: Ana López")
	assert.Contains(t, resp.Message, "• Mascotas: No")
	assert.Equal(t, StepRentConfirm, f.state(t, conv.ID).CurrentStep)

	resp = f.send(t, conv, "confirm")
	require.NotNil(t, resp.Action)
	assert.Equal(t, ActionLeadCreated, resp.Action.Type)
	require.NotEmpty(t, resp.LeadID)
	assert.Equal(t, resp.LeadID, resp.Action.Data["leadId"])
	assert.Equal(t, copyText(LanguageES, msgRentComplete), resp.Message)

	st := f.state(t, conv.ID)
	assert.Equal(t, StepRentComplete, st.CurrentStep)
	assert.Equal(t, resp.LeadID, st.LeadID)

	stored, err := f.store.GetConversation(ctx, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, resp.LeadID, stored.ConvertedToLeadID)
	assert.Equal(t, "Ana López", stored.VisitorName)
	assert.Equal(t, "+529981234567", stored.VisitorPhone)

	lead, err := f.leads.GetByID(ctx, "agency-1", resp.LeadID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", lead.FirstName)
	assert.Equal(t, "López", lead.LastName)
	assert.Equal(t, leads.RegistrationSeller, lead.RegistrationType)
	assert.Equal(t, "cliente", lead.Purpose)
	assert.Equal(t, []string{"unit-7"}, lead.InterestedUnitIDs)
	assert.Contains(t, lead.Notes, conv.ID)

	resp = f.send(t, conv, "no gracias")
	assert.Equal(t, copyText(LanguageES, msgComplete), resp.Message)
	assert.Equal(t, StepComplete, f.state(t, conv.ID).CurrentStep)
}

func TestService_ConfirmReusesLeadForSamePhone(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	confirmed := confirmedRentState()
	first := f.start(t, "agency-1", "session-1")
	f.seedState(t, first, confirmed)
	resp := f.send(t, first, "confirmar")
	require.NotEmpty(t, resp.LeadID)

	second := f.start(t, "agency-1", "session-2")
	f.seedState(t, second, confirmed)
	again := f.send(t, second, "sí")
	assert.Equal(t, resp.LeadID, again.LeadID)

	all, err := f.leads.ListByAgency(ctx, "agency-1", leads.ListLeadsFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestService_ConfirmRestartClearsFlow(t *testing.T) {
	f := newServiceFixture(t)
	conv := f.start(t, "agency-1", "session-1")
	f.seedState(t, conv, confirmedRentState())

	resp := f.send(t, conv, "edit")
	assert.Equal(t, copyText(LanguageES, msgAskName), resp.Message)
	assert.Empty(t, resp.LeadID)

	st := f.state(t, conv.ID)
	assert.Equal(t, StepRentName, st.CurrentStep)
	assert.Empty(t, st.LeadData.Name)
	assert.Empty(t, st.LeadData.Phone)
	assert.Equal(t, "unit-7", st.LeadData.PropertyID)
}

func TestService_ConversationNotFound(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.ProcessMessage(context.Background(), "missing", "hola", "agency-1", nil)
	assert.ErrorIs(t, err, ErrConversationNotFound)

	conv := f.start(t, "agency-1", "session-1")
	_, err = f.svc.ProcessMessage(context.Background(), conv.ID, "hola", "agency-2", nil)
	assert.ErrorIs(t, err, ErrConversationNotFound)

	_, err = f.svc.GetConversation(context.Background(), "agency-2", conv.ID)
	assert.ErrorIs(t, err, ErrConversationNotFound)

	got, err := f.svc.GetConversation(context.Background(), "agency-1", conv.ID)
	require.NoError(t, err)
	assert.Equal(t, conv.ID, got.ID)
}

type failingUpdateStore struct {
	*conversation.MemoryStore
	err error
}

func (s failingUpdateStore) UpdateConversation(context.Context, string, conversation.ChatUpdate) (*conversation.Conversation, error) {
	return nil, s.err
}

func TestService_PersistFailureReturnsApology(t *testing.T) {
	backing := conversation.NewMemoryStore()
	f := newServiceFixtureWithStore(t, backing, failingUpdateStore{MemoryStore: backing, err: errors.New("redis down")})
	conv := f.start(t, "agency-1", "session-1")

	resp := f.send(t, conv, "quiero rentar")
	assert.Equal(t, copyText(LanguageES, msgError), resp.Message)

	st := f.state(t, conv.ID)
	assert.Equal(t, StepGreeting, st.CurrentStep)
	assert.Empty(t, st.FlowType)

	stored, err := backing.GetConversation(context.Background(), conv.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Messages, 1)
}

// staleReadStore returns a snapshot and then lets another writer win the race.
type staleReadStore struct {
	*conversation.MemoryStore
}

func (s staleReadStore) GetConversation(ctx context.Context, id string) (*conversation.Conversation, error) {
	conv, err := s.MemoryStore.GetConversation(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.MemoryStore.UpdateConversation(ctx, id, conversation.ChatUpdate{Metadata: conv.Metadata}); err != nil {
		return nil, err
	}
	return conv, nil
}

func TestService_VersionConflictReturnsApology(t *testing.T) {
	backing := conversation.NewMemoryStore()
	f := newServiceFixtureWithStore(t, backing, staleReadStore{MemoryStore: backing})

	conv, err := backing.CreateConversation(context.Background(), conversation.CreateChatRequest{
		AgencyID:  "agency-1",
		SessionID: "session-1",
	})
	require.NoError(t, err)

	resp := f.send(t, conv, "quiero rentar")
	assert.Equal(t, copyText(LanguageES, msgError), resp.Message)
	assert.Equal(t, StepGreeting, f.state(t, conv.ID).CurrentStep)
}

func TestService_RequestContextMerged(t *testing.T) {
	f := newServiceFixture(t)
	conv := f.start(t, "agency-1", "session-1")

	_, err := f.svc.ProcessMessage(context.Background(), conv.ID, "quiero rentar", "agency-1",
		&RequestContext{CondominiumID: "condo-3", SourcePage: "/rentas/condo-3"})
	require.NoError(t, err)

	st := f.state(t, conv.ID)
	assert.Equal(t, "condo-3", st.LeadData.CondominiumID)
	assert.Equal(t, "/rentas/condo-3", st.LeadData.SourcePage)
	assert.Equal(t, BrandDefault, st.Brand)
}
