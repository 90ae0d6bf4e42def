package chatbot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/propdesk-ai-platform/internal/conversation"
	"github.com/wolfman30/propdesk-ai-platform/internal/observability/metrics"
	"github.com/wolfman30/propdesk-ai-platform/pkg/logging"
)

// Turn outcomes reported to metrics.
const (
	outcomeAdvanced       = "advanced"
	outcomeRetry          = "retry"
	outcomeLanguageSwitch = "language_switch"
	outcomeError          = "error"
)

// Service runs the public chatbot: it loads a conversation, applies the
// visitor's message to the dialogue graph and persists the result.
type Service struct {
	store        ConversationStore
	materializer *Materializer
	brands       BrandCatalog
	metrics      *metrics.ChatbotMetrics
	logger       *logging.Logger
	tracer       trace.Tracer
	now          func() time.Time
}

// NewService wires the orchestrator. materializer may be nil, in which case
// confirmations never create leads.
func NewService(store ConversationStore, materializer *Materializer, brands BrandCatalog, m *metrics.ChatbotMetrics, logger *logging.Logger) *Service {
	if store == nil {
		panic("chatbot: conversation store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		store:        store,
		materializer: materializer,
		brands:       brands,
		metrics:      m,
		logger:       logger,
		tracer:       otel.Tracer("propdesk.internal.chatbot"),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// CreateConversation opens a conversation for a visitor session and seeds its
// transcript with the greeting.
func (s *Service) CreateConversation(ctx context.Context, agencyID, sessionID string, rc *RequestContext) (*conversation.Conversation, error) {
	if strings.TrimSpace(agencyID) == "" {
		return nil, ErrMissingAgencyID
	}
	ctx, span := s.tracer.Start(ctx, "chatbot.create_conversation",
		trace.WithAttributes(attribute.String("agency_id", agencyID)))
	defer span.End()

	st := NewState()
	mergeContext(&st, rc)
	st.Brand = s.brands.Resolve(st.LeadData.SourcePage)

	resp := BuildResponse(StepGreeting, st, s.brands.Context(st.Brand))
	metadata, err := st.Encode()
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	now := s.now()
	conv, err := s.store.CreateConversation(ctx, conversation.CreateChatRequest{
		AgencyID:      agencyID,
		SessionID:     sessionID,
		Status:        conversation.StatusActive,
		Messages:      []conversation.ChatMessage{assistantMessage(resp, StepGreeting, st, now)},
		Metadata:      metadata,
		LastMessageAt: now,
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("chatbot: create conversation: %w", err)
	}

	s.metrics.ObserveConversationStarted(string(st.Brand))
	s.logger.Info("chat conversation created",
		"conversation_id", conv.ID,
		"agency_id", agencyID,
		"brand", st.Brand,
	)
	return conv, nil
}

// GetConversation returns a conversation owned by agencyID.
func (s *Service) GetConversation(ctx context.Context, agencyID, conversationID string) (*conversation.Conversation, error) {
	conv, err := s.store.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if conv.AgencyID != agencyID {
		return nil, ErrConversationNotFound
	}
	return conv, nil
}

// ProcessMessage handles one visitor turn. Unknown conversations yield
// ErrConversationNotFound; any other failure is logged and answered with a
// localized apology, leaving the stored conversation unchanged.
func (s *Service) ProcessMessage(ctx context.Context, conversationID, message, agencyID string, rc *RequestContext) (*ChatResponse, error) {
	start := s.now()
	ctx, span := s.tracer.Start(ctx, "chatbot.process_message",
		trace.WithAttributes(
			attribute.String("conversation_id", conversationID),
			attribute.String("agency_id", agencyID),
		))
	defer span.End()

	conv, err := s.store.GetConversation(ctx, conversationID)
	if err != nil {
		if errors.Is(err, conversation.ErrConversationNotFound) {
			return nil, ErrConversationNotFound
		}
		span.RecordError(err)
		return s.failTurn(conversationID, LanguageES, "load", err, start), nil
	}
	if conv.AgencyID != agencyID {
		return nil, ErrConversationNotFound
	}

	st, err := DecodeState(conv.Metadata)
	if err != nil {
		span.RecordError(err)
		return s.failTurn(conversationID, LanguageES, "decode", err, start), nil
	}
	mergeContext(&st, rc)
	if st.Brand == "" {
		st.Brand = s.brands.Resolve(st.LeadData.SourcePage)
	}

	text := strings.TrimSpace(message)
	if st.LeadData.OperationType == "" && !st.LanguagePinned {
		if lang, ok := detectDecisive(text); ok {
			st.Language = lang
		}
	}

	brand := s.brands.Context(st.Brand)
	prevStep := st.CurrentStep
	next := ApplyInput(prevStep, text, st)

	if DetectIntent(text).IsLanguageSwitch() {
		resp := BuildResponse(prevStep, next, brand)
		if err := s.persistTurn(ctx, conv, text, prevStep, st, next, resp); err != nil {
			span.RecordError(err)
			return s.failTurn(conversationID, next.Language, "persist", err, start), nil
		}
		s.metrics.ObserveTurn(string(prevStep), outcomeLanguageSwitch, s.now().Sub(start).Seconds())
		return withIDs(resp, next), nil
	}

	nextStep := NextStep(prevStep, text, st)

	var createdLeadID string
	if prevStep.IsConfirm() && isAffirmative(text) && next.LeadID == "" && s.materializer != nil {
		leadID, err := s.materializer.Materialize(ctx, agencyID, conv.ID, next)
		if err != nil {
			span.RecordError(err)
			return s.failTurn(conversationID, next.Language, "materialize", err, start), nil
		}
		if leadID != "" {
			next.LeadID = leadID
			createdLeadID = leadID
		}
	}

	next.CurrentStep = nextStep
	resp := BuildResponse(nextStep, next, brand)
	if createdLeadID != "" {
		resp.Action = &Action{Type: ActionLeadCreated, Data: map[string]any{"leadId": createdLeadID}}
	}

	if err := s.persistTurn(ctx, conv, text, prevStep, st, next, resp); err != nil {
		span.RecordError(err)
		return s.failTurn(conversationID, next.Language, "persist", err, start), nil
	}

	outcome := outcomeAdvanced
	if nextStep == prevStep && prevStep.IsPhone() {
		outcome = outcomeRetry
		s.metrics.ObservePhoneRetry()
	}
	s.metrics.ObserveTurn(string(nextStep), outcome, s.now().Sub(start).Seconds())
	s.logger.Debug("chat turn processed",
		"conversation_id", conversationID,
		"from_step", prevStep,
		"to_step", nextStep,
		"language", next.Language,
	)
	return withIDs(resp, next), nil
}

// persistTurn appends the visitor message and reply, replacing the stored state.
func (s *Service) persistTurn(ctx context.Context, conv *conversation.Conversation, text string, prevStep Step, prev, next State, resp ChatResponse) error {
	metadata, err := next.Encode()
	if err != nil {
		return err
	}
	now := s.now()
	user := conversation.ChatMessage{
		Role:      conversation.RoleUser,
		Content:   text,
		Timestamp: now,
		Metadata:  messageMetadata(prevStep, prev),
	}
	_, err = s.store.UpdateConversation(ctx, conv.ID, conversation.ChatUpdate{
		AppendMessages:    []conversation.ChatMessage{user, assistantMessage(resp, next.CurrentStep, next, now)},
		Metadata:          metadata,
		LastMessageAt:     now,
		ConvertedToLeadID: next.LeadID,
		VisitorName:       next.LeadData.Name,
		VisitorPhone:      next.LeadData.Phone,
		VisitorEmail:      next.LeadData.Email,
		ExpectedVersion:   conv.Version,
	})
	if err != nil {
		return fmt.Errorf("chatbot: persist turn: %w", err)
	}
	return nil
}

func (s *Service) failTurn(conversationID string, lang Language, stage string, err error, start time.Time) *ChatResponse {
	s.logger.Error("chat turn failed",
		"conversation_id", conversationID,
		"stage", stage,
		"error", err,
	)
	s.metrics.ObserveError(stage)
	s.metrics.ObserveTurn("", outcomeError, s.now().Sub(start).Seconds())
	resp := ErrorResponse(lang)
	return &resp
}

func mergeContext(st *State, rc *RequestContext) {
	if rc == nil {
		return
	}
	if rc.PropertyID != "" {
		st.LeadData.PropertyID = rc.PropertyID
	}
	if rc.CondominiumID != "" {
		st.LeadData.CondominiumID = rc.CondominiumID
	}
	if rc.SourcePage != "" {
		st.LeadData.SourcePage = rc.SourcePage
	}
}

func assistantMessage(resp ChatResponse, step Step, st State, at time.Time) conversation.ChatMessage {
	return conversation.ChatMessage{
		Role:         conversation.RoleAssistant,
		Content:      resp.Message,
		Timestamp:    at,
		QuickReplies: resp.QuickReplies,
		InputType:    string(resp.InputType),
		Metadata:     messageMetadata(step, st),
	}
}

func messageMetadata(step Step, st State) map[string]string {
	md := map[string]string{
		"step":     string(step),
		"language": string(st.Language),
	}
	if st.FlowType != "" {
		md["flowType"] = string(st.FlowType)
	}
	return md
}

func withIDs(resp ChatResponse, st State) *ChatResponse {
	resp.LeadID = st.LeadID
	resp.AppointmentID = st.AppointmentID
	return &resp
}
