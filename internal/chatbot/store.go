package chatbot

import (
	"context"
	"errors"

	"github.com/wolfman30/propdesk-ai-platform/internal/conversation"
	"github.com/wolfman30/propdesk-ai-platform/internal/leads"
)

var (
	// ErrConversationNotFound is returned when a message targets an unknown conversation.
	ErrConversationNotFound = conversation.ErrConversationNotFound

	// ErrMissingAgencyID is returned when a conversation is opened without an agency.
	ErrMissingAgencyID = errors.New("chatbot: agency id required")
)

// ConversationStore persists conversations and their transcripts.
type ConversationStore interface {
	GetConversation(ctx context.Context, id string) (*conversation.Conversation, error)
	CreateConversation(ctx context.Context, req conversation.CreateChatRequest) (*conversation.Conversation, error)
	UpdateConversation(ctx context.Context, id string, upd conversation.ChatUpdate) (*conversation.Conversation, error)
}

// LeadStore is the subset of the lead repository the materializer needs.
type LeadStore interface {
	// CheckDuplicate treats empty name arguments as wildcards.
	CheckDuplicate(ctx context.Context, agencyID, firstName, lastName, phone string) (string, error)
	Create(ctx context.Context, req *leads.CreateLeadRequest) (*leads.Lead, error)
}

// LeadNotifier is told about every lead the chatbot creates.
type LeadNotifier interface {
	LeadCreated(ctx context.Context, lead *leads.Lead) error
}

// RequestContext is page context supplied by the embedding website.
type RequestContext struct {
	PropertyID    string `json:"propertyId,omitempty"`
	CondominiumID string `json:"condominiumId,omitempty"`
	SourcePage    string `json:"sourcePage,omitempty"`
}
