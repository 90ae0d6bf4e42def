package conversation

import (
	"encoding/json"
	"errors"
	"sort"
	"time"
)

var (
	// ErrConversationNotFound is returned when no conversation has the requested id.
	ErrConversationNotFound = errors.New("conversation: not found")

	// ErrVersionConflict is returned when a conversation changed since it was loaded.
	ErrVersionConflict = errors.New("conversation: version conflict")

	// ErrSessionExists is returned when the agency already has a conversation for the session.
	ErrSessionExists = errors.New("conversation: session already has a conversation")
)

// Conversation statuses.
const (
	StatusActive = "active"
	StatusClosed = "closed"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// QuickReply is a predefined answer offered to the visitor.
type QuickReply struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// ChatMessage is a single transcript entry. Entries are append-only.
type ChatMessage struct {
	Role         string            `json:"role"`
	Content      string            `json:"content"`
	Timestamp    time.Time         `json:"timestamp"`
	QuickReplies []QuickReply      `json:"quickReplies,omitempty"`
	InputType    string            `json:"inputType,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// Conversation is a public chat session between a website visitor and the agency bot.
type Conversation struct {
	ID                string          `json:"id"`
	AgencyID          string          `json:"agencyId"`
	SessionID         string          `json:"sessionId"`
	Status            string          `json:"status"`
	Messages          []ChatMessage   `json:"messages"`
	Metadata          json.RawMessage `json:"metadata,omitempty"`
	VisitorName       string          `json:"visitorName,omitempty"`
	VisitorPhone      string          `json:"visitorPhone,omitempty"`
	VisitorEmail      string          `json:"visitorEmail,omitempty"`
	LastMessageAt     time.Time       `json:"lastMessageAt"`
	ConvertedToLeadID string          `json:"convertedToLeadId,omitempty"`
	Version           int64           `json:"version"`
	CreatedAt         time.Time       `json:"createdAt"`
}

// CreateChatRequest seeds a new conversation.
type CreateChatRequest struct {
	AgencyID      string
	SessionID     string
	Status        string
	Messages      []ChatMessage
	Metadata      json.RawMessage
	LastMessageAt time.Time
}

// ChatUpdate replaces the metadata and visitor fields of a conversation and
// appends to its transcript. A non-zero ExpectedVersion must match the stored
// version or the update fails with ErrVersionConflict.
type ChatUpdate struct {
	AppendMessages    []ChatMessage
	Metadata          json.RawMessage
	LastMessageAt     time.Time
	ConvertedToLeadID string
	VisitorName       string
	VisitorPhone      string
	VisitorEmail      string
	ExpectedVersion   int64
}

func validateCreate(req CreateChatRequest) error {
	if req.AgencyID == "" {
		return errors.New("conversation: agency id required")
	}
	if req.SessionID == "" {
		return errors.New("conversation: session id required")
	}
	return nil
}

// newConversation builds the record a store persists for req.
func newConversation(id string, req CreateChatRequest, now time.Time) *Conversation {
	status := req.Status
	if status == "" {
		status = StatusActive
	}
	lastMessageAt := req.LastMessageAt
	if lastMessageAt.IsZero() {
		lastMessageAt = now
	}
	messages := req.Messages
	if messages == nil {
		messages = []ChatMessage{}
	}
	return &Conversation{
		ID:            id,
		AgencyID:      req.AgencyID,
		SessionID:     req.SessionID,
		Status:        status,
		Messages:      messages,
		Metadata:      req.Metadata,
		LastMessageAt: lastMessageAt,
		Version:       1,
		CreatedAt:     now,
	}
}

// apply merges upd into c and bumps the version.
func (c *Conversation) apply(upd ChatUpdate) {
	c.Messages = append(c.Messages, upd.AppendMessages...)
	if upd.Metadata != nil {
		c.Metadata = upd.Metadata
	}
	if !upd.LastMessageAt.IsZero() {
		c.LastMessageAt = upd.LastMessageAt
	}
	if upd.ConvertedToLeadID != "" {
		c.ConvertedToLeadID = upd.ConvertedToLeadID
	}
	if upd.VisitorName != "" {
		c.VisitorName = upd.VisitorName
	}
	if upd.VisitorPhone != "" {
		c.VisitorPhone = upd.VisitorPhone
	}
	if upd.VisitorEmail != "" {
		c.VisitorEmail = upd.VisitorEmail
	}
	c.Version++
}

func sortByActivity(convs []*Conversation) {
	sort.Slice(convs, func(i, j int) bool {
		return convs[i].LastMessageAt.After(convs[j].LastMessageAt)
	})
}
