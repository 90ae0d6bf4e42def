package conversation

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps chat conversations in process memory. Used by tests, the
// simulator and single-instance development servers.
type MemoryStore struct {
	mu            sync.RWMutex
	conversations map[string]*Conversation
	sessions      map[string]string
	now           func() time.Time
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		conversations: make(map[string]*Conversation),
		sessions:      make(map[string]string),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// CreateConversation stores a new conversation for the session.
func (s *MemoryStore) CreateConversation(ctx context.Context, req CreateChatRequest) (*Conversation, error) {
	if err := validateCreate(req); err != nil {
		return nil, err
	}
	key := sessionKey(req.AgencyID, req.SessionID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[key]; exists {
		return nil, ErrSessionExists
	}
	conv := newConversation(uuid.NewString(), req, s.now())
	s.conversations[conv.ID] = conv.clone()
	s.sessions[key] = conv.ID
	return conv, nil
}

// GetConversation returns a copy of the stored conversation.
func (s *MemoryStore) GetConversation(ctx context.Context, id string) (*Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conv, ok := s.conversations[id]
	if !ok {
		return nil, ErrConversationNotFound
	}
	return conv.clone(), nil
}

// UpdateConversation applies upd under the store lock.
func (s *MemoryStore) UpdateConversation(ctx context.Context, id string, upd ChatUpdate) (*Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.conversations[id]
	if !ok {
		return nil, ErrConversationNotFound
	}
	if upd.ExpectedVersion != 0 && upd.ExpectedVersion != conv.Version {
		return nil, ErrVersionConflict
	}
	conv.apply(upd)
	return conv.clone(), nil
}

// ListByAgency returns up to limit conversations, most recently active first.
func (s *MemoryStore) ListByAgency(ctx context.Context, agencyID string, limit int) ([]*Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Conversation, 0)
	for _, conv := range s.conversations {
		if conv.AgencyID == agencyID {
			out = append(out, conv.clone())
		}
	}
	sortByActivity(out)
	if limit <= 0 {
		limit = 50
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func sessionKey(agencyID, sessionID string) string {
	return agencyID + ":" + sessionID
}

// clone deep-copies the transcript and metadata so callers cannot mutate stored state.
func (c *Conversation) clone() *Conversation {
	out := *c
	out.Messages = make([]ChatMessage, len(c.Messages))
	for i, msg := range c.Messages {
		if msg.QuickReplies != nil {
			msg.QuickReplies = append([]QuickReply(nil), msg.QuickReplies...)
		}
		if msg.Metadata != nil {
			md := make(map[string]string, len(msg.Metadata))
			for k, v := range msg.Metadata {
				md[k] = v
			}
			msg.Metadata = md
		}
		out.Messages[i] = msg
	}
	if c.Metadata != nil {
		out.Metadata = append(json.RawMessage(nil), c.Metadata...)
	}
	return &out
}
