package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const (
	chatConversationKeyPrefix = "chat_conversation:"
	chatSessionKeyPrefix      = "chat_session:"
	chatAgencyKeyPrefix       = "chat_agency:"

	defaultChatTTL = 30 * 24 * time.Hour
)

// RedisStore keeps chat conversations as JSON documents in Redis. Updates use
// WATCH/MULTI so concurrent writers to one conversation cannot interleave.
type RedisStore struct {
	redis  *redis.Client
	tracer trace.Tracer
	ttl    time.Duration
	now    func() time.Time
}

// NewRedisStore builds a Redis-backed store. A zero ttl selects 30 days.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if client == nil {
		panic("conversation: redis client required")
	}
	if ttl <= 0 {
		ttl = defaultChatTTL
	}
	return &RedisStore{
		redis:  client,
		tracer: otel.Tracer("propdesk.internal.conversation.redis"),
		ttl:    ttl,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// CreateConversation stores a new conversation and claims the session.
func (s *RedisStore) CreateConversation(ctx context.Context, req CreateChatRequest) (*Conversation, error) {
	if err := validateCreate(req); err != nil {
		return nil, err
	}
	ctx, span := s.tracer.Start(ctx, "conversation.redis.create")
	defer span.End()

	conv := newConversation(uuid.NewString(), req, s.now())
	data, err := json.Marshal(conv)
	if err != nil {
		return nil, fmt.Errorf("conversation: marshal conversation: %w", err)
	}

	claimed, err := s.redis.SetNX(ctx, chatSessionKey(req.AgencyID, req.SessionID), conv.ID, s.ttl).Result()
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: claim session: %w", err)
	}
	if !claimed {
		return nil, ErrSessionExists
	}

	agencyKey := chatAgencyKey(conv.AgencyID)
	pipe := s.redis.TxPipeline()
	pipe.Set(ctx, chatConversationKey(conv.ID), data, s.ttl)
	pipe.ZAdd(ctx, agencyKey, redis.Z{Score: activityScore(conv), Member: conv.ID})
	pipe.Expire(ctx, agencyKey, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: save conversation: %w", err)
	}
	return conv, nil
}

// GetConversation loads a conversation by id.
func (s *RedisStore) GetConversation(ctx context.Context, id string) (*Conversation, error) {
	ctx, span := s.tracer.Start(ctx, "conversation.redis.get")
	defer span.End()

	raw, err := s.redis.Get(ctx, chatConversationKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrConversationNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: load conversation: %w", err)
	}
	var conv Conversation
	if err := json.Unmarshal(raw, &conv); err != nil {
		return nil, fmt.Errorf("conversation: decode conversation: %w", err)
	}
	return &conv, nil
}

// UpdateConversation applies upd inside a WATCH transaction. A concurrent
// writer makes the transaction fail with ErrVersionConflict.
func (s *RedisStore) UpdateConversation(ctx context.Context, id string, upd ChatUpdate) (*Conversation, error) {
	ctx, span := s.tracer.Start(ctx, "conversation.redis.update")
	defer span.End()

	key := chatConversationKey(id)
	var updated Conversation
	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return ErrConversationNotFound
			}
			return fmt.Errorf("conversation: load conversation: %w", err)
		}
		if err := json.Unmarshal(raw, &updated); err != nil {
			return fmt.Errorf("conversation: decode conversation: %w", err)
		}
		if upd.ExpectedVersion != 0 && upd.ExpectedVersion != updated.Version {
			return ErrVersionConflict
		}
		updated.apply(upd)
		data, err := json.Marshal(&updated)
		if err != nil {
			return fmt.Errorf("conversation: marshal conversation: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.ttl)
			pipe.ZAdd(ctx, chatAgencyKey(updated.AgencyID), redis.Z{Score: activityScore(&updated), Member: updated.ID})
			return nil
		})
		return err
	}

	if err := s.redis.Watch(ctx, txf, key); err != nil {
		if errors.Is(err, redis.TxFailedErr) {
			return nil, ErrVersionConflict
		}
		if !errors.Is(err, ErrConversationNotFound) && !errors.Is(err, ErrVersionConflict) {
			span.RecordError(err)
		}
		return nil, err
	}
	return &updated, nil
}

// ListByAgency returns up to limit conversations, most recently active first.
// Expired conversations are dropped from the index as they are found.
func (s *RedisStore) ListByAgency(ctx context.Context, agencyID string, limit int) ([]*Conversation, error) {
	ctx, span := s.tracer.Start(ctx, "conversation.redis.list")
	defer span.End()

	if limit <= 0 {
		limit = 50
	}
	agencyKey := chatAgencyKey(agencyID)
	ids, err := s.redis.ZRevRange(ctx, agencyKey, 0, int64(limit-1)).Result()
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: list conversations: %w", err)
	}
	if len(ids) == 0 {
		return []*Conversation{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = chatConversationKey(id)
	}
	values, err := s.redis.MGet(ctx, keys...).Result()
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: load conversations: %w", err)
	}

	out := make([]*Conversation, 0, len(values))
	for i, value := range values {
		raw, ok := value.(string)
		if !ok {
			s.redis.ZRem(ctx, agencyKey, ids[i])
			continue
		}
		var conv Conversation
		if err := json.Unmarshal([]byte(raw), &conv); err != nil {
			span.RecordError(err)
			continue
		}
		out = append(out, &conv)
	}
	return out, nil
}

func chatConversationKey(id string) string {
	return chatConversationKeyPrefix + id
}

func chatSessionKey(agencyID, sessionID string) string {
	return chatSessionKeyPrefix + sessionKey(agencyID, sessionID)
}

func chatAgencyKey(agencyID string) string {
	return chatAgencyKeyPrefix + agencyID
}

func activityScore(conv *Conversation) float64 {
	return float64(conv.LastMessageAt.UnixMilli())
}
