package bootstrap

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/propdesk-ai-platform/internal/chatbot"
	appconfig "github.com/wolfman30/propdesk-ai-platform/internal/config"
	"github.com/wolfman30/propdesk-ai-platform/internal/conversation"
	"github.com/wolfman30/propdesk-ai-platform/internal/leads"
	"github.com/wolfman30/propdesk-ai-platform/pkg/logging"
)

// Store backends accepted by CONVERSATION_STORE and LEAD_STORE.
const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// ConversationBackend is what the API needs from a conversation store: the
// chatbot's read/write surface plus the admin listing.
type ConversationBackend interface {
	chatbot.ConversationStore
	ListByAgency(ctx context.Context, agencyID string, limit int) ([]*conversation.Conversation, error)
}

// BuildConversationStore selects the conversation backend named by cfg.
// The redis and postgres backends need their client to be non-nil.
func BuildConversationStore(cfg *appconfig.Config, redisClient *redis.Client, sqlDB *sql.DB, logger *logging.Logger) (ConversationBackend, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	switch cfg.ConversationStore {
	case "", StoreMemory:
		logger.Info("conversation store", "backend", StoreMemory)
		return conversation.NewMemoryStore(), nil
	case StoreRedis:
		if redisClient == nil {
			return nil, fmt.Errorf("bootstrap: redis conversation store needs a reachable redis")
		}
		logger.Info("conversation store", "backend", StoreRedis, "ttl", cfg.ConversationTTL.String())
		return conversation.NewRedisStore(redisClient, cfg.ConversationTTL), nil
	case StorePostgres:
		if sqlDB == nil {
			return nil, fmt.Errorf("bootstrap: postgres conversation store needs a database")
		}
		logger.Info("conversation store", "backend", StorePostgres)
		return conversation.NewPostgresStore(sqlDB), nil
	default:
		return nil, fmt.Errorf("bootstrap: unknown conversation store %q", cfg.ConversationStore)
	}
}

// BuildLeadRepository selects the lead repository named by cfg.
func BuildLeadRepository(cfg *appconfig.Config, pool *pgxpool.Pool, logger *logging.Logger) (leads.Repository, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	switch cfg.LeadStore {
	case "", StoreMemory:
		logger.Info("lead store", "backend", StoreMemory)
		return leads.NewInMemoryRepository(), nil
	case StorePostgres:
		if pool == nil {
			return nil, fmt.Errorf("bootstrap: postgres lead store needs a database")
		}
		logger.Info("lead store", "backend", StorePostgres)
		return leads.NewPostgresRepository(pool), nil
	default:
		return nil, fmt.Errorf("bootstrap: unknown lead store %q", cfg.LeadStore)
	}
}

// NeedsSQL reports whether any configured store reads from Postgres.
func NeedsSQL(cfg *appconfig.Config) bool {
	return cfg != nil && (cfg.ConversationStore == StorePostgres || cfg.LeadStore == StorePostgres)
}
