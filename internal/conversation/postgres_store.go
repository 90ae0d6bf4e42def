package conversation

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

const chatConversationColumns = `id, agency_id, session_id, status, messages, metadata,
	visitor_name, visitor_phone, visitor_email, last_message_at, converted_to_lead_id, version, created_at`

// PostgresStore persists chat conversations in the chat_conversations table.
// The transcript is a JSONB array appended to in place.
type PostgresStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewPostgresStore creates a store over db.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	if db == nil {
		panic("conversation: sql db required")
	}
	return &PostgresStore{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// CreateConversation inserts a conversation. A second conversation for the
// same agency session fails with ErrSessionExists.
func (s *PostgresStore) CreateConversation(ctx context.Context, req CreateChatRequest) (*Conversation, error) {
	if err := validateCreate(req); err != nil {
		return nil, err
	}
	conv := newConversation(uuid.NewString(), req, s.now())
	messages, err := json.Marshal(conv.Messages)
	if err != nil {
		return nil, fmt.Errorf("conversation: marshal messages: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO chat_conversations (
			id, agency_id, session_id, status, messages, metadata,
			last_message_at, version, created_at
		) VALUES ($1, $2, $3, $4, $5::jsonb, $6::jsonb, $7, $8, $9)
	`, conv.ID, conv.AgencyID, conv.SessionID, conv.Status, string(messages), nullJSON(conv.Metadata),
		conv.LastMessageAt, conv.Version, conv.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, ErrSessionExists
		}
		return nil, fmt.Errorf("conversation: insert conversation: %w", err)
	}
	return conv, nil
}

// GetConversation loads a conversation by id.
func (s *PostgresStore) GetConversation(ctx context.Context, id string) (*Conversation, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrConversationNotFound
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+chatConversationColumns+` FROM chat_conversations WHERE id = $1`, id)
	conv, err := scanConversation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrConversationNotFound
		}
		return nil, fmt.Errorf("conversation: select conversation: %w", err)
	}
	return conv, nil
}

// UpdateConversation appends messages and replaces metadata in one statement.
// The version predicate makes a stale writer match no rows.
func (s *PostgresStore) UpdateConversation(ctx context.Context, id string, upd ChatUpdate) (*Conversation, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrConversationNotFound
	}
	appended := upd.AppendMessages
	if appended == nil {
		appended = []ChatMessage{}
	}
	messages, err := json.Marshal(appended)
	if err != nil {
		return nil, fmt.Errorf("conversation: marshal messages: %w", err)
	}

	row := s.db.QueryRowContext(ctx, `
		UPDATE chat_conversations SET
			messages = messages || $2::jsonb,
			metadata = COALESCE($3::jsonb, metadata),
			last_message_at = COALESCE($4, last_message_at),
			converted_to_lead_id = CASE WHEN $5 = '' THEN converted_to_lead_id ELSE $5 END,
			visitor_name = CASE WHEN $6 = '' THEN visitor_name ELSE $6 END,
			visitor_phone = CASE WHEN $7 = '' THEN visitor_phone ELSE $7 END,
			visitor_email = CASE WHEN $8 = '' THEN visitor_email ELSE $8 END,
			version = version + 1
		WHERE id = $1 AND ($9 = 0 OR version = $9)
		RETURNING `+chatConversationColumns,
		id, string(messages), nullJSON(upd.Metadata), nullTime(upd.LastMessageAt), upd.ConvertedToLeadID,
		upd.VisitorName, upd.VisitorPhone, upd.VisitorEmail, upd.ExpectedVersion,
	)
	conv, err := scanConversation(row)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("conversation: update conversation: %w", err)
	}

	var version int64
	if err := s.db.QueryRowContext(ctx, `SELECT version FROM chat_conversations WHERE id = $1`, id).Scan(&version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrConversationNotFound
		}
		return nil, fmt.Errorf("conversation: check version: %w", err)
	}
	return nil, ErrVersionConflict
}

// ListByAgency returns up to limit conversations, most recently active first.
func (s *PostgresStore) ListByAgency(ctx context.Context, agencyID string, limit int) ([]*Conversation, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+chatConversationColumns+` FROM chat_conversations
		WHERE agency_id = $1
		ORDER BY last_message_at DESC
		LIMIT $2`, agencyID, limit)
	if err != nil {
		return nil, fmt.Errorf("conversation: list conversations: %w", err)
	}
	defer rows.Close()

	out := make([]*Conversation, 0)
	for rows.Next() {
		conv, err := scanConversation(rows)
		if err != nil {
			return nil, fmt.Errorf("conversation: scan conversation: %w", err)
		}
		out = append(out, conv)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConversation(row rowScanner) (*Conversation, error) {
	var (
		conv     Conversation
		messages []byte
		metadata []byte
	)
	if err := row.Scan(
		&conv.ID,
		&conv.AgencyID,
		&conv.SessionID,
		&conv.Status,
		&messages,
		&metadata,
		&conv.VisitorName,
		&conv.VisitorPhone,
		&conv.VisitorEmail,
		&conv.LastMessageAt,
		&conv.ConvertedToLeadID,
		&conv.Version,
		&conv.CreatedAt,
	); err != nil {
		return nil, err
	}
	conv.Messages = []ChatMessage{}
	if len(messages) > 0 {
		if err := json.Unmarshal(messages, &conv.Messages); err != nil {
			return nil, fmt.Errorf("conversation: decode messages: %w", err)
		}
	}
	if len(metadata) > 0 {
		conv.Metadata = json.RawMessage(metadata)
	}
	return &conv, nil
}

// nullJSON passes JSON as text so lib/pq does not encode it as bytea.
func nullJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
