package webchat

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/wolfman30/propdesk-ai-platform/internal/chatbot"
	"github.com/wolfman30/propdesk-ai-platform/internal/conversation"
	"github.com/wolfman30/propdesk-ai-platform/internal/tenancy"
	"github.com/wolfman30/propdesk-ai-platform/pkg/logging"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
	wsWriteTimeout   = 10 * time.Second
	maxMessageBytes  = 4096
)

// ChatService runs chatbot turns.
type ChatService interface {
	CreateConversation(ctx context.Context, agencyID, sessionID string, rc *chatbot.RequestContext) (*conversation.Conversation, error)
	GetConversation(ctx context.Context, agencyID, conversationID string) (*conversation.Conversation, error)
	ProcessMessage(ctx context.Context, conversationID, message, agencyID string, rc *chatbot.RequestContext) (*chatbot.ChatResponse, error)
}

// ConversationLister lists an agency's conversations for the admin view.
type ConversationLister interface {
	ListByAgency(ctx context.Context, agencyID string, limit int) ([]*conversation.Conversation, error)
}

// Handler exposes the chatbot over JSON and a websocket.
type Handler struct {
	chat     ChatService
	lister   ConversationLister
	logger   *logging.Logger
	upgrader websocket.Upgrader

	mu       sync.RWMutex
	sessions map[string]*wsConn // conversationID -> active connection
}

type wsConn struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *wsConn) send(msg OutboundMessage) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return c.conn.WriteJSON(msg)
}

// StartRequest opens a conversation.
type StartRequest struct {
	SessionID string `json:"sessionId"`
	chatbot.RequestContext
}

// MessageRequest carries one visitor message.
type MessageRequest struct {
	Message string `json:"message"`
	chatbot.RequestContext
}

// InboundMessage is what the widget sends over the websocket.
type InboundMessage struct {
	Type    string                  `json:"type"` // "message", "ping"
	Text    string                  `json:"text"`
	Context *chatbot.RequestContext `json:"context,omitempty"`
}

// OutboundMessage is what the widget receives over the websocket.
type OutboundMessage struct {
	Type           string                     `json:"type"` // "session", "history", "message", "pong", "error"
	ConversationID string                     `json:"conversationId,omitempty"`
	SessionID      string                     `json:"sessionId,omitempty"`
	Text           string                     `json:"text,omitempty"`
	Response       *chatbot.ChatResponse      `json:"response,omitempty"`
	Messages       []conversation.ChatMessage `json:"messages,omitempty"`
}

// ListConversationsResponse is the admin listing payload.
type ListConversationsResponse struct {
	Conversations []*conversation.Conversation `json:"conversations"`
	Count         int                          `json:"count"`
}

// NewHandler creates a web chat handler. lister may be nil.
func NewHandler(chat ChatService, lister ConversationLister, allowedOrigins []string, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		chat:   chat,
		lister: lister,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		sessions: make(map[string]*wsConn),
	}
}

// originChecker accepts same-origin requests, requests without an Origin
// header and any listed origin. "*" accepts everything.
func originChecker(allowed []string) func(*http.Request) bool {
	allow := map[string]struct{}{}
	for _, origin := range allowed {
		origin = strings.TrimSpace(origin)
		if origin == "*" {
			return func(*http.Request) bool { return true }
		}
		if origin != "" {
			allow[origin] = struct{}{}
		}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || strings.HasSuffix(origin, "://"+r.Host) {
			return true
		}
		_, ok := allow[origin]
		return ok
	}
}

// generateSessionID creates a random session identifier.
func generateSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return uuid.New().String()
	}
	return hex.EncodeToString(b)
}

// StartConversation handles POST /chat/conversations.
func (h *Handler) StartConversation(w http.ResponseWriter, r *http.Request) {
	agencyID, ok := tenancy.AgencyIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusBadRequest, "missing agency id")
		return
	}
	var req StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.SessionID) == "" {
		req.SessionID = generateSessionID()
	}

	conv, err := h.chat.CreateConversation(r.Context(), agencyID, req.SessionID, &req.RequestContext)
	if err != nil {
		switch {
		case errors.Is(err, conversation.ErrSessionExists):
			writeError(w, http.StatusConflict, "session already has a conversation")
		case errors.Is(err, chatbot.ErrMissingAgencyID):
			writeError(w, http.StatusBadRequest, "missing agency id")
		default:
			h.logger.Error("webchat: start conversation failed", "error", err, "agency_id", agencyID)
			writeError(w, http.StatusInternalServerError, "failed to start conversation")
		}
		return
	}
	writeJSON(w, http.StatusCreated, conv)
}

// PostMessage handles POST /chat/conversations/{conversationID}/messages.
func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	agencyID, ok := tenancy.AgencyIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusBadRequest, "missing agency id")
		return
	}
	var req MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	conversationID := chi.URLParam(r, "conversationID")
	resp, err := h.chat.ProcessMessage(r.Context(), conversationID, req.Message, agencyID, &req.RequestContext)
	if err != nil {
		if errors.Is(err, chatbot.ErrConversationNotFound) {
			writeError(w, http.StatusNotFound, "conversation not found")
			return
		}
		h.logger.Error("webchat: process message failed", "error", err, "conversation_id", conversationID)
		writeError(w, http.StatusInternalServerError, "failed to process message")
		return
	}

	// Keep an open websocket for the same conversation in sync.
	h.SendToSession(conversationID, OutboundMessage{Type: "message", ConversationID: conversationID, Response: resp})
	writeJSON(w, http.StatusOK, resp)
}

// GetConversation handles GET /chat/conversations/{conversationID}.
func (h *Handler) GetConversation(w http.ResponseWriter, r *http.Request) {
	agencyID, ok := tenancy.AgencyIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusBadRequest, "missing agency id")
		return
	}
	conversationID := chi.URLParam(r, "conversationID")
	conv, err := h.chat.GetConversation(r.Context(), agencyID, conversationID)
	if err != nil {
		if errors.Is(err, conversation.ErrConversationNotFound) {
			writeError(w, http.StatusNotFound, "conversation not found")
			return
		}
		h.logger.Error("webchat: get conversation failed", "error", err, "conversation_id", conversationID)
		writeError(w, http.StatusInternalServerError, "failed to load conversation")
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

// ListConversations handles GET /admin/agencies/{agencyID}/conversations.
func (h *Handler) ListConversations(w http.ResponseWriter, r *http.Request) {
	if h.lister == nil {
		writeError(w, http.StatusNotImplemented, "conversation listing not configured")
		return
	}
	agencyID := chi.URLParam(r, "agencyID")
	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = min(n, maxListLimit)
	}

	convs, err := h.lister.ListByAgency(r.Context(), agencyID, limit)
	if err != nil {
		h.logger.Error("webchat: list conversations failed", "error", err, "agency_id", agencyID)
		writeError(w, http.StatusInternalServerError, "failed to list conversations")
		return
	}
	if convs == nil {
		convs = []*conversation.Conversation{}
	}
	writeJSON(w, http.StatusOK, ListConversationsResponse{Conversations: convs, Count: len(convs)})
}

// HandleWebSocket handles GET /chat/ws. With ?conversation=<id> it resumes
// that conversation; otherwise it starts one for ?session=<id>.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	agencyID, ok := tenancy.AgencyIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusBadRequest, "missing agency id")
		return
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("webchat: websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxMessageBytes)
	h.serveWS(r.Context(), &wsConn{conn: conn}, r, agencyID)
}

func (h *Handler) serveWS(ctx context.Context, wsc *wsConn, r *http.Request, agencyID string) {
	conv, err := h.openConversation(ctx, r, agencyID)
	if err != nil {
		text := "failed to open conversation"
		if errors.Is(err, conversation.ErrConversationNotFound) {
			text = "conversation not found"
		}
		_ = wsc.send(OutboundMessage{Type: "error", Text: text})
		return
	}
	convID := conv.ID

	_ = wsc.send(OutboundMessage{Type: "session", ConversationID: convID, SessionID: conv.SessionID})
	_ = wsc.send(OutboundMessage{Type: "history", ConversationID: convID, Messages: conv.Messages})

	h.mu.Lock()
	h.sessions[convID] = wsc
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		if h.sessions[convID] == wsc {
			delete(h.sessions, convID)
		}
		h.mu.Unlock()
	}()

	h.logger.Info("webchat: connection opened", "agency_id", agencyID, "conversation_id", convID)

	for {
		var msg InboundMessage
		if err := wsc.conn.ReadJSON(&msg); err != nil {
			h.logger.Debug("webchat: connection closed", "conversation_id", convID, "error", err)
			return
		}

		if msg.Type == "ping" {
			_ = wsc.send(OutboundMessage{Type: "pong"})
			continue
		}
		if msg.Type != "message" || strings.TrimSpace(msg.Text) == "" {
			continue
		}

		resp, err := h.chat.ProcessMessage(ctx, convID, msg.Text, agencyID, msg.Context)
		if err != nil {
			h.logger.Error("webchat: process message failed", "error", err, "conversation_id", convID)
			_ = wsc.send(OutboundMessage{Type: "error", Text: "conversation not found"})
			return
		}
		_ = wsc.send(OutboundMessage{Type: "message", ConversationID: convID, Response: resp})
	}
}

func (h *Handler) openConversation(ctx context.Context, r *http.Request, agencyID string) (*conversation.Conversation, error) {
	q := r.URL.Query()
	if id := strings.TrimSpace(q.Get("conversation")); id != "" {
		return h.chat.GetConversation(ctx, agencyID, id)
	}
	sessionID := strings.TrimSpace(q.Get("session"))
	if sessionID == "" {
		sessionID = generateSessionID()
	}
	return h.chat.CreateConversation(ctx, agencyID, sessionID, &chatbot.RequestContext{
		PropertyID:    q.Get("propertyId"),
		CondominiumID: q.Get("condominiumId"),
		SourcePage:    q.Get("sourcePage"),
	})
}

// SendToSession pushes msg to the websocket open on convID, if any.
func (h *Handler) SendToSession(convID string, msg OutboundMessage) {
	h.mu.RLock()
	wsc, ok := h.sessions[convID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	if err := wsc.send(msg); err != nil {
		h.logger.Debug("webchat: push failed", "conversation_id", convID, "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
