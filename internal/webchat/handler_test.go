package webchat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/propdesk-ai-platform/internal/chatbot"
	"github.com/wolfman30/propdesk-ai-platform/internal/conversation"
	"github.com/wolfman30/propdesk-ai-platform/internal/leads"
	"github.com/wolfman30/propdesk-ai-platform/internal/tenancy"
	"github.com/wolfman30/propdesk-ai-platform/pkg/logging"
)

func newTestHandler(t *testing.T) (*Handler, *conversation.MemoryStore) {
	t.Helper()
	store := conversation.NewMemoryStore()
	logger := logging.Discard()
	materializer := chatbot.NewMaterializer(leads.NewInMemoryRepository(), nil, nil, logger)
	svc := chatbot.NewService(store, materializer, chatbot.DefaultBrandCatalog(), nil, logger)
	return NewHandler(svc, store, nil, logger), store
}

// withAgency mimics the router's tenancy middleware.
func withAgency(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agencyID := r.Header.Get("X-Agency-Id")
		if agencyID == "" {
			agencyID = r.URL.Query().Get("agency")
		}
		if agencyID != "" {
			r = r.WithContext(tenancy.WithAgencyID(r.Context(), agencyID))
		}
		next.ServeHTTP(w, r)
	})
}

func testRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Group(func(chat chi.Router) {
		chat.Use(withAgency)
		chat.Post("/chat/conversations", h.StartConversation)
		chat.Post("/chat/conversations/{conversationID}/messages", h.PostMessage)
		chat.Get("/chat/conversations/{conversationID}", h.GetConversation)
		chat.Get("/chat/ws", h.HandleWebSocket)
	})
	r.Get("/admin/agencies/{agencyID}/conversations", h.ListConversations)
	return r
}

func doJSON(t *testing.T, router http.Handler, method, path, agencyID, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if agencyID != "" {
		req.Header.Set("X-Agency-Id", agencyID)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func startConversation(t *testing.T, router http.Handler, agencyID, body string) conversation.Conversation {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/chat/conversations", agencyID, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var conv conversation.Conversation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &conv))
	return conv
}

func TestGenerateSessionID(t *testing.T) {
	s1 := generateSessionID()
	s2 := generateSessionID()
	assert.NotEqual(t, s1, s2)
	assert.Len(t, s1, 32) // 16 bytes = 32 hex chars
}

func TestStartConversation(t *testing.T) {
	h, _ := newTestHandler(t)
	router := testRouter(h)

	conv := startConversation(t, router, "agency-1", `{"sessionId":"sess-1","sourcePage":"/rentas/depa-7"}`)
	assert.NotEmpty(t, conv.ID)
	assert.Equal(t, "agency-1", conv.AgencyID)
	assert.Equal(t, "sess-1", conv.SessionID)
	require.Len(t, conv.Messages, 1)
	assert.Equal(t, conversation.RoleAssistant, conv.Messages[0].Role)
	assert.Contains(t, conv.Messages[0].Content, "PropDesk Rentas")
}

func TestStartConversation_GeneratesSession(t *testing.T) {
	h, _ := newTestHandler(t)
	conv := startConversation(t, testRouter(h), "agency-1", "")
	assert.Len(t, conv.SessionID, 32)
}

func TestStartConversation_Errors(t *testing.T) {
	h, _ := newTestHandler(t)
	router := testRouter(h)

	rec := doJSON(t, router, http.MethodPost, "/chat/conversations", "", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/chat/conversations", "agency-1", `{bad`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	startConversation(t, router, "agency-1", `{"sessionId":"sess-1"}`)
	rec = doJSON(t, router, http.MethodPost, "/chat/conversations", "agency-1", `{"sessionId":"sess-1"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestPostMessage(t *testing.T) {
	h, _ := newTestHandler(t)
	router := testRouter(h)
	conv := startConversation(t, router, "agency-1", `{"sessionId":"sess-1"}`)

	rec := doJSON(t, router, http.MethodPost, "/chat/conversations/"+conv.ID+"/messages", "agency-1", `{"message":"quiero rentar"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp chatbot.ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "¿Cuál es tu nombre completo?", resp.Message)
	assert.Equal(t, chatbot.InputText, resp.InputType)

	rec = doJSON(t, router, http.MethodGet, "/chat/conversations/"+conv.ID, "agency-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var stored conversation.Conversation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stored))
	assert.Len(t, stored.Messages, 3)
}

func TestPostMessage_Errors(t *testing.T) {
	h, _ := newTestHandler(t)
	router := testRouter(h)
	conv := startConversation(t, router, "agency-1", `{"sessionId":"sess-1"}`)
	path := "/chat/conversations/" + conv.ID + "/messages"

	assert.Equal(t, http.StatusBadRequest, doJSON(t, router, http.MethodPost, path, "agency-1", `{"message":"  "}`).Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(t, router, http.MethodPost, path, "agency-1", `nope`).Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(t, router, http.MethodPost, path, "", `{"message":"hola"}`).Code)
	assert.Equal(t, http.StatusNotFound, doJSON(t, router, http.MethodPost, path, "agency-2", `{"message":"hola"}`).Code)
	assert.Equal(t, http.StatusNotFound, doJSON(t, router, http.MethodPost, "/chat/conversations/missing/messages", "agency-1", `{"message":"hola"}`).Code)
	assert.Equal(t, http.StatusNotFound, doJSON(t, router, http.MethodGet, "/chat/conversations/"+conv.ID, "agency-2", "").Code)
}

type failingChat struct {
	ChatService
}

func (failingChat) GetConversation(context.Context, string, string) (*conversation.Conversation, error) {
	return nil, errors.New("redis down")
}

func (failingChat) CreateConversation(context.Context, string, string, *chatbot.RequestContext) (*conversation.Conversation, error) {
	return nil, errors.New("redis down")
}

func TestHandler_InternalErrors(t *testing.T) {
	router := testRouter(NewHandler(failingChat{}, nil, nil, logging.Discard()))

	assert.Equal(t, http.StatusInternalServerError, doJSON(t, router, http.MethodPost, "/chat/conversations", "agency-1", `{}`).Code)
	assert.Equal(t, http.StatusInternalServerError, doJSON(t, router, http.MethodGet, "/chat/conversations/c1", "agency-1", "").Code)
	assert.Equal(t, http.StatusNotImplemented, doJSON(t, router, http.MethodGet, "/admin/agencies/agency-1/conversations", "", "").Code)
}

func TestListConversations(t *testing.T) {
	h, _ := newTestHandler(t)
	router := testRouter(h)
	startConversation(t, router, "agency-1", `{"sessionId":"a"}`)
	startConversation(t, router, "agency-1", `{"sessionId":"b"}`)
	startConversation(t, router, "agency-2", `{"sessionId":"c"}`)

	rec := doJSON(t, router, http.MethodGet, "/admin/agencies/agency-1/conversations", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp ListConversationsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)

	rec = doJSON(t, router, http.MethodGet, "/admin/agencies/agency-1/conversations?limit=1", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)

	rec = doJSON(t, router, http.MethodGet, "/admin/agencies/agency-3/conversations", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"conversations":[],"count":0}`, rec.Body.String())

	assert.Equal(t, http.StatusBadRequest, doJSON(t, router, http.MethodGet, "/admin/agencies/agency-1/conversations?limit=x", "", "").Code)
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://agencia.mx"})
	req := httptest.NewRequest(http.MethodGet, "http://api.propdesk.mx/chat/ws", nil)
	assert.True(t, check(req))

	req.Header.Set("Origin", "https://agencia.mx")
	assert.True(t, check(req))

	req.Header.Set("Origin", "http://api.propdesk.mx")
	assert.True(t, check(req))

	req.Header.Set("Origin", "https://evil.example")
	assert.False(t, check(req))

	assert.True(t, originChecker([]string{"*"})(req))
}

func dialWS(t *testing.T, server *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/chat/ws?" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) OutboundMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg OutboundMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestWebSocket_NewSession(t *testing.T) {
	h, _ := newTestHandler(t)
	server := httptest.NewServer(testRouter(h))
	defer server.Close()

	conn := dialWS(t, server, "agency=agency-1&session=sess-ws")

	session := readFrame(t, conn)
	assert.Equal(t, "session", session.Type)
	assert.Equal(t, "sess-ws", session.SessionID)
	require.NotEmpty(t, session.ConversationID)

	history := readFrame(t, conn)
	assert.Equal(t, "history", history.Type)
	require.Len(t, history.Messages, 1)

	require.NoError(t, conn.WriteJSON(InboundMessage{Type: "ping"}))
	assert.Equal(t, "pong", readFrame(t, conn).Type)

	require.NoError(t, conn.WriteJSON(InboundMessage{Type: "message", Text: "I want to buy a house"}))
	reply := readFrame(t, conn)
	assert.Equal(t, "message", reply.Type)
	require.NotNil(t, reply.Response)
	assert.Equal(t, "What's your full name?", reply.Response.Message)
}

func TestWebSocket_ResumeAndPush(t *testing.T) {
	h, _ := newTestHandler(t)
	router := testRouter(h)
	server := httptest.NewServer(router)
	defer server.Close()

	conv := startConversation(t, router, "agency-1", `{"sessionId":"sess-1"}`)
	conn := dialWS(t, server, "agency=agency-1&conversation="+conv.ID)
	assert.Equal(t, "session", readFrame(t, conn).Type)
	assert.Equal(t, "history", readFrame(t, conn).Type)

	// Wait for the connection to be registered before posting over HTTP.
	require.Eventually(t, func() bool {
		h.mu.RLock()
		defer h.mu.RUnlock()
		_, ok := h.sessions[conv.ID]
		return ok
	}, 2*time.Second, 10*time.Millisecond)

	body := bytes.NewBufferString(`{"message":"quiero comprar"}`)
	req, err := http.NewRequest(http.MethodPost, server.URL+"/chat/conversations/"+conv.ID+"/messages", body)
	require.NoError(t, err)
	req.Header.Set("X-Agency-Id", "agency-1")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	pushed := readFrame(t, conn)
	assert.Equal(t, "message", pushed.Type)
	require.NotNil(t, pushed.Response)
	assert.Equal(t, "¿Cuál es tu nombre completo?", pushed.Response.Message)
}

func TestWebSocket_UnknownConversation(t *testing.T) {
	h, _ := newTestHandler(t)
	server := httptest.NewServer(testRouter(h))
	defer server.Close()

	conn := dialWS(t, server, "agency=agency-1&conversation=missing")
	frame := readFrame(t, conn)
	assert.Equal(t, "error", frame.Type)
	assert.Equal(t, "conversation not found", frame.Text)
}
