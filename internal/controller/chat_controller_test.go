package controller

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"openbook-be/internal/dto"
	"openbook-be/internal/entity"
	"openbook-be/internal/pkg/apperror"
	"openbook-be/internal/pkg/logger"
	"openbook-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChatService struct {
	sessions map[string]*entity.ChatSession
	sent     []string
	sendErr  error
	deleted  []string
}

func newFakeChatService() *fakeChatService {
	return &fakeChatService{sessions: map[string]*entity.ChatSession{}}
}

func (f *fakeChatService) StartSession(_ context.Context, username string) (*entity.ChatSession, error) {
	if strings.TrimSpace(username) == "" {
		return nil, apperror.Invalid("username is required")
	}
	s := &entity.ChatSession{SessionId: "s-" + username, Username: username}
	f.sessions[s.SessionId] = s
	return s, nil
}

func (f *fakeChatService) SendMessage(_ context.Context, sessionId, message string) (*entity.ChatResponse, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	if _, ok := f.sessions[sessionId]; !ok {
		return nil, apperror.NotFound("session %s", sessionId)
	}
	f.sent = append(f.sent, message)
	return &entity.ChatResponse{Message: "hi", TokensUsed: 12, ContextMode: "General"}, nil
}

func (f *fakeChatService) GetSession(_ context.Context, sessionId string) (*entity.ChatSession, error) {
	s, ok := f.sessions[sessionId]
	if !ok {
		return nil, apperror.NotFound("session %s", sessionId)
	}
	return s, nil
}

func (f *fakeChatService) ListSessions(_ context.Context, username string) ([]*entity.ChatSession, error) {
	var out []*entity.ChatSession
	for _, s := range f.sessions {
		if s.Username == username {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeChatService) DeleteSession(_ context.Context, sessionId string) error {
	f.deleted = append(f.deleted, sessionId)
	delete(f.sessions, sessionId)
	return nil
}

func newTestApp(svc *fakeChatService) *fiber.App {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware(logger.NewNop()))
	NewChatController(svc).RegisterRoutes(app.Group("/api"))
	return app
}

func do(t *testing.T, app *fiber.App, method, target, body string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	res, err := app.Test(req, -1)
	require.NoError(t, err)
	return res
}

func decode[T any](t *testing.T, res *http.Response) serverutils.BaseResponse[T] {
	t.Helper()
	defer res.Body.Close()
	var out serverutils.BaseResponse[T]
	require.NoError(t, json.NewDecoder(res.Body).Decode(&out))
	return out
}

func TestChatController_StartAndGetSession(t *testing.T) {
	svc := newFakeChatService()
	app := newTestApp(svc)

	res := do(t, app, http.MethodPost, "/api/chat/octocat/start", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	started := decode[entity.ChatSession](t, res)
	assert.True(t, started.Success)
	assert.Equal(t, "s-octocat", started.Data.SessionId)

	res = do(t, app, http.MethodGet, "/api/chat/session/s-octocat", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	got := decode[entity.ChatSession](t, res)
	assert.Equal(t, "octocat", got.Data.Username)
}

func TestChatController_GetUnknownSession(t *testing.T) {
	app := newTestApp(newFakeChatService())

	res := do(t, app, http.MethodGet, "/api/chat/session/missing", "")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	body := decode[any](t, res)
	assert.False(t, body.Success)
	assert.Equal(t, http.StatusNotFound, body.Code)
}

func TestChatController_SendMessage(t *testing.T) {
	svc := newFakeChatService()
	svc.sessions["s1"] = &entity.ChatSession{SessionId: "s1", Username: "octocat"}
	app := newTestApp(svc)

	res := do(t, app, http.MethodPost, "/api/chat/send?sessionId=s1", `{"message":"  hello  "}`)
	require.Equal(t, http.StatusOK, res.StatusCode)
	body := decode[entity.ChatResponse](t, res)
	assert.Equal(t, "hi", body.Data.Message)
	assert.Equal(t, 12, body.Data.TokensUsed)
	assert.Equal(t, []string{"hello"}, svc.sent)
}

func TestChatController_SendMessageRejectsBadInput(t *testing.T) {
	svc := newFakeChatService()
	svc.sessions["s1"] = &entity.ChatSession{SessionId: "s1"}
	app := newTestApp(svc)

	tests := []struct {
		name   string
		target string
		body   string
	}{
		{"missing session id", "/api/chat/send", `{"message":"hello"}`},
		{"blank message", "/api/chat/send?sessionId=s1", `{"message":"   "}`},
		{"malformed body", "/api/chat/send?sessionId=s1", `{"message":`},
		{"message too long", "/api/chat/send?sessionId=s1", `{"message":"` + strings.Repeat("a", 4001) + `"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := do(t, app, http.MethodPost, tt.target, tt.body)
			assert.Equal(t, http.StatusBadRequest, res.StatusCode)
		})
	}
	assert.Empty(t, svc.sent)
}

func TestChatController_SendMessageUpstreamFailure(t *testing.T) {
	svc := newFakeChatService()
	svc.sessions["s1"] = &entity.ChatSession{SessionId: "s1"}
	svc.sendErr = apperror.Upstream("chat completion", io.ErrUnexpectedEOF)
	app := newTestApp(svc)

	res := do(t, app, http.MethodPost, "/api/chat/send?sessionId=s1", `{"message":"hello"}`)
	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
}

func TestChatController_DeleteSession(t *testing.T) {
	svc := newFakeChatService()
	svc.sessions["s1"] = &entity.ChatSession{SessionId: "s1"}
	app := newTestApp(svc)

	res := do(t, app, http.MethodDelete, "/api/chat/session/s1", "")
	assert.Equal(t, http.StatusNoContent, res.StatusCode)
	assert.Equal(t, []string{"s1"}, svc.deleted)

	res = do(t, app, http.MethodDelete, "/api/chat/session/s1", "")
	assert.Equal(t, http.StatusNoContent, res.StatusCode)
}

func TestChatController_ListSessions(t *testing.T) {
	svc := newFakeChatService()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.sessions["s1"] = &entity.ChatSession{
		SessionId:       "s1",
		Username:        "octocat",
		LastMessageAt:   now,
		TotalTokensUsed: 300,
		Messages:        make([]entity.ChatMessage, 4),
	}
	svc.sessions["s2"] = &entity.ChatSession{SessionId: "s2", Username: "someone-else"}
	app := newTestApp(svc)

	res := do(t, app, http.MethodGet, "/api/chat/octocat/sessions", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	body := decode[[]dto.SessionSummaryResponse](t, res)
	require.Len(t, body.Data, 1)
	assert.Equal(t, "s1", body.Data[0].SessionId)
	assert.Equal(t, 4, body.Data[0].MessageCount)
	assert.Equal(t, 300, body.Data[0].TotalTokensUsed)
	assert.True(t, now.Equal(body.Data[0].LastMessageAt))
}
