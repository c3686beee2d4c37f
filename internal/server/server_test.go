package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"symptom-checker-be/internal/bootstrap"
	"symptom-checker-be/internal/config"
	"symptom-checker-be/internal/model"
	"symptom-checker-be/internal/pkg/logger"
	"symptom-checker-be/pkg/database"
	"symptom-checker-be/pkg/llm"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const analysisReply = `{
  "symptoms": ["sore throat"],
  "diagnosis": [{"condition": "Pharyngitis", "likelihood": "Medium", "reasoning": "Sore throat without fever."}],
  "recommendations": ["Gargle with salt water"],
  "report": "Likely a mild throat infection.",
  "conversation": [{"role": "ai", "content": "It sounds like a sore throat."}],
  "sessionTitle": "Sore throat"
}`

type staticLLM struct{}

func (staticLLM) Chat(context.Context, []llm.Message, ...llm.Option) (string, error) {
	return analysisReply, nil
}

func (staticLLM) Generate(context.Context, string, ...llm.Option) (string, error) {
	return analysisReply, nil
}

type envelope struct {
	Success   bool            `json:"success"`
	Code      int             `json:"code"`
	Message   string          `json:"message"`
	ErrorType string          `json:"error_type"`
	Data      json.RawMessage `json:"data"`
}

type testServer struct {
	t   *testing.T
	srv *Server
}

func newTestServer(t *testing.T, dailyLimit int) *testServer {
	t.Helper()

	db, err := database.NewSqliteDB(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}))

	cfg := &config.Config{
		App:      config.AppConfig{Port: "0", CorsAllowedOrigins: "http://localhost:5173"},
		Auth:     config.AuthConfig{JwtSecret: "test-secret", TokenExpiry: time.Hour},
		Database: config.DatabaseConfig{SessionStore: "memory"},
		Ai:       config.AIConfig{RequestTimeout: 5 * time.Second, FormatRetries: 1},
		Quota:    config.QuotaConfig{DailyRequestLimit: dailyLimit, GuestSessionTTL: time.Hour},
	}
	container, err := bootstrap.NewContainer(db, nil, cfg,
		bootstrap.WithLLMProvider(staticLLM{}),
		bootstrap.WithLoggers(logger.NewNopLogger(), logger.NewNopLogger()),
	)
	require.NoError(t, err)
	t.Cleanup(container.Close)

	return &testServer{t: t, srv: New(cfg, container)}
}

func (ts *testServer) do(method, path, token string, body interface{}, cookies ...*http.Cookie) (*http.Response, envelope, []byte) {
	ts.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(ts.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	resp, err := ts.srv.GetApp().Test(req, -1)
	require.NoError(ts.t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(ts.t, err)

	var env envelope
	require.NoError(ts.t, json.Unmarshal(raw, &env), string(raw))
	return resp, env, raw
}

func (ts *testServer) register(email string) string {
	ts.t.Helper()
	resp, env, _ := ts.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Test User", "email": email, "password": "password123",
	})
	require.Equal(ts.t, http.StatusCreated, resp.StatusCode, env.Message)

	var data struct {
		Token string `json:"token"`
	}
	require.NoError(ts.t, json.Unmarshal(env.Data, &data))
	return data.Token
}

type sessionData struct {
	Id           string            `json:"_id"`
	Conversation []json.RawMessage `json:"conversation"`
	Report       *string           `json:"report"`
	Version      int64             `json:"version"`
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, 10)
	resp, env, _ := ts.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"up"}`, string(env.Data))
}

func TestAuthFlow(t *testing.T) {
	ts := newTestServer(t, 10)
	token := ts.register("erin@example.com")

	resp, env, _ := ts.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Erin", "email": "erin@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.False(t, env.Success)

	resp, env, _ = ts.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "E", "email": "bad", "password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", env.ErrorType)

	resp, _, _ = ts.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "erin@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _, _ = ts.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "erin@example.com", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, env, _ = ts.do(http.MethodGet, "/api/auth/verify", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var verify struct {
		User    struct{ Email string } `json:"user"`
		IsGuest bool                   `json:"isGuest"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &verify))
	assert.Equal(t, "erin@example.com", verify.User.Email)
	assert.False(t, verify.IsGuest)

	resp, _, _ = ts.do(http.MethodGet, "/api/auth/verify", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestGuestGetsOneAnalysis(t *testing.T) {
	ts := newTestServer(t, 10)

	resp, env, _ := ts.do(http.MethodPost, "/api/appointment/analyze", "", map[string]string{"userInput": "my throat hurts"})
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)

	var guest map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &guest))
	assert.NotContains(t, guest, "_id")
	assert.NotContains(t, guest, "createdAt")
	assert.Equal(t, "Sore throat", guest["sessionTitle"])

	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "session_id" {
			cookie = c
		}
	}
	require.NotNil(t, cookie)

	resp, env, _ = ts.do(http.MethodPost, "/api/appointment/analyze", "", map[string]string{"userInput": "still hurts"}, cookie)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "GUEST_QUOTA_EXCEEDED", env.ErrorType)

	resp, _, _ = ts.do(http.MethodGet, "/api/appointment/history", "", nil, cookie)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestConsultationLifecycle(t *testing.T) {
	ts := newTestServer(t, 10)
	token := ts.register("frank@example.com")

	resp, env, _ := ts.do(http.MethodPost, "/api/appointment/analyze", token, map[string]string{"userInput": "my throat hurts"})
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)
	var first sessionData
	require.NoError(t, json.Unmarshal(env.Data, &first))
	require.Len(t, first.Id, 24)
	assert.Len(t, first.Conversation, 2)
	require.NotNil(t, first.Report)

	// the chatbot alias continues the same session; ids are normalized
	resp, env, _ = ts.do(http.MethodPost, "/api/appointment/chatbot", token, map[string]string{
		"userInput": "it started yesterday",
		"sessionId": fmt.Sprintf(` "%s" `, first.Id),
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)
	var second sessionData
	require.NoError(t, json.Unmarshal(env.Data, &second))
	assert.Equal(t, first.Id, second.Id)
	assert.Len(t, second.Conversation, 4)
	assert.Equal(t, int64(2), second.Version)

	resp, env, _ = ts.do(http.MethodGet, "/api/appointment/history", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var history []struct {
		Id    string `json:"id"`
		Title string `json:"title"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &history))
	require.Len(t, history, 1)
	assert.Equal(t, first.Id, history[0].Id)
	assert.Equal(t, "Sore throat", history[0].Title)

	_, _, a := ts.do(http.MethodGet, "/api/appointment/session/"+first.Id, token, nil)
	_, _, b := ts.do(http.MethodGet, "/api/appointment/session/"+first.Id, token, nil)
	assert.Equal(t, a, b)

	resp, env, _ = ts.do(http.MethodGet, "/api/appointment/session/not-an-id", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid session id", env.Message)

	resp, _, _ = ts.do(http.MethodGet, "/api/appointment/session/65a1b2c3d4e5f60718293a4b", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	other := ts.register("grace@example.com")
	resp, _, _ = ts.do(http.MethodGet, "/api/appointment/session/"+first.Id, other, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _, _ = ts.do(http.MethodPost, "/api/appointment/analyze", other, map[string]string{
		"userInput": "hello", "sessionId": first.Id,
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, env, _ = ts.do(http.MethodGet, "/api/appointment/history", other, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, string(env.Data))
}

func TestDailyQuota(t *testing.T) {
	ts := newTestServer(t, 2)
	token := ts.register("heidi@example.com")

	// rejected requests are not counted
	resp, _, _ := ts.do(http.MethodPost, "/api/appointment/analyze", token, map[string]string{"userInput": ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	for i := 0; i < 2; i++ {
		resp, env, _ := ts.do(http.MethodPost, "/api/appointment/analyze", token, map[string]string{"userInput": "sore throat"})
		require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)
	}

	resp, env, _ := ts.do(http.MethodPost, "/api/appointment/analyze", token, map[string]string{"userInput": "sore throat"})
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "QUOTA_EXCEEDED", env.ErrorType)
	var data struct {
		Limit int `json:"limit"`
		Used  int `json:"used"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, 2, data.Limit)
	assert.Equal(t, 2, data.Used)
}
