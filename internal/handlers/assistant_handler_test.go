package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/anonto42/health-tracker/backend/internal/assistant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAssistant struct {
	available bool
	err       error
	message   string
	history   []assistant.Exchange
	category  string
}

func (f *fakeAssistant) Available() bool { return f.available }
func (f *fakeAssistant) Model() string   { return "deepseek-chat" }

func (f *fakeAssistant) Chat(_ context.Context, message string, history []assistant.Exchange) (assistant.Reply, error) {
	f.message, f.history = message, history
	return assistant.Reply{Response: "Stay hydrated.", Model: "deepseek-chat"}, f.err
}

func (f *fakeAssistant) Tips(_ context.Context, category string) (assistant.Reply, error) {
	f.category = category
	return assistant.Reply{Response: "1. Walk daily."}, f.err
}

func setupAssistant(a *fakeAssistant) func(method, path, body string) (int, string) {
	e, g := newTestEcho(5)
	NewAssistantHandler(a).RegisterAssistantRoutes(g)
	return func(method, path, body string) (int, string) {
		rec := do(e, method, path, body)
		return rec.Code, rec.Body.String()
	}
}

func TestAssistantChat(t *testing.T) {
	a := &fakeAssistant{available: true}
	call := setupAssistant(a)

	code, body := call(http.MethodPost, "/api/v1/chatbot",
		`{"message":"How much water?","conversation_history":[{"user":"hi","assistant":"hello"}]}`)
	require.Equal(t, http.StatusOK, code, body)
	assert.Contains(t, body, "Stay hydrated.")
	assert.Equal(t, "How much water?", a.message)
	assert.Equal(t, []assistant.Exchange{{User: "hi", Assistant: "hello"}}, a.history)

	code, _ = call(http.MethodPost, "/api/v1/chatbot", `{"message":"   "}`)
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = call(http.MethodPost, "/api/v1/chatbot", `{}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestAssistantChat_Failures(t *testing.T) {
	for name, err := range map[string]error{
		"unavailable": assistant.ErrUnavailable,
		"provider":    errors.New("rate limited"),
	} {
		t.Run(name, func(t *testing.T) {
			call := setupAssistant(&fakeAssistant{err: err})
			code, body := call(http.MethodPost, "/api/v1/chatbot", `{"message":"hello"}`)
			assert.Equal(t, http.StatusServiceUnavailable, code)
			assert.NotContains(t, body, "rate limited")
		})
	}
}

func TestAssistantTips(t *testing.T) {
	a := &fakeAssistant{available: true}
	call := setupAssistant(a)

	code, _ := call(http.MethodGet, "/api/v1/chatbot/tips/sleep", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "sleep", a.category)

	code, _ = call(http.MethodGet, "/api/v1/chatbot/tips", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "", a.category)

	a.err = assistant.ErrInvalidCategory
	code, body := call(http.MethodGet, "/api/v1/chatbot/tips/astrology", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, body, "general, medication")
}

func TestAssistantStatus(t *testing.T) {
	code, body := setupAssistant(&fakeAssistant{available: true})(http.MethodGet, "/api/v1/chatbot/status", "")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `"available":true`)
	assert.Contains(t, body, `"model":"deepseek-chat"`)

	code, body = setupAssistant(&fakeAssistant{})(http.MethodGet, "/api/v1/chatbot/status", "")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `"available":false`)
	assert.Contains(t, body, `"model":null`)
}
