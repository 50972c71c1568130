package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"portfolio-service/chat"

	"github.com/stretchr/testify/assert"
)

type fakeReplier struct {
	calls   int
	message string
	reply   string
	err     error
}

func (f *fakeReplier) Reply(_ context.Context, message string) (string, error) {
	f.calls++
	f.message = message
	if strings.TrimSpace(message) == "" {
		return "", chat.ErrEmptyMessage
	}
	return f.reply, f.err
}

func TestChatPreflight(t *testing.T) {
	relay := &fakeReplier{}
	rec := executeRequest(NewChatHandler(relay, nopLogger()).PreflightHandler, httptest.NewRequest(http.MethodOptions, "/api/chat", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "POST", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "authorization, x-client-info, apikey, content-type", rec.Header().Get("Access-Control-Allow-Headers"))
	assert.Zero(t, relay.calls)
}

func TestChatHandlerReply(t *testing.T) {
	relay := &fakeReplier{reply: "I studied neuropsychology at the University of Tilburg."}
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"What did you study?"}`))
	rec := executeRequest(NewChatHandler(relay, nopLogger()).ChatHandler, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"response":"I studied neuropsychology at the University of Tilburg."}`, rec.Body.String())
	assert.Equal(t, "What did you study?", relay.message)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestChatHandlerErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		err     error
		status  int
		message string
	}{
		{"invalid json", `{"message":`, nil, http.StatusBadRequest, "Invalid request payload"},
		{"missing message", `{}`, nil, http.StatusBadRequest, "Message is required"},
		{"blank message", `{"message":"   "}`, nil, http.StatusBadRequest, "Message is required"},
		{"not configured", `{"message":"hi"}`, chat.ErrNotConfigured, http.StatusInternalServerError, "Failed to get a response. Please try again."},
		{"model error", `{"message":"hi"}`, errors.New("overloaded"), http.StatusInternalServerError, "Failed to get a response. Please try again."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			relay := &fakeReplier{err: tt.err}
			req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(tt.body))
			rec := executeRequest(NewChatHandler(relay, nopLogger()).ChatHandler, req)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.message, errorMessage(t, rec))
			assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}
