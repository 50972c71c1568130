package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"portfolio-service/chat"
	"portfolio-service/logger"
	"portfolio-service/middleware"
)

// Replier answers one chat message.
type Replier interface {
	Reply(ctx context.Context, message string) (string, error)
}

type chatRequest struct {
	Message string `json:"message"`
}

var chatCORSHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Methods": "POST",
	"Access-Control-Allow-Headers": "authorization, x-client-info, apikey, content-type",
}

// ChatHandler relays visitor questions to the model. It is open to any
// origin, so it sets its own CORS headers instead of the site-wide policy.
type ChatHandler struct {
	relay Replier
	log   *logger.Logger
}

func NewChatHandler(relay Replier, log *logger.Logger) *ChatHandler {
	return &ChatHandler{relay: relay, log: log.With("handler", "chat")}
}

func (h *ChatHandler) PreflightHandler(w http.ResponseWriter, r *http.Request) error {
	setChatCORS(w)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, err := w.Write([]byte("ok"))
	return err
}

func (h *ChatHandler) ChatHandler(w http.ResponseWriter, r *http.Request) error {
	setChatCORS(w)

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return middleware.NewAppError(http.StatusBadRequest, "Invalid request payload", err)
	}

	reply, err := h.relay.Reply(r.Context(), req.Message)
	if err != nil {
		if errors.Is(err, chat.ErrEmptyMessage) {
			return middleware.NewAppError(http.StatusBadRequest, "Message is required", err)
		}
		h.log.Warn("chat reply failed", "error", err)
		return middleware.NewAppError(http.StatusInternalServerError, "Failed to get a response. Please try again.", err)
	}

	return writeJSON(w, http.StatusOK, JSONResponse{"response": reply})
}

func setChatCORS(w http.ResponseWriter) {
	for key, value := range chatCORSHeaders {
		w.Header().Set(key, value)
	}
}
