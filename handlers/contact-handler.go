package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"portfolio-service/contact"
	"portfolio-service/middleware"
)

// ContactSender validates and forwards a contact submission.
type ContactSender interface {
	Send(ctx context.Context, sub contact.Submission) error
}

type ContactHandler struct {
	sender ContactSender
}

func NewContactHandler(sender ContactSender) *ContactHandler {
	return &ContactHandler{sender: sender}
}

func (h *ContactHandler) ContactHandler(w http.ResponseWriter, r *http.Request) error {
	var sub contact.Submission
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
			return middleware.NewAppError(http.StatusBadRequest, "Invalid request payload", err)
		}
	} else {
		if err := r.ParseForm(); err != nil {
			return middleware.NewAppError(http.StatusBadRequest, "Invalid form data", err)
		}
		sub = contact.Submission{
			Name:    r.PostForm.Get("name"),
			Email:   r.PostForm.Get("email"),
			Message: r.PostForm.Get("message"),
		}
	}

	if err := h.sender.Send(r.Context(), sub); err != nil {
		var validationErr *contact.ValidationError
		if errors.As(err, &validationErr) {
			return middleware.NewAppError(http.StatusBadRequest, validationErr.Message, err)
		}
		return middleware.NewAppError(http.StatusBadGateway, contact.FailureMessage, err)
	}

	return writeJSON(w, http.StatusOK, JSONResponse{"message": "Message sent successfully!"})
}
