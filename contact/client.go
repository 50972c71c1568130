// Package contact forwards contact form submissions to the form relay.
package contact

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"time"

	"portfolio-service/config"
	"portfolio-service/logger"

	"github.com/go-playground/validator/v10"
)

// FailureMessage is shown to visitors when the relay rejects a message.
const FailureMessage = "Failed to send message. Please try again or email directly."

var ErrRelay = errors.New("form relay rejected the submission")

type Submission struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required"`
}

// ValidationError names the first field that failed.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

type Client struct {
	formURL    string
	httpClient *http.Client
	validate   *validator.Validate
	log        *logger.Logger
}

func NewClient(cfg config.ContactConfig, log *logger.Logger) *Client {
	if log == nil {
		log = logger.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		return jsonName(field.Tag.Get("json"))
	})

	return &Client{
		formURL:    strings.TrimSpace(cfg.FormURL),
		httpClient: &http.Client{Timeout: timeout},
		validate:   v,
		log:        log.With("client", "ContactRelay"),
	}
}

// Validate trims the submission and checks that every field is filled in.
func (c *Client) Validate(sub *Submission) error {
	sub.Name = strings.TrimSpace(sub.Name)
	sub.Email = strings.TrimSpace(sub.Email)
	sub.Message = strings.TrimSpace(sub.Message)

	err := c.validate.Struct(sub)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	fe := fieldErrs[0]
	if fe.Tag() == "email" {
		return &ValidationError{Field: fe.Field(), Message: "Please enter a valid email address"}
	}
	return &ValidationError{Field: fe.Field(), Message: fmt.Sprintf("%s is required", fe.Field())}
}

// Send validates the submission and posts it to the relay. Any 2xx is
// success.
func (c *Client) Send(ctx context.Context, sub Submission) error {
	if err := c.Validate(&sub); err != nil {
		return err
	}

	body, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("encode submission: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.formURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post to form relay: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warn("form relay rejected submission", "status", resp.StatusCode)
		return fmt.Errorf("%w: status %d", ErrRelay, resp.StatusCode)
	}
	return nil
}

func jsonName(tag string) string {
	name, _, _ := strings.Cut(tag, ",")
	if name == "-" {
		return ""
	}
	return name
}
