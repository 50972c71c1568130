// Package chat answers visitor questions in the portfolio owner's voice.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"portfolio-service/content"
	"portfolio-service/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"
)

var (
	ErrEmptyMessage  = errors.New("message is required")
	ErrNotConfigured = errors.New("chat completer is not configured")
)

// Relay gathers the content context, builds the persona prompt and makes
// exactly one model call per message. It keeps no conversation history.
type Relay struct {
	reader       content.Reader
	completer    Completer
	fallbackName string
	log          *logger.Logger

	requests metric.Int64Counter
	failures metric.Int64Counter
}

func NewRelay(reader content.Reader, completer Completer, fallbackName string, log *logger.Logger) *Relay {
	if log == nil {
		log = logger.NewNop()
	}
	meter := otel.Meter("portfolio-service/chat")
	requests, _ := meter.Int64Counter("chat.requests", metric.WithDescription("Chat messages relayed"))
	failures, _ := meter.Int64Counter("chat.failures", metric.WithDescription("Chat messages that failed"))

	return &Relay{
		reader:       reader,
		completer:    completer,
		fallbackName: fallbackName,
		log:          log,
		requests:     requests,
		failures:     failures,
	}
}

// Reply answers one message.
func (r *Relay) Reply(ctx context.Context, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", ErrEmptyMessage
	}
	r.count(ctx, r.requests)

	if r.completer == nil {
		r.count(ctx, r.failures, attribute.String("reason", "not_configured"))
		return "", ErrNotConfigured
	}

	prompt, err := BuildSystemPrompt(r.gather(ctx), r.fallbackName)
	if err != nil {
		r.count(ctx, r.failures, attribute.String("reason", "prompt"))
		return "", err
	}

	reply, err := r.completer.Complete(ctx, prompt, message)
	if err != nil {
		r.count(ctx, r.failures, attribute.String("reason", "completion"))
		return "", fmt.Errorf("chat completion: %w", err)
	}
	return reply, nil
}

// gather reads every table independently. A failed read leaves that part of
// the context empty.
func (r *Relay) gather(ctx context.Context) Context {
	var (
		group      errgroup.Group
		chat       Context
		categories []content.SkillCategory
		skills     []content.Skill
	)

	read := func(table string, fn func() error) {
		group.Go(func() error {
			if err := fn(); err != nil {
				r.log.Warn("chat context read failed", "table", table, "error", err)
			}
			return nil
		})
	}

	read("profile", func() error {
		profile, err := r.reader.Profile(ctx)
		if err == nil {
			chat.Profile = &profile
		}
		return err
	})
	read("experiences", func() (err error) {
		chat.Experiences, err = r.reader.Experiences(ctx)
		return err
	})
	read("education", func() (err error) {
		chat.Education, err = r.reader.Education(ctx)
		return err
	})
	read("projects", func() (err error) {
		chat.Projects, err = r.reader.Projects(ctx)
		return err
	})
	read("skill_categories", func() (err error) {
		categories, err = r.reader.SkillCategories(ctx)
		return err
	})
	read("skills", func() (err error) {
		skills, err = r.reader.Skills(ctx)
		return err
	})
	read("testimonials", func() (err error) {
		chat.Testimonials, err = r.reader.Testimonials(ctx)
		return err
	})
	read("hidden_goals", func() (err error) {
		chat.HiddenGoals, err = r.reader.HiddenGoals(ctx)
		return err
	})
	_ = group.Wait()

	chat.Skills = content.GroupSkills(categories, skills)
	if chat.Experiences == nil {
		chat.Experiences = []content.Experience{}
	}
	if chat.Education == nil {
		chat.Education = []content.Education{}
	}
	if chat.Projects == nil {
		chat.Projects = []content.Project{}
	}
	if chat.Testimonials == nil {
		chat.Testimonials = []content.Testimonial{}
	}
	if chat.HiddenGoals == nil {
		chat.HiddenGoals = []content.HiddenGoal{}
	}
	return chat
}

func (r *Relay) count(ctx context.Context, counter metric.Int64Counter, attrs ...attribute.KeyValue) {
	if counter != nil {
		counter.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}
