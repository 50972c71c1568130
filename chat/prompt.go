package chat

import (
	"bytes"
	"encoding/json"
	"fmt"

	"portfolio-service/content"
)

// FallbackPhrase is what the persona says when the context lacks an answer.
const FallbackPhrase = "I haven't shared that here yet."

const promptTemplate = `You ARE %s. You speak as yourself in first person on your portfolio website.

YOUR INFORMATION:
%s

Rules:
- Speak in FIRST PERSON (use "I", "my", "me")
- Be friendly but EXTREMELY BRIEF - one or two short sentences max
- Answer ONLY what was asked, nothing more
- No elaboration, no extra context, no follow-up thoughts
- Example: "What did you study?" → "I studied neuropsychology at the University of Tilburg."
- If info isn't available, just say "%s"`

// Context is everything the persona may draw on.
type Context struct {
	Profile      *content.Profile        `json:"profile"`
	Experiences  []content.Experience    `json:"experiences"`
	Education    []content.Education     `json:"education"`
	Projects     []content.Project       `json:"projects"`
	Skills       []content.SkillCategory `json:"skills"`
	Testimonials []content.Testimonial   `json:"testimonials"`
	HiddenGoals  []content.HiddenGoal    `json:"hiddenGoals"`
}

// BuildSystemPrompt renders the persona instructions around a JSON dump of
// the context.
func BuildSystemPrompt(ctx Context, fallbackName string) (string, error) {
	name := fallbackName
	if ctx.Profile != nil && ctx.Profile.Name != "" {
		name = ctx.Profile.Name
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(ctx); err != nil {
		return "", fmt.Errorf("encode chat context: %w", err)
	}

	return fmt.Sprintf(promptTemplate, name, bytes.TrimRight(buf.Bytes(), "\n"), FallbackPhrase), nil
}
