package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ArticleEnhancer/internal/domain"
	"ArticleEnhancer/internal/ports"
)

const (
	// referenceExcerptLength bounds each reference inside the prompt.
	referenceExcerptLength = 1500

	defaultSystemPrompt = "Expert content formatter."
	defaultTemperature  = 0.3
	defaultMaxTokens    = 1500
)

// ErrSynthesis marks a failed language model call.
var ErrSynthesis = errors.New("synthesis failed")

// SynthesizerOptions holds the fixed sampling parameters. A nil Temperature
// means the default; an explicit 0 is kept.
type SynthesizerOptions struct {
	SystemPrompt string
	Temperature  *float64
	MaxTokens    int
}

// LLMSynthesizer implements ports.Synthesizer with a single chat completion.
type LLMSynthesizer struct {
	client       ports.ChatClient
	systemPrompt string
	temperature  float64
	maxTokens    int
}

var _ ports.Synthesizer = (*LLMSynthesizer)(nil)

// NewSynthesizer wires the chat client; unset options fall back to the defaults.
func NewSynthesizer(client ports.ChatClient, opts SynthesizerOptions) *LLMSynthesizer {
	s := &LLMSynthesizer{
		client:       client,
		systemPrompt: opts.SystemPrompt,
		temperature:  defaultTemperature,
		maxTokens:    opts.MaxTokens,
	}
	if strings.TrimSpace(s.systemPrompt) == "" {
		s.systemPrompt = defaultSystemPrompt
	}
	if opts.Temperature != nil && *opts.Temperature >= 0 {
		s.temperature = *opts.Temperature
	}
	if s.maxTokens <= 0 {
		s.maxTokens = defaultMaxTokens
	}
	return s
}

// Synthesize asks the model to restructure original using refs as style guides.
func (s *LLMSynthesizer) Synthesize(ctx context.Context, original domain.SourceArticle, refs []domain.Reference) (string, error) {
	if s.client == nil {
		return "", fmt.Errorf("%w: chat client is not configured", ErrSynthesis)
	}

	text, err := s.client.Complete(ctx, ports.ChatRequest{
		System:      s.systemPrompt,
		User:        BuildPrompt(original, refs),
		Temperature: s.temperature,
		MaxTokens:   s.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSynthesis, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: empty completion", ErrSynthesis)
	}

	return text, nil
}

// BuildPrompt renders the user message. The model is told to keep the facts
// of the original and only improve structure; nothing verifies that it did.
func BuildPrompt(original domain.SourceArticle, refs []domain.Reference) string {
	var b strings.Builder

	b.WriteString("Improve this article's formatting and structure using the reference articles as style guides.\n\n")
	b.WriteString("ORIGINAL:\n")
	b.WriteString(original.Title)
	b.WriteString("\n")
	b.WriteString(original.Content)
	b.WriteString("\n\nREFERENCES:\n")

	for i, ref := range refs {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "Ref %d: %s\n%s\n%s...", i+1, ref.Title, ref.URL, excerpt(ref.Text, referenceExcerptLength))
	}

	b.WriteString("\n\nKeep original facts. Improve readability, headings, flow only.")
	return b.String()
}

func excerpt(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
