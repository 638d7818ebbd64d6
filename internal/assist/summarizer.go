// Package assist turns the session edit log into a natural-language
// summary suitable as context for a code-generation backend.
package assist

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/vizedit/vizedit/internal/tracker"
)

// DefaultModel is used when the configuration names none.
const DefaultModel = "claude-sonnet-4-5"

const maxSummaryTokens = 1024

// ErrNoAPIKey is returned when ANTHROPIC_API_KEY is not set.
var ErrNoAPIKey = errors.New("assist: ANTHROPIC_API_KEY not set")

const systemPrompt = `You summarize visual edits made to a web page.
Given a list of style, class, content and insertion changes, produce a
short plain-English summary of what the operator changed, grouped by
element. Be specific about values. Do not speculate about intent.`

// Summarizer renders edit logs into prose via the Anthropic API.
type Summarizer struct {
	client anthropic.Client
	model  string
}

// NewSummarizer creates a summarizer. Returns ErrNoAPIKey when the
// environment carries no credentials.
func NewSummarizer(model string) (*Summarizer, error) {
	key := os.Getenv("ANTHROPIC_API_KEY")
	if key == "" {
		return nil, ErrNoAPIKey
	}
	if model == "" {
		model = DefaultModel
	}
	return &Summarizer{
		client: anthropic.NewClient(option.WithAPIKey(key)),
		model:  model,
	}, nil
}

// Summarize describes the given edits in plain English.
func (s *Summarizer) Summarize(ctx context.Context, edits []tracker.VisualEdit) (string, error) {
	if len(edits) == 0 {
		return "No edits this session.", nil
	}

	msg, err := s.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(s.model),
		MaxTokens: maxSummaryTokens,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(FormatEdits(edits))),
		},
	})
	if err != nil {
		return "", fmt.Errorf("assist: summarize: %w", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String(), nil
}

// FormatEdits renders the edit log as the prompt body, one line per edit.
func FormatEdits(edits []tracker.VisualEdit) string {
	var sb strings.Builder
	sb.WriteString("Edits in order:\n")
	for i, edit := range edits {
		target := edit.ElementTestID
		if target == "" {
			target = edit.ElementID
		}
		fmt.Fprintf(&sb, "%d. [%s] %s", i+1, edit.ChangeType, target)
		for field, change := range edit.Changes {
			fmt.Fprintf(&sb, " %s: %q -> %q", field, change.Before, change.After)
		}
		if edit.Description != "" {
			fmt.Fprintf(&sb, " (%s)", edit.Description)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
