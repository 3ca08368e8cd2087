// Package cleanup post-processes raw transcripts through a language
// model: punctuation, capitalization, and grammar fixes without
// changing meaning. A failed model call never fails the caller; the
// raw transcript is always a usable answer.
package cleanup

import (
	"context"
	"log/slog"
	"strings"

	"github.com/voicescribe/voicescribe/internal/llm"
)

// ChatClient is the slice of the LLM gateway the cleaner needs.
type ChatClient interface {
	Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error)
}

// Result reports which path produced Text. FellBack is true when the
// model call failed (or returned nothing) and Text is the raw input.
type Result struct {
	Text     string
	FellBack bool
	Err      error
}

type Cleaner struct {
	client        ChatClient
	model         string
	defaultPrompt string
	temperature   float64
	maxTokens     int
}

type Options struct {
	Model         string
	DefaultPrompt string
	Temperature   float64
	MaxTokens     int
}

// NewCleaner builds a cleaner from explicit options. Temperature is
// passed through as-is: 0 is a valid, deterministic-leaning setting,
// and config.Load already owns the 0.3 default.
func NewCleaner(client ChatClient, opts Options) *Cleaner {
	if opts.MaxTokens == 0 {
		opts.MaxTokens = 200
	}
	return &Cleaner{
		client:        client,
		model:         opts.Model,
		defaultPrompt: opts.DefaultPrompt,
		temperature:   opts.Temperature,
		maxTokens:     opts.MaxTokens,
	}
}

// DefaultPrompt returns the prompt used when no override is supplied.
func (c *Cleaner) DefaultPrompt() string { return c.defaultPrompt }

// Clean sends the raw transcript to the model with the system prompt
// (promptOverride when non-empty, otherwise the default loaded at
// startup). Empty input returns immediately without a remote call.
func (c *Cleaner) Clean(ctx context.Context, text, promptOverride string) Result {
	if text == "" {
		return Result{Text: ""}
	}

	prompt := c.defaultPrompt
	if promptOverride != "" {
		prompt = promptOverride
	}

	resp, err := c.client.Chat(ctx, llm.ChatRequest{
		Model: c.model,
		Messages: []llm.Message{
			{Role: "system", Content: prompt},
			{Role: "user", Content: text},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		slog.Warn("cleanup failed, returning raw transcript", "error", err)
		return Result{Text: text, FellBack: true, Err: err}
	}

	cleaned := strings.TrimSpace(resp.Content)
	if cleaned == "" {
		// An empty completion is as useless as an error.
		return Result{Text: text, FellBack: true}
	}
	return Result{Text: cleaned}
}
