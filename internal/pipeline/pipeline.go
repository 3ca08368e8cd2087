// Package pipeline sequences the two stages of the transcription
// service: speech-to-text, then LLM cleanup. It owns the timing
// contract reported to clients.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/voicescribe/voicescribe/internal/cleanup"
	"github.com/voicescribe/voicescribe/internal/stt"
)

// AudioClip is one uploaded recording. Request-scoped, never persisted.
type AudioClip struct {
	Data        []byte
	Filename    string
	ContentType string
}

// Options control a single pipeline run.
type Options struct {
	UseCleanup   bool
	SystemPrompt string // request-scoped override; empty means the default
}

// DefaultOptions runs both stages with the default system prompt.
func DefaultOptions() Options {
	return Options{UseCleanup: true}
}

// Result is the wire payload of one pipeline invocation. Times are
// decimal seconds. TotalTime is the start-to-finish wall clock around
// both stages, so it is always >= TranscriptionTime + LLMTime.
type Result struct {
	RawText           string  `json:"raw_text"`
	CleanedText       string  `json:"cleaned_text"`
	TranscriptionTime float64 `json:"transcription_time"`
	LLMTime           float64 `json:"llm_time"`
	TotalTime         float64 `json:"total_time"`

	CleanupFellBack bool `json:"-"`
}

// TextCleaner is the cleanup stage as the orchestrator sees it.
type TextCleaner interface {
	Clean(ctx context.Context, text, promptOverride string) cleanup.Result
}

type Pipeline struct {
	stt      stt.STTProvider
	cleaner  TextCleaner
	language string
	beamSize int
}

func New(provider stt.STTProvider, cleaner TextCleaner, language string, beamSize int) *Pipeline {
	return &Pipeline{
		stt:      provider,
		cleaner:  cleaner,
		language: language,
		beamSize: beamSize,
	}
}

// Run executes transcription and, if enabled and the transcript is
// non-empty, cleanup. Cleanup never starts before transcription
// completes. A transcription error aborts the run; a cleanup error is
// absorbed by the cleaner, which hands back the raw text.
func (p *Pipeline) Run(ctx context.Context, clip AudioClip, opts Options) (*Result, error) {
	if len(clip.Data) == 0 {
		return nil, fmt.Errorf("empty audio clip")
	}

	start := time.Now()

	t0 := time.Now()
	resp, err := p.stt.Transcribe(ctx, stt.TranscriptionRequest{
		Audio:    bytes.NewReader(clip.Data),
		Filename: clip.Filename,
		Language: p.language,
		BeamSize: p.beamSize,
	})
	if err != nil {
		return nil, fmt.Errorf("transcription: %w", err)
	}
	transcriptionTime := time.Since(t0).Seconds()

	rawText := resp.Text

	var cleanedText string
	var llmTime float64
	var fellBack bool

	if opts.UseCleanup && rawText != "" {
		t1 := time.Now()
		res := p.cleaner.Clean(ctx, rawText, opts.SystemPrompt)
		// llm_time covers the attempt even when it fell back.
		llmTime = time.Since(t1).Seconds()
		cleanedText = res.Text
		fellBack = res.FellBack
	} else {
		cleanedText = rawText
		llmTime = 0
	}

	return &Result{
		RawText:           rawText,
		CleanedText:       cleanedText,
		TranscriptionTime: transcriptionTime,
		LLMTime:           llmTime,
		TotalTime:         time.Since(start).Seconds(),
		CleanupFellBack:   fellBack,
	}, nil
}
