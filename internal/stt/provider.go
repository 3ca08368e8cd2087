package stt

import (
	"context"
	"io"
)

// TranscriptionRequest holds the parameters for one transcription call.
// Audio is consumed exactly once; callers re-wrap their bytes per call.
type TranscriptionRequest struct {
	Audio    io.Reader
	Filename string
	Language string
	BeamSize int
	Prompt   string
}

// Segment is one recognized span of speech.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// TranscriptionResponse holds the transcription result. Text is the
// segments joined by single spaces with surrounding whitespace trimmed.
type TranscriptionResponse struct {
	Text     string    `json:"text"`
	Language string    `json:"language"`
	Duration float64   `json:"duration"`
	Segments []Segment `json:"segments,omitempty"`
}

// STTProvider is the interface for speech-to-text backends.
type STTProvider interface {
	Transcribe(ctx context.Context, req TranscriptionRequest) (*TranscriptionResponse, error)
	Name() string
}
