package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// OpenAISTTConfig holds configuration for the OpenAI-compatible STT backend.
type OpenAISTTConfig struct {
	APIKey  string
	BaseURL string // default: "https://api.openai.com/v1"
	Model   string // default: "whisper-1"
}

// OpenAISTT transcribes audio using OpenAI's Whisper API or any
// compatible endpoint (whisper.cpp server, faster-whisper-server).
type OpenAISTT struct {
	cfg        OpenAISTTConfig
	httpClient *http.Client
}

// NewOpenAISTT creates an OpenAISTT with sensible defaults applied.
func NewOpenAISTT(cfg OpenAISTTConfig) *OpenAISTT {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "whisper-1"
	}
	return &OpenAISTT{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 300 * time.Second,
		},
	}
}

func (o *OpenAISTT) Name() string { return "openai-whisper" }

// Transcribe uploads the audio stream as a multipart request and asks for
// verbose_json so the response carries timed segments. Errors are returned
// to the caller untouched; the pipeline treats them as fatal.
func (o *OpenAISTT) Transcribe(ctx context.Context, req TranscriptionRequest) (*TranscriptionResponse, error) {
	if req.Audio == nil {
		return nil, fmt.Errorf("no audio stream provided")
	}

	filename := req.Filename
	if filename == "" {
		filename = "audio.wav"
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err = io.Copy(fw, req.Audio); err != nil {
		return nil, fmt.Errorf("copy audio data: %w", err)
	}

	_ = mw.WriteField("model", o.cfg.Model)
	_ = mw.WriteField("response_format", "verbose_json")

	if req.Language != "" {
		_ = mw.WriteField("language", req.Language)
	}
	if req.BeamSize > 0 {
		_ = mw.WriteField("beam_size", strconv.Itoa(req.BeamSize))
	}
	if req.Prompt != "" {
		_ = mw.WriteField("prompt", req.Prompt)
	}

	if err = mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", o.cfg.BaseURL+"/audio/transcriptions", &body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())
	if o.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+o.cfg.APIKey)
	}

	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("transcription request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("transcription failed (status %d): %s", resp.StatusCode, string(respBody))
	}

	var apiResp struct {
		Text     string  `json:"text"`
		Language string  `json:"language"`
		Duration float64 `json:"duration"`
		Segments []struct {
			Start float64 `json:"start"`
			End   float64 `json:"end"`
			Text  string  `json:"text"`
		} `json:"segments"`
	}
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	segments := make([]Segment, 0, len(apiResp.Segments))
	for _, s := range apiResp.Segments {
		segments = append(segments, Segment{Start: s.Start, End: s.End, Text: s.Text})
	}

	return &TranscriptionResponse{
		Text:     joinSegments(apiResp.Text, segments),
		Language: apiResp.Language,
		Duration: apiResp.Duration,
		Segments: segments,
	}, nil
}

// joinSegments joins segment texts with single spaces, trimming each.
// Whisper segments carry leading spaces that would otherwise double up.
func joinSegments(fullText string, segments []Segment) string {
	if len(segments) == 0 {
		return strings.TrimSpace(fullText)
	}
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if t := strings.TrimSpace(s.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}
