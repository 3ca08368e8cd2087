// Package bench drives the transcription service over HTTP and
// aggregates per-stage latency across repeated runs.
package bench

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// Setup identifies the model pair under test; it is stamped onto every
// summary row.
type Setup struct {
	WhisperModel string
	LLMModel     string
}

func (s Setup) Name() string {
	return fmt.Sprintf("whisper:%s + llm:%s", s.WhisperModel, s.LLMModel)
}

// Run is one measured invocation. WallTime is measured client-side
// around the whole HTTP call and so includes upload and network cost on
// top of the server-side TotalTime.
type Run struct {
	TranscriptionTime float64
	LLMTime           float64
	TotalTime         float64
	WallTime          float64
}

// Summary aggregates the valid (post-warmup) runs for one fixture.
type Summary struct {
	Setup
	AudioFile string
	NRuns     int

	TranscriptionTime Stats
	LLMTime           Stats
	TotalTime         Stats
	WallTime          Stats
}

// Client posts fixture files to the service's pipeline endpoint.
type Client struct {
	URL        string // full endpoint URL, e.g. "http://localhost:8000/api/full"
	HTTPClient *http.Client
}

// NewClient builds a client without a request timeout: a cold model can
// take minutes on the first run.
func NewClient(url string) *Client {
	return &Client{URL: url, HTTPClient: &http.Client{}}
}

// RunOnce uploads one audio file and returns its timing breakdown. A
// transport failure, a non-200 status, and a success:false payload are
// all reported as errors; the caller decides whether to keep going.
func (c *Client) RunOnce(ctx context.Context, audioPath string) (Run, error) {
	data, err := os.ReadFile(audioPath)
	if err != nil {
		return Run{}, fmt.Errorf("read audio file: %w", err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("audio", filepath.Base(audioPath))
	if err != nil {
		return Run{}, fmt.Errorf("create form file: %w", err)
	}
	if _, err := fw.Write(data); err != nil {
		return Run{}, fmt.Errorf("write audio data: %w", err)
	}
	if err := mw.Close(); err != nil {
		return Run{}, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.URL, &body)
	if err != nil {
		return Run{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return Run{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Run{}, fmt.Errorf("read response: %w", err)
	}
	// Wall time covers the full round trip including the body read,
	// not just time to first byte.
	wallTime := time.Since(start).Seconds()
	if resp.StatusCode != http.StatusOK {
		return Run{}, fmt.Errorf("request failed (status %d): %s", resp.StatusCode, string(respBody))
	}

	var payload struct {
		Success           bool    `json:"success"`
		Error             string  `json:"error"`
		TranscriptionTime float64 `json:"transcription_time"`
		LLMTime           float64 `json:"llm_time"`
		TotalTime         float64 `json:"total_time"`
	}
	if err := json.Unmarshal(respBody, &payload); err != nil {
		return Run{}, fmt.Errorf("parse response: %w", err)
	}
	if !payload.Success {
		return Run{}, fmt.Errorf("backend error: %s", payload.Error)
	}

	return Run{
		TranscriptionTime: payload.TranscriptionTime,
		LLMTime:           payload.LLMTime,
		TotalTime:         payload.TotalTime,
		WallTime:          wallTime,
	}, nil
}

// Runner benchmarks fixtures sequentially: NRuns calls per file, the
// first WarmupRuns discarded from statistics.
type Runner struct {
	Client     *Client
	Setup      Setup
	NRuns      int
	WarmupRuns int
}

// BenchmarkFile runs one fixture. It returns nil when no run survives
// the warmup cut, so a dead backend skips the fixture instead of
// producing an empty row.
func (r *Runner) BenchmarkFile(ctx context.Context, audioPath string) *Summary {
	slog.Info("benchmarking fixture", "file", audioPath, "runs", r.NRuns, "warmup", r.WarmupRuns)

	var runs []Run
	for i := 0; i < r.NRuns; i++ {
		run, err := r.Client.RunOnce(ctx, audioPath)
		if err != nil {
			slog.Warn("run failed", "file", audioPath, "run", i+1, "error", err)
			continue
		}
		slog.Info("run complete",
			"run", i+1,
			"stt_s", run.TranscriptionTime,
			"llm_s", run.LLMTime,
			"total_s", run.TotalTime,
			"wall_s", run.WallTime,
		)
		runs = append(runs, run)
	}

	if len(runs) <= r.WarmupRuns {
		slog.Warn("no valid runs after warmup, skipping fixture", "file", audioPath)
		return nil
	}
	valid := runs[r.WarmupRuns:]

	return Summarize(r.Setup, filepath.Base(audioPath), valid)
}

// Benchmark runs every fixture and collects the non-skipped summaries.
func (r *Runner) Benchmark(ctx context.Context, audioPaths []string) []Summary {
	var results []Summary
	for _, p := range audioPaths {
		if s := r.BenchmarkFile(ctx, p); s != nil {
			results = append(results, *s)
		}
	}
	return results
}

// Summarize aggregates a set of valid runs into one summary row.
func Summarize(setup Setup, audioFile string, valid []Run) *Summary {
	pick := func(f func(Run) float64) []float64 {
		vals := make([]float64, len(valid))
		for i, r := range valid {
			vals[i] = f(r)
		}
		return vals
	}

	return &Summary{
		Setup:             setup,
		AudioFile:         audioFile,
		NRuns:             len(valid),
		TranscriptionTime: Aggregate(pick(func(r Run) float64 { return r.TranscriptionTime })),
		LLMTime:           Aggregate(pick(func(r Run) float64 { return r.LLMTime })),
		TotalTime:         Aggregate(pick(func(r Run) float64 { return r.TotalTime })),
		WallTime:          Aggregate(pick(func(r Run) float64 { return r.WallTime })),
	}
}
