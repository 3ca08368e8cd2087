package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/voicescribe/voicescribe/internal/bench"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	_ = godotenv.Load()

	var (
		url     = flag.String("url", "http://localhost:8000/api/full", "pipeline endpoint URL")
		runs    = flag.Int("runs", 4, "calls per fixture")
		warmup  = flag.Int("warmup", 1, "leading runs discarded from statistics")
		whisper = flag.String("whisper", envOr("WHISPER_MODEL", "base.en"), "whisper model label for the setup column")
		model   = flag.String("llm", envOr("LLM_MODEL", "gemma3:4b"), "llm model label for the setup column")
		out     = flag.String("out", "", "output CSV path (default benchmark/results_<llm>_<whisper>.csv)")
	)
	flag.Parse()

	audioFiles := flag.Args()
	if len(audioFiles) == 0 {
		fmt.Fprintln(os.Stderr, "usage: bench [flags] <audio file>...")
		flag.PrintDefaults()
		os.Exit(2)
	}

	if *warmup >= *runs {
		slog.Error("warmup must be smaller than runs", "runs", *runs, "warmup", *warmup)
		os.Exit(2)
	}

	outPath := *out
	if outPath == "" {
		outPath = filepath.Join("benchmark", fmt.Sprintf("results_%s_%s.csv", sanitize(*model), sanitize(*whisper)))
	}

	setup := bench.Setup{WhisperModel: *whisper, LLMModel: *model}
	slog.Info("benchmark setup", "name", setup.Name(), "url", *url)

	if dur, err := bench.WavDuration(audioFiles[0]); err == nil {
		slog.Info("fixture audio duration", "file", audioFiles[0], "seconds", dur)
	}

	runner := &bench.Runner{
		Client:     bench.NewClient(*url),
		Setup:      setup,
		NRuns:      *runs,
		WarmupRuns: *warmup,
	}

	results := runner.Benchmark(context.Background(), audioFiles)
	if len(results) == 0 {
		slog.Error("no results to save")
		os.Exit(1)
	}

	for _, s := range results {
		slog.Info("summary",
			"file", s.AudioFile,
			"n_runs", s.NRuns,
			"stt_mean_s", s.TranscriptionTime.Mean, "stt_std_s", s.TranscriptionTime.Std,
			"llm_mean_s", s.LLMTime.Mean, "llm_std_s", s.LLMTime.Std,
			"total_mean_s", s.TotalTime.Mean, "total_std_s", s.TotalTime.Std,
		)
	}

	if err := bench.WriteCSV(outPath, results); err != nil {
		slog.Error("failed to write results", "error", err)
		os.Exit(1)
	}
	slog.Info("results saved", "path", outPath)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// sanitize keeps model names filesystem-safe ("llama3:8b" has a colon).
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', ':', ' ':
			return '-'
		}
		return r
	}, s)
}
