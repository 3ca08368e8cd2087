package bench

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// headers and row must stay aligned; the CSV column set is derived from
// the first summary's field names.
func (s Summary) headers() []string {
	return []string{
		"whisper", "llm", "setup_name",
		"audio_file", "n_runs",
		"transcription_time_mean", "transcription_time_std",
		"llm_time_mean", "llm_time_std",
		"total_time_mean", "total_time_std",
		"wall_time_mean", "wall_time_std",
	}
}

func (s Summary) row() []string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return []string{
		s.WhisperModel, s.LLMModel, s.Name(),
		s.AudioFile, strconv.Itoa(s.NRuns),
		f(s.TranscriptionTime.Mean), f(s.TranscriptionTime.Std),
		f(s.LLMTime.Mean), f(s.LLMTime.Std),
		f(s.TotalTime.Mean), f(s.TotalTime.Std),
		f(s.WallTime.Mean), f(s.WallTime.Std),
	}
}

// WriteCSV writes one row per fixture. Timing columns are decimal
// seconds.
func WriteCSV(path string, results []Summary) error {
	if len(results) == 0 {
		return fmt.Errorf("no results to save")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(results[0].headers()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, s := range results {
		if err := w.Write(s.row()); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}
