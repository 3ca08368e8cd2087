// Package history keeps a per-invocation log of pipeline runs in
// Postgres. The transcript payloads themselves are stored so past runs
// can be reviewed; audio is never persisted.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Record is one pipeline invocation.
type Record struct {
	ID                uuid.UUID `json:"id"`
	Filename          string    `json:"filename"`
	STTBackend        string    `json:"stt_backend"`
	LLMProvider       string    `json:"llm_provider"`
	LLMModel          string    `json:"llm_model"`
	RawText           string    `json:"raw_text"`
	CleanedText       string    `json:"cleaned_text"`
	TranscriptionTime float64   `json:"transcription_time"`
	LLMTime           float64   `json:"llm_time"`
	TotalTime         float64   `json:"total_time"`
	CleanupFellBack   bool      `json:"cleanup_fell_back"`
	CreatedAt         time.Time `json:"created_at"`
}

// Init creates the schema. One table, so no migration files.
func (s *Store) Init(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS transcription_runs (
			id UUID PRIMARY KEY,
			filename TEXT NOT NULL,
			stt_backend TEXT NOT NULL,
			llm_provider TEXT NOT NULL,
			llm_model TEXT NOT NULL,
			raw_text TEXT NOT NULL,
			cleaned_text TEXT NOT NULL,
			transcription_time DOUBLE PRECISION NOT NULL,
			llm_time DOUBLE PRECISION NOT NULL,
			total_time DOUBLE PRECISION NOT NULL,
			cleanup_fell_back BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return fmt.Errorf("create transcription_runs table: %w", err)
	}
	return nil
}

func (s *Store) Record(ctx context.Context, rec Record) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}

	_, err := s.db.Exec(ctx,
		`INSERT INTO transcription_runs
		 (id, filename, stt_backend, llm_provider, llm_model, raw_text, cleaned_text,
		  transcription_time, llm_time, total_time, cleanup_fell_back)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		rec.ID, rec.Filename, rec.STTBackend, rec.LLMProvider, rec.LLMModel,
		rec.RawText, rec.CleanedText,
		rec.TranscriptionTime, rec.LLMTime, rec.TotalTime, rec.CleanupFellBack,
	)
	if err != nil {
		return fmt.Errorf("insert transcription run: %w", err)
	}
	return nil
}

func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(ctx,
		`SELECT id, filename, stt_backend, llm_provider, llm_model, raw_text, cleaned_text,
		        transcription_time, llm_time, total_time, cleanup_fell_back, created_at
		 FROM transcription_runs
		 ORDER BY created_at DESC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query transcription runs: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(
			&r.ID, &r.Filename, &r.STTBackend, &r.LLMProvider, &r.LLMModel,
			&r.RawText, &r.CleanedText,
			&r.TranscriptionTime, &r.LLMTime, &r.TotalTime, &r.CleanupFellBack, &r.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan transcription run: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
