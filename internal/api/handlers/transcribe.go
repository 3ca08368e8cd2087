package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/voicescribe/voicescribe/internal/cache"
	"github.com/voicescribe/voicescribe/internal/history"
	"github.com/voicescribe/voicescribe/internal/pipeline"
)

const maxUploadBytes = 64 << 20

// ModelIDs label history rows with the models that produced them.
type ModelIDs struct {
	STTBackend  string
	LLMProvider string
	LLMModel    string
}

type TranscribeHandler struct {
	pipe    *pipeline.Pipeline
	cache   *cache.TranscriptCache // nil when caching is disabled
	history *history.Store         // nil when no database is configured
	models  ModelIDs
}

func NewTranscribeHandler(pipe *pipeline.Pipeline, tc *cache.TranscriptCache, hs *history.Store, models ModelIDs) *TranscribeHandler {
	return &TranscribeHandler{
		pipe:    pipe,
		cache:   tc,
		history: hs,
		models:  models,
	}
}

type successResponse struct {
	Success bool `json:"success"`
	pipeline.Result
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// writeFailure uses HTTP 200: clients of this endpoint branch on the
// success field, and a JSON body keeps application errors
// distinguishable from transport errors.
func writeFailure(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusOK, errorResponse{Success: false, Error: msg})
}

// FullPipeline handles POST /api/full: multipart field "audio"
// (required), optional "system_prompt" and "use_llm" fields.
func (h *TranscribeHandler) FullPipeline(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeFailure(w, "invalid multipart body: "+err.Error())
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		writeFailure(w, "audio file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeFailure(w, "read audio upload: "+err.Error())
		return
	}
	if len(data) == 0 {
		writeFailure(w, "empty audio upload")
		return
	}

	opts := pipeline.DefaultOptions()
	opts.SystemPrompt = r.FormValue("system_prompt")
	if v := r.FormValue("use_llm"); v != "" {
		useLLM, err := strconv.ParseBool(v)
		if err != nil {
			writeFailure(w, "invalid use_llm value: "+v)
			return
		}
		opts.UseCleanup = useLLM
	}

	clip := pipeline.AudioClip{
		Data:        data,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
	}

	var cacheKey string
	if h.cache != nil && opts.UseCleanup {
		cacheKey = h.cache.Key(data, opts.SystemPrompt)
		if cached, err := h.cache.Get(r.Context(), cacheKey); err == nil {
			writeJSON(w, http.StatusOK, successResponse{Success: true, Result: *cached})
			return
		}
	}

	result, err := h.pipe.Run(r.Context(), clip, opts)
	if err != nil {
		slog.Error("pipeline failed", "filename", header.Filename, "error", err)
		writeFailure(w, err.Error())
		return
	}

	if cacheKey != "" {
		if err := h.cache.Set(r.Context(), cacheKey, result); err != nil {
			slog.Warn("transcript cache write failed", "error", err)
		}
	}

	if h.history != nil {
		h.recordRun(header.Filename, result)
	}

	writeJSON(w, http.StatusOK, successResponse{Success: true, Result: *result})
}

// recordRun logs the invocation off the request path; the response must
// not wait on (or fail with) the history database.
func (h *TranscribeHandler) recordRun(filename string, result *pipeline.Result) {
	rec := history.Record{
		Filename:          filename,
		STTBackend:        h.models.STTBackend,
		LLMProvider:       h.models.LLMProvider,
		LLMModel:          h.models.LLMModel,
		RawText:           result.RawText,
		CleanedText:       result.CleanedText,
		TranscriptionTime: result.TranscriptionTime,
		LLMTime:           result.LLMTime,
		TotalTime:         result.TotalTime,
		CleanupFellBack:   result.CleanupFellBack,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.history.Record(ctx, rec); err != nil {
			slog.Warn("history write failed", "error", err)
		}
	}()
}

// History handles GET /api/history?limit=N.
func (h *TranscribeHandler) History(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "history is not enabled"})
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
		limit = n
	}

	records, err := h.history.Recent(r.Context(), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if records == nil {
		records = []history.Record{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"runs": records})
}
