package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voicescribe/voicescribe/internal/cleanup"
	"github.com/voicescribe/voicescribe/internal/pipeline"
	"github.com/voicescribe/voicescribe/internal/stt"
)

type fakeSTT struct {
	text string
	err  error
}

func (f *fakeSTT) Transcribe(ctx context.Context, req stt.TranscriptionRequest) (*stt.TranscriptionResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &stt.TranscriptionResponse{Text: f.text}, nil
}

func (f *fakeSTT) Name() string { return "fake-stt" }

type fakeCleaner struct {
	result cleanup.Result
	calls  int
}

func (f *fakeCleaner) Clean(ctx context.Context, text, promptOverride string) cleanup.Result {
	f.calls++
	return f.result
}

func newHandler(sttFake *fakeSTT, cleanerFake *fakeCleaner) *TranscribeHandler {
	pipe := pipeline.New(sttFake, cleanerFake, "en", 5)
	return NewTranscribeHandler(pipe, nil, nil, ModelIDs{
		STTBackend:  "fake-stt",
		LLMProvider: "openai",
		LLMModel:    "gemma3:4b",
	})
}

func multipartBody(t *testing.T, fields map[string]string, withAudio bool) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if withAudio {
		fw, err := mw.CreateFormFile("audio", "sample.wav")
		require.NoError(t, err)
		_, err = fw.Write([]byte("fake audio bytes"))
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func doRequest(t *testing.T, h *TranscribeHandler, body *bytes.Buffer, contentType string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/full", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.FullPipeline(rec, req)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return rec, payload
}

func TestFullPipelineSuccess(t *testing.T) {
	h := newHandler(
		&fakeSTT{text: "hello world"},
		&fakeCleaner{result: cleanup.Result{Text: "Hello, world."}},
	)

	body, ct := multipartBody(t, nil, true)
	rec, payload := doRequest(t, h, body, ct)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, payload["success"])
	assert.Equal(t, "hello world", payload["raw_text"])
	assert.Equal(t, "Hello, world.", payload["cleaned_text"])
	assert.GreaterOrEqual(t, payload["total_time"].(float64), payload["transcription_time"].(float64))
}

func TestFullPipelineMissingFile(t *testing.T) {
	h := newHandler(&fakeSTT{text: "x"}, &fakeCleaner{})

	body, ct := multipartBody(t, map[string]string{"use_llm": "true"}, false)
	rec, payload := doRequest(t, h, body, ct)

	// Application errors still use a 200-level status; clients branch
	// on the success field.
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, payload["success"])
	assert.Contains(t, payload["error"], "audio file is required")
}

func TestFullPipelineSTTFailure(t *testing.T) {
	h := newHandler(&fakeSTT{err: errors.New("engine exploded")}, &fakeCleaner{})

	body, ct := multipartBody(t, nil, true)
	rec, payload := doRequest(t, h, body, ct)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, payload["success"])
	assert.Contains(t, payload["error"], "engine exploded")
	// No partial transcript on a fatal pipeline error.
	assert.NotContains(t, payload, "raw_text")
	assert.NotContains(t, payload, "cleaned_text")
}

func TestFullPipelineUseLLMFalse(t *testing.T) {
	cleaner := &fakeCleaner{result: cleanup.Result{Text: "should not run"}}
	h := newHandler(&fakeSTT{text: "hello world"}, cleaner)

	body, ct := multipartBody(t, map[string]string{"use_llm": "false"}, true)
	_, payload := doRequest(t, h, body, ct)

	assert.Equal(t, true, payload["success"])
	assert.Equal(t, "hello world", payload["cleaned_text"])
	assert.Equal(t, 0.0, payload["llm_time"])
	assert.Equal(t, 0, cleaner.calls)
}

func TestFullPipelineInvalidUseLLM(t *testing.T) {
	h := newHandler(&fakeSTT{text: "x"}, &fakeCleaner{})

	body, ct := multipartBody(t, map[string]string{"use_llm": "maybe"}, true)
	_, payload := doRequest(t, h, body, ct)

	assert.Equal(t, false, payload["success"])
	assert.Contains(t, payload["error"], "use_llm")
}

func TestFullPipelineEmptyUpload(t *testing.T) {
	h := newHandler(&fakeSTT{text: "x"}, &fakeCleaner{})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	_, err := mw.CreateFormFile("audio", "empty.wav")
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	_, payload := doRequest(t, h, &body, mw.FormDataContentType())
	assert.Equal(t, false, payload["success"])
	assert.Contains(t, payload["error"], "empty audio upload")
}

func TestHistoryDisabled(t *testing.T) {
	h := newHandler(&fakeSTT{}, &fakeCleaner{})

	req := httptest.NewRequest("GET", "/api/history", nil)
	rec := httptest.NewRecorder()
	h.History(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
