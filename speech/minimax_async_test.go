package speech

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAsyncServer(t *testing.T, handler http.HandlerFunc) *AsyncTTS {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := DefaultMiniMaxConfig()
	cfg.APIKey = "test-key"
	cfg.BaseURL = srv.URL
	tts, err := NewAsyncTTS(cfg, nil)
	require.NoError(t, err)
	return tts
}

func TestCreateTask(t *testing.T) {
	t.Parallel()

	tts := newAsyncServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/t2a_async_v2", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"base_resp":        map[string]any{"status_code": 0},
			"task_id":          12345,
			"file_id":          67890,
			"usage_characters": 42,
		})
	})

	task, err := tts.CreateTask(context.Background(), &TTSRequest{
		Text:  "long text",
		Voice: "v1",
	}, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(12345), task.TaskID)
	assert.Equal(t, int64(67890), task.FileID)
	assert.Equal(t, 42, task.UsageCharacters)
}

func TestCreateTaskValidation(t *testing.T) {
	t.Parallel()

	cfg := DefaultMiniMaxConfig()
	cfg.APIKey = "k"
	tts, err := NewAsyncTTS(cfg, nil)
	require.NoError(t, err)

	ctx := context.Background()

	_, err = tts.CreateTask(ctx, &TTSRequest{Voice: "v1"}, 0)
	assert.ErrorContains(t, err, "text or text_file_id")

	_, err = tts.CreateTask(ctx, &TTSRequest{Text: "hi"}, 0)
	assert.ErrorContains(t, err, "voice is required")

	_, err = tts.CreateTask(ctx, &TTSRequest{
		Text:  strings.Repeat("a", maxAsyncTextLen+1),
		Voice: "v1",
	}, 0)
	assert.ErrorContains(t, err, "50000")
}

func TestCreateTaskCountsCharactersNotBytes(t *testing.T) {
	t.Parallel()

	tts := newAsyncServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"base_resp": map[string]any{"status_code": 0},
			"task_id":   1,
		})
	})

	// 汉字文本字节数超过上限但字符数未超，应放行
	text := strings.Repeat("好", 20000)
	require.Greater(t, len(text), maxAsyncTextLen)

	_, err := tts.CreateTask(context.Background(), &TTSRequest{Text: text, Voice: "v1"}, 0)
	require.NoError(t, err)

	_, err = tts.CreateTask(context.Background(), &TTSRequest{
		Text:  strings.Repeat("好", maxAsyncTextLen+1),
		Voice: "v1",
	}, 0)
	assert.ErrorContains(t, err, "50000")
}

func TestWaitForCompletion(t *testing.T) {
	t.Parallel()

	var polls atomic.Int64
	tts := newAsyncServer(t, func(w http.ResponseWriter, r *http.Request) {
		status := "processing"
		if polls.Add(1) >= 3 {
			status = "Success"
		}
		json.NewEncoder(w).Encode(map[string]any{
			"base_resp": map[string]any{"status_code": 0},
			"task_id":   1,
			"status":    status,
			"file_id":   99,
		})
	})

	result, err := tts.WaitForCompletion(context.Background(), 1, 10*time.Millisecond, 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, AsyncStatusSuccess, result.Status)
	assert.Equal(t, int64(99), result.FileID)
	assert.GreaterOrEqual(t, polls.Load(), int64(3))
}

func TestWaitForCompletionFailed(t *testing.T) {
	t.Parallel()

	tts := newAsyncServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"base_resp": map[string]any{"status_code": 0},
			"task_id":   1,
			"status":    "failed",
		})
	})

	_, err := tts.WaitForCompletion(context.Background(), 1, 10*time.Millisecond, time.Second)
	assert.ErrorContains(t, err, "failed")
}

func TestWaitForCompletionExpired(t *testing.T) {
	t.Parallel()

	tts := newAsyncServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"base_resp": map[string]any{"status_code": 0},
			"task_id":   1,
			"status":    "expired",
		})
	})

	_, err := tts.WaitForCompletion(context.Background(), 1, 10*time.Millisecond, time.Second)
	assert.ErrorContains(t, err, "expired")
}

func TestWaitForCompletionCanceled(t *testing.T) {
	t.Parallel()

	tts := newAsyncServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"base_resp": map[string]any{"status_code": 0},
			"status":    "processing",
		})
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := tts.WaitForCompletion(ctx, 1, 10*time.Millisecond, time.Minute)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDownloadResult(t *testing.T) {
	t.Parallel()

	content := []byte("audio-bytes")
	var srvURL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/v1/files/retrieve"):
			assert.Equal(t, "42", r.URL.Query().Get("file_id"))
			json.NewEncoder(w).Encode(map[string]any{
				"base_resp": map[string]any{"status_code": 0},
				"file":      map[string]any{"download_url": srvURL + "/dl/result.mp3"},
			})
		case r.URL.Path == "/dl/result.mp3":
			w.Write(content)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	srvURL = srv.URL

	cfg := DefaultMiniMaxConfig()
	cfg.APIKey = "k"
	cfg.BaseURL = srv.URL
	tts, err := NewAsyncTTS(cfg, nil)
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "out.mp3")
	require.NoError(t, tts.DownloadResult(context.Background(), 42, "audio", out))

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}
