package speech

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWhisperServer(t *testing.T, handler http.HandlerFunc) *WhisperSTT {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := DefaultWhisperConfig()
	cfg.APIKey = "test-key"
	cfg.BaseURL = srv.URL
	stt, err := NewWhisperSTT(cfg, nil)
	require.NoError(t, err)
	return stt
}

func TestTranscribeJSON(t *testing.T) {
	t.Parallel()

	stt := newWhisperServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/audio/transcriptions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		require.NoError(t, r.ParseMultipartForm(10<<20))
		assert.Equal(t, "whisper-1", r.FormValue("model"))
		assert.Equal(t, "verbose_json", r.FormValue("response_format"))
		assert.Equal(t, "zh", r.FormValue("language"))

		_, header, err := r.FormFile("file")
		require.NoError(t, err)
		assert.Equal(t, "talk.mp3", header.Filename)

		json.NewEncoder(w).Encode(map[string]any{
			"text":     "hello world",
			"language": "english",
			"duration": 2.5,
			"segments": []map[string]any{
				{"id": 0, "start": 0.0, "end": 1.2, "text": " hello"},
				{"id": 1, "start": 1.2, "end": 2.5, "text": " world"},
			},
		})
	})

	resp, err := stt.Transcribe(context.Background(), &STTRequest{
		Audio:          strings.NewReader("fake audio"),
		Filename:       "talk.mp3",
		Language:       "zh",
		ResponseFormat: "verbose_json",
	})
	require.NoError(t, err)
	assert.Equal(t, "hello world", resp.Text)
	require.Len(t, resp.Segments, 2)
	assert.Equal(t, "hello", resp.Segments[0].Text)
	assert.Equal(t, 1200*time.Millisecond, resp.Segments[0].End)
}

func TestTranscribeSRTRaw(t *testing.T) {
	t.Parallel()

	srt := "1\n00:00:00,000 --> 00:00:01,200\nhello\n\n"
	stt := newWhisperServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(10<<20))
		assert.Equal(t, "srt", r.FormValue("response_format"))
		w.Write([]byte(srt))
	})

	resp, err := stt.Transcribe(context.Background(), &STTRequest{
		Audio:          strings.NewReader("fake audio"),
		ResponseFormat: "srt",
	})
	require.NoError(t, err)
	assert.Equal(t, srt, resp.Raw)
}

func TestTranscribeAPIError(t *testing.T) {
	t.Parallel()

	stt := newWhisperServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": {"message": "bad key"}}`))
	})

	_, err := stt.Transcribe(context.Background(), &STTRequest{Audio: strings.NewReader("x")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=401")
}

func TestTranscribeFileUnsupportedFormat(t *testing.T) {
	t.Parallel()

	cfg := DefaultWhisperConfig()
	cfg.APIKey = "k"
	stt, err := NewWhisperSTT(cfg, nil)
	require.NoError(t, err)

	_, err = stt.TranscribeFile(context.Background(), "movie.avi", nil)
	assert.ErrorContains(t, err, "unsupported audio format")
}
