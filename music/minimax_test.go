package music

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMusicServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := DefaultConfig()
	cfg.APIKey = "test-key"
	cfg.BaseURL = srv.URL
	c, err := NewClient(cfg, nil)
	require.NoError(t, err)
	return c
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	audio := []byte("fake-music")
	c := newMusicServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/music_generation", r.URL.Path)

		var body minimaxMusicRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "hex", body.OutputFormat)
		assert.False(t, body.Stream)
		assert.Contains(t, body.Lyrics, "[Verse]")

		json.NewEncoder(w).Encode(map[string]any{
			"base_resp": map[string]any{"status_code": 0},
			"data":      map[string]any{"audio": hex.EncodeToString(audio), "status": 2},
			"extra_info": map[string]any{
				"music_duration": 30000,
				"audio_size":     len(audio),
			},
		})
	})

	resp, err := c.Generate(context.Background(), &Request{
		Lyrics: "[Verse]\nhello world\n",
		Prompt: "upbeat pop",
	})
	require.NoError(t, err)
	assert.Equal(t, audio, resp.AudioData)
	assert.Equal(t, 30*time.Second, resp.Duration)
}

func TestGenerateValidation(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.APIKey = "k"
	c, err := NewClient(cfg, nil)
	require.NoError(t, err)

	ctx := context.Background()

	_, err = c.Generate(ctx, &Request{})
	assert.ErrorContains(t, err, "lyrics is required")

	_, err = c.Generate(ctx, &Request{Lyrics: strings.Repeat("a", maxLyricsLen+1)})
	assert.ErrorContains(t, err, "3500")

	_, err = c.Generate(ctx, &Request{Lyrics: "la", Prompt: strings.Repeat("p", maxPromptLen+1)})
	assert.ErrorContains(t, err, "2000")
}

func TestGenerateCountsCharactersNotBytes(t *testing.T) {
	t.Parallel()

	c := newMusicServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"base_resp": map[string]any{"status_code": 0},
			"data":      map[string]any{"audio": hex.EncodeToString([]byte("m")), "status": 2},
		})
	})

	// 中文歌词字节数超过上限但字符数未超，应放行
	lyrics := "[Verse]\n" + strings.Repeat("歌", 3000)
	require.Greater(t, len(lyrics), maxLyricsLen)

	_, err := c.Generate(context.Background(), &Request{Lyrics: lyrics})
	require.NoError(t, err)

	_, err = c.Generate(context.Background(), &Request{Lyrics: strings.Repeat("歌", maxLyricsLen+1)})
	assert.ErrorContains(t, err, "3500")

	_, err = c.Generate(context.Background(), &Request{Lyrics: "la", Prompt: strings.Repeat("柔", maxPromptLen+1)})
	assert.ErrorContains(t, err, "2000")
}

func TestGenerateAPIError(t *testing.T) {
	t.Parallel()

	c := newMusicServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"base_resp": map[string]any{"status_code": 2013, "status_msg": "insufficient balance"},
		})
	})

	_, err := c.Generate(context.Background(), &Request{Lyrics: "la la"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient balance")
}

func TestComposeLyrics(t *testing.T) {
	t.Parallel()

	lyrics, err := ComposeLyrics([]Section{
		{Tag: TagVerse, Lines: []string{"line one", " line two "}},
		{Tag: TagChorus, Lines: []string{"hook"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "[Verse]\nline one\nline two\n\n[Chorus]\nhook\n", lyrics)
}

func TestComposeLyricsValidation(t *testing.T) {
	t.Parallel()

	_, err := ComposeLyrics(nil)
	assert.ErrorContains(t, err, "at least one section")

	_, err = ComposeLyrics([]Section{{Tag: TagVerse}})
	assert.ErrorContains(t, err, "no lines")

	// 中文歌词按字符数计长，字节数超限不报错
	long, err := ComposeLyrics([]Section{{Tag: TagVerse, Lines: []string{strings.Repeat("歌", 3000)}}})
	require.NoError(t, err)
	assert.Greater(t, len(long), maxLyricsLen)
}
