package video

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateChain(t *testing.T) {
	t.Parallel()

	var srvURL string
	var created int
	var createBodies []createTaskRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/contents/generations/tasks":
			var body createTaskRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			createBodies = append(createBodies, body)
			created++
			json.NewEncoder(w).Encode(map[string]any{
				"id":     fmt.Sprintf("chain-%d", created),
				"status": "queued",
			})
		case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/contents/generations/tasks/"):
			id := strings.TrimPrefix(r.URL.Path, "/contents/generations/tasks/")
			json.NewEncoder(w).Encode(map[string]any{
				"id":     id,
				"status": "succeeded",
				"content": map[string]any{
					"video_url":      srvURL + "/files/" + id + ".mp4",
					"last_frame_url": srvURL + "/frames/" + id + ".png",
				},
			})
		default:
			w.Write([]byte("fake-mp4"))
		}
	}))
	t.Cleanup(srv.Close)
	srvURL = srv.URL

	cfg := DefaultConfig()
	cfg.APIKey = "k"
	cfg.BaseURL = srv.URL
	cfg.PollInterval = 10 * time.Millisecond
	c, err := NewClient(cfg, nil)
	require.NoError(t, err)

	dir := t.TempDir()
	result, err := c.GenerateChain(context.Background(), &ChainRequest{
		Segments: []Segment{
			{Prompt: "open on a harbor", Duration: 5},
			{Prompt: "zoom into the lighthouse", Duration: 5},
		},
	}, dir)
	require.NoError(t, err)
	require.Len(t, result.Segments, 2)

	// 第一段要求返回末帧，最后一段不要求
	require.Len(t, createBodies, 2)
	assert.True(t, createBodies[0].ReturnLastFrame)
	assert.False(t, createBodies[1].ReturnLastFrame)

	// 第二段以第一段的末帧为首帧
	var frameURL string
	for _, part := range createBodies[1].Content {
		if part.Type == "image_url" {
			assert.Equal(t, string(RoleFirstFrame), part.Role)
			frameURL = part.ImageURL.URL
		}
	}
	assert.Equal(t, srvURL+"/frames/chain-1.png", frameURL)

	for _, seg := range result.Segments {
		_, err := os.Stat(seg.LocalPath)
		assert.NoError(t, err)
	}
}

func TestGenerateChainEarlyErrorReturnsEmptyResult(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.APIKey = "k"
	c, err := NewClient(cfg, nil)
	require.NoError(t, err)

	ctx := context.Background()

	result, err := c.GenerateChain(ctx, &ChainRequest{}, t.TempDir())
	require.Error(t, err)
	require.NotNil(t, result)
	assert.Empty(t, result.Segments)

	// 输出目录不可创建时同样返回可遍历的空结果
	blocked := filepath.Join(t.TempDir(), "occupied")
	require.NoError(t, os.WriteFile(blocked, nil, 0644))
	result, err = c.GenerateChain(ctx, &ChainRequest{
		Segments: []Segment{{Prompt: "x"}},
	}, filepath.Join(blocked, "out"))
	require.Error(t, err)
	require.NotNil(t, result)
	assert.Empty(t, result.Segments)
}
