package news

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStories(t *testing.T) {
	t.Parallel()

	items := map[int64]map[string]any{
		103: {"id": 103, "type": "story", "title": "newest", "url": "https://x.example/3", "by": "alice", "descendants": 7, "time": 1704100000},
		102: {"id": 102, "type": "comment", "text": "not a story", "time": 1704090000},
		101: {"id": 101, "type": "story", "title": "older", "by": "bob", "time": 1704080000},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/newstories.json" {
			json.NewEncoder(w).Encode([]int64{103, 102, 101})
			return
		}
		var id int64
		fmt.Sscanf(r.URL.Path, "/item/%d.json", &id)
		if item, ok := items[id]; ok {
			json.NewEncoder(w).Encode(item)
			return
		}
		w.Write([]byte("null"))
	}))
	t.Cleanup(srv.Close)

	cfg := DefaultHNConfig()
	cfg.BaseURL = srv.URL
	hn := NewHackerNews(cfg, nil)

	stories, err := hn.NewStories(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, stories, 2)

	// comment 被过滤，剩余按 ID 倒序
	assert.Equal(t, int64(103), stories[0].ID)
	assert.Equal(t, "newest", stories[0].Title)
	assert.Equal(t, "https://news.ycombinator.com/item?id=103", stories[0].HNLink)
	assert.Equal(t, 7, stories[0].Comments)
	assert.Equal(t, int64(101), stories[1].ID)
	assert.Empty(t, stories[1].URL)
}

func TestNewStoriesServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	cfg := DefaultHNConfig()
	cfg.BaseURL = srv.URL
	_, err := NewHackerNews(cfg, nil).NewStories(context.Background(), 5)
	assert.Error(t, err)
}
