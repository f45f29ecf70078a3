package news

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rssBody(items ...string) string {
	body := `<?xml version="1.0"?><rss version="2.0"><channel><title>feed</title>`
	for _, it := range items {
		body += it
	}
	return body + `</channel></rss>`
}

func rssEntry(title, link, pubDate string) string {
	return fmt.Sprintf(`<item><title>%s</title><link>%s</link><pubDate>%s</pubDate></item>`,
		title, link, pubDate)
}

func TestFetchAggregatesAndSorts(t *testing.T) {
	t.Parallel()

	srv1 := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(rssBody(
			rssEntry("older story", "https://a.example/1", "Mon, 01 Jan 2024 08:00:00 +0000"),
			rssEntry("newest story", "https://a.example/2", "Wed, 03 Jan 2024 08:00:00 +0000"),
		)))
	}))
	t.Cleanup(srv1.Close)

	srv2 := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(rssBody(
			rssEntry("middle story", "https://b.example/1", "Tue, 02 Jan 2024 08:00:00 +0000"),
		)))
	}))
	t.Cleanup(srv2.Close)

	cfg := DefaultAggregatorConfig()
	cfg.Sources = []Source{
		{Name: "alpha", URL: srv1.URL},
		{Name: "beta", URL: srv2.URL},
	}
	agg := NewAggregator(cfg, nil)

	items, err := agg.Fetch(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "newest story", items[0].Title)
	assert.Equal(t, "middle story", items[1].Title)
	assert.Equal(t, "older story", items[2].Title)
	assert.Equal(t, "alpha", items[0].Source)
}

func TestFetchDeduplicates(t *testing.T) {
	t.Parallel()

	entry := rssEntry("same story", "https://x.example/1", "Mon, 01 Jan 2024 08:00:00 +0000")
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(rssBody(entry)))
	})
	srv1 := httptest.NewServer(handler)
	srv2 := httptest.NewServer(handler)
	t.Cleanup(srv1.Close)
	t.Cleanup(srv2.Close)

	cfg := DefaultAggregatorConfig()
	cfg.Sources = []Source{
		{Name: "mirror1", URL: srv1.URL},
		{Name: "mirror2", URL: srv2.URL},
	}
	items, err := NewAggregator(cfg, nil).Fetch(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestFetchToleratesSourceFailure(t *testing.T) {
	t.Parallel()

	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(rssBody(rssEntry("survivor", "https://ok.example/1", "Mon, 01 Jan 2024 08:00:00 +0000"))))
	}))
	t.Cleanup(good.Close)

	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(bad.Close)

	cfg := DefaultAggregatorConfig()
	cfg.Sources = []Source{
		{Name: "good", URL: good.URL},
		{Name: "bad", URL: bad.URL},
	}
	items, err := NewAggregator(cfg, nil).Fetch(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "survivor", items[0].Title)
}

func TestFetchLimit(t *testing.T) {
	t.Parallel()

	var entries []string
	for i := 0; i < 10; i++ {
		entries = append(entries, rssEntry(
			fmt.Sprintf("story %d", i),
			fmt.Sprintf("https://x.example/%d", i),
			time.Date(2024, 1, i+1, 8, 0, 0, 0, time.UTC).Format(time.RFC1123Z)))
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(rssBody(entries...)))
	}))
	t.Cleanup(srv.Close)

	cfg := DefaultAggregatorConfig()
	cfg.Sources = []Source{{Name: "only", URL: srv.URL}}
	cfg.Limit = 3
	items, err := NewAggregator(cfg, nil).Fetch(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, items, 3)
}

func TestFetchSourceFilter(t *testing.T) {
	t.Parallel()

	cfg := DefaultAggregatorConfig()
	agg := NewAggregator(cfg, nil)

	selected := agg.selectSources([]string{"techcrunch", "36kr"})
	require.Len(t, selected, 2)

	_, err := agg.Fetch(context.Background(), []string{"nonexistent"})
	assert.ErrorContains(t, err, "no matching sources")
}

func TestItemID(t *testing.T) {
	t.Parallel()

	a := itemID("title", "https://x.example/1")
	b := itemID("title", "https://x.example/1")
	c := itemID("title", "https://x.example/2")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 32)
}

func TestParseSources(t *testing.T) {
	t.Parallel()

	sources := ParseSources([]string{
		"custom=https://example.com/feed",
		"broken",
		"=https://no-name.example",
	})
	require.Len(t, sources, 1)
	assert.Equal(t, "custom", sources[0].Name)
	assert.Equal(t, "https://example.com/feed", sources[0].URL)
}
