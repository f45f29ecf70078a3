package arxiv

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/2401.00001v1</id>
    <title>  Attention Is Not Enough  </title>
    <summary>We study transformer limitations.</summary>
    <published>2024-01-02T10:00:00Z</published>
    <updated>2024-01-03T10:00:00Z</updated>
    <author><name>Alice Chen</name></author>
    <author><name>Bob Liu</name></author>
    <link href="http://arxiv.org/abs/2401.00001v1" rel="alternate" type="text/html"/>
    <link href="http://arxiv.org/pdf/2401.00001v1" rel="related" type="application/pdf"/>
    <category term="cs.AI"/>
    <category term="cs.CL"/>
  </entry>
</feed>`

func TestParseFeed(t *testing.T) {
	t.Parallel()

	papers, err := parseFeed([]byte(sampleFeed))
	require.NoError(t, err)
	require.Len(t, papers, 1)

	p := papers[0]
	assert.Equal(t, "Attention Is Not Enough", p.Title)
	assert.Equal(t, []string{"Alice Chen", "Bob Liu"}, p.Authors)
	assert.Equal(t, []string{"cs.AI", "cs.CL"}, p.Categories)
	assert.Equal(t, "http://arxiv.org/pdf/2401.00001v1", p.PDFURL)
	assert.Equal(t, "http://arxiv.org/abs/2401.00001v1", p.AbstractURL)
	assert.Equal(t, 2024, p.Published.Year())
}

func TestParseFeedInvalidXML(t *testing.T) {
	t.Parallel()

	_, err := parseFeed([]byte("not xml at all"))
	assert.Error(t, err)
}

func TestBuildQuery(t *testing.T) {
	t.Parallel()

	c := NewClient(DefaultConfig(), nil)
	assert.Equal(t, "all:agents", c.buildQuery("agents"))

	cfg := DefaultConfig()
	cfg.Categories = []string{"cs.AI", "cs.CL"}
	c = NewClient(cfg, nil)
	assert.Equal(t, "all:agents+AND+(cat:cs.AI+OR+cat:cs.CL)", c.buildQuery("agents"))
}

func TestSearch(t *testing.T) {
	t.Parallel()

	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("search_query")
		w.Header().Set("Content-Type", "application/atom+xml")
		w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.BaseURL = srv.URL
	cfg.RetryCount = 0
	c := NewClient(cfg, nil)

	papers, err := c.Search(context.Background(), "transformers", 5)
	require.NoError(t, err)
	assert.Len(t, papers, 1)
	assert.Contains(t, gotQuery, "all:transformers")
}

func TestSearchServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.BaseURL = srv.URL
	cfg.RetryCount = 1
	cfg.RetryDelay = 10 * time.Millisecond
	c := NewClient(cfg, nil)

	_, err := c.Search(context.Background(), "anything", 5)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}
