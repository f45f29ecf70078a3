package news

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFeedRSS(t *testing.T) {
	t.Parallel()

	body := `<?xml version="1.0"?>
<rss version="2.0"><channel><title>Tech Feed</title>
<item>
  <title>Big launch</title>
  <link>https://example.com/launch</link>
  <description>Something shipped.</description>
  <pubDate>Mon, 01 Jan 2024 08:00:00 +0000</pubDate>
</item>
</channel></rss>`

	items, err := parseFeed([]byte(body), "techfeed")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Big launch", items[0].Title)
	assert.Equal(t, "https://example.com/launch", items[0].Link)
	assert.Equal(t, "techfeed", items[0].Source)
	assert.Equal(t, 2024, items[0].PublishedAt.Year())
}

func TestParseFeedAtom(t *testing.T) {
	t.Parallel()

	body := `<?xml version="1.0"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Atom Feed</title>
  <entry>
    <title>Atom entry</title>
    <summary>details</summary>
    <link rel="alternate" href="https://example.com/atom-entry"/>
    <author><name>Casey</name></author>
    <updated>2024-02-01T12:00:00Z</updated>
  </entry>
</feed>`

	items, err := parseFeed([]byte(body), "atomfeed")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Atom entry", items[0].Title)
	assert.Equal(t, "https://example.com/atom-entry", items[0].Link)
	assert.Equal(t, "Casey", items[0].Author)
}

func TestParseFeedUnrecognized(t *testing.T) {
	t.Parallel()

	_, err := parseFeed([]byte(`{"not": "xml"}`), "x")
	assert.Error(t, err)
}

func TestParsePubDateFormats(t *testing.T) {
	t.Parallel()

	cases := []string{
		"Mon, 01 Jan 2024 08:00:00 +0000",
		"Mon, 01 Jan 2024 08:00:00 GMT",
		"2024-01-01T08:00:00Z",
	}
	for _, s := range cases {
		ts := parsePubDate(s)
		assert.False(t, ts.IsZero(), "failed to parse %q", s)
	}
	assert.True(t, parsePubDate("gibberish").IsZero())
}
