package speech

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRenderSRT(t *testing.T) {
	t.Parallel()

	segments := []Segment{
		{ID: 0, Start: 0, End: 1500 * time.Millisecond, Text: "hello"},
		{ID: 1, Start: 1500 * time.Millisecond, End: 62*time.Second + 40*time.Millisecond, Text: " world "},
	}

	out := RenderSRT(segments)
	assert.Equal(t,
		"1\n00:00:00,000 --> 00:00:01,500\nhello\n\n"+
			"2\n00:00:01,500 --> 00:01:02,040\nworld\n\n",
		out)
}

func TestSRTTimestamp(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "00:00:00,000", srtTimestamp(0))
	assert.Equal(t, "01:02:03,456", srtTimestamp(time.Hour+2*time.Minute+3*time.Second+456*time.Millisecond))
	assert.Equal(t, "00:00:00,000", srtTimestamp(-time.Second))
}
