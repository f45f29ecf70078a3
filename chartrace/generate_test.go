package chartrace

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	t.Parallel()

	ds, err := ParseCSV(strings.NewReader(validCSV))
	require.NoError(t, err)

	opts := DefaultOptions()
	opts.Title = "Brand <Race>"
	opts.TopN = 5
	opts.Duration = 300

	var buf bytes.Buffer
	require.NoError(t, NewGenerator(opts, nil).Render(ds, &buf))
	html := buf.String()

	assert.Contains(t, html, "d3@7")
	assert.Contains(t, html, "const n = 5;")
	assert.Contains(t, html, "const duration = 300;")
	assert.Contains(t, html, "const k = 10;")
	assert.Contains(t, html, "const barSize = 48;")
	assert.Contains(t, html, `id="replay"`)
	assert.Contains(t, html, `"name":"Alpha"`)
	assert.Contains(t, html, `"date":"2020-01-01"`)
	// html/template 转义页面标题
	assert.Contains(t, html, "Brand &lt;Race&gt;")
}

func TestRenderFile(t *testing.T) {
	t.Parallel()

	ds, err := ParseCSV(strings.NewReader(validCSV))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "race.html")
	require.NoError(t, NewGenerator(DefaultOptions(), nil).RenderFile(ds, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<!DOCTYPE html>")
}

func TestDefaultOptions(t *testing.T) {
	t.Parallel()

	g := NewGenerator(Options{}, nil)
	assert.Equal(t, 12, g.opts.TopN)
	assert.Equal(t, 250, g.opts.Duration)
	assert.Equal(t, "Bar Chart Race", g.opts.Title)
}
