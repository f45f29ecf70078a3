package skills

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/skillflow/config"
)

func TestNewCatalogRegistersBuiltins(t *testing.T) {
	t.Parallel()

	catalog, err := NewCatalog(config.DefaultConfig(), nil, nil)
	require.NoError(t, err)

	all := catalog.Registry().ListAll()
	assert.Len(t, all, 9)

	ids := make(map[string]bool)
	for _, inst := range all {
		ids[inst.Definition.ID] = true
	}
	for _, want := range []string{
		"arxiv.search", "speech.tts", "speech.tts_async", "speech.transcribe", "music.generate",
		"video.generate", "news.fetch", "news.hackernews", "chart.race",
	} {
		assert.True(t, ids[want], "missing skill %s", want)
	}
}

func TestCatalogRequiresConfig(t *testing.T) {
	t.Parallel()

	_, err := NewCatalog(nil, nil, nil)
	assert.Error(t, err)
}

func TestInvokeChartRace(t *testing.T) {
	t.Parallel()

	catalog, err := NewCatalog(config.DefaultConfig(), nil, nil)
	require.NoError(t, err)

	dir := t.TempDir()
	csvPath := filepath.Join(dir, "data.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(
		"date,name,category,value\n2020-01-01,Alpha,tech,10\n2020-02-01,Alpha,tech,20\n"), 0644))
	outPath := filepath.Join(dir, "race.html")

	input, _ := json.Marshal(map[string]any{
		"csv_path":    csvPath,
		"output_path": outPath,
		"title":       "test race",
	})
	out, err := catalog.Invoke(context.Background(), "chart.race", input)
	require.NoError(t, err)
	assert.Contains(t, string(out), outPath)

	html, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(html), "test race")
}

func TestInvokeTTSWithoutKeyFails(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.MiniMax.APIKey = ""
	catalog, err := NewCatalog(cfg, nil, nil)
	require.NoError(t, err)

	input, _ := json.Marshal(map[string]any{"text": "hi", "voice": "v1"})
	_, err = catalog.Invoke(context.Background(), "speech.tts", input)
	assert.ErrorContains(t, err, "API key")
}
