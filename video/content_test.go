package video

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildContentPromptOnly(t *testing.T) {
	t.Parallel()

	parts, err := buildContent(&Request{Prompt: "  a quiet lake at dawn  "})
	require.NoError(t, err)
	require.Len(t, parts, 1)
	assert.Equal(t, "text", parts[0].Type)
	assert.Equal(t, "a quiet lake at dawn", parts[0].Text)
}

func TestBuildContentWithImages(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	imgPath := filepath.Join(dir, "frame.png")
	require.NoError(t, os.WriteFile(imgPath, []byte{0x89, 0x50, 0x4e, 0x47}, 0644))

	parts, err := buildContent(&Request{
		Prompt: "continue the scene",
		Images: []ImageInput{
			{Path: imgPath, Role: RoleFirstFrame},
			{URL: "https://example.com/last.jpg", Role: RoleLastFrame},
		},
	})
	require.NoError(t, err)
	require.Len(t, parts, 3)

	assert.Equal(t, "text", parts[0].Type)
	assert.Equal(t, "image_url", parts[1].Type)
	assert.Equal(t, "first_frame", parts[1].Role)
	assert.True(t, strings.HasPrefix(parts[1].ImageURL.URL, "data:image/png;base64,"))
	assert.Equal(t, "last_frame", parts[2].Role)
	assert.Equal(t, "https://example.com/last.jpg", parts[2].ImageURL.URL)
}

func TestResolveImageURLErrors(t *testing.T) {
	t.Parallel()

	_, err := resolveImageURL(ImageInput{URL: "ftp://example.com/a.png"})
	assert.ErrorContains(t, err, "invalid image URL")

	_, err = resolveImageURL(ImageInput{})
	assert.ErrorContains(t, err, "neither path nor URL")
}
