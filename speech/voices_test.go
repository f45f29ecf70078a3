package speech

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newVoiceServer(t *testing.T, handler http.HandlerFunc) *VoiceManager {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := DefaultMiniMaxConfig()
	cfg.APIKey = "test-key"
	cfg.BaseURL = srv.URL
	vm, err := NewVoiceManager(cfg, nil)
	require.NoError(t, err)
	return vm
}

func TestListVoices(t *testing.T) {
	t.Parallel()

	vm := newVoiceServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/get_voice", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "all", body["voice_type"])

		json.NewEncoder(w).Encode(map[string]any{
			"base_resp": map[string]any{"status_code": 0},
			"system_voice": []map[string]any{
				{"voice_id": "male-qn-qingse", "voice_name": "青涩青年"},
			},
			"voice_cloning": []map[string]any{
				{"voice_id": "myclone01", "description": []string{"warm", "low"}},
			},
		})
	})

	list, err := vm.ListVoices(context.Background(), VoiceTypeAll)
	require.NoError(t, err)
	require.Len(t, list.System, 1)
	require.Len(t, list.Cloned, 1)
	assert.Equal(t, "male-qn-qingse", list.System[0].ID)
	assert.Equal(t, "warm; low", list.Cloned[0].Description)
	assert.Len(t, list.All(), 2)
}

func TestCloneVoiceValidation(t *testing.T) {
	t.Parallel()

	cfg := DefaultMiniMaxConfig()
	cfg.APIKey = "k"
	vm, err := NewVoiceManager(cfg, nil)
	require.NoError(t, err)

	_, err = vm.CloneVoice(context.Background(), &CloneRequest{VoiceID: "voice123"})
	assert.ErrorContains(t, err, "file_id is required")

	_, err = vm.CloneVoice(context.Background(), &CloneRequest{FileID: 1, VoiceID: "short"})
	assert.ErrorContains(t, err, "at least 8 characters")
}

func TestDesignVoice(t *testing.T) {
	t.Parallel()

	trial := []byte("trial-audio")
	vm := newVoiceServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/voice_design", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"base_resp":   map[string]any{"status_code": 0},
			"voice_id":    "designed-01",
			"trial_audio": hex.EncodeToString(trial),
		})
	})

	result, err := vm.DesignVoice(context.Background(), &DesignRequest{
		Prompt:      "a calm storyteller",
		PreviewText: "once upon a time",
	})
	require.NoError(t, err)
	assert.Equal(t, "designed-01", result.VoiceID)
	assert.Equal(t, trial, result.TrialAudio)
}

func TestDesignVoiceValidation(t *testing.T) {
	t.Parallel()

	cfg := DefaultMiniMaxConfig()
	cfg.APIKey = "k"
	vm, err := NewVoiceManager(cfg, nil)
	require.NoError(t, err)

	_, err = vm.DesignVoice(context.Background(), &DesignRequest{PreviewText: "x"})
	assert.ErrorContains(t, err, "prompt is required")

	_, err = vm.DesignVoice(context.Background(), &DesignRequest{Prompt: "x"})
	assert.ErrorContains(t, err, "preview_text is required")
}
