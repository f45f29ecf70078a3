package speech

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/skillflow/internal/tlsutil"
)

// VoiceManager 管理 MiniMax 的音色：查询、克隆、设计.
// API: /v1/get_voice, /v1/voice_clone, /v1/voice_design, /v1/files/upload
type VoiceManager struct {
	cfg    MiniMaxConfig
	client *http.Client
	logger *zap.Logger
}

// NewVoiceManager 创建音色管理客户端.
func NewVoiceManager(cfg MiniMaxConfig, logger *zap.Logger) (*VoiceManager, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("minimax API key is required (set MINIMAX_API_KEY)")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.minimaxi.com"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VoiceManager{
		cfg:    cfg,
		client: tlsutil.SecureHTTPClient(timeout),
		logger: logger.With(zap.String("component", "minimax_voices")),
	}, nil
}

// VoiceType 过滤 ListVoices 返回的音色类别。
type VoiceType string

const (
	VoiceTypeSystem     VoiceType = "system"
	VoiceTypeCloning    VoiceType = "voice_cloning"
	VoiceTypeGeneration VoiceType = "voice_generation"
	VoiceTypeAll        VoiceType = "all"
)

// VoiceList 是 ListVoices 的分组结果.
type VoiceList struct {
	System     []Voice `json:"system_voice,omitempty"`
	Cloned     []Voice `json:"voice_cloning,omitempty"`
	Generation []Voice `json:"voice_generation,omitempty"`
}

// All 展平返回全部音色。
func (l *VoiceList) All() []Voice {
	out := make([]Voice, 0, len(l.System)+len(l.Cloned)+len(l.Generation))
	out = append(out, l.System...)
	out = append(out, l.Cloned...)
	out = append(out, l.Generation...)
	return out
}

type minimaxVoiceEntry struct {
	VoiceID     string   `json:"voice_id"`
	VoiceName   string   `json:"voice_name"`
	Description []string `json:"description"`
	CreatedTime string   `json:"created_time"`
}

// ListVoices 查询可用音色.
func (m *VoiceManager) ListVoices(ctx context.Context, voiceType VoiceType) (*VoiceList, error) {
	if voiceType == "" {
		voiceType = VoiceTypeAll
	}

	var result struct {
		BaseResp        baseResp            `json:"base_resp"`
		SystemVoice     []minimaxVoiceEntry `json:"system_voice"`
		VoiceCloning    []minimaxVoiceEntry `json:"voice_cloning"`
		VoiceGeneration []minimaxVoiceEntry `json:"voice_generation"`
	}
	if err := m.postJSON(ctx, "/v1/get_voice", map[string]string{"voice_type": string(voiceType)}, &result); err != nil {
		return nil, err
	}
	if err := result.BaseResp.err(); err != nil {
		return nil, err
	}

	list := &VoiceList{
		System:     convertVoices(result.SystemVoice),
		Cloned:     convertVoices(result.VoiceCloning),
		Generation: convertVoices(result.VoiceGeneration),
	}

	m.logger.Info("voices listed",
		zap.String("type", string(voiceType)),
		zap.Int("system", len(list.System)),
		zap.Int("cloned", len(list.Cloned)),
		zap.Int("generated", len(list.Generation)))
	return list, nil
}

func convertVoices(entries []minimaxVoiceEntry) []Voice {
	voices := make([]Voice, 0, len(entries))
	for _, e := range entries {
		voices = append(voices, Voice{
			ID:          e.VoiceID,
			Name:        e.VoiceName,
			Description: strings.Join(e.Description, "; "),
		})
	}
	return voices
}

// UploadFile 上传音频文件供克隆或设计使用.
// purpose: voice_clone 或 prompt_audio
func (m *VoiceManager) UploadFile(ctx context.Context, path, purpose string) (int64, error) {
	if purpose == "" {
		purpose = "voice_clone"
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if err := writer.WriteField("purpose", purpose); err != nil {
		return 0, fmt.Errorf("failed to write purpose field: %w", err)
	}
	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return 0, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return 0, fmt.Errorf("failed to copy file content: %w", err)
	}
	if err := writer.Close(); err != nil {
		return 0, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST",
		strings.TrimRight(m.cfg.BaseURL, "/")+"/v1/files/upload", &buf)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", bearer(m.cfg.APIKey))
	if m.cfg.GroupID != "" {
		req.Header.Set("X-Minimax-Group-Id", m.cfg.GroupID)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		errBody, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("upload error: status=%d body=%s", resp.StatusCode, string(errBody))
	}

	var result struct {
		BaseResp baseResp `json:"base_resp"`
		File     struct {
			FileID int64 `json:"file_id"`
		} `json:"file"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("failed to decode response: %w", err)
	}
	if err := result.BaseResp.err(); err != nil {
		return 0, err
	}

	m.logger.Info("file uploaded",
		zap.String("path", path),
		zap.String("purpose", purpose),
		zap.Int64("file_id", result.File.FileID))
	return result.File.FileID, nil
}

// ClonePrompt 指定引导音频，用于提升克隆相似度.
// prompt_audio 须是 purpose 为 prompt_audio 的已上传文件。
type ClonePrompt struct {
	PromptAudio int64  `json:"prompt_audio"`
	PromptText  string `json:"prompt_text"`
}

// CloneRequest 配置音色克隆.
type CloneRequest struct {
	FileID       int64        `json:"file_id"`
	VoiceID      string       `json:"voice_id"`
	NoiseReduce  bool         `json:"need_noise_reduction,omitempty"`
	VolNormalize bool         `json:"need_volume_normalization,omitempty"`
	Text         string       `json:"text,omitempty"`  // 试听文本
	Model        string       `json:"model,omitempty"` // 试听用模型
	Accuracy     float64      `json:"accuracy,omitempty"`
	Prompt       *ClonePrompt `json:"clone_prompt,omitempty"`
}

// CloneVoice 基于上传的音频克隆音色.
// voiceID 由调用方指定，须以字母开头且长度不小于 8。
func (m *VoiceManager) CloneVoice(ctx context.Context, req *CloneRequest) (string, error) {
	if req.FileID == 0 {
		return "", fmt.Errorf("file_id is required, upload the source audio first")
	}
	if len(req.VoiceID) < 8 {
		return "", fmt.Errorf("voice_id must be at least 8 characters")
	}

	var result struct {
		BaseResp  baseResp `json:"base_resp"`
		DemoAudio string   `json:"demo_audio"`
	}
	if err := m.postJSON(ctx, "/v1/voice_clone", req, &result); err != nil {
		return "", err
	}
	if err := result.BaseResp.err(); err != nil {
		return "", err
	}

	m.logger.Info("voice cloned", zap.String("voice_id", req.VoiceID))
	return result.DemoAudio, nil
}

// DesignRequest 配置音色设计.
type DesignRequest struct {
	Prompt      string `json:"prompt"`
	PreviewText string `json:"preview_text"`
	VoiceID     string `json:"voice_id,omitempty"`
}

// DesignResult 是音色设计的结果，试听音频已从 hex 解码.
type DesignResult struct {
	VoiceID    string `json:"voice_id"`
	TrialAudio []byte `json:"-"`
}

// DesignVoice 通过文字描述生成新的音色.
func (m *VoiceManager) DesignVoice(ctx context.Context, req *DesignRequest) (*DesignResult, error) {
	if req.Prompt == "" {
		return nil, fmt.Errorf("prompt is required")
	}
	if req.PreviewText == "" {
		return nil, fmt.Errorf("preview_text is required")
	}

	var result struct {
		BaseResp   baseResp `json:"base_resp"`
		VoiceID    string   `json:"voice_id"`
		TrialAudio string   `json:"trial_audio"` // hex encoded
	}
	if err := m.postJSON(ctx, "/v1/voice_design", req, &result); err != nil {
		return nil, err
	}
	if err := result.BaseResp.err(); err != nil {
		return nil, err
	}

	audio, err := hex.DecodeString(result.TrialAudio)
	if err != nil {
		return nil, fmt.Errorf("failed to decode trial audio: %w", err)
	}

	m.logger.Info("voice designed",
		zap.String("voice_id", result.VoiceID),
		zap.Int("trial_audio_bytes", len(audio)))
	return &DesignResult{VoiceID: result.VoiceID, TrialAudio: audio}, nil
}

func (m *VoiceManager) postJSON(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST",
		strings.TrimRight(m.cfg.BaseURL, "/")+path,
		bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer(m.cfg.APIKey))
	if m.cfg.GroupID != "" {
		req.Header.Set("X-Minimax-Group-Id", m.cfg.GroupID)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("minimax request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		errBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("minimax error: status=%d body=%s", resp.StatusCode, string(errBody))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
