package speech

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/BaSui01/skillflow/internal/tlsutil"
)

// maxSyncTextLen 同步接口的文本长度上限，超出需改用异步接口。
const maxSyncTextLen = 10000

// baseResp 是所有 MiniMax 响应携带的状态信封。
type baseResp struct {
	StatusCode int    `json:"status_code"`
	StatusMsg  string `json:"status_msg"`
}

func (b baseResp) err() error {
	if b.StatusCode != 0 {
		return fmt.Errorf("minimax API error: %s (code: %d)", b.StatusMsg, b.StatusCode)
	}
	return nil
}

// bearer 为 API Key 补全 Bearer 前缀（如果没有的话）。
func bearer(key string) string {
	if strings.HasPrefix(key, "Bearer ") {
		return key
	}
	return "Bearer " + key
}

// MiniMaxTTS 是 MiniMax 同步语音合成客户端.
// API: POST /v1/t2a_v2
type MiniMaxTTS struct {
	cfg    MiniMaxConfig
	client *http.Client
	logger *zap.Logger
}

// NewMiniMaxTTS 创建同步 TTS 客户端.
func NewMiniMaxTTS(cfg MiniMaxConfig, logger *zap.Logger) (*MiniMaxTTS, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("minimax API key is required (set MINIMAX_API_KEY)")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.minimaxi.com"
	}
	if cfg.Model == "" {
		cfg.Model = "speech-2.8-hd"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	cfg.Timeout = timeout
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MiniMaxTTS{
		cfg:    cfg,
		client: tlsutil.SecureHTTPClient(timeout),
		logger: logger.With(zap.String("component", "minimax_tts")),
	}, nil
}

func (p *MiniMaxTTS) Name() string { return "minimax-tts" }

func (p *MiniMaxTTS) headers(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer(p.cfg.APIKey))
	if p.cfg.GroupID != "" {
		req.Header.Set("X-Minimax-Group-Id", p.cfg.GroupID)
	}
}

type minimaxVoiceSetting struct {
	VoiceID string  `json:"voice_id"`
	Speed   float64 `json:"speed"`
	Vol     float64 `json:"vol"`
	Pitch   int     `json:"pitch"`
	Emotion string  `json:"emotion,omitempty"`
}

type minimaxAudioSetting struct {
	SampleRate int    `json:"sample_rate,omitempty"`
	Bitrate    int    `json:"bitrate,omitempty"`
	Format     string `json:"format,omitempty"`
	Channel    int    `json:"channel,omitempty"`
}

type minimaxTTSRequest struct {
	Model             string              `json:"model"`
	Text              string              `json:"text"`
	Stream            bool                `json:"stream"`
	VoiceSetting      minimaxVoiceSetting `json:"voice_setting"`
	AudioSetting      minimaxAudioSetting `json:"audio_setting"`
	PronunciationDict map[string][]string `json:"pronunciation_dict,omitempty"`
	LanguageBoost     string              `json:"language_boost,omitempty"`
	SubtitleEnable    bool                `json:"subtitle_enable"`
	ContinuousSound   bool                `json:"continuous_sound"`
	OutputFormat      string              `json:"output_format"`
	AIGCWatermark     bool                `json:"aigc_watermark"`
}

type minimaxTTSResponse struct {
	BaseResp baseResp `json:"base_resp"`
	Data     struct {
		Audio string `json:"audio"` // hex encoded
	} `json:"data"`
	ExtraInfo struct {
		AudioLength     int64  `json:"audio_length"` // ms
		AudioSampleRate int    `json:"audio_sample_rate"`
		AudioSize       int64  `json:"audio_size"`
		AudioFormat     string `json:"audio_format"`
		UsageCharacters int    `json:"usage_characters"`
	} `json:"extra_info"`
}

// Synthesize 执行同步语音合成（非流式）.
// 文本长度限制 10000 字符，超过请使用 AsyncTTS。
func (p *MiniMaxTTS) Synthesize(ctx context.Context, req *TTSRequest) (*TTSResponse, error) {
	if req.Voice == "" {
		return nil, fmt.Errorf("voice is required")
	}
	if len(req.Text) == 0 {
		return nil, fmt.Errorf("text is required")
	}
	// 中文等多字节文本按字符数计，不按字节数
	if utf8.RuneCountInString(req.Text) > maxSyncTextLen {
		return nil, fmt.Errorf("text length must be < %d characters, use async TTS for longer text", maxSyncTextLen)
	}

	model := req.Model
	if model == "" {
		model = p.cfg.Model
	}
	if !validSpeechModel(model) {
		return nil, fmt.Errorf("unsupported model: %s", model)
	}
	if req.Emotion != "" && !validEmotion(req.Emotion) {
		return nil, fmt.Errorf("unsupported emotion: %s", req.Emotion)
	}

	body := minimaxTTSRequest{
		Model:  model,
		Text:   req.Text,
		Stream: false,
		VoiceSetting: minimaxVoiceSetting{
			VoiceID: req.Voice,
			Speed:   defaultFloat(req.Speed, 1.0),
			Vol:     defaultFloat(req.Volume, 1.0),
			Pitch:   req.Pitch,
			Emotion: req.Emotion,
		},
		AudioSetting: minimaxAudioSetting{
			SampleRate: defaultInt(req.SampleRate, 32000),
			Bitrate:    defaultInt(req.Bitrate, 128000),
			Format:     defaultString(req.Format, "mp3"),
			Channel:    defaultInt(req.Channels, 1),
		},
		PronunciationDict: req.PronunciationDict,
		LanguageBoost:     req.LanguageBoost,
		SubtitleEnable:    req.SubtitleEnable,
		ContinuousSound:   req.ContinuousSound,
		OutputFormat:      "hex",
		AIGCWatermark:     req.AIGCWatermark,
	}

	payload, _ := json.Marshal(body)
	httpReq, err := http.NewRequestWithContext(ctx, "POST",
		strings.TrimRight(p.cfg.BaseURL, "/")+"/v1/t2a_v2",
		bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	p.headers(httpReq)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("minimax tts request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		errBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("minimax tts error: status=%d body=%s", resp.StatusCode, string(errBody))
	}

	var mResp minimaxTTSResponse
	if err := json.NewDecoder(resp.Body).Decode(&mResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if err := mResp.BaseResp.err(); err != nil {
		return nil, err
	}

	audio, err := hex.DecodeString(mResp.Data.Audio)
	if err != nil {
		return nil, fmt.Errorf("failed to decode hex audio: %w", err)
	}

	p.logger.Info("speech synthesized",
		zap.String("model", model),
		zap.Int64("duration_ms", mResp.ExtraInfo.AudioLength),
		zap.Int64("size", mResp.ExtraInfo.AudioSize),
		zap.Int("usage_characters", mResp.ExtraInfo.UsageCharacters))

	return &TTSResponse{
		Provider:   p.Name(),
		Model:      model,
		AudioData:  audio,
		Format:     defaultString(mResp.ExtraInfo.AudioFormat, body.AudioSetting.Format),
		Duration:   time.Duration(mResp.ExtraInfo.AudioLength) * time.Millisecond,
		SampleRate: mResp.ExtraInfo.AudioSampleRate,
		Size:       mResp.ExtraInfo.AudioSize,
		CharCount:  mResp.ExtraInfo.UsageCharacters,
		CreatedAt:  time.Now(),
	}, nil
}

// SynthesizeToFile 合成语音并写入文件。
func (p *MiniMaxTTS) SynthesizeToFile(ctx context.Context, req *TTSRequest, filepath string) error {
	resp, err := p.Synthesize(ctx, req)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath, resp.AudioData, 0644); err != nil {
		return fmt.Errorf("failed to write audio file: %w", err)
	}
	p.logger.Info("audio saved", zap.String("path", filepath), zap.Int("bytes", len(resp.AudioData)))
	return nil
}

func defaultFloat(v, d float64) float64 {
	if v == 0 {
		return d
	}
	return v
}

func defaultInt(v, d int) int {
	if v == 0 {
		return d
	}
	return v
}

func defaultString(v, d string) string {
	if v == "" {
		return d
	}
	return v
}
