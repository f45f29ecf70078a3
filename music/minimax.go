package music

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

const (
	maxLyricsLen = 3500
	maxPromptLen = 2000
)

// Config 配置 MiniMax 音乐生成客户端.
type Config struct {
	APIKey  string        `json:"api_key" yaml:"api_key"`
	GroupID string        `json:"group_id,omitempty" yaml:"group_id,omitempty"`
	BaseURL string        `json:"base_url" yaml:"base_url"`
	Model   string        `json:"model,omitempty" yaml:"model,omitempty"`
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// DefaultConfig 返回默认的音乐生成配置。
func DefaultConfig() Config {
	return Config{
		BaseURL: "https://api.minimaxi.com",
		Model:   "music-2.5",
		Timeout: 120 * time.Second,
	}
}

// Request 代表音乐生成请求.
// Lyrics 为必填，可用 [Verse]/[Chorus]/[Bridge] 标注段落结构，
// 换行分隔每句。Prompt 描述风格、情绪与场景。
type Request struct {
	Lyrics        string `json:"lyrics"`
	Prompt        string `json:"prompt,omitempty"`
	Model         string `json:"model,omitempty"`
	SampleRate    int    `json:"sample_rate,omitempty"`
	Bitrate       int    `json:"bitrate,omitempty"`
	Format        string `json:"format,omitempty"`
	AIGCWatermark bool   `json:"aigc_watermark,omitempty"`
}

// Response 代表音乐生成响应，音频已从 hex 解码.
type Response struct {
	AudioData  []byte        `json:"-"`
	Format     string        `json:"format"`
	Duration   time.Duration `json:"duration,omitempty"`
	SampleRate int           `json:"sample_rate,omitempty"`
	Size       int64         `json:"size,omitempty"`
}

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

// Client 是 MiniMax 音乐生成客户端.
// API: POST /v1/music_generation
type Client struct {
	cfg    Config
	client *http.Client
	logger *zap.Logger
}

// NewClient 创建音乐生成客户端.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("minimax API key is required (set MINIMAX_API_KEY)")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.minimaxi.com"
	}
	if cfg.Model == "" {
		cfg.Model = "music-2.5"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		cfg:    cfg,
		client: tlsutil.SecureHTTPClient(timeout),
		logger: logger.With(zap.String("component", "minimax_music")),
	}, nil
}

// Name 返回提供者名称。
func (c *Client) Name() string { return "minimax-music" }

type minimaxMusicRequest struct {
	Model         string `json:"model"`
	Prompt        string `json:"prompt,omitempty"`
	Lyrics        string `json:"lyrics"`
	Stream        bool   `json:"stream"`
	OutputFormat  string `json:"output_format"`
	AIGCWatermark bool   `json:"aigc_watermark"`
	AudioSetting  struct {
		SampleRate int    `json:"sample_rate,omitempty"`
		Bitrate    int    `json:"bitrate,omitempty"`
		Format     string `json:"format,omitempty"`
	} `json:"audio_setting"`
}

type minimaxMusicResponse struct {
	BaseResp baseResp `json:"base_resp"`
	Data     struct {
		Audio  string `json:"audio"` // hex encoded
		Status int    `json:"status"`
	} `json:"data"`
	ExtraInfo struct {
		MusicDuration   int64  `json:"music_duration"` // ms
		AudioSampleRate int    `json:"audio_sample_rate"`
		AudioSize       int64  `json:"audio_size"`
		AudioFormat     string `json:"audio_format"`
	} `json:"extra_info"`
}

// Generate 生成音乐（非流式，hex 输出）.
// 歌词长度限制 1..3500 字符，风格描述限制 2000 字符。
func (c *Client) Generate(ctx context.Context, req *Request) (*Response, error) {
	if req.Lyrics == "" {
		return nil, fmt.Errorf("lyrics is required")
	}
	// 长度按字符数计，中文歌词不会被字节数误判
	if utf8.RuneCountInString(req.Lyrics) > maxLyricsLen {
		return nil, fmt.Errorf("lyrics length must be <= %d characters", maxLyricsLen)
	}
	if utf8.RuneCountInString(req.Prompt) > maxPromptLen {
		return nil, fmt.Errorf("prompt length must be <= %d characters", maxPromptLen)
	}

	model := req.Model
	if model == "" {
		model = c.cfg.Model
	}

	body := minimaxMusicRequest{
		Model:         model,
		Prompt:        req.Prompt,
		Lyrics:        req.Lyrics,
		Stream:        false,
		OutputFormat:  "hex",
		AIGCWatermark: req.AIGCWatermark,
	}
	body.AudioSetting.SampleRate = defaultInt(req.SampleRate, 44100)
	body.AudioSetting.Bitrate = defaultInt(req.Bitrate, 256000)
	body.AudioSetting.Format = defaultString(req.Format, "mp3")

	payload, _ := json.Marshal(body)
	httpReq, err := http.NewRequestWithContext(ctx, "POST",
		strings.TrimRight(c.cfg.BaseURL, "/")+"/v1/music_generation",
		bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+strings.TrimPrefix(c.cfg.APIKey, "Bearer "))
	if c.cfg.GroupID != "" {
		httpReq.Header.Set("X-Minimax-Group-Id", c.cfg.GroupID)
	}

	c.logger.Info("generating music",
		zap.String("model", model),
		zap.Int("lyrics_chars", utf8.RuneCountInString(req.Lyrics)))

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("music generation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		errBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("music generation error: status=%d body=%s", resp.StatusCode, string(errBody))
	}

	var mResp minimaxMusicResponse
	if err := json.NewDecoder(resp.Body).Decode(&mResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if err := mResp.BaseResp.err(); err != nil {
		return nil, err
	}
	if mResp.Data.Audio == "" {
		return nil, fmt.Errorf("no audio data in response")
	}

	audio, err := hex.DecodeString(mResp.Data.Audio)
	if err != nil {
		return nil, fmt.Errorf("failed to decode hex audio: %w", err)
	}

	c.logger.Info("music generated",
		zap.Int64("duration_ms", mResp.ExtraInfo.MusicDuration),
		zap.Int("bytes", len(audio)))

	return &Response{
		AudioData:  audio,
		Format:     defaultString(mResp.ExtraInfo.AudioFormat, body.AudioSetting.Format),
		Duration:   time.Duration(mResp.ExtraInfo.MusicDuration) * time.Millisecond,
		SampleRate: mResp.ExtraInfo.AudioSampleRate,
		Size:       mResp.ExtraInfo.AudioSize,
	}, nil
}

// GenerateToFile 生成音乐并写入文件。
func (c *Client) GenerateToFile(ctx context.Context, req *Request, path string) error {
	resp, err := c.Generate(ctx, req)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, resp.AudioData, 0644); err != nil {
		return fmt.Errorf("failed to write audio file: %w", err)
	}
	c.logger.Info("music saved", zap.String("path", path), zap.Int("bytes", len(resp.AudioData)))
	return nil
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
