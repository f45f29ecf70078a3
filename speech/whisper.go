package speech

import (
	"bytes"
	"context"
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

// WhisperSTT 是 OpenAI Whisper 语音转写客户端.
// API: POST /v1/audio/transcriptions (multipart)
type WhisperSTT struct {
	cfg    WhisperConfig
	client *http.Client
	logger *zap.Logger
}

// NewWhisperSTT 创建 Whisper 转写客户端.
func NewWhisperSTT(cfg WhisperConfig, logger *zap.Logger) (*WhisperSTT, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai API key is required (set OPENAI_API_KEY)")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com"
	}
	if cfg.Model == "" {
		cfg.Model = "whisper-1"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WhisperSTT{
		cfg:    cfg,
		client: tlsutil.SecureHTTPClient(timeout),
		logger: logger.With(zap.String("component", "whisper_stt")),
	}, nil
}

func (p *WhisperSTT) Name() string { return "openai-whisper" }

// SupportedFormats 返回 Whisper 接受的音频容器格式。
func (p *WhisperSTT) SupportedFormats() []string {
	return []string{"flac", "mp3", "mp4", "mpeg", "mpga", "m4a", "ogg", "wav", "webm"}
}

// Transcribe 转写音频流.
// ResponseFormat 支持 json/text/srt/vtt/verbose_json，默认 json。
func (p *WhisperSTT) Transcribe(ctx context.Context, req *STTRequest) (*STTResponse, error) {
	if req.Audio == nil {
		return nil, fmt.Errorf("audio reader is required")
	}
	filename := req.Filename
	if filename == "" {
		filename = "audio.mp3"
	}
	model := req.Model
	if model == "" {
		model = p.cfg.Model
	}
	format := defaultString(req.ResponseFormat, "json")

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, req.Audio); err != nil {
		return nil, fmt.Errorf("failed to copy audio data: %w", err)
	}

	fields := map[string]string{
		"model":           model,
		"response_format": format,
	}
	if req.Language != "" {
		fields["language"] = req.Language
	}
	if req.Prompt != "" {
		fields["prompt"] = req.Prompt
	}
	if req.Temperature > 0 {
		fields["temperature"] = fmt.Sprintf("%g", req.Temperature)
	}
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("failed to write field %s: %w", k, err)
		}
	}
	for _, g := range req.TimestampGranularities {
		if err := writer.WriteField("timestamp_granularities[]", g); err != nil {
			return nil, fmt.Errorf("failed to write granularity field: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST",
		strings.TrimRight(p.cfg.BaseURL, "/")+"/v1/audio/transcriptions", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())
	httpReq.Header.Set("Authorization", bearer(p.cfg.APIKey))

	p.logger.Info("transcribing audio",
		zap.String("file", filename),
		zap.String("model", model),
		zap.String("format", format))

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("whisper request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("whisper error: status=%d body=%s", resp.StatusCode, string(respBody))
	}

	result := &STTResponse{
		Provider:  p.Name(),
		Model:     model,
		CreatedAt: time.Now(),
	}

	switch format {
	case "text", "srt", "vtt":
		// 非 JSON 格式直接返回原始响应体
		result.Raw = string(respBody)
		result.Text = strings.TrimSpace(string(respBody))
	default:
		var parsed struct {
			Text     string  `json:"text"`
			Language string  `json:"language"`
			Duration float64 `json:"duration"`
			Segments []struct {
				ID    int     `json:"id"`
				Start float64 `json:"start"`
				End   float64 `json:"end"`
				Text  string  `json:"text"`
			} `json:"segments"`
			Words []struct {
				Word  string  `json:"word"`
				Start float64 `json:"start"`
				End   float64 `json:"end"`
			} `json:"words"`
		}
		if err := json.Unmarshal(respBody, &parsed); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
		result.Text = parsed.Text
		result.Language = parsed.Language
		result.Duration = time.Duration(parsed.Duration * float64(time.Second))
		for _, s := range parsed.Segments {
			result.Segments = append(result.Segments, Segment{
				ID:    s.ID,
				Start: time.Duration(s.Start * float64(time.Second)),
				End:   time.Duration(s.End * float64(time.Second)),
				Text:  strings.TrimSpace(s.Text),
			})
		}
		for _, w := range parsed.Words {
			result.Words = append(result.Words, Word{
				Word:  w.Word,
				Start: time.Duration(w.Start * float64(time.Second)),
				End:   time.Duration(w.End * float64(time.Second)),
			})
		}
	}

	p.logger.Info("transcription completed",
		zap.Int("chars", len(result.Text)),
		zap.Int("segments", len(result.Segments)))
	return result, nil
}

// TranscribeFile 转写音频文件.
func (p *WhisperSTT) TranscribeFile(ctx context.Context, path string, opts *STTRequest) (*STTResponse, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	supported := false
	for _, f := range p.SupportedFormats() {
		if f == ext {
			supported = true
			break
		}
	}
	if !supported {
		return nil, fmt.Errorf("unsupported audio format %q, supported: %s", ext, strings.Join(p.SupportedFormats(), ", "))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	req := &STTRequest{}
	if opts != nil {
		*req = *opts
	}
	req.Audio = f
	req.Filename = filepath.Base(path)
	return p.Transcribe(ctx, req)
}
