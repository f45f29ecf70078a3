package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/BaSui01/skillflow/internal/metrics"
	"github.com/BaSui01/skillflow/internal/tlsutil"
)

// maxAsyncTextLen 异步接口的文本长度上限。
const maxAsyncTextLen = 50000

// AsyncTaskStatus 是异步语音合成任务状态.
type AsyncTaskStatus string

const (
	AsyncStatusProcessing AsyncTaskStatus = "processing"
	AsyncStatusSuccess    AsyncTaskStatus = "success"
	AsyncStatusFailed     AsyncTaskStatus = "failed"
	AsyncStatusExpired    AsyncTaskStatus = "expired"
)

// AsyncTask 是已创建的异步合成任务.
type AsyncTask struct {
	TaskID          int64  `json:"task_id"`
	FileID          int64  `json:"file_id"`
	TaskToken       string `json:"task_token,omitempty"`
	UsageCharacters int    `json:"usage_characters,omitempty"`
}

// AsyncTaskResult 是任务查询结果.
type AsyncTaskResult struct {
	TaskID int64           `json:"task_id"`
	Status AsyncTaskStatus `json:"status"`
	FileID int64           `json:"file_id"`
}

// AsyncTTS 是 MiniMax 长文本语音合成（异步）客户端.
// API: POST /v1/t2a_async_v2, GET /v1/query/t2a_async_query_v2
type AsyncTTS struct {
	cfg     MiniMaxConfig
	client  *http.Client
	logger  *zap.Logger
	metrics *metrics.Collector
}

// NewAsyncTTS 创建异步 TTS 客户端.
func NewAsyncTTS(cfg MiniMaxConfig, logger *zap.Logger) (*AsyncTTS, error) {
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
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AsyncTTS{
		cfg:    cfg,
		client: tlsutil.SecureHTTPClient(timeout),
		logger: logger.With(zap.String("component", "minimax_async_tts")),
	}, nil
}

// WithMetrics 挂载指标收集器，返回自身便于链式调用。
func (p *AsyncTTS) WithMetrics(c *metrics.Collector) *AsyncTTS {
	p.metrics = c
	return p
}

func (p *AsyncTTS) Name() string { return "minimax-async-tts" }

func (p *AsyncTTS) headers(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer(p.cfg.APIKey))
	if p.cfg.GroupID != "" {
		req.Header.Set("X-Minimax-Group-Id", p.cfg.GroupID)
	}
}

type minimaxAsyncRequest struct {
	Model        string              `json:"model"`
	Text         string              `json:"text,omitempty"`
	TextFileID   int64               `json:"text_file_id,omitempty"`
	VoiceSetting minimaxVoiceSetting `json:"voice_setting"`
	AudioSetting struct {
		AudioSampleRate int    `json:"audio_sample_rate,omitempty"`
		Bitrate         int    `json:"bitrate,omitempty"`
		Format          string `json:"format,omitempty"`
		Channel         int    `json:"channel,omitempty"`
	} `json:"audio_setting"`
	PronunciationDict map[string][]string `json:"pronunciation_dict,omitempty"`
	LanguageBoost     string              `json:"language_boost,omitempty"`
	ContinuousSound   bool                `json:"continuous_sound"`
	AIGCWatermark     bool                `json:"aigc_watermark"`
}

// CreateTask 创建异步语音合成任务.
// text 与 textFileID 二选一；text 长度限制 50000 字符。
func (p *AsyncTTS) CreateTask(ctx context.Context, req *TTSRequest, textFileID int64) (*AsyncTask, error) {
	if req.Text == "" && textFileID == 0 {
		return nil, fmt.Errorf("either text or text_file_id must be provided")
	}
	if utf8.RuneCountInString(req.Text) > maxAsyncTextLen {
		return nil, fmt.Errorf("text length must be < %d characters", maxAsyncTextLen)
	}
	if req.Voice == "" {
		return nil, fmt.Errorf("voice is required")
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

	body := minimaxAsyncRequest{
		Model:      model,
		Text:       req.Text,
		TextFileID: textFileID,
		VoiceSetting: minimaxVoiceSetting{
			VoiceID: req.Voice,
			Speed:   defaultFloat(req.Speed, 1.0),
			Vol:     defaultFloat(req.Volume, 1.0),
			Pitch:   req.Pitch,
			Emotion: req.Emotion,
		},
		PronunciationDict: req.PronunciationDict,
		LanguageBoost:     req.LanguageBoost,
		ContinuousSound:   req.ContinuousSound,
		AIGCWatermark:     req.AIGCWatermark,
	}
	body.AudioSetting.AudioSampleRate = defaultInt(req.SampleRate, 32000)
	body.AudioSetting.Bitrate = defaultInt(req.Bitrate, 128000)
	body.AudioSetting.Format = defaultString(req.Format, "mp3")
	body.AudioSetting.Channel = defaultInt(req.Channels, 2)

	var result struct {
		BaseResp        baseResp `json:"base_resp"`
		TaskID          int64    `json:"task_id"`
		FileID          int64    `json:"file_id"`
		TaskToken       string   `json:"task_token"`
		UsageCharacters int      `json:"usage_characters"`
	}
	if err := p.postJSON(ctx, "/v1/t2a_async_v2", body, &result); err != nil {
		return nil, err
	}
	if err := result.BaseResp.err(); err != nil {
		return nil, err
	}

	p.logger.Info("async tts task created",
		zap.Int64("task_id", result.TaskID),
		zap.Int("usage_characters", result.UsageCharacters))

	return &AsyncTask{
		TaskID:          result.TaskID,
		FileID:          result.FileID,
		TaskToken:       result.TaskToken,
		UsageCharacters: result.UsageCharacters,
	}, nil
}

// QueryTask 查询异步任务状态.
func (p *AsyncTTS) QueryTask(ctx context.Context, taskID int64) (*AsyncTaskResult, error) {
	endpoint := fmt.Sprintf("%s/v1/query/t2a_async_query_v2?task_id=%d",
		strings.TrimRight(p.cfg.BaseURL, "/"), taskID)

	httpReq, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	p.headers(httpReq)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("query task failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		errBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("query task error: status=%d body=%s", resp.StatusCode, string(errBody))
	}

	var result struct {
		BaseResp baseResp `json:"base_resp"`
		TaskID   int64    `json:"task_id"`
		Status   string   `json:"status"`
		FileID   int64    `json:"file_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if err := result.BaseResp.err(); err != nil {
		return nil, err
	}

	return &AsyncTaskResult{
		TaskID: result.TaskID,
		Status: AsyncTaskStatus(strings.ToLower(result.Status)),
		FileID: result.FileID,
	}, nil
}

// WaitForCompletion 轮询任务直至终态或超时.
func (p *AsyncTTS) WaitForCompletion(ctx context.Context, taskID int64, pollInterval, timeout time.Duration) (*AsyncTaskResult, error) {
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}

	start := time.Now()
	deadline := start.Add(timeout)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			if time.Now().After(deadline) {
				return nil, fmt.Errorf("task %d did not complete within %s", taskID, timeout)
			}

			result, err := p.QueryTask(ctx, taskID)
			if err != nil {
				p.logger.Warn("task query failed, will retry", zap.Error(err))
				continue
			}
			if p.metrics != nil {
				p.metrics.RecordTaskPoll(p.Name(), string(result.Status))
			}

			switch result.Status {
			case AsyncStatusSuccess:
				if p.metrics != nil {
					p.metrics.RecordTaskWait(p.Name(), time.Since(start))
				}
				p.logger.Info("async tts task completed",
					zap.Int64("task_id", taskID),
					zap.Int64("file_id", result.FileID))
				return result, nil
			case AsyncStatusFailed:
				return nil, fmt.Errorf("task %d failed", taskID)
			case AsyncStatusExpired:
				return nil, fmt.Errorf("task %d expired", taskID)
			}
		}
	}
}

// DownloadResult 下载任务结果文件.
// 先经 /v1/files/retrieve 取下载地址，再拉取文件内容。
// fileType: audio/subtitle/extra_info
func (p *AsyncTTS) DownloadResult(ctx context.Context, fileID int64, fileType, outputPath string) error {
	if fileType == "" {
		fileType = "audio"
	}

	endpoint := fmt.Sprintf("%s/v1/files/retrieve?%s",
		strings.TrimRight(p.cfg.BaseURL, "/"),
		url.Values{"file_id": {fmt.Sprintf("%d", fileID)}, "type": {fileType}}.Encode())

	httpReq, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	p.headers(httpReq)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("file retrieve failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		errBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("file retrieve error: status=%d body=%s", resp.StatusCode, string(errBody))
	}

	var result struct {
		BaseResp baseResp `json:"base_resp"`
		File     struct {
			DownloadURL string `json:"download_url"`
		} `json:"file"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if err := result.BaseResp.err(); err != nil {
		return err
	}
	if result.File.DownloadURL == "" {
		return fmt.Errorf("no download URL in response for file_id %d", fileID)
	}

	dlReq, err := http.NewRequestWithContext(ctx, "GET", result.File.DownloadURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create download request: %w", err)
	}

	dlResp, err := p.client.Do(dlReq)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	defer dlResp.Body.Close()

	if dlResp.StatusCode >= 400 {
		return fmt.Errorf("download error: status=%d", dlResp.StatusCode)
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer out.Close()

	written, err := io.Copy(out, dlResp.Body)
	if err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	if p.metrics != nil {
		p.metrics.RecordDownload(p.Name(), written)
	}

	p.logger.Info("result file downloaded",
		zap.String("path", outputPath),
		zap.Int64("bytes", written))
	return nil
}

func (p *AsyncTTS) postJSON(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST",
		strings.TrimRight(p.cfg.BaseURL, "/")+path,
		bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	p.headers(httpReq)

	resp, err := p.client.Do(httpReq)
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
