package video

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/skillflow/internal/fileutil"
	"github.com/BaSui01/skillflow/internal/metrics"
	"github.com/BaSui01/skillflow/internal/tlsutil"
)

// Config 配置 Seedance 视频生成客户端.
type Config struct {
	APIKey       string        `json:"api_key" yaml:"api_key"`
	BaseURL      string        `json:"base_url" yaml:"base_url"`
	Model        string        `json:"model,omitempty" yaml:"model,omitempty"`
	Timeout      time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	PollInterval time.Duration `json:"poll_interval,omitempty" yaml:"poll_interval,omitempty"`
	MaxPollTime  time.Duration `json:"max_poll_time,omitempty" yaml:"max_poll_time,omitempty"`
}

// DefaultConfig 返回火山方舟的默认接入配置。
func DefaultConfig() Config {
	return Config{
		BaseURL:      "https://ark.cn-beijing.volces.com/api/v3",
		Model:        ModelSeedancePro,
		Timeout:      60 * time.Second,
		PollInterval: 10 * time.Second,
		MaxPollTime:  10 * time.Minute,
	}
}

// Client 是 Doubao Seedance 视频生成客户端.
// API: POST /contents/generations/tasks, GET /contents/generations/tasks/{id}
type Client struct {
	cfg     Config
	client  *http.Client
	logger  *zap.Logger
	metrics *metrics.Collector
}

// NewClient 创建视频生成客户端.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("ark API key is required (set ARK_API_KEY)")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://ark.cn-beijing.volces.com/api/v3"
	}
	if cfg.Model == "" {
		cfg.Model = ModelSeedancePro
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = 10 * time.Second
	}
	if cfg.MaxPollTime == 0 {
		cfg.MaxPollTime = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		cfg:    cfg,
		client: tlsutil.SecureHTTPClient(cfg.Timeout),
		logger: logger.With(zap.String("component", "seedance")),
	}, nil
}

// WithMetrics 挂载指标收集器，返回自身便于链式调用。
func (c *Client) WithMetrics(m *metrics.Collector) *Client {
	c.metrics = m
	return c
}

// Name 返回提供者名称。
func (c *Client) Name() string { return "seedance" }

type contentPart struct {
	Type     string `json:"type"` // text or image_url
	Text     string `json:"text,omitempty"`
	Role     string `json:"role,omitempty"`
	ImageURL *struct {
		URL string `json:"url"`
	} `json:"image_url,omitempty"`
}

type createTaskRequest struct {
	Model           string        `json:"model"`
	Content         []contentPart `json:"content"`
	Duration        int           `json:"duration,omitempty"`
	Ratio           string        `json:"ratio,omitempty"`
	Resolution      string        `json:"resolution,omitempty"`
	FPS             int           `json:"fps,omitempty"`
	Seed            int64         `json:"seed,omitempty"`
	CameraFixed     bool          `json:"camera_fixed,omitempty"`
	Watermark       bool          `json:"watermark"`
	GenerateAudio   bool          `json:"generate_audio,omitempty"`
	ReturnLastFrame bool          `json:"return_last_frame,omitempty"`
}

type taskResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Status  string `json:"status"`
	Content struct {
		VideoURL     string `json:"video_url"`
		LastFrameURL string `json:"last_frame_url"`
	} `json:"content"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
	CreatedAt int64 `json:"created_at"`
}

// CreateTask 提交视频生成任务.
// 时长限制 4..12 秒；多张参考图会自动切换到 lite 模型并关闭音频。
func (c *Client) CreateTask(ctx context.Context, req *Request) (*Task, error) {
	if req.Prompt == "" && len(req.Images) == 0 {
		return nil, fmt.Errorf("prompt or at least one image is required")
	}
	if req.Duration != 0 && (req.Duration < 4 || req.Duration > 12) {
		return nil, fmt.Errorf("duration must be between 4 and 12 seconds, got %d", req.Duration)
	}
	if req.Ratio != "" && !contains(Ratios, req.Ratio) {
		return nil, fmt.Errorf("unsupported ratio %q, valid: %s", req.Ratio, strings.Join(Ratios, ", "))
	}
	if req.Resolution != "" && !contains(Resolutions, req.Resolution) {
		return nil, fmt.Errorf("unsupported resolution %q, valid: %s", req.Resolution, strings.Join(Resolutions, ", "))
	}

	model := req.Model
	if model == "" {
		model = c.cfg.Model
	}

	audio := req.Audio
	refCount := 0
	for _, img := range req.Images {
		if img.Role == RoleReferenceImage || img.Role == "" {
			refCount++
		}
	}
	// 多参考图仅 lite 模型支持，lite 不支持音频
	if refCount > 1 && model != ModelSeedanceLite {
		c.logger.Warn("multiple reference images require the lite model, switching",
			zap.String("from", model),
			zap.String("to", ModelSeedanceLite))
		model = ModelSeedanceLite
		if audio {
			c.logger.Warn("lite model does not support audio generation, disabling")
			audio = false
		}
	}

	content, err := buildContent(req)
	if err != nil {
		return nil, err
	}

	body := createTaskRequest{
		Model:           model,
		Content:         content,
		Duration:        req.Duration,
		Ratio:           req.Ratio,
		Resolution:      req.Resolution,
		FPS:             req.FPS,
		Seed:            req.Seed,
		CameraFixed:     req.CameraFixed,
		Watermark:       req.Watermark,
		GenerateAudio:   audio,
		ReturnLastFrame: req.ReturnLastFrame,
	}

	var result taskResponse
	if err := c.doJSON(ctx, "POST", "/contents/generations/tasks", body, &result); err != nil {
		return nil, err
	}
	if result.ID == "" {
		return nil, fmt.Errorf("no task ID in response")
	}

	c.logger.Info("video task created",
		zap.String("task_id", result.ID),
		zap.String("model", model),
		zap.String("status", result.Status))

	return &Task{
		ID:        result.ID,
		Model:     model,
		Status:    TaskStatus(result.Status),
		CreatedAt: time.Unix(result.CreatedAt, 0),
	}, nil
}

// GetTask 查询任务状态.
func (c *Client) GetTask(ctx context.Context, taskID string) (*Result, error) {
	if taskID == "" {
		return nil, fmt.Errorf("task ID is required")
	}

	var result taskResponse
	if err := c.doJSON(ctx, "GET", "/contents/generations/tasks/"+taskID, nil, &result); err != nil {
		return nil, err
	}

	out := &Result{
		TaskID:       result.ID,
		Status:       TaskStatus(result.Status),
		VideoURL:     result.Content.VideoURL,
		LastFrameURL: result.Content.LastFrameURL,
	}
	if result.Error != nil {
		out.Error = fmt.Sprintf("%s: %s", result.Error.Code, result.Error.Message)
	}
	if out.Status == StatusSucceeded && out.VideoURL != "" {
		// 结果地址约 24 小时后过期
		out.ExpiresAt = time.Now().Add(24 * time.Hour)
	}
	return out, nil
}

// WaitForTask 轮询任务直至终态或超时.
func (c *Client) WaitForTask(ctx context.Context, taskID string) (*Result, error) {
	start := time.Now()
	deadline := start.Add(c.cfg.MaxPollTime)
	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	c.logger.Info("waiting for video task",
		zap.String("task_id", taskID),
		zap.Duration("poll_interval", c.cfg.PollInterval),
		zap.Duration("max_poll_time", c.cfg.MaxPollTime))

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			if time.Now().After(deadline) {
				return nil, fmt.Errorf("task %s did not complete within %s", taskID, c.cfg.MaxPollTime)
			}

			result, err := c.GetTask(ctx, taskID)
			if err != nil {
				c.logger.Warn("task query failed, will retry", zap.Error(err))
				continue
			}
			if c.metrics != nil {
				c.metrics.RecordTaskPoll(c.Name(), string(result.Status))
			}

			switch result.Status {
			case StatusSucceeded:
				if c.metrics != nil {
					c.metrics.RecordTaskWait(c.Name(), time.Since(start))
				}
				c.logger.Info("video task completed",
					zap.String("task_id", taskID),
					zap.Duration("elapsed", time.Since(start)))
				return result, nil
			case StatusFailed:
				return nil, fmt.Errorf("task %s failed: %s", taskID, result.Error)
			default:
				c.logger.Debug("video task in progress",
					zap.String("task_id", taskID),
					zap.String("status", string(result.Status)))
			}
		}
	}
}

// Generate 提交任务、等待完成并下载视频到 outputDir，返回结果与本地路径.
func (c *Client) Generate(ctx context.Context, req *Request, outputDir string) (*Result, string, error) {
	task, err := c.CreateTask(ctx, req)
	if err != nil {
		return nil, "", err
	}
	result, err := c.WaitForTask(ctx, task.ID)
	if err != nil {
		return nil, "", err
	}

	path, err := fileutil.OutputPath(req.Prompt, outputDir, ".mp4")
	if err != nil {
		return result, "", err
	}
	if err := c.Download(ctx, result.VideoURL, path); err != nil {
		return result, "", err
	}
	return result, path, nil
}

// Download 下载生成的视频到本地文件。
func (c *Client) Download(ctx context.Context, videoURL, outputPath string) error {
	if videoURL == "" {
		return fmt.Errorf("video URL is empty")
	}

	req, err := http.NewRequestWithContext(ctx, "GET", videoURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("download error: status=%d (the URL may have expired)", resp.StatusCode)
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer out.Close()

	written, err := io.Copy(out, resp.Body)
	if err != nil {
		return fmt.Errorf("failed to write video file: %w", err)
	}
	if c.metrics != nil {
		c.metrics.RecordDownload(c.Name(), written)
	}

	c.logger.Info("video downloaded",
		zap.String("path", outputPath),
		zap.Int64("bytes", written))
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method,
		strings.TrimRight(c.cfg.BaseURL, "/")+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+strings.TrimPrefix(c.cfg.APIKey, "Bearer "))

	start := time.Now()
	resp, err := c.client.Do(req)
	if c.metrics != nil {
		status := "error"
		if err == nil {
			status = fmt.Sprintf("%d", resp.StatusCode)
		}
		c.metrics.RecordAPIRequest(c.Name(), method+" "+path, status, time.Since(start))
	}
	if err != nil {
		return fmt.Errorf("seedance request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		errBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("seedance error: status=%d body=%s", resp.StatusCode, string(errBody))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
