package video

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/BaSui01/skillflow/internal/fileutil"
)

// Segment 是连续视频链中的一段.
type Segment struct {
	Prompt   string `json:"prompt"`
	Duration int    `json:"duration,omitempty"`
}

// ChainRequest 配置多段连续视频生成.
// 每段以前一段的末帧作为首帧，保证画面衔接。
type ChainRequest struct {
	Segments   []Segment    `json:"segments"`
	FirstFrame *ImageInput  `json:"-"` // 可选，第一段的首帧
	Model      string       `json:"model,omitempty"`
	Ratio      string       `json:"ratio,omitempty"`
	Resolution string       `json:"resolution,omitempty"`
	Watermark  bool         `json:"watermark,omitempty"`
}

// ChainResult 汇总每段的生成结果.
type ChainResult struct {
	Segments []SegmentResult `json:"segments"`
}

// SegmentResult 是单段的结果与本地文件路径.
type SegmentResult struct {
	Index     int    `json:"index"`
	TaskID    string `json:"task_id"`
	VideoURL  string `json:"video_url"`
	LocalPath string `json:"local_path"`
}

// GenerateChain 顺序生成多段视频并下载到 outputDir.
// 任一段失败即中止，已完成的段保留在结果中。出错时结果不为 nil。
func (c *Client) GenerateChain(ctx context.Context, req *ChainRequest, outputDir string) (*ChainResult, error) {
	result := &ChainResult{}
	if len(req.Segments) == 0 {
		return result, fmt.Errorf("at least one segment is required")
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return result, fmt.Errorf("failed to create output directory: %w", err)
	}

	var lastFrameURL string

	for i, seg := range req.Segments {
		genReq := &Request{
			Prompt:          seg.Prompt,
			Model:           req.Model,
			Duration:        seg.Duration,
			Ratio:           req.Ratio,
			Resolution:      req.Resolution,
			Watermark:       req.Watermark,
			ReturnLastFrame: i < len(req.Segments)-1,
		}

		switch {
		case i == 0 && req.FirstFrame != nil:
			img := *req.FirstFrame
			img.Role = RoleFirstFrame
			genReq.Images = []ImageInput{img}
		case lastFrameURL != "":
			genReq.Images = []ImageInput{{URL: lastFrameURL, Role: RoleFirstFrame}}
		}

		c.logger.Info("generating chain segment",
			zap.Int("segment", i+1),
			zap.Int("total", len(req.Segments)))

		task, err := c.CreateTask(ctx, genReq)
		if err != nil {
			return result, fmt.Errorf("segment %d: %w", i+1, err)
		}
		taskResult, err := c.WaitForTask(ctx, task.ID)
		if err != nil {
			return result, fmt.Errorf("segment %d: %w", i+1, err)
		}

		name := fileutil.SanitizeFilename(seg.Prompt, 40, fmt.Sprintf("segment_%d", i+1))
		path := filepath.Join(outputDir, fmt.Sprintf("%02d_%s.mp4", i+1, name))
		if err := c.Download(ctx, taskResult.VideoURL, path); err != nil {
			return result, fmt.Errorf("segment %d download: %w", i+1, err)
		}

		result.Segments = append(result.Segments, SegmentResult{
			Index:     i + 1,
			TaskID:    task.ID,
			VideoURL:  taskResult.VideoURL,
			LocalPath: path,
		})

		if i < len(req.Segments)-1 {
			if taskResult.LastFrameURL == "" {
				return result, fmt.Errorf("segment %d returned no last frame, cannot continue chain", i+1)
			}
			lastFrameURL = taskResult.LastFrameURL
		}
	}

	c.logger.Info("video chain completed", zap.Int("segments", len(result.Segments)))
	return result, nil
}
