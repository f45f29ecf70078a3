package main

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/BaSui01/skillflow/config"
	"github.com/BaSui01/skillflow/internal/fileutil"
	"github.com/BaSui01/skillflow/store"
	"github.com/BaSui01/skillflow/video"
)

// =============================================================================
// 🎬 video 命令
// =============================================================================

func runVideo(args []string) {
	fs := flag.NewFlagSet("video", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	prompt := fs.String("prompt", "", "Text prompt")
	images := fs.String("images", "", "Comma-separated reference images (paths or URLs)")
	firstFrame := fs.String("first-frame", "", "First frame image (path or URL)")
	lastFrame := fs.String("last-frame", "", "Last frame image (path or URL)")
	duration := fs.Int("duration", 0, "Duration in seconds [4, 12]")
	ratio := fs.String("ratio", "", "Aspect ratio: 16:9, 9:16, 1:1, 4:3, 3:4, 21:9, adaptive")
	resolution := fs.String("resolution", "", "Resolution: 480p, 720p, 1080p")
	audio := fs.Bool("audio", false, "Generate audio track (pro model only)")
	model := fs.String("model", "", "Model override")
	fs.Parse(args)

	if *prompt == "" && *images == "" && *firstFrame == "" {
		fmt.Println("Usage: skillflow video --prompt <text> [--images a.jpg,b.jpg] [--duration 5]")
		return
	}

	cfg, logger := setup(*configPath)
	defer logger.Sync()

	client, err := video.NewClient(arkVideoConfig(cfg), logger)
	if err != nil {
		fatal(logger, "failed to create video client", err)
	}

	req := &video.Request{
		Prompt:     *prompt,
		Model:      *model,
		Duration:   *duration,
		Ratio:      *ratio,
		Resolution: *resolution,
		Audio:      *audio,
	}
	if *firstFrame != "" {
		req.Images = append(req.Images, imageInput(*firstFrame, video.RoleFirstFrame))
	}
	if *lastFrame != "" {
		req.Images = append(req.Images, imageInput(*lastFrame, video.RoleLastFrame))
	}
	for _, img := range splitComma(*images) {
		req.Images = append(req.Images, imageInput(img, video.RoleReferenceImage))
	}

	ctx := context.Background()
	task, err := client.CreateTask(ctx, req)
	if err != nil {
		fatal(logger, "failed to create video task", err)
	}
	fmt.Printf("Task created: %s\n", task.ID)

	journal := openJournal(cfg, logger)
	var journalID string
	if journal != nil {
		defer journal.Close()
		journalID, _ = journal.Record(ctx, &store.TaskRecord{
			Provider: "seedance",
			RemoteID: task.ID,
			Kind:     store.KindVideo,
			Prompt:   truncate(*prompt, 200),
			Status:   string(task.Status),
		})
	}

	result, err := client.WaitForTask(ctx, task.ID)
	if err != nil {
		if journal != nil && journalID != "" {
			journal.UpdateStatus(ctx, journalID, "failed", nil)
		}
		fatal(logger, "video generation failed", err)
	}

	_, path, err := downloadVideo(ctx, client, cfg, result, *prompt)
	if err != nil {
		fatal(logger, "failed to download video", err)
	}
	if journal != nil && journalID != "" {
		journal.UpdateStatus(ctx, journalID, "succeeded", map[string]any{
			"result_url":  result.VideoURL,
			"output_path": path,
			"expires_at":  result.ExpiresAt,
		})
	}
	fmt.Printf("Video saved to %s\n", path)
	fmt.Printf("Result URL (expires %s): %s\n", result.ExpiresAt.Format(time.RFC3339), result.VideoURL)
}

func downloadVideo(ctx context.Context, client *video.Client, cfg *config.Config, result *video.Result, prompt string) (*video.Result, string, error) {
	path, err := videoOutputPath(cfg, prompt)
	if err != nil {
		return result, "", err
	}
	if err := client.Download(ctx, result.VideoURL, path); err != nil {
		return result, "", err
	}
	return result, path, nil
}

func videoOutputPath(cfg *config.Config, prompt string) (string, error) {
	dir := cfg.Output.VideoDir
	if dir == "" {
		dir = "outputs"
	}
	return fileutil.OutputPath(prompt, dir, ".mp4")
}

// =============================================================================
// 🎞️ video-chain 命令（连续多段生成）
// =============================================================================

func runVideoChain(args []string) {
	fs := flag.NewFlagSet("video-chain", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	prompts := fs.String("prompts", "", "Segment prompts separated by ';' (required)")
	firstFrame := fs.String("first-frame", "", "First frame image for the opening segment")
	duration := fs.Int("duration", 0, "Per-segment duration in seconds [4, 12]")
	ratio := fs.String("ratio", "", "Aspect ratio")
	resolution := fs.String("resolution", "", "Resolution: 480p, 720p, 1080p")
	fs.Parse(args)

	segments := splitSemicolon(*prompts)
	if len(segments) == 0 {
		fmt.Println("Usage: skillflow video-chain --prompts \"scene one; scene two; scene three\"")
		return
	}

	cfg, logger := setup(*configPath)
	defer logger.Sync()

	client, err := video.NewClient(arkVideoConfig(cfg), logger)
	if err != nil {
		fatal(logger, "failed to create video client", err)
	}

	req := &video.ChainRequest{
		Ratio:      *ratio,
		Resolution: *resolution,
	}
	for _, p := range segments {
		req.Segments = append(req.Segments, video.Segment{Prompt: p, Duration: *duration})
	}
	if *firstFrame != "" {
		img := imageInput(*firstFrame, video.RoleFirstFrame)
		req.FirstFrame = &img
	}

	dir := cfg.Output.VideoDir
	if dir == "" {
		dir = "outputs"
	}
	result, err := client.GenerateChain(context.Background(), req, dir)
	if err != nil {
		// 已完成的段保留在磁盘上
		for _, seg := range result.Segments {
			fmt.Printf("Segment %d saved to %s\n", seg.Index, seg.LocalPath)
		}
		fatal(logger, "video chain failed", err)
	}

	for _, seg := range result.Segments {
		fmt.Printf("Segment %d saved to %s\n", seg.Index, seg.LocalPath)
	}
}

func arkVideoConfig(cfg *config.Config) video.Config {
	out := video.DefaultConfig()
	out.APIKey = cfg.Ark.APIKey
	if cfg.Ark.BaseURL != "" {
		out.BaseURL = cfg.Ark.BaseURL
	}
	if cfg.Ark.Model != "" {
		out.Model = cfg.Ark.Model
	}
	if cfg.Ark.PollInterval > 0 {
		out.PollInterval = cfg.Ark.PollInterval
	}
	if cfg.Ark.MaxPollTime > 0 {
		out.MaxPollTime = cfg.Ark.MaxPollTime
	}
	if cfg.Ark.Timeout > 0 {
		out.Timeout = cfg.Ark.Timeout
	}
	return out
}

func imageInput(ref string, role video.ImageRole) video.ImageInput {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return video.ImageInput{URL: ref, Role: role}
	}
	return video.ImageInput{Path: ref, Role: role}
}

func splitSemicolon(s string) []string {
	parts := strings.Split(s, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
