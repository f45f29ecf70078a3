package skills

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/skillflow/arxiv"
	"github.com/BaSui01/skillflow/chartrace"
	"github.com/BaSui01/skillflow/config"
	"github.com/BaSui01/skillflow/internal/fileutil"
	"github.com/BaSui01/skillflow/internal/metrics"
	"github.com/BaSui01/skillflow/music"
	"github.com/BaSui01/skillflow/news"
	"github.com/BaSui01/skillflow/speech"
	"github.com/BaSui01/skillflow/video"
)

// Catalog 把各领域客户端装配为可调用的技能注册表.
type Catalog struct {
	cfg      *config.Config
	logger   *zap.Logger
	registry *Registry
}

// NewCatalog 创建技能目录并注册全部内置技能.
func NewCatalog(cfg *config.Config, logger *zap.Logger, collector *metrics.Collector) (*Catalog, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Catalog{
		cfg:      cfg,
		logger:   logger,
		registry: NewRegistry(logger).WithMetrics(collector),
	}
	if err := c.registerAll(); err != nil {
		return nil, err
	}
	return c, nil
}

// Registry 返回底层注册表。
func (c *Catalog) Registry() *Registry { return c.registry }

// Invoke 按 ID 调用技能。
func (c *Catalog) Invoke(ctx context.Context, skillID string, input json.RawMessage) (json.RawMessage, error) {
	return c.registry.Invoke(ctx, skillID, input)
}

func (c *Catalog) registerAll() error {
	entries := []struct {
		def     *Definition
		handler Handler
	}{
		{
			def: &Definition{
				ID:          "arxiv.search",
				Name:        "arxiv.search",
				Version:     "1.0.0",
				Category:    CategoryResearch,
				Description: "Search arXiv papers by keyword, returns title, authors, abstract and PDF link",
				Tags:        []string{"arxiv", "papers", "search"},
			},
			handler: c.arxivSearch,
		},
		{
			def: &Definition{
				ID:          "speech.tts",
				Name:        "speech.tts",
				Version:     "1.0.0",
				Category:    CategoryAudio,
				Description: "Synthesize speech from text via MiniMax and save to an audio file",
				Tags:        []string{"tts", "minimax", "audio"},
			},
			handler: c.speechTTS,
		},
		{
			def: &Definition{
				ID:          "speech.tts_async",
				Name:        "speech.tts_async",
				Version:     "1.0.0",
				Category:    CategoryAudio,
				Description: "Synthesize long text (up to 50000 chars) via the MiniMax async pipeline",
				Tags:        []string{"tts", "minimax", "audio", "async"},
			},
			handler: c.speechTTSAsync,
		},
		{
			def: &Definition{
				ID:          "speech.transcribe",
				Name:        "speech.transcribe",
				Version:     "1.0.0",
				Category:    CategoryAudio,
				Description: "Transcribe an audio file to text or SRT subtitles via OpenAI Whisper",
				Tags:        []string{"stt", "whisper", "subtitles"},
			},
			handler: c.speechTranscribe,
		},
		{
			def: &Definition{
				ID:          "music.generate",
				Name:        "music.generate",
				Version:     "1.0.0",
				Category:    CategoryAudio,
				Description: "Generate music from lyrics and a style prompt via MiniMax",
				Tags:        []string{"music", "minimax"},
			},
			handler: c.musicGenerate,
		},
		{
			def: &Definition{
				ID:          "video.generate",
				Name:        "video.generate",
				Version:     "1.0.0",
				Category:    CategoryVideo,
				Description: "Generate a video from a prompt and optional reference images via Doubao Seedance",
				Tags:        []string{"video", "seedance"},
			},
			handler: c.videoGenerate,
		},
		{
			def: &Definition{
				ID:          "news.fetch",
				Name:        "news.fetch",
				Version:     "1.0.0",
				Category:    CategoryResearch,
				Description: "Aggregate latest tech news from RSS feeds, deduplicated and sorted",
				Tags:        []string{"news", "rss"},
			},
			handler: c.newsFetch,
		},
		{
			def: &Definition{
				ID:          "news.hackernews",
				Name:        "news.hackernews",
				Version:     "1.0.0",
				Category:    CategoryResearch,
				Description: "Fetch the newest Hacker News stories with discussion links",
				Tags:        []string{"news", "hackernews"},
			},
			handler: c.hackerNews,
		},
		{
			def: &Definition{
				ID:          "chart.race",
				Name:        "chart.race",
				Version:     "1.0.0",
				Category:    CategoryData,
				Description: "Render a time-series CSV as an animated D3 bar chart race HTML page",
				Tags:        []string{"chart", "d3", "visualization"},
			},
			handler: c.chartRace,
		},
	}

	for _, e := range entries {
		if err := c.registry.Register(e.def, e.handler); err != nil {
			return err
		}
	}
	return nil
}

func (c *Catalog) arxivSearch(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var req struct {
		Query      string   `json:"query"`
		MaxResults int      `json:"max_results,omitempty"`
		Categories []string `json:"categories,omitempty"`
	}
	if err := json.Unmarshal(input, &req); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}
	if req.Query == "" {
		return nil, fmt.Errorf("query is required")
	}

	cfg := arxiv.DefaultConfig()
	if c.cfg.ArXiv.BaseURL != "" {
		cfg.BaseURL = c.cfg.ArXiv.BaseURL
	}
	if c.cfg.ArXiv.MaxResults > 0 {
		cfg.MaxResults = c.cfg.ArXiv.MaxResults
	}
	if c.cfg.ArXiv.SortBy != "" {
		cfg.SortBy = c.cfg.ArXiv.SortBy
	}
	if c.cfg.ArXiv.Timeout > 0 {
		cfg.Timeout = c.cfg.ArXiv.Timeout
	}
	cfg.Categories = req.Categories
	if len(cfg.Categories) == 0 {
		cfg.Categories = c.cfg.ArXiv.Categories
	}

	papers, err := arxiv.NewClient(cfg, c.logger).Search(ctx, req.Query, req.MaxResults)
	if err != nil {
		return nil, err
	}
	return json.Marshal(papers)
}

func (c *Catalog) speechTTS(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var req struct {
		speech.TTSRequest
		OutputPath string `json:"output_path,omitempty"`
	}
	if err := json.Unmarshal(input, &req); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	tts, err := speech.NewMiniMaxTTS(c.minimaxSpeechConfig(), c.logger)
	if err != nil {
		return nil, err
	}

	path := req.OutputPath
	if path == "" {
		path, err = fileutil.OutputPath(req.Text, c.cfg.Output.AudioDir, ".mp3")
		if err != nil {
			return nil, err
		}
	}
	if err := tts.SynthesizeToFile(ctx, &req.TTSRequest, path); err != nil {
		return nil, err
	}
	return json.Marshal(map[string]string{"output_path": path})
}

func (c *Catalog) speechTTSAsync(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var req struct {
		speech.TTSRequest
		OutputPath string `json:"output_path,omitempty"`
	}
	if err := json.Unmarshal(input, &req); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	tts, err := speech.NewAsyncTTS(c.minimaxSpeechConfig(), c.logger)
	if err != nil {
		return nil, err
	}

	task, err := tts.CreateTask(ctx, &req.TTSRequest, 0)
	if err != nil {
		return nil, err
	}
	result, err := tts.WaitForCompletion(ctx, task.TaskID, 5*time.Second, 10*time.Minute)
	if err != nil {
		return nil, err
	}

	path := req.OutputPath
	if path == "" {
		path, err = fileutil.OutputPath(req.Text, c.cfg.Output.AudioDir, ".mp3")
		if err != nil {
			return nil, err
		}
	}
	if err := tts.DownloadResult(ctx, result.FileID, "audio", path); err != nil {
		return nil, err
	}
	return json.Marshal(map[string]any{
		"task_id":     task.TaskID,
		"output_path": path,
	})
}

func (c *Catalog) speechTranscribe(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var req struct {
		AudioPath      string `json:"audio_path"`
		Language       string `json:"language,omitempty"`
		ResponseFormat string `json:"response_format,omitempty"`
		OutputPath     string `json:"output_path,omitempty"`
	}
	if err := json.Unmarshal(input, &req); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}
	if req.AudioPath == "" {
		return nil, fmt.Errorf("audio_path is required")
	}

	cfg := speech.DefaultWhisperConfig()
	cfg.APIKey = c.cfg.OpenAI.APIKey
	if c.cfg.OpenAI.BaseURL != "" {
		cfg.BaseURL = c.cfg.OpenAI.BaseURL
	}
	if c.cfg.OpenAI.Model != "" {
		cfg.Model = c.cfg.OpenAI.Model
	}
	stt, err := speech.NewWhisperSTT(cfg, c.logger)
	if err != nil {
		return nil, err
	}

	resp, err := stt.TranscribeFile(ctx, req.AudioPath, &speech.STTRequest{
		Language:       req.Language,
		ResponseFormat: req.ResponseFormat,
	})
	if err != nil {
		return nil, err
	}

	out := map[string]string{"text": resp.Text}
	if req.OutputPath != "" && strings.HasSuffix(req.OutputPath, ".srt") {
		if err := speech.WriteSRT(resp, req.OutputPath); err != nil {
			return nil, err
		}
		out["output_path"] = req.OutputPath
	}
	return json.Marshal(out)
}

func (c *Catalog) musicGenerate(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var req struct {
		music.Request
		OutputPath string `json:"output_path,omitempty"`
	}
	if err := json.Unmarshal(input, &req); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	cfg := music.DefaultConfig()
	cfg.APIKey = c.cfg.MiniMax.APIKey
	cfg.GroupID = c.cfg.MiniMax.GroupID
	if c.cfg.MiniMax.BaseURL != "" {
		cfg.BaseURL = c.cfg.MiniMax.BaseURL
	}
	if c.cfg.MiniMax.MusicModel != "" {
		cfg.Model = c.cfg.MiniMax.MusicModel
	}
	client, err := music.NewClient(cfg, c.logger)
	if err != nil {
		return nil, err
	}

	path := req.OutputPath
	if path == "" {
		path, err = fileutil.OutputPath(req.Prompt, c.cfg.Output.AudioDir, ".mp3")
		if err != nil {
			return nil, err
		}
	}
	if err := client.GenerateToFile(ctx, &req.Request, path); err != nil {
		return nil, err
	}
	return json.Marshal(map[string]string{"output_path": path})
}

func (c *Catalog) videoGenerate(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var req struct {
		Prompt     string   `json:"prompt"`
		Images     []string `json:"images,omitempty"`
		Duration   int      `json:"duration,omitempty"`
		Ratio      string   `json:"ratio,omitempty"`
		Resolution string   `json:"resolution,omitempty"`
		Audio      bool     `json:"audio,omitempty"`
	}
	if err := json.Unmarshal(input, &req); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	client, err := video.NewClient(c.arkConfig(), c.logger)
	if err != nil {
		return nil, err
	}

	genReq := &video.Request{
		Prompt:     req.Prompt,
		Duration:   req.Duration,
		Ratio:      req.Ratio,
		Resolution: req.Resolution,
		Audio:      req.Audio,
	}
	for i, img := range req.Images {
		role := video.RoleReferenceImage
		if len(req.Images) == 1 && i == 0 {
			role = video.RoleFirstFrame
		}
		if strings.HasPrefix(img, "http://") || strings.HasPrefix(img, "https://") {
			genReq.Images = append(genReq.Images, video.ImageInput{URL: img, Role: role})
		} else {
			genReq.Images = append(genReq.Images, video.ImageInput{Path: img, Role: role})
		}
	}

	result, path, err := client.Generate(ctx, genReq, c.cfg.Output.VideoDir)
	if err != nil {
		return nil, err
	}
	return json.Marshal(map[string]string{
		"task_id":     result.TaskID,
		"video_url":   result.VideoURL,
		"output_path": path,
	})
}

func (c *Catalog) newsFetch(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var req struct {
		Sources []string `json:"sources,omitempty"`
		Limit   int      `json:"limit,omitempty"`
	}
	if len(input) > 0 {
		if err := json.Unmarshal(input, &req); err != nil {
			return nil, fmt.Errorf("invalid input: %w", err)
		}
	}

	cfg := news.DefaultAggregatorConfig()
	if req.Limit > 0 {
		cfg.Limit = req.Limit
	} else if c.cfg.News.Limit > 0 {
		cfg.Limit = c.cfg.News.Limit
	}
	if c.cfg.News.Timeout > 0 {
		cfg.Timeout = c.cfg.News.Timeout
	}
	cfg.Sources = append(cfg.Sources, news.ParseSources(c.cfg.News.ExtraSources)...)

	items, err := news.NewAggregator(cfg, c.logger).Fetch(ctx, req.Sources)
	if err != nil {
		return nil, err
	}
	return json.Marshal(items)
}

func (c *Catalog) hackerNews(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var req struct {
		Limit int `json:"limit,omitempty"`
	}
	if len(input) > 0 {
		if err := json.Unmarshal(input, &req); err != nil {
			return nil, fmt.Errorf("invalid input: %w", err)
		}
	}

	stories, err := news.NewHackerNews(news.DefaultHNConfig(), c.logger).NewStories(ctx, req.Limit)
	if err != nil {
		return nil, err
	}
	return json.Marshal(stories)
}

func (c *Catalog) chartRace(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var req struct {
		CSVPath    string `json:"csv_path"`
		OutputPath string `json:"output_path"`
		Title      string `json:"title,omitempty"`
		TopN       int    `json:"top_n,omitempty"`
		Duration   int    `json:"duration,omitempty"`
	}
	if err := json.Unmarshal(input, &req); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}
	if req.CSVPath == "" || req.OutputPath == "" {
		return nil, fmt.Errorf("csv_path and output_path are required")
	}

	ds, err := chartrace.ParseCSVFile(req.CSVPath)
	if err != nil {
		return nil, err
	}

	opts := chartrace.DefaultOptions()
	if req.Title != "" {
		opts.Title = req.Title
	}
	if req.TopN > 0 {
		opts.TopN = req.TopN
	}
	if req.Duration > 0 {
		opts.Duration = req.Duration
	}
	if err := chartrace.NewGenerator(opts, c.logger).RenderFile(ds, req.OutputPath); err != nil {
		return nil, err
	}
	return json.Marshal(map[string]string{"output_path": req.OutputPath})
}

func (c *Catalog) minimaxSpeechConfig() speech.MiniMaxConfig {
	cfg := speech.DefaultMiniMaxConfig()
	cfg.APIKey = c.cfg.MiniMax.APIKey
	cfg.GroupID = c.cfg.MiniMax.GroupID
	if c.cfg.MiniMax.BaseURL != "" {
		cfg.BaseURL = c.cfg.MiniMax.BaseURL
	}
	if c.cfg.MiniMax.SpeechModel != "" {
		cfg.Model = c.cfg.MiniMax.SpeechModel
	}
	if c.cfg.MiniMax.Timeout > 0 {
		cfg.Timeout = c.cfg.MiniMax.Timeout
	}
	return cfg
}

func (c *Catalog) arkConfig() video.Config {
	cfg := video.DefaultConfig()
	cfg.APIKey = c.cfg.Ark.APIKey
	if c.cfg.Ark.BaseURL != "" {
		cfg.BaseURL = c.cfg.Ark.BaseURL
	}
	if c.cfg.Ark.Model != "" {
		cfg.Model = c.cfg.Ark.Model
	}
	if c.cfg.Ark.PollInterval > 0 {
		cfg.PollInterval = c.cfg.Ark.PollInterval
	}
	if c.cfg.Ark.MaxPollTime > 0 {
		cfg.MaxPollTime = c.cfg.Ark.MaxPollTime
	}
	if c.cfg.Ark.Timeout > 0 {
		cfg.Timeout = c.cfg.Ark.Timeout
	}
	return cfg
}
