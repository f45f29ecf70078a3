package news

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BaSui01/skillflow/internal/tlsutil"
)

// HNConfig 配置 Hacker News 客户端.
type HNConfig struct {
	BaseURL     string        `json:"base_url" yaml:"base_url"`
	Timeout     time.Duration `json:"timeout" yaml:"timeout"`
	Concurrency int           `json:"concurrency" yaml:"concurrency"`
}

// DefaultHNConfig 返回官方 Firebase API 的默认配置。
func DefaultHNConfig() HNConfig {
	return HNConfig{
		BaseURL:     "https://hacker-news.firebaseio.com/v0",
		Timeout:     15 * time.Second,
		Concurrency: 8,
	}
}

// HNStory 是一条 Hacker News 故事.
type HNStory struct {
	ID       int64     `json:"id"`
	Title    string    `json:"title"`
	URL      string    `json:"url,omitempty"`
	HNLink   string    `json:"hn_link"`
	By       string    `json:"by,omitempty"`
	Score    int       `json:"score"`
	Comments int       `json:"comments"`
	Time     time.Time `json:"time"`
}

// HackerNews 查询 Hacker News 官方 Firebase API.
type HackerNews struct {
	cfg    HNConfig
	client *http.Client
	logger *zap.Logger
}

// NewHackerNews 创建 Hacker News 客户端.
func NewHackerNews(cfg HNConfig, logger *zap.Logger) *HackerNews {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://hacker-news.firebaseio.com/v0"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 8
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HackerNews{
		cfg:    cfg,
		client: tlsutil.SecureHTTPClient(cfg.Timeout),
		logger: logger.With(zap.String("component", "hackernews")),
	}
}

// NewStories 返回最新提交的故事.
// 拉取 newstories 列表后并发取详情，只保留 type 为 story 的条目。
func (h *HackerNews) NewStories(ctx context.Context, limit int) ([]HNStory, error) {
	if limit <= 0 {
		limit = 30
	}

	var ids []int64
	if err := h.getJSON(ctx, "/newstories.json", &ids); err != nil {
		return nil, fmt.Errorf("failed to fetch story IDs: %w", err)
	}
	// 取多于 limit 的候选，详情阶段会过滤掉非 story 条目
	candidates := limit * 2
	if candidates > len(ids) {
		candidates = len(ids)
	}
	ids = ids[:candidates]

	var mu sync.Mutex
	stories := make([]HNStory, 0, limit)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(h.cfg.Concurrency)

	for _, id := range ids {
		id := id
		g.Go(func() error {
			story, err := h.getItem(gctx, id)
			if err != nil {
				h.logger.Debug("item fetch failed", zap.Int64("id", id), zap.Error(err))
				return nil
			}
			if story == nil {
				return nil
			}
			mu.Lock()
			stories = append(stories, *story)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// 详情并发返回后按 ID 倒序还原时间序
	sortStoriesByID(stories)
	if len(stories) > limit {
		stories = stories[:limit]
	}

	h.logger.Info("hacker news fetched", zap.Int("stories", len(stories)))
	return stories, nil
}

func (h *HackerNews) getItem(ctx context.Context, id int64) (*HNStory, error) {
	var item struct {
		ID          int64  `json:"id"`
		Type        string `json:"type"`
		Title       string `json:"title"`
		URL         string `json:"url"`
		By          string `json:"by"`
		Score       int    `json:"score"`
		Descendants int    `json:"descendants"`
		Time        int64  `json:"time"`
		Dead        bool   `json:"dead"`
	}
	if err := h.getJSON(ctx, fmt.Sprintf("/item/%d.json", id), &item); err != nil {
		return nil, err
	}
	if item.Type != "story" || item.Dead || item.Title == "" {
		return nil, nil
	}
	return &HNStory{
		ID:       item.ID,
		Title:    item.Title,
		URL:      item.URL,
		HNLink:   fmt.Sprintf("https://news.ycombinator.com/item?id=%d", item.ID),
		By:       item.By,
		Score:    item.Score,
		Comments: item.Descendants,
		Time:     time.Unix(item.Time, 0),
	}, nil
}

func (h *HackerNews) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.cfg.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func sortStoriesByID(stories []HNStory) {
	sort.Slice(stories, func(i, j int) bool {
		return stories[i].ID > stories[j].ID
	})
}
