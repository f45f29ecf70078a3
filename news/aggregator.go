package news

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BaSui01/skillflow/internal/tlsutil"
)

// Source 是一个 RSS/Atom 订阅源.
type Source struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
}

// DefaultSources 返回内置的科技资讯订阅源。
func DefaultSources() []Source {
	return []Source{
		{Name: "techcrunch", URL: "https://techcrunch.com/feed/"},
		{Name: "theverge", URL: "https://www.theverge.com/rss/index.xml"},
		{Name: "arstechnica", URL: "https://feeds.arstechnica.com/arstechnica/index"},
		{Name: "venturebeat", URL: "https://venturebeat.com/feed/"},
		{Name: "mitreview", URL: "https://www.technologyreview.com/feed/"},
		{Name: "36kr", URL: "https://36kr.com/feed"},
		{Name: "tmt", URL: "https://www.tmtpost.com/feed"},
		{Name: "huxiu", URL: "https://www.huxiu.com/rss/0.xml"},
	}
}

// ParseSources 解析 name=url 形式的附加订阅源，格式不合法的条目跳过。
func ParseSources(entries []string) []Source {
	var out []Source
	for _, e := range entries {
		name, rawurl, ok := strings.Cut(e, "=")
		if !ok || name == "" || rawurl == "" {
			continue
		}
		out = append(out, Source{Name: strings.TrimSpace(name), URL: strings.TrimSpace(rawurl)})
	}
	return out
}

// Config 配置资讯聚合器.
type Config struct {
	Sources     []Source      `json:"sources" yaml:"sources"`
	Limit       int           `json:"limit" yaml:"limit"`
	Timeout     time.Duration `json:"timeout" yaml:"timeout"`
	Concurrency int           `json:"concurrency" yaml:"concurrency"`
}

// DefaultAggregatorConfig 返回默认的聚合配置。
func DefaultAggregatorConfig() Config {
	return Config{
		Sources:     DefaultSources(),
		Limit:       30,
		Timeout:     15 * time.Second,
		Concurrency: 4,
	}
}

// Aggregator 并发抓取多个订阅源，去重排序后返回资讯列表.
// 单个源失败只记录日志，不影响其他源的结果。
type Aggregator struct {
	cfg    Config
	client *http.Client
	logger *zap.Logger
}

// NewAggregator 创建资讯聚合器.
func NewAggregator(cfg Config, logger *zap.Logger) *Aggregator {
	if len(cfg.Sources) == 0 {
		cfg.Sources = DefaultSources()
	}
	if cfg.Limit <= 0 {
		cfg.Limit = 30
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{
		cfg:    cfg,
		client: tlsutil.SecureHTTPClient(cfg.Timeout),
		logger: logger.With(zap.String("component", "news")),
	}
}

// Fetch 抓取全部订阅源并返回按发布时间倒序的去重条目.
// sourceFilter 非空时只抓取指定名称的源。
func (a *Aggregator) Fetch(ctx context.Context, sourceFilter []string) ([]Item, error) {
	sources := a.selectSources(sourceFilter)
	if len(sources) == 0 {
		return nil, fmt.Errorf("no matching sources")
	}

	var mu sync.Mutex
	var all []Item

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.Concurrency)

	for _, src := range sources {
		src := src
		g.Go(func() error {
			items, err := a.fetchSource(gctx, src)
			if err != nil {
				// 单源失败不中断聚合
				a.logger.Warn("source fetch failed",
					zap.String("source", src.Name),
					zap.Error(err))
				return nil
			}
			mu.Lock()
			all = append(all, items...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	deduped := dedupe(all)
	sort.Slice(deduped, func(i, j int) bool {
		return deduped[i].PublishedAt.After(deduped[j].PublishedAt)
	})
	if len(deduped) > a.cfg.Limit {
		deduped = deduped[:a.cfg.Limit]
	}

	a.logger.Info("news aggregated",
		zap.Int("sources", len(sources)),
		zap.Int("total", len(all)),
		zap.Int("returned", len(deduped)))
	return deduped, nil
}

func (a *Aggregator) selectSources(filter []string) []Source {
	if len(filter) == 0 {
		return a.cfg.Sources
	}
	wanted := make(map[string]bool, len(filter))
	for _, name := range filter {
		wanted[name] = true
	}
	var out []Source
	for _, src := range a.cfg.Sources {
		if wanted[src.Name] {
			out = append(out, src)
		}
	}
	return out
}

func (a *Aggregator) fetchSource(ctx context.Context, src Source) ([]Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "skillflow-news/1.0")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}

	items, err := parseFeed(body, src.Name)
	if err != nil {
		return nil, err
	}
	// 缺少标题或链接的条目直接丢弃
	kept := items[:0]
	for _, item := range items {
		if item.Title == "" || item.Link == "" {
			continue
		}
		item.ID = itemID(item.Title, item.Link)
		kept = append(kept, item)
	}
	return kept, nil
}

// itemID 用标题和链接的 MD5 作为去重键。
func itemID(title, link string) string {
	sum := md5.Sum([]byte(title + link))
	return hex.EncodeToString(sum[:])
}

func dedupe(items []Item) []Item {
	seen := make(map[string]bool, len(items))
	out := make([]Item, 0, len(items))
	for _, item := range items {
		if item.ID == "" || seen[item.ID] {
			continue
		}
		seen[item.ID] = true
		out = append(out, item)
	}
	return out
}
