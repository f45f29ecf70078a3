package arxiv

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/BaSui01/skillflow/internal/tlsutil"
)

// Config 配置 arXiv 检索客户端.
type Config struct {
	BaseURL    string        `json:"base_url"`    // arXiv API base URL
	MaxResults int           `json:"max_results"` // Maximum results per query
	SortBy     string        `json:"sort_by"`     // "relevance", "lastUpdatedDate", "submittedDate"
	SortOrder  string        `json:"sort_order"`  // "ascending", "descending"
	Timeout    time.Duration `json:"timeout"`     // HTTP request timeout
	RetryCount int           `json:"retry_count"` // Number of retries on failure
	RetryDelay time.Duration `json:"retry_delay"` // Delay between retries
	Categories []string      `json:"categories"`  // Filter by arXiv categories (e.g., "cs.AI", "cs.CL")
}

// DefaultConfig 返回 arXiv 查询的合理默认值。
func DefaultConfig() Config {
	return Config{
		BaseURL:    "http://export.arxiv.org/api/query",
		MaxResults: 20,
		SortBy:     "relevance",
		SortOrder:  "descending",
		Timeout:    30 * time.Second,
		RetryCount: 3,
		RetryDelay: 2 * time.Second,
	}
}

// Paper 代表一篇 arXiv 论文.
type Paper struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	Authors     []string  `json:"authors"`
	Categories  []string  `json:"categories"`
	Published   time.Time `json:"published"`
	Updated     time.Time `json:"updated"`
	PDFURL      string    `json:"pdf_url"`
	AbstractURL string    `json:"abstract_url"`
	DOI         string    `json:"doi,omitempty"`
	Comment     string    `json:"comment,omitempty"`
}

// Client 查询 arXiv Atom API.
// arXiv 要求两次请求间隔不少于 3 秒，内置限速器保证这一点。
type Client struct {
	config  Config
	client  *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewClient 创建 arXiv 检索客户端.
func NewClient(config Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		config:  config,
		client:  tlsutil.SecureHTTPClient(config.Timeout),
		limiter: rate.NewLimiter(rate.Every(3*time.Second), 1),
		logger:  logger.With(zap.String("component", "arxiv")),
	}
}

// Name 返回数据源名称。
func (c *Client) Name() string { return "arxiv" }

// Search 检索匹配给定查询的论文。
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]Paper, error) {
	if maxResults <= 0 {
		maxResults = c.config.MaxResults
	}

	searchQuery := c.buildQuery(query)
	params := url.Values{
		"search_query": {searchQuery},
		"start":        {"0"},
		"max_results":  {fmt.Sprintf("%d", maxResults)},
		"sortBy":       {c.config.SortBy},
		"sortOrder":    {c.config.SortOrder},
	}

	requestURL := fmt.Sprintf("%s?%s", c.config.BaseURL, params.Encode())

	c.logger.Info("querying arXiv",
		zap.String("query", query),
		zap.Int("max_results", maxResults))

	// 带限速与重试执行
	var body []byte
	var err error
	for attempt := 0; attempt <= c.config.RetryCount; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.config.RetryDelay):
			}
			c.logger.Debug("retrying arXiv query", zap.Int("attempt", attempt))
		}

		if err = c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		body, err = c.doRequest(ctx, requestURL)
		if err == nil {
			break
		}
		c.logger.Warn("arXiv request failed", zap.Int("attempt", attempt), zap.Error(err))
	}
	if err != nil {
		return nil, fmt.Errorf("arXiv query failed after %d retries: %w", c.config.RetryCount, err)
	}

	papers, err := parseFeed(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse arXiv response: %w", err)
	}

	c.logger.Info("arXiv search completed",
		zap.String("query", query),
		zap.Int("results", len(papers)))

	return papers, nil
}

// buildQuery 构建 arXiv search_query 字符串。
func (c *Client) buildQuery(query string) string {
	searchParts := []string{fmt.Sprintf("all:%s", query)}

	if len(c.config.Categories) > 0 {
		catParts := make([]string, len(c.config.Categories))
		for i, cat := range c.config.Categories {
			catParts[i] = fmt.Sprintf("cat:%s", cat)
		}
		categoryFilter := strings.Join(catParts, "+OR+")
		searchParts = append(searchParts, fmt.Sprintf("(%s)", categoryFilter))
	}

	return strings.Join(searchParts, "+AND+")
}

func (c *Client) doRequest(ctx context.Context, requestURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arXiv API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return body, nil
}

// atomFeed 代表 arXiv 返回的 Atom XML 种子.
type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID         string         `xml:"id"`
	Title      string         `xml:"title"`
	Summary    string         `xml:"summary"`
	Published  string         `xml:"published"`
	Updated    string         `xml:"updated"`
	Authors    []atomAuthor   `xml:"author"`
	Links      []atomLink     `xml:"link"`
	Categories []atomCategory `xml:"category"`
	DOI        string         `xml:"doi"`
	Comment    string         `xml:"comment"`
}

type atomAuthor struct {
	Name string `xml:"name"`
}

type atomLink struct {
	Href  string `xml:"href,attr"`
	Rel   string `xml:"rel,attr"`
	Type  string `xml:"type,attr"`
	Title string `xml:"title,attr"`
}

type atomCategory struct {
	Term string `xml:"term,attr"`
}

// parseFeed 将 Atom XML 响应解析为 Paper 列表。
func parseFeed(body []byte) ([]Paper, error) {
	var feed atomFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("XML parse error: %w", err)
	}

	papers := make([]Paper, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		paper := Paper{
			ID:      entry.ID,
			Title:   strings.TrimSpace(entry.Title),
			Summary: strings.TrimSpace(entry.Summary),
			DOI:     entry.DOI,
			Comment: entry.Comment,
		}

		for _, author := range entry.Authors {
			paper.Authors = append(paper.Authors, author.Name)
		}

		for _, cat := range entry.Categories {
			paper.Categories = append(paper.Categories, cat.Term)
		}

		if t, err := time.Parse(time.RFC3339, entry.Published); err == nil {
			paper.Published = t
		}
		if t, err := time.Parse(time.RFC3339, entry.Updated); err == nil {
			paper.Updated = t
		}

		for _, link := range entry.Links {
			switch {
			case link.Type == "application/pdf":
				paper.PDFURL = link.Href
			case link.Rel == "alternate":
				paper.AbstractURL = link.Href
			}
		}

		papers = append(papers, paper)
	}

	return papers, nil
}

// ToJSON 将论文序列化为 JSON，供 CLI 输出。
func ToJSON(papers []Paper) (string, error) {
	data, err := json.MarshalIndent(papers, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
