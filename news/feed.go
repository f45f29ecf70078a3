package news

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"
)

// Item 是一条归一化后的资讯.
type Item struct {
	ID          string    `json:"id"` // MD5(title+url)
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	Description string    `json:"description,omitempty"`
	Source      string    `json:"source"`
	Author      string    `json:"author,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

// rssDocument 覆盖 RSS 2.0 结构.
type rssDocument struct {
	XMLName xml.Name `xml:"rss"`
	Channel struct {
		Title string    `xml:"title"`
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	Author      string `xml:"author"`
	Creator     string `xml:"creator"` // dc:creator
	PubDate     string `xml:"pubDate"`
}

// atomDocument 覆盖 Atom 1.0 结构.
type atomDocument struct {
	XMLName xml.Name    `xml:"feed"`
	Title   string      `xml:"title"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	Title   string `xml:"title"`
	Summary string `xml:"summary"`
	Links   []struct {
		Href string `xml:"href,attr"`
		Rel  string `xml:"rel,attr"`
	} `xml:"link"`
	Author struct {
		Name string `xml:"name"`
	} `xml:"author"`
	Published string `xml:"published"`
	Updated   string `xml:"updated"`
}

// pubDateLayouts 按常见程度排列的 RSS 时间格式。
var pubDateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	time.RFC3339,
	"2006-01-02 15:04:05",
}

func parsePubDate(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range pubDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// parseFeed 自动识别 RSS 2.0 或 Atom 并解析为条目列表。
func parseFeed(body []byte, sourceName string) ([]Item, error) {
	var rss rssDocument
	if err := xml.Unmarshal(body, &rss); err == nil && len(rss.Channel.Items) > 0 {
		items := make([]Item, 0, len(rss.Channel.Items))
		for _, ri := range rss.Channel.Items {
			author := ri.Author
			if author == "" {
				author = ri.Creator
			}
			items = append(items, Item{
				Title:       strings.TrimSpace(ri.Title),
				Link:        strings.TrimSpace(ri.Link),
				Description: strings.TrimSpace(ri.Description),
				Source:      sourceName,
				Author:      strings.TrimSpace(author),
				PublishedAt: parsePubDate(ri.PubDate),
			})
		}
		return items, nil
	}

	var atom atomDocument
	if err := xml.Unmarshal(body, &atom); err == nil && len(atom.Entries) > 0 {
		items := make([]Item, 0, len(atom.Entries))
		for _, entry := range atom.Entries {
			link := ""
			for _, l := range entry.Links {
				if l.Rel == "" || l.Rel == "alternate" {
					link = l.Href
					break
				}
			}
			published := entry.Published
			if published == "" {
				published = entry.Updated
			}
			items = append(items, Item{
				Title:       strings.TrimSpace(entry.Title),
				Link:        link,
				Description: strings.TrimSpace(entry.Summary),
				Source:      sourceName,
				Author:      strings.TrimSpace(entry.Author.Name),
				PublishedAt: parsePubDate(published),
			})
		}
		return items, nil
	}

	return nil, fmt.Errorf("unrecognized feed format")
}
