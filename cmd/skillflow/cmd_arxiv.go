package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/BaSui01/skillflow/arxiv"
)

// =============================================================================
// 🔎 arxiv 命令
// =============================================================================

func runArxiv(args []string) {
	fs := flag.NewFlagSet("arxiv", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	query := fs.String("query", "", "Search query (required)")
	maxResults := fs.Int("max", 0, "Maximum number of results")
	categories := fs.String("categories", "", "Comma-separated arXiv categories (e.g. cs.AI,cs.CL)")
	sortBy := fs.String("sort", "", "Sort by: relevance, lastUpdatedDate, submittedDate")
	asJSON := fs.Bool("json", false, "Output raw JSON")
	fs.Parse(args)

	if *query == "" {
		fmt.Println("Usage: skillflow arxiv --query <text> [--max N] [--categories cs.AI,cs.CL]")
		return
	}

	cfg, logger := setup(*configPath)
	defer logger.Sync()

	clientCfg := arxiv.DefaultConfig()
	if cfg.ArXiv.BaseURL != "" {
		clientCfg.BaseURL = cfg.ArXiv.BaseURL
	}
	if cfg.ArXiv.MaxResults > 0 {
		clientCfg.MaxResults = cfg.ArXiv.MaxResults
	}
	if cfg.ArXiv.SortBy != "" {
		clientCfg.SortBy = cfg.ArXiv.SortBy
	}
	if *sortBy != "" {
		clientCfg.SortBy = *sortBy
	}
	if cfg.ArXiv.Timeout > 0 {
		clientCfg.Timeout = cfg.ArXiv.Timeout
	}
	clientCfg.Categories = cfg.ArXiv.Categories
	if *categories != "" {
		clientCfg.Categories = splitComma(*categories)
	}

	papers, err := arxiv.NewClient(clientCfg, logger).Search(context.Background(), *query, *maxResults)
	if err != nil {
		fatal(logger, "arXiv search failed", err)
	}

	if *asJSON {
		out, err := arxiv.ToJSON(papers)
		if err != nil {
			fatal(logger, "failed to encode results", err)
		}
		fmt.Println(out)
		return
	}

	for i, p := range papers {
		fmt.Printf("%d. %s\n", i+1, p.Title)
		fmt.Printf("   Authors:  %s\n", strings.Join(p.Authors, ", "))
		fmt.Printf("   Updated:  %s  Categories: %s\n",
			p.Updated.Format("2006-01-02"), strings.Join(p.Categories, ", "))
		fmt.Printf("   PDF:      %s\n", p.PDFURL)
		fmt.Printf("   Abstract: %s\n\n", truncate(p.Summary, 300))
	}
	fmt.Printf("%d papers found\n", len(papers))
}

func splitComma(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func truncate(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
