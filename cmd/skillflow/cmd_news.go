package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"

	"github.com/BaSui01/skillflow/news"
	"github.com/BaSui01/skillflow/skills"
)

// =============================================================================
// 📰 news 命令
// =============================================================================

func runNews(args []string) {
	fs := flag.NewFlagSet("news", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	sources := fs.String("sources", "", "Comma-separated source names (default: all)")
	limit := fs.Int("limit", 0, "Maximum number of items")
	asJSON := fs.Bool("json", false, "Output raw JSON")
	fs.Parse(args)

	cfg, logger := setup(*configPath)
	defer logger.Sync()

	aggCfg := news.DefaultAggregatorConfig()
	if *limit > 0 {
		aggCfg.Limit = *limit
	} else if cfg.News.Limit > 0 {
		aggCfg.Limit = cfg.News.Limit
	}
	if cfg.News.Timeout > 0 {
		aggCfg.Timeout = cfg.News.Timeout
	}
	aggCfg.Sources = append(aggCfg.Sources, news.ParseSources(cfg.News.ExtraSources)...)

	items, err := news.NewAggregator(aggCfg, logger).Fetch(context.Background(), splitComma(*sources))
	if err != nil {
		fatal(logger, "news aggregation failed", err)
	}

	if *asJSON {
		data, _ := json.MarshalIndent(items, "", "  ")
		fmt.Println(string(data))
		return
	}
	for i, item := range items {
		fmt.Printf("%d. [%s] %s\n", i+1, item.Source, item.Title)
		fmt.Printf("   %s  %s\n", item.PublishedAt.Format("2006-01-02 15:04"), item.Link)
	}
}

// =============================================================================
// 🟠 hn 命令
// =============================================================================

func runHackerNews(args []string) {
	fs := flag.NewFlagSet("hn", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	limit := fs.Int("limit", 30, "Maximum number of stories")
	asJSON := fs.Bool("json", false, "Output raw JSON")
	fs.Parse(args)

	_, logger := setup(*configPath)
	defer logger.Sync()

	stories, err := news.NewHackerNews(news.DefaultHNConfig(), logger).NewStories(context.Background(), *limit)
	if err != nil {
		fatal(logger, "hacker news fetch failed", err)
	}

	if *asJSON {
		data, _ := json.MarshalIndent(stories, "", "  ")
		fmt.Println(string(data))
		return
	}
	for i, s := range stories {
		fmt.Printf("%d. %s\n", i+1, s.Title)
		if s.URL != "" {
			fmt.Printf("   %s\n", s.URL)
		}
		fmt.Printf("   %s\n", s.HNLink)
	}
}

// =============================================================================
// 🧰 skills 命令
// =============================================================================

func runSkills(args []string) {
	fs := flag.NewFlagSet("skills", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	query := fs.String("search", "", "Filter skills by keyword")
	fs.Parse(args)

	cfg, logger := setup(*configPath)
	defer logger.Sync()

	catalog, err := skills.NewCatalog(cfg, logger, nil)
	if err != nil {
		fatal(logger, "failed to build skill catalog", err)
	}

	var list []*skills.Instance
	if *query != "" {
		list = catalog.Registry().Search(*query, nil)
	} else {
		list = catalog.Registry().ListAll()
	}

	for _, inst := range list {
		def := inst.Definition
		state := "enabled"
		if !inst.Enabled {
			state = "disabled"
		}
		fmt.Printf("%-20s %-10s %-8s %s\n", def.ID, def.Category, state, def.Description)
	}
	fmt.Printf("%d skills\n", len(list))
}
