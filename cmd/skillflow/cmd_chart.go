package main

import (
	"flag"
	"fmt"

	"github.com/BaSui01/skillflow/chartrace"
)

// =============================================================================
// 📊 chart 命令
// =============================================================================

func runChart(args []string) {
	fs := flag.NewFlagSet("chart", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	csvPath := fs.String("csv", "", "Input CSV with columns date,name,category,value (required)")
	out := fs.String("out", "chart.html", "Output HTML file")
	title := fs.String("title", "", "Chart title")
	topN := fs.Int("top", 0, "Number of bars shown simultaneously")
	duration := fs.Int("duration", 0, "Keyframe transition duration in ms")
	fs.Parse(args)

	if *csvPath == "" {
		fmt.Println("Usage: skillflow chart --csv data.csv [--out race.html] [--title <title>] [--top 12]")
		return
	}

	_, logger := setup(*configPath)
	defer logger.Sync()

	ds, err := chartrace.ParseCSVFile(*csvPath)
	if err != nil {
		fatal(logger, "failed to parse CSV", err)
	}

	opts := chartrace.DefaultOptions()
	if *title != "" {
		opts.Title = *title
	}
	if *topN > 0 {
		opts.TopN = *topN
	}
	if *duration > 0 {
		opts.Duration = *duration
	}

	if err := chartrace.NewGenerator(opts, logger).RenderFile(ds, *out); err != nil {
		fatal(logger, "failed to render chart", err)
	}
	fmt.Printf("Chart saved to %s (%d dates, %d series)\n", *out, len(ds.Dates), len(ds.Names))
}
