package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/BaSui01/skillflow/store"
)

// =============================================================================
// 🗂️ tasks 命令（异步任务日志）
// =============================================================================

func runTasks(args []string) {
	fs := flag.NewFlagSet("tasks", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	pending := fs.Bool("pending", false, "Show only pending tasks")
	expiring := fs.Duration("expiring", 0, "Show tasks whose result URL expires within this duration")
	limit := fs.Int("limit", 20, "Maximum number of records")
	fs.Parse(args)

	cfg, logger := setup(*configPath)
	defer logger.Sync()

	if !cfg.Journal.Enabled {
		fmt.Println("Task journal is disabled (set journal.enabled: true)")
		return
	}
	journal, err := store.Open(cfg.Journal.Path, logger)
	if err != nil {
		fatal(logger, "failed to open task journal", err)
	}
	defer journal.Close()

	ctx := context.Background()
	var recs []store.TaskRecord
	switch {
	case *pending:
		recs, err = journal.ListPending(ctx)
	case *expiring > 0:
		recs, err = journal.ListExpiring(ctx, *expiring)
	default:
		recs, err = journal.List(ctx, *limit)
	}
	if err != nil {
		fatal(logger, "failed to list tasks", err)
	}

	if len(recs) == 0 {
		fmt.Println("No tasks found")
		return
	}
	printTasks(recs)
}

func printTasks(recs []store.TaskRecord) {
	w := os.Stdout
	fmt.Fprintf(w, "%-36s  %-10s  %-10s  %-10s  %-19s  %s\n",
		"ID", "PROVIDER", "KIND", "STATUS", "CREATED", "EXPIRES")
	for _, r := range recs {
		expires := "-"
		if r.ExpiresAt != nil {
			remaining := time.Until(*r.ExpiresAt)
			if remaining > 0 {
				expires = fmt.Sprintf("in %s", remaining.Round(time.Minute))
			} else {
				expires = "expired"
			}
		}
		fmt.Fprintf(w, "%-36s  %-10s  %-10s  %-10s  %-19s  %s\n",
			r.ID, r.Provider, r.Kind, r.Status,
			r.CreatedAt.Format("2006-01-02 15:04:05"), expires)
	}
}
