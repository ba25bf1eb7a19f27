package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/python-discord/blurple/internal/watch"
)

var watchAll bool

// watchCmd formats Python files as they are saved.
var watchCmd = &cobra.Command{
	Use:   "watch [dirs]",
	Short: "Format Python files as they are saved",
	Long: `Watches directories (the config's watch.dirs by default) and writes a
formatted sibling file whenever a matching Python file changes. The
source file is never modified.

Press Ctrl+C to stop.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchAll, "all", false, "Format matching files already present before watching")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		cfg.Watch.Dirs = args
	}

	formatter := newFormatter(0, 0)
	watcher, err := watch.New(cfg, formatter, logger)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if watchAll {
		if err := watcher.FormatAll(ctx); err != nil {
			return fmt.Errorf("initial pass failed: %w", err)
		}
	}

	if err := watcher.Start(ctx); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	fmt.Printf("%s watching %s\n", titleStyle.Render("blurple"), strings.Join(watcher.GetWatchedDirs(), ", "))
	fmt.Println("Press Ctrl+C to stop")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	watcher.Stop()

	stats := watcher.GetStats()
	fmt.Printf("Formatted %d file(s), %d syntax failure(s), %d error(s)\n",
		stats.FormatsWritten, stats.SyntaxFailures, stats.Errors)
	return nil
}
