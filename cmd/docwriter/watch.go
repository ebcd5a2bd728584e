package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/benjaminschreck/go-docwriter/pkg/docwriter/metrics"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Input    string        `arg:"" help:"Outline (.yaml, .yml) or Markdown (.md, .markdown) source"`
	Output   string        `short:"o" required:"" help:"Output file"`
	Format   string        `short:"f" help:"Output format (docx, html); defaults to the output file extension"`
	Debounce time.Duration `help:"Quiet period after a change before rebuilding" default:"200ms"`
}

func (c *WatchCmd) Run(g *Global) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return c.watch(ctx, g, nil)
}

// watch builds once, then rebuilds after every change to the input until ctx
// is done. built, when set, is called after each build attempt.
func (c *WatchCmd) watch(ctx context.Context, g *Global, built func(error)) error {
	format, err := resolveFormat(c.Format, c.Output)
	if err != nil {
		return err
	}
	input, err := filepath.Abs(c.Input)
	if err != nil {
		return fmt.Errorf("failed to resolve input path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(input)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	rebuild := func() {
		_, err := buildFile(g, c.Input, c.Output, format, metrics.NoopRecorder{})
		if err != nil {
			g.Logger.Error("Build failed", "input", c.Input, "error", err)
		}
		if built != nil {
			built(err)
		}
	}

	g.Logger.Info("Watching for changes", "input", input, "output", c.Output)
	rebuild()

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			g.Logger.Info("Stopping watcher")
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != input {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			g.Logger.Debug("Source change detected", "file", event.Name, "op", event.Op.String())
			pending = time.After(c.Debounce)
		case <-pending:
			pending = nil
			rebuild()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			g.Logger.Error("Watcher error", "error", err)
		}
	}
}
