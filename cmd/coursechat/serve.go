package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/coursechat/coursechat/pkg/config"
	"github.com/coursechat/coursechat/pkg/ingest"
	"github.com/coursechat/coursechat/pkg/rag"
	"github.com/coursechat/coursechat/pkg/server"
)

// ServeCmd starts the HTTP server, loading course documents first.
type ServeCmd struct {
	Docs    string `help:"Docs folder to index on startup (overrides config)." type:"path"`
	NoWatch bool   `help:"Disable re-indexing when the docs folder changes."`
}

func (c *ServeCmd) Run(cfg *config.Config) error {
	if c.Docs != "" {
		cfg.Ingest.DocsFolder = c.Docs
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	system, err := rag.FromConfig(ctx, cfg)
	if err != nil {
		return err
	}
	defer system.Close()

	if _, err := os.Stat(cfg.Ingest.DocsFolder); err == nil {
		courses, chunks, err := system.AddCourseFolder(ctx, cfg.Ingest.DocsFolder)
		if err != nil {
			slog.Error("failed to load course documents", "error", err)
		} else {
			slog.Info("loaded course documents", "courses", courses, "chunks", chunks)
		}

		if cfg.Ingest.Watch && !c.NoWatch {
			watcher, err := ingest.NewWatcher(cfg.Ingest.DocsFolder, func(path string) {
				if _, _, err := system.AddCourseFile(ctx, path); err != nil {
					slog.Error("failed to index changed document", "path", path, "error", err)
				}
			})
			if err != nil {
				slog.Warn("docs folder watch unavailable", "error", err)
			} else {
				defer watcher.Close()
				go watcher.Run(ctx)
			}
		}
	} else {
		slog.Warn("docs folder not found, starting with an empty index",
			"folder", cfg.Ingest.DocsFolder)
	}

	return server.New(cfg.Server, system).Start(ctx)
}
