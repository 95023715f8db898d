package main

import (
	"context"
	"fmt"

	"github.com/coursechat/coursechat/pkg/config"
	"github.com/coursechat/coursechat/pkg/rag"
)

// IngestCmd indexes course documents without starting the server.
type IngestCmd struct {
	Docs  string `help:"Docs folder to index (overrides config)." type:"path"`
	Clear bool   `help:"Drop the existing index before ingesting."`
}

func (c *IngestCmd) Run(cfg *config.Config) error {
	if c.Docs != "" {
		cfg.Ingest.DocsFolder = c.Docs
	}

	ctx := context.Background()

	system, err := rag.FromConfig(ctx, cfg)
	if err != nil {
		return err
	}
	defer system.Close()

	if c.Clear {
		if err := system.ClearIndex(ctx); err != nil {
			return fmt.Errorf("failed to clear index: %w", err)
		}
	}

	courses, chunks, err := system.AddCourseFolder(ctx, cfg.Ingest.DocsFolder)
	if err != nil {
		return err
	}

	fmt.Printf("Indexed %d courses (%d chunks)\n", courses, chunks)
	return nil
}
