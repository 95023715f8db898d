// Package rag composes retrieval, tools, sessions and the generator into
// the question-answering system: one call per user turn, with source
// attribution and bounded conversation history.
package rag

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/coursechat/coursechat/pkg/generator"
	"github.com/coursechat/coursechat/pkg/ingest"
	"github.com/coursechat/coursechat/pkg/llms"
	"github.com/coursechat/coursechat/pkg/store"
)

// queryPrefix frames every user question consistently for the model.
const queryPrefix = "Answer this question about course materials: "

// ingestConcurrency bounds parallel document processing during folder
// ingestion.
const ingestConcurrency = 4

// Analytics summarizes the indexed corpus for the courses endpoint.
type Analytics struct {
	TotalCourses int      `json:"total_courses"`
	CourseTitles []string `json:"course_titles"`
}

// Sessions is the conversation-history seam.
type Sessions interface {
	Create() string
	History(id string) string
	AddExchange(id, query, response string)
}

// Generator is the answer-generation seam.
type Generator interface {
	Generate(ctx context.Context, query, history string, tools []llms.ToolDefinition, exec generator.ToolExecutor) (string, error)
}

// Registry is the tool-dispatch seam; the tools.Registry satisfies it.
type Registry interface {
	generator.ToolExecutor
	Definitions() []llms.ToolDefinition
	CollectSources() []string
	ResetSources()
}

// Catalog is the slice of the vector store the system needs for ingestion
// and analytics.
type Catalog interface {
	AddCourse(ctx context.Context, course store.CourseMeta) error
	AddChunks(ctx context.Context, chunks []store.Chunk) error
	HasCourse(title string) bool
	CourseTitles() []string
	CourseCount() int
	Clear(ctx context.Context) error
}

// System is the per-process orchestrator. One Query call handles one turn
// end to end; attribution collect-then-reset is serialized so concurrent
// turns never read each other's sources.
type System struct {
	catalog   Catalog
	processor *ingest.Processor
	registry  Registry
	generator Generator
	sessions  Sessions

	// turnMu serializes generate-collect-reset; tool attribution is
	// per-registry state.
	turnMu sync.Mutex

	closers []io.Closer
}

// Close releases the underlying model client and vector store.
func (s *System) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// NewSystem wires an orchestrator from its parts.
func NewSystem(catalog Catalog, processor *ingest.Processor, registry Registry, gen Generator, sessions Sessions) *System {
	return &System{
		catalog:   catalog,
		processor: processor,
		registry:  registry,
		generator: gen,
		sessions:  sessions,
	}
}

// CreateSession starts a new conversation and returns its identifier.
func (s *System) CreateSession() string {
	return s.sessions.Create()
}

// Query answers one user question. When sessionID is non-empty, prior
// turns feed the prompt and the new exchange is recorded; the returned
// sources name the course passages the answer drew from.
func (s *System) Query(ctx context.Context, query, sessionID string) (string, []string, error) {
	prompt := queryPrefix + query

	var history string
	if sessionID != "" {
		history = s.sessions.History(sessionID)
	}

	s.turnMu.Lock()
	defer s.turnMu.Unlock()

	answer, err := s.generator.Generate(ctx, prompt, history, s.registry.Definitions(), s.registry)
	if err != nil {
		return "", nil, err
	}

	sources := s.registry.CollectSources()
	s.registry.ResetSources()

	if sessionID != "" {
		s.sessions.AddExchange(sessionID, query, answer)
	}

	return answer, sources, nil
}

// Analytics reports what is indexed.
func (s *System) Analytics() (Analytics, error) {
	titles := s.catalog.CourseTitles()
	if titles == nil {
		titles = []string{}
	}
	return Analytics{
		TotalCourses: s.catalog.CourseCount(),
		CourseTitles: titles,
	}, nil
}

// AddCourseFile ingests one course document. Already-indexed course titles
// are skipped so restarts do not duplicate content. Returns whether the
// course was added and how many chunks were indexed.
func (s *System) AddCourseFile(ctx context.Context, path string) (bool, int, error) {
	meta, chunks, err := s.processor.ProcessFile(path)
	if err != nil {
		return false, 0, err
	}

	if s.catalog.HasCourse(meta.Title) {
		slog.Debug("course already indexed, skipping", "title", meta.Title)
		return false, 0, nil
	}

	if err := s.catalog.AddCourse(ctx, meta); err != nil {
		return false, 0, err
	}
	if err := s.catalog.AddChunks(ctx, chunks); err != nil {
		return false, 0, err
	}

	slog.Info("indexed course", "title", meta.Title, "chunks", len(chunks))
	return true, len(chunks), nil
}

// AddCourseFolder ingests every course document in a folder, processing
// files concurrently. Returns the number of new courses and chunks added.
func (s *System) AddCourseFolder(ctx context.Context, dir string) (int, int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read docs folder: %w", err)
	}

	var mu sync.Mutex
	courses, chunks := 0, 0

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(ingestConcurrency)

	for _, entry := range entries {
		if entry.IsDir() || !isCourseFile(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())

		g.Go(func() error {
			added, n, err := s.AddCourseFile(ctx, path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			if added {
				mu.Lock()
				courses++
				chunks += n
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return courses, chunks, err
	}
	return courses, chunks, nil
}

// ClearIndex drops all indexed course data.
func (s *System) ClearIndex(ctx context.Context) error {
	return s.catalog.Clear(ctx)
}

func isCourseFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".pdf":
		return true
	}
	return false
}
