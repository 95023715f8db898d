package store

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Collection names. The catalog holds one entry per course (searched to
// resolve fuzzy course-name filters); the content collection holds the
// course chunks the assistant actually quotes from.
const (
	CatalogCollection = "course_catalog"
	ContentCollection = "course_content"
)

// DefaultMaxResults bounds how many chunks one search returns.
const DefaultMaxResults = 5

// CourseMeta describes one course in the catalog.
type CourseMeta struct {
	Title       string
	Link        string
	Instructor  string
	LessonCount int
}

// Chunk is one indexable piece of course content. LessonNumber is nil for
// content outside any lesson, in which case the lesson-number metadata key
// is omitted entirely.
type Chunk struct {
	Content      string
	CourseTitle  string
	LessonNumber *int
	ChunkIndex   int
}

// VectorStore is the retrieval store: semantic search over course chunks
// with optional course and lesson filtering, plus the course catalog used
// for analytics and fuzzy course-name resolution.
//
// Search never returns a Go error; backend failures travel inside
// SearchResults.Err so the caller can forward the exact failure text.
type VectorStore struct {
	provider   Provider
	embed      EmbedFunc
	maxResults int

	mu     sync.RWMutex
	titles []string
	known  map[string]bool
}

// New builds a VectorStore on top of a vector backend and an embedder.
func New(provider Provider, embed EmbedFunc, maxResults int) *VectorStore {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	return &VectorStore{
		provider:   provider,
		embed:      embed,
		maxResults: maxResults,
		known:      make(map[string]bool),
	}
}

// Search runs a similarity search over course content. courseName, when
// non-empty, is resolved against the catalog first (so partial names like
// "MCP" match "MCP: Build Rich-Context AI Apps"); lessonNumber, when
// non-nil, restricts results to that lesson.
func (s *VectorStore) Search(ctx context.Context, query, courseName string, lessonNumber *int) SearchResults {
	filter := make(map[string]any)

	if courseName != "" {
		title, ok := s.resolveCourseName(ctx, courseName)
		if !ok {
			return ErrorResults(fmt.Sprintf("No course found matching '%s'", courseName))
		}
		filter[CourseTitleKey] = title
	}
	if lessonNumber != nil {
		filter[LessonNumberKey] = *lessonNumber
	}

	vector, err := s.embed(ctx, query)
	if err != nil {
		return ErrorResults(fmt.Sprintf("Search error: %v", err))
	}

	results, err := s.provider.SearchWithFilter(ctx, ContentCollection, vector, s.maxResults, filter)
	if err != nil {
		return ErrorResults(fmt.Sprintf("Search error: %v", err))
	}

	out := SearchResults{
		Documents: make([]string, 0, len(results)),
		Metadata:  make([]map[string]any, 0, len(results)),
		Distances: make([]float64, 0, len(results)),
	}
	for _, r := range results {
		out.Documents = append(out.Documents, r.Content)
		out.Metadata = append(out.Metadata, r.Metadata)
		out.Distances = append(out.Distances, float64(r.Score))
	}
	return out
}

// resolveCourseName finds the best catalog match for a partial course name.
func (s *VectorStore) resolveCourseName(ctx context.Context, name string) (string, bool) {
	vector, err := s.embed(ctx, name)
	if err != nil {
		return "", false
	}

	matches, err := s.provider.SearchWithFilter(ctx, CatalogCollection, vector, 1, nil)
	if err != nil || len(matches) == 0 {
		return "", false
	}

	if title, ok := matches[0].Metadata["title"].(string); ok && title != "" {
		return title, true
	}
	return matches[0].Content, true
}

// LoadCatalog rebuilds the in-memory title registry from a previously
// persisted backend, so restarts keep HasCourse and the analytics surface
// consistent with what search can retrieve. Backends only expose similarity
// search, so the catalog is read back with a single query sized to the whole
// collection; an empty catalog costs no embedding call.
func (s *VectorStore) LoadCatalog(ctx context.Context) error {
	count, err := s.provider.Count(ctx, CatalogCollection)
	if err != nil {
		return fmt.Errorf("failed to count catalog entries: %w", err)
	}
	if count == 0 {
		return nil
	}

	vector, err := s.embed(ctx, "course")
	if err != nil {
		return fmt.Errorf("failed to embed catalog query: %w", err)
	}

	entries, err := s.provider.SearchWithFilter(ctx, CatalogCollection, vector, count, nil)
	if err != nil {
		return fmt.Errorf("failed to read catalog: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, entry := range entries {
		title, _ := entry.Metadata["title"].(string)
		if title == "" {
			title = entry.Content
		}
		if title == "" || s.known[title] {
			continue
		}
		s.known[title] = true
		s.titles = append(s.titles, title)
	}
	return nil
}

// AddCourse indexes a course into the catalog and records its title.
func (s *VectorStore) AddCourse(ctx context.Context, course CourseMeta) error {
	if course.Title == "" {
		return fmt.Errorf("course title is required")
	}

	vector, err := s.embed(ctx, course.Title)
	if err != nil {
		return fmt.Errorf("failed to embed course title: %w", err)
	}

	metadata := map[string]any{
		"content":    course.Title,
		"title":      course.Title,
		"instructor": course.Instructor,
		"link":       course.Link,
		"lessons":    course.LessonCount,
	}
	if err := s.provider.Upsert(ctx, CatalogCollection, slug(course.Title), vector, metadata); err != nil {
		return fmt.Errorf("failed to index course %q: %w", course.Title, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.known[course.Title] {
		s.known[course.Title] = true
		s.titles = append(s.titles, course.Title)
	}
	return nil
}

// AddChunks indexes course content chunks.
func (s *VectorStore) AddChunks(ctx context.Context, chunks []Chunk) error {
	for _, chunk := range chunks {
		vector, err := s.embed(ctx, chunk.Content)
		if err != nil {
			return fmt.Errorf("failed to embed chunk %d of %q: %w", chunk.ChunkIndex, chunk.CourseTitle, err)
		}

		metadata := map[string]any{
			"content":      chunk.Content,
			CourseTitleKey: chunk.CourseTitle,
			ChunkIndexKey:  chunk.ChunkIndex,
		}
		if chunk.LessonNumber != nil {
			metadata[LessonNumberKey] = *chunk.LessonNumber
		}

		id := fmt.Sprintf("%s_%d", slug(chunk.CourseTitle), chunk.ChunkIndex)
		if err := s.provider.Upsert(ctx, ContentCollection, id, vector, metadata); err != nil {
			return fmt.Errorf("failed to index chunk %d of %q: %w", chunk.ChunkIndex, chunk.CourseTitle, err)
		}
	}
	return nil
}

// HasCourse reports whether a course title is already indexed.
func (s *VectorStore) HasCourse(title string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.known[title]
}

// CourseTitles returns the indexed course titles in insertion order.
func (s *VectorStore) CourseTitles() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	titles := make([]string, len(s.titles))
	copy(titles, s.titles)
	return titles
}

// CourseCount returns the number of indexed courses.
func (s *VectorStore) CourseCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.titles)
}

// Clear drops all indexed data and forgets the catalog.
func (s *VectorStore) Clear(ctx context.Context) error {
	for _, collection := range []string{CatalogCollection, ContentCollection} {
		if err := s.provider.DeleteCollection(ctx, collection); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.titles = nil
	s.known = make(map[string]bool)
	return nil
}

// Close releases the backend.
func (s *VectorStore) Close() error {
	return s.provider.Close()
}

func slug(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
