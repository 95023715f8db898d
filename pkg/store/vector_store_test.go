package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider records upserts per collection and serves canned search
// results, so VectorStore logic is testable without a real backend.
type fakeProvider struct {
	docs      map[string][]Result
	searchErr error
	deleted   []string
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{docs: make(map[string][]Result)}
}

func (p *fakeProvider) Upsert(_ context.Context, collection, id string, _ []float32, metadata map[string]any) error {
	content, _ := metadata["content"].(string)
	p.docs[collection] = append(p.docs[collection], Result{
		ID:       id,
		Content:  content,
		Metadata: metadata,
		Score:    1,
	})
	return nil
}

func (p *fakeProvider) SearchWithFilter(_ context.Context, collection string, _ []float32, topK int, filter map[string]any) ([]Result, error) {
	if p.searchErr != nil {
		return nil, p.searchErr
	}

	var out []Result
	for _, doc := range p.docs[collection] {
		if matchesFilter(doc.Metadata, filter) {
			out = append(out, doc)
		}
		if len(out) == topK {
			break
		}
	}
	return out, nil
}

func matchesFilter(metadata, filter map[string]any) bool {
	for key, want := range filter {
		if fmt.Sprint(metadata[key]) != fmt.Sprint(want) {
			return false
		}
	}
	return true
}

func (p *fakeProvider) Count(_ context.Context, collection string) (int, error) {
	return len(p.docs[collection]), nil
}

func (p *fakeProvider) DeleteCollection(_ context.Context, collection string) error {
	delete(p.docs, collection)
	p.deleted = append(p.deleted, collection)
	return nil
}

func (p *fakeProvider) Name() string { return "fake" }
func (p *fakeProvider) Close() error { return nil }

func fakeEmbed(_ context.Context, text string) ([]float32, error) {
	return []float32{float32(len(text)), 1, 0}, nil
}

func failingEmbed(_ context.Context, _ string) ([]float32, error) {
	return nil, fmt.Errorf("embedding service unavailable")
}

func seedStore(t *testing.T, provider Provider) *VectorStore {
	t.Helper()
	ctx := context.Background()
	s := New(provider, fakeEmbed, 5)

	require.NoError(t, s.AddCourse(ctx, CourseMeta{
		Title:       "Introduction to MCP",
		Link:        "https://example.com/mcp",
		Instructor:  "Ada Lovelace",
		LessonCount: 2,
	}))

	one, two := 1, 2
	require.NoError(t, s.AddChunks(ctx, []Chunk{
		{Content: "MCP servers expose tools", CourseTitle: "Introduction to MCP", LessonNumber: &one, ChunkIndex: 0},
		{Content: "Clients call tools over stdio", CourseTitle: "Introduction to MCP", LessonNumber: &two, ChunkIndex: 1},
	}))
	return s
}

func TestSearchReturnsMatchingChunks(t *testing.T) {
	s := seedStore(t, newFakeProvider())

	results := s.Search(context.Background(), "what are MCP servers", "", nil)

	require.NoError(t, results.Err)
	require.Len(t, results.Documents, 2)
	assert.Equal(t, "MCP servers expose tools", results.Documents[0])
	assert.Equal(t, "Introduction to MCP", CourseTitle(results.Metadata[0]))
}

func TestSearchFiltersByLesson(t *testing.T) {
	s := seedStore(t, newFakeProvider())

	two := 2
	results := s.Search(context.Background(), "tools", "", &two)

	require.NoError(t, results.Err)
	require.Len(t, results.Documents, 1)
	assert.Equal(t, "Clients call tools over stdio", results.Documents[0])
}

func TestSearchResolvesPartialCourseName(t *testing.T) {
	s := seedStore(t, newFakeProvider())

	// The catalog match carries the canonical title in its metadata.
	results := s.Search(context.Background(), "tools", "MCP", nil)

	require.NoError(t, results.Err)
	assert.Len(t, results.Documents, 2)
}

func TestSearchUnknownCourse(t *testing.T) {
	s := New(newFakeProvider(), fakeEmbed, 5)

	results := s.Search(context.Background(), "anything", "Nonexistent Course", nil)

	require.Error(t, results.Err)
	assert.Equal(t, "No course found matching 'Nonexistent Course'", results.Err.Error())
	assert.True(t, results.IsEmpty())
}

func TestSearchBackendError(t *testing.T) {
	provider := newFakeProvider()
	provider.searchErr = fmt.Errorf("connection refused")
	s := New(provider, fakeEmbed, 5)

	results := s.Search(context.Background(), "anything", "", nil)

	require.Error(t, results.Err)
	assert.Contains(t, results.Err.Error(), "connection refused")
}

func TestSearchEmbedError(t *testing.T) {
	s := New(newFakeProvider(), failingEmbed, 5)

	results := s.Search(context.Background(), "anything", "", nil)

	require.Error(t, results.Err)
	assert.Contains(t, results.Err.Error(), "embedding service unavailable")
}

func TestCourseRegistry(t *testing.T) {
	s := seedStore(t, newFakeProvider())

	assert.True(t, s.HasCourse("Introduction to MCP"))
	assert.False(t, s.HasCourse("Unknown"))
	assert.Equal(t, 1, s.CourseCount())
	assert.Equal(t, []string{"Introduction to MCP"}, s.CourseTitles())

	// Re-adding the same course must not duplicate the title.
	require.NoError(t, s.AddCourse(context.Background(), CourseMeta{Title: "Introduction to MCP"}))
	assert.Equal(t, 1, s.CourseCount())
}

func TestLoadCatalogRestoresCourseRegistry(t *testing.T) {
	provider := newFakeProvider()
	seedStore(t, provider)

	// A new store over the same backend starts with an empty registry, the
	// situation after a process restart with persisted data.
	reopened := New(provider, fakeEmbed, 5)
	assert.False(t, reopened.HasCourse("Introduction to MCP"))
	assert.Equal(t, 0, reopened.CourseCount())

	require.NoError(t, reopened.LoadCatalog(context.Background()))

	assert.True(t, reopened.HasCourse("Introduction to MCP"))
	assert.Equal(t, 1, reopened.CourseCount())
	assert.Equal(t, []string{"Introduction to MCP"}, reopened.CourseTitles())
}

func TestLoadCatalogEmptyBackend(t *testing.T) {
	// An empty catalog must not cost an embedding call.
	s := New(newFakeProvider(), failingEmbed, 5)

	require.NoError(t, s.LoadCatalog(context.Background()))
	assert.Equal(t, 0, s.CourseCount())
}

func TestAddCourseRequiresTitle(t *testing.T) {
	s := New(newFakeProvider(), fakeEmbed, 5)
	require.Error(t, s.AddCourse(context.Background(), CourseMeta{}))
}

func TestClearDropsEverything(t *testing.T) {
	provider := newFakeProvider()
	s := seedStore(t, provider)

	require.NoError(t, s.Clear(context.Background()))

	assert.Equal(t, 0, s.CourseCount())
	assert.False(t, s.HasCourse("Introduction to MCP"))
	assert.ElementsMatch(t, []string{CatalogCollection, ContentCollection}, provider.deleted)
}

func TestChunkMetadataOmitsLessonWhenNil(t *testing.T) {
	provider := newFakeProvider()
	s := New(provider, fakeEmbed, 5)

	require.NoError(t, s.AddChunks(context.Background(), []Chunk{
		{Content: "course overview", CourseTitle: "Intro", ChunkIndex: 0},
	}))

	docs := provider.docs[ContentCollection]
	require.Len(t, docs, 1)
	_, hasLesson := docs[0].Metadata[LessonNumberKey]
	assert.False(t, hasLesson)
}
