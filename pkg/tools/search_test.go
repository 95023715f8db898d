package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursechat/coursechat/pkg/store"
)

// recordingSearcher serves a canned result set and records the arguments of
// the last Search call.
type recordingSearcher struct {
	results store.SearchResults

	lastQuery  string
	lastCourse string
	lastLesson *int
	calls      int
}

func (s *recordingSearcher) Search(_ context.Context, query, courseName string, lessonNumber *int) store.SearchResults {
	s.calls++
	s.lastQuery = query
	s.lastCourse = courseName
	s.lastLesson = lessonNumber
	return s.results
}

func resultsOf(docs []string, metas []map[string]any) store.SearchResults {
	return store.SearchResults{Documents: docs, Metadata: metas}
}

func TestSearchToolFormatsHeaders(t *testing.T) {
	searcher := &recordingSearcher{results: resultsOf(
		[]string{"Content A", "Content B"},
		[]map[string]any{
			{store.CourseTitleKey: "Python 101", store.LessonNumberKey: 1},
			{store.CourseTitleKey: "Python 101", store.LessonNumberKey: 2},
		},
	)}
	tool := NewCourseSearchTool(searcher)

	output := tool.Execute(context.Background(), map[string]any{"query": "what is python"})

	assert.Contains(t, output, "[Python 101 - Lesson 1]\nContent A")
	assert.Contains(t, output, "[Python 101 - Lesson 2]\nContent B")
	assert.Contains(t, output, "\n\n")
}

func TestSearchToolRecordsSources(t *testing.T) {
	searcher := &recordingSearcher{results: resultsOf(
		[]string{"Content"},
		[]map[string]any{{store.CourseTitleKey: "MCP Course", store.LessonNumberKey: 3}},
	)}
	tool := NewCourseSearchTool(searcher)

	tool.Execute(context.Background(), map[string]any{"query": "what is mcp"})

	assert.Equal(t, []string{"MCP Course - Lesson 3"}, tool.LastSources())

	tool.ResetSources()
	assert.Empty(t, tool.LastSources())
}

func TestSearchToolPassesStoreErrorThrough(t *testing.T) {
	searcher := &recordingSearcher{results: store.ErrorResults("DB down")}
	tool := NewCourseSearchTool(searcher)

	output := tool.Execute(context.Background(), map[string]any{"query": "anything"})

	assert.Equal(t, "DB down", output)
}

func TestSearchToolEmptyResults(t *testing.T) {
	tool := NewCourseSearchTool(&recordingSearcher{})

	output := tool.Execute(context.Background(), map[string]any{"query": "unknown topic"})

	assert.Contains(t, output, "No relevant content found")
}

func TestSearchToolEmptyResultsMentionsCourseFilter(t *testing.T) {
	tool := NewCourseSearchTool(&recordingSearcher{})

	output := tool.Execute(context.Background(), map[string]any{
		"query":       "something",
		"course_name": "Python",
	})

	assert.Contains(t, output, "in course 'Python'")
}

func TestSearchToolEmptyResultsMentionsLessonFilter(t *testing.T) {
	tool := NewCourseSearchTool(&recordingSearcher{})

	// Model tool arguments arrive JSON-decoded, so numbers are float64.
	output := tool.Execute(context.Background(), map[string]any{
		"query":         "something",
		"lesson_number": float64(3),
	})

	assert.Contains(t, output, "in lesson 3")
}

func TestSearchToolForwardsArguments(t *testing.T) {
	searcher := &recordingSearcher{}
	tool := NewCourseSearchTool(searcher)

	tool.Execute(context.Background(), map[string]any{
		"query":         "deep learning",
		"course_name":   "MCP",
		"lesson_number": float64(2),
	})

	assert.Equal(t, 1, searcher.calls)
	assert.Equal(t, "deep learning", searcher.lastQuery)
	assert.Equal(t, "MCP", searcher.lastCourse)
	require.NotNil(t, searcher.lastLesson)
	assert.Equal(t, 2, *searcher.lastLesson)
}

func TestSearchToolOmittedFiltersAreZero(t *testing.T) {
	searcher := &recordingSearcher{}
	tool := NewCourseSearchTool(searcher)

	tool.Execute(context.Background(), map[string]any{"query": "something"})

	assert.Empty(t, searcher.lastCourse)
	assert.Nil(t, searcher.lastLesson)
}

func TestSearchToolHeaderWithoutLesson(t *testing.T) {
	searcher := &recordingSearcher{results: resultsOf(
		[]string{"Content"},
		[]map[string]any{{store.CourseTitleKey: "Data Science"}},
	)}
	tool := NewCourseSearchTool(searcher)

	output := tool.Execute(context.Background(), map[string]any{"query": "numpy"})

	assert.Contains(t, output, "[Data Science]")
	assert.NotContains(t, output, "Lesson")
	assert.Equal(t, []string{"Data Science"}, tool.LastSources())
}

func TestSearchToolDefinition(t *testing.T) {
	def := NewCourseSearchTool(&recordingSearcher{}).Info().Definition()

	assert.Equal(t, SearchToolName, def.Name)
	assert.Equal(t, "object", def.InputSchema["type"])

	properties, ok := def.InputSchema["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, properties, "query")
	assert.Contains(t, properties, "course_name")
	assert.Contains(t, properties, "lesson_number")

	assert.Equal(t, []string{"query"}, def.InputSchema["required"])
}
