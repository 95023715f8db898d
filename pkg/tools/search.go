package tools

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/mitchellh/mapstructure"

	"github.com/coursechat/coursechat/pkg/store"
)

// SearchToolName is the name the model uses to invoke course search.
const SearchToolName = "search_course_content"

// Searcher is the retrieval seam the search tool depends on.
type Searcher interface {
	Search(ctx context.Context, query, courseName string, lessonNumber *int) store.SearchResults
}

// searchArgs mirrors the tool's input schema. The model sends numbers as
// float64; weak decoding converts them to int.
type searchArgs struct {
	Query        string `mapstructure:"query"`
	CourseName   string `mapstructure:"course_name"`
	LessonNumber *int   `mapstructure:"lesson_number"`
}

// CourseSearchTool searches course materials with optional course and
// lesson filtering, and remembers which documents its last execution drew
// from so answers can cite them.
type CourseSearchTool struct {
	searcher Searcher

	mu      sync.Mutex
	sources []string
}

// NewCourseSearchTool builds the search tool over a retrieval store.
func NewCourseSearchTool(searcher Searcher) *CourseSearchTool {
	return &CourseSearchTool{searcher: searcher}
}

// Info describes the tool for the model.
func (t *CourseSearchTool) Info() ToolInfo {
	return ToolInfo{
		Name:        SearchToolName,
		Description: "Search course materials with smart course name matching and lesson filtering",
		Parameters: []ToolParameter{
			{
				Name:        "query",
				Type:        "string",
				Description: "What to search for in course content",
				Required:    true,
			},
			{
				Name:        "course_name",
				Type:        "string",
				Description: "Course title (partial matches work, e.g. 'MCP', 'Introduction')",
			},
			{
				Name:        "lesson_number",
				Type:        "integer",
				Description: "Specific lesson number to search within (e.g. 1, 2, 3)",
			},
		},
	}
}

// Execute runs the search and formats results for the model. Store errors
// are passed through verbatim as the tool output.
func (t *CourseSearchTool) Execute(ctx context.Context, args map[string]any) string {
	var parsed searchArgs
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &parsed,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Sprintf("Invalid tool arguments: %v", err)
	}
	if err := decoder.Decode(args); err != nil {
		return fmt.Sprintf("Invalid tool arguments: %v", err)
	}

	results := t.searcher.Search(ctx, parsed.Query, parsed.CourseName, parsed.LessonNumber)
	if results.Err != nil {
		return results.Err.Error()
	}

	if results.IsEmpty() {
		msg := "No relevant content found"
		if parsed.CourseName != "" {
			msg += fmt.Sprintf(" in course '%s'", parsed.CourseName)
		}
		if parsed.LessonNumber != nil {
			msg += fmt.Sprintf(" in lesson %d", *parsed.LessonNumber)
		}
		return msg + "."
	}

	return t.format(results)
}

// format renders matched chunks with a course/lesson header each and
// records their provenance.
func (t *CourseSearchTool) format(results store.SearchResults) string {
	formatted := make([]string, 0, len(results.Documents))
	sources := make([]string, 0, len(results.Documents))

	for i, doc := range results.Documents {
		var meta map[string]any
		if i < len(results.Metadata) {
			meta = results.Metadata[i]
		}

		title := store.CourseTitle(meta)
		header := fmt.Sprintf("[%s]", title)
		source := title
		if n, ok := store.LessonNumber(meta); ok {
			header = fmt.Sprintf("[%s - Lesson %d]", title, n)
			source = fmt.Sprintf("%s - Lesson %d", title, n)
		}

		formatted = append(formatted, header+"\n"+doc)
		sources = append(sources, source)
	}

	t.mu.Lock()
	t.sources = sources
	t.mu.Unlock()

	return strings.Join(formatted, "\n\n")
}

// LastSources returns the provenance of the most recent execution.
func (t *CourseSearchTool) LastSources() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.sources))
	copy(out, t.sources)
	return out
}

// ResetSources clears recorded provenance.
func (t *CourseSearchTool) ResetSources() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sources = nil
}

var _ Tool = (*CourseSearchTool)(nil)
