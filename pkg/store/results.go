package store

import (
	"errors"
	"strconv"
)

// SearchResults is the output of one retrieval call. The three sequences are
// aligned 1:1. When Err is set all sequences are empty; an empty non-error
// result means "no matches".
type SearchResults struct {
	Documents []string
	Metadata  []map[string]any
	Distances []float64
	Err       error
}

// ErrorResults builds a failed result set carrying only the error text.
func ErrorResults(msg string) SearchResults {
	return SearchResults{Err: errors.New(msg)}
}

// IsEmpty reports whether the result set carries no documents.
func (r SearchResults) IsEmpty() bool {
	return len(r.Documents) == 0
}

// Metadata keys attached to every indexed chunk. LessonNumberKey is omitted
// for content that belongs to no particular lesson; its absence is
// meaningful, not an error.
const (
	CourseTitleKey  = "course_title"
	LessonNumberKey = "lesson_number"
	ChunkIndexKey   = "chunk_index"
)

// CourseTitle extracts the course title from chunk metadata, defaulting to
// "unknown" when the key is missing.
func CourseTitle(meta map[string]any) string {
	if v, ok := meta[CourseTitleKey]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return "unknown"
}

// LessonNumber extracts the lesson number from chunk metadata. Backends
// differ in how they round-trip numbers (string, int64, float64), so all
// three encodings are accepted.
func LessonNumber(meta map[string]any) (int, bool) {
	v, ok := meta[LessonNumberKey]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case string:
		if parsed, err := strconv.Atoi(n); err == nil {
			return parsed, true
		}
	}
	return 0, false
}
