package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wordCounter counts whitespace-separated words, keeping chunk budgets easy
// to reason about in tests.
type wordCounter struct{}

func (wordCounter) Count(text string) int { return len(strings.Fields(text)) }

const sampleScript = `Course Title: Building Toward Computer Use
Course Link: https://example.com/computer-use
Course Instructor: Colt Steele

Welcome to the course. This overview explains what you will learn.

Lesson 0: Introduction
Lesson Link: https://example.com/lesson-0
Language models keep getting better. They can now use tools.

Lesson 1: API Basics
The API accepts messages. Each message has a role.
`

func TestParseCourseScript(t *testing.T) {
	p := NewProcessor(800, 100, wordCounter{})

	course := p.Parse("fallback", sampleScript)

	assert.Equal(t, "Building Toward Computer Use", course.Title)
	assert.Equal(t, "https://example.com/computer-use", course.Link)
	assert.Equal(t, "Colt Steele", course.Instructor)
	assert.Contains(t, course.Preamble, "Welcome to the course.")

	require.Len(t, course.Lessons, 2)
	assert.Equal(t, 0, course.Lessons[0].Number)
	assert.Equal(t, "Introduction", course.Lessons[0].Title)
	assert.Equal(t, "https://example.com/lesson-0", course.Lessons[0].Link)
	assert.Contains(t, course.Lessons[0].Content, "use tools")

	assert.Equal(t, 1, course.Lessons[1].Number)
	assert.Equal(t, "API Basics", course.Lessons[1].Title)
	assert.Empty(t, course.Lessons[1].Link)
}

func TestParseFallbackTitle(t *testing.T) {
	p := NewProcessor(800, 100, wordCounter{})

	course := p.Parse("my_course", "Just some text without headers.")

	assert.Equal(t, "my_course", course.Title)
	assert.Contains(t, course.Preamble, "Just some text")
	assert.Empty(t, course.Lessons)
}

func TestChunkFirstLessonChunkIsPrefixed(t *testing.T) {
	p := NewProcessor(800, 100, wordCounter{})
	course := p.Parse("fallback", sampleScript)

	chunks := p.Chunk(course)
	require.NotEmpty(t, chunks)

	// Preamble chunks carry no lesson number.
	assert.Nil(t, chunks[0].LessonNumber)
	assert.Equal(t, "Building Toward Computer Use", chunks[0].CourseTitle)

	var lessonFirst *string
	for i := range chunks {
		if chunks[i].LessonNumber != nil && *chunks[i].LessonNumber == 0 {
			lessonFirst = &chunks[i].Content
			break
		}
	}
	require.NotNil(t, lessonFirst)
	assert.True(t, strings.HasPrefix(*lessonFirst,
		"Course Building Toward Computer Use Lesson 0 content: "))
}

func TestChunkIndexesAreSequential(t *testing.T) {
	p := NewProcessor(800, 100, wordCounter{})
	chunks := p.Chunk(p.Parse("fallback", sampleScript))

	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.ChunkIndex)
	}
}

func TestChunkTextRespectsBudget(t *testing.T) {
	p := NewProcessor(6, 0, wordCounter{})

	text := "One two three. Four five six. Seven eight nine. Ten eleven twelve."
	chunks := p.ChunkText(text)

	require.Len(t, chunks, 2)
	assert.Equal(t, "One two three. Four five six.", chunks[0])
	assert.Equal(t, "Seven eight nine. Ten eleven twelve.", chunks[1])
}

func TestChunkTextOverlapCarriesTrailingSentence(t *testing.T) {
	p := NewProcessor(6, 3, wordCounter{})

	text := "One two three. Four five six. Seven eight nine."
	chunks := p.ChunkText(text)

	require.Len(t, chunks, 2)
	assert.Equal(t, "One two three. Four five six.", chunks[0])
	assert.Equal(t, "Four five six. Seven eight nine.", chunks[1])
}

func TestChunkTextOversizedSentence(t *testing.T) {
	p := NewProcessor(3, 0, wordCounter{})

	chunks := p.ChunkText("This sentence has seven words in it. Short one.")

	require.Len(t, chunks, 2)
	assert.Equal(t, "This sentence has seven words in it.", chunks[0])
}

func TestChunkTextEmpty(t *testing.T) {
	p := NewProcessor(800, 100, wordCounter{})
	assert.Nil(t, p.ChunkText(""))
	assert.Nil(t, p.ChunkText("   \n\t "))
}

func TestSplitSentences(t *testing.T) {
	sentences := splitSentences("First sentence. Second one! Third?  Fourth without terminator")

	assert.Equal(t, []string{
		"First sentence.",
		"Second one!",
		"Third?",
		"Fourth without terminator",
	}, sentences)
}

func TestSplitSentencesKeepsAbbreviationRuns(t *testing.T) {
	// Terminal punctuation not followed by a space does not split.
	sentences := splitSentences("Version 2.5 is out. Done.")

	assert.Equal(t, []string{"Version 2.5 is out.", "Done."}, sentences)
}

func TestProcessFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "course1.txt")
	require.NoError(t, os.WriteFile(path, []byte(sampleScript), 0o644))

	p := NewProcessor(800, 100, wordCounter{})
	meta, chunks, err := p.ProcessFile(path)

	require.NoError(t, err)
	assert.Equal(t, "Building Toward Computer Use", meta.Title)
	assert.Equal(t, "Colt Steele", meta.Instructor)
	assert.Equal(t, 2, meta.LessonCount)
	assert.NotEmpty(t, chunks)
}

func TestProcessFileMissing(t *testing.T) {
	p := NewProcessor(800, 100, wordCounter{})
	_, _, err := p.ProcessFile("/nonexistent/file.txt")
	require.Error(t, err)
}

func TestApproxCounter(t *testing.T) {
	c := ApproxCounter{}
	assert.Equal(t, 0, c.Count(""))
	assert.Equal(t, 1, c.Count("hi"))
	assert.Equal(t, 3, c.Count(strings.Repeat("a", 12)))
}
