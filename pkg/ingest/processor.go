// Package ingest turns course documents into indexable chunks: it parses
// the course script format, splits content into sentence-aligned chunks
// within a token budget, and extracts text from PDFs.
package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/coursechat/coursechat/pkg/store"
)

// Default chunking parameters, in tokens.
const (
	DefaultChunkSize    = 800
	DefaultChunkOverlap = 100
)

// Course is a parsed course document.
type Course struct {
	Title      string
	Link       string
	Instructor string

	// Preamble is content appearing before the first lesson marker.
	Preamble string

	Lessons []Lesson
}

// Lesson is one lesson section of a course document.
type Lesson struct {
	Number  int
	Title   string
	Link    string
	Content string
}

// TokenCounter measures text length in model tokens.
type TokenCounter interface {
	Count(text string) int
}

// Processor parses and chunks course documents.
type Processor struct {
	chunkSize    int
	chunkOverlap int
	counter      TokenCounter
}

// NewProcessor builds a Processor. Non-positive sizes fall back to the
// defaults; overlap is clamped below the chunk size.
func NewProcessor(chunkSize, chunkOverlap int, counter TokenCounter) *Processor {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkOverlap < 0 {
		chunkOverlap = DefaultChunkOverlap
	}
	if chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 4
	}
	if counter == nil {
		counter = ApproxCounter{}
	}
	return &Processor{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		counter:      counter,
	}
}

// ProcessFile reads one course document and returns its catalog entry and
// content chunks. Plain-text files use the course script format; PDFs are
// flattened to text first and fall back to the file name as the title.
func (p *Processor) ProcessFile(path string) (store.CourseMeta, []store.Chunk, error) {
	var text string

	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		extracted, err := ExtractPDFText(path)
		if err != nil {
			return store.CourseMeta{}, nil, fmt.Errorf("failed to extract %s: %w", path, err)
		}
		text = extracted
	default:
		raw, err := os.ReadFile(path)
		if err != nil {
			return store.CourseMeta{}, nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		text = string(raw)
	}

	fallback := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	course := p.Parse(fallback, text)

	meta := store.CourseMeta{
		Title:       course.Title,
		Link:        course.Link,
		Instructor:  course.Instructor,
		LessonCount: len(course.Lessons),
	}
	return meta, p.Chunk(course), nil
}

var lessonHeaderRe = regexp.MustCompile(`^Lesson\s+(\d+):\s*(.*)$`)

// Parse reads the course script format:
//
//	Course Title: <title>
//	Course Link: <url>
//	Course Instructor: <name>
//
//	Lesson 0: Introduction
//	Lesson Link: <url>
//	<content...>
//
// Header lines are optional; a missing title falls back to fallbackTitle.
// Content before the first lesson marker becomes the preamble.
func (p *Processor) Parse(fallbackTitle, text string) *Course {
	course := &Course{Title: fallbackTitle}

	lines := strings.Split(text, "\n")
	i := 0

	// Course headers appear before any content.
	for ; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "Course Title:"):
			course.Title = strings.TrimSpace(strings.TrimPrefix(line, "Course Title:"))
			continue
		case strings.HasPrefix(line, "Course Link:"):
			course.Link = strings.TrimSpace(strings.TrimPrefix(line, "Course Link:"))
			continue
		case strings.HasPrefix(line, "Course Instructor:"):
			course.Instructor = strings.TrimSpace(strings.TrimPrefix(line, "Course Instructor:"))
			continue
		}
		break
	}

	var current *Lesson
	var buf []string

	flush := func() {
		content := strings.TrimSpace(strings.Join(buf, "\n"))
		if current != nil {
			current.Content = content
			course.Lessons = append(course.Lessons, *current)
		} else {
			course.Preamble = content
		}
		buf = nil
	}

	for ; i < len(lines); i++ {
		line := lines[i]
		trimmed := strings.TrimSpace(line)

		if m := lessonHeaderRe.FindStringSubmatch(trimmed); m != nil {
			flush()
			number, _ := strconv.Atoi(m[1])
			current = &Lesson{Number: number, Title: strings.TrimSpace(m[2])}
			continue
		}

		if current != nil && current.Content == "" && len(buf) == 0 &&
			strings.HasPrefix(trimmed, "Lesson Link:") {
			current.Link = strings.TrimSpace(strings.TrimPrefix(trimmed, "Lesson Link:"))
			continue
		}

		buf = append(buf, line)
	}
	flush()

	return course
}

// Chunk splits a parsed course into store chunks with sequential indexes.
// The first chunk of each lesson is prefixed with the course and lesson so
// it stays self-describing when retrieved in isolation; preamble chunks
// carry no lesson number.
func (p *Processor) Chunk(course *Course) []store.Chunk {
	var chunks []store.Chunk
	index := 0

	add := func(content string, lesson *int) {
		chunks = append(chunks, store.Chunk{
			Content:      content,
			CourseTitle:  course.Title,
			LessonNumber: lesson,
			ChunkIndex:   index,
		})
		index++
	}

	for _, part := range p.ChunkText(course.Preamble) {
		add(part, nil)
	}

	for _, lesson := range course.Lessons {
		number := lesson.Number
		for j, part := range p.ChunkText(lesson.Content) {
			if j == 0 {
				part = fmt.Sprintf("Course %s Lesson %d content: %s", course.Title, number, part)
			}
			add(part, &number)
		}
	}

	return chunks
}

// ChunkText splits text into sentence-aligned chunks of at most chunkSize
// tokens, carrying up to chunkOverlap tokens of trailing sentences into
// the next chunk for context continuity. Sentences larger than the budget
// become their own chunk rather than being split mid-sentence.
func (p *Processor) ChunkText(text string) []string {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []string
	var current []string
	currentTokens := 0

	emit := func() {
		if len(current) == 0 {
			return
		}
		chunks = append(chunks, strings.Join(current, " "))

		// Seed the next chunk with trailing sentences inside the
		// overlap budget.
		var carry []string
		carryTokens := 0
		for k := len(current) - 1; k >= 0; k-- {
			t := p.counter.Count(current[k])
			if carryTokens+t > p.chunkOverlap {
				break
			}
			carry = append([]string{current[k]}, carry...)
			carryTokens += t
		}
		current = carry
		currentTokens = carryTokens
	}

	for _, sentence := range sentences {
		tokens := p.counter.Count(sentence)
		if currentTokens+tokens > p.chunkSize && len(current) > 0 {
			emit()
		}
		current = append(current, sentence)
		currentTokens += tokens
	}

	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}
	return chunks
}

// splitSentences breaks text on terminal punctuation followed by
// whitespace, collapsing internal whitespace runs.
func splitSentences(text string) []string {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return nil
	}

	var sentences []string
	start := 0
	runes := []rune(text)

	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '.', '!', '?':
			end := i + 1
			for end < len(runes) && (runes[end] == '.' || runes[end] == '!' || runes[end] == '?') {
				end++
			}
			if end >= len(runes) || runes[end] == ' ' {
				sentence := strings.TrimSpace(string(runes[start:end]))
				if sentence != "" {
					sentences = append(sentences, sentence)
				}
				start = end
				i = end
			}
		}
	}

	if tail := strings.TrimSpace(string(runes[start:])); tail != "" {
		sentences = append(sentences, tail)
	}
	return sentences
}
