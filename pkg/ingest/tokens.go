package ingest

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is the BPE vocabulary used for token counting.
const DefaultEncoding = "cl100k_base"

// TiktokenCounter counts tokens with a real BPE tokenizer.
type TiktokenCounter struct {
	encoding *tiktoken.Tiktoken
}

// NewTiktokenCounter loads a tiktoken encoding. The vocabulary is fetched
// on first use, so this can fail offline; callers typically fall back to
// ApproxCounter.
func NewTiktokenCounter(encoding string) (*TiktokenCounter, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to load encoding %q: %w", encoding, err)
	}
	return &TiktokenCounter{encoding: enc}, nil
}

// Count returns the number of tokens in text.
func (c *TiktokenCounter) Count(text string) int {
	return len(c.encoding.Encode(text, nil, nil))
}

// ApproxCounter estimates tokens as characters/4, the usual rule of thumb
// for English text. Used when the real tokenizer is unavailable.
type ApproxCounter struct{}

// Count returns the estimated token count, at least 1 for non-empty text.
func (ApproxCounter) Count(text string) int {
	if text == "" {
		return 0
	}
	n := len(text) / 4
	if n == 0 {
		n = 1
	}
	return n
}

var (
	_ TokenCounter = (*TiktokenCounter)(nil)
	_ TokenCounter = ApproxCounter{}
)
