// Package tokenizer counts the BPE tokens a language model would see for a text.
package tokenizer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is the encoding used by recent OpenAI chat models.
const DefaultEncoding = "cl100k_base"

type Counter struct {
	encoding string
	bpe      *tiktoken.Tiktoken
}

// NewCounter loads the named tiktoken encoding. The BPE ranks are fetched
// once and cached under TIKTOKEN_CACHE_DIR when it is set.
func NewCounter(encoding string) (*Counter, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}

	bpe, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to get tiktoken encoding %q: %w", encoding, err)
	}

	return &Counter{
		encoding: encoding,
		bpe:      bpe,
	}, nil
}

// Count returns the number of BPE tokens in text. Special-token markers are
// encoded as ordinary text.
func (c *Counter) Count(text string) int {
	return len(c.bpe.EncodeOrdinary(text))
}

// Describe renders the count the way file headers show it.
func (c *Counter) Describe(text string) string {
	return fmt.Sprintf("%d BPE tokens (%s)", c.Count(text), c.encoding)
}
