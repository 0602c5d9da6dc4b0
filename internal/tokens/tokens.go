// Package tokens counts model tokens with a BPE encoding and memoizes counts
// by content hash.
package tokens

import (
	"fmt"
	"unicode/utf8"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

// memoSize bounds the number of remembered counts.
const memoSize = 4096

func init() {
	// Encodings ship with the binary; nothing is downloaded at runtime.
	tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
}

// Counter counts tokens for one encoding. It is safe for concurrent use.
type Counter struct {
	encoding string
	enc      *tiktoken.Tiktoken
	memo     *lru.Cache[string, int]
}

// New loads the named encoding. An unknown name is an error.
func New(encoding string) (*Counter, error) {
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("unknown tokenizer encoding %q: %w", encoding, err)
	}
	memo, err := lru.New[string, int](memoSize)
	if err != nil {
		return nil, err
	}
	return &Counter{encoding: encoding, enc: enc, memo: memo}, nil
}

// Encoding returns the encoding name.
func (c *Counter) Encoding() string {
	return c.encoding
}

// Count returns the token count of text. When key is non-empty the result is
// memoized under it, so identical files are only encoded once.
func (c *Counter) Count(text, key string) int {
	if key != "" {
		if n, ok := c.memo.Get(key); ok {
			return n
		}
	}
	n := c.encode(text)
	if key != "" {
		c.memo.Add(key, n)
	}
	return n
}

// encode falls back to a quarter of the rune count if the encoder fails.
func (c *Counter) encode(text string) (n int) {
	defer func() {
		if r := recover(); r != nil {
			n = Estimate(text)
		}
	}()
	return len(c.enc.Encode(text, nil, nil))
}

// Estimate approximates a token count as one token per four characters.
func Estimate(text string) int {
	return utf8.RuneCountInString(text) / 4
}
