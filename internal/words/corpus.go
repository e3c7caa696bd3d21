package words

import (
	_ "embed"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"sync"
)

//go:embed words.txt
var defaultList string

// OfferSize is the number of candidates handed to a drawer.
const OfferSize = 3

// Corpus is an ordered word list. Offers are contiguous runs of the list
// starting at a random position and wrapping around the end.
type Corpus struct {
	words []string

	mu  sync.Mutex
	rnd *rand.Rand
}

func New(list []string, rnd *rand.Rand) *Corpus {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(rand.Int63()))
	}
	return &Corpus{words: list, rnd: rnd}
}

// Default returns the embedded corpus.
func Default() *Corpus {
	return New(Parse(defaultList), nil)
}

// Load reads a corpus file; an empty path yields the embedded corpus.
func Load(path string) (*Corpus, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read words file: %w", err)
	}
	list := Parse(string(b))
	if len(list) == 0 {
		return nil, fmt.Errorf("words file %s is empty", path)
	}
	return New(list, nil), nil
}

// Parse splits on commas and newlines and drops blanks.
func Parse(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == '\n' || r == '\r' })
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if w := strings.TrimSpace(f); w != "" {
			out = append(out, w)
		}
	}
	return out
}

func (c *Corpus) Len() int { return len(c.words) }

// Offer returns OfferSize consecutive words (modulo corpus size). The result
// repeats words when the corpus is smaller than OfferSize, and is empty for
// an empty corpus.
func (c *Corpus) Offer() []string {
	n := len(c.words)
	if n == 0 {
		return []string{}
	}
	c.mu.Lock()
	start := c.rnd.Intn(n)
	c.mu.Unlock()
	out := make([]string, OfferSize)
	for i := range out {
		out[i] = c.words[(start+i)%n]
	}
	return out
}
