package ngram

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/bastiangx/nextword/pkg/tokenize"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

// maxLineSize bounds a single corpus line; the scanner default of 64K is too
// small for paragraph-per-line dumps.
const maxLineSize = 1 << 20

// Counter accumulates bigram and trigram counts from tokenized sentences.
// It is the offline counterpart of Store and shares its tokenizer.
// A Counter is not safe for concurrent use; count in parallel with separate
// Counters and Merge them.
type Counter struct {
	bigrams   map[string]int
	trigrams  map[string]int
	sentences int
}

// NewCounter creates an empty Counter.
func NewCounter() *Counter {
	return &Counter{
		bigrams:  make(map[string]int),
		trigrams: make(map[string]int),
	}
}

// AddSentence counts every adjacent pair and triple of tokens in line.
// n-grams never span two sentences.
func (c *Counter) AddSentence(line string) {
	words := tokenize.Tokenize(line)
	if len(words) == 0 {
		return
	}
	c.sentences++
	for i := 0; i+1 < len(words); i++ {
		c.bigrams[tokenize.Join(words[i], words[i+1])]++
		if i+2 < len(words) {
			c.trigrams[tokenize.Join(words[i], words[i+1], words[i+2])]++
		}
	}
}

// AddReader treats every line of r as one sentence.
func (c *Counter) AddReader(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		c.AddSentence(scanner.Text())
	}
	return scanner.Err()
}

// Merge adds all counts of other into c.
func (c *Counter) Merge(other *Counter) {
	for k, v := range other.bigrams {
		c.bigrams[k] += v
	}
	for k, v := range other.trigrams {
		c.trigrams[k] += v
	}
	c.sentences += other.sentences
}

// Sentences returns the number of non-empty sentences counted.
func (c *Counter) Sentences() int {
	return c.sentences
}

// Dataset returns the most frequent maxBigrams bigrams and maxTrigrams
// trigrams. A limit of 0 keeps every entry. Entries with equal counts are
// kept in key order so the output is reproducible.
func (c *Counter) Dataset(maxBigrams, maxTrigrams int) *Dataset {
	return &Dataset{
		Bigrams:  topN(c.bigrams, maxBigrams),
		Trigrams: topN(c.trigrams, maxTrigrams),
	}
}

func topN(counts map[string]int, n int) map[string]int {
	if n <= 0 || len(counts) <= n {
		out := make(map[string]int, len(counts))
		for k, v := range counts {
			out[k] = v
		}
		return out
	}

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})

	out := make(map[string]int, n)
	for _, k := range keys[:n] {
		out[k] = counts[k]
	}
	return out
}

// CountFiles counts every corpus file concurrently and merges the results.
// The first error cancels the remaining work.
func CountFiles(ctx context.Context, paths []string) (*Counter, error) {
	partial := make([]*Counter, len(paths))
	g, ctx := errgroup.WithContext(ctx)

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			file, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("failed to open corpus %s: %w", path, err)
			}
			defer file.Close()

			c := NewCounter()
			if err := c.AddReader(file); err != nil {
				return fmt.Errorf("failed to read corpus %s: %w", path, err)
			}
			log.Debugf("Counted %s: %d sentences", path, c.sentences)
			partial[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := NewCounter()
	for _, c := range partial {
		total.Merge(c)
	}
	return total, nil
}
