// Package ngram owns the immutable n-gram frequency tables the predictor reads.
//
// A Store is built once, from a dataset file or an in-memory Dataset, and is
// never written to afterwards, so any number of goroutines may read it
// without locking. Loading fails open: a missing or malformed dataset yields
// an empty Store and prediction degrades to no suggestions.
package ngram

import (
	"github.com/bastiangx/nextword/pkg/tokenize"
	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// Counts maps a continuation word to the number of times it was observed.
// Maps handed out by a Store are shared and must be treated as read-only.
type Counts map[string]int

// Store holds the derived bigram, trigram and unigram indices.
type Store struct {
	bigrams       map[string]Counts // w1 -> {w2: count}
	trigrams      map[string]Counts // "w1 w2" -> {w3: count}
	bigramTotals  map[string]int
	trigramTotals map[string]int
	unigrams      Counts
	unigramTotal  int
	unigramTrie   *patricia.Trie
	source        string
}

// Stats describes the size of a loaded Store.
type Stats struct {
	Source          string `msgpack:"source" json:"source"`
	BigramContexts  int    `msgpack:"bigram_contexts" json:"bigram_contexts"`
	TrigramContexts int    `msgpack:"trigram_contexts" json:"trigram_contexts"`
	Unigrams        int    `msgpack:"unigrams" json:"unigrams"`
	UnigramTotal    int    `msgpack:"unigram_total" json:"unigram_total"`
}

// Load builds a Store from the dataset at path. It never fails: any read or
// decode error is logged and an empty Store is returned.
func Load(path string) *Store {
	ds, err := ReadFile(path)
	if err != nil {
		log.Warnf("Dataset unavailable, running with empty n-gram tables: %v", err)
		s := newStore()
		s.source = path
		return s
	}
	s := FromDataset(ds)
	s.source = path
	log.Debugf("Loaded n-gram store from %s: %d bigram contexts, %d trigram contexts, %d unigrams",
		path, len(s.bigrams), len(s.trigrams), len(s.unigrams))
	return s
}

// FromDataset builds a Store from in-memory tables. Keys are re-tokenized so
// that case and spacing differences collapse onto the same entry.
func FromDataset(ds *Dataset) *Store {
	s := newStore()
	if ds == nil {
		return s
	}

	skipped := 0
	for key, count := range ds.Bigrams {
		parts := tokenize.Tokenize(key)
		if len(parts) < 2 || count < 0 {
			skipped++
			continue
		}
		s.add(s.bigrams, s.bigramTotals, parts[0], tokenize.Join(parts[1:]...), count)
	}
	for key, count := range ds.Trigrams {
		parts := tokenize.Tokenize(key)
		if len(parts) < 3 || count < 0 {
			skipped++
			continue
		}
		s.add(s.trigrams, s.trigramTotals, tokenize.Join(parts[0], parts[1]), tokenize.Join(parts[2:]...), count)
	}
	if skipped > 0 {
		log.Debugf("Skipped %d malformed n-gram entries", skipped)
	}

	for word, count := range s.unigrams {
		s.unigramTrie.Insert(patricia.Prefix(word), count)
	}
	return s
}

func newStore() *Store {
	return &Store{
		bigrams:       make(map[string]Counts),
		trigrams:      make(map[string]Counts),
		bigramTotals:  make(map[string]int),
		trigramTotals: make(map[string]int),
		unigrams:      make(Counts),
		unigramTrie:   patricia.NewTrie(),
	}
}

// add records one continuation. A word's unigram count is the number of
// times it was seen as a continuation, never as a context.
func (s *Store) add(index map[string]Counts, totals map[string]int, ctx, next string, count int) {
	m, ok := index[ctx]
	if !ok {
		m = make(Counts)
		index[ctx] = m
	}
	m[next] += count
	totals[ctx] += count
	s.unigrams[next] += count
	s.unigramTotal += count
}

// Bigram returns the continuations observed after w1 and their total count.
func (s *Store) Bigram(w1 string) (Counts, int) {
	return s.bigrams[w1], s.bigramTotals[w1]
}

// Trigram returns the continuations observed after "w1 w2" and their total count.
func (s *Store) Trigram(w1, w2 string) (Counts, int) {
	key := tokenize.Join(w1, w2)
	return s.trigrams[key], s.trigramTotals[key]
}

// Unigram returns how often word was observed as a continuation.
func (s *Store) Unigram(word string) int {
	return s.unigrams[word]
}

// UnigramTotal is the sum of all unigram counts.
func (s *Store) UnigramTotal() int {
	return s.unigramTotal
}

// VisitUnigrams calls fn for every unigram starting with prefix, or for all
// unigrams when prefix is empty. Visiting order is unspecified.
func (s *Store) VisitUnigrams(prefix string, fn func(word string, count int)) {
	visitor := func(p patricia.Prefix, item patricia.Item) error {
		fn(string(p), item.(int))
		return nil
	}

	var err error
	if prefix == "" {
		err = s.unigramTrie.Visit(visitor)
	} else {
		err = s.unigramTrie.VisitSubtree(patricia.Prefix(prefix), visitor)
	}
	if err != nil {
		log.Errorf("Error visiting unigram trie: %v", err)
	}
}

// Empty reports whether no n-gram was loaded.
func (s *Store) Empty() bool {
	return len(s.unigrams) == 0
}

// Stats returns the size of each index.
func (s *Store) Stats() Stats {
	return Stats{
		Source:          s.source,
		BigramContexts:  len(s.bigrams),
		TrigramContexts: len(s.trigrams),
		Unigrams:        len(s.unigrams),
		UnigramTotal:    s.unigramTotal,
	}
}
