// Package predict ranks next-word candidates by hierarchical back-off over an
// ngram.Store.
//
// Evidence from the trigram and bigram levels is merged into one running
// score per word; the unigram level is consulted only when neither produced a
// candidate. Returned scores are rescaled to sum to 1.
package predict

import (
	"sort"
	"strings"

	"github.com/bastiangx/nextword/pkg/ngram"
)

const (
	// TrigramWeight is the undiscounted base level.
	TrigramWeight = 1.0
	// DefaultBigramWeight discounts bigram evidence.
	DefaultBigramWeight = 0.6
	// DefaultUnigramWeight discounts the frequency-only fallback.
	DefaultUnigramWeight = 0.4
)

// Candidate is one ranked continuation.
type Candidate struct {
	Word  string
	Score float64
}

// Option configures a Predictor.
type Option func(*Predictor)

// WithBigramWeight overrides the bigram back-off weight.
func WithBigramWeight(w float64) Option {
	return func(p *Predictor) {
		p.bigramWeight = w
	}
}

// WithUnigramWeight overrides the unigram fallback weight.
func WithUnigramWeight(w float64) Option {
	return func(p *Predictor) {
		p.unigramWeight = w
	}
}

// Predictor is stateless apart from its read-only Store and weights, so a
// single instance serves any number of goroutines.
type Predictor struct {
	store         *ngram.Store
	bigramWeight  float64
	unigramWeight float64
}

// New creates a Predictor reading from store.
func New(store *ngram.Store, opts ...Option) *Predictor {
	p := &Predictor{
		store:         store,
		bigramWeight:  DefaultBigramWeight,
		unigramWeight: DefaultUnigramWeight,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Store returns the Store the predictor reads from.
func (p *Predictor) Store() *ngram.Store {
	return p.store
}

// Predict returns at most limit continuations of context whose text starts
// with prefix. Only the last two context tokens are consulted. The result is
// empty, never nil, when limit <= 0 or nothing matches.
func (p *Predictor) Predict(context []string, prefix string, limit int) []Candidate {
	if limit <= 0 || p.store == nil {
		return []Candidate{}
	}

	scores := make(map[string]float64)

	if n := len(context); n >= 2 {
		counts, total := p.store.Trigram(context[n-2], context[n-1])
		accumulate(scores, counts, total, prefix, TrigramWeight)
	}

	if n := len(context); n >= 1 {
		counts, total := p.store.Bigram(context[n-1])
		accumulate(scores, counts, total, prefix, p.bigramWeight)
	}

	// unigrams whose counts are all zero still rank, with score 0
	if len(scores) == 0 {
		total := p.store.UnigramTotal()
		if total <= 0 {
			total = 1
		}
		p.store.VisitUnigrams(prefix, func(word string, count int) {
			scores[word] += p.unigramWeight * float64(count) / float64(total)
		})
	}

	return rank(scores, limit)
}

// accumulate adds weight * c/total for every continuation passing the prefix
// filter. A level without observations contributes nothing.
func accumulate(scores map[string]float64, counts ngram.Counts, total int, prefix string, weight float64) {
	if total <= 0 {
		return
	}
	for word, c := range counts {
		if prefix != "" && !strings.HasPrefix(word, prefix) {
			continue
		}
		scores[word] += weight * float64(c) / float64(total)
	}
}

// rank sorts by descending score, breaks ties on the word, truncates to
// limit and rescales the kept scores to sum to 1.
func rank(scores map[string]float64, limit int) []Candidate {
	ranked := make([]Candidate, 0, len(scores))
	for word, score := range scores {
		ranked = append(ranked, Candidate{Word: word, Score: score})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Word < ranked[j].Word
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	sum := 0.0
	for _, c := range ranked {
		sum += c.Score
	}
	if sum == 0 {
		sum = 1.0
	}
	for i := range ranked {
		ranked[i].Score /= sum
	}
	return ranked
}
