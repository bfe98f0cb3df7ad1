package suggest

import (
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/bastiangx/nextword/internal/observe"
	"github.com/bastiangx/nextword/pkg/tokenize"
)

// contextWindow is the number of preceding tokens the trigram level can use.
const contextWindow = 2

// Suggestion is one ranked next word.
type Suggestion struct {
	Word  string  `json:"word"`
	Score float64 `json:"score"`
}

// Option configures a Service.
type Option func(*Service)

// WithCapacity sets the cache capacity.
func WithCapacity(n int) Option {
	return func(s *Service) {
		s.cache = NewCache(n)
	}
}

// WithMetrics records cache and prediction metrics into m.
func WithMetrics(m *observe.Metrics) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// Service is the memoizing facade in front of a Predictor.
type Service struct {
	predictor Predictor
	cache     *Cache
	metrics   *observe.Metrics
}

// New creates a Service around p.
func New(p Predictor, opts ...Option) *Service {
	s := &Service{
		predictor: p,
		cache:     NewCache(DefaultCapacity),
		metrics:   observe.Noop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Split separates raw input into context tokens and the in-progress prefix.
// Input that is empty or ends in whitespace has no prefix: the user already
// finished the last word.
func Split(text string) (context []string, prefix string) {
	tokens := tokenize.Tokenize(text)
	if text == "" || len(tokens) == 0 {
		return tokens, ""
	}
	if last, _ := utf8.DecodeLastRuneInString(text); unicode.IsSpace(last) {
		return tokens, ""
	}
	return tokens[:len(tokens)-1], tokens[len(tokens)-1]
}

// Suggest returns ranked suggestions for text, memoized by (text, limit).
// The returned slice belongs to the caller.
func (s *Service) Suggest(text string, limit int) []Suggestion {
	key := Key{Text: text, Limit: limit}
	if cached, ok := s.cache.Get(key); ok {
		s.metrics.RecordHit()
		return clone(cached)
	}

	context, prefix := Split(text)
	if len(context) > contextWindow {
		context = context[len(context)-contextWindow:]
	}

	start := time.Now()
	candidates := s.predictor.Predict(context, prefix, limit)
	s.metrics.RecordMiss(time.Since(start), len(candidates))

	results := make([]Suggestion, len(candidates))
	for i, c := range candidates {
		results[i] = Suggestion{Word: c.Word, Score: c.Score}
	}

	added, evicted := s.cache.Add(key, results)
	s.metrics.RecordStore(added, evicted)
	return clone(results)
}

// Stats returns cache statistics.
func (s *Service) Stats() CacheStats {
	return s.cache.Stats()
}

// Purge empties the cache and returns how many entries were dropped.
func (s *Service) Purge() int {
	n := s.cache.Purge()
	s.metrics.RecordPurge(n)
	return n
}

func clone(in []Suggestion) []Suggestion {
	out := make([]Suggestion, len(in))
	copy(out, in)
	return out
}
