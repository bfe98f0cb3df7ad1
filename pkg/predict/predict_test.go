package predict

import (
	"fmt"
	"testing"

	"github.com/bastiangx/nextword/pkg/ngram"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tolerance = 1e-9

func newPredictor(bigrams, trigrams map[string]int, opts ...Option) *Predictor {
	return New(ngram.FromDataset(&ngram.Dataset{Bigrams: bigrams, Trigrams: trigrams}), opts...)
}

func words(cs []Candidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Word
	}
	return out
}

func sum(cs []Candidate) float64 {
	total := 0.0
	for _, c := range cs {
		total += c.Score
	}
	return total
}

func TestTrigramAndBigramEvidenceCombine(t *testing.T) {
	p := newPredictor(
		map[string]int{"dia mandroso": 2, "dia tonga": 5},
		map[string]int{"ny dia mandroso": 3},
	)

	got := p.Predict([]string{"ny", "dia"}, "", 5)
	require.Len(t, got, 2)
	assert.Equal(t, []string{"mandroso", "tonga"}, words(got))

	mandroso := 1.0 + 0.6*2.0/7.0
	tonga := 0.6 * 5.0 / 7.0
	assert.InDelta(t, mandroso/(mandroso+tonga), got[0].Score, tolerance)
	assert.InDelta(t, tonga/(mandroso+tonga), got[1].Score, tolerance)
	assert.InDelta(t, 1.0, sum(got), tolerance)
}

func TestPrefixFilterOnUnigramFallback(t *testing.T) {
	p := newPredictor(map[string]int{"a tsara": 10, "b teny": 4}, nil)

	got := p.Predict(nil, "te", 6)
	require.Len(t, got, 1)
	assert.Equal(t, "teny", got[0].Word)
	assert.InDelta(t, 1.0, got[0].Score, tolerance)
}

func TestEmptyContextUsesUnigrams(t *testing.T) {
	p := newPredictor(map[string]int{"a tsara": 10, "b teny": 4}, nil)

	got := p.Predict([]string{}, "", 6)
	require.Len(t, got, 2)
	assert.Equal(t, []string{"tsara", "teny"}, words(got))
	assert.InDelta(t, 10.0/14.0, got[0].Score, tolerance)
	assert.InDelta(t, 4.0/14.0, got[1].Score, tolerance)
}

func TestUnigramFallbackOnlyWhenHigherLevelsEmpty(t *testing.T) {
	p := newPredictor(map[string]int{"dia tonga": 5, "a teny": 40}, nil)

	// bigram level has "tonga"; the frequent unigram "teny" must not leak in
	got := p.Predict([]string{"dia"}, "t", 6)
	assert.Equal(t, []string{"tonga"}, words(got))

	// unknown context falls through to unigrams
	got = p.Predict([]string{"tsy", "fantatra"}, "t", 6)
	assert.Equal(t, []string{"teny", "tonga"}, words(got))
}

func TestOnlyLastTwoTokensConsulted(t *testing.T) {
	p := newPredictor(
		map[string]int{"dia tonga": 1},
		map[string]int{"ny dia mandroso": 1},
	)
	short := p.Predict([]string{"ny", "dia"}, "", 6)
	long := p.Predict([]string{"izy", "sy", "ny", "dia"}, "", 6)
	assert.Equal(t, short, long)
}

func TestLimitHandling(t *testing.T) {
	p := newPredictor(map[string]int{"x a": 3, "x b": 2, "x c": 1}, nil)

	for _, limit := range []int{0, -1, -100} {
		t.Run(fmt.Sprintf("limit_%d", limit), func(t *testing.T) {
			got := p.Predict([]string{"x"}, "", limit)
			assert.NotNil(t, got)
			assert.Empty(t, got)
		})
	}

	t.Run("truncate_and_renormalize", func(t *testing.T) {
		got := p.Predict([]string{"x"}, "", 2)
		require.Len(t, got, 2)
		assert.Equal(t, []string{"a", "b"}, words(got))
		assert.InDelta(t, 0.6, got[0].Score, tolerance)
		assert.InDelta(t, 0.4, got[1].Score, tolerance)
	})

	t.Run("single", func(t *testing.T) {
		got := p.Predict([]string{"x"}, "", 1)
		require.Len(t, got, 1)
		assert.InDelta(t, 1.0, got[0].Score, tolerance)
	})
}

func TestNoMatchingPrefix(t *testing.T) {
	p := newPredictor(map[string]int{"x a": 3}, map[string]int{"w x a": 1})
	assert.Empty(t, p.Predict([]string{"w", "x"}, "zz", 6))
	assert.Empty(t, p.Predict(nil, "zz", 6))
}

func TestTiesAreLexicographic(t *testing.T) {
	p := newPredictor(map[string]int{"x delta": 1, "x alpha": 1, "x charlie": 1, "x bravo": 1}, nil)

	for i := 0; i < 20; i++ {
		got := p.Predict([]string{"x"}, "", 3)
		require.Equal(t, []string{"alpha", "bravo", "charlie"}, words(got))
	}
}

func TestZeroScoresUseUnitDivisor(t *testing.T) {
	p := newPredictor(map[string]int{"x y": 0, "x z": 2}, nil)

	got := p.Predict([]string{"x"}, "y", 6)
	require.Len(t, got, 1)
	assert.Equal(t, "y", got[0].Word)
	assert.Zero(t, got[0].Score)
}

func TestZeroCountUnigramsStillRank(t *testing.T) {
	p := newPredictor(map[string]int{"a b": 0, "a c": 0}, nil)

	got := p.Predict(nil, "", 5)
	require.Len(t, got, 2)
	assert.Equal(t, []string{"b", "c"}, words(got))
	for _, c := range got {
		assert.Zero(t, c.Score)
	}
}

func TestEmptyStore(t *testing.T) {
	p := New(ngram.FromDataset(nil))
	assert.Empty(t, p.Predict(nil, "", 6))
	assert.Empty(t, p.Predict([]string{"ny", "dia"}, "m", 6))
}

func TestWeightOptions(t *testing.T) {
	p := newPredictor(
		map[string]int{"dia tonga": 1},
		map[string]int{"ny dia mandroso": 1},
		WithBigramWeight(2.0),
	)
	got := p.Predict([]string{"ny", "dia"}, "", 6)
	assert.Equal(t, []string{"tonga", "mandroso"}, words(got))
	assert.InDelta(t, 2.0/3.0, got[0].Score, tolerance)

	q := newPredictor(map[string]int{"a tsara": 1}, nil, WithUnigramWeight(0.1))
	got = q.Predict(nil, "", 6)
	require.Len(t, got, 1)
	assert.InDelta(t, 1.0, got[0].Score, tolerance)
}

func TestScoresSumToOne(t *testing.T) {
	p := newPredictor(
		map[string]int{"ny dia": 4, "dia mandroso": 2, "dia tonga": 5, "dia ho": 7, "ho an": 3},
		map[string]int{"ny dia mandroso": 3, "ny dia ho": 1, "dia ho an": 2},
	)
	contexts := [][]string{nil, {"ny"}, {"dia"}, {"ny", "dia"}, {"dia", "ho"}}
	for _, ctx := range contexts {
		for limit := 1; limit <= 6; limit++ {
			got := p.Predict(ctx, "", limit)
			assert.LessOrEqual(t, len(got), limit)
			if len(got) > 0 {
				assert.InDelta(t, 1.0, sum(got), tolerance, "context %v limit %d", ctx, limit)
			}
		}
	}
}
