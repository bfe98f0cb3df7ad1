// Package suggest turns raw user input into ranked next-word suggestions.
//
// It splits input into context and in-progress prefix, trims the context to
// the predictor's window and memoizes results in a bounded LRU cache. It
// never mutates the store behind the predictor.
package suggest

import "github.com/bastiangx/nextword/pkg/predict"

// Predictor is the back-off model the facade wraps.
type Predictor interface {
	Predict(context []string, prefix string, limit int) []predict.Candidate
}

// ISuggester defines the interface served to the IPC and CLI front ends
type ISuggester interface {
	// Suggest returns at most limit ranked suggestions for the raw input text
	Suggest(text string, limit int) []Suggestion

	// Stats returns cache statistics
	Stats() CacheStats
}
