/*
Package server implements msgpack IPC for next-word prediction.

The server reads a stream of msgpack maps from stdin and writes one msgpack
map per request to stdout. Messages are processed synchronously in arrival
order and every response echoes the request ID.

# IPC

A suggestion request carries the raw text typed so far and an optional limit:

	{"id": "r1", "t": "ny di", "l": 6}

The server responds with scored suggestions, the count and the processing
time in microseconds:

	{"id": "r1", "s": [{"w": "dia", "s": 0.71}, {"w": "dimy", "s": 0.29}], "c": 2, "t": 145}

A trailing space marks the last word as finished, so "ny dia " predicts the
word after "dia" while "ny di" completes "di".

Control requests use the action field:

	{"id": "s1", "action": "stats"}
	{"id": "h1", "action": "health"}

# Limits

A missing limit selects the configured default. Limits above the configured
maximum are clamped, and a limit of zero or below yields an empty list.
Text longer than the configured maximum is rejected.

# Errors

Malformed fields are not errors: text that is not a string reads as empty
and a limit that is not an integer reads as zero, so both get an empty
suggestion list. Messages that are not a map, over-long text and unknown
actions get an ErrorResponse with code 400 and the server keeps reading.
Only a broken input stream stops it.
*/
package server

import (
	"github.com/bastiangx/nextword/pkg/ngram"
	"github.com/bastiangx/nextword/pkg/suggest"
)

// Control actions.
const (
	ActionStats  = "stats"
	ActionHealth = "health"
)

// Request is any message read from the client. Limit is a pointer so that a
// missing limit can be told apart from an explicit zero.
type Request struct {
	ID     string `msgpack:"id"`
	Text   string `msgpack:"t"`
	Limit  *int   `msgpack:"l,omitempty"`
	Action string `msgpack:"action,omitempty"`
}

// SuggestionItem - minimal suggestion entry
type SuggestionItem struct {
	Word  string  `msgpack:"w"`
	Score float64 `msgpack:"s"`
}

// SuggestResponse - suggestion response
type SuggestResponse struct {
	ID          string           `msgpack:"id"`
	Suggestions []SuggestionItem `msgpack:"s"`
	Count       int              `msgpack:"c"`
	TimeTaken   int64            `msgpack:"t"`
}

// StatsResponse reports cache and store statistics
type StatsResponse struct {
	ID       string             `msgpack:"id"`
	Cache    suggest.CacheStats `msgpack:"cache"`
	Store    *ngram.Stats       `msgpack:"store,omitempty"`
	Requests int64              `msgpack:"requests"`
}

// StatusResponse answers health checks and announces readiness
type StatusResponse struct {
	ID     string `msgpack:"id,omitempty"`
	Status string `msgpack:"status"`
}

// ErrorResponse holds basic error information for failed requests
type ErrorResponse struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}
