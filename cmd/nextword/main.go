// Copyright 2025 The NextWord Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the next-word prediction server, its debug CLI and
the offline dataset builder.

NextWord predicts the word a user is most likely to type next from the text
typed so far. Predictions come from bigram and trigram frequency tables with
hierarchical back-off: trigram evidence is combined with discounted bigram
evidence, and when neither knows the context the most frequent words are
suggested instead. Scores in every answer sum to 1.

# Usage

Start the IPC server with the configured dataset:

	nextword serve

Use a specific dataset and enable debug logging:

	nextword serve --dataset /path/to/ngrams.msgpack --debug

Try predictions interactively:

	nextword cli --limit 10

Count a corpus into a dataset, one sentence per line:

	nextword build --out data/ngrams.json corpus/*.txt

# Datasets

A dataset holds two tables keyed by space-separated n-grams:

	{"bigrams": {"ny fiainana": 120, ...}, "trigrams": {"ny dia mandroso": 3, ...}}

The format follows the file extension: .json, .msgpack or .mpk, .yaml or
.yml. A missing or unreadable dataset is not fatal: the server starts with
empty tables and answers every request with no suggestions.

# Configuration

Runtime configuration lives in a TOML file created with defaults on first
run, in the user config directory unless --config says otherwise:

	[server]
	default_limit = 6
	max_limit = 64
	max_text_len = 512

	[model]
	dataset = "data/ngrams.json"
	bigram_weight = 0.6
	unigram_weight = 0.4

	[cache]
	capacity = 4096

	[admin]
	addr = "127.0.0.1:9464"

# IPC Protocol

The server reads MessagePack maps from stdin and writes one map per request
to stdout. Logs always go to stderr.

	{"id": "r1", "t": "ny dia ", "l": 6}
	{"id": "r1", "s": [{"w": "mandroso", "s": 0.74}, {"w": "tonga", "s": 0.26}], "c": 2, "t": 38}

A trailing space predicts the next word; without it the last word is
completed. See package server for control actions and error codes.

# Admin

When [admin] addr is set the server also listens on HTTP for /healthz,
/readyz and /metrics. Readiness fails while the dataset is empty.
*/
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

const (
	Version = "0.1.0-beta"
	AppName = "nextword"
	gh      = "https://github.com/bastiangx/nextword"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
