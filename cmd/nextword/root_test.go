package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bastiangx/nextword/pkg/ngram"
	"github.com/bastiangx/nextword/pkg/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

const corpus = "Ny dia mandroso\nny dia tonga\nny dia mandroso\n"

type fixture struct {
	dir    string
	config string
	corpus string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	f := fixture{
		dir:    dir,
		config: filepath.Join(dir, "config.toml"),
		corpus: filepath.Join(dir, "corpus.txt"),
	}
	require.NoError(t, os.WriteFile(f.config, []byte("[server]\ndefault_limit = 4\n"), 0644))
	require.NoError(t, os.WriteFile(f.corpus, []byte(corpus), 0644))
	return f
}

func execute(t *testing.T, in []byte, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(bytes.NewReader(in))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestBuildWritesDataset(t *testing.T) {
	f := newFixture(t)
	out := filepath.Join(f.dir, "ngrams.msgpack")

	_, stderr, err := execute(t, nil, "build", "--config", f.config, "--out", out, f.corpus)
	require.NoError(t, err)
	assert.Contains(t, stderr, "3 sentences")

	ds, err := ngram.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, 3, ds.Bigrams["ny dia"])
	assert.Equal(t, 2, ds.Trigrams["ny dia mandroso"])
}

func TestBuildRejectsUnknownFormat(t *testing.T) {
	f := newFixture(t)
	_, _, err := execute(t, nil, "build", "--config", f.config, "--out", filepath.Join(f.dir, "out.csv"), f.corpus)
	assert.Error(t, err)
}

func TestBuildRequiresCorpus(t *testing.T) {
	_, _, err := execute(t, nil, "build")
	assert.Error(t, err)
}

func TestServeAnswersRequests(t *testing.T) {
	f := newFixture(t)
	dataset := filepath.Join(f.dir, "ngrams.json")
	_, _, err := execute(t, nil, "build", "--config", f.config, "--out", dataset, f.corpus)
	require.NoError(t, err)

	var in bytes.Buffer
	enc := msgpack.NewEncoder(&in)
	require.NoError(t, enc.Encode(map[string]any{"id": "r1", "t": "ny dia "}))
	require.NoError(t, enc.Encode(map[string]any{"id": "s1", "action": "stats"}))

	stdout, stderr, err := execute(t, in.Bytes(), "serve", "--config", f.config, "--dataset", dataset)
	require.NoError(t, err)
	assert.Contains(t, stderr, "status: ready")

	dec := msgpack.NewDecoder(strings.NewReader(stdout))
	var ready server.StatusResponse
	require.NoError(t, dec.Decode(&ready))
	assert.Equal(t, "ready", ready.Status)

	var resp server.SuggestResponse
	require.NoError(t, dec.Decode(&resp))
	assert.Equal(t, "r1", resp.ID)
	require.Equal(t, 2, resp.Count)
	assert.Equal(t, "mandroso", resp.Suggestions[0].Word)
	assert.Equal(t, "tonga", resp.Suggestions[1].Word)

	var stats server.StatsResponse
	require.NoError(t, dec.Decode(&stats))
	require.NotNil(t, stats.Store)
	assert.Equal(t, dataset, stats.Store.Source)
	assert.Equal(t, int64(1), stats.Cache.Misses)
}

func TestServeWithMissingDatasetStillRuns(t *testing.T) {
	f := newFixture(t)

	var in bytes.Buffer
	require.NoError(t, msgpack.NewEncoder(&in).Encode(map[string]any{"id": "r1", "t": "ny "}))

	stdout, _, err := execute(t, in.Bytes(), "serve", "--config", f.config, "--dataset", filepath.Join(f.dir, "missing.json"))
	require.NoError(t, err)

	dec := msgpack.NewDecoder(strings.NewReader(stdout))
	var ready server.StatusResponse
	require.NoError(t, dec.Decode(&ready))
	var resp server.SuggestResponse
	require.NoError(t, dec.Decode(&resp))
	assert.Equal(t, 0, resp.Count)
}

func TestServeStopsOnCancel(t *testing.T) {
	f := newFixture(t)
	a := newApp(&rootOptions{configPath: f.config}, filepath.Join(f.dir, "missing.json"), true)
	require.NotNil(t, a.provider)

	// stdin that never delivers a request nor closes
	in, feed := io.Pipe()
	t.Cleanup(func() { feed.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	var out, errOut bytes.Buffer
	go func() { done <- runServe(ctx, a, in, &out, &errOut) }()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
	assert.Error(t, a.provider.MeterProvider.Shutdown(context.Background()), "meter provider should already be shut down")
}

func TestCliUsesConfigLimit(t *testing.T) {
	f := newFixture(t)
	dataset := filepath.Join(f.dir, "ngrams.yaml")
	_, _, err := execute(t, nil, "build", "--config", f.config, "--out", dataset, f.corpus)
	require.NoError(t, err)

	stdout, _, err := execute(t, []byte("ny dia \n:limit\n"), "cli", "--config", f.config, "--dataset", dataset)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Found 2 suggestions")
	assert.Contains(t, stdout, "limit is 6")
}

func TestVersion(t *testing.T) {
	_, stderr, err := execute(t, nil, "version")
	require.NoError(t, err)
	assert.Contains(t, stderr, Version)
}
