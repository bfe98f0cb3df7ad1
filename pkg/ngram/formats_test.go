package ngram

import (
	"bytes"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
)

func TestDetectFormat(t *testing.T) {
	testCases := []struct {
		filename string
		expected FileFormat
	}{
		{"ngrams.json", FormatJSON},
		{"data/NGRAMS.JSON", FormatJSON},
		{"ngrams.msgpack", FormatMsgpack},
		{"ngrams.mpk", FormatMsgpack},
		{"fixture.yaml", FormatYAML},
		{"fixture.yml", FormatYAML},
	}
	for _, tc := range testCases {
		got, err := DetectFormat(tc.filename)
		if err != nil || got != tc.expected {
			t.Errorf("DetectFormat(%q) = %v, %v; want %v", tc.filename, got, err, tc.expected)
		}
	}

	if _, err := DetectFormat("ngrams.txt"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestFileRoundTripPerFormat(t *testing.T) {
	ds := &Dataset{
		Bigrams:  map[string]int{"ny dia": 4, "dia tonga": 5},
		Trigrams: map[string]int{"ny dia tonga": 2},
	}
	dir := t.TempDir()

	for _, name := range []string{"ngrams.json", "ngrams.msgpack", "ngrams.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := WriteFile(path, ds); err != nil {
				t.Fatalf("WriteFile: %v", err)
			}
			got, err := ReadFile(path)
			if err != nil {
				t.Fatalf("ReadFile: %v", err)
			}
			if !reflect.DeepEqual(got, ds) {
				t.Errorf("got %+v, want %+v", got, ds)
			}
		})
	}
}

func TestDecodeMissingTables(t *testing.T) {
	ds, err := Decode(bytes.NewBufferString(`{"bigrams": {"a b": 1}}`), FormatJSON)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if ds.Trigrams == nil || len(ds.Trigrams) != 0 {
		t.Errorf("missing trigram table should decode as empty, got %v", ds.Trigrams)
	}
}

func TestDecodeUnknownFormat(t *testing.T) {
	if _, err := Decode(bytes.NewBuffer(nil), FormatUnknown); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}
