package ngram

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// ErrUnknownFormat is returned when a dataset path has no recognised extension.
var ErrUnknownFormat = errors.New("unknown dataset format")

// Dataset is the serialized form of the frequency tables: bigram counts keyed
// by "w1 w2" and trigram counts keyed by "w1 w2 w3".
type Dataset struct {
	Bigrams  map[string]int `json:"bigrams" msgpack:"bigrams" yaml:"bigrams"`
	Trigrams map[string]int `json:"trigrams" msgpack:"trigrams" yaml:"trigrams"`
}

// FileFormat represents the supported dataset encodings
type FileFormat int

const (
	FormatUnknown FileFormat = iota
	FormatJSON               // what the offline corpus job writes
	FormatMsgpack            // compact binary
	FormatYAML               // hand-edited fixtures
)

// FormatInfo contains metadata about a dataset file format
type FormatInfo struct {
	Format      FileFormat
	Description string
	Extensions  []string
}

var supportedFormats = map[FileFormat]FormatInfo{
	FormatJSON: {
		Format:      FormatJSON,
		Description: "JSON n-gram tables",
		Extensions:  []string{".json"},
	},
	FormatMsgpack: {
		Format:      FormatMsgpack,
		Description: "MessagePack n-gram tables",
		Extensions:  []string{".msgpack", ".mpk"},
	},
	FormatYAML: {
		Format:      FormatYAML,
		Description: "YAML n-gram tables",
		Extensions:  []string{".yaml", ".yml"},
	},
}

func (f FileFormat) String() string {
	if info, ok := GetFormatInfo(f); ok {
		return info.Description
	}
	return "unknown"
}

// DetectFormat picks the dataset format from the file extension.
func DetectFormat(filename string) (FileFormat, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	for format, info := range supportedFormats {
		for _, e := range info.Extensions {
			if e == ext {
				return format, nil
			}
		}
	}
	return FormatUnknown, fmt.Errorf("%w: %s", ErrUnknownFormat, filename)
}

// GetFormatInfo returns information about a specific format
func GetFormatInfo(format FileFormat) (FormatInfo, bool) {
	info, exists := supportedFormats[format]
	return info, exists
}

// Decode reads a dataset in the given format. Missing tables decode as empty.
func Decode(r io.Reader, format FileFormat) (*Dataset, error) {
	ds := &Dataset{}
	var err error
	switch format {
	case FormatJSON:
		err = json.NewDecoder(r).Decode(ds)
	case FormatMsgpack:
		err = msgpack.NewDecoder(r).Decode(ds)
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(ds)
	default:
		return nil, ErrUnknownFormat
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s dataset: %w", format, err)
	}
	if ds.Bigrams == nil {
		ds.Bigrams = map[string]int{}
	}
	if ds.Trigrams == nil {
		ds.Trigrams = map[string]int{}
	}
	return ds, nil
}

// Encode writes a dataset in the given format.
func Encode(w io.Writer, format FileFormat, ds *Dataset) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(ds)
	case FormatMsgpack:
		enc := msgpack.NewEncoder(w)
		enc.SetSortMapKeys(true)
		return enc.Encode(ds)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(ds)
	}
	return ErrUnknownFormat
}

// ReadFile decodes the dataset at path, choosing the format by extension.
func ReadFile(path string) (*Dataset, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset %s: %w", path, err)
	}
	defer file.Close()

	ds, err := Decode(file, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	log.Debugf("Read dataset %s (%s): %d bigrams, %d trigrams", path, format, len(ds.Bigrams), len(ds.Trigrams))
	return ds, nil
}

// WriteFile encodes ds to path, choosing the format by extension.
func WriteFile(path string, ds *Dataset) error {
	format, err := DetectFormat(path)
	if err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create dataset %s: %w", path, err)
	}
	if err := Encode(file, format, ds); err != nil {
		file.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return file.Close()
}
