package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/precompute/internal/ir"
)

// Key prefixes.
const (
	PrefixQuery          = "precompute.query."
	PrefixConstructQuery = "precompute.constructquery."
	PrefixTestQuery      = "test.query."
)

// KeyKind is the family a properties key belongs to.
type KeyKind string

const (
	KindQuery          KeyKind = "query"
	KindConstructQuery KeyKind = "constructquery"
	KindTestQuery      KeyKind = "test"
)

// Properties is the flat key to value mapping of a precompute file.
type Properties map[string]string

// Entry is one classified property.
type Entry struct {
	Key   string
	Name  string // key with its prefix removed
	Kind  KeyKind
	Value string
}

// DefaultPropertiesFile returns the conventional properties path for a
// model: <dir>/<model>_precompute.yaml.
func DefaultPropertiesFile(dir, modelName string) string {
	return filepath.Join(dir, modelName+"_precompute.yaml")
}

// LoadProperties reads a properties file.
func LoadProperties(path string) (Properties, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &ir.Error{Kind: ir.KindConfig, Code: ir.ErrCodeConfigUnreadable,
				Message: fmt.Sprintf("cannot find %s", path), Err: err}
		}
		return nil, &ir.Error{Kind: ir.KindConfig, Code: ir.ErrCodeConfigUnreadable,
			Message: fmt.Sprintf("cannot read %s", path), Err: err}
	}
	defer f.Close()

	props, err := ParseProperties(f)
	if err != nil {
		return nil, &ir.Error{Kind: ir.KindConfig, Code: ir.ErrCodeConfigUnreadable,
			Message: fmt.Sprintf("exception while reading properties from %s", path), Err: err}
	}
	return props, nil
}

// ParseProperties decodes a YAML mapping of scalar values.
// An empty document yields empty properties.
func ParseProperties(r io.Reader) (Properties, error) {
	var raw map[string]string
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	props := make(Properties, len(raw))
	for k, v := range raw {
		props[k] = v
	}
	return props, nil
}

// Classify returns the family and bare name of key.
func Classify(key string) (KeyKind, string, error) {
	switch {
	case strings.HasPrefix(key, PrefixQuery):
		return KindQuery, strings.TrimPrefix(key, PrefixQuery), nil
	case strings.HasPrefix(key, PrefixConstructQuery):
		return KindConstructQuery, strings.TrimPrefix(key, PrefixConstructQuery), nil
	case strings.HasPrefix(key, PrefixTestQuery):
		return KindTestQuery, strings.TrimPrefix(key, PrefixTestQuery), nil
	default:
		e := ir.NewConfigError(ir.ErrCodeUnknownKey, "unrecognized property key")
		return "", "", e.WithKey(key)
	}
}

// Keys returns the property keys in ascending lexical order.
func (p Properties) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Entries classifies every property, in ascending key order.
// The first unrecognized key fails the whole set.
func (p Properties) Entries() ([]Entry, error) {
	var entries []Entry
	for _, key := range p.Keys() {
		kind, name, err := Classify(key)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Key: key, Name: name, Kind: kind, Value: p[key]})
	}
	return entries, nil
}

// Filter returns the entries of one family, in ascending key order.
func Filter(entries []Entry, kind KeyKind) []Entry {
	var out []Entry
	for _, e := range entries {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}
