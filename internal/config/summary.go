package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/precompute/internal/ir"
)

// Summary holds per-class instance counts of the object store.
// A class count includes instances of its subclasses.
type Summary struct {
	Classes map[string]int64 `yaml:"classes"`
}

// LoadSummary reads a summary statistics file.
func LoadSummary(path string) (*Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ir.Error{Kind: ir.KindConfig, Code: ir.ErrCodeConfigUnreadable,
			Message: fmt.Sprintf("cannot read summary %s", path), Err: err}
	}
	defer f.Close()

	var s Summary
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return nil, &ir.Error{Kind: ir.KindConfig, Code: ir.ErrCodeConfigUnreadable,
			Message: fmt.Sprintf("cannot parse summary %s", path), Err: err}
	}
	if s.Classes == nil {
		s.Classes = map[string]int64{}
	}
	return &s, nil
}

// Write encodes the summary as YAML.
func (s *Summary) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return err
	}
	return enc.Close()
}

// Summarize folds exact per-class counts into inclusive counts: each
// class's count plus the counts of all its subclasses. Every model class
// gets an entry, zero when it has no instances.
func Summarize(m *ir.Model, exact map[string]int64) *Summary {
	s := &Summary{Classes: make(map[string]int64, len(m.Classes))}
	for _, cls := range m.ClassNames() {
		n := exact[cls]
		for _, sub := range m.Subclasses(cls) {
			n += exact[sub]
		}
		s.Classes[cls] = n
	}
	return s
}
