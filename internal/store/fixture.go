package store

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// Fixture is a YAML object graph:
//
//	objects:
//	  - id: 1
//	    class: Department
//	  - id: 2
//	    class: Employee
//	    refs:
//	      department: [1]
type Fixture struct {
	Objects []FixtureObject `yaml:"objects"`
}

// FixtureObject is one object and its outgoing relation values.
type FixtureObject struct {
	ID    int64              `yaml:"id"`
	Class string             `yaml:"class"`
	Refs  map[string][]int64 `yaml:"refs,omitempty"`
}

// ParseFixture decodes a fixture from r.
func ParseFixture(r io.Reader) (*Fixture, error) {
	var f Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	return &f, nil
}

// LoadFixtureFile reads a fixture file and loads it.
func (s *Store) LoadFixtureFile(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open fixture: %w", err)
	}
	defer f.Close()

	fx, err := ParseFixture(f)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	return s.LoadFixture(ctx, fx)
}

// LoadFixture inserts every object, then every relation value, in one
// transaction. Returns the number of objects inserted.
func (s *Store) LoadFixture(ctx context.Context, fx *Fixture) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	insertObject := s.rebind(`INSERT INTO objects (id, class) VALUES (?, ?)`)
	for _, obj := range fx.Objects {
		if obj.Class == "" {
			return 0, fmt.Errorf("object %d has no class", obj.ID)
		}
		if _, err := tx.ExecContext(ctx, insertObject, obj.ID, obj.Class); err != nil {
			return 0, fmt.Errorf("insert object %d: %w", obj.ID, err)
		}
	}

	insertRef := s.rebind(`INSERT INTO refs (source_id, field, target_id) VALUES (?, ?, ?)`)
	for _, obj := range fx.Objects {
		// map order is random; sort for reproducible error messages
		fields := make([]string, 0, len(obj.Refs))
		for field := range obj.Refs {
			fields = append(fields, field)
		}
		slices.Sort(fields)

		for _, field := range fields {
			for _, target := range obj.Refs[field] {
				if _, err := tx.ExecContext(ctx, insertRef, obj.ID, field, target); err != nil {
					return 0, fmt.Errorf("insert ref %d.%s -> %d: %w", obj.ID, field, target, err)
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(fx.Objects), nil
}

// ClassCounts returns the number of objects of each concrete class.
func (s *Store) ClassCounts(ctx context.Context) (map[string]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT class, COUNT(*) FROM objects GROUP BY class ORDER BY class ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query class counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var (
			class string
			n     int64
		)
		if err := rows.Scan(&class, &n); err != nil {
			return nil, fmt.Errorf("scan class counts: %w", err)
		}
		counts[class] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate class counts: %w", err)
	}
	return counts, nil
}
