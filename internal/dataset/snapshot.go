package dataset

import (
	"fmt"
	"time"
)

// Snapshot is the read-only set of tables every analysis runs against.
type Snapshot struct {
	tables   map[Name]*Table
	loadedAt time.Time
}

// TableSummary describes one table of a snapshot.
type TableSummary struct {
	Name    Name     `json:"name"`
	Source  string   `json:"source"`
	Rows    int      `json:"rows"`
	Columns []string `json:"columns"`
}

// NewSnapshot groups tables by name. It does not require all seven tables;
// asking a snapshot for one it lacks fails with ErrTableNotLoaded.
func NewSnapshot(tables ...*Table) (*Snapshot, error) {
	s := &Snapshot{
		tables:   make(map[Name]*Table, len(tables)),
		loadedAt: time.Now().UTC(),
	}
	for _, t := range tables {
		if t == nil {
			continue
		}
		if _, dup := s.tables[t.Name()]; dup {
			return nil, fmt.Errorf("duplicate table %s", t.Name())
		}
		s.tables[t.Name()] = t
	}
	return s, nil
}

// Table returns the named table.
func (s *Snapshot) Table(name Name) (*Table, error) {
	t, ok := s.tables[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrTableNotLoaded)
	}
	return t, nil
}

// LoadedAt returns when the snapshot was assembled.
func (s *Snapshot) LoadedAt() time.Time {
	return s.loadedAt
}

// Summary lists the held tables in load order.
func (s *Snapshot) Summary() []TableSummary {
	out := make([]TableSummary, 0, len(s.tables))
	for _, name := range Names {
		t, ok := s.tables[name]
		if !ok {
			continue
		}
		out = append(out, TableSummary{
			Name:    name,
			Source:  t.Source(),
			Rows:    t.Len(),
			Columns: t.Columns(),
		})
	}
	return out
}
