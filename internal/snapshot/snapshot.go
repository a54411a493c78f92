// Package snapshot flattens a run's selections into comparable metrics and
// diffs them against the previous run.
package snapshot

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Version is the current on-disk snapshot schema.
const Version = 2

// Snapshot maps metric names to values. A missing name is an absent value.
// The zero Snapshot has every metric absent.
type Snapshot struct {
	values map[string]float64
}

// New copies values into a Snapshot, dropping names unknown to the catalog.
func New(values map[string]float64) Snapshot {
	s := Snapshot{values: make(map[string]float64, len(values))}
	for name, v := range values {
		if _, ok := Lookup(name); ok {
			s.values[name] = v
		}
	}
	return s
}

// Get returns the value of name and whether it is present.
func (s Snapshot) Get(name string) (float64, bool) {
	v, ok := s.values[name]
	return v, ok
}

// Len is the number of present metrics.
func (s Snapshot) Len() int { return len(s.values) }

// Values returns a copy of the present metrics.
func (s Snapshot) Values() map[string]float64 {
	out := make(map[string]float64, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

type document struct {
	Version int                 `json:"version"`
	Metrics map[string]*float64 `json:"metrics"`
}

// MarshalJSON writes every catalog metric, absent ones as null.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	doc := document{Version: Version, Metrics: make(map[string]*float64, len(Catalog))}
	for _, m := range Catalog {
		if v, ok := s.values[m.Name]; ok {
			doc.Metrics[m.Name] = &v
		} else {
			doc.Metrics[m.Name] = nil
		}
	}
	return json.Marshal(doc)
}

// UnmarshalJSON accepts the versioned document and the legacy flat map.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}

	var flat map[string]*float64
	legacy := false
	if _, versioned := probe["metrics"]; versioned {
		var doc document
		if err := json.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("decode snapshot: %w", err)
		}
		if doc.Version > Version {
			return fmt.Errorf("snapshot version %d is newer than supported %d", doc.Version, Version)
		}
		flat = doc.Metrics
	} else {
		// version 1: flat name -> number|null
		legacy = true
		if err := json.Unmarshal(data, &flat); err != nil {
			return fmt.Errorf("decode legacy snapshot: %w", err)
		}
	}

	values := make(map[string]float64, len(flat))
	names := make([]string, 0, len(flat))
	for name := range flat {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		v := flat[name]
		if v == nil {
			continue
		}
		if renamed, ok := legacyNames[name]; ok {
			name = renamed
		}
		// version 1 wrote 0 seats when no offer was found
		if m, ok := Lookup(name); legacy && ok && m.Unit == UnitSeats && *v == 0 {
			continue
		}
		values[name] = *v
	}
	*s = New(values)
	return nil
}
