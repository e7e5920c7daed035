// Package confidence defines reaction confidence levels and the gene-rule
// evaluation that derives them from gene-level evidence.
package confidence

import (
	"fmt"
	"sort"

	"gocorda/domain/core"
)

// Level is the evidence category for including a reaction
type Level int

const (
	Exclude Level = -1
	Unknown Level = 0
	Low     Level = 1
	Medium  Level = 2
	High    Level = 3
)

// ParseLevel converts a raw integer into a Level, rejecting anything outside {-1,0,1,2,3}
func ParseLevel(v int) (Level, error) {
	l := Level(v)
	if !l.Valid() {
		return 0, fmt.Errorf("%w: %d (allowed: -1, 0, 1, 2, 3)", core.ErrInvalidConfidence, v)
	}
	return l, nil
}

// Valid reports whether the level is one of the five defined levels
func (l Level) Valid() bool {
	return l >= Exclude && l <= High
}

// Uncertain reports whether the level is low or medium
func (l Level) Uncertain() bool {
	return l == Low || l == Medium
}

func (l Level) String() string {
	switch l {
	case Exclude:
		return "exclude"
	case Unknown:
		return "unknown"
	case Low:
		return "low"
	case Medium:
		return "medium"
	case High:
		return "high"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// Max returns the larger of two levels
func Max(a, b Level) Level {
	if a > b {
		return a
	}
	return b
}

// Min returns the smaller of two levels
func Min(a, b Level) Level {
	if a < b {
		return a
	}
	return b
}

// Map assigns a confidence level to reaction identifiers
type Map map[string]Level

// FromInts validates a raw id -> int mapping
func FromInts(raw map[string]int) (Map, error) {
	m := make(Map, len(raw))
	for id, v := range raw {
		l, err := ParseLevel(v)
		if err != nil {
			return nil, fmt.Errorf("reaction %s: %w", id, err)
		}
		m[id] = l
	}
	return m, nil
}

// Validate checks every value of the map
func (m Map) Validate() error {
	for _, id := range m.IDs() {
		if !m[id].Valid() {
			return fmt.Errorf("reaction %s: %w: %d", id, core.ErrInvalidConfidence, int(m[id]))
		}
	}
	return nil
}

// Copy returns an independent copy of the map
func (m Map) Copy() Map {
	out := make(Map, len(m))
	for id, l := range m {
		out[id] = l
	}
	return out
}

// IDs returns the identifiers in sorted order
func (m Map) IDs() []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Ints converts the map back to raw integers, e.g. for hashing or storage
func (m Map) Ints() map[string]int {
	out := make(map[string]int, len(m))
	for id, l := range m {
		out[id] = int(l)
	}
	return out
}
