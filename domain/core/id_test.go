package core

import (
	"sort"
	"strings"
	"testing"
	"time"
)

func TestNewRunIDUniqueness(t *testing.T) {
	const n = 10000

	seen := make(map[RunID]bool, n)
	for i := 0; i < n; i++ {
		id := NewRunID()
		if id.IsEmpty() {
			t.Fatalf("empty run ID at iteration %d", i)
		}
		if seen[id] {
			t.Fatalf("duplicate run ID %s", id)
		}
		seen[id] = true
	}
}

func TestRunIDTime(t *testing.T) {
	before := time.Now().Add(-time.Millisecond)
	id := NewRunID()
	after := time.Now().Add(time.Millisecond)

	got := id.Time()
	if got.Before(before.Truncate(time.Millisecond)) || got.After(after) {
		t.Errorf("run ID time %v outside [%v, %v]", got, before, after)
	}
	if !RunID("6ba7b810-9dad-11d1-80b4-00c04fd430c8").Time().IsZero() {
		t.Error("expected zero time for a v1 UUID")
	}
	if !RunID("garbage").Time().IsZero() {
		t.Error("expected zero time for a malformed ID")
	}
}

func TestParseRunID(t *testing.T) {
	valid := NewRunID().String()
	tests := []struct {
		input    string
		expected RunID
		hasError bool
	}{
		{valid, RunID(valid), false},
		{"  " + valid + "\n", RunID(valid), false},
		{strings.ToUpper(valid), RunID(valid), false},
		{"", "", true},
		{"   ", "", true},
		{"not-a-uuid", "", true},
	}

	for _, test := range tests {
		result, err := ParseRunID(test.input)
		if test.hasError && err == nil {
			t.Errorf("expected error for %q", test.input)
		}
		if !test.hasError && err != nil {
			t.Errorf("unexpected error for %q: %v", test.input, err)
		}
		if result != test.expected {
			t.Errorf("ParseRunID(%q) = %s, want %s", test.input, result, test.expected)
		}
	}
}

func TestTimestampStorageSortsLexically(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))
	stamps := []Timestamp{
		NewTimestamp(base.Add(time.Second)),
		NewTimestamp(base),
		NewTimestamp(base.Add(500 * time.Nanosecond)),
	}

	rows := make([]string, len(stamps))
	for i, ts := range stamps {
		rows[i] = ts.Storage()
		if len(rows[i]) != len(rows[0]) {
			t.Fatalf("storage width varies: %q vs %q", rows[i], rows[0])
		}
	}
	sort.Strings(rows)

	first, err := ParseStorage(rows[0])
	if err != nil {
		t.Fatal(err)
	}
	if !first.Time().Equal(base) {
		t.Errorf("earliest = %v, want %v", first.Time(), base)
	}
	last, err := ParseStorage(rows[2])
	if err != nil {
		t.Fatal(err)
	}
	if !last.Time().Equal(base.Add(time.Second)) {
		t.Errorf("latest = %v, want %v", last.Time(), base.Add(time.Second))
	}
	if last.Time().Location() != time.UTC {
		t.Errorf("parsed timestamp not in UTC: %v", last.Time().Location())
	}

	if _, err := ParseStorage("yesterday"); err == nil {
		t.Error("expected error for malformed timestamp")
	}
}

func TestComputeMapHash(t *testing.T) {
	a := map[string]int{"r1": 1, "r2": -1, "EX_A": 3}
	b := map[string]int{"EX_A": 3, "r2": -1, "r1": 1}
	if ComputeMapHash(a) != ComputeMapHash(b) {
		t.Error("expected equal maps to hash equally")
	}

	b["r2"] = 2
	if ComputeMapHash(a) == ComputeMapHash(b) {
		t.Error("expected different maps to hash differently")
	}

	if len(ComputeMapHash(a).Short()) != 12 {
		t.Errorf("expected short hash of 12 characters, got %q", ComputeMapHash(a).Short())
	}
}
