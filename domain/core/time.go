package core

import (
	"time"
)

// storageLayout has a fixed width so stored timestamps sort lexically
const storageLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Timestamp is a UTC instant recorded on runs
type Timestamp time.Time

// NewTimestamp normalizes t to UTC
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp(t.UTC())
}

func Now() Timestamp {
	return NewTimestamp(time.Now())
}

func (t Timestamp) Time() time.Time {
	return time.Time(t)
}

func (t Timestamp) IsZero() bool {
	return time.Time(t).IsZero()
}

func (t Timestamp) String() string {
	return t.Time().Format(time.RFC3339)
}

// Since reports the time elapsed since t
func (t Timestamp) Since() time.Duration {
	return time.Since(t.Time())
}

// Storage renders t in the run store column format
func (t Timestamp) Storage() string {
	return t.Time().UTC().Format(storageLayout)
}

// ParseStorage reads a value written by Storage
func ParseStorage(s string) (Timestamp, error) {
	tm, err := time.Parse(storageLayout, s)
	if err != nil {
		return Timestamp{}, err
	}
	return NewTimestamp(tm), nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return time.Time(t).MarshalJSON()
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var tm time.Time
	if err := tm.UnmarshalJSON(data); err != nil {
		return err
	}
	*t = NewTimestamp(tm)
	return nil
}
