package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Hash is a hex encoded SHA-256 digest
type Hash string

func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// HashFields digests fields joined by '|'. Callers label their fields
// ("n:3") so reordering changes the digest.
func HashFields(fields ...string) Hash {
	return NewHash([]byte(strings.Join(fields, "|")))
}

// ComputeMapHash digests m in key order, formatting values with %v
func ComputeMapHash[V any](m map[string]V) Hash {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := sha256.New()
	for _, k := range keys {
		fmt.Fprintf(h, "%s=%v;", k, m[k])
	}
	return Hash(hex.EncodeToString(h.Sum(nil)))
}

func (h Hash) String() string { return string(h) }

func (h Hash) IsEmpty() bool { return h == "" }

// Short is the 12 character prefix shown in tables and logs
func (h Hash) Short() string {
	if len(h) <= 12 {
		return string(h)
	}
	return string(h[:12])
}
