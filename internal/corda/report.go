package corda

import (
	"fmt"
	"strings"

	"github.com/montanaflynn/stats"

	"gocorda/domain/confidence"
)

// Bucket groups reactions by their initial confidence for reporting
type Bucket struct {
	Name     string `json:"name"`
	Total    int    `json:"total"`
	Included int    `json:"included"`
}

// RedundancyStats summarizes the alternative routes found per target
type RedundancyStats struct {
	Targets int     `json:"targets"`
	Mean    float64 `json:"mean"`
	Median  float64 `json:"median"`
	Max     float64 `json:"max"`
}

// Summary is the structured form of the reconstruction report
type Summary struct {
	Built      bool            `json:"built"`
	Reactions  int             `json:"reactions"`
	Included   int             `json:"included"`
	Buckets    []Bucket        `json:"buckets"`
	Impossible int             `json:"impossible"`
	Redundancy RedundancyStats `json:"redundancy"`
	Solves     int             `json:"solves"`
}

// Bucket names in report order
const (
	BucketUnclear = "unclear"
	BucketExclude = "exclude"
	BucketMedium  = "low and medium"
	BucketHigh    = "high"
)

func bucketOf(l confidence.Level) int {
	switch l {
	case confidence.Unknown:
		return 0
	case confidence.Exclude:
		return 1
	case confidence.Low, confidence.Medium:
		return 2
	default:
		return 3
	}
}

// Summary counts, per initial confidence bucket, how many reactions
// (mocks included) ended up in the reconstruction
func (r *Reconstructor) Summary() Summary {
	initial := r.InitialConfidence()
	final := r.ReactionConfidence()

	s := Summary{
		Built:     r.Built(),
		Reactions: len(initial),
		Buckets: []Bucket{
			{Name: BucketUnclear}, {Name: BucketExclude}, {Name: BucketMedium}, {Name: BucketHigh},
		},
		Impossible: len(r.impossible),
		Solves:     r.Solves(),
	}
	for id, l := range initial {
		b := &s.Buckets[bucketOf(l)]
		b.Total++
		if final[id] == confidence.High {
			b.Included++
			s.Included++
		}
	}
	s.Redundancy = r.redundancyStats()
	return s
}

func (r *Reconstructor) redundancyStats() RedundancyStats {
	data := make(stats.Float64Data, 0, len(r.redundancies))
	for _, c := range r.redundancies {
		data = append(data, float64(c))
	}
	out := RedundancyStats{Targets: len(data)}
	if len(data) == 0 {
		return out
	}
	out.Mean, _ = stats.Mean(data)
	out.Median, _ = stats.Median(data)
	out.Max, _ = stats.Max(data)
	return out
}

// String renders the build status and inclusion counts per bucket
func (r *Reconstructor) String() string {
	s := r.Summary()
	var b strings.Builder
	if !s.Built {
		b.WriteString("build status: not built\n")
		fmt.Fprintf(&b, "#reactions (including mock): %d\n", s.Reactions)
		b.WriteString("Reaction confidence:\n")
		for _, bucket := range s.Buckets {
			fmt.Fprintf(&b, " - %s: %d\n", bucket.Name, bucket.Total)
		}
		return b.String()
	}
	b.WriteString("build status: reconstruction complete\n")
	fmt.Fprintf(&b, "Inc. reactions: %d/%d\n", s.Included, s.Reactions)
	for _, bucket := range s.Buckets {
		fmt.Fprintf(&b, " - %s: %d/%d\n", bucket.Name, bucket.Included, bucket.Total)
	}
	return b.String()
}
