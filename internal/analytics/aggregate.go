// Package analytics derives dashboard statistics from historical quiz attempts.
// Everything here is a pure projection over its input; nothing is cached or stored.
package analytics

import "time"

// Score band labels, highest first.
const (
	Bucket90To100 = "90-100"
	Bucket80To89  = "80-89"
	Bucket70To79  = "70-79"
	Bucket60To69  = "60-69"
	Bucket0To59   = "0-59"
)

// UnspecifiedGroup labels items whose grouping key is empty.
const UnspecifiedGroup = "unspecified"

// Buckets lists the score bands in display order.
var Buckets = []string{Bucket90To100, Bucket80To89, Bucket70To79, Bucket60To69, Bucket0To59}

// Attempt is the aggregation view of one persisted quiz outcome.
type Attempt struct {
	FresherID      uint
	Score          int
	TotalQuestions int
	Completed      bool
	Timestamp      time.Time
}

// Percentage normalises the score to 0-100. An attempt without questions counts as 0.
func (a Attempt) Percentage() float64 {
	if a.TotalQuestions <= 0 {
		return 0
	}
	return float64(a.Score) / float64(a.TotalQuestions) * 100
}

// Stats summarises a population of attempts.
type Stats struct {
	TotalAttempts     int              `json:"total_attempts"`
	CompletedAttempts int              `json:"completed_attempts"`
	AverageScore      float64          `json:"average_score"`
	AveragePercentage float64          `json:"average_percentage"`
	CompletionRate    float64          `json:"completion_rate"`
	BucketCounts      map[string]int64 `json:"bucket_counts"`
	// Empty is set when no completed attempt contributed to the averages.
	Empty bool `json:"empty"`
}

// Aggregate computes averages, completion rate and score bands.
func Aggregate(attempts []Attempt) Stats {
	stats := Stats{
		TotalAttempts: len(attempts),
		BucketCounts:  emptyBuckets(),
	}

	var scoreTotal, percentTotal float64
	for _, attempt := range attempts {
		stats.BucketCounts[BucketFor(attempt.Percentage())]++
		if !attempt.Completed {
			continue
		}
		stats.CompletedAttempts++
		scoreTotal += float64(attempt.Score)
		percentTotal += attempt.Percentage()
	}

	if stats.CompletedAttempts == 0 {
		stats.Empty = true
	} else {
		stats.AverageScore = scoreTotal / float64(stats.CompletedAttempts)
		stats.AveragePercentage = percentTotal / float64(stats.CompletedAttempts)
	}

	if stats.TotalAttempts > 0 {
		stats.CompletionRate = float64(stats.CompletedAttempts) / float64(stats.TotalAttempts) * 100
	}

	return stats
}

// AggregateByFresher splits attempts per fresher and aggregates each group.
func AggregateByFresher(attempts []Attempt) map[uint]Stats {
	grouped := make(map[uint][]Attempt)
	for _, attempt := range attempts {
		grouped[attempt.FresherID] = append(grouped[attempt.FresherID], attempt)
	}

	result := make(map[uint]Stats, len(grouped))
	for id, group := range grouped {
		result[id] = Aggregate(group)
	}
	return result
}

// BucketFor maps a normalised score to its band. Lower bounds are inclusive
// and 100 belongs to the top band.
func BucketFor(percent float64) string {
	switch {
	case percent >= 90:
		return Bucket90To100
	case percent >= 80:
		return Bucket80To89
	case percent >= 70:
		return Bucket70To79
	case percent >= 60:
		return Bucket60To69
	default:
		return Bucket0To59
	}
}

// GroupCount tallies items by key. Blank keys are counted under UnspecifiedGroup.
func GroupCount[T any](items []T, key func(T) string) map[string]int64 {
	counts := make(map[string]int64)
	for _, item := range items {
		k := key(item)
		if k == "" {
			k = UnspecifiedGroup
		}
		counts[k]++
	}
	return counts
}

func emptyBuckets() map[string]int64 {
	buckets := make(map[string]int64, len(Buckets))
	for _, label := range Buckets {
		buckets[label] = 0
	}
	return buckets
}
