package analytics

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAggregateSingleBoundaryAttempt(t *testing.T) {
	stats := Aggregate([]Attempt{{Score: 90, TotalQuestions: 100, Completed: true}})

	require.Equal(t, 90.0, stats.AverageScore)
	require.Equal(t, 100.0, stats.CompletionRate)
	require.False(t, stats.Empty)
	require.Equal(t, int64(1), stats.BucketCounts[Bucket90To100])
	for _, label := range Buckets[1:] {
		require.Equal(t, int64(0), stats.BucketCounts[label], label)
	}
}

func TestAggregateEmptyPopulation(t *testing.T) {
	stats := Aggregate(nil)

	require.True(t, stats.Empty)
	require.Equal(t, 0.0, stats.AverageScore)
	require.Equal(t, 0.0, stats.CompletionRate)
	require.Len(t, stats.BucketCounts, len(Buckets))
	for _, label := range Buckets {
		require.Equal(t, int64(0), stats.BucketCounts[label])
	}
}

func TestAggregateOnlyIncompleteAttempts(t *testing.T) {
	stats := Aggregate([]Attempt{{Score: 2, TotalQuestions: 5}})

	require.True(t, stats.Empty)
	require.Equal(t, 0.0, stats.AverageScore)
	require.Equal(t, 0.0, stats.CompletionRate)
	require.Equal(t, 1, stats.TotalAttempts)
	require.Equal(t, int64(1), stats.BucketCounts[Bucket0To59])
}

func TestAggregateMixedPopulation(t *testing.T) {
	attempts := []Attempt{
		{FresherID: 1, Score: 5, TotalQuestions: 5, Completed: true},
		{FresherID: 1, Score: 4, TotalQuestions: 5, Completed: true},
		{FresherID: 2, Score: 3, TotalQuestions: 5, Completed: true},
		{FresherID: 2, Score: 1, TotalQuestions: 5, Completed: false},
	}

	stats := Aggregate(attempts)
	require.Equal(t, 4, stats.TotalAttempts)
	require.Equal(t, 3, stats.CompletedAttempts)
	require.InDelta(t, 4.0, stats.AverageScore, 1e-9)
	require.InDelta(t, 80.0, stats.AveragePercentage, 1e-9)
	require.InDelta(t, 75.0, stats.CompletionRate, 1e-9)
	require.Equal(t, int64(1), stats.BucketCounts[Bucket90To100])
	require.Equal(t, int64(1), stats.BucketCounts[Bucket80To89])
	require.Equal(t, int64(1), stats.BucketCounts[Bucket60To69])
	require.Equal(t, int64(1), stats.BucketCounts[Bucket0To59])
}

func TestAggregateIsDeterministicAndOrderIndependent(t *testing.T) {
	now := time.Now()
	attempts := []Attempt{
		{FresherID: 3, Score: 7, TotalQuestions: 10, Completed: true, Timestamp: now},
		{FresherID: 1, Score: 2, TotalQuestions: 10, Completed: true, Timestamp: now.Add(-time.Hour)},
		{FresherID: 2, Score: 9, TotalQuestions: 10, Completed: false, Timestamp: now.Add(time.Hour)},
	}
	reversed := []Attempt{attempts[2], attempts[1], attempts[0]}

	first := Aggregate(attempts)
	require.Equal(t, first, Aggregate(attempts))
	require.Equal(t, first, Aggregate(reversed))
}

func TestBucketForBoundaries(t *testing.T) {
	cases := map[float64]string{
		100:   Bucket90To100,
		90:    Bucket90To100,
		89.99: Bucket80To89,
		80:    Bucket80To89,
		79.9:  Bucket70To79,
		70:    Bucket70To79,
		60:    Bucket60To69,
		59.99: Bucket0To59,
		0:     Bucket0To59,
	}
	for percent, expected := range cases {
		require.Equal(t, expected, BucketFor(percent), "percent %v", percent)
	}
}

func TestAttemptPercentageWithoutQuestions(t *testing.T) {
	require.Equal(t, 0.0, Attempt{Score: 0, TotalQuestions: 0}.Percentage())
	require.Equal(t, 60.0, Attempt{Score: 3, TotalQuestions: 5}.Percentage())
}

func TestAggregateByFresher(t *testing.T) {
	grouped := AggregateByFresher([]Attempt{
		{FresherID: 1, Score: 5, TotalQuestions: 5, Completed: true},
		{FresherID: 1, Score: 3, TotalQuestions: 5, Completed: false},
		{FresherID: 2, Score: 2, TotalQuestions: 5, Completed: true},
	})

	require.Len(t, grouped, 2)
	require.Equal(t, 5.0, grouped[1].AverageScore)
	require.Equal(t, 50.0, grouped[1].CompletionRate)
	require.Equal(t, 2.0, grouped[2].AverageScore)
	require.Equal(t, 100.0, grouped[2].CompletionRate)
}

func TestGroupCountTreatsBlankKeysAsOwnGroup(t *testing.T) {
	departments := []string{"Data Science", "DevOps", "", "data science", "DevOps", "  "}
	counts := GroupCount(departments, func(d string) string { return strings.TrimSpace(d) })

	require.Equal(t, int64(2), counts["DevOps"])
	require.Equal(t, int64(1), counts["Data Science"])
	require.Equal(t, int64(1), counts["data science"])
	require.Equal(t, int64(2), counts[UnspecifiedGroup])
	require.Empty(t, GroupCount([]string(nil), func(s string) string { return s }))
}
