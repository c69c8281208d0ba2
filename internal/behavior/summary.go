// Package behavior aggregates the behavior-log stream into the mood
// summary: good/bad tallies bucketed by day, week, or month.
package behavior

import (
	"sort"
	"time"

	"github.com/nhle/family-board/internal/model"
	"github.com/nhle/family-board/internal/timeutil"
)

// Period selects the bucketing granularity of a summary.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// Bucket is the tally of one day/week/month of logs.
type Bucket struct {
	// Start is the first day of the bucket (midnight).
	Start time.Time
	// Label is the bucket's ISO date ("2006-01-02" of Start).
	Label string

	Good int
	Bad  int

	// ByBehavior counts logs per category within the bucket.
	ByBehavior map[model.BehaviorCategory]int
}

// Mood is the bucket's good-choice ratio in [0, 1]; an empty bucket
// reports 0.
func (b Bucket) Mood() float64 {
	total := b.Good + b.Bad
	if total == 0 {
		return 0
	}
	return float64(b.Good) / float64(total)
}

// Summary is the aggregated view of a set of behavior logs.
type Summary struct {
	Period  Period
	Buckets []Bucket

	Good int
	Bad  int
}

// Mood is the overall good-choice ratio across all buckets.
func (s Summary) Mood() float64 {
	total := s.Good + s.Bad
	if total == 0 {
		return 0
	}
	return float64(s.Good) / float64(total)
}

// bucketStart maps a log timestamp to the first day of its bucket in loc.
// Weeks start on Monday.
func bucketStart(ts time.Time, p Period, loc *time.Location) time.Time {
	t := timeutil.Midnight(ts.In(loc))
	switch p {
	case PeriodWeek:
		offset := (int(t.Weekday()) + 6) % 7
		return t.AddDate(0, 0, -offset)
	case PeriodMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
	default:
		return t
	}
}

// Summarize buckets logs by period in loc. Buckets are returned in
// ascending chronological order; logs with unknown choices are ignored.
func Summarize(logs []model.BehaviorLog, p Period, loc *time.Location) Summary {
	byStart := make(map[time.Time]*Bucket)

	summary := Summary{Period: p}
	for _, l := range logs {
		if !l.Choice.Valid() {
			continue
		}
		start := bucketStart(l.Timestamp, p, loc)
		b, ok := byStart[start]
		if !ok {
			b = &Bucket{
				Start:      start,
				Label:      timeutil.FormatDate(start),
				ByBehavior: make(map[model.BehaviorCategory]int),
			}
			byStart[start] = b
		}

		if l.Choice == model.ChoiceGood {
			b.Good++
			summary.Good++
		} else {
			b.Bad++
			summary.Bad++
		}
		b.ByBehavior[l.Behavior]++
	}

	summary.Buckets = make([]Bucket, 0, len(byStart))
	for _, b := range byStart {
		summary.Buckets = append(summary.Buckets, *b)
	}
	sort.Slice(summary.Buckets, func(i, j int) bool {
		return summary.Buckets[i].Start.Before(summary.Buckets[j].Start)
	})

	return summary
}
