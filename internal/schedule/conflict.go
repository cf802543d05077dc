// Package schedule detects overlapping events in a client's schedule.
//
// Two events conflict only when the first one ends on the calendar day the
// second one begins and its end time of day is strictly after the second's
// begin time of day. Events on different days never conflict, even when
// their clock ranges overlap.
package schedule

import (
	"sort"
	"time"

	"github.com/nwarner31/helping-hands-sub001/internal/model"
)

// DetectConflicts returns, for each event with at least one later
// overlapping event, the event paired with every event it overlaps. Input
// order does not matter.
func DetectConflicts(events []model.Event) []model.EventConflicts {
	sorted := make([]model.Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return start(sorted[i]).Before(start(sorted[j]))
	})

	result := []model.EventConflicts{}
	for i, e1 := range sorted {
		end1 := end(e1)
		var conflicts []model.Event
		for _, e2 := range sorted[i+1:] {
			if !start(e2).Before(end1) {
				break
			}
			if overlaps(e1, e2) {
				conflicts = append(conflicts, e2)
			}
		}
		if len(conflicts) > 0 {
			result = append(result, model.EventConflicts{Event: e1, Conflicts: conflicts})
		}
	}
	return result
}

// Summarize counts the events that have at least one conflict.
func Summarize(conflicts []model.EventConflicts) model.ConflictSummary {
	return model.ConflictSummary{
		HasConflicts: len(conflicts) > 0,
		NumConflicts: len(conflicts),
	}
}

func overlaps(e1, e2 model.Event) bool {
	return sameDay(e1.EndDate, e2.BeginDate) && timeOfDay(e1.EndTime) > timeOfDay(e2.BeginTime)
}

func start(e model.Event) time.Time {
	return day(e.BeginDate).Add(timeOfDay(e.BeginTime))
}

func end(e model.Event) time.Time {
	return day(e.EndDate).Add(timeOfDay(e.EndTime))
}

func day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func sameDay(a, b time.Time) bool {
	return day(a).Equal(day(b))
}

func timeOfDay(t time.Time) time.Duration {
	t = t.UTC()
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second
}
