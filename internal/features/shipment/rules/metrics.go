// Package rules derives timing metrics, indicators, and the final
// classification from a normalized shipment status.
package rules

import (
	"time"

	"shipment-status/internal/features/shipment/domain"
)

// ComputeMetrics resolves the latest event timestamp for a record and its age
// in whole days relative to referenceNow. referenceNow is always supplied by
// the caller; this package never samples a wall clock, so results are
// deterministic and replayable. A zero referenceNow is a caller bug and
// panics rather than producing a plausible-looking wrong answer.
func ComputeMetrics(rec domain.NormalizedStatus, referenceNow time.Time) domain.StatusMetrics {
	if referenceNow.IsZero() {
		panic("rules: reference instant is required")
	}

	ts := rec.LatestEventTimestampUtc
	if ts == "" {
		ts = latestScanTimestamp(rec.ScanEvents)
	}

	m := domain.StatusMetrics{
		LatestEventTimestampUtc: ts,
		DaysSinceLatestEvent:    domain.DaysUnknown,
	}

	t, ok := domain.ParseTimestamp(ts)
	if !ok {
		return m
	}

	days := int(referenceNow.UTC().Sub(t).Hours() / 24)
	if days < 0 {
		// Future-dated events count as zero days old, not negative.
		days = 0
	}
	m.DaysSinceLatestEvent = days
	return m
}

func latestScanTimestamp(events []domain.ScanEvent) string {
	var best time.Time
	found := false
	for _, ev := range events {
		t, ok := domain.ParseTimestamp(ev.Timestamp)
		if !ok {
			continue
		}
		if !found || t.After(best) {
			best = t
			found = true
		}
	}
	if !found {
		return ""
	}
	return domain.FormatUTC(best)
}
