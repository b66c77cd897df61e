package normalize

import (
	"time"

	"shipment-status/internal/features/shipment/domain"
)

// latestEventTimestamp resolves the latest event timestamp from a deep
// payload's track results, in priority order: an explicit timestamp on
// latestStatusDetail, then the most recent dateAndTimes[].dateTime, then the
// most recent scanEvents[].date. Returns "" when no source yields a parseable
// timestamp; backfill from already-normalized scan events happens later,
// during metrics computation.
func latestEventTimestamp(trs []map[string]any) string {
	for _, tr := range trs {
		lsd := asMap(tr["latestStatusDetail"])
		for _, key := range []string{"dateAndTime", "date", "statusDateTime"} {
			if t, ok := domain.ParseTimestamp(asString(lsd[key])); ok {
				return domain.FormatUTC(t)
			}
		}
	}

	if ts := mostRecent(trs, "dateAndTimes", "dateTime"); ts != "" {
		return ts
	}
	return mostRecent(trs, "scanEvents", "date")
}

// mostRecent scans listKey entries across all track results and returns the
// maximum parseable timestamp under dateKey, canonicalized to UTC.
func mostRecent(trs []map[string]any, listKey, dateKey string) string {
	var best time.Time
	found := false
	for _, tr := range trs {
		for _, raw := range asList(tr[listKey]) {
			entry, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			t, ok := domain.ParseTimestamp(asString(entry[dateKey]))
			if !ok {
				continue
			}
			if !found || t.After(best) {
				best = t
				found = true
			}
		}
	}
	if !found {
		return ""
	}
	return domain.FormatUTC(best)
}
