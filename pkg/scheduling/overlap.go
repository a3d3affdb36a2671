package scheduling

import (
	"time"

	"couple-space-backend/pkg/models"
)

// DefaultEventDuration is the duration assumed for events without an explicit
// end when computing overlaps. Every code path that derives an effective
// interval must go through EffectiveInterval so the rule stays uniform.
const DefaultEventDuration = time.Hour

// EffectiveInterval returns the half-open interval [start, end) an event
// occupies for overlap purposes. An event without an explicit end occupies
// DefaultEventDuration from its start.
func EffectiveInterval(start time.Time, end *time.Time) (time.Time, time.Time) {
	if end != nil {
		return start, *end
	}
	return start, start.Add(DefaultEventDuration)
}

// Overlaps reports whether the half-open intervals [s1, e1) and [s2, e2)
// intersect. Abutting intervals (one ending exactly when the other starts)
// do not overlap.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && e1.After(s2)
}

// HasConflict reports whether the candidate interval [cs, ce) intersects the
// effective interval of any of the given events, skipping the event
// identified by excludeID. The exclusion is what keeps an update from
// conflicting with its own stored state. Returns on the first match.
func HasConflict(events []models.Event, cs, ce time.Time, excludeID string) bool {
	for _, ev := range events {
		if excludeID != "" && ev.ID == excludeID {
			continue
		}
		es, ee := EffectiveInterval(ev.DateStart, ev.DateEnd)
		if Overlaps(cs, ce, es, ee) {
			return true
		}
	}
	return false
}
