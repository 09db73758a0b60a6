package reminders

import (
	"time"

	"github.com/anonto42/health-tracker/backend/internal/models"
)

// NextOccurrence returns the reminder time that follows fired. Months are a
// fixed 30 days, not calendar months. The bool is false for intervals that
// do not repeat.
func NextOccurrence(fired time.Time, interval string) (time.Time, bool) {
	switch interval {
	case models.RepeatDaily:
		return fired.Add(24 * time.Hour), true
	case models.RepeatWeekly:
		return fired.Add(7 * 24 * time.Hour), true
	case models.RepeatMonthly:
		return fired.Add(30 * 24 * time.Hour), true
	default:
		return time.Time{}, false
	}
}
