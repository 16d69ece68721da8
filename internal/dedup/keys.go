// Package dedup derives the store keys and expiries used to suppress
// repeat deliveries of an event_id and to keep the daily accepted count.
package dedup

import (
	"time"

	"github.com/wederfonseca/achadinhododia/internal/brtime"
	"github.com/wederfonseca/achadinhododia/internal/config"
)

const (
	eventKeyPrefix   = "capi:event:"
	counterKeyPrefix = "capi:count:"

	// Calendar-day keys outlive the day they mark so a retry arriving
	// just after midnight is still caught.
	calendarDayTTL = 48 * time.Hour

	// CounterTTL bounds how long a daily counter survives after its day.
	CounterTTL = 48 * time.Hour
)

// EventKey returns the dedup key for an event_id under the configured
// window policy. Rolling-TTL keys are unscoped; calendar-day keys embed
// the Brazil-local date, so the same event_id counts again tomorrow.
func EventKey(window string, now time.Time, eventID string) string {
	if window == config.WindowCalendarDay {
		return eventKeyPrefix + brtime.Date(now) + ":" + eventID
	}
	return eventKeyPrefix + eventID
}

// EventTTL returns the expiry for a dedup key under the configured window.
func EventTTL(window string, rollingTTL time.Duration) time.Duration {
	if window == config.WindowCalendarDay {
		return calendarDayTTL
	}
	return rollingTTL
}

// CounterKey returns the daily counter key for the Brazil-local date of now.
func CounterKey(now time.Time) string {
	return counterKeyPrefix + brtime.Date(now)
}

// CounterKeyForDate returns the counter key for an already formatted
// YYYY-MM-DD Brazil-local date.
func CounterKeyForDate(date string) string {
	return counterKeyPrefix + date
}
