// Package brtime formats instants in Brazil local time (America/Sao_Paulo).
// The funnel's audit log, dedup keys and daily counter are all scoped to
// the Brazilian calendar day, not UTC.
package brtime

import "time"

var location *time.Location

func init() {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		// Brazil abolished DST in 2019; a fixed -03:00 offset is the
		// correct fallback when the tz database is unavailable.
		loc = time.FixedZone("-03", -3*60*60)
	}
	location = loc
}

// Location returns the America/Sao_Paulo location.
func Location() *time.Location {
	return location
}

// Date returns t as a Brazil-local calendar date, YYYY-MM-DD.
func Date(t time.Time) string {
	return t.In(location).Format("2006-01-02")
}

// Clock returns t as a Brazil-local wall clock time, HH:MM:SS.
func Clock(t time.Time) string {
	return t.In(location).Format("15:04:05")
}
