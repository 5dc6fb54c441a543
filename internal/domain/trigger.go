package domain

import (
	"fmt"
	"time"
)

// TargetZone is the fixed business timezone. All fire times are computed here
// regardless of where the dispatching process runs; a fixed offset avoids any
// dependency on the host's tzdata or locale.
var TargetZone = time.FixedZone("UTC+8", 8*60*60)

// Defaults applied when a schedule is created without explicit timing fields.
const (
	DefaultDaysBefore = 1
	DefaultDaysAfter  = 1
	DefaultHour       = 9
	DefaultMinute     = 0
)

const eventDateLayout = "2006-01-02"

// FireTime computes the absolute instant at which s becomes due: the event
// date shifted by the kind's day offset, at hour:minute in TargetZone.
func FireTime(s *Schedule) (time.Time, error) {
	day, err := time.ParseInLocation(eventDateLayout, s.EventDate, TargetZone)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse event date %q: %w", s.EventDate, err)
	}
	if s.Kind == KindFeedback {
		day = day.AddDate(0, 0, s.DaysAfter)
	} else {
		day = day.AddDate(0, 0, -s.DaysBefore)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), s.Hour, s.Minute, 0, 0, TargetZone), nil
}

// Due reports whether s should fire at now. A malformed event date is
// surfaced as an error so the caller can log and skip instead of firing.
func (s *Schedule) Due(now time.Time) (bool, error) {
	ft, err := FireTime(s)
	if err != nil {
		return false, err
	}
	return !now.Before(ft), nil
}
