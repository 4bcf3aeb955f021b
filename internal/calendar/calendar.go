package calendar

import (
	"fmt"
	"time"
	_ "time/tzdata" // zone database for hosts without /usr/share/zoneinfo

	"gymcrew-backend/internal/domain"
)

// DateLayout is the calendar date format stored on check-ins and badges.
const DateLayout = "2006-01-02"

// Clock supplies the current instant. Services take one so tests can pin time.
type Clock func() time.Time

// Range is an inclusive span of calendar dates.
type Range struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// LoadZone resolves an IANA zone name. Empty means UTC.
func LoadZone(tz string) (*time.Location, error) {
	if tz == "" {
		tz = domain.DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, domain.NewError(domain.KindInvalidTimezone, fmt.Sprintf("unknown timezone %q", tz))
	}
	return loc, nil
}

// Today is the calendar date of now in tz.
func Today(tz string, now time.Time) (string, error) {
	loc, err := LoadZone(tz)
	if err != nil {
		return "", err
	}
	return now.In(loc).Format(DateLayout), nil
}

// MonthRange returns the first and last dates of the month containing now in tz.
func MonthRange(tz string, now time.Time) (Range, error) {
	start, err := monthStart(tz, now)
	if err != nil {
		return Range{}, err
	}
	return rangeFrom(start), nil
}

// PrevMonthStart is the first day of the month before the current one in tz.
func PrevMonthStart(tz string, now time.Time) (string, error) {
	start, err := monthStart(tz, now)
	if err != nil {
		return "", err
	}
	return start.AddDate(0, -1, 0).Format(DateLayout), nil
}

// MonthRangeOf returns the whole month containing date.
func MonthRangeOf(date string) (Range, error) {
	d, err := ParseDate(date)
	if err != nil {
		return Range{}, err
	}
	return rangeFrom(time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)), nil
}

// PrevDay steps one calendar day back.
func PrevDay(date string) (string, error) {
	d, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return d.AddDate(0, 0, -1).Format(DateLayout), nil
}

// ParseDate parses a YYYY-MM-DD date at UTC midnight.
func ParseDate(date string) (time.Time, error) {
	d, err := time.Parse(DateLayout, date)
	if err != nil {
		return time.Time{}, domain.NewError(domain.KindInvalidArgument, fmt.Sprintf("invalid date %q", date))
	}
	return d, nil
}

// monthStart is the first of the current month as a zone-free calendar value.
// Date arithmetic after this point is done in UTC so DST shifts never skip a day.
func monthStart(tz string, now time.Time) (time.Time, error) {
	loc, err := LoadZone(tz)
	if err != nil {
		return time.Time{}, err
	}
	y, m, _ := now.In(loc).Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC), nil
}

func rangeFrom(start time.Time) Range {
	return Range{
		Start: start.Format(DateLayout),
		End:   start.AddDate(0, 1, -1).Format(DateLayout),
	}
}
