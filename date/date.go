// Package date provides a calendar-date value type with day granularity,
// used to address price bars by their trading day.
package date

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrInvalidDate reports a string that does not match Format. Use errors.Is to
// tell a malformed date apart from other failures.
var ErrInvalidDate = errors.New("invalid date")

// Format is the only accepted string representation, ISO-8601 "YYYY-MM-DD".
const Format = "2006-01-02"

// Day is the duration of one calendar day.
const Day = 24 * time.Hour

// Date represents a date with no lower than day granularity.
type Date struct {
	y int
	m time.Month
	d int
}

// New returns a normalized Date for the given year, month, and day.
func New(year int, month time.Month, day int) Date {
	d := Date{year, month, day}
	d.y, d.m, d.d = d.local().Date()
	return d
}

// Today returns the current date.
func Today() Date { return New(time.Now().Date()) }

// Parse parses a Date from a string in the strict "YYYY-MM-DD" format.
func Parse(str string) (Date, error) {
	on, err := time.Parse(Format, str)
	// time.Parse tolerates unpadded months and days, the round trip does not.
	if err != nil || on.Format(Format) != str {
		return Date{}, fmt.Errorf("%w %q, want format %q", ErrInvalidDate, str, Format)
	}
	return New(on.Date()), nil
}

// MustParse is like Parse but panics on error.
func MustParse(str string) Date {
	d, err := Parse(str)
	if err != nil {
		panic(err.Error())
	}
	return d
}

// local returns the time.Time at midnight of that day in the local time zone.
func (d Date) local() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.Local) }

// Unix returns the unix timestamp in seconds of local midnight of that day.
func (d Date) Unix() int64 { return d.local().Unix() }

// Year returns the year of the date.
func (d Date) Year() int { return d.y }

// Month returns the month of the date.
func (d Date) Month() time.Month { return d.m }

// Day returns the day of the month.
func (d Date) Day() int { return d.d }

// Weekday returns the day of the week for the date.
func (d Date) Weekday() time.Weekday { return d.local().Weekday() }

// Add returns a new Date with the given number of days added.
func (d Date) Add(i int) Date { return New(d.y, d.m, d.d+i) }

// Before reports whether the day d is before x.
func (d Date) Before(x Date) bool { return d.local().Before(x.local()) }

// After reports whether the day d is after x.
func (d Date) After(x Date) bool { return d.local().After(x.local()) }

// IsToday reports whether d is the current date.
func (d Date) IsToday() bool { return d == Today() }

// String format the date in its standard format.
func (d Date) String() string { return d.local().Format(Format) }

// UnmarshalJSON implements the json specific way to unmarshall a date from a json string.
func (j *Date) UnmarshalJSON(bytes []byte) error {
	var str string
	if err := json.Unmarshal(bytes, &str); err != nil {
		return err
	}
	d, err := Parse(str)
	if err != nil {
		return err
	}
	*j = d
	return nil
}

func (j Date) MarshalJSON() ([]byte, error) {
	str := j.String()
	return json.Marshal(&str)
}

// check that a Date pointer is a valid json marshall/unmarshaller type.
var _ json.Marshaler = (*Date)(nil)
var _ json.Unmarshaler = (*Date)(nil)
