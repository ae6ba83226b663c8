package calendar

import (
	"errors"
	"fmt"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

var (
	ErrInvalidDate     = errors.New("invalid date, use YYYY-MM-DD")
	ErrInvalidTime     = errors.New("invalid time, use HH:MM")
	ErrInvalidTemplate = errors.New("invalid slot template")
)

// Template is the fixed daily slot layout of an open business day.
// Open, Close and Step are offsets from midnight.
type Template struct {
	Open  time.Duration
	Close time.Duration
	Step  time.Duration
}

// DefaultTemplate is 09:00 to 14:00 in 30 minute steps (10 slots).
func DefaultTemplate() Template {
	return Template{Open: 9 * time.Hour, Close: 14 * time.Hour, Step: 30 * time.Minute}
}

func NewTemplate(open, close string, step time.Duration) (Template, error) {
	o, err := ParseTimeOfDay(open)
	if err != nil {
		return Template{}, fmt.Errorf("%w: open %q", ErrInvalidTemplate, open)
	}
	c, err := ParseTimeOfDay(close)
	if err != nil {
		return Template{}, fmt.Errorf("%w: close %q", ErrInvalidTemplate, close)
	}
	t := Template{Open: o, Close: c, Step: step}
	if err := t.Validate(); err != nil {
		return Template{}, err
	}
	return t, nil
}

func (t Template) Validate() error {
	if t.Step <= 0 {
		return fmt.Errorf("%w: step must be positive", ErrInvalidTemplate)
	}
	if t.Close <= t.Open {
		return fmt.Errorf("%w: close must be after open", ErrInvalidTemplate)
	}
	if t.Close > 24*time.Hour {
		return fmt.Errorf("%w: close must be within the day", ErrInvalidTemplate)
	}
	return nil
}

// Slots returns the ordered slot start times. A slot is emitted while its
// start is strictly before Close.
func (t Template) Slots() []string {
	if t.Validate() != nil {
		return nil
	}
	var slots []string
	for at := t.Open; at < t.Close; at += t.Step {
		slots = append(slots, FormatTimeOfDay(at))
	}
	return slots
}

func (t Template) Total() int {
	return len(t.Slots())
}

// IsBookableTime reports whether an HH:MM value is a slot start or the
// closing minute. Values between grid points are rejected.
func (t Template) IsBookableTime(hhmm string) (bool, error) {
	at, err := ParseTimeOfDay(hhmm)
	if err != nil {
		return false, err
	}
	if t.Validate() != nil {
		return false, nil
	}
	if at == t.Close {
		return true, nil
	}
	return at >= t.Open && at < t.Close && (at-t.Open)%t.Step == 0, nil
}

// ParseTimeOfDay parses a strict two-digit HH:MM value into an offset from midnight.
func ParseTimeOfDay(hhmm string) (time.Duration, error) {
	if len(hhmm) != len(TimeLayout) || hhmm[2] != ':' {
		return 0, ErrInvalidTime
	}
	parsed, err := time.Parse(TimeLayout, hhmm)
	if err != nil {
		return 0, ErrInvalidTime
	}
	return time.Duration(parsed.Hour())*time.Hour + time.Duration(parsed.Minute())*time.Minute, nil
}

func FormatTimeOfDay(d time.Duration) string {
	minutes := int(d / time.Minute)
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

func IsWeekend(day time.Time) bool {
	wd := day.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// Calendar binds the slot template to the clinic time zone, the booking
// horizon and a clock.
type Calendar struct {
	loc         *time.Location
	template    Template
	horizonDays int
	now         func() time.Time
}

func New(loc *time.Location, template Template, horizonDays int, now func() time.Time) *Calendar {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &Calendar{
		loc:         loc,
		template:    template,
		horizonDays: horizonDays,
		now:         now,
	}
}

func (c *Calendar) Template() Template {
	return c.template
}

func (c *Calendar) Location() *time.Location {
	return c.loc
}

func (c *Calendar) HorizonDays() int {
	return c.horizonDays
}

// Today is the current calendar day in the clinic time zone, at midnight.
func (c *Calendar) Today() time.Time {
	return c.dayOf(c.now())
}

func (c *Calendar) dayOf(t time.Time) time.Time {
	y, m, d := t.In(c.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, c.loc)
}

// ParseDate parses YYYY-MM-DD as a day in the clinic time zone. Impossible
// dates such as 2025-02-30 are rejected.
func (c *Calendar) ParseDate(value string) (time.Time, error) {
	day, err := time.ParseInLocation(DateLayout, value, c.loc)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return day, nil
}

// IsPast reports whether day lies strictly before today. Only the calendar
// date is compared.
func (c *Calendar) IsPast(day time.Time) bool {
	return c.dayOf(day).Before(c.Today())
}

// Window returns every business day in [today, today+horizon], ascending.
func (c *Calendar) Window() []time.Time {
	start := c.Today()
	days := make([]time.Time, 0, c.horizonDays+1)
	for i := 0; i <= c.horizonDays; i++ {
		day := start.AddDate(0, 0, i)
		if IsWeekend(day) {
			continue
		}
		days = append(days, day)
	}
	return days
}

// WindowBounds returns the first and last day of the horizon as YYYY-MM-DD.
func (c *Calendar) WindowBounds() (string, string) {
	start := c.Today()
	return start.Format(DateLayout), start.AddDate(0, 0, c.horizonDays).Format(DateLayout)
}
