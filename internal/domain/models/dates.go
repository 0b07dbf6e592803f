package models

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DateLayout is the external day format (DD/MM/YYYY).
	DateLayout = "02/01/2006"
	// MonthYearLayout is the external month bucket format (MM/YYYY).
	MonthYearLayout = "01/2006"

	isoDateLayout  = "2006-01-02"
	monthKeyLayout = "2006-01"
)

// Date is a calendar day without a time of day or zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar day of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses a DD/MM/YYYY string.
func ParseDate(value string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(value))
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", value, err)
	}
	return DateOf(t), nil
}

// ParseISODate parses the YYYY-MM-DD storage form.
func ParseISODate(value string) (Date, error) {
	t, err := time.Parse(isoDateLayout, value)
	if err != nil {
		return Date{}, fmt.Errorf("parse stored date %q: %w", value, err)
	}
	return DateOf(t), nil
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// In returns midnight of d in loc.
func (d Date) In(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// MonthYear returns the month bucket containing d.
func (d Date) MonthYear() MonthYear {
	return MonthYear{Year: d.Year, Month: d.Month}
}

// String renders d as DD/MM/YYYY.
func (d Date) String() string {
	return d.In(time.UTC).Format(DateLayout)
}

// ISO renders d as YYYY-MM-DD for storage.
func (d Date) ISO() string {
	return d.In(time.UTC).Format(isoDateLayout)
}

// MonthYear identifies a calendar month. Day of month never takes part in comparisons.
type MonthYear struct {
	Year  int
	Month time.Month
}

// MonthOf returns the month bucket of t in t's location.
func MonthOf(t time.Time) MonthYear {
	return MonthYear{Year: t.Year(), Month: t.Month()}
}

// ParseMonthYear parses a MM/YYYY string.
func ParseMonthYear(value string) (MonthYear, error) {
	t, err := time.Parse(MonthYearLayout, strings.TrimSpace(value))
	if err != nil {
		return MonthYear{}, fmt.Errorf("parse month %q: %w", value, err)
	}
	return MonthOf(t), nil
}

// ParseMonthKey parses the YYYY-MM storage form.
func ParseMonthKey(value string) (MonthYear, error) {
	t, err := time.Parse(monthKeyLayout, value)
	if err != nil {
		return MonthYear{}, fmt.Errorf("parse stored month %q: %w", value, err)
	}
	return MonthOf(t), nil
}

// String renders m as MM/YYYY.
func (m MonthYear) String() string {
	return m.first().Format(MonthYearLayout)
}

// Key renders m as YYYY-MM, which sorts chronologically.
func (m MonthYear) Key() string {
	return m.first().Format(monthKeyLayout)
}

// Contains reports whether t falls inside m, evaluated in t's location.
func (m MonthYear) Contains(t time.Time) bool {
	return MonthOf(t) == m
}

// Previous returns the month before m.
func (m MonthYear) Previous() MonthYear {
	return MonthOf(m.first().AddDate(0, -1, 0))
}

func (m MonthYear) first() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}
