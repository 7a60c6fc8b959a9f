// Package timeutil provides timezone utilities for Western Indonesia Time
// (WIB, UTC+7). Monitoring happens in the morning session of an Indonesian
// school, so record dates, the weekday timetable, and report headers all
// follow the Jakarta clock. No external dependencies - uses only standard
// library.
package timeutil

import (
	"fmt"
	"time"
)

// JakartaTZ is the Western Indonesia timezone (UTC+7, no DST).
var JakartaTZ = time.FixedZone("Asia/Jakarta", 7*60*60)

// Now returns the current time in Jakarta timezone.
func Now() time.Time {
	return time.Now().In(JakartaTZ)
}

// ToJakarta converts a time to Jakarta timezone.
func ToJakarta(t time.Time) time.Time {
	return t.In(JakartaTZ)
}

// Date creates a time in Jakarta timezone with the given date.
func Date(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, JakartaTZ)
}

// StartOfDay returns the start of the day (00:00:00) in Jakarta timezone.
func StartOfDay(t time.Time) time.Time {
	local := ToJakarta(t)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, JakartaTZ)
}

// EndOfDay returns the end of the day (23:59:59.999999999) in Jakarta timezone.
func EndOfDay(t time.Time) time.Time {
	local := ToJakarta(t)
	return time.Date(local.Year(), local.Month(), local.Day(), 23, 59, 59, 999999999, JakartaTZ)
}

// StartOfWeek returns the start of the week (Monday 00:00:00) in Jakarta timezone.
func StartOfWeek(t time.Time) time.Time {
	local := ToJakarta(t)
	weekday := int(local.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday
	}
	return StartOfDay(local.AddDate(0, 0, -(weekday - 1)))
}

// EndOfWeek returns the end of the week (Sunday 23:59:59) in Jakarta timezone.
func EndOfWeek(t time.Time) time.Time {
	return EndOfDay(StartOfWeek(t).AddDate(0, 0, 6))
}

// WeeksBack returns the date n whole weeks before t, same weekday.
// Bulk synthesis uses this to step the batch back one week at a time.
func WeeksBack(t time.Time, n int) time.Time {
	return StartOfDay(t).AddDate(0, 0, -7*n)
}

// IsToday checks if the given time is today in Jakarta timezone.
func IsToday(t time.Time) bool {
	return IsSameDay(t, Now())
}

// IsSameDay checks if two times are on the same day in Jakarta timezone.
func IsSameDay(t1, t2 time.Time) bool {
	a, b := ToJakarta(t1), ToJakarta(t2)
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// DaysSince calculates the number of days since the given time.
func DaysSince(t time.Time) int {
	return int(StartOfDay(Now()).Sub(StartOfDay(t)).Hours() / 24)
}

// IsWeekend checks if the given time is on a weekend.
func IsWeekend(t time.Time) bool {
	weekday := ToJakarta(t).Weekday()
	return weekday == time.Saturday || weekday == time.Sunday
}

// IsSchoolDay checks if the given time is on a school day (Mon-Fri).
// The morning monitoring timetable only covers school days.
func IsSchoolDay(t time.Time) bool {
	return !IsWeekend(t)
}

// Common date/time formats.
const (
	// FormatDate is the standard date format (YYYY-MM-DD), the canonical
	// record date representation.
	FormatDate = "2006-01-02"
	// FormatTime is the standard time format (HH:MM).
	FormatTime = "15:04"
	// FormatDateTime is the standard datetime format.
	FormatDateTime = "2006-01-02 15:04"
	// FormatIndonesianDate is the Indonesian short date format (DD/MM/YYYY).
	FormatIndonesianDate = "02/01/2006"
)

// FormatJakarta formats a time in Jakarta timezone with the given layout.
func FormatJakarta(t time.Time, layout string) string {
	return ToJakarta(t).Format(layout)
}

// FormatDateStr formats a time as a date string (YYYY-MM-DD) in Jakarta timezone.
func FormatDateStr(t time.Time) string {
	return FormatJakarta(t, FormatDate)
}

// FormatIndonesian formats a time in Indonesian short format (DD/MM/YYYY).
func FormatIndonesian(t time.Time) string {
	return FormatJakarta(t, FormatIndonesianDate)
}

// FormatHuman formats a time as a full Indonesian date,
// e.g. "Selasa, 3 Juni 2025". Report headers use this form.
func FormatHuman(t time.Time) string {
	local := ToJakarta(t)
	return fmt.Sprintf("%s, %d %s %d",
		WeekdayName(local), local.Day(), MonthName(local.Month()), local.Year())
}

// ParseJakarta parses a time string in Jakarta timezone.
func ParseJakarta(layout, value string) (time.Time, error) {
	return time.ParseInLocation(layout, value, JakartaTZ)
}

// ParseDate parses a date string (YYYY-MM-DD) in Jakarta timezone.
func ParseDate(value string) (time.Time, error) {
	return ParseJakarta(FormatDate, value)
}

// WeekdayName returns the Indonesian name for the weekday.
func WeekdayName(t time.Time) string {
	switch ToJakarta(t).Weekday() {
	case time.Monday:
		return "Senin"
	case time.Tuesday:
		return "Selasa"
	case time.Wednesday:
		return "Rabu"
	case time.Thursday:
		return "Kamis"
	case time.Friday:
		return "Jumat"
	case time.Saturday:
		return "Sabtu"
	case time.Sunday:
		return "Minggu"
	default:
		return ""
	}
}

// MonthName returns the Indonesian name for a month.
func MonthName(m time.Month) string {
	names := []string{
		"", "Januari", "Februari", "Maret", "April", "Mei", "Juni",
		"Juli", "Agustus", "September", "Oktober", "November", "Desember",
	}
	if int(m) >= 1 && int(m) <= 12 {
		return names[m]
	}
	return ""
}
