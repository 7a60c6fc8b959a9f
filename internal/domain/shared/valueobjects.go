// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ═══════════════════════════════════════════════════════════════════════════
// ID Value Objects
// ═══════════════════════════════════════════════════════════════════════════

// RecordID represents a unique daily record identifier (UUID format).
type RecordID string

// UUID validation regex (simple version).
var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// IsValid checks if the record ID is a valid UUID.
func (r RecordID) IsValid() bool {
	return uuidRegex.MatchString(string(r))
}

// String returns the string representation.
func (r RecordID) String() string {
	return string(r)
}

// IsEmpty checks if the ID is empty.
func (r RecordID) IsEmpty() bool {
	return r == ""
}

// NewRecordID creates a new RecordID with validation.
func NewRecordID(id string) (RecordID, error) {
	rid := RecordID(strings.ToLower(strings.TrimSpace(id)))
	if !rid.IsValid() {
		return "", NewDomainError("shared", "NewRecordID", ErrInvalidID, "invalid record ID format")
	}
	return rid, nil
}

// ClassID represents a class identifier (e.g. "7A", "9C").
type ClassID string

// Class IDs are a grade number followed by an uppercase section letter.
var classIDRegex = regexp.MustCompile(`^[0-9]{1,2}[A-Z]$`)

// IsValid checks if the class ID format is valid.
func (c ClassID) IsValid() bool {
	return classIDRegex.MatchString(string(c))
}

// String returns the string representation.
func (c ClassID) String() string {
	return string(c)
}

// Grade extracts the grade number from the class ID.
func (c ClassID) Grade() int {
	s := string(c)
	if len(s) < 2 {
		return 0
	}
	grade := 0
	fmt.Sscanf(s[:len(s)-1], "%d", &grade)
	return grade
}

// Section extracts the section letter from the class ID.
func (c ClassID) Section() string {
	s := string(c)
	if len(s) == 0 {
		return ""
	}
	return s[len(s)-1:]
}

// NewClassID creates a new ClassID with validation.
func NewClassID(id string) (ClassID, error) {
	cid := ClassID(strings.ToUpper(strings.TrimSpace(id)))
	if !cid.IsValid() {
		return "", NewDomainError("shared", "NewClassID", ErrInvalidID, "invalid class ID format, expected grade+section like 7A")
	}
	return cid, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// DateString Value Object
// ═══════════════════════════════════════════════════════════════════════════

// DateString represents a calendar date in YYYY-MM-DD form.
// Records are keyed by this string, so it must always round-trip cleanly.
type DateString string

// DateLayout is the canonical storage layout for record dates.
const DateLayout = "2006-01-02"

var dateStringRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// IsValid checks both the shape and that the value is a real calendar date.
// "2025-02-30" matches the shape but is rejected here.
func (d DateString) IsValid() bool {
	if !dateStringRegex.MatchString(string(d)) {
		return false
	}
	_, err := time.Parse(DateLayout, string(d))
	return err == nil
}

// String returns the string representation.
func (d DateString) String() string {
	return string(d)
}

// Time parses the date into a time.Time (UTC midnight).
func (d DateString) Time() (time.Time, error) {
	return time.Parse(DateLayout, string(d))
}

// Weekday returns the weekday of the date. Invalid dates return Sunday.
func (d DateString) Weekday() time.Weekday {
	t, err := d.Time()
	if err != nil {
		return time.Sunday
	}
	return t.Weekday()
}

// Before reports whether d sorts before other. Lexicographic comparison is
// correct for the fixed-width layout.
func (d DateString) Before(other DateString) bool {
	return string(d) < string(other)
}

// NewDateString creates a new DateString with validation.
func NewDateString(value string) (DateString, error) {
	d := DateString(strings.TrimSpace(value))
	if !d.IsValid() {
		return "", NewDomainError("shared", "NewDateString", ErrInvalidDate, "date must be a valid YYYY-MM-DD calendar date")
	}
	return d, nil
}

// DateOf formats a time.Time as a DateString.
func DateOf(t time.Time) DateString {
	return DateString(t.Format(DateLayout))
}

// ═══════════════════════════════════════════════════════════════════════════
// ScaleScore Value Object
// ═══════════════════════════════════════════════════════════════════════════

// ScaleScore represents an observation score on the 1..4 scale used for
// involvement, fluency, tajwid, and adab.
type ScaleScore int

const (
	MinScaleScore ScaleScore = 1
	MaxScaleScore ScaleScore = 4
)

// IsValid checks if the score is within valid range.
func (s ScaleScore) IsValid() bool {
	return s >= MinScaleScore && s <= MaxScaleScore
}

// Int returns the underlying int value.
func (s ScaleScore) Int() int {
	return int(s)
}

// Label returns the Indonesian qualitative label used in exports.
func (s ScaleScore) Label() string {
	switch s {
	case 4:
		return "Sangat Baik"
	case 3:
		return "Baik"
	case 2:
		return "Cukup"
	default:
		return "Kurang"
	}
}

// NewScaleScore creates a new ScaleScore with validation.
func NewScaleScore(value int) (ScaleScore, error) {
	s := ScaleScore(value)
	if !s.IsValid() {
		return 0, ErrScoreOutOfRange
	}
	return s, nil
}

// AverageScale calculates the average from a slice of scale scores.
func AverageScale(scores []ScaleScore) float64 {
	if len(scores) == 0 {
		return 0
	}
	sum := 0
	for _, s := range scores {
		sum += int(s)
	}
	return float64(sum) / float64(len(scores))
}

// ═══════════════════════════════════════════════════════════════════════════
// Role Value Object
// ═══════════════════════════════════════════════════════════════════════════

// Role represents an access role on the monitoring surface.
type Role string

const (
	// RoleTeacher can record and view data for their own classes.
	RoleTeacher Role = "teacher"
	// RoleAdmin can additionally delete records, register classes,
	// and trigger bulk generation.
	RoleAdmin Role = "admin"
)

// IsValid checks if the role is one of the known roles.
func (r Role) IsValid() bool {
	return r == RoleTeacher || r == RoleAdmin
}

// String returns the string representation.
func (r Role) String() string {
	return string(r)
}

// CanManage reports whether the role may perform administrative operations.
func (r Role) CanManage() bool {
	return r == RoleAdmin
}

// NewRole creates a new Role with validation.
func NewRole(value string) (Role, error) {
	role := Role(strings.ToLower(strings.TrimSpace(value)))
	if !role.IsValid() {
		return "", NewDomainError("shared", "NewRole", ErrInvalidInput, "role must be teacher or admin")
	}
	return role, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// TimeRange Value Object
// ═══════════════════════════════════════════════════════════════════════════

// TimeRange represents a time period.
type TimeRange struct {
	From time.Time
	To   time.Time
}

// IsValid checks if the time range is valid.
func (t TimeRange) IsValid() bool {
	return !t.From.IsZero() && !t.To.IsZero() && !t.From.After(t.To)
}

// Duration returns the duration of the time range.
func (t TimeRange) Duration() time.Duration {
	return t.To.Sub(t.From)
}

// Contains checks if a time is within the range.
func (t TimeRange) Contains(tm time.Time) bool {
	return (tm.Equal(t.From) || tm.After(t.From)) && (tm.Equal(t.To) || tm.Before(t.To))
}

// NewTimeRange creates a new TimeRange with validation.
func NewTimeRange(from, to time.Time) (TimeRange, error) {
	tr := TimeRange{From: from, To: to}
	if !tr.IsValid() {
		return TimeRange{}, NewDomainError("shared", "NewTimeRange", ErrInvalidInput, "'from' must be before 'to'")
	}
	return tr, nil
}

// Today returns a TimeRange for today (local time).
func Today() TimeRange {
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := start.Add(24 * time.Hour).Add(-time.Nanosecond)
	return TimeRange{From: start, To: end}
}

// LastNDays returns a TimeRange for the last N days.
func LastNDays(n int) TimeRange {
	now := time.Now()
	return TimeRange{
		From: now.AddDate(0, 0, -n),
		To:   now,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Pagination Value Object
// ═══════════════════════════════════════════════════════════════════════════

// Pagination represents pagination parameters.
type Pagination struct {
	Page     int
	PageSize int
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Offset returns the offset for database queries.
func (p Pagination) Offset() int {
	if p.Page <= 0 {
		return 0
	}
	return (p.Page - 1) * p.Limit()
}

// Limit returns the limit for database queries.
func (p Pagination) Limit() int {
	if p.PageSize <= 0 {
		return DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		return MaxPageSize
	}
	return p.PageSize
}

// NewPagination creates a new Pagination with defaults.
func NewPagination(page, pageSize int) Pagination {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return Pagination{Page: page, PageSize: pageSize}
}

// DefaultPagination returns default pagination.
func DefaultPagination() Pagination {
	return NewPagination(1, DefaultPageSize)
}
