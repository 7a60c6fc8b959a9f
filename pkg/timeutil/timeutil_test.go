package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartAndEndOfDay(t *testing.T) {
	ts := time.Date(2025, 6, 3, 14, 30, 45, 0, JakartaTZ)

	start := StartOfDay(ts)
	assert.Equal(t, 0, start.Hour())
	assert.Equal(t, 3, start.Day())

	end := EndOfDay(ts)
	assert.Equal(t, 23, end.Hour())
	assert.Equal(t, 59, end.Minute())
}

func TestStartOfWeek_MondayAnchor(t *testing.T) {
	// 2025-06-03 is a Tuesday; the week starts Monday 2025-06-02.
	tuesday := Date(2025, 6, 3)
	assert.Equal(t, Date(2025, 6, 2), StartOfWeek(tuesday))

	// Sunday belongs to the week that started six days earlier.
	sunday := Date(2025, 6, 8)
	assert.Equal(t, Date(2025, 6, 2), StartOfWeek(sunday))
}

func TestWeeksBack(t *testing.T) {
	base := Date(2025, 6, 3)

	assert.Equal(t, Date(2025, 6, 3), WeeksBack(base, 0))
	assert.Equal(t, Date(2025, 5, 27), WeeksBack(base, 1))
	assert.Equal(t, Date(2025, 5, 13), WeeksBack(base, 3))

	// Same weekday every step.
	assert.Equal(t, base.Weekday(), WeeksBack(base, 2).Weekday())
}

func TestIsSameDay_AcrossTimezones(t *testing.T) {
	// 23:00 UTC on June 2 is 06:00 WIB on June 3.
	utcEvening := time.Date(2025, 6, 2, 23, 0, 0, 0, time.UTC)
	wibMorning := Date(2025, 6, 3)

	assert.True(t, IsSameDay(utcEvening, wibMorning))
}

func TestIsSchoolDay(t *testing.T) {
	assert.True(t, IsSchoolDay(Date(2025, 6, 2)))   // Monday
	assert.True(t, IsSchoolDay(Date(2025, 6, 6)))   // Friday
	assert.False(t, IsSchoolDay(Date(2025, 6, 7)))  // Saturday
	assert.False(t, IsSchoolDay(Date(2025, 6, 8)))  // Sunday
}

func TestFormatHuman(t *testing.T) {
	assert.Equal(t, "Selasa, 3 Juni 2025", FormatHuman(Date(2025, 6, 3)))
	assert.Equal(t, "Minggu, 17 Agustus 2025", FormatHuman(Date(2025, 8, 17)))
}

func TestFormatIndonesian(t *testing.T) {
	assert.Equal(t, "03/06/2025", FormatIndonesian(Date(2025, 6, 3)))
}

func TestParseDate_RoundTrip(t *testing.T) {
	parsed, err := ParseDate("2025-06-03")
	require.NoError(t, err)

	assert.Equal(t, "2025-06-03", FormatDateStr(parsed))
	assert.Equal(t, JakartaTZ.String(), parsed.Location().String())

	_, err = ParseDate("03-06-2025")
	assert.Error(t, err)
}
