package record

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSubjectForDate_WeeklyTimetable(t *testing.T) {
	// 2025-06-01 is a Sunday; walk a full week.
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	expected := map[time.Weekday]Subject{
		time.Sunday:    SubjectUmum,
		time.Monday:    SubjectUmum,
		time.Tuesday:   SubjectTilawati,
		time.Wednesday: SubjectTilawati,
		time.Thursday:  SubjectLiterasi,
		time.Friday:    SubjectIbadah,
		time.Saturday:  SubjectKonsultasi,
	}

	for i := 0; i < 7; i++ {
		day := base.AddDate(0, 0, i)
		assert.Equal(t, expected[day.Weekday()], SubjectForDate(day), "weekday %s", day.Weekday())
	}
}

func TestSubjectForDate_StableAcrossTimezones(t *testing.T) {
	// Same calendar day expressed in different zones must map identically
	// as long as the local date is the same.
	jakarta := time.FixedZone("WIB", 7*3600)

	utcNoon := time.Date(2025, 6, 3, 12, 0, 0, 0, time.UTC)      // Tuesday
	wibNoon := time.Date(2025, 6, 3, 12, 0, 0, 0, jakarta)       // Tuesday
	wibEarly := time.Date(2025, 6, 3, 0, 30, 0, 0, jakarta)      // still Tuesday locally

	assert.Equal(t, SubjectTilawati, SubjectForDate(utcNoon))
	assert.Equal(t, SubjectTilawati, SubjectForDate(wibNoon))
	assert.Equal(t, SubjectTilawati, SubjectForDate(wibEarly))
}

func TestSubject_IsValid(t *testing.T) {
	for _, s := range AllSubjects {
		assert.True(t, s.IsValid(), s)
	}
	assert.False(t, Subject("Matematika").IsValid())
	assert.False(t, Subject("").IsValid())
}

func TestFieldLabel_KonsultasiRepurposing(t *testing.T) {
	assert.Equal(t, "Kerapian", FieldLabel(SubjectKonsultasi, FieldInvolvement))
	assert.Equal(t, "Atribut/Seragam", FieldLabel(SubjectKonsultasi, FieldFluency))
	assert.Equal(t, "Kesehatan/Fisik", FieldLabel(SubjectKonsultasi, FieldTajwid))
	assert.Equal(t, "Respon Konseling", FieldLabel(SubjectKonsultasi, FieldAdab))

	assert.Equal(t, "Tajwid", FieldLabel(SubjectTilawati, FieldTajwid))
	assert.Equal(t, "Fokus", FieldLabel(SubjectUmum, FieldTajwid))
}

func TestScaleLabel_SharedBetweenEntryAndExport(t *testing.T) {
	assert.Equal(t, "Sangat Lancar (Fashohah)", ScaleLabel(SubjectTilawati, FieldFluency, 4))
	assert.Equal(t, "Sehat Bugar", ScaleLabel(SubjectKonsultasi, FieldTajwid, 4))
	assert.Equal(t, "Baik", ScaleLabel(SubjectUmum, FieldInvolvement, 3))

	// Out-of-range values collapse to the lowest label instead of failing.
	assert.Equal(t, "Butuh Pendampingan", ScaleLabel(SubjectUmum, FieldInvolvement, 0))
}
