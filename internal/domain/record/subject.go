package record

import (
	"time"
)

// Subject identifies which morning program a record covers.
// The string values are a persisted contract shared with exports.
type Subject string

const (
	SubjectTilawati   Subject = "Tilawati"
	SubjectLiterasi   Subject = "Literasi"
	SubjectIbadah     Subject = "Bimbingan Ibadah"
	SubjectKonsultasi Subject = "Konsultasi & Evaluasi"
	SubjectUmum       Subject = "Umum"
)

// AllSubjects lists every subject in display order.
var AllSubjects = []Subject{
	SubjectTilawati,
	SubjectLiterasi,
	SubjectIbadah,
	SubjectKonsultasi,
	SubjectUmum,
}

// IsValid checks if the subject is one of the known subjects.
func (s Subject) IsValid() bool {
	switch s {
	case SubjectTilawati, SubjectLiterasi, SubjectIbadah, SubjectKonsultasi, SubjectUmum:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s Subject) String() string {
	return string(s)
}

// SubjectForDate returns the subject scheduled for the given date.
// The weekly timetable is fixed: Tuesday and Wednesday are Tilawati,
// Thursday is Literasi, Friday is Bimbingan Ibadah, Saturday is
// Konsultasi & Evaluasi, and the remaining days fall back to Umum.
func SubjectForDate(t time.Time) Subject {
	switch t.Weekday() {
	case time.Tuesday, time.Wednesday:
		return SubjectTilawati
	case time.Thursday:
		return SubjectLiterasi
	case time.Friday:
		return SubjectIbadah
	case time.Saturday:
		return SubjectKonsultasi
	default:
		return SubjectUmum
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Field semantics per subject
// ═══════════════════════════════════════════════════════════════════════════

// ScoreField names one of the four generic 1..4 observation fields.
// The storage shape is uniform across subjects so aggregation stays
// subject-agnostic; only the meaning changes per subject.
type ScoreField string

const (
	FieldInvolvement ScoreField = "activeInvolvement"
	FieldFluency     ScoreField = "fluency"
	FieldTajwid      ScoreField = "tajwid"
	FieldAdab        ScoreField = "adab"
)

// ScaleFields lists the four generic fields in storage order.
var ScaleFields = []ScoreField{FieldInvolvement, FieldFluency, FieldTajwid, FieldAdab}

// IsValid checks if the field name is one of the four scale fields.
func (f ScoreField) IsValid() bool {
	switch f {
	case FieldInvolvement, FieldFluency, FieldTajwid, FieldAdab:
		return true
	default:
		return false
	}
}

// FieldLabel returns the semantic label of a generic field under a subject.
// Konsultasi repurposes all four fields for grooming, uniform, health, and
// counseling responsiveness; Tilawati reads them as recitation metrics.
func FieldLabel(subject Subject, field ScoreField) string {
	switch subject {
	case SubjectKonsultasi:
		switch field {
		case FieldInvolvement:
			return "Kerapian"
		case FieldFluency:
			return "Atribut/Seragam"
		case FieldTajwid:
			return "Kesehatan/Fisik"
		case FieldAdab:
			return "Respon Konseling"
		}
	case SubjectTilawati:
		switch field {
		case FieldInvolvement:
			return "Keaktifan"
		case FieldFluency:
			return "Kelancaran (Fashohah)"
		case FieldTajwid:
			return "Tajwid"
		case FieldAdab:
			return "Adab"
		}
	}
	switch field {
	case FieldInvolvement:
		return "Keaktifan"
	case FieldFluency:
		return "Kelancaran"
	case FieldTajwid:
		return "Fokus"
	case FieldAdab:
		return "Adab"
	}
	return string(field)
}

// ScaleOption is one selectable value of a scale field with its display label.
type ScaleOption struct {
	Value int
	Label string
}

// Generic rubric labels shared by Umum and Bimbingan Ibadah.
var genericScaleOptions = []ScaleOption{
	{4, "Sangat Baik"},
	{3, "Baik"},
	{2, "Perlu Bimbingan"},
	{1, "Butuh Pendampingan"},
}

var tilawatiScaleOptions = map[ScoreField][]ScaleOption{
	FieldFluency: {
		{4, "Sangat Lancar (Fashohah)"},
		{3, "Lancar"},
		{2, "Terbata-bata"},
		{1, "Macet/Tidak Baca"},
	},
	FieldTajwid: {
		{4, "Tajwid Sempurna"},
		{3, "Ada Salah Ringan"},
		{2, "Banyak Salah"},
		{1, "Belum Paham"},
	},
	FieldAdab: {
		{4, "Sangat Tertib"},
		{3, "Tertib"},
		{2, "Kurang Fokus"},
		{1, "Mengganggu"},
	},
}

var konsultasiScaleOptions = map[ScoreField][]ScaleOption{
	FieldInvolvement: {
		{4, "Rapi Sempurna (Lengkap)"},
		{3, "Cukup Rapi"},
		{2, "Kurang Rapi (Rambut/Kuku)"},
		{1, "Tidak Rapi/Berantakan"},
	},
	FieldFluency: {
		{4, "Lengkap Sesuai Hari"},
		{3, "Lengkap (Beda Kaos Kaki dll)"},
		{2, "Kurang (Dasi/Sabuk)"},
		{1, "Salah Seragam"},
	},
	FieldTajwid: {
		{4, "Sehat Bugar"},
		{3, "Kurang Fit (Lemas)"},
		{2, "Sakit Ringan (Flu/Batuk)"},
		{1, "Sakit Berat/Butuh UKS"},
	},
	FieldAdab: {
		{4, "Sangat Terbuka/Curhat"},
		{3, "Kooperatif"},
		{2, "Tertutup/Pasif"},
		{1, "Menolak/Defensif"},
	},
}

// ScaleOptions returns the selectable options for a field under a subject.
// The same tables drive both form entry and export labelling so the two
// surfaces can never drift apart.
func ScaleOptions(subject Subject, field ScoreField) []ScaleOption {
	switch subject {
	case SubjectTilawati:
		if opts, ok := tilawatiScaleOptions[field]; ok {
			return opts
		}
	case SubjectKonsultasi:
		if opts, ok := konsultasiScaleOptions[field]; ok {
			return opts
		}
	}
	return genericScaleOptions
}

// ScaleLabel maps a numeric scale value to its display label for the
// given subject and field. Values outside 1..4 map to the lowest label.
func ScaleLabel(subject Subject, field ScoreField, value int) string {
	opts := ScaleOptions(subject, field)
	for _, o := range opts {
		if o.Value == value {
			return o.Label
		}
	}
	return opts[len(opts)-1].Label
}

// ═══════════════════════════════════════════════════════════════════════════
// Subject-specific option lists
// ═══════════════════════════════════════════════════════════════════════════

// JilidOptions is the fixed ordered list of Tilawati textbook levels.
var JilidOptions = []string{
	"Jilid 1", "Jilid 2", "Jilid 3", "Jilid 4", "Jilid 5", "Jilid 6", "Al-Qur'an", "Juz 30",
}

// DefaultJilid is the level assigned to a fresh score sheet.
const DefaultJilid = "Jilid 1"

// ConsultationTopics is the fixed list of counseling topics for Saturday
// sessions. The first entry is the neutral "no issue" topic.
var ConsultationTopics = []string{
	"Aman/Nihil",
	"Akademik/Nilai",
	"Keuangan/SPP",
	"Kesehatan",
	"Keluarga/Home",
	"Bullying/Sosial",
	"Pelanggaran Tata Tertib",
	"Ibadah/Sholat",
}
