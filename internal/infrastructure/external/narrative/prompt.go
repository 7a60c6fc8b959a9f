package narrative

import (
	"fmt"
	"strings"

	"github.com/pantau-kelas/monitoring-hub/internal/domain/record"
	"github.com/pantau-kelas/monitoring-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROMPT ASSEMBLY
// The prompt is plain Indonesian text: session metadata, one line per
// student, then an instruction matching the requested mode. The response
// is stored verbatim, so the prompt asks for prose without markup.
// ══════════════════════════════════════════════════════════════════════════════

// BuildPrompt renders the generation prompt for one record.
func BuildPrompt(req record.NarrativeRequest) string {
	rec := req.Record

	var b strings.Builder
	b.WriteString("Anda adalah asisten guru yang menulis narasi monitoring kelas.\n\n")
	fmt.Fprintf(&b, "Kegiatan: %s\n", rec.Subject)
	fmt.Fprintf(&b, "Kelas: %s\n", rec.ClassID)
	fmt.Fprintf(&b, "Tanggal: %s\n", promptDate(rec.Date.String()))
	if rec.TeacherName != "" {
		fmt.Fprintf(&b, "Guru: %s\n", rec.TeacherName)
	}

	b.WriteString("\nData siswa:\n")
	for i := range rec.StudentScores {
		b.WriteString(studentLine(rec.Subject, &rec.StudentScores[i]))
		b.WriteString("\n")
	}

	if rec.TeacherAnalysis != "" {
		fmt.Fprintf(&b, "\nAnalisis guru: %s\n", rec.TeacherAnalysis)
	}
	if rec.Recommendations.SpecialAttention != "" {
		fmt.Fprintf(&b, "Perhatian khusus: %s\n", rec.Recommendations.SpecialAttention)
	}
	if rec.Recommendations.NextWeekPlan != "" {
		fmt.Fprintf(&b, "Rencana pekan depan: %s\n", rec.Recommendations.NextWeekPlan)
	}

	b.WriteString("\n")
	b.WriteString(instruction(req.Mode))
	return b.String()
}

// studentLine renders one student's entry as a compact sentence fragment.
func studentLine(subject record.Subject, s *record.StudentScore) string {
	var b strings.Builder
	fmt.Fprintf(&b, "- %s: %s", s.StudentName, s.Attendance.Label())

	if !s.Attendance.IsAttending() {
		if s.Notes != "" {
			fmt.Fprintf(&b, " (%s)", s.Notes)
		}
		return b.String()
	}

	for _, f := range record.ScaleFields {
		value := s.Field(f)
		if value == 0 {
			continue
		}
		fmt.Fprintf(&b, ", %s: %s", record.FieldLabel(subject, f), record.ScaleLabel(subject, f, value))
	}

	switch subject {
	case record.SubjectTilawati:
		if s.Jilid != "" {
			fmt.Fprintf(&b, ", Jilid %s hal. %s", s.Jilid, s.Page)
		}
	case record.SubjectLiterasi:
		if s.LiteracyTotalQuestions > 0 {
			fmt.Fprintf(&b, ", nilai literasi %d (%d/%d benar)",
				s.LiteracyScore, s.LiteracyCorrect, s.LiteracyTotalQuestions)
		}
	}

	if s.Notes != "" {
		fmt.Fprintf(&b, ". Catatan: %s", s.Notes)
	}
	return b.String()
}

// instruction returns the closing instruction for the given mode.
func instruction(mode record.NarrativeMode) string {
	switch mode {
	case record.NarrativeWeekly:
		return "Tuliskan narasi mingguan 2-3 paragraf yang merangkum perkembangan kelas, " +
			"menyoroti tren kehadiran dan capaian siswa, dalam bahasa Indonesia yang hangat " +
			"dan profesional. Jangan gunakan format markdown."
	case record.NarrativeMonthly:
		return "Tuliskan narasi bulanan 3-4 paragraf yang mengevaluasi perkembangan kelas " +
			"secara menyeluruh beserta rekomendasi tindak lanjut, dalam bahasa Indonesia " +
			"yang hangat dan profesional. Jangan gunakan format markdown."
	default:
		return "Tuliskan narasi harian 1-2 paragraf yang merangkum kegiatan di atas untuk " +
			"dibagikan kepada orang tua, dalam bahasa Indonesia yang hangat dan profesional. " +
			"Jangan gunakan format markdown."
	}
}

// promptDate renders the record date as a full Indonesian date, e.g.
// "Selasa, 3 Juni 2025". Falls back to the raw string on parse failure.
func promptDate(date string) string {
	t, err := timeutil.ParseDate(date)
	if err != nil {
		return date
	}
	return timeutil.FormatHuman(t)
}
