package record

// Note-template pools keyed by subject and performance bucket. These are a
// closed lookup table: subjects without their own pool fall back to the
// generic pool for the same bucket.

var tilawatiNotes = map[PerformanceLevel][]string{
	PerformanceHigh: {
		"Bacaan sangat tartil dan fashohah baik.",
		"Makhraj huruf sempurna, siap naik halaman.",
		"Tajwid konsisten, nada bacaan indah.",
		"Sangat semangat dan fokus saat mengaji.",
		"Mampu membimbing teman sebaya.",
	},
	PerformanceMedium: {
		"Kelancaran baik, perhatikan panjang pendek mad.",
		"Hati-hati pada huruf yang mirip (Makhraj).",
		"Dengung (Ghunnah) perlu ditahan lebih lama.",
		"Bacaan cukup baik namun kurang percaya diri.",
		"Perlu lebih teliti pada tanda wakaf.",
	},
	PerformanceLow: {
		"Perlu pendampingan khusus makhraj huruf.",
		"Belum lancar menyambung huruf hijaiyah.",
		"Fokus sering teralihkan saat mengaji.",
		"Butuh remedial untuk penguatan dasar.",
		"Mohon latihan tambahan di rumah (PR).",
	},
}

var literasiNotes = map[PerformanceLevel][]string{
	PerformanceHigh: {
		"Pemahaman bacaan sangat mendalam.",
		"Mampu menceritakan kembali dengan detail.",
		"Sangat antusias menjawab pertanyaan kuis.",
		"Kosa kata luas dan artikulasi jelas.",
		"Menjadi teladan dalam kegiatan membaca.",
	},
	PerformanceMedium: {
		"Memahami isi bacaan secara garis besar.",
		"Perlu lebih teliti membaca soal.",
		"Cukup aktif namun kadang ragu menjawab.",
		"Kecepatan membaca perlu ditingkatkan.",
		"Fokus membaca perlu dijaga konsistensinya.",
	},
	PerformanceLow: {
		"Kesulitan memahami inti bacaan.",
		"Butuh bimbingan membaca kata per kata.",
		"Kurang fokus menyelesaikan bacaan.",
		"Perlu motivasi lebih untuk membaca mandiri.",
		"Kosakata masih terbatas.",
	},
}

var konsultasiNotes = map[PerformanceLevel][]string{
	PerformanceHigh: {
		"Siswa sangat terbuka menceritakan masalahnya.",
		"Penampilan sangat rapi, menjadi contoh teladan.",
		"Tidak ada keluhan berarti minggu ini.",
		"Komitmen perbaikan diri sangat kuat.",
		"Kondisi fisik dan mental sangat prima.",
	},
	PerformanceMedium: {
		"Perlu diingatkan masalah atribut seragam.",
		"Ada sedikit keluhan lelah/kurang tidur.",
		"Cukup kooperatif namun butuh pancingan cerita.",
		"Berjanji akan memperbaiki kedisiplinan.",
		"Perlu perhatian pada kebersihan kuku/rambut.",
	},
	PerformanceLow: {
		"Tampak murung dan menarik diri (perlu BK).",
		"Terindikasi masalah bullying/sosial dikelas.",
		"Ada masalah keuangan yang perlu bantuan sekolah.",
		"Sering melanggar tata tertib (rambut/seragam).",
		"Kesehatan menurun drastis, perlu info ortu.",
	},
}

var genericNotes = map[PerformanceLevel][]string{
	PerformanceHigh: {
		"Sangat aktif dan bersemangat hari ini.",
		"Menunjukkan kepemimpinan yang baik di kelas.",
		"Adab dan perilaku sangat terpuji.",
		"Menyelesaikan tugas dengan sempurna.",
	},
	PerformanceMedium: {
		"Mengikuti kegiatan dengan cukup baik.",
		"Perlu lebih proaktif bertanya.",
		"Kehadiran tepat waktu dan tertib.",
		"Ada sedikit kendala namun bisa diatasi.",
	},
	PerformanceLow: {
		"Tampak mengantuk/kurang sehat hari ini.",
		"Sering mengobrol saat kegiatan berlangsung.",
		"Datang terlambat dan kurang persiapan.",
		"Perlu pendekatan personal dari wali kelas.",
	},
}

var subjectNotes = map[Subject]map[PerformanceLevel][]string{
	SubjectTilawati:   tilawatiNotes,
	SubjectLiterasi:   literasiNotes,
	SubjectKonsultasi: konsultasiNotes,
}

// NotePool returns the template pool for a subject and performance bucket.
// Subjects without their own pool (Umum, Bimbingan Ibadah) get the generic
// pool. The returned slice is shared; callers must not mutate it.
func NotePool(subject Subject, level PerformanceLevel) []string {
	if pools, ok := subjectNotes[subject]; ok {
		if pool, ok := pools[level]; ok {
			return pool
		}
	}
	return genericNotes[level]
}

// SuggestNotes classifies the score and returns the matching template pool.
func SuggestNotes(score StudentScore, subject Subject) []string {
	return NotePool(subject, ClassifyPerformance(score, subject))
}
