// Package projections implements read models for CQRS pattern.
// Projections are denormalized views optimized for presentation; the
// export view turns a record into a printable document.
package projections

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/pantau-kelas/monitoring-hub/internal/application/query"
)

// ══════════════════════════════════════════════════════════════════════════════
// EXPORT VIEW - Word-compatible HTML document
// The output opens directly in word processors: a plain HTML table with
// inline styles, no external assets, no scripts.
// ══════════════════════════════════════════════════════════════════════════════

// exportTemplate renders one record as a standalone HTML document.
// Word honours the mso-* hints and inline table styles.
var exportTemplate = template.Must(template.New("export").Parse(`<!DOCTYPE html>
<html xmlns:o="urn:schemas-microsoft-com:office:office" xmlns:w="urn:schemas-microsoft-com:office:word">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: "Times New Roman", serif; font-size: 12pt; }
h1 { font-size: 14pt; text-align: center; margin-bottom: 2pt; }
p.meta { text-align: center; margin-top: 0; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1pt solid #000; padding: 3pt 5pt; vertical-align: top; }
th { background: #d9d9d9; text-align: center; }
div.section { margin-top: 12pt; }
div.section b { display: block; margin-bottom: 3pt; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p class="meta">Kelas {{.ClassName}} &mdash; {{.Date}}{{if .TeacherName}} &mdash; {{.TeacherName}}{{end}}</p>
<table>
<tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr>
{{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{end}}</table>
{{if .TeacherAnalysis}}<div class="section"><b>Analisis Guru</b>{{.TeacherAnalysis}}</div>{{end}}
{{if .SpecialAttention}}<div class="section"><b>Perhatian Khusus</b>{{.SpecialAttention}}</div>{{end}}
{{if .MethodImprovement}}<div class="section"><b>Perbaikan Metode</b>{{.MethodImprovement}}</div>{{end}}
{{if .NextWeekPlan}}<div class="section"><b>Rencana Pekan Depan</b>{{.NextWeekPlan}}</div>{{end}}
{{if .Narrative}}<div class="section"><b>Narasi</b>{{.Narrative}}</div>{{end}}
</body>
</html>
`))

// ExportView renders export tables into downloadable documents.
type ExportView struct{}

// NewExportView creates a new ExportView.
func NewExportView() *ExportView {
	return &ExportView{}
}

// RenderHTML renders the table as a Word-compatible HTML document.
// All cell content is escaped by the template engine.
func (v *ExportView) RenderHTML(table *query.ExportTable) ([]byte, error) {
	if table == nil {
		return nil, fmt.Errorf("projections: cannot render nil export table")
	}

	var buf bytes.Buffer
	if err := exportTemplate.Execute(&buf, table); err != nil {
		return nil, fmt.Errorf("projections: failed to render export: %w", err)
	}
	return buf.Bytes(), nil
}

// FileName suggests a download name for the rendered document.
func (v *ExportView) FileName(table *query.ExportTable) string {
	return fmt.Sprintf("laporan_%s_%s.doc", sanitize(table.ClassName), table.Date)
}

// sanitize strips characters that are unsafe in file names.
func sanitize(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			out = append(out, r)
		case r == '-' || r == '_':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
