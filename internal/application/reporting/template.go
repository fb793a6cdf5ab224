package reporting

import (
	"bytes"
	"embed"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/turtacn/Resonance-Intelligence/pkg/errors"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// CampaignReportTemplate is the name of the embedded campaign report template.
const CampaignReportTemplate = "campaign_report.md.tmpl"

// templateFuncs are available to every report template.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"comma": thousands,
		"f2":    func(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) },
		"pct":   func(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) },
		"inc":   func(i int) int { return i + 1 },
		"join":  strings.Join,
		"label": issueLabel,
		"title": func(s string) string { return titleCase(issueLabel(s)) },
	}
}

// Engine renders named templates.
type Engine struct {
	tmpl *template.Template
}

// NewEngine parses the embedded templates.
func NewEngine() (*Engine, error) {
	t, err := template.New("reports").Funcs(templateFuncs()).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeReportFailed, "failed to parse report templates")
	}
	return &Engine{tmpl: t}, nil
}

// Render executes the named template with data.
func (e *Engine) Render(name string, data interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := e.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeReportFailed, fmt.Sprintf("failed to render %s", name))
	}
	return buf.Bytes(), nil
}

// thousands formats n with comma separators.
func thousands(n int) string {
	s := strconv.Itoa(n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

func issueLabel(s string) string { return strings.ReplaceAll(s, "_", " ") }

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}

//Personal.AI order the ending
