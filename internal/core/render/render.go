// Package render turns report variables into static HTML pages
package render

import (
	"bytes"
	"embed"
	"html/template"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"

	perr "immiwatch/internal/platform/errors"
)

//go:embed templates/*.html
var templateFS embed.FS

// MonthlyReport is the template id for a month-to-date report page
const MonthlyReport = "monthly_report"

var (
	once    sync.Once
	tmpl    *template.Template
	loadErr error
)

var funcs = template.FuncMap{
	"comma": func(n int) string { return humanize.Comma(int64(n)) },
	"lower": strings.ToLower,
}

func templates() (*template.Template, error) {
	once.Do(func() {
		tmpl, loadErr = template.New("").
			Funcs(funcs).
			Option("missingkey=error").
			ParseFS(templateFS, "templates/*.html")
	})
	return tmpl, loadErr
}

// Render executes templateID against vars. The output depends only on the inputs
func Render(templateID string, vars map[string]any) (string, error) {
	t, err := templates()
	if err != nil {
		return "", perr.Wrap(err, perr.ErrorCodeUnknown, "render: parse templates")
	}
	page := t.Lookup(templateID + ".html")
	if page == nil {
		return "", perr.Newf(perr.ErrorCodeNotFound, "render: unknown template %q", templateID)
	}
	var buf bytes.Buffer
	if err := page.Execute(&buf, vars); err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeUnknown, "render: execute %s", templateID)
	}
	return buf.String(), nil
}
