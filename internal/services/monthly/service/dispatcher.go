package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"immiwatch/internal/core/insights"
	"immiwatch/internal/core/programs"
	"immiwatch/internal/core/render"
	perr "immiwatch/internal/platform/errors"
	"immiwatch/internal/services/monthly/domain"
	"immiwatch/internal/services/monthly/engine"
	"immiwatch/internal/services/monthly/repo"
)

// ProgramRow is one line of the program breakdown table
type ProgramRow struct {
	Code    string
	Label   string
	ITAs    int
	Percent string
	Status  string
}

// Dispatcher renders a bucket wholesale and writes it under OutputDir
type Dispatcher struct {
	OutputDir string
	SiteURL   string
	Cat       *programs.Catalogue
}

var _ domain.Renderer = (*Dispatcher)(nil)

// NewDispatcher builds a file-writing renderer
func NewDispatcher(outputDir, siteURL string, cat *programs.Catalogue) *Dispatcher {
	return &Dispatcher{OutputDir: outputDir, SiteURL: siteURL, Cat: cat}
}

// Regenerate implements domain.Renderer. Failures wrap ErrRender
func (d *Dispatcher) Regenerate(ctx context.Context, b domain.MonthBucket) (domain.Artifact, error) {
	if err := ctx.Err(); err != nil {
		return domain.Artifact{}, renderErr(b.ID, err)
	}
	html, err := render.Render(render.MonthlyReport, d.Vars(b))
	if err != nil {
		return domain.Artifact{}, renderErr(b.ID, err)
	}
	dir := filepath.Join(d.OutputDir, b.Month.Directory)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return domain.Artifact{}, renderErr(b.ID, err)
	}
	path := filepath.Join(dir, "index.html")
	if err := repo.WriteAtomic(dir, path, []byte(html)); err != nil {
		return domain.Artifact{}, renderErr(b.ID, err)
	}
	return domain.Artifact{Path: path, Bytes: len(html)}, nil
}

// Vars builds the template variables for b
func (d *Dispatcher) Vars(b domain.MonthBucket) map[string]any {
	t := engine.Totals(b)
	title := cases.Title(language.English)
	updated := "not yet"
	if !b.LastUpdatedAt.IsZero() {
		updated = b.LastUpdatedAt.Format("January 2, 2006 15:04 MST")
	}
	lastScore := 0
	if b.LastMerged != nil {
		lastScore = b.LastMerged.Score
	}
	return map[string]any{
		"Month":         b.Month,
		"Emoji":         insights.Emoji(time.Month(b.Month.Month)),
		"Strategy":      insights.Strategy(time.Month(b.Month.Month)),
		"ReportURL":     strings.TrimRight(d.SiteURL, "/") + "/" + b.Month.URLPath,
		"Status":        title.String(string(b.Status)),
		"UpdatedAt":     updated,
		"Total":         t.Total,
		"CategoryBased": t.Category,
		"EventCount":    t.Events,
		"LastScore":     lastScore,
		"Programs":      d.rows(b),
		"Report":        b.Report,
	}
}

// rows lists catalogue programs in order; the fallback only shows when used
func (d *Dispatcher) rows(b domain.MonthBucket) []ProgramRow {
	var out []ProgramRow
	for _, e := range d.Cat.Entries() {
		n := b.Field(e.Code)
		if e.Class == programs.ClassFallback && n == 0 {
			continue
		}
		status := "Pending"
		if n > 0 {
			status = "Active"
		}
		out = append(out, ProgramRow{
			Code:    string(e.Code),
			Label:   e.Name,
			ITAs:    n,
			Percent: insights.Percent(n, b.TotalInvitations),
			Status:  status,
		})
	}
	return out
}

func renderErr(id string, err error) error {
	return perr.Wrap(fmt.Errorf("%w: %w", domain.ErrRender, err), perr.ErrorCodeUnknown, "regenerate "+id)
}
