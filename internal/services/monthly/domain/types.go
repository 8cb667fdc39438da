// Package domain defines the monthly aggregate types, ports and errors
package domain

import (
	"slices"
	"time"

	"immiwatch/internal/core/programs"
)

// ProgramCode is the catalogue code a draw is attributed to
type ProgramCode = programs.Code

// Status is the lifecycle state of a month bucket
type Status string

const (
	StatusInitialized Status = "initialized"
	StatusActive      Status = "active"
	// StatusFinalized is reserved; nothing in the service sets it today
	StatusFinalized Status = "finalized"
)

// Event sources recorded on DrawEvent.Source
const (
	SourceWebhook = "webhook"
	SourceFeed    = "feed"
	SourceCLI     = "cli"
	SourceManual  = "manual"
)

// DrawEvent is one normalized draw announcement
type DrawEvent struct {
	ID           string      `json:"id"`
	OccurredOn   time.Time   `json:"occurred_on"`
	Program      ProgramCode `json:"program"`
	Label        string      `json:"label,omitempty"`
	Invitations  int         `json:"invitations"`
	MinimumScore int         `json:"minimum_score"`
	Sequence     *int        `json:"sequence,omitempty"`
	Source       string      `json:"source,omitempty"`
}

// LastMerged snapshots the most recently merged event
type LastMerged struct {
	Date     time.Time `json:"date"`
	Score    int       `json:"score"`
	Sequence *int      `json:"sequence,omitempty"`
}

// MonthInfo is display and layout metadata for one calendar month
type MonthInfo struct {
	Year        int    `json:"year"`
	Month       int    `json:"month"`
	MonthName   string `json:"month_name"`
	MonthShort  string `json:"month_short"`
	DisplayName string `json:"display_name"`
	Directory   string `json:"directory"`
	URLPath     string `json:"url_path"`
}

// Period is a resolved calendar month
type Period struct {
	BucketID    string    `json:"bucket_id"`
	DisplayName string    `json:"display_name"`
	Start       time.Time `json:"period_start"`
	End         time.Time `json:"period_end"`
	Month       MonthInfo `json:"month_info"`
}

// Report is the narrative regenerated from the totals on every merge
type Report struct {
	ExecutiveSummary  string   `json:"executive_summary"`
	StrategicInsights []string `json:"strategic_insights"`
	KeyHighlights     []string `json:"key_highlights"`
}

// MonthBucket is the month-to-date aggregate
type MonthBucket struct {
	ID                    string              `json:"bucket_id"`
	Month                 MonthInfo           `json:"month_info"`
	TotalInvitations      int                 `json:"total_itas"`
	Fields                map[ProgramCode]int `json:"fields"`
	CategoryBasedSubtotal int                 `json:"category_based_total"`
	EventCount            int                 `json:"draws_count"`
	LastMerged            *LastMerged         `json:"last_merged,omitempty"`
	Status                Status              `json:"status"`
	CreatedAt             time.Time           `json:"created_at"`
	LastUpdatedAt         time.Time           `json:"last_updated"`
	Version               int64               `json:"version"`
	Report                Report              `json:"report"`
}

// Field returns the running sum for code
func (b MonthBucket) Field(code ProgramCode) int { return b.Fields[code] }

// Clone returns a deep copy so callers can mutate without aliasing
func (b MonthBucket) Clone() MonthBucket {
	c := b
	c.Fields = make(map[ProgramCode]int, len(b.Fields))
	for k, v := range b.Fields {
		c.Fields[k] = v
	}
	if b.LastMerged != nil {
		lm := *b.LastMerged
		if lm.Sequence != nil {
			s := *lm.Sequence
			lm.Sequence = &s
		}
		c.LastMerged = &lm
	}
	c.Report.StrategicInsights = slices.Clone(b.Report.StrategicInsights)
	c.Report.KeyHighlights = slices.Clone(b.Report.KeyHighlights)
	return c
}

// Summary condenses a bucket for listings
func (b MonthBucket) Summary() BucketSummary {
	return BucketSummary{
		ID:               b.ID,
		DisplayName:      b.Month.DisplayName,
		Status:           b.Status,
		TotalInvitations: b.TotalInvitations,
		EventCount:       b.EventCount,
		LastUpdatedAt:    b.LastUpdatedAt,
	}
}

// BucketSummary is one row of the status listing
type BucketSummary struct {
	ID               string    `json:"bucket_id"`
	DisplayName      string    `json:"display_name"`
	Status           Status    `json:"status"`
	TotalInvitations int       `json:"total_itas"`
	EventCount       int       `json:"draws_count"`
	LastUpdatedAt    time.Time `json:"last_updated"`
	IsCurrent        bool      `json:"is_current"`
}

// Pointer is the versioned current-bucket singleton
type Pointer struct {
	BucketID     string    `json:"bucket_id"`
	DesignatedAt time.Time `json:"designated_at"`
	Version      int64     `json:"version"`
	Month        MonthInfo `json:"month_info"`
	ReportURL    string    `json:"report_url"`
	LocalPath    string    `json:"local_path"`
}

// Artifact is a rendered report on disk
type Artifact struct {
	Path  string `json:"path"`
	Bytes int    `json:"bytes"`
}

// MergeSummary is what the notifier gets after a successful merge
type MergeSummary struct {
	Event                 DrawEvent `json:"event"`
	BucketID              string    `json:"bucket_id"`
	DisplayName           string    `json:"display_name"`
	TotalInvitations      int       `json:"total_itas"`
	CategoryBasedSubtotal int       `json:"category_based_total"`
	EventCount            int       `json:"draws_count"`
	ReportURL             string    `json:"report_url"`
}

// Outcome reports one ingestion; Degraded means the aggregate was saved but
// the artifact is stale
type Outcome struct {
	Event       DrawEvent   `json:"event"`
	Bucket      MonthBucket `json:"bucket"`
	Artifact    *Artifact   `json:"artifact,omitempty"`
	Degraded    bool        `json:"degraded"`
	RenderError string      `json:"render_error,omitempty"`
}

// TransitionKind enumerates CheckTransition results; none of them is an error
type TransitionKind string

const (
	TransitionNotInWindow TransitionKind = "not_in_window"
	TransitionNotNeeded   TransitionKind = "not_needed"
	TransitionApplied     TransitionKind = "applied"
)

// TransitionResult reports what CheckTransition did
type TransitionResult struct {
	Kind    TransitionKind `json:"kind"`
	From    string         `json:"from,omitempty"`
	To      string         `json:"to,omitempty"`
	Pointer *Pointer       `json:"pointer,omitempty"`
}

// CreateResult reports what CreateCurrent did
type CreateResult struct {
	Pointer        Pointer `json:"pointer"`
	Created        bool    `json:"created"`
	AlreadyCurrent bool    `json:"already_current"`
}

// StatusSummary lists every bucket and flags the current one
type StatusSummary struct {
	Current *Pointer        `json:"current,omitempty"`
	Buckets []BucketSummary `json:"buckets"`
}
