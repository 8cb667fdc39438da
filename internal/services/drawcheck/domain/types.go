// Package domain holds the drawcheck types and ports
package domain

import (
	"context"
	"time"

	monthly "immiwatch/internal/services/monthly/domain"
)

// Round is the latest published draw as the feed reports it
type Round struct {
	Number   int    `json:"draw_number"`
	DateFull string `json:"draw_date_full"`
	Name     string `json:"draw_name"`
	Size     string `json:"draw_size"`
	CRS      string `json:"draw_crs"`
}

// LastSeen is the persisted high-water mark
type LastSeen struct {
	DrawNumber int       `json:"draw_number"`
	DrawDate   string    `json:"draw_date"`
	DrawName   string    `json:"draw_name"`
	CheckedAt  time.Time `json:"checked_at"`
}

// ResultKind enumerates Check outcomes; none is an error
type ResultKind string

const (
	NoNewDraw     ResultKind = "no_new_draw"
	Ingested      ResultKind = "ingested"
	AlreadyMerged ResultKind = "already_merged"
)

// Result reports one check
type Result struct {
	Kind     ResultKind       `json:"kind"`
	Round    Round            `json:"round"`
	Previous int              `json:"previous_draw_number"`
	Outcome  *monthly.Outcome `json:"outcome,omitempty"`
}

// Feed returns the most recent published round
type Feed interface {
	Latest(ctx context.Context) (Round, error)
}

// StateRepo stores the last-seen draw
type StateRepo interface {
	// Get returns ok=false before the first successful check
	Get(ctx context.Context) (LastSeen, bool, error)
	Put(ctx context.Context, s LastSeen) error
}

// CheckPort runs one feed check
type CheckPort interface {
	Check(ctx context.Context) (Result, error)
}
