package domain

import (
	"context"
	"time"
)

// BucketRepo persists month buckets
type BucketRepo interface {
	// Load returns ErrBucketNotFound when id has no document
	Load(ctx context.Context, id string) (MonthBucket, error)

	// Create stores b only when id is absent and returns whichever document is stored
	Create(ctx context.Context, b MonthBucket) (stored MonthBucket, created bool, err error)

	// Save replaces the document atomically when b.Version matches the stored
	// version and returns it with the version bumped; a mismatch is ErrVersionConflict
	Save(ctx context.Context, b MonthBucket) (MonthBucket, error)

	// ListAll returns every bucket ordered by id ascending
	ListAll(ctx context.Context) ([]BucketSummary, error)
}

// PointerRepo persists the current-bucket singleton
type PointerRepo interface {
	Get(ctx context.Context) (Pointer, bool, error)

	// CompareAndSet writes p when the stored version equals expected (0 means
	// unset) and returns it with the new version
	CompareAndSet(ctx context.Context, expected int64, p Pointer) (Pointer, error)
}

// Renderer regenerates the artifact for a bucket
type Renderer interface {
	Regenerate(ctx context.Context, b MonthBucket) (Artifact, error)
}

// Notifier delivers a merge summary to a side channel
type Notifier interface {
	Notify(ctx context.Context, s MergeSummary) error
}

// Ledger archives merged events for analytics
type Ledger interface {
	Archive(ctx context.Context, bucketID string, e DrawEvent) error
}

// IngestPort is the entrypoint used by the webhook, the feed checker and the CLI
type IngestPort interface {
	Ingest(ctx context.Context, raw RawPayload, source string) (Outcome, error)
}

// ServicePort is the full surface exposed by the monthly module
type ServicePort interface {
	IngestPort
	UpdateCurrent(ctx context.Context, u ManualUpdate) (Outcome, error)
	GetCurrent(ctx context.Context) (Pointer, error)
	CreateCurrent(ctx context.Context) (CreateResult, error)
	CheckTransition(ctx context.Context, now time.Time) (TransitionResult, error)
	Status(ctx context.Context) (StatusSummary, error)
	Bucket(ctx context.Context, id string) (MonthBucket, error)
}
