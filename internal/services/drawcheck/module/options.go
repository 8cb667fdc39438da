package module

import (
	"time"

	"immiwatch/internal/adapters/ingest/ircc"
	"immiwatch/internal/platform/config"
)

// Options controls the feed poller
type Options struct {
	FeedURL      string
	FetchTimeout time.Duration
	UserAgent    string
	Every        time.Duration

	// state shares the monthly store settings
	Store   string
	DataDir string

	// WebhookSecret guards POST /check; empty leaves it open
	WebhookSecret string
}

// FromConfig reads CORE_INGEST_* plus the monthly store and webhook keys
func FromConfig(cfg config.Conf) Options {
	ic := cfg.Prefix("CORE_INGEST_")
	mc := cfg.Prefix("CORE_MONTHLY_")
	return Options{
		FeedURL:       ic.MayURL("FEED_URL", ircc.FeedURLDefault),
		FetchTimeout:  ic.MayDuration("FETCH_TIMEOUT", 30*time.Second),
		UserAgent:     ic.MayString("USER_AGENT", "immiwatch-drawcheck"),
		Every:         ic.MayDuration("EVERY", time.Hour),
		Store:         mc.MayEnum("STORE", StoreFile, StoreFile, StorePG),
		DataDir:       mc.MayString("DATA_DIR", "data/monthly_reports"),
		WebhookSecret: cfg.Prefix("CORE_WEBHOOK_").MayString("SECRET", ""),
	}
}
