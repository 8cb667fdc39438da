package module

import (
	"time"

	"immiwatch/internal/platform/config"
)

// Store backends
const (
	StoreFile = "file"
	StorePG   = "pg"
)

// Options controls the monthly service and its collaborators
type Options struct {
	Store          string // file or pg
	DataDir        string // file store root
	OutputDir      string // rendered reports
	SiteURL        string
	TransitionHour int
	SaveRetries    int
	SequenceGuard  bool
	Location       *time.Location

	// Notifications
	SlackWebhookURL string
	NotifyTimeout   time.Duration

	// WebhookSecret guards POST /webhook; empty leaves it open
	WebhookSecret string
}

// FromConfig reads CORE_MONTHLY_*, CORE_NOTIFY_* and CORE_WEBHOOK_* values
func FromConfig(cfg config.Conf) Options {
	mc := cfg.Prefix("CORE_MONTHLY_")
	nc := cfg.Prefix("CORE_NOTIFY_")
	wc := cfg.Prefix("CORE_WEBHOOK_")
	return Options{
		Store:           mc.MayEnum("STORE", StoreFile, StoreFile, StorePG),
		DataDir:         mc.MayString("DATA_DIR", "data/monthly_reports"),
		OutputDir:       mc.MayString("OUTPUT_DIR", "reports/express-entry"),
		SiteURL:         mc.MayURL("SITE_URL", "https://immiwatch.ca"),
		TransitionHour:  mc.MayInt("TRANSITION_HOUR", 6),
		SaveRetries:     mc.MayInt("SAVE_RETRIES", 3),
		SequenceGuard:   mc.MayBool("SEQUENCE_GUARD", true),
		Location:        mc.MayLocation("LOCATION", "America/Toronto"),
		SlackWebhookURL: nc.MayString("SLACK_WEBHOOK_URL", ""),
		NotifyTimeout:   nc.MayDuration("TIMEOUT", 30*time.Second),
		WebhookSecret:   wc.MayString("SECRET", ""),
	}
}
