// Package ircc reads the published Express Entry rounds feed
package ircc

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	perr "immiwatch/internal/platform/errors"
	"immiwatch/internal/platform/logger"
)

const (
	// FeedURLDefault is the public rounds document
	FeedURLDefault = "https://www.canada.ca/content/dam/ircc/documents/json/ee_rounds_123_en.json"
	defaultTimeout = 30 * time.Second
	defaultUA      = "immiwatch-drawcheck"
	maxFeedBytes   = 8 << 20
)

// Options configures the Fetcher
type Options struct {
	FeedURL   string
	Timeout   time.Duration
	UserAgent string
}

// Round is one published draw; the feed sends most values as strings
type Round struct {
	Number   int    `json:"drawNumber"`
	DateFull string `json:"drawDateFull"`
	Name     string `json:"drawName"`
	Size     string `json:"drawSize"`
	CRS      string `json:"drawCRS"`
}

// Fetcher is a tiny client for the rounds feed
type Fetcher struct {
	http *http.Client
	opts Options
	log  logger.Logger
}

// New returns a Fetcher with defaults applied
func New(o Options) *Fetcher {
	if o.FeedURL == "" {
		o.FeedURL = FeedURLDefault
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	return &Fetcher{
		http: &http.Client{Timeout: o.Timeout},
		opts: o,
		log:  *logger.Named("ircc"),
	}
}

// Latest returns rounds[0], the most recent draw
func (f *Fetcher) Latest(ctx context.Context) (Round, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.opts.FeedURL, nil)
	if err != nil {
		return Round{}, perr.Wrap(err, perr.ErrorCodeUnknown, "ircc new request failed")
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := f.http.Do(req)
	if err != nil {
		return Round{}, perr.Wrap(err, perr.ErrorCodeUnavailable, "ircc fetch failed")
	}
	defer func() { _ = resp.Body.Close() }()

	f.log.Debug().
		Str("url", f.opts.FeedURL).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("ircc http response")

	if resp.StatusCode != http.StatusOK {
		tail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		code := perr.ErrorCodeUnknown
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			code = perr.ErrorCodeUnavailable
		}
		return Round{}, perr.Newf(code, "ircc unexpected status %d body %s", resp.StatusCode, string(tail))
	}

	var doc struct {
		Rounds []json.RawMessage `json:"rounds"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxFeedBytes)).Decode(&doc); err != nil {
		return Round{}, perr.Wrap(err, perr.ErrorCodeJSON, "ircc decode feed")
	}
	if len(doc.Rounds) == 0 {
		return Round{}, perr.JSONErrf("ircc feed has no rounds")
	}
	return decodeRound(doc.Rounds[0])
}

// decodeRound tolerates numbers or strings for every field
func decodeRound(raw json.RawMessage) (Round, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return Round{}, perr.Wrap(err, perr.ErrorCodeJSON, "ircc decode round")
	}
	r := Round{
		DateFull: str(m["drawDateFull"]),
		Name:     str(m["drawName"]),
		Size:     str(m["drawSize"]),
		CRS:      str(m["drawCRS"]),
	}
	n, err := strconv.Atoi(strings.TrimSpace(str(m["drawNumber"])))
	if err != nil || n <= 0 {
		return Round{}, perr.Newf(perr.ErrorCodeJSON, "ircc round has no usable drawNumber %q", str(m["drawNumber"]))
	}
	r.Number = n
	return r, nil
}

func str(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case nil:
		return ""
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}
