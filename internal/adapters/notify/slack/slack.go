// Package slack posts draw announcements to a Slack incoming webhook
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"immiwatch/internal/core/insights"
	perr "immiwatch/internal/platform/errors"
	"immiwatch/internal/platform/logger"

	"github.com/dustin/go-humanize"
)

const (
	defaultTimeout = 30 * time.Second
	defaultUA      = "immiwatch-notify"
)

// Options configures the Client
type Options struct {
	WebhookURL string
	Timeout    time.Duration
	UserAgent  string
}

// Draw is what one announcement says
type Draw struct {
	DrawType    string
	Invitations int
	CRS         int
	Sequence    *int

	Month      string
	MonthTotal int
	DrawCount  int
	ReportURL  string
}

// Client posts Block Kit messages
type Client struct {
	http *http.Client
	opts Options
	log  logger.Logger
}

// New returns a Client; an empty webhook URL yields nil so callers can fall
// back to a no-op notifier
func New(o Options) *Client {
	if o.WebhookURL == "" {
		return nil
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	return &Client{
		http: &http.Client{Timeout: o.Timeout},
		opts: o,
		log:  *logger.Named("slack"),
	}
}

// Post sends one draw announcement
func (c *Client) Post(ctx context.Context, d Draw) error {
	body, err := json.Marshal(Message(d))
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeJSON, "slack encode message")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnknown, "slack new request failed")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.opts.UserAgent)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "slack post failed")
	}
	defer func() { _ = resp.Body.Close() }()

	c.log.Debug().
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("slack http response")

	if resp.StatusCode/100 != 2 {
		tail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		code := perr.ErrorCodeUnknown
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			code = perr.ErrorCodeUnavailable
		}
		return perr.Newf(code, "slack unexpected status %d body %s", resp.StatusCode, string(tail))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// block and text are the subset of Block Kit we send
type (
	text struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	block struct {
		Type   string `json:"type"`
		Text   *text  `json:"text,omitempty"`
		Fields []text `json:"fields,omitempty"`
	}
	message struct {
		Text   string  `json:"text"`
		Blocks []block `json:"blocks"`
	}
)

// Message builds the webhook body for d
func Message(d Draw) any {
	title := "🎯 New Express Entry Draw"
	if d.Sequence != nil {
		title += " #" + strconv.Itoa(*d.Sequence)
	}
	md := func(s string) text { return text{Type: "mrkdwn", Text: s} }

	blocks := []block{
		{Type: "header", Text: &text{Type: "plain_text", Text: title}},
		{Type: "section", Fields: []text{
			md("*Draw Type:* " + d.DrawType),
			md("*ITAs Issued:* " + humanize.Comma(int64(d.Invitations))),
			md("*CRS Cutoff:* " + crs(d.CRS)),
			md("*Impact Level:* " + insights.Impact(d.Invitations)),
		}},
	}
	if d.Month != "" {
		blocks = append(blocks, block{Type: "section", Text: ptr(md(fmt.Sprintf(
			"*%s so far:* %s ITAs across %s",
			d.Month, humanize.Comma(int64(d.MonthTotal)), plural(d.DrawCount, "draw"),
		)))})
	}
	if d.ReportURL != "" {
		blocks = append(blocks, block{Type: "section", Text: ptr(md("*Monthly Report:* " + d.ReportURL))})
	}
	return message{Text: title, Blocks: blocks}
}

func crs(score int) string {
	if score <= 0 {
		return "n/a"
	}
	return strconv.Itoa(score)
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return strconv.Itoa(n) + " " + word + "s"
}

func ptr[T any](v T) *T { return &v }
