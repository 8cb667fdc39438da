// Package normalize turns upstream draw payloads into domain.DrawEvent
package normalize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"immiwatch/internal/core/programs"
	perr "immiwatch/internal/platform/errors"
	"immiwatch/internal/services/monthly/domain"
)

// dateLayouts are tried in order; RFC3339 keeps only the date part
var dateLayouts = []string{
	"2006-01-02",
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	time.RFC3339,
}

// key aliases per field, first hit wins
var (
	flatDate    = []string{"date", "draw_date"}
	flatITAs    = []string{"invitations", "itas", "invitations_issued"}
	flatScore   = []string{"crs_score", "minimum_score", "score"}
	flatLabel   = []string{"program", "draw_type", "category", "draw_name"}
	flatSeq     = []string{"draw_number"}
	envDate     = []string{"draw.date.most.recent"}
	envITAs     = []string{"Invitation"}
	envScore    = []string{"Score"}
	envLabel    = []string{"Program"}
	envSeq      = []string{"Draw Number"}
	unknownSeqs = map[string]bool{"": true, "unknown": true, "n/a": true}
)

// Normalizer maps raw payloads through a program catalogue
type Normalizer struct {
	cat *programs.Catalogue
}

// New returns a Normalizer; a nil catalogue means programs.Default()
func New(cat *programs.Catalogue) *Normalizer {
	if cat == nil {
		cat = programs.Default()
	}
	return &Normalizer{cat: cat}
}

// DecodePayload resolves the payload shape once: an object with a "body"
// object is enveloped, anything else is flat
func DecodePayload(b []byte) (domain.RawPayload, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeJSON, "decode draw payload")
	}
	if m == nil {
		return nil, perr.JSONErrf("draw payload must be a JSON object")
	}
	if body, ok := m["body"].(map[string]any); ok {
		return domain.EnvelopedPayload{Body: body}, nil
	}
	return domain.FlatPayload{Fields: m}, nil
}

// Normalize extracts a DrawEvent; ID and Source are left for the caller
func (n *Normalizer) Normalize(raw domain.RawPayload) (domain.DrawEvent, error) {
	switch p := raw.(type) {
	case domain.FlatPayload:
		return n.fromFields(p.Fields, flatDate, flatITAs, flatScore, flatLabel, flatSeq)
	case domain.EnvelopedPayload:
		return n.fromFields(p.Body, envDate, envITAs, envScore, envLabel, envSeq)
	default:
		return domain.DrawEvent{}, perr.Wrapf(domain.ErrMissingField, perr.ErrorCodeValidation,
			"unsupported payload shape %q", domain.ShapeOf(raw))
	}
}

func (n *Normalizer) fromFields(m map[string]any, dateKeys, itaKeys, scoreKeys, labelKeys, seqKeys []string) (domain.DrawEvent, error) {
	var ev domain.DrawEvent

	dk, dv, ok := pick(m, dateKeys)
	if !ok {
		return ev, missing(dateKeys[0])
	}
	date, err := ParseDate(fmt.Sprint(dv))
	if err != nil {
		return ev, perr.WithField(err, dk)
	}

	ik, iv, ok := pick(m, itaKeys)
	if !ok {
		return ev, missing(itaKeys[0])
	}
	itas, err := Numeric(iv)
	if err != nil {
		return ev, perr.WithField(err, ik)
	}

	sk, sv, ok := pick(m, scoreKeys)
	if !ok {
		return ev, missing(scoreKeys[0])
	}
	score, err := Numeric(sv)
	if err != nil {
		return ev, perr.WithField(err, sk)
	}

	_, lv, ok := pick(m, labelKeys)
	label := strings.TrimSpace(fmt.Sprint(lv))
	if !ok || label == "" {
		return ev, missing(labelKeys[0])
	}

	if qk, qv, ok := pick(m, seqKeys); ok && !unknownSeqs[strings.ToLower(strings.TrimSpace(fmt.Sprint(qv)))] {
		seq, err := Numeric(qv)
		if err != nil {
			return ev, perr.WithField(err, qk)
		}
		ev.Sequence = &seq
	}

	ev.OccurredOn = date
	ev.Invitations = itas
	ev.MinimumScore = score
	ev.Label = label
	ev.Program = n.cat.Match(label)
	return ev, nil
}

// ParseDate accepts the upstream date layouts and returns midnight UTC of
// the calendar date
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, perr.Wrapf(domain.ErrInvalidDate, perr.ErrorCodeValidation, "unparseable date %q", s)
}

// Numeric coerces JSON numbers and numeric strings like "3,000" to int.
// Values outside the int32 range are rejected
func Numeric(v any) (int, error) {
	switch x := v.(type) {
	case int:
		return bounded(int64(x), v)
	case int64:
		return bounded(x, v)
	case float64:
		return fromFloat(x, v)
	case json.Number:
		return fromString(x.String(), v)
	case string:
		return fromString(x, v)
	default:
		return 0, invalidNumeric(v)
	}
}

func fromString(s string, orig any) (int, error) {
	s = strings.Map(func(r rune) rune {
		if r == ',' || r == ' ' || r == '\t' || r == '\u00a0' {
			return -1
		}
		return r
	}, s)
	if s == "" {
		return 0, invalidNumeric(orig)
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return bounded(i, orig)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, invalidNumeric(orig)
	}
	return fromFloat(f, orig)
}

func fromFloat(f float64, orig any) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) ||
		f < math.MinInt32 || f > math.MaxInt32 {
		return 0, invalidNumeric(orig)
	}
	return int(f), nil
}

func bounded(i int64, orig any) (int, error) {
	if i < math.MinInt32 || i > math.MaxInt32 {
		return 0, invalidNumeric(orig)
	}
	return int(i), nil
}

func invalidNumeric(v any) error {
	return perr.Wrapf(domain.ErrInvalidNumeric, perr.ErrorCodeValidation, "cannot coerce %v", v)
}

func missing(field string) error {
	return perr.WithField(perr.Wrapf(domain.ErrMissingField, perr.ErrorCodeValidation, "%s", field), field)
}

// pick returns the first present, non-null key
func pick(m map[string]any, keys []string) (string, any, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return k, v, true
		}
	}
	return "", nil, false
}
