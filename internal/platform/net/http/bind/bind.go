// Package bind decodes JSON request bodies and validates them with
// go-playground/validator. Failures come back as perr errors that name the
// offending field by its json tag
package bind

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	perr "immiwatch/internal/platform/errors"
	"immiwatch/internal/platform/logger"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entrans "github.com/go-playground/validator/v10/translations/en"
)

// DefaultMaxBytes caps bodies when Options.MaxBytes is zero
const DefaultMaxBytes = 1 << 20

// Options tunes ParseJSON; the zero value is strict
type Options struct {
	MaxBytes     int64
	AllowUnknown bool // accept keys T does not declare
	AllowEmpty   bool // an empty body yields the zero T
}

// FieldLevel is the argument custom validators receive
type FieldLevel = validator.FieldLevel

type checker struct {
	mu    sync.Mutex // guards registration after first use
	v     *validator.Validate
	trans ut.Translator
}

// short overrides for the stock English messages
var shortMessages = map[string]string{
	"min": "{0} must be at least {1}",
	"gte": "{0} must be at least {1}",
	"max": "{0} must be at most {1}",
	"lte": "{0} must be at most {1}",
}

var shared = sync.OnceValue(func() *checker {
	loc := en.New()
	trans, _ := ut.New(loc, loc).GetTranslator("en")

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)
	_ = entrans.RegisterDefaultTranslations(v, trans)

	c := &checker{v: v, trans: trans}
	for tag, msg := range shortMessages {
		c.translate(tag, msg)
	}
	return c
})

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return f.Name
	}
	return name
}

func (c *checker) translate(tag, msg string) {
	_ = c.v.RegisterTranslation(tag, c.trans,
		func(t ut.Translator) error { return t.Add(tag, msg, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field(), fe.Param())
			return s
		},
	)
}

// RegisterValidation adds a custom tag. msg may use {0} for the field and
// {1} for the tag parameter; empty keeps the generic message
func RegisterValidation(tag string, fn func(FieldLevel) bool, msg string) error {
	c := shared()
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.v.RegisterValidation(tag, fn); err != nil {
		return err
	}
	if msg != "" {
		c.translate(tag, msg)
	}
	return nil
}

// Validate checks v's struct tags and reports the first failing field
func Validate(v any) error {
	c := shared()
	err := c.v.Struct(v)
	if err == nil {
		return nil
	}
	var inv *validator.InvalidValidationError
	if errors.As(err, &inv) {
		logger.Get().Error().Err(inv).Msg("validate called on a non-struct")
		return perr.JSONErrf("validation error")
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return perr.WithField(perr.Newf(perr.ErrorCodeValidation, "%s", fe.Translate(c.trans)), fe.Field())
	}
	return perr.Wrap(err, perr.ErrorCodeValidation, "validation error")
}

// ParseJSON reads one JSON value from the body into T and validates it.
// GET requests with no body are not an error
func ParseJSON[T any](r *http.Request, opts ...Options) (T, error) {
	var zero T
	var o Options
	if len(opts) > 0 {
		o = opts[0]
	}
	if o.MaxBytes <= 0 {
		o.MaxBytes = DefaultMaxBytes
	}
	defer func() { _ = r.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(r.Body, o.MaxBytes+1))
	if err != nil {
		return zero, perr.Wrap(err, perr.ErrorCodeJSON, "read body")
	}
	if int64(len(body)) > o.MaxBytes {
		return zero, perr.JSONErrf("body exceeds %d bytes", o.MaxBytes)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		if o.AllowEmpty || r.Method == http.MethodGet {
			return zero, nil
		}
		return zero, perr.JSONErrf("empty body")
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	if !o.AllowUnknown {
		dec.DisallowUnknownFields()
	}
	var dst T
	if err := dec.Decode(&dst); err != nil {
		return zero, perr.JSONErrf("invalid JSON: %v", err)
	}
	if dec.More() {
		return zero, perr.JSONErrf("unexpected trailing data")
	}
	if err := Validate(dst); err != nil {
		return zero, err
	}
	return dst, nil
}
