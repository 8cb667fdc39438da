package bind

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	perr "immiwatch/internal/platform/errors"
)

type manual struct {
	Date   string         `json:"date" validate:"omitempty,max=10"`
	Score  int            `json:"crs_score" validate:"gte=0,lte=1200"`
	Fields map[string]int `json:"fields,omitempty"`
	Note   string         `json:"-"`
}

func req(method, body string) *http.Request {
	if body == "" {
		return httptest.NewRequest(method, "/", http.NoBody)
	}
	return httptest.NewRequest(method, "/", strings.NewReader(body))
}

func TestParseJSON(t *testing.T) {
	cases := []struct {
		name   string
		method string
		body   string
		opts   Options
		code   perr.ErrorCode // 0 means success
		field  string
	}{
		{name: "ok", method: http.MethodPut, body: `{"date":"2025-08-06","crs_score":470,"fields":{"HEALTH":2500}}`},
		{name: "empty post", method: http.MethodPost, code: perr.ErrorCodeJSON},
		{name: "whitespace post", method: http.MethodPost, body: "  \n", code: perr.ErrorCodeJSON},
		{name: "empty allowed", method: http.MethodPost, opts: Options{AllowEmpty: true}},
		{name: "empty get", method: http.MethodGet},
		{name: "broken json", method: http.MethodPut, body: `{"crs_score":`, code: perr.ErrorCodeJSON},
		{name: "unknown key", method: http.MethodPut, body: `{"crs_score":1,"bogus":true}`, code: perr.ErrorCodeJSON},
		{name: "unknown key allowed", method: http.MethodPut, body: `{"crs_score":1,"bogus":true}`, opts: Options{AllowUnknown: true}},
		{name: "trailing data", method: http.MethodPut, body: `{"crs_score":1} {"crs_score":2}`, code: perr.ErrorCodeJSON},
		{name: "too big", method: http.MethodPut, body: `{"date":"2025-08-06"}`, opts: Options{MaxBytes: 8}, code: perr.ErrorCodeJSON},
		{name: "score out of range", method: http.MethodPut, body: `{"crs_score":1300}`, code: perr.ErrorCodeValidation, field: "crs_score"},
		{name: "date too long", method: http.MethodPut, body: `{"date":"August 6th, 2025"}`, code: perr.ErrorCodeValidation, field: "date"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseJSON[manual](req(tc.method, tc.body), tc.opts)
			if tc.code == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if got := perr.CodeOf(err); got != tc.code {
				t.Fatalf("code = %v, want %v (%v)", got, tc.code, err)
			}
			if tc.field != "" {
				if w := perr.WireFrom(err); w.Field != tc.field {
					t.Fatalf("field = %q, want %q", w.Field, tc.field)
				}
			}
		})
	}
}

func TestParseJSON_Decodes(t *testing.T) {
	got, err := ParseJSON[manual](req(http.MethodPut, `{"date":"2025-08-06","crs_score":470,"fields":{"HEALTH":2500}}`))
	if err != nil {
		t.Fatal(err)
	}
	if got.Date != "2025-08-06" || got.Score != 470 || got.Fields["HEALTH"] != 2500 {
		t.Fatalf("got %+v", got)
	}
}

func TestValidate_ShortMessages(t *testing.T) {
	cases := []struct {
		in   manual
		want string
	}{
		{manual{Score: -1}, "crs_score must be at least 0"},
		{manual{Score: 1201}, "crs_score must be at most 1200"},
	}
	for _, tc := range cases {
		err := Validate(tc.in)
		if w := perr.WireFrom(err); w.Message != tc.want {
			t.Fatalf("message = %q, want %q", w.Message, tc.want)
		}
	}
}

func TestValidate_NonStruct(t *testing.T) {
	if got := perr.CodeOf(Validate(42)); got != perr.ErrorCodeJSON {
		t.Fatalf("code = %v, want JSON", got)
	}
}

func TestJSONName(t *testing.T) {
	type s struct {
		A int `json:"alpha,omitempty"`
		B int `json:"-"`
		C int
	}
	rt := reflect.TypeOf(s{})
	for i, want := range []string{"alpha", "B", "C"} {
		if got := jsonName(rt.Field(i)); got != want {
			t.Fatalf("field %d = %q, want %q", i, got, want)
		}
	}
}

type drawRef struct {
	Seq string `json:"draw_number" validate:"draw_seq"`
}

func TestRegisterValidation(t *testing.T) {
	err := RegisterValidation("draw_seq", func(fl FieldLevel) bool {
		return strings.TrimLeft(fl.Field().String(), "0123456789") == ""
	}, "{0} must be a draw number")
	if err != nil {
		t.Fatal(err)
	}
	if err := Validate(drawRef{Seq: "361"}); err != nil {
		t.Fatalf("valid seq: %v", err)
	}
	err = Validate(drawRef{Seq: "n/a"})
	var pe *perr.Error
	if !errors.As(err, &pe) || pe.Code() != perr.ErrorCodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if w := perr.WireFrom(err); w.Message != "draw_number must be a draw number" || w.Field != "draw_number" {
		t.Fatalf("wire = %+v", w)
	}
}
