// Package middleware holds the HTTP middleware the API stack is built from:
// access logging, panic recovery, webhook auth and thin chi adapters
package middleware

import (
	"net/http"
	"time"

	"immiwatch/internal/platform/logger"
	pnet "immiwatch/internal/platform/net"

	"github.com/rs/zerolog"
)

// SlowRequest is the default warn threshold for AccessLog
const SlowRequest = 500 * time.Millisecond

// AccessLogOptions configures AccessLogZerolog
type AccessLogOptions struct {
	// Slow logs requests at or above this duration as warn; 0 disables it
	Slow time.Duration
	// Logger overrides the root logger
	Logger *zerolog.Logger
}

// statusRecorder remembers the status and counts body bytes
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	n, err := s.ResponseWriter.Write(b)
	s.bytes += n
	return n, err
}

// AccessLog is AccessLogZerolog with the default slow threshold
func AccessLog(next http.Handler) http.Handler {
	return AccessLogZerolog(AccessLogOptions{Slow: SlowRequest})(next)
}

// AccessLogZerolog writes one line per request. 5xx responses log at error
// and slow ones at warn. The request id is copied onto the logger context so
// handler logs carry it too
func AccessLogZerolog(opt AccessLogOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := pnet.RequestID(r.Context())
			r = r.WithContext(logger.WithRequest(r.Context(), reqID))
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()

			next.ServeHTTP(rec, r)

			took := time.Since(start)
			base := opt.Logger
			if base == nil {
				base = logger.Get()
			}
			var evt *zerolog.Event
			switch {
			case rec.status >= http.StatusInternalServerError:
				evt = base.Error()
			case opt.Slow > 0 && took >= opt.Slow:
				evt = base.Warn().Bool("slow", true)
			default:
				evt = base.Info()
			}
			evt.Str("request_id", reqID).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rec.status).
				Int("bytes", rec.bytes).
				Dur("took", took).
				Str("caller", pnet.Caller(r.Context())).
				Msg("http request")
		})
	}
}
