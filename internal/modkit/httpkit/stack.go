package httpkit

import (
	"compress/flate"
	"net/http"
	"time"

	"immiwatch/internal/platform/config"
	phttp "immiwatch/internal/platform/net/http"
	"immiwatch/internal/platform/net/middleware"
)

// StackOptions tunes CommonStack; zero fields take the defaults
type StackOptions struct {
	Timeout     time.Duration // 30s
	SlowRequest time.Duration // middleware.SlowRequest
	CORSOrigins []string      // "*"
}

// StackFromConfig reads REQUEST_TIMEOUT, SLOW_REQUEST and CORS_ORIGINS
func StackFromConfig(cfg config.Conf) StackOptions {
	return StackOptions{
		Timeout:     cfg.MayDuration("REQUEST_TIMEOUT", 30*time.Second),
		SlowRequest: cfg.MayDuration("SLOW_REQUEST", middleware.SlowRequest),
		CORSOrigins: cfg.MayList("CORS_ORIGINS", []string{"*"}),
	}
}

// CommonStack is the middleware every /api/v1 route runs behind, outermost first
func CommonStack(o StackOptions) []func(http.Handler) http.Handler {
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	if o.SlowRequest <= 0 {
		o.SlowRequest = middleware.SlowRequest
	}
	if len(o.CORSOrigins) == 0 {
		o.CORSOrigins = []string{"*"}
	}
	return []func(http.Handler) http.Handler{
		middleware.RequestID(),
		middleware.RealIP(),
		middleware.RecoverJSON,
		middleware.AccessLogZerolog(middleware.AccessLogOptions{Slow: o.SlowRequest}),
		middleware.NoCache(),
		middleware.CORS(middleware.CORSOptions{AllowedOrigins: o.CORSOrigins, MaxAge: 300}),
		middleware.Compress(flate.BestSpeed),
		middleware.RedirectSlashes(),
		middleware.Timeout(o.Timeout),
	}
}

// Auth rejects requests the port refuses with a JSON 401 envelope
func Auth(p middleware.AuthPort) func(http.Handler) http.Handler {
	return middleware.Auth(p, phttp.JSON)
}

// Protected registers fn's routes behind p; a nil port leaves them open
func Protected(r Router, p middleware.AuthPort, fn func(Router)) {
	r.Group(func(g Router) {
		if p != nil {
			g.Use(Auth(p))
		}
		fn(g)
	})
}
