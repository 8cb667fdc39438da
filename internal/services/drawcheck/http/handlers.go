// Package http exposes the on-demand feed check
package http

import (
	stdhttp "net/http"

	"immiwatch/internal/modkit/httpkit"
	perr "immiwatch/internal/platform/errors"
	"immiwatch/internal/platform/net/middleware"
	"immiwatch/internal/services/drawcheck/domain"
)

// Deps are the handler dependencies
type Deps struct {
	Checker domain.CheckPort
	State   domain.StateRepo
	// Auth guards POST /check; nil leaves it open
	Auth middleware.AuthPort
}

type handlers struct {
	checker domain.CheckPort
	state   domain.StateRepo
}

// Register mounts the drawcheck routes
func Register(r httpkit.Router, d Deps) {
	h := &handlers{checker: d.Checker, state: d.State}
	httpkit.Protected(r, d.Auth, func(pr httpkit.Router) {
		httpkit.Post(pr, "/check", h.check)
	})
	httpkit.Get(r, "/state", h.lastSeen)
}

// swagger:route POST /drawcheck/check Drawcheck drawcheckCheck
// @Summary Poll the rounds feed now
// @Description Ingests the latest round when it is newer than the last one seen
// @Tags Drawcheck
// @Produce json
// @Param X-Webhook-Secret header string false "shared secret"
// @Success 200 {object} domain.Result "checked"
// @Failure 401 {object} httpkit.Envelope "bad secret"
// @Failure 503 {object} httpkit.Envelope "feed unavailable"
// @Router /drawcheck/check [post]
func (h *handlers) check(r *stdhttp.Request) (any, error) {
	return h.checker.Check(r.Context())
}

// swagger:route GET /drawcheck/state Drawcheck drawcheckState
// @Summary Last draw seen on the feed
// @Tags Drawcheck
// @Produce json
// @Success 200 {object} domain.LastSeen "ok"
// @Failure 404 {object} httpkit.Envelope "never checked"
// @Router /drawcheck/state [get]
func (h *handlers) lastSeen(r *stdhttp.Request) (any, error) {
	ls, ok, err := h.state.Get(r.Context())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, perr.Newf(perr.ErrorCodeNotFound, "no draw seen yet")
	}
	return ls, nil
}
