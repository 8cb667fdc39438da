// Package http provides the monthly report endpoints
package http

import (
	"io"
	stdhttp "net/http"
	"time"

	"immiwatch/internal/modkit/httpkit"
	perr "immiwatch/internal/platform/errors"
	pnet "immiwatch/internal/platform/net"
	"immiwatch/internal/platform/net/http/bind"
	"immiwatch/internal/platform/net/middleware"
	"immiwatch/internal/services/monthly/domain"
	"immiwatch/internal/services/monthly/normalize"

	"github.com/go-chi/chi/v5"
)

// maxPayload bounds webhook bodies
const maxPayload = 1 << 20

// Deps are the handler dependencies
type Deps struct {
	Svc domain.ServicePort
	// Auth guards every mutating route; nil leaves them open
	Auth middleware.AuthPort
	// Now is the clock for transition checks; nil means time.Now
	Now func() time.Time
}

type handlers struct {
	svc domain.ServicePort
	now func() time.Time
}

// Register mounts the monthly routes
func Register(r httpkit.Router, d Deps) {
	h := &handlers{svc: d.Svc, now: d.Now}
	if h.now == nil {
		h.now = time.Now
	}

	httpkit.Protected(r, d.Auth, func(pr httpkit.Router) {
		httpkit.Post(pr, "/webhook", h.webhook)
		httpkit.Post(pr, "/current", h.createCurrent)
		httpkit.PutJSON[domain.ManualUpdate](pr, "/current", h.updateCurrent)
		httpkit.Post(pr, "/transition", h.transition)
	})
	httpkit.Get(r, "/current", h.getCurrent)
	httpkit.Get(r, "/status", h.status)
	httpkit.Get(r, "/buckets/{id}", h.bucket)
}

//
// Swagger DTOs and route docs
//

// TransitionRequest optionally overrides the check time. The override is
// rejected unless the route is guarded and the caller passed the guard.
type TransitionRequest struct {
	At *time.Time `json:"at,omitempty" example:"2025-09-01T03:00:00-04:00"`
}

// swagger:route POST /monthly/webhook Monthly monthlyWebhook
// @Summary Ingest one draw announcement
// @Description Accepts the flat or the enveloped payload. The secret goes in X-Webhook-Secret or ?secret=
// @Tags Monthly
// @Accept json
// @Produce json
// @Param X-Webhook-Secret header string false "shared secret"
// @Success 200 {object} domain.Outcome "merged"
// @Failure 400 {object} httpkit.Envelope "normalization failed"
// @Failure 401 {object} httpkit.Envelope "bad secret"
// @Failure 409 {object} httpkit.Envelope "replayed draw"
// @Failure 422 {object} httpkit.Envelope "negative count"
// @Router /monthly/webhook [post]
func (h *handlers) webhook(r *stdhttp.Request) (any, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxPayload+1))
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeJSON, "read webhook body")
	}
	if len(body) > maxPayload {
		return nil, perr.JSONErrf("payload exceeds %d bytes", maxPayload)
	}
	raw, err := normalize.DecodePayload(body)
	if err != nil {
		return nil, err
	}
	return h.svc.Ingest(r.Context(), raw, httpkit.CallerOr(r, domain.SourceWebhook))
}

// swagger:route POST /monthly/current Monthly monthlyCreateCurrent
// @Summary Designate the current month bucket
// @Tags Monthly
// @Produce json
// @Success 200 {object} domain.CreateResult "ok"
// @Failure 401 {object} httpkit.Envelope "bad secret"
// @Router /monthly/current [post]
func (h *handlers) createCurrent(r *stdhttp.Request) (any, error) {
	return h.svc.CreateCurrent(r.Context())
}

// swagger:route GET /monthly/current Monthly monthlyGetCurrent
// @Summary Current bucket pointer
// @Tags Monthly
// @Produce json
// @Success 200 {object} domain.Pointer "ok"
// @Router /monthly/current [get]
func (h *handlers) getCurrent(r *stdhttp.Request) (any, error) {
	return h.svc.GetCurrent(r.Context())
}

// swagger:route PUT /monthly/current Monthly monthlyUpdateCurrent
// @Summary Apply per-program counts to the current month
// @Tags Monthly
// @Accept json
// @Produce json
// @Param payload body domain.ManualUpdate true "Counts"
// @Success 200 {object} domain.Outcome "merged"
// @Failure 401 {object} httpkit.Envelope "bad secret"
// @Router /monthly/current [put]
func (h *handlers) updateCurrent(r *stdhttp.Request, in domain.ManualUpdate) (any, error) {
	return h.svc.UpdateCurrent(r.Context(), in)
}

// swagger:route POST /monthly/transition Monthly monthlyTransition
// @Summary Run the month transition check
// @Tags Monthly
// @Accept json
// @Produce json
// @Param payload body TransitionRequest false "Override"
// @Success 200 {object} domain.TransitionResult "ok"
// @Failure 401 {object} httpkit.Envelope "bad secret"
// @Router /monthly/transition [post]
func (h *handlers) transition(r *stdhttp.Request) (any, error) {
	in, err := bind.ParseJSON[TransitionRequest](r, bind.Options{
		MaxBytes:   1 << 12,
		AllowEmpty: true,
	})
	if err != nil {
		return nil, err
	}
	now := h.now()
	if in.At != nil {
		// overrides are for verified callers only
		if pnet.Caller(r.Context()) == "" {
			return nil, perr.Unauthorizedf("time override requires an authenticated caller")
		}
		now = *in.At
	}
	return h.svc.CheckTransition(r.Context(), now)
}

// swagger:route GET /monthly/status Monthly monthlyStatus
// @Summary Every bucket with the current one flagged
// @Tags Monthly
// @Produce json
// @Success 200 {object} domain.StatusSummary "ok"
// @Router /monthly/status [get]
func (h *handlers) status(r *stdhttp.Request) (any, error) {
	return h.svc.Status(r.Context())
}

// swagger:route GET /monthly/buckets/{id} Monthly monthlyBucket
// @Summary One month bucket
// @Tags Monthly
// @Produce json
// @Param id path string true "bucket id, e.g. 2025-08"
// @Success 200 {object} domain.MonthBucket "ok"
// @Failure 404 {object} httpkit.Envelope "not found"
// @Router /monthly/buckets/{id} [get]
func (h *handlers) bucket(r *stdhttp.Request) (any, error) {
	return h.svc.Bucket(r.Context(), chi.URLParam(r, "id"))
}
