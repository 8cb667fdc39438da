package httpkit

import "net/http"

// APIPrefix is where versioned routes live
const APIPrefix = "/api/v1"

// MountAPIV1 scopes mw to APIPrefix and lets mount register modules there
func MountAPIV1(r Router, mw []func(http.Handler) http.Handler, mount func(Router)) {
	r.Route(APIPrefix, func(api Router) {
		api.Use(mw...)
		mount(api)
	})
}
