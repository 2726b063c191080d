package httpkit

import "net/http"

// MountUnder mounts a module's routes on a subrouter at prefix, applying any
// per-module middleware before the routes register
func MountUnder(r Router, prefix string, mw []func(http.Handler) http.Handler, mount func(Router)) {
	r.Route(prefix, func(sub Router) {
		if len(mw) > 0 {
			sub.Use(mw...)
		}
		mount(sub)
	})
}
