package httpkit

import (
	"compress/flate"
	"net/http"
	"time"

	"flathunt/internal/platform/net/middleware"
)

// CommonStack returns a baseline per module middleware slice.
// Freshness headers are a per-module concern: the listing endpoint serves
// ETags, so NoCache is attached individually where wanted (see the meta
// module) rather than globally here
func CommonStack() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		// tracing / correlation
		middleware.RequestID(),
		middleware.RealIP(),

		// safety
		middleware.RecoverJSON,

		// observability
		middleware.AccessLogZerolog(middleware.AccessLogOptions{Slow: time.Second}),

		// cross-origin (tweak config in main if needed)
		middleware.CORS(middleware.CORSOptions{}),
		middleware.Compress(flate.BestSpeed),
		middleware.Heartbeat("/health"),
		middleware.RedirectSlashes(),
		middleware.StripSlashes(),
		middleware.Timeout(30 * time.Second),
	}
}

// NoCache is re-exported for modules that opt their routes out of caching
func NoCache() func(http.Handler) http.Handler { return middleware.NoCache() }
