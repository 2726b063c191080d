// Package api provides the HTTP API for the application
package api

import (
	"flathunt/internal/core/dataset"
	"flathunt/internal/platform/config"
	"flathunt/internal/platform/logger"
	phttp "flathunt/internal/platform/net/http"

	"flathunt/internal/modkit"
	"flathunt/internal/modkit/httpkit"
	"flathunt/internal/modkit/module"
	"flathunt/internal/modkit/swaggerkit"

	listingsmod "flathunt/internal/services/api/listings/module"
	metamod "flathunt/internal/services/api/meta/module"
)

// Options are the API options
type Options struct {
	Config         config.Conf
	Data           *dataset.Pack
	Logger         *logger.Logger
	EnableSwagger  bool
	EnableProfiler bool
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) {
	// shared deps for modules
	deps := modkit.Deps{
		Cfg:  opt.Config,
		Data: opt.Data,
	}
	if opt.Logger != nil {
		deps.Log = *opt.Logger
	}

	mods := []module.Module{
		metamod.New(deps),
		listingsmod.New(deps),
	}

	// versioned API with a common middleware stack
	httpkit.MountAPIV1(r, httpkit.CommonStack(), func(api httpkit.Router) {
		// Swagger + profiler
		swaggerkit.Mount(r, opt.EnableSwagger)
		phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

		for _, m := range mods {
			// register each module's ports under its own name (for cross-module lookups)
			module.Register(m.Name(), m.Ports())

			// mount module routes under its Prefix()
			m.MountRoutes(api)
		}
	})
}
