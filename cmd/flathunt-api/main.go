// @title         Flathunt API
// @version       0.1.0
// @description   Read only endpoints for the apartment catalog

package main

import (
	"context"
	"flag"

	"github.com/joho/godotenv"

	"flathunt/internal/core/dataset"
	"flathunt/internal/modkit/repokit"
	"flathunt/internal/platform/config"
	"flathunt/internal/platform/logger"
	phttp "flathunt/internal/platform/net/http"

	"flathunt/internal/services/api"
)

func main() {
	// local overrides first so config reads see them
	_ = godotenv.Load()

	// service-scoped config for HTTP etc (CORE_API_*)
	root := config.New()
	apiCfg := root.Prefix("CORE_API_")

	// bring up logging early
	l := logger.Get()

	// catalog: embedded by default, swappable per deploy
	dataPath := flag.String("dataset", "", "path to an apartments.json overriding the embedded catalog")
	flag.Parse()
	if *dataPath == "" {
		*dataPath = apiCfg.MayString("DATASET", "")
	}

	var (
		pack *dataset.Pack
		err  error
	)
	if *dataPath != "" {
		pack, err = dataset.LoadFile(*dataPath)
	} else {
		pack, err = dataset.Load()
	}
	if err != nil {
		l.Panic().Err(err).Msg("dataset load failed")
	}
	repokit.MustPing(context.Background(), "dataset", pack)
	l.Info().Int("records", pack.Count()).Str("city", pack.City).Msg("catalog loaded")

	// http server (reads CORE_API_API_PORT)
	srv := phttp.NewServer(apiCfg)

	// mount our API
	api.Mount(
		srv.Router(),
		api.Options{
			Config:         apiCfg,
			Data:           pack,
			Logger:         l,
			EnableSwagger:  apiCfg.MayBool("SWAGGER", true),
			EnableProfiler: apiCfg.MayBool("PROFILER", true),
		},
	)

	// run
	if err := srv.Run(context.Background()); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
