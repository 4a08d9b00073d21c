//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/skincare-api/internal/bootstrap"
	"github.com/yanqian/skincare-api/internal/domain/recommendation"
	"github.com/yanqian/skincare-api/internal/domain/skinanalysis"
	"github.com/yanqian/skincare-api/internal/infra/config"
	"github.com/yanqian/skincare-api/internal/infra/mlbackend"
	httpiface "github.com/yanqian/skincare-api/internal/interface/http"
	"github.com/yanqian/skincare-api/pkg/logger"
)

func initializeApp() (*bootstrap.App, func(), error) {
	wire.Build(
		config.Load,
		logger.New,
		provideRecommendationConfig,
		provideAnalysisConfig,
		provideCatalog,
		provideTrendStore,
		provideMLClient,
		provideImageStorage,
		recommendation.NewService,
		skinanalysis.NewService,
		wire.Bind(new(skinanalysis.Backend), new(*mlbackend.Client)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil, nil
}
