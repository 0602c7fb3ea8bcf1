package deps

import (
	"github.com/and161185/coursereports/internal/auth"
	"github.com/and161185/coursereports/internal/metrics"
	"go.uber.org/zap"
)

type Deps struct {
	Logger       *zap.SugaredLogger
	TokenManager *auth.TokenManager
	Metrics      *metrics.HTTPMetrics
}

func NewDependencies(secretKey string) *Deps {
	logCfg := zap.NewProductionConfig()
	logCfg.OutputPaths = []string{"stdout", "server.log"}

	logger := zap.Must(logCfg.Build())

	deps := Deps{
		Logger:       logger.Sugar(),
		TokenManager: auth.NewTokenManager(secretKey),
		Metrics:      metrics.NewHTTPMetrics(),
	}

	return &deps
}
