//go:build wireinject
// +build wireinject

package app

import (
	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/storefront/server/internal/infra/config"
	"github.com/storefront/server/internal/infra/events"
	"github.com/storefront/server/internal/utils/metrics"
)

// Dependencies holds all injected dependencies.
type Dependencies struct {
	Config    *config.Config
	ZapLogger *zap.Logger
	Metrics   *metrics.Metrics
	Stores    *Stores
	Bus       *events.Bus
	Router    *gin.Engine
}

// InitializeDependencies creates all dependencies using Wire.
func InitializeDependencies(cfg *config.Config) (*Dependencies, func(), error) {
	wire.Build(
		AppSet,
		wire.Struct(new(Dependencies), "*"),
	)
	return nil, nil, nil
}
