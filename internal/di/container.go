// Package di provides dependency injection configuration for the signal
// server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/ficai/signal-server/internal/config"
	"github.com/ficai/signal-server/internal/di/providers"
	"github.com/ficai/signal-server/internal/logger"
	"github.com/ficai/signal-server/internal/service"
	"github.com/ficai/signal-server/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideValidator)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Metadata layer
	do.Provide(injector, providers.ProvideFicHubClient)

	// Business services
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideSignalService)
	do.Provide(injector, providers.ProvideTagSearchService)
	do.Provide(injector, providers.ProvideMetaService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap invokes every service so initialization failures surface at
// startup instead of on first use.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*validation.Validator](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)

	// Business services
	_ = do.MustInvoke[*service.AuthService](injector)
	_ = do.MustInvoke[*service.SignalService](injector)
	_ = do.MustInvoke[*service.TagSearchService](injector)
	_ = do.MustInvoke[*service.MetaService](injector)

	// HTTP server starts listening here
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
