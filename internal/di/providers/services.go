package providers

import (
	"github.com/samber/do/v2"

	"github.com/ficai/signal-server/internal/config"
	"github.com/ficai/signal-server/internal/logger"
	"github.com/ficai/signal-server/internal/metadata/fichub"
	"github.com/ficai/signal-server/internal/service"
	"github.com/ficai/signal-server/internal/validation"
)

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(storeHandle.Store, validator, cfg, log.Logger), nil
}

// ProvideSignalService provides the signal service.
func ProvideSignalService(i do.Injector) (*service.SignalService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSignalService(storeHandle.Store, validator, log.Logger), nil
}

// ProvideTagSearchService provides the tag search service.
func ProvideTagSearchService(i do.Injector) (*service.TagSearchService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewTagSearchService(storeHandle.Store, log.Logger), nil
}

// ProvideMetaService provides the story metadata service.
func ProvideMetaService(i do.Injector) (*service.MetaService, error) {
	client := do.MustInvoke[*fichub.Client](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewMetaService(client, log.Logger), nil
}
