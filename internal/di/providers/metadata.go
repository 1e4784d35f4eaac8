package providers

import (
	"github.com/samber/do/v2"

	"github.com/ficai/signal-server/internal/config"
	"github.com/ficai/signal-server/internal/logger"
	"github.com/ficai/signal-server/internal/metadata/fichub"
)

// ProvideFicHubClient provides the FicHub metadata client.
func ProvideFicHubClient(i do.Injector) (*fichub.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return fichub.NewClient(cfg.FicHub.BaseURL, log.Logger), nil
}
