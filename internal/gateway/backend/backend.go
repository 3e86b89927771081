// Package backend builds the gateway.Gateway selected by configuration.
package backend

import (
	"fmt"
	"log/slog"

	"github.com/vbonduro/aliados/internal/config"
	"github.com/vbonduro/aliados/internal/db"
	"github.com/vbonduro/aliados/internal/gateway"
	"github.com/vbonduro/aliados/internal/gateway/httpapi"
	"github.com/vbonduro/aliados/internal/gateway/local"
	"github.com/vbonduro/aliados/internal/store"
)

// Open returns the configured gateway and a func releasing its resources.
// Callers must call the func once done.
func Open(cfg *config.Config, logger *slog.Logger) (gateway.Gateway, func(), error) {
	switch cfg.GatewayBackend {
	case "http":
		if cfg.GatewayURL == "" {
			return nil, nil, fmt.Errorf("GATEWAY_URL is required when GATEWAY_BACKEND=http")
		}
		logger.Info("using HTTP gateway", "url", cfg.GatewayURL, "timeout", cfg.GatewayTimeout.String())
		return httpapi.NewClient(cfg.GatewayURL, cfg.GatewayToken, cfg.GatewayTimeout, logger), func() {}, nil
	case "local":
		database, err := db.Open(cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using local gateway", "db_path", cfg.DBPath)
		gw := local.NewGateway(
			store.NewPartnerStore(database),
			store.NewCategoryStore(database),
			store.NewProductStore(database),
			logger,
		)
		closeDB := func() {
			if err := database.Close(); err != nil {
				logger.Error("failed to close database", "error", err)
			}
		}
		return gw, closeDB, nil
	default:
		return nil, nil, fmt.Errorf("unknown GATEWAY_BACKEND %q", cfg.GatewayBackend)
	}
}
