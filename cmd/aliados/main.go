package main

import (
	"context"
	"log"
	"log/slog"

	"golang.org/x/text/language"

	"github.com/vbonduro/aliados/internal/catalog"
	"github.com/vbonduro/aliados/internal/config"
	"github.com/vbonduro/aliados/internal/gateway/backend"
	"github.com/vbonduro/aliados/internal/imageenc"
	"github.com/vbonduro/aliados/internal/logging"
	"github.com/vbonduro/aliados/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, cleanup, err := logging.New("aliados", cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer cleanup()

	gw, closeGateway, err := backend.Open(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize gateway", "error", err)
		return
	}
	defer closeGateway()

	collation := collationTag(cfg.CollationLocale, logger)
	catalogStore := catalog.NewStore(gw, collation, logger)
	reconciler := catalog.NewReconciler(gw, catalogStore, logger)
	encoder := imageenc.NewEncoder(cfg.MaxImageBytes, logger)

	// A failed initial load is not fatal; POST /api/catalog/reload retries it.
	if err := catalogStore.LoadPartners(context.Background()); err != nil {
		logger.Warn("initial catalog load failed", "error", err)
	}

	server := web.NewServer(catalogStore, reconciler, encoder, cfg.MaxImageBytes, logger)
	if err := server.ListenAndServe(cfg.ListenAddr); err != nil {
		logger.Error("server error", "error", err)
	}
}

func collationTag(locale string, logger *slog.Logger) language.Tag {
	tag, err := language.Parse(locale)
	if err != nil {
		logger.Warn("invalid COLLATION_LOCALE, falling back to und", "locale", locale, "error", err)
		return language.Und
	}
	return tag
}
