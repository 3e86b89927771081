// Command aliados-seed loads a YAML fixture into the configured catalog
// backend.
//
//	aliados-seed -fixture catalog.yaml -images ./images
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"golang.org/x/text/language"

	"github.com/vbonduro/aliados/internal/catalog"
	"github.com/vbonduro/aliados/internal/config"
	"github.com/vbonduro/aliados/internal/gateway/backend"
	"github.com/vbonduro/aliados/internal/imageenc"
	imagedir "github.com/vbonduro/aliados/internal/imagesource/local"
	"github.com/vbonduro/aliados/internal/logging"
	"github.com/vbonduro/aliados/internal/seed"
)

func main() {
	fixturePath := flag.String("fixture", "catalog.yaml", "YAML fixture to load")
	imagesPath := flag.String("images", ".", "directory the fixture's image paths are relative to")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, cleanup, err := logging.New("aliados-seed", cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer cleanup()

	if err := run(context.Background(), cfg, *fixturePath, *imagesPath, logger); err != nil {
		logger.Error("seed failed", "error", err)
		cleanup()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, fixturePath, imagesPath string, logger *slog.Logger) error {
	fixture, err := seed.Load(fixturePath)
	if err != nil {
		return err
	}
	images, err := imagedir.NewDir(imagesPath)
	if err != nil {
		return err
	}

	gw, closeGateway, err := backend.Open(cfg, logger)
	if err != nil {
		return err
	}
	defer closeGateway()

	catalogStore := catalog.NewStore(gw, language.Und, logger)
	if err := catalogStore.LoadPartners(ctx); err != nil {
		return err
	}
	reconciler := catalog.NewReconciler(gw, catalogStore, logger)
	encoder := imageenc.NewEncoder(cfg.MaxImageBytes, logger)

	res, err := seed.NewSeeder(reconciler, catalogStore, images, encoder, logger).Run(ctx, fixture)
	if err != nil {
		return err
	}
	fmt.Printf("created %d partners, %d categories, %d products (%d skipped)\n",
		res.Partners, res.Categories, res.Products, res.Skipped)
	return nil
}
