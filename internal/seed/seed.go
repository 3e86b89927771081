package seed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vbonduro/aliados/internal/domain"
	"github.com/vbonduro/aliados/internal/imageenc"
)

type catalogWriter interface {
	CreatePartner(ctx context.Context, in domain.PartnerInput) (*domain.Partner, error)
	CreateCategory(ctx context.Context, in domain.CategoryInput) (*domain.Category, error)
	CreateProduct(ctx context.Context, in domain.ProductInput) (*domain.Product, error)
}

type partnerLister interface {
	Partners() []domain.Partner
}

type imageDir interface {
	Source(name string) imageenc.Source
	Sources(names []string) []imageenc.Source
}

// Result counts what a run created.
type Result struct {
	Partners   int
	Categories int
	Products   int
	Skipped    int
}

type Seeder struct {
	writer   catalogWriter
	existing partnerLister
	images   imageDir
	encoder  *imageenc.Encoder
	logger   *slog.Logger
}

func NewSeeder(writer catalogWriter, existing partnerLister, images imageDir, encoder *imageenc.Encoder, logger *slog.Logger) *Seeder {
	return &Seeder{writer: writer, existing: existing, images: images, encoder: encoder, logger: logger}
}

// Run creates every partner of f whose name is not already in the catalog,
// along with its categories and products. It stops at the first failure;
// entities created before it are kept.
func (s *Seeder) Run(ctx context.Context, f *Fixture) (Result, error) {
	var res Result

	known := make(map[string]bool)
	for _, p := range s.existing.Partners() {
		known[strings.ToLower(p.Name)] = true
	}

	for _, pf := range f.Partners {
		if known[strings.ToLower(pf.Name)] {
			s.logger.Info("partner already present, skipping", "name", pf.Name)
			res.Skipped++
			continue
		}
		if err := s.seedPartner(ctx, pf, &res); err != nil {
			return res, fmt.Errorf("partner %q: %w", pf.Name, err)
		}
		known[strings.ToLower(pf.Name)] = true
	}

	s.logger.Info("seed complete",
		"partners", res.Partners,
		"categories", res.Categories,
		"products", res.Products,
		"skipped", res.Skipped,
	)
	return res, nil
}

func (s *Seeder) seedPartner(ctx context.Context, pf PartnerFixture, res *Result) error {
	in := domain.PartnerInput{Name: pf.Name}
	if pf.Image != "" {
		image, err := s.encoder.Encode(ctx, s.images.Source(pf.Image))
		if err != nil {
			return fmt.Errorf("failed to encode image %s: %w", pf.Image, err)
		}
		in.Image = image
	}

	p, err := s.writer.CreatePartner(ctx, in)
	if err != nil {
		return err
	}
	res.Partners++

	for _, cf := range pf.Categories {
		c, err := s.writer.CreateCategory(ctx, domain.CategoryInput{Name: cf.Name, PartnerID: p.ID})
		if err != nil {
			return fmt.Errorf("category %q: %w", cf.Name, err)
		}
		res.Categories++

		for _, prf := range cf.Products {
			if err := s.seedProduct(ctx, p.ID, c.ID, prf); err != nil {
				return fmt.Errorf("product %q: %w", prf.Title, err)
			}
			res.Products++
		}
	}
	return nil
}

func (s *Seeder) seedProduct(ctx context.Context, partnerID, categoryID int64, pf ProductFixture) error {
	price, err := decimal.NewFromString(strings.TrimSpace(pf.Price))
	if err != nil {
		return domain.NewValidationError("price", "must be a number")
	}

	var images []string
	if len(pf.Images) > 0 {
		if images, err = s.encoder.EncodeAll(ctx, s.images.Sources(pf.Images)); err != nil {
			return fmt.Errorf("failed to encode images: %w", err)
		}
	}

	_, err = s.writer.CreateProduct(ctx, domain.ProductInput{
		Title:       pf.Title,
		Description: pf.Description,
		Price:       price,
		Images:      images,
		CategoryID:  categoryID,
		PartnerID:   partnerID,
	})
	return err
}
