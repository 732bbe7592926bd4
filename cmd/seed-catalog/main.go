// Command seed-catalog loads the product catalog from a JSON export into the
// database. Re-running it is idempotent: existing products are replaced by id.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"

	"github.com/luxewear/storefront/internal/domain/catalog"
	"github.com/luxewear/storefront/internal/storage/postgres"
)

// productSeed mirrors the JSON export of the catalog.
type productSeed struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	Description    string           `json:"description"`
	Price          decimal.Decimal  `json:"price"`
	CompareAtPrice *decimal.Decimal `json:"compareAtPrice"`
	ImageURL       string           `json:"imageUrl"`
	ImageURLs      []string         `json:"imageUrls"`
	Category       string           `json:"category"`
	Subcategory    string           `json:"subcategory"`
	Colors         []string         `json:"colors"`
	Sizes          []string         `json:"sizes"`
	Rating         float64          `json:"rating"`
	ReviewCount    int              `json:"reviewCount"`
	Featured       bool             `json:"featured"`
	Trending       bool             `json:"trending"`
	NewArrival     bool             `json:"newArrival"`
	InStock        bool             `json:"inStock"`
	CreatedAt      time.Time        `json:"createdAt"`
}

func main() {
	var (
		databaseURL  string
		productsFile string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "db/seed/products.json.gz", "path to products JSON export (.json or .json.gz)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, productsFile); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile string) error {
	seeds, err := readSeeds(productsFile)
	if err != nil {
		return errors.Wrap(err, "read products")
	}

	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	repo := postgres.NewProductRepository(pool)
	now := time.Now()

	for i, s := range seeds {
		p := catalog.Product{
			ID:             s.ID,
			Name:           s.Name,
			Description:    s.Description,
			Price:          s.Price,
			CompareAtPrice: s.CompareAtPrice,
			ImageURL:       s.ImageURL,
			ImageURLs:      s.ImageURLs,
			Category:       s.Category,
			Subcategory:    s.Subcategory,
			Colors:         s.Colors,
			Sizes:          s.Sizes,
			Rating:         s.Rating,
			ReviewCount:    s.ReviewCount,
			Featured:       s.Featured,
			Trending:       s.Trending,
			NewArrival:     s.NewArrival,
			InStock:        s.InStock,
			CreatedAt:      s.CreatedAt,
		}
		if p.ID == "" {
			p.ID = uuid.New().String()
		}
		if p.CreatedAt.IsZero() {
			// Stagger creation times so "newest" ordering is stable.
			p.CreatedAt = now.Add(time.Duration(i) * time.Second)
		}

		if err := repo.Upsert(ctx, &p); err != nil {
			return err
		}
	}

	slog.Info("catalog seeded", slog.Int("products", len(seeds)))
	return nil
}

// readSeeds decodes the product export, transparently handling gzip.
func readSeeds(path string) ([]productSeed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrapf(err, "create gzip reader for %s", path)
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}

	var seeds []productSeed
	if err := json.NewDecoder(r).Decode(&seeds); err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	return seeds, nil
}
