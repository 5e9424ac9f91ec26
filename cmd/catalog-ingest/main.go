// Command catalog-ingest loads gzipped JSONL product dumps into the
// products table. Dumps from several suppliers may repeat product IDs, so
// IDs are screened through a bloom filter and only the first occurrence is
// kept. Files are scanned concurrently; the merged catalog is written with
// the COPY protocol.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/mkalinin/storefront-orders/internal/domain/product"
	"github.com/mkalinin/storefront-orders/internal/storage/postgres"
)

const (
	bloomCapacity = 10_000_000
	bloomFPR      = 0.001
	progressEvery = 100_000
)

// productLine is one JSONL record of a supplier dump.
type productLine struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category"`
}

func main() {
	var databaseURL string
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if flag.NArg() == 0 {
		slog.Error("usage: catalog-ingest [flags] dump1.jsonl.gz [dump2.jsonl.gz ...]")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, flag.Args()); err != nil {
		slog.Error("catalog ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog ingest completed successfully")
}

func run(ctx context.Context, databaseURL string, files []string) error {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			return errors.Wrapf(err, "check file %s", f)
		}
	}

	perFile, err := scanFiles(ctx, files)
	if err != nil {
		return errors.Wrap(err, "scan dump files")
	}

	// Merge in file order. The bloom filter screens repeated IDs, so the
	// first supplier listing a product wins. The filter is probabilistic:
	// a false positive drops a genuinely new product, which the 0.1% rate
	// makes acceptable for a catalog load.
	filter := bloom.NewWithEstimates(bloomCapacity, bloomFPR)
	var merged []product.Product
	var skipped int
	for _, batch := range perFile {
		for _, p := range batch {
			if filter.TestAndAddString(p.ID) {
				skipped++
				continue
			}
			merged = append(merged, p)
		}
	}
	slog.Info("merged supplier dumps",
		slog.Int("files", len(files)),
		slog.Int("products", len(merged)),
		slog.Int("duplicates_skipped", skipped),
	)

	if len(merged) == 0 {
		slog.Info("no products to insert")
		return nil
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

	inserted, err := postgres.NewProductRepository(pool).CopyAll(ctx, merged)
	if err != nil {
		return errors.Wrap(err, "copy products")
	}

	slog.Info("inserted products", slog.Int64("count", inserted))
	return nil
}

// scanFiles parses every dump concurrently, keeping per-file order.
func scanFiles(ctx context.Context, files []string) ([][]product.Product, error) {
	results := make([][]product.Product, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(func() error {
			batch, err := scanFile(ctx, f)
			if err != nil {
				return errors.Wrapf(err, "scan %s", f)
			}
			results[i] = batch
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// scanFile streams one gzip-compressed JSONL file.
func scanFile(ctx context.Context, path string) ([]product.Product, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open")
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return nil, errors.Wrap(err, "create gzip reader")
	}
	defer func() { _ = gz.Close() }()

	var (
		products []product.Product
		count    uint64
	)
	scanner := bufio.NewScanner(gz)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var p productLine
		if err := json.Unmarshal(line, &p); err != nil {
			return nil, errors.Wrapf(err, "parse line %d", count+1)
		}
		if p.ID == "" || p.Name == "" {
			return nil, errors.Errorf("line %d: missing id or name", count+1)
		}

		products = append(products, product.Product{
			ID:       p.ID,
			Name:     p.Name,
			Price:    p.Price,
			Category: p.Category,
		})

		count++
		if count%progressEvery == 0 {
			slog.Info("scan progress", slog.String("file", path), slog.Uint64("lines", count))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "scan")
	}

	slog.Info("scanned file", slog.String("file", path), slog.Uint64("products", count))
	return products, nil
}
