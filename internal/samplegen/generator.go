package samplegen

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/okian/salespulse/internal/adapters/ingest"
	"github.com/okian/salespulse/internal/domain/model"
)

// Generation ranges.
const (
	maxLinesPerOrder = 4
	maxQuantity      = 5
	minPriceCents    = 199
	priceSpanCents   = 19800
	discountChance   = 0.1
)

// product is one catalogue entry with its list price.
type product struct {
	id    string
	price decimal.Decimal
}

// Generate writes cfg.Orders orders as CSV to w. Every order gets a UUID,
// one calendar date and one to four lines for distinct products.
func Generate(ctx context.Context, w io.Writer, cfg Config) (Stats, error) {
	cfg = cfg.normalized()

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // synthetic data

	catalogue := newCatalogue(rng, cfg.Products)

	cw := csv.NewWriter(w)
	if err := cw.Write(ingest.RequiredColumns); err != nil {
		return Stats{}, fmt.Errorf("write header: %w", err)
	}

	var stats Stats
	for i := 0; i < cfg.Orders; i++ {
		if err := ctx.Err(); err != nil {
			return stats, fmt.Errorf("context cancelled during generation: %w", err)
		}

		id, err := uuid.NewRandomFromReader(rng)
		if err != nil {
			return stats, fmt.Errorf("order id: %w", err)
		}
		date := cfg.Start.AddDate(0, 0, rng.Intn(cfg.Days)).Format(model.DateLayout)

		n := 1 + rng.Intn(maxLinesPerOrder)
		if n > len(catalogue) {
			n = len(catalogue)
		}
		for _, idx := range rng.Perm(len(catalogue))[:n] {
			p := catalogue[idx]
			price := p.price
			if rng.Float64() < discountChance {
				price = price.Mul(decimal.RequireFromString("0.9")).Round(2)
			}
			rec := []string{
				id.String(),
				date,
				p.id,
				price.StringFixed(2),
				strconv.Itoa(1 + rng.Intn(maxQuantity)),
			}
			if cfg.MissingRate > 0 && rng.Float64() < cfg.MissingRate {
				rec[rng.Intn(len(rec))] = ""
				stats.BlankCells++
			}
			if err := cw.Write(rec); err != nil {
				return stats, fmt.Errorf("write line: %w", err)
			}
			stats.Lines++
		}
		stats.Orders++
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return stats, fmt.Errorf("flush: %w", err)
	}
	return stats, nil
}

func newCatalogue(rng *rand.Rand, size int) []product {
	out := make([]product, size)
	for i := range out {
		cents := int64(minPriceCents + rng.Intn(priceSpanCents))
		out[i] = product{
			id:    fmt.Sprintf("P%04d", i+1),
			price: decimal.New(cents, -2),
		}
	}
	return out
}
