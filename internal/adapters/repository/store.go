// Package repository keeps the latest published sales report in memory.
package repository

import (
	"context"

	"github.com/okian/salespulse/internal/domain/model"
)

// Store provides read/write access to the published report.
type Store interface {
	// Publish replaces the current report.
	Publish(ctx context.Context, r *model.Report) error

	// Latest returns the current report.
	// Returns ErrNotFound before the first publish.
	Latest(ctx context.Context) (*model.Report, error)

	// ProductRank returns the ranking row of a product.
	// Returns ErrNotFound if the product is not in the published ranking.
	ProductRank(ctx context.Context, productID string) (model.ProductRevenueRank, error)

	// TopN returns the first n rows of the published ranking.
	TopN(ctx context.Context, n int) ([]model.ProductRevenueRank, error)

	// Count returns the number of ranked products.
	Count(ctx context.Context) int
}
