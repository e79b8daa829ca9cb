package repository

import (
	"context"
	"sync/atomic"

	"github.com/okian/salespulse/internal/domain/model"
	"github.com/okian/salespulse/pkg/metrics"
)

// snapshot is an immutable view of one published report.
type snapshot struct {
	report *model.Report
	// rank row by product id for O(1) lookups
	byProduct map[string]model.ProductRevenueRank
}

// SnapshotStore is an in-memory Store. Writers build a new snapshot and
// swap it in; readers never block.
type SnapshotStore struct {
	current atomic.Pointer[snapshot]
}

var _ Store = (*SnapshotStore)(nil)

// NewSnapshotStore returns an empty store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{}
}

// Publish implements Store. The report must not be modified afterwards.
func (s *SnapshotStore) Publish(ctx context.Context, r *model.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r == nil {
		return ErrNilReport
	}

	byProduct := make(map[string]model.ProductRevenueRank, len(r.TopProducts))
	for _, p := range r.TopProducts {
		byProduct[p.ProductID] = p
	}
	s.current.Store(&snapshot{report: r, byProduct: byProduct})

	metrics.UpdateReport(len(r.Daily), len(r.TopProducts), r.TotalRevenue.InexactFloat64(), r.GeneratedAt)
	return nil
}

// Latest implements Store.
func (s *SnapshotStore) Latest(_ context.Context) (*model.Report, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, ErrNotFound
	}
	return snap.report, nil
}

// ProductRank implements Store.
func (s *SnapshotStore) ProductRank(_ context.Context, productID string) (model.ProductRevenueRank, error) {
	snap := s.current.Load()
	if snap == nil {
		return model.ProductRevenueRank{}, ErrNotFound
	}
	row, ok := snap.byProduct[productID]
	if !ok {
		return model.ProductRevenueRank{}, ErrNotFound
	}
	return row, nil
}

// TopN implements Store. n larger than the ranking returns the whole
// ranking.
func (s *SnapshotStore) TopN(_ context.Context, n int) ([]model.ProductRevenueRank, error) {
	if n < 1 {
		return nil, ErrInvalidLimit
	}
	snap := s.current.Load()
	if snap == nil {
		return nil, ErrNotFound
	}
	rows := snap.report.TopProducts
	if n > len(rows) {
		n = len(rows)
	}
	out := make([]model.ProductRevenueRank, n)
	copy(out, rows[:n])
	return out, nil
}

// Count implements Store.
func (s *SnapshotStore) Count(_ context.Context) int {
	snap := s.current.Load()
	if snap == nil {
		return 0
	}
	return len(snap.report.TopProducts)
}
