package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/P3chys/exchange-api/internal/services"
	"gorm.io/gorm"
)

// SequenceAllocator hands out one past the highest id stored in a sequence's
// table. Two concurrent callers can receive the same id; the primary key
// rejects the second insert.
type SequenceAllocator struct {
	db *gorm.DB
}

func NewSequenceAllocator(db *gorm.DB) *SequenceAllocator {
	return &SequenceAllocator{db: db}
}

func (a *SequenceAllocator) NextID(ctx context.Context, seq services.Sequence) (int, error) {
	var next sql.NullInt64
	row := a.db.WithContext(ctx).
		Table(seq.Table).
		Select(fmt.Sprintf("COALESCE(MAX(%s), 0) + 1", seq.Column)).
		Row()
	if err := row.Scan(&next); err != nil {
		return 0, fmt.Errorf("next id for %s: %w", seq.Table, err)
	}
	if !next.Valid || next.Int64 <= 0 {
		return 0, services.ErrSequenceUnavailable
	}
	return int(next.Int64), nil
}
