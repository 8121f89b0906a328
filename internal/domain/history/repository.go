package history

import (
	"context"
)

// Repository defines the interface for export history persistence
type Repository interface {
	Create(ctx context.Context, record *Record) error
	Get(ctx context.Context, userID, id string) (*Record, error)
	List(ctx context.Context, filter *Filter) ([]*Record, error)
	Count(ctx context.Context, filter *Filter) (int, error)
	Delete(ctx context.Context, userID, id string) error
}
