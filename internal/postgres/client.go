package postgres

import (
	"context"
)

// IClient defines the interface for postgres client operations
type IClient interface {
	// WithTx wraps the given function in a transaction
	WithTx(ctx context.Context, fn func(context.Context) error) error
}

var _ IClient = (*DB)(nil)

type noopClient struct{}

// NewNoopClient runs fn directly. Used when history is not kept in postgres.
func NewNoopClient() IClient {
	return noopClient{}
}

func (noopClient) WithTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}
