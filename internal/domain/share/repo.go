package share

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// ListPublicByIDs fetches the public-safe projection for the given ids,
	// created_at descending. Missing ids are simply absent from the result.
	ListPublicByIDs(ctx context.Context, ids []uuid.UUID) ([]*SharedRecord, error)
	// CountOwnedByIDs reports how many of the given ids exist and belong to
	// the owner.
	CountOwnedByIDs(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) (int, error)
}
