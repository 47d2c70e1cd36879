package link

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"bookshelf-backend/internal/shared/observability"
)

// Record is one side of the author/book relationship: a record that keeps
// its own copy of the foreign ids it is linked to.
type Record interface {
	RecordID() uuid.UUID
	Links() []uuid.UUID
	SetLinks(ids []uuid.UUID)
}

// Store is the part of a Record Store the reconciliation protocol needs from
// the foreign collection. Every author and book repository satisfies it.
type Store[T Record] interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]T, error)
	Save(ctx context.Context, record T) (T, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ValidateExisting resolves the requested id strings against store and fails
// unless every requested id matched exactly one record. A duplicated id makes
// the counts differ as well, so it fails the same way a missing id does.
func ValidateExisting[T Record](ctx context.Context, store Store[T], ids []string, kind string) ([]T, error) {
	parsed, err := ParseIDs(ids)
	if err != nil {
		return nil, err
	}
	return Resolve(ctx, store, parsed, kind)
}

// Resolve is ValidateExisting for ids that are already in native form, such
// as a relationship list read back from the store.
func Resolve[T Record](ctx context.Context, store Store[T], ids []uuid.UUID, kind string) ([]T, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	found, err := store.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s records: %w", kind, err)
	}

	if len(found) != len(ids) {
		observability.ExistenceCheckFailuresTotal.WithLabelValues(kind).Inc()
		return nil, NotFoundf("Check if %s id is correct or it is not a duplicate", kind)
	}

	return found, nil
}
