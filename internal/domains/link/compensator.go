package link

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"bookshelf-backend/internal/shared/observability"
)

const (
	OpRemoveBackReference = "remove_back_reference"
	OpAddBackReference    = "add_back_reference"
)

// Compensator is the only writer of relationship fields on the foreign
// collection. Records are written one at a time, in order, each write
// finishing before the next starts.
type Compensator[T Record] struct {
	store Store[T]
	side  string
}

// NewCompensator binds a compensator to the foreign store. side names that
// store ("author", "book") in logs, metrics and errors.
func NewCompensator[T Record](store Store[T], side string) *Compensator[T] {
	return &Compensator[T]{store: store, side: side}
}

// RemoveBackReference strips id from each record's relationship set. A record
// left with no links is deleted instead of being saved empty.
func (c *Compensator[T]) RemoveBackReference(ctx context.Context, records []T, id uuid.UUID) error {
	for i, record := range records {
		remaining := lo.Filter(record.Links(), func(linked uuid.UUID, _ int) bool {
			return !SameID(linked, id)
		})

		if len(remaining) == 0 {
			if err := c.store.Delete(ctx, record.RecordID()); err != nil {
				return c.partial(OpRemoveBackReference, id, records, i, fmt.Errorf("delete orphan: %w", err))
			}
			observability.OrphanDeletionsTotal.WithLabelValues(c.side).Inc()
			log.Info().
				Str("side", c.side).
				Str("record_id", record.RecordID().String()).
				Str("removed_link", id.String()).
				Msg("Orphan record deleted")
			continue
		}

		record.SetLinks(remaining)
		if _, err := c.store.Save(ctx, record); err != nil {
			return c.partial(OpRemoveBackReference, id, records, i, err)
		}
		observability.CompensationWritesTotal.WithLabelValues(c.side, OpRemoveBackReference).Inc()
	}
	return nil
}

// AddBackReference puts id at the front of each record's relationship set.
// An id already present is moved to the front rather than repeated.
func (c *Compensator[T]) AddBackReference(ctx context.Context, records []T, id uuid.UUID) error {
	for i, record := range records {
		rest := lo.Filter(record.Links(), func(linked uuid.UUID, _ int) bool {
			return !SameID(linked, id)
		})
		record.SetLinks(append([]uuid.UUID{id}, rest...))

		if _, err := c.store.Save(ctx, record); err != nil {
			return c.partial(OpAddBackReference, id, records, i, err)
		}
		observability.CompensationWritesTotal.WithLabelValues(c.side, OpAddBackReference).Inc()
	}
	return nil
}

func (c *Compensator[T]) partial(op string, ref uuid.UUID, records []T, failedAt int, err error) error {
	ids := lo.Map(records, func(r T, _ int) uuid.UUID { return r.RecordID() })

	perr := &PartialCompensationError{
		Side:      c.side,
		Operation: op,
		Reference: ref,
		Applied:   ids[:failedAt],
		Failed:    ids[failedAt],
		Skipped:   ids[failedAt+1:],
		Err:       err,
	}

	observability.PartialCompensationsTotal.WithLabelValues(c.side, op).Inc()
	log.Error().
		Err(err).
		Str("side", c.side).
		Str("operation", op).
		Str("reference", ref.String()).
		Int("applied", len(perr.Applied)).
		Int("skipped", len(perr.Skipped)).
		Msg("Compensation stopped partway, applied writes are kept")

	return perr
}
