package link

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRecord struct {
	id    uuid.UUID
	links []uuid.UUID
}

func (r *fakeRecord) RecordID() uuid.UUID      { return r.id }
func (r *fakeRecord) Links() []uuid.UUID       { return r.links }
func (r *fakeRecord) SetLinks(ids []uuid.UUID) { r.links = ids }

// memStore keeps records by id. failSaveOn makes Save fail for that id.
type memStore struct {
	records    map[uuid.UUID]*fakeRecord
	saves      []uuid.UUID
	deletes    []uuid.UUID
	lookups    int
	failSaveOn uuid.UUID
}

func newMemStore(records ...*fakeRecord) *memStore {
	s := &memStore{records: map[uuid.UUID]*fakeRecord{}}
	for _, r := range records {
		s.records[r.id] = r
	}
	return s
}

func (s *memStore) FindByIDs(_ context.Context, ids []uuid.UUID) ([]*fakeRecord, error) {
	s.lookups++
	seen := map[uuid.UUID]bool{}
	var out []*fakeRecord
	for _, id := range ids {
		if r, ok := s.records[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, &fakeRecord{id: r.id, links: append([]uuid.UUID(nil), r.links...)})
		}
	}
	return out, nil
}

func (s *memStore) Save(_ context.Context, r *fakeRecord) (*fakeRecord, error) {
	if r.id == s.failSaveOn {
		return nil, errors.New("store unavailable")
	}
	s.saves = append(s.saves, r.id)
	s.records[r.id] = &fakeRecord{id: r.id, links: append([]uuid.UUID(nil), r.links...)}
	return r, nil
}

func (s *memStore) Delete(_ context.Context, id uuid.UUID) error {
	s.deletes = append(s.deletes, id)
	delete(s.records, id)
	return nil
}

func TestParseID(t *testing.T) {
	id := uuid.New()

	got, err := ParseID(" " + id.String() + " ")
	require.NoError(t, err)
	assert.True(t, SameID(id, got))

	_, err = ParseID("5e4bd5dc2a30bc700c8b7e9d")
	assert.ErrorIs(t, err, ErrInvalidIdentifier)

	_, err = ParseIDs([]string{id.String(), "nope"})
	assert.ErrorIs(t, err, ErrInvalidIdentifier)
}

func TestDiff(t *testing.T) {
	b1, b2, b3 := uuid.NewString(), uuid.NewString(), uuid.NewString()

	t.Run("same set yields nothing", func(t *testing.T) {
		removed, added := Diff([]string{b1, b2}, []string{b2, b1})
		assert.Empty(t, removed)
		assert.Empty(t, added)
	})

	t.Run("replace one link", func(t *testing.T) {
		removed, added := Diff([]string{b1, b2}, []string{b2, b3})
		assert.Equal(t, []string{b1}, removed)
		assert.Equal(t, []string{b3}, added)
	})

	t.Run("order independent", func(t *testing.T) {
		r1, a1 := Diff([]string{b1, b2, b3}, []string{b3})
		r2, a2 := Diff([]string{b3, b2, b1}, []string{b3})
		assert.ElementsMatch(t, r1, r2)
		assert.ElementsMatch(t, a1, a2)
	})

	t.Run("empty previous adds everything", func(t *testing.T) {
		removed, added := Diff(nil, []string{b1, b2})
		assert.Empty(t, removed)
		assert.Equal(t, []string{b1, b2}, added)
	})

	t.Run("empty desired removes everything", func(t *testing.T) {
		removed, added := Diff([]string{b1, b2}, nil)
		assert.Equal(t, []string{b1, b2}, removed)
		assert.Empty(t, added)
	})

	t.Run("canonical form", func(t *testing.T) {
		id := uuid.New()
		removed, added := DiffIDs([]uuid.UUID{id}, []uuid.UUID{uuid.MustParse(id.String())})
		assert.Empty(t, removed)
		assert.Empty(t, added)
	})
}

func TestValidateExisting(t *testing.T) {
	ctx := context.Background()
	a := &fakeRecord{id: uuid.New()}
	b := &fakeRecord{id: uuid.New()}
	store := newMemStore(a, b)

	t.Run("all ids resolve", func(t *testing.T) {
		got, err := ValidateExisting[*fakeRecord](ctx, store, []string{a.id.String(), b.id.String()}, "Author")
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("missing id", func(t *testing.T) {
		_, err := ValidateExisting[*fakeRecord](ctx, store, []string{a.id.String(), uuid.NewString()}, "Author")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("duplicate id fails like a missing one", func(t *testing.T) {
		_, err := ValidateExisting[*fakeRecord](ctx, store, []string{a.id.String()}, "Book")
		require.NoError(t, err)

		_, err = ValidateExisting[*fakeRecord](ctx, store, []string{a.id.String(), a.id.String()}, "Book")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Contains(t, err.Error(), "not a duplicate")
	})

	t.Run("malformed id", func(t *testing.T) {
		_, err := ValidateExisting[*fakeRecord](ctx, store, []string{"xyz"}, "Book")
		assert.ErrorIs(t, err, ErrInvalidIdentifier)
	})

	t.Run("empty list skips the store", func(t *testing.T) {
		before := store.lookups
		got, err := ValidateExisting[*fakeRecord](ctx, store, nil, "Book")
		require.NoError(t, err)
		assert.Empty(t, got)
		assert.Equal(t, before, store.lookups)
	})
}

func TestCompensatorRemoveBackReference(t *testing.T) {
	ctx := context.Background()
	ref := uuid.New()
	other := uuid.New()

	shared := &fakeRecord{id: uuid.New(), links: []uuid.UUID{ref, other}}
	solo := &fakeRecord{id: uuid.New(), links: []uuid.UUID{ref}}
	store := newMemStore(shared, solo)

	records, err := Resolve[*fakeRecord](ctx, store, []uuid.UUID{shared.id, solo.id}, "Book")
	require.NoError(t, err)

	comp := NewCompensator[*fakeRecord](store, "book")
	require.NoError(t, comp.RemoveBackReference(ctx, records, ref))

	require.Contains(t, store.records, shared.id)
	assert.Equal(t, []uuid.UUID{other}, store.records[shared.id].links)

	assert.NotContains(t, store.records, solo.id, "record left without links must be deleted")
	assert.Equal(t, []uuid.UUID{solo.id}, store.deletes)
	assert.Equal(t, []uuid.UUID{shared.id}, store.saves)
}

func TestCompensatorAddBackReference(t *testing.T) {
	ctx := context.Background()
	ref := uuid.New()
	existing := uuid.New()

	withLinks := &fakeRecord{id: uuid.New(), links: []uuid.UUID{existing}}
	empty := &fakeRecord{id: uuid.New()}
	already := &fakeRecord{id: uuid.New(), links: []uuid.UUID{existing, ref}}
	store := newMemStore(withLinks, empty, already)

	comp := NewCompensator[*fakeRecord](store, "author")
	require.NoError(t, comp.AddBackReference(ctx, []*fakeRecord{withLinks, empty, already}, ref))

	assert.Equal(t, []uuid.UUID{ref, existing}, store.records[withLinks.id].links)
	assert.Equal(t, []uuid.UUID{ref}, store.records[empty.id].links)
	assert.Equal(t, []uuid.UUID{ref, existing}, store.records[already.id].links)
}

func TestCompensatorPartialFailure(t *testing.T) {
	ctx := context.Background()
	ref := uuid.New()

	first := &fakeRecord{id: uuid.New()}
	broken := &fakeRecord{id: uuid.New()}
	last := &fakeRecord{id: uuid.New()}
	store := newMemStore(first, broken, last)
	store.failSaveOn = broken.id

	comp := NewCompensator[*fakeRecord](store, "author")
	err := comp.AddBackReference(ctx, []*fakeRecord{first, broken, last}, ref)

	var perr *PartialCompensationError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, OpAddBackReference, perr.Operation)
	assert.Equal(t, []uuid.UUID{first.id}, perr.Applied)
	assert.Equal(t, broken.id, perr.Failed)
	assert.Equal(t, []uuid.UUID{last.id}, perr.Skipped)

	// applied write is kept, later records untouched
	assert.Equal(t, []uuid.UUID{ref}, store.records[first.id].links)
	assert.Empty(t, store.records[last.id].links)
}

func TestNewValidationError(t *testing.T) {
	assert.NoError(t, NewValidationError(nil))

	plain := errors.New("boom")
	assert.Equal(t, plain, NewValidationError(plain))
}
