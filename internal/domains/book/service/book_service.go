package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	authorModel "bookshelf-backend/internal/domains/author/model"
	authorRepo "bookshelf-backend/internal/domains/author/repository"
	"bookshelf-backend/internal/domains/book/model"
	"bookshelf-backend/internal/domains/book/repository"
	"bookshelf-backend/internal/domains/link"
)

// BookService owns writes to the books collection; authors are written
// only through the compensator.
type BookService struct {
	repo        repository.RepositoryInterface
	authors     authorRepo.RepositoryInterface
	compensator *link.Compensator[*authorModel.Author]
}

func NewService(repo repository.RepositoryInterface, authors authorRepo.RepositoryInterface) ServiceInterface {
	return &BookService{
		repo:        repo,
		authors:     authors,
		compensator: link.NewCompensator[*authorModel.Author](authors, "author"),
	}
}

// ============================================
// READ
// ============================================

// List - all books, or the books listed on authorID
func (s *BookService) List(ctx context.Context, authorID string) ([]*model.Book, error) {
	if authorID == "" {
		return s.repo.FindAll(ctx)
	}

	id, err := link.ParseID(authorID)
	if err != nil {
		return nil, err
	}
	a, err := s.authors.FindByID(ctx, id)
	if errors.Is(err, authorModel.ErrAuthorNotFound) {
		return nil, authorModel.NotFound(authorID)
	}
	if err != nil {
		return nil, err
	}

	return s.repo.FindByIDs(ctx, a.BookIDs)
}

func (s *BookService) Get(ctx context.Context, id string) (*model.Book, error) {
	_, b, err := s.find(ctx, id)
	return b, err
}

func (s *BookService) find(ctx context.Context, raw string) (uuid.UUID, *model.Book, error) {
	id, err := link.ParseID(raw)
	if err != nil {
		return uuid.Nil, nil, err
	}
	b, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, model.ErrBookNotFound) {
		return id, nil, model.NotFound(raw)
	}
	if err != nil {
		return id, nil, err
	}
	return id, b, nil
}

// findCurrent reads the stored book past the cache. Writes diff against
// this copy, so it must be the row as it is now.
func (s *BookService) findCurrent(ctx context.Context, raw string) (uuid.UUID, *model.Book, error) {
	id, err := link.ParseID(raw)
	if err != nil {
		return uuid.Nil, nil, err
	}
	found, err := s.repo.FindByIDs(ctx, []uuid.UUID{id})
	if err != nil {
		return id, nil, err
	}
	if len(found) == 0 {
		return id, nil, model.NotFound(raw)
	}
	return id, found[0], nil
}

// ============================================
// CREATE
// ============================================

// Create validates the authors, saves the book and then gives every
// listed author a back-reference to it.
func (s *BookService) Create(ctx context.Context, req model.CreateBookRequest) (*model.Book, error) {
	authorIDs, err := link.ParseIDs(req.AuthorIDs)
	if err != nil {
		return nil, err
	}
	authors, err := link.Resolve[*authorModel.Author](ctx, s.authors, authorIDs, authorModel.Kind)
	if err != nil {
		return nil, err
	}

	b := &model.Book{
		Title:       req.Title,
		IBAN:        req.IBAN,
		PublishedAt: req.PublishedAt,
		AuthorIDs:   authorIDs,
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}

	saved, err := s.repo.Save(ctx, b)
	if err != nil {
		return nil, err
	}

	if err := s.compensator.AddBackReference(ctx, authors, saved.ID); err != nil {
		return nil, err
	}

	log.Info().
		Str("book_id", saved.ID.String()).
		Int("authors", len(authors)).
		Msg("Book created")
	return saved, nil
}

// ============================================
// UPDATE
// ============================================

// Update - same protocol as the author side:
// validate desired -> load -> diff -> unlink removed -> save -> link added.
// Nothing is rolled back when a compensation loop fails partway.
func (s *BookService) Update(ctx context.Context, id string, req model.UpdateBookRequest) error {
	if req.AuthorIDs == nil {
		return s.updateFields(ctx, id, req.Patch())
	}

	desired, err := link.ParseIDs(req.AuthorIDs)
	if err != nil {
		return err
	}
	if _, err := link.Resolve[*authorModel.Author](ctx, s.authors, desired, authorModel.Kind); err != nil {
		return err
	}

	bookID, existing, err := s.findCurrent(ctx, id)
	if err != nil {
		return err
	}

	merged := req.Patch().Apply(*existing)
	merged.SetLinks(desired)
	// Rejects an empty author list before any write
	if err := merged.Validate(); err != nil {
		return err
	}

	removed, added := link.DiffIDs(existing.AuthorIDs, merged.AuthorIDs)

	if len(removed) > 0 {
		unlinked, err := link.ValidateExisting[*authorModel.Author](ctx, s.authors, removed, authorModel.Kind)
		if err != nil {
			return err
		}
		if err := s.compensator.RemoveBackReference(ctx, unlinked, bookID); err != nil {
			return err
		}
	}

	saved, err := s.repo.Save(ctx, &merged)
	if err != nil {
		return err
	}

	if len(added) > 0 {
		linked, err := link.ValidateExisting[*authorModel.Author](ctx, s.authors, added, authorModel.Kind)
		if err != nil {
			return err
		}
		if err := s.compensator.AddBackReference(ctx, linked, saved.ID); err != nil {
			return err
		}
	}

	log.Info().
		Str("book_id", saved.ID.String()).
		Int("removed", len(removed)).
		Int("added", len(added)).
		Msg("Book updated")
	return nil
}

func (s *BookService) updateFields(ctx context.Context, id string, patch model.BookPatch) error {
	bookID, existing, err := s.findCurrent(ctx, id)
	if err != nil {
		return err
	}

	merged := patch.Apply(*existing)
	if err := merged.Validate(); err != nil {
		return err
	}

	err = s.repo.Update(ctx, bookID, patch)
	if errors.Is(err, model.ErrBookNotFound) {
		return model.NotFound(id)
	}
	return err
}

// ============================================
// REMOVE
// ============================================

func (s *BookService) Remove(ctx context.Context, id string) error {
	bookID, existing, err := s.findCurrent(ctx, id)
	if err != nil {
		return err
	}

	// The authors may have been deleted since the last write
	authors, err := link.Resolve[*authorModel.Author](ctx, s.authors, existing.AuthorIDs, authorModel.Kind)
	if err != nil {
		return err
	}
	if err := s.compensator.RemoveBackReference(ctx, authors, bookID); err != nil {
		return err
	}

	err = s.repo.Delete(ctx, bookID)
	if errors.Is(err, model.ErrBookNotFound) {
		return model.NotFound(id)
	}
	if err != nil {
		return err
	}

	log.Info().Str("book_id", bookID.String()).Int("authors", len(authors)).Msg("Book removed")
	return nil
}
