package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"bookshelf-backend/internal/domains/author/model"
	"bookshelf-backend/internal/domains/author/repository"
	bookModel "bookshelf-backend/internal/domains/book/model"
	bookRepo "bookshelf-backend/internal/domains/book/repository"
	"bookshelf-backend/internal/domains/link"
)

// authorService owns writes to the authors collection. Books are only
// read directly; every write to a book goes through the compensator.
type authorService struct {
	repo        repository.RepositoryInterface
	books       bookRepo.RepositoryInterface
	compensator *link.Compensator[*bookModel.Book]
}

func NewAuthorService(repo repository.RepositoryInterface, books bookRepo.RepositoryInterface) ServiceInterface {
	return &authorService{
		repo:        repo,
		books:       books,
		compensator: link.NewCompensator[*bookModel.Book](books, "book"),
	}
}

// ========================= READ =====================

func (s *authorService) List(ctx context.Context, bookID string) ([]*model.Author, error) {
	if bookID == "" {
		return s.repo.FindAll(ctx)
	}

	id, err := link.ParseID(bookID)
	if err != nil {
		return nil, err
	}
	b, err := s.books.FindByID(ctx, id)
	if errors.Is(err, bookModel.ErrBookNotFound) {
		return nil, bookModel.NotFound(bookID)
	}
	if err != nil {
		return nil, err
	}

	return s.repo.FindByIDs(ctx, b.AuthorIDs)
}

func (s *authorService) Get(ctx context.Context, id string) (*model.Author, error) {
	_, a, err := s.find(ctx, id)
	return a, err
}

func (s *authorService) find(ctx context.Context, raw string) (uuid.UUID, *model.Author, error) {
	id, err := link.ParseID(raw)
	if err != nil {
		return uuid.Nil, nil, err
	}
	a, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, model.ErrAuthorNotFound) {
		return id, nil, model.NotFound(raw)
	}
	if err != nil {
		return id, nil, err
	}
	return id, a, nil
}

// findCurrent reads the stored author past the cache. Writes diff against
// this copy, so it must be the row as it is now.
func (s *authorService) findCurrent(ctx context.Context, raw string) (uuid.UUID, *model.Author, error) {
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

// ========================= CREATE =====================

// Create stores a new author. Authors start without books; links are
// added later from the book side or through Update.
func (s *authorService) Create(ctx context.Context, req model.CreateAuthorRequest) (*model.Author, error) {
	a := req.ToEntity()
	if err := a.Validate(); err != nil {
		return nil, err
	}

	saved, err := s.repo.Save(ctx, a)
	if err != nil {
		return nil, err
	}

	log.Info().Str("author_id", saved.ID.String()).Msg("Author created")
	return saved, nil
}

// ========================= UPDATE =====================

// Update applies the scalar patch and, when req.BookIDs is set, moves the
// author's links to exactly that set:
//  1. the desired books must all exist
//  2. the stored author is diffed against the desired set
//  3. removed books lose the back-reference (and are deleted if left empty)
//  4. the author is saved
//  5. added books gain the back-reference
//
// A failure in 3 or 5 is not rolled back.
func (s *authorService) Update(ctx context.Context, id string, req model.UpdateAuthorRequest) error {
	if req.BookIDs == nil {
		return s.updateFields(ctx, id, req.Patch())
	}
	if len(req.BookIDs) == 0 {
		return &link.ValidationError{Fields: []link.FieldError{
			{Field: "bookIds", Message: "must contain at least one book"},
		}}
	}

	desired, err := link.ParseIDs(req.BookIDs)
	if err != nil {
		return err
	}
	if _, err := link.Resolve[*bookModel.Book](ctx, s.books, desired, bookModel.Kind); err != nil {
		return err
	}

	authorID, existing, err := s.findCurrent(ctx, id)
	if err != nil {
		return err
	}

	merged := req.Patch().Apply(*existing)
	merged.SetLinks(desired)
	if err := merged.Validate(); err != nil {
		return err
	}

	removed, added := link.DiffIDs(existing.BookIDs, merged.BookIDs)

	if len(removed) > 0 {
		unlinked, err := link.ValidateExisting[*bookModel.Book](ctx, s.books, removed, bookModel.Kind)
		if err != nil {
			return err
		}
		if err := s.compensator.RemoveBackReference(ctx, unlinked, authorID); err != nil {
			return err
		}
	}

	saved, err := s.repo.Save(ctx, &merged)
	if err != nil {
		return err
	}

	if len(added) > 0 {
		linked, err := link.ValidateExisting[*bookModel.Book](ctx, s.books, added, bookModel.Kind)
		if err != nil {
			return err
		}
		if err := s.compensator.AddBackReference(ctx, linked, saved.ID); err != nil {
			return err
		}
	}

	log.Info().
		Str("author_id", saved.ID.String()).
		Int("removed", len(removed)).
		Int("added", len(added)).
		Msg("Author updated")
	return nil
}

// updateFields writes a scalar-only patch. The links column is not touched.
func (s *authorService) updateFields(ctx context.Context, id string, patch model.AuthorPatch) error {
	authorID, existing, err := s.findCurrent(ctx, id)
	if err != nil {
		return err
	}

	merged := patch.Apply(*existing)
	if err := merged.Validate(); err != nil {
		return err
	}

	err = s.repo.Update(ctx, authorID, patch)
	if errors.Is(err, model.ErrAuthorNotFound) {
		return model.NotFound(id)
	}
	return err
}

// ========================= REMOVE =====================

// Remove unlinks the author from every book it lists, deleting books left
// without authors, and then deletes the author.
func (s *authorService) Remove(ctx context.Context, id string) error {
	authorID, existing, err := s.findCurrent(ctx, id)
	if err != nil {
		return err
	}

	linked, err := link.Resolve[*bookModel.Book](ctx, s.books, existing.BookIDs, bookModel.Kind)
	if err != nil {
		return err
	}
	if err := s.compensator.RemoveBackReference(ctx, linked, authorID); err != nil {
		return err
	}

	err = s.repo.Delete(ctx, authorID)
	if errors.Is(err, model.ErrAuthorNotFound) {
		return model.NotFound(id)
	}
	if err != nil {
		return err
	}

	log.Info().Str("author_id", authorID.String()).Int("books", len(linked)).Msg("Author removed")
	return nil
}
