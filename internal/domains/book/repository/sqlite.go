package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"bookshelf-backend/internal/domains/book/model"
)

type sqliteRepository struct {
	db  *sql.DB
	qb  sq.StatementBuilderType
	now func() time.Time
}

func NewSQLiteRepository(db *sql.DB) RepositoryInterface {
	return &sqliteRepository{
		db:  db,
		qb:  sq.StatementBuilder.PlaceholderFormat(sq.Question).RunWith(db),
		now: time.Now,
	}
}

func scanSQLiteBook(row sq.RowScanner) (*model.Book, error) {
	var id, title, iban, publishedAt, authorIDs, createdAt, updatedAt string
	if err := row.Scan(&id, &title, &iban, &publishedAt, &authorIDs, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	b := model.Book{Title: title, IBAN: iban}
	var err error
	if b.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("decode id: %w", err)
	}
	if b.PublishedAt, err = time.Parse(time.RFC3339Nano, publishedAt); err != nil {
		return nil, fmt.Errorf("decode published_at: %w", err)
	}
	if err := json.Unmarshal([]byte(authorIDs), &b.AuthorIDs); err != nil {
		return nil, fmt.Errorf("decode author_ids: %w", err)
	}
	if b.AuthorIDs == nil {
		b.AuthorIDs = []uuid.UUID{}
	}
	if b.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("decode created_at: %w", err)
	}
	if b.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("decode updated_at: %w", err)
	}
	return &b, nil
}

// timeLayout keeps the fraction at nine digits so text order matches time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func (r *sqliteRepository) query(ctx context.Context, b sq.SelectBuilder) ([]*model.Book, error) {
	rows, err := b.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("query books: %w", err)
	}
	defer func() { _ = rows.Close() }()

	books := make([]*model.Book, 0)
	for rows.Next() {
		book, err := scanSQLiteBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, book)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return books, nil
}

func (r *sqliteRepository) FindAll(ctx context.Context) ([]*model.Book, error) {
	return r.query(ctx, r.qb.Select(columns...).From(tableName).OrderBy("created_at", "id"))
}

func (r *sqliteRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	b, err := scanSQLiteBook(r.qb.Select(columns...).
		From(tableName).
		Where(sq.Eq{"id": id.String()}).
		QueryRowContext(ctx))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get book: %w", err)
	}
	return b, nil
}

func (r *sqliteRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*model.Book, error) {
	if len(ids) == 0 {
		return []*model.Book{}, nil
	}
	keys := lo.Map(ids, func(id uuid.UUID, _ int) string { return id.String() })
	return r.query(ctx, r.qb.Select(columns...).
		From(tableName).
		Where(sq.Eq{"id": keys}).
		OrderBy("created_at", "id"))
}

func (r *sqliteRepository) Save(ctx context.Context, b *model.Book) (*model.Book, error) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.AuthorIDs == nil {
		b.AuthorIDs = []uuid.UUID{}
	}
	links, err := json.Marshal(b.AuthorIDs)
	if err != nil {
		return nil, fmt.Errorf("encode author_ids: %w", err)
	}
	now := formatTime(r.now())

	var createdAt, updatedAt string
	err = r.qb.Insert(tableName).
		Columns(columns...).
		Values(b.ID.String(), b.Title, b.IBAN, formatTime(b.PublishedAt), string(links), now, now).
		Suffix(`ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			iban = excluded.iban,
			published_at = excluded.published_at,
			author_ids = excluded.author_ids,
			updated_at = excluded.updated_at
		RETURNING created_at, updated_at`).
		QueryRowContext(ctx).
		Scan(&createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to save book: %w", err)
	}

	if b.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("decode created_at: %w", err)
	}
	if b.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("decode updated_at: %w", err)
	}
	return b, nil
}

func (r *sqliteRepository) Update(ctx context.Context, id uuid.UUID, patch model.BookPatch) error {
	set := map[string]interface{}{"updated_at": formatTime(r.now())}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.IBAN != nil {
		set["iban"] = *patch.IBAN
	}
	if patch.PublishedAt != nil {
		set["published_at"] = formatTime(*patch.PublishedAt)
	}

	res, err := r.qb.Update(tableName).
		SetMap(set).
		Where(sq.Eq{"id": id.String()}).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to update book: %w", err)
	}
	return requireAffected(res)
}

func (r *sqliteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.qb.Delete(tableName).
		Where(sq.Eq{"id": id.String()}).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return model.ErrBookNotFound
	}
	return nil
}
