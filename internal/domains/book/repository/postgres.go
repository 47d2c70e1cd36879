package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"bookshelf-backend/internal/domains/book/model"
	"bookshelf-backend/pkg/cache"
)

// postgresRepository - pgxpool + squirrel, author_ids as uuid[]
type postgresRepository struct {
	pool     *pgxpool.Pool
	cache    cache.Cache
	cacheTTL time.Duration
	qb       sq.StatementBuilderType
}

func NewPostgresRepository(pool *pgxpool.Pool, cache cache.Cache, cacheTTL time.Duration) RepositoryInterface {
	return &postgresRepository{
		pool:     pool,
		cache:    cache,
		cacheTTL: cacheTTL,
		qb:       sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

const bookCacheKeyPrefix = "book:"

func cacheKey(id uuid.UUID) string {
	return bookCacheKeyPrefix + id.String()
}

func scanBook(row pgx.Row) (*model.Book, error) {
	var b model.Book
	err := row.Scan(
		&b.ID,
		&b.Title,
		&b.IBAN,
		&b.PublishedAt,
		&b.AuthorIDs,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if b.AuthorIDs == nil {
		b.AuthorIDs = []uuid.UUID{}
	}
	return &b, nil
}

func (r *postgresRepository) query(ctx context.Context, b sq.SelectBuilder) ([]*model.Book, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query books: %w", err)
	}
	defer rows.Close()

	books := make([]*model.Book, 0)
	for rows.Next() {
		book, err := scanBook(rows)
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

// ============================================
// READ
// ============================================

func (r *postgresRepository) FindAll(ctx context.Context) ([]*model.Book, error) {
	return r.query(ctx, r.qb.Select(columns...).From(tableName).OrderBy("created_at", "id"))
}

// FindByID - cache first, then database
func (r *postgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	var cached model.Book
	hit, err := r.cache.Get(ctx, cacheKey(id), &cached)
	if err != nil {
		log.Warn().Err(err).Str("book_id", id.String()).Msg("Book cache read failed")
	}
	if hit {
		return &cached, nil
	}

	query, args, err := r.qb.Select(columns...).
		From(tableName).
		Where(sq.Expr("id = ?", id)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	b, err := scanBook(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get book: %w", err)
	}

	if err := r.cache.Set(ctx, cacheKey(id), b, r.cacheTTL); err != nil {
		log.Warn().Err(err).Str("book_id", id.String()).Msg("Book cache write failed")
	}
	return b, nil
}

// FindByIDs is never cached
func (r *postgresRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*model.Book, error) {
	if len(ids) == 0 {
		return []*model.Book{}, nil
	}
	return r.query(ctx, r.qb.Select(columns...).
		From(tableName).
		Where(sq.Expr("id = ANY(?)", ids)).
		OrderBy("created_at", "id"))
}

// ============================================
// WRITE
// ============================================

func (r *postgresRepository) Save(ctx context.Context, b *model.Book) (*model.Book, error) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.AuthorIDs == nil {
		b.AuthorIDs = []uuid.UUID{}
	}
	now := time.Now().UTC()

	query, args, err := r.qb.Insert(tableName).
		Columns(columns...).
		Values(b.ID, b.Title, b.IBAN, b.PublishedAt, b.AuthorIDs, now, now).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			iban = EXCLUDED.iban,
			published_at = EXCLUDED.published_at,
			author_ids = EXCLUDED.author_ids,
			updated_at = EXCLUDED.updated_at
		RETURNING created_at, updated_at`).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, fmt.Errorf("failed to save book: %w", err)
	}

	r.invalidate(ctx, b.ID)
	return b, nil
}

func (r *postgresRepository) Update(ctx context.Context, id uuid.UUID, patch model.BookPatch) error {
	set := map[string]interface{}{"updated_at": time.Now().UTC()}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.IBAN != nil {
		set["iban"] = *patch.IBAN
	}
	if patch.PublishedAt != nil {
		set["published_at"] = *patch.PublishedAt
	}

	query, args, err := r.qb.Update(tableName).
		SetMap(set).
		Where(sq.Expr("id = ?", id)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update book: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrBookNotFound
	}

	r.invalidate(ctx, id)
	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query, args, err := r.qb.Delete(tableName).Where(sq.Expr("id = ?", id)).ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrBookNotFound
	}

	r.invalidate(ctx, id)
	return nil
}

func (r *postgresRepository) invalidate(ctx context.Context, id uuid.UUID) {
	if err := r.cache.Delete(ctx, cacheKey(id)); err != nil {
		log.Warn().Err(err).Str("book_id", id.String()).Msg("Book cache invalidation failed")
	}
}
