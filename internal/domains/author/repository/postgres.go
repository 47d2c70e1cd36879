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

	"bookshelf-backend/internal/domains/author/model"
	"bookshelf-backend/pkg/cache"
)

// postgresRepository stores authors in PostgreSQL (book_ids as uuid[])
// with a Redis cache-aside on FindByID.
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

const authorCacheKeyPrefix = "author:"

func cacheKey(id uuid.UUID) string {
	return authorCacheKeyPrefix + id.String()
}

func scanAuthor(row pgx.Row) (*model.Author, error) {
	var a model.Author
	err := row.Scan(
		&a.ID,
		&a.FirstName,
		&a.LastName,
		&a.Birthday,
		&a.BookIDs,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if a.BookIDs == nil {
		a.BookIDs = []uuid.UUID{}
	}
	return &a, nil
}

func (r *postgresRepository) query(ctx context.Context, b sq.SelectBuilder) ([]*model.Author, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query authors: %w", err)
	}
	defer rows.Close()

	authors := make([]*model.Author, 0)
	for rows.Next() {
		a, err := scanAuthor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan author: %w", err)
		}
		authors = append(authors, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return authors, nil
}

// ========================= READ =====================

func (r *postgresRepository) FindAll(ctx context.Context) ([]*model.Author, error) {
	return r.query(ctx, r.qb.Select(columns...).From(tableName).OrderBy("created_at", "id"))
}

func (r *postgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Author, error) {
	var cached model.Author
	hit, err := r.cache.Get(ctx, cacheKey(id), &cached)
	if err != nil {
		log.Warn().Err(err).Str("author_id", id.String()).Msg("Author cache read failed")
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

	a, err := scanAuthor(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrAuthorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get author: %w", err)
	}

	if err := r.cache.Set(ctx, cacheKey(id), a, r.cacheTTL); err != nil {
		log.Warn().Err(err).Str("author_id", id.String()).Msg("Author cache write failed")
	}
	return a, nil
}

// FindByIDs always reads the database: existence checks must see
// the current rows.
func (r *postgresRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*model.Author, error) {
	if len(ids) == 0 {
		return []*model.Author{}, nil
	}
	return r.query(ctx, r.qb.Select(columns...).
		From(tableName).
		Where(sq.Expr("id = ANY(?)", ids)).
		OrderBy("created_at", "id"))
}

// ========================= WRITE =====================

func (r *postgresRepository) Save(ctx context.Context, a *model.Author) (*model.Author, error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.BookIDs == nil {
		a.BookIDs = []uuid.UUID{}
	}
	now := time.Now().UTC()

	query, args, err := r.qb.Insert(tableName).
		Columns(columns...).
		Values(a.ID, a.FirstName, a.LastName, a.Birthday, a.BookIDs, now, now).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			birthday = EXCLUDED.birthday,
			book_ids = EXCLUDED.book_ids,
			updated_at = EXCLUDED.updated_at
		RETURNING created_at, updated_at`).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, fmt.Errorf("failed to save author: %w", err)
	}

	r.invalidate(ctx, a.ID)
	return a, nil
}

func (r *postgresRepository) Update(ctx context.Context, id uuid.UUID, patch model.AuthorPatch) error {
	set := map[string]interface{}{"updated_at": time.Now().UTC()}
	if patch.FirstName != nil {
		set["first_name"] = *patch.FirstName
	}
	if patch.LastName != nil {
		set["last_name"] = *patch.LastName
	}
	if patch.Birthday != nil {
		set["birthday"] = *patch.Birthday
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
		return fmt.Errorf("failed to update author: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrAuthorNotFound
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
		return fmt.Errorf("failed to delete author: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrAuthorNotFound
	}

	r.invalidate(ctx, id)
	return nil
}

func (r *postgresRepository) invalidate(ctx context.Context, id uuid.UUID) {
	if err := r.cache.Delete(ctx, cacheKey(id)); err != nil {
		log.Warn().Err(err).Str("author_id", id.String()).Msg("Author cache invalidation failed")
	}
}
