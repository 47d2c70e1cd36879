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

	"bookshelf-backend/internal/domains/author/model"
)

// sqliteRepository stores authors in SQLite. book_ids is JSON text and
// times are fixed-width UTC text.
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

type sqliteRow struct {
	id        string
	firstName string
	lastName  string
	birthday  string
	bookIDs   string
	createdAt string
	updatedAt string
}

func scanSQLiteAuthor(row sq.RowScanner) (*model.Author, error) {
	var raw sqliteRow
	if err := row.Scan(&raw.id, &raw.firstName, &raw.lastName, &raw.birthday, &raw.bookIDs, &raw.createdAt, &raw.updatedAt); err != nil {
		return nil, err
	}
	return raw.decode()
}

func (raw sqliteRow) decode() (*model.Author, error) {
	var (
		a   model.Author
		err error
	)
	if a.ID, err = uuid.Parse(raw.id); err != nil {
		return nil, fmt.Errorf("decode id: %w", err)
	}
	a.FirstName = raw.firstName
	a.LastName = raw.lastName
	if a.Birthday, err = time.Parse(time.RFC3339Nano, raw.birthday); err != nil {
		return nil, fmt.Errorf("decode birthday: %w", err)
	}
	if err := json.Unmarshal([]byte(raw.bookIDs), &a.BookIDs); err != nil {
		return nil, fmt.Errorf("decode book_ids: %w", err)
	}
	if a.BookIDs == nil {
		a.BookIDs = []uuid.UUID{}
	}
	if a.CreatedAt, err = time.Parse(time.RFC3339Nano, raw.createdAt); err != nil {
		return nil, fmt.Errorf("decode created_at: %w", err)
	}
	if a.UpdatedAt, err = time.Parse(time.RFC3339Nano, raw.updatedAt); err != nil {
		return nil, fmt.Errorf("decode updated_at: %w", err)
	}
	return &a, nil
}

// timeLayout keeps the fraction at nine digits so text order matches time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func (r *sqliteRepository) query(ctx context.Context, b sq.SelectBuilder) ([]*model.Author, error) {
	rows, err := b.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("query authors: %w", err)
	}
	defer func() { _ = rows.Close() }()

	authors := make([]*model.Author, 0)
	for rows.Next() {
		a, err := scanSQLiteAuthor(rows)
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

func (r *sqliteRepository) FindAll(ctx context.Context) ([]*model.Author, error) {
	return r.query(ctx, r.qb.Select(columns...).From(tableName).OrderBy("created_at", "id"))
}

func (r *sqliteRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Author, error) {
	row := r.qb.Select(columns...).
		From(tableName).
		Where(sq.Eq{"id": id.String()}).
		QueryRowContext(ctx)

	a, err := scanSQLiteAuthor(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrAuthorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get author: %w", err)
	}
	return a, nil
}

func (r *sqliteRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*model.Author, error) {
	if len(ids) == 0 {
		return []*model.Author{}, nil
	}
	keys := lo.Map(ids, func(id uuid.UUID, _ int) string { return id.String() })
	return r.query(ctx, r.qb.Select(columns...).
		From(tableName).
		Where(sq.Eq{"id": keys}).
		OrderBy("created_at", "id"))
}

// ========================= WRITE =====================

func (r *sqliteRepository) Save(ctx context.Context, a *model.Author) (*model.Author, error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.BookIDs == nil {
		a.BookIDs = []uuid.UUID{}
	}
	links, err := json.Marshal(a.BookIDs)
	if err != nil {
		return nil, fmt.Errorf("encode book_ids: %w", err)
	}
	now := formatTime(r.now())

	var createdAt, updatedAt string
	err = r.qb.Insert(tableName).
		Columns(columns...).
		Values(a.ID.String(), a.FirstName, a.LastName, formatTime(a.Birthday), string(links), now, now).
		Suffix(`ON CONFLICT(id) DO UPDATE SET
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			birthday = excluded.birthday,
			book_ids = excluded.book_ids,
			updated_at = excluded.updated_at
		RETURNING created_at, updated_at`).
		QueryRowContext(ctx).
		Scan(&createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to save author: %w", err)
	}

	if a.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("decode created_at: %w", err)
	}
	if a.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("decode updated_at: %w", err)
	}
	return a, nil
}

func (r *sqliteRepository) Update(ctx context.Context, id uuid.UUID, patch model.AuthorPatch) error {
	set := map[string]interface{}{"updated_at": formatTime(r.now())}
	if patch.FirstName != nil {
		set["first_name"] = *patch.FirstName
	}
	if patch.LastName != nil {
		set["last_name"] = *patch.LastName
	}
	if patch.Birthday != nil {
		set["birthday"] = formatTime(*patch.Birthday)
	}

	res, err := r.qb.Update(tableName).
		SetMap(set).
		Where(sq.Eq{"id": id.String()}).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to update author: %w", err)
	}
	return requireAffected(res)
}

func (r *sqliteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.qb.Delete(tableName).
		Where(sq.Eq{"id": id.String()}).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete author: %w", err)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return model.ErrAuthorNotFound
	}
	return nil
}
