package storage

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const storageTable = "client_storage"

// PgxIface is the subset of *pgxpool.Pool the backend uses; pgxmock satisfies it in tests.
type PgxIface interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Postgres stores browser-context keys in the client_storage table.
type Postgres struct {
	db      PgxIface
	builder sq.StatementBuilderType
	closer  func()
}

var _ Backend = (*Postgres)(nil)

// NewPostgres wraps a pool. closer may be nil when the caller owns the pool.
func NewPostgres(db PgxIface, closer func()) *Postgres {
	return &Postgres{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		closer:  closer,
	}
}

func (p *Postgres) Get(ctx context.Context, key string) (string, bool, error) {
	query, args, err := p.builder.
		Select("value").
		From(storageTable).
		Where(sq.Eq{"storage_key": key}).
		ToSql()
	if err != nil {
		return "", false, err
	}

	var value string
	if err := p.db.QueryRow(ctx, query, args...).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

func (p *Postgres) Set(ctx context.Context, key, value string) error {
	query, args, err := p.builder.
		Insert(storageTable).
		Columns("storage_key", "value").
		Values(key, value).
		Suffix("ON CONFLICT (storage_key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()").
		ToSql()
	if err != nil {
		return err
	}
	_, err = p.db.Exec(ctx, query, args...)
	return err
}

func (p *Postgres) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	query, args, err := p.builder.
		Delete(storageTable).
		Where(sq.Eq{"storage_key": keys}).
		ToSql()
	if err != nil {
		return err
	}
	_, err = p.db.Exec(ctx, query, args...)
	return err
}

func (p *Postgres) Close() error {
	if p.closer != nil {
		p.closer()
	}
	return nil
}
