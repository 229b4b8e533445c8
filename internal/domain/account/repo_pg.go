package account

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sharemed/smr/internal/platform/apperr"
	"github.com/sharemed/smr/internal/platform/db"
)

type providerPG struct {
	pool *pgxpool.Pool
}

func NewProvider(pool *pgxpool.Pool) Provider {
	return &providerPG{pool: pool}
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func (p *providerPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return p.pool
}

func (p *providerPG) Find(ctx context.Context, id string) (*Credential, error) {
	return p.scanOne(p.conn(ctx).QueryRow(ctx,
		`SELECT id, username, password_hash, created_at FROM credential WHERE id = $1`, id),
		id)
}

func (p *providerPG) FindByUsername(ctx context.Context, username string) (*Credential, error) {
	return p.scanOne(p.conn(ctx).QueryRow(ctx,
		`SELECT id, username, password_hash, created_at FROM credential WHERE username = $1`, username),
		username)
}

func (p *providerPG) Save(ctx context.Context, cred *Credential) error {
	_, err := p.conn(ctx).Exec(ctx, `
		INSERT INTO credential (id, username, password_hash)
		VALUES ($1, $2, $3)`,
		cred.ID, cred.Username, cred.PasswordHash,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return apperr.Conflict("credential for %s already exists", cred.ID)
			case "23503":
				return apperr.CreateFailed("persist credential", err)
			}
		}
		return apperr.CreateFailed("persist credential", err)
	}
	return nil
}

func (p *providerPG) Delete(ctx context.Context, id string) error {
	tag, err := p.conn(ctx).Exec(ctx, `DELETE FROM credential WHERE id = $1`, id)
	if err != nil {
		return apperr.DeleteFailed("remove credential", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("credential %s not found", id)
	}
	return nil
}

func (p *providerPG) scanOne(row pgx.Row, key string) (*Credential, error) {
	c := &Credential{}
	err := row.Scan(&c.ID, &c.Username, &c.PasswordHash, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("credential %s not found", key)
		}
		return nil, err
	}
	return c, nil
}
