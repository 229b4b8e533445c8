package delegation

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sharemed/smr/internal/platform/apperr"
	"github.com/sharemed/smr/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func (r *repoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const delegationCols = `id, patient_file_id, practitioner_id, valid_until, created_at`

func (r *repoPG) Create(ctx context.Context, d *Delegation) error {
	d.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO delegation (id, patient_file_id, practitioner_id, valid_until)
		VALUES ($1, $2, $3, $4)`,
		d.ID, d.PatientFileID, d.PractitionerID, d.ValidUntil,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return apperr.CreateFailed("persist delegation", err)
		}
		return err
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Delegation, error) {
	d := &Delegation{}
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT `+delegationCols+` FROM delegation WHERE id = $1`, id).
		Scan(&d.ID, &d.PatientFileID, &d.PractitionerID, &d.ValidUntil, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("delegation %s not found", id)
		}
		return nil, err
	}
	return d, nil
}

func (r *repoPG) ListByPatient(ctx context.Context, patientFileID string) ([]*Delegation, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+delegationCols+` FROM delegation WHERE patient_file_id = $1 ORDER BY created_at`, patientFileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Delegation
	for rows.Next() {
		d := &Delegation{}
		if err := rows.Scan(&d.ID, &d.PatientFileID, &d.PractitionerID, &d.ValidUntil, &d.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM delegation WHERE id = $1`, id)
	if err != nil {
		return apperr.DeleteFailed("remove delegation", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("delegation %s not found", id)
	}
	return nil
}
