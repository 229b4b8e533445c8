package record

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

const itemCols = `id, kind, patient_file_id, author_id, item_date, comments,
	act_code, diagnosis_code, recipient_id, body, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, i *Item) error {
	i.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO clinical_item (
			id, kind, patient_file_id, author_id, item_date, comments,
			act_code, diagnosis_code, recipient_id, body
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		i.ID, i.Kind, i.PatientFileID, i.AuthorID, i.Date, i.Comments,
		i.ActCode, i.DiagnosisCode, i.RecipientID, i.Body,
	)
	if err != nil {
		if isFKViolation(err) {
			return apperr.CreateFailed("persist clinical item", err)
		}
		return err
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Item, error) {
	i, err := scanItem(r.conn(ctx).QueryRow(ctx, `SELECT `+itemCols+` FROM clinical_item WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("clinical item %s not found", id)
		}
		return nil, err
	}
	return i, nil
}

func (r *repoPG) Update(ctx context.Context, i *Item) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE clinical_item SET
			item_date=$2, comments=$3, act_code=$4, diagnosis_code=$5,
			recipient_id=$6, body=$7, updated_at=NOW()
		WHERE id = $1`,
		i.ID, i.Date, i.Comments, i.ActCode, i.DiagnosisCode, i.RecipientID, i.Body,
	)
	if err != nil {
		if isFKViolation(err) {
			return apperr.UpdateFailed("persist clinical item", err)
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("clinical item %s not found", i.ID)
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM clinical_item WHERE id = $1`, id)
	if err != nil {
		return apperr.DeleteFailed("remove clinical item", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("clinical item %s not found", id)
	}
	return nil
}

func (r *repoPG) ListByPatient(ctx context.Context, patientFileID string) ([]*Item, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+itemCols+` FROM clinical_item WHERE patient_file_id = $1 ORDER BY item_date, created_at`,
		patientFileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Item
	for rows.Next() {
		i := &Item{}
		err := rows.Scan(
			&i.ID, &i.Kind, &i.PatientFileID, &i.AuthorID, &i.Date, &i.Comments,
			&i.ActCode, &i.DiagnosisCode, &i.RecipientID, &i.Body, &i.CreatedAt, &i.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

func scanItem(row pgx.Row) (*Item, error) {
	i := &Item{}
	err := row.Scan(
		&i.ID, &i.Kind, &i.PatientFileID, &i.AuthorID, &i.Date, &i.Comments,
		&i.ActCode, &i.DiagnosisCode, &i.RecipientID, &i.Body, &i.CreatedAt, &i.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return i, nil
}

func isFKViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
