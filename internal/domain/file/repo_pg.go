package file

import (
	"context"
	"errors"

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

const fileCols = `id, role, first_name, last_name, phone, email, address, secret_hash,
	birth_date, referring_practitioner_id, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, f *File) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO clinical_file (
			id, role, first_name, last_name, phone, email, address, secret_hash,
			birth_date, referring_practitioner_id
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		f.ID, f.Role, f.FirstName, f.LastName, f.Phone, f.Email, f.Address, f.SecretHash,
		f.BirthDate, f.ReferringPractitionerID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.Conflict("clinical file %s already exists", f.ID)
		}
		if isFKViolation(err) {
			return apperr.CreateFailed("persist clinical file", err)
		}
		return err
	}

	return r.replaceSpecialties(ctx, f)
}

func (r *repoPG) GetByID(ctx context.Context, id string) (*File, error) {
	f, err := scanFile(r.conn(ctx).QueryRow(ctx, `SELECT `+fileCols+` FROM clinical_file WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("clinical file %s not found", id)
		}
		return nil, err
	}
	if f.IsPractitioner() {
		if f.Specialties, err = r.specialties(ctx, f.ID); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func (r *repoPG) Update(ctx context.Context, f *File) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE clinical_file SET
			first_name=$2, last_name=$3, phone=$4, email=$5, address=$6, secret_hash=$7,
			birth_date=$8, referring_practitioner_id=$9, updated_at=NOW()
		WHERE id = $1`,
		f.ID, f.FirstName, f.LastName, f.Phone, f.Email, f.Address, f.SecretHash,
		f.BirthDate, f.ReferringPractitionerID,
	)
	if err != nil {
		if isFKViolation(err) {
			return apperr.UpdateFailed("persist clinical file", err)
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("clinical file %s not found", f.ID)
	}

	if f.IsPractitioner() {
		return r.replaceSpecialties(ctx, f)
	}
	return nil
}

func (r *repoPG) DeletePractitioner(ctx context.Context, id string) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM clinical_file WHERE id = $1 AND role = 'practitioner'`, id)
	if err != nil {
		if isFKViolation(err) {
			return apperr.DeleteFailed("practitioner is still referenced", err)
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("practitioner %s not found", id)
	}
	return nil
}

func (r *repoPG) DeletePatient(ctx context.Context, id string) error {
	// Delegations and items go in the same transaction as the file row so no
	// window exists where items reference a deleted file.
	return db.RunInTx(ctx, r.pool, func(txCtx context.Context) error {
		c := r.conn(txCtx)
		if _, err := c.Exec(txCtx, `DELETE FROM delegation WHERE patient_file_id = $1`, id); err != nil {
			return apperr.DeleteFailed("remove delegations", err)
		}
		if _, err := c.Exec(txCtx, `DELETE FROM clinical_item WHERE patient_file_id = $1`, id); err != nil {
			return apperr.DeleteFailed("remove clinical items", err)
		}
		tag, err := c.Exec(txCtx, `DELETE FROM clinical_file WHERE id = $1 AND role = 'patient'`, id)
		if err != nil {
			return apperr.DeleteFailed("remove patient file", err)
		}
		if tag.RowsAffected() == 0 {
			return apperr.NotFound("patient %s not found", id)
		}
		return nil
	})
}

func (r *repoPG) Search(ctx context.Context, keyword string) ([]*File, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+fileCols+` FROM clinical_file
		WHERE first_name ILIKE '%' || $1 || '%' OR last_name ILIKE '%' || $1 || '%'
		ORDER BY last_name, first_name`, keyword)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectFiles(rows)
}

func (r *repoPG) List(ctx context.Context, role Role, limit, offset int) ([]*File, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM clinical_file WHERE role = $1`, role).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+fileCols+` FROM clinical_file
		WHERE role = $1
		ORDER BY last_name, first_name
		LIMIT $2 OFFSET $3`, role, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	files, err := collectFiles(rows)
	if err != nil {
		return nil, 0, err
	}
	return files, total, nil
}

func (r *repoPG) specialties(ctx context.Context, fileID string) ([]string, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT specialty FROM clinical_file_specialty WHERE file_id = $1 ORDER BY specialty`, fileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *repoPG) replaceSpecialties(ctx context.Context, f *File) error {
	if !f.IsPractitioner() {
		return nil
	}
	c := r.conn(ctx)
	if _, err := c.Exec(ctx, `DELETE FROM clinical_file_specialty WHERE file_id = $1`, f.ID); err != nil {
		return err
	}
	for _, s := range f.Specialties {
		if _, err := c.Exec(ctx,
			`INSERT INTO clinical_file_specialty (file_id, specialty) VALUES ($1, $2)`, f.ID, s); err != nil {
			return err
		}
	}
	return nil
}

func scanFile(row pgx.Row) (*File, error) {
	f := &File{}
	err := row.Scan(
		&f.ID, &f.Role, &f.FirstName, &f.LastName, &f.Phone, &f.Email, &f.Address, &f.SecretHash,
		&f.BirthDate, &f.ReferringPractitionerID, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func collectFiles(rows pgx.Rows) ([]*File, error) {
	var files []*File
	for rows.Next() {
		f := &File{}
		err := rows.Scan(
			&f.ID, &f.Role, &f.FirstName, &f.LastName, &f.Phone, &f.Email, &f.Address, &f.SecretHash,
			&f.BirthDate, &f.ReferringPractitionerID, &f.CreatedAt, &f.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

func isFKViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
