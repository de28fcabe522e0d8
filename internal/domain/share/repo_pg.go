package share

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medvault/medvault/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const sharedCols = `id, title, type, description, hospital_name, doctor_name,
	consultation_date, is_emergency, file_key, created_at`

func (r *repoPG) ListPublicByIDs(ctx context.Context, ids []uuid.UUID) ([]*SharedRecord, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+sharedCols+` FROM records WHERE id = ANY($1) ORDER BY created_at DESC`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*SharedRecord{}
	for rows.Next() {
		var rec SharedRecord
		if err := rows.Scan(&rec.ID, &rec.Title, &rec.Type, &rec.Description,
			&rec.HospitalName, &rec.DoctorName, &rec.ConsultationDate,
			&rec.IsEmergency, &rec.FileKey, &rec.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &rec)
	}
	return items, rows.Err()
}

func (r *repoPG) CountOwnedByIDs(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) (int, error) {
	var count int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM records WHERE owner_id = $1 AND id = ANY($2)`, ownerID, ids).
		Scan(&count)
	return count, err
}
