package reportstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	apperrors "rcm-benchmark/internal/common/errors"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS rcm_reports (
	id              UUID PRIMARY KEY,
	hospital_name   TEXT NOT NULL,
	hospital_beds   INTEGER NOT NULL,
	state           VARCHAR(2) NOT NULL,
	recipient_name  TEXT,
	recipient_email TEXT,
	origin          TEXT NOT NULL,
	document        JSONB NOT NULL,
	delivery        JSONB,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS rcm_reports_created_at_idx ON rcm_reports (created_at DESC);`

// PostgresStore keeps reports in the rcm_reports table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the table and index when missing.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaDDL); err != nil {
		return apperrors.NewReportStoreFailedError("migrate", err)
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, rec *Record) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rcm_reports (
			id, hospital_name, hospital_beds, state, recipient_name,
			recipient_email, origin, document, delivery, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		rec.ID,
		rec.HospitalName,
		rec.HospitalBeds,
		rec.State,
		nullString(rec.RecipientName),
		nullString(rec.RecipientEmail),
		rec.Origin,
		[]byte(rec.Document),
		nullJSON(rec.Delivery),
		rec.CreatedAt,
	)
	if err != nil {
		return apperrors.NewReportStoreFailedError("save", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, hospital_name, hospital_beds, state, recipient_name,
			recipient_email, origin, document, delivery, created_at
		FROM rcm_reports WHERE id = $1`, id)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewReportNotFoundError(id)
	}
	if err != nil {
		return nil, apperrors.NewReportStoreFailedError("get", err)
	}
	return rec, nil
}

func (s *PostgresStore) UpdateDelivery(ctx context.Context, id string, delivery json.RawMessage) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE rcm_reports SET delivery = $1 WHERE id = $2`, []byte(delivery), id)
	if err != nil {
		return apperrors.NewReportStoreFailedError("update_delivery", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperrors.NewReportStoreFailedError("update_delivery", err)
	}
	if n == 0 {
		return apperrors.NewReportNotFoundError(id)
	}
	return nil
}

func (s *PostgresStore) Find(ctx context.Context, f Filter) ([]Record, int, error) {
	where, args := f.whereClause()

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM rcm_reports`+where, args...).Scan(&total); err != nil {
		return nil, 0, apperrors.NewReportStoreFailedError("find", err)
	}

	args = append(args, clampLimit(f.Limit))
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, hospital_name, hospital_beds, state, recipient_name,
			recipient_email, origin, document, delivery, created_at
		FROM rcm_reports`+where+fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d`, len(args)), args...)
	if err != nil {
		return nil, 0, apperrors.NewReportStoreFailedError("find", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, apperrors.NewReportStoreFailedError("find", err)
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperrors.NewReportStoreFailedError("find", err)
	}
	return out, total, nil
}

func (f Filter) whereClause() (string, []interface{}) {
	var (
		conds []string
		args  []interface{}
	)
	if f.State != "" {
		args = append(args, strings.ToUpper(f.State))
		conds = append(conds, fmt.Sprintf("state = $%d", len(args)))
	}
	if f.Hospital != "" {
		args = append(args, "%"+f.Hospital+"%")
		conds = append(conds, fmt.Sprintf("hospital_name ILIKE $%d", len(args)))
	}
	if f.MinBeds > 0 {
		args = append(args, f.MinBeds)
		conds = append(conds, fmt.Sprintf("hospital_beds >= $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row scanner) (*Record, error) {
	var (
		rec                           Record
		recipientName, recipientEmail sql.NullString
		document, delivery            []byte
	)
	err := row.Scan(
		&rec.ID,
		&rec.HospitalName,
		&rec.HospitalBeds,
		&rec.State,
		&recipientName,
		&recipientEmail,
		&rec.Origin,
		&document,
		&delivery,
		&rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.RecipientName = recipientName.String
	rec.RecipientEmail = recipientEmail.String
	rec.Document = json.RawMessage(document)
	if len(delivery) > 0 {
		rec.Delivery = json.RawMessage(delivery)
	}
	return &rec, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullJSON(raw json.RawMessage) interface{} {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}
