package progressreport

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eldercare/eldercare/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type progressReportRepoPG struct{ pool *pgxpool.Pool }

func NewProgressReportRepoPG(pool *pgxpool.Pool) ProgressReportRepository {
	return &progressReportRepoPG{pool: pool}
}

func (r *progressReportRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const reportCols = `id, patient_id, caregiver_id, report_date, summary, recommendations, created_at`

func (r *progressReportRepoPG) scanReport(row pgx.Row) (*ProgressReport, error) {
	var p ProgressReport
	err := row.Scan(&p.ID, &p.PatientID, &p.CaregiverID, &p.Date, &p.Summary, &p.Recommendations, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *progressReportRepoPG) Create(ctx context.Context, p *ProgressReport) error {
	p.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO progress_report (id, patient_id, caregiver_id, report_date, summary, recommendations)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at`,
		p.ID, p.PatientID, p.CaregiverID, p.Date, p.Summary, p.Recommendations,
	).Scan(&p.CreatedAt)
}

func (r *progressReportRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*ProgressReport, error) {
	return r.scanReport(r.conn(ctx).QueryRow(ctx, `SELECT `+reportCols+` FROM progress_report WHERE id = $1`, id))
}

func (r *progressReportRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM progress_report WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *progressReportRepoPG) collect(rows pgx.Rows) ([]*ProgressReport, error) {
	defer rows.Close()
	var items []*ProgressReport
	for rows.Next() {
		p, err := r.scanReport(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func (r *progressReportRepoPG) list(ctx context.Context, where string, limit, offset int, args ...interface{}) ([]*ProgressReport, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM progress_report WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	n := len(args)
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+reportCols+` FROM progress_report WHERE `+where+
		` ORDER BY report_date DESC LIMIT $`+strconv.Itoa(n+1)+` OFFSET $`+strconv.Itoa(n+2),
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	items, err := r.collect(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *progressReportRepoPG) List(ctx context.Context, limit, offset int) ([]*ProgressReport, int, error) {
	return r.list(ctx, `TRUE`, limit, offset)
}

func (r *progressReportRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*ProgressReport, int, error) {
	return r.list(ctx, `patient_id = $1`, limit, offset, patientID)
}

func (r *progressReportRepoPG) ListByCaregiver(ctx context.Context, caregiverID uuid.UUID, limit, offset int) ([]*ProgressReport, int, error) {
	return r.list(ctx, `caregiver_id = $1`, limit, offset, caregiverID)
}

func (r *progressReportRepoPG) ListBetween(ctx context.Context, start, end time.Time, limit, offset int) ([]*ProgressReport, int, error) {
	return r.list(ctx, `report_date BETWEEN $1 AND $2`, limit, offset, start, end)
}

func (r *progressReportRepoPG) Search(ctx context.Context, keyword string, limit, offset int) ([]*ProgressReport, int, error) {
	return r.list(ctx, `(summary ILIKE '%' || $1 || '%' OR recommendations ILIKE '%' || $1 || '%')`,
		limit, offset, keyword)
}

func (r *progressReportRepoPG) LatestPerPatient(ctx context.Context, limit, offset int) ([]*ProgressReport, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(DISTINCT patient_id) FROM progress_report`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+reportCols+` FROM (
			SELECT DISTINCT ON (patient_id) `+reportCols+`
			FROM progress_report
			ORDER BY patient_id, report_date DESC, created_at DESC
		) latest
		ORDER BY report_date DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	items, err := r.collect(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
