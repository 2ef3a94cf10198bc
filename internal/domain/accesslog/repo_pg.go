package accesslog

import (
	"context"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eldercare/eldercare/internal/platform/db"
	"github.com/eldercare/eldercare/internal/platform/middleware"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type accessLogRepoPG struct{ pool *pgxpool.Pool }

func NewAccessLogRepoPG(pool *pgxpool.Pool) AccessLogRepository {
	return &accessLogRepoPG{pool: pool}
}

func (r *accessLogRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const entryCols = `id, user_id, username, role, resource, patient_id, action, method, path,
	status_code, remote_ip, user_agent, request_id, recorded_at`

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (r *accessLogRepoPG) RecordAccess(ctx context.Context, e middleware.AuditEntry) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO access_log (id, user_id, username, role, resource, patient_id, action, method, path,
			status_code, remote_ip, user_agent, request_id, recorded_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		uuid.New(), nullable(e.UserID), nullable(e.Username), nullable(e.Role), e.Resource,
		nullable(e.PatientID), e.Action, e.Method, e.Path, e.StatusCode,
		nullable(e.IPAddress), nullable(e.UserAgent), nullable(e.RequestID), e.Timestamp,
	)
	return err
}

func (r *accessLogRepoPG) List(ctx context.Context, f Filter, limit, offset int) ([]*Entry, int, error) {
	var conds []string
	var args []interface{}
	add := func(col, val string) {
		if val == "" {
			return
		}
		args = append(args, val)
		conds = append(conds, col+" = $"+strconv.Itoa(len(args)))
	}
	add("user_id", f.UserID)
	add("patient_id", f.PatientID)
	add("resource", f.Resource)

	where := "TRUE"
	if len(conds) > 0 {
		where = strings.Join(conds, " AND ")
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM access_log WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	n := len(args)
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+entryCols+` FROM access_log WHERE `+where+
		` ORDER BY recorded_at DESC LIMIT $`+strconv.Itoa(n+1)+` OFFSET $`+strconv.Itoa(n+2),
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Username, &e.Role, &e.Resource, &e.PatientID, &e.Action,
			&e.Method, &e.Path, &e.StatusCode, &e.RemoteIP, &e.UserAgent, &e.RequestID, &e.RecordedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, &e)
	}
	return items, total, rows.Err()
}
