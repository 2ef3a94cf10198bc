package db

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

type contextKey string

const (
	SchemaKey contextKey = "db_schema"
	DBConnKey contextKey = "db_conn"
	DBTxKey   contextKey = "db_tx"
)

var schemaPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ValidSchema reports whether name can be interpolated into a search_path.
func ValidSchema(name string) bool {
	return schemaPattern.MatchString(name)
}

// SchemaMiddleware pins one pooled connection to the request and points its
// search_path at schema. Repositories pick the connection up through
// ConnFromContext. skip lets infrastructure routes run without a connection.
func SchemaMiddleware(pool *pgxpool.Pool, schema string, skip func(echo.Context) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if skip != nil && skip(c) {
				return next(c)
			}
			if !ValidSchema(schema) {
				return echo.NewHTTPError(http.StatusInternalServerError, "invalid schema configuration")
			}

			ctx, release, err := WithSchemaConn(c.Request().Context(), pool, schema)
			if errors.Is(err, errAcquire) {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "database unavailable")
			}
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "schema resolution failed")
			}
			defer release()
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

var errAcquire = errors.New("acquire connection")

// WithSchemaConn acquires a connection, points its search_path at schema and
// returns a context carrying it. Callers outside HTTP, such as CLI commands,
// use it so repositories see the same schema as requests do. release must be
// called once the context is no longer used.
func WithSchemaConn(ctx context.Context, pool *pgxpool.Pool, schema string) (context.Context, func(), error) {
	if !ValidSchema(schema) {
		return ctx, func() {}, fmt.Errorf("invalid schema name: %s", schema)
	}
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return ctx, func() {}, fmt.Errorf("%w: %v", errAcquire, err)
	}
	if _, err := conn.Exec(ctx, fmt.Sprintf("SET search_path TO %s, public", schema)); err != nil {
		conn.Release()
		return ctx, func() {}, fmt.Errorf("set search_path: %w", err)
	}
	ctx = context.WithValue(ctx, SchemaKey, schema)
	ctx = context.WithValue(ctx, DBConnKey, conn)
	return ctx, conn.Release, nil
}

// ConnFromContext retrieves the request-scoped database connection from context.
func ConnFromContext(ctx context.Context) *pgxpool.Conn {
	conn, _ := ctx.Value(DBConnKey).(*pgxpool.Conn)
	return conn
}

// SchemaFromContext retrieves the active schema from context.
func SchemaFromContext(ctx context.Context) string {
	s, _ := ctx.Value(SchemaKey).(string)
	return s
}

// EnsureSchema creates schema if it does not exist.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, schema string) error {
	if !ValidSchema(schema) {
		return fmt.Errorf("invalid schema name: %s", schema)
	}
	if _, err := pool.Exec(ctx, fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schema)); err != nil {
		return fmt.Errorf("create schema %s: %w", schema, err)
	}
	return nil
}
