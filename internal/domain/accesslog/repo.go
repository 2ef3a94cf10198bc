package accesslog

import (
	"context"

	"github.com/eldercare/eldercare/internal/platform/middleware"
)

type AccessLogRepository interface {
	RecordAccess(ctx context.Context, entry middleware.AuditEntry) error
	List(ctx context.Context, f Filter, limit, offset int) ([]*Entry, int, error)
}
