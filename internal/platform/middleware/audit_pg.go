package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PGAuditRecorder persists audit entries to the audit_log table.
type PGAuditRecorder struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

func NewPGAuditRecorder(pool *pgxpool.Pool) *PGAuditRecorder {
	return &PGAuditRecorder{pool: pool, timeout: 5 * time.Second}
}

func (r *PGAuditRecorder) RecordAccess(entry AuditEntry) error {
	// The request context may already be done by the time the entry is
	// written, so the insert gets its own deadline.
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	var userID *string
	if entry.UserID != "" {
		userID = &entry.UserID
	}
	var recordID *string
	if entry.RecordID != "" {
		recordID = &entry.RecordID
	}

	_, err := r.pool.Exec(ctx, `INSERT INTO audit_log
		(user_id, resource, record_id, action, anonymous, ip_address, user_agent,
		 path, method, request_id, status_code, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		userID, entry.Resource, recordID, entry.Action, entry.Anonymous,
		entry.IPAddress, entry.UserAgent, entry.Path, entry.Method,
		entry.RequestID, entry.StatusCode, entry.Timestamp)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}
