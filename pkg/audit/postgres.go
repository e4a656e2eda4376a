package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"tokenroute/pkg/database"
)

// PostgresLogger implements the Logger interface by persisting audit
// entries to the route_audits table (pkg/database/migrations/0001_route_audits.sql),
// giving operators a queryable history of solved routes.
type PostgresLogger struct {
	db database.DB
}

// NewPostgresLogger returns a Logger backed by db.
func NewPostgresLogger(db database.DB) *PostgresLogger {
	return &PostgresLogger{db: db}
}

// Log inserts entry as a row in route_audits.
func (l *PostgresLogger) Log(ctx context.Context, entry *Entry) error {
	metadata, err := json.Marshal(entry.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	_, err = l.db.Exec(ctx, `
		INSERT INTO route_audits (
			id, ts, service, method, action, outcome, request_id,
			resource, resource_id, duration_ms, error_code, error_message, metadata
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`,
		entry.ID, entry.Timestamp, entry.Service, entry.Method, entry.Action, entry.Outcome,
		entry.RequestID, entry.Resource, entry.ResourceID, entry.DurationMs,
		entry.ErrorCode, entry.ErrorMessage, metadata,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// Query retrieves audit entries matching filter's Service, Action and
// ResourceID (an empty field matches every row), most recent first, paged by
// Limit (default 100) and Offset. The other QueryFilter fields are not
// applied.
func (l *PostgresLogger) Query(ctx context.Context, filter *QueryFilter) ([]*Entry, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	rows, err := l.db.Query(ctx, `
		SELECT id, ts, service, method, action, outcome, request_id,
		       resource, resource_id, duration_ms, error_code, error_message, metadata
		FROM route_audits
		WHERE ($1 = '' OR service = $1)
		  AND ($2 = '' OR action = $2)
		  AND ($3 = '' OR resource_id = $3)
		ORDER BY ts DESC
		LIMIT $4 OFFSET $5
	`, filter.Service, string(filter.Action), filter.ResourceID, limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		e := &Entry{}
		var metadata []byte
		if err := rows.Scan(
			&e.ID, &e.Timestamp, &e.Service, &e.Method, &e.Action, &e.Outcome, &e.RequestID,
			&e.Resource, &e.ResourceID, &e.DurationMs, &e.ErrorCode, &e.ErrorMessage, &metadata,
		); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &e.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal metadata: %w", err)
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close is a no-op: the pool outlives the logger.
func (l *PostgresLogger) Close() error { return nil }
