package repository

import (
	"context"
	"time"

	apperrors "github.com/pesio-ai/be-crm-cli/pkg/errors"
)

// Authentication event types recorded in the audit log.
const (
	AuthEventLogin  = "login"
	AuthEventLogout = "logout"
)

// AuditRepository handles the authentication audit log
type AuditRepository struct {
	q   querier
	now func() time.Time
}

// LogAuthEvent records an authentication attempt. userID is nil when the
// email matched no user.
func (r *AuditRepository) LogAuthEvent(ctx context.Context, userID *int64, email, eventType string, success bool, failureReason string) error {
	query := `
		INSERT INTO auth_audit_log (user_id, email, event_type, success, failure_reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	var failureReasonPtr *string
	if failureReason != "" {
		failureReasonPtr = &failureReason
	}

	_, err := r.q.exec(ctx, query, userID, email, eventType, success, failureReasonPtr, r.now())
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to log auth event")
	}

	return nil
}

// ListRecent retrieves the latest audit entries, newest first
func (r *AuditRepository) ListRecent(ctx context.Context, limit int) ([]*AuthEvent, error) {
	query := `
		SELECT id, user_id, email, event_type, success, failure_reason, created_at
		FROM auth_audit_log
		ORDER BY id DESC
		LIMIT ?
	`

	rows, err := r.q.query(ctx, query, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to list auth events")
	}
	defer rows.Close()

	events := make([]*AuthEvent, 0)
	for rows.Next() {
		e := &AuthEvent{}
		err := rows.Scan(&e.ID, &e.UserID, &e.Email, &e.EventType, &e.Success, &e.FailureReason, &e.CreatedAt)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to scan auth event")
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to list auth events")
	}

	return events, nil
}
