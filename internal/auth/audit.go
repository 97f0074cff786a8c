package auth

import (
	"context"

	"github.com/ayush/syncdraft/internal/models"
)

// AuditLog records authentication attempts.
type AuditLog interface {
	Record(ctx context.Context, ev models.AuthEvent) error
}

// NopAuditLog discards every event. Used when no audit database is configured.
type NopAuditLog struct{}

func (NopAuditLog) Record(context.Context, models.AuthEvent) error { return nil }
