// Package audit appends immutable records of every mutating call. Writes are
// best-effort: a failed audit write is logged and never propagated, so it can
// never block the primary operation.
package audit

import (
	"context"

	"github.com/rs/zerolog"

	"payflow/internal/models"
	"payflow/internal/repositories"
)

// Entry describes one audited action.
type Entry struct {
	UserID     *uint
	Action     string
	Resource   string
	ResourceID string
	Details    models.JSON
	IPAddress  string
}

type Service interface {
	Record(ctx context.Context, entry Entry)
}

type service struct {
	repo repositories.AuditRepository
	log  zerolog.Logger
}

func NewService(repo repositories.AuditRepository, log zerolog.Logger) Service {
	if repo == nil {
		panic("audit repository is required")
	}
	return &service{
		repo: repo,
		log:  log.With().Str("component", "audit").Logger(),
	}
}

func (s *service) Record(ctx context.Context, entry Entry) {
	row := &models.AuditLog{
		UserID:     entry.UserID,
		Action:     entry.Action,
		Resource:   entry.Resource,
		ResourceID: entry.ResourceID,
		Details:    entry.Details,
		IPAddress:  entry.IPAddress,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		s.log.Error().Err(err).
			Str("action", entry.Action).
			Str("resource", entry.Resource).
			Msg("audit write failed")
	}
}
