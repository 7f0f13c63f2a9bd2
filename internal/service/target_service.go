package service

import (
	"context"

	"qrstats/internal/domain"
)

// TargetService defines the operations behind the HTTP surface
type TargetService interface {
	// CreateTarget validates the request, hashes the optional password and
	// stores the record under a freshly allocated identifier
	CreateTarget(ctx context.Context, req *domain.CreateTargetRequest) (*domain.CreateTargetResponse, error)

	// Resolve returns the destination URL for id and schedules a redirect count.
	// The count is best-effort and never delays or fails the redirect.
	Resolve(ctx context.Context, id string) (string, error)

	// GetStats returns the redirect count for id if credential passes the access gate
	GetStats(ctx context.Context, id, credential string) (*domain.StatsResponse, error)
}

// RedirectRecorder accepts redirect events without blocking
type RedirectRecorder interface {
	Record(id string) bool
}
