package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"qrstats/internal/auth"
	"qrstats/internal/domain"
	"qrstats/internal/repository"
	"qrstats/internal/shortener"
	"qrstats/pkg/logger"
	"qrstats/pkg/validator"
)

// targetService implements the TargetService interface
type targetService struct {
	records   repository.RecordStore
	counters  repository.CounterStore
	allocator *shortener.Allocator
	gate      *auth.Gate
	recorder  RedirectRecorder
	baseURL   string
	logger    *logger.Logger
}

// NewTargetService creates a new target service with dependencies injected
func NewTargetService(
	records repository.RecordStore,
	counters repository.CounterStore,
	allocator *shortener.Allocator,
	gate *auth.Gate,
	recorder RedirectRecorder,
	baseURL string,
	logger *logger.Logger,
) TargetService {
	return &targetService{
		records:   records,
		counters:  counters,
		allocator: allocator,
		gate:      gate,
		recorder:  recorder,
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		logger:    logger,
	}
}

// CreateTarget validates, hashes and allocates. Nothing is written unless validation passes.
func (s *targetService) CreateTarget(ctx context.Context, req *domain.CreateTargetRequest) (*domain.CreateTargetResponse, error) {
	rawURL := strings.TrimSpace(req.URL)
	if err := validator.ValidateURL(rawURL); err != nil {
		s.logger.Warn("Invalid URL provided", "url", req.URL, "error", err)
		return nil, domain.NewValidationError(err.Error())
	}

	customID := strings.TrimSpace(req.ID)
	if customID != "" {
		if err := validator.ValidateID(customID); err != nil {
			return nil, domain.NewIDError(err.Error())
		}
	}

	passwordHash, err := s.gate.HashPassword(req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return nil, domain.NewPasswordError("Password must be at most 72 bytes")
		}
		s.logger.Error("Failed to hash password", "error", err)
		return nil, domain.NewInternalError(err)
	}

	record := &domain.TargetRecord{
		URL:          rawURL,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}

	var id string
	if customID != "" {
		id, err = s.createWithID(ctx, customID, record)
	} else {
		id, err = s.allocator.Allocate(ctx, record)
	}
	if err != nil {
		s.logger.Error("Failed to store target", "error", err)
		return nil, err
	}

	s.logger.Info("Target created",
		"id", id,
		"url", rawURL,
		"password_protected", record.IsProtected(),
	)

	return s.buildResponse(record), nil
}

// createWithID stores record under an identifier chosen by the caller. There is no retry.
func (s *targetService) createWithID(ctx context.Context, id string, record *domain.TargetRecord) (string, error) {
	record.ID = id
	if err := s.records.Create(ctx, record); err != nil {
		if errors.Is(err, domain.ErrIDTaken) {
			s.logger.Info("Requested identifier already in use", "id", id)
			return "", domain.NewConflictError("Identifier already in use")
		}
		return "", err
	}
	return id, nil
}

// Resolve fetches the record, then hands the increment to the recorder
func (s *targetService) Resolve(ctx context.Context, id string) (string, error) {
	record, err := s.records.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrTargetNotFound) {
			s.logger.Warn("Identifier not found", "id", id)
		}
		return "", err
	}

	s.recorder.Record(id)

	s.logger.Debug("Redirecting", "id", id)
	return record.URL, nil
}

// GetStats checks the access gate before reading the counter
func (s *targetService) GetStats(ctx context.Context, id, credential string) (*domain.StatsResponse, error) {
	record, err := s.records.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !s.gate.Authorize(record, credential) {
		s.logger.Info("Stats access denied", "id", id)
		return nil, domain.ErrUnauthorized
	}

	count, err := s.counters.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	return &domain.StatsResponse{ID: id, Count: count}, nil
}

// buildResponse constructs the API response with informational paths
func (s *targetService) buildResponse(record *domain.TargetRecord) *domain.CreateTargetResponse {
	redirectPath := fmt.Sprintf("/redirect/%s", record.ID)
	return &domain.CreateTargetResponse{
		ID:                record.ID,
		URL:               record.URL,
		ShortURL:          s.baseURL + redirectPath,
		RedirectPath:      redirectPath,
		StatsPath:         fmt.Sprintf("/stats/%s", record.ID),
		PasswordProtected: record.IsProtected(),
	}
}
