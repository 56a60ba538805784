// Package patient implements patient enrolment and listing.
package patient

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	domain "crf-service/internal/domain/patient"
	"crf-service/internal/usecase"
	apperrors "crf-service/pkg/errors"
	"crf-service/pkg/security"
)

// Repository defines the interface for patient data access operations.
type Repository interface {
	List(ctx context.Context, query string) ([]domain.Patient, error)
	Create(ctx context.Context, p *domain.Patient) error
	Update(ctx context.Context, p *domain.Patient) error
	Delete(ctx context.Context, id string) error
}

// Usecase defines the patient operations exposed to transports.
type Usecase interface {
	ListPatients(ctx context.Context, in ListPatientsRequest) ([]Patient, error)
	CreatePatient(ctx context.Context, in CreatePatientRequest) (*MutationResponse, error)
	UpdatePatient(ctx context.Context, in UpdatePatientRequest) (*MutationResponse, error)
	DeletePatient(ctx context.Context, in DeletePatientRequest) (*MutationResponse, error)
}

// Service implements Usecase.
type Service struct {
	repo     Repository
	log      *zap.Logger
	validate *validator.Validate
	newID    func() string
}

// New creates a new patient Service.
func New(r Repository, log *zap.Logger) *Service {
	return &Service{repo: r, log: log, validate: usecase.NewValidator(), newID: uuid.NewString}
}

// ListPatients returns patients newest first. An invalid search query is a
// ValidationError; storage failures are logged and yield an empty list.
func (s *Service) ListPatients(ctx context.Context, in ListPatientsRequest) ([]Patient, error) {
	query, err := security.ValidateSearchQuery(in.Query)
	if err != nil {
		s.log.Warn("invalid search query", zap.String("query", in.Query), zap.Error(err))
		return nil, apperrors.NewValidationError("query", err.Error())
	}

	found, err := s.repo.List(ctx, query)
	if err != nil {
		s.log.Error("failed to list patients", zap.String("query", query), zap.Error(err))
		return []Patient{}, nil
	}

	out := make([]Patient, len(found))
	for i, p := range found {
		out[i] = Patient{
			ID:           p.ID,
			SubjectLabel: p.SubjectLabel,
			ProtocolID:   p.ProtocolID,
			CreatedAt:    p.CreatedDate(),
		}
	}
	return out, nil
}

// CreatePatient enrols a patient under a fresh uuid.
func (s *Service) CreatePatient(ctx context.Context, in CreatePatientRequest) (*MutationResponse, error) {
	if err := s.validate.Struct(in); err != nil {
		s.log.Warn("validate failed", zap.Error(err))
		return &MutationResponse{Error: usecase.FormatValidationError(err).Error()}, nil
	}

	p := &domain.Patient{
		ID:           s.newID(),
		SubjectLabel: in.SubjectLabel,
		ProtocolID:   in.ProtocolID,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return &MutationResponse{Error: err.Error()}, nil
	}

	s.log.Info("patient created", zap.String("id", p.ID), zap.String("subject_label", p.SubjectLabel))
	return &MutationResponse{Success: true, ID: p.ID}, nil
}

// UpdatePatient rewrites a patient's label and protocol.
func (s *Service) UpdatePatient(ctx context.Context, in UpdatePatientRequest) (*MutationResponse, error) {
	if err := s.validate.Struct(in); err != nil {
		s.log.Warn("validate failed", zap.Error(err))
		return &MutationResponse{Error: usecase.FormatValidationError(err).Error()}, nil
	}

	err := s.repo.Update(ctx, &domain.Patient{
		ID:           in.ID,
		SubjectLabel: in.SubjectLabel,
		ProtocolID:   in.ProtocolID,
	})
	if err != nil {
		return &MutationResponse{Error: err.Error()}, nil
	}
	return &MutationResponse{Success: true}, nil
}

// DeletePatient removes a patient.
func (s *Service) DeletePatient(ctx context.Context, in DeletePatientRequest) (*MutationResponse, error) {
	if err := s.validate.Struct(in); err != nil {
		return &MutationResponse{Error: usecase.FormatValidationError(err).Error()}, nil
	}

	if err := s.repo.Delete(ctx, in.ID); err != nil {
		return &MutationResponse{Error: err.Error()}, nil
	}

	s.log.Info("patient deleted", zap.String("id", in.ID))
	return &MutationResponse{Success: true}, nil
}
