package mysql

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"crf-service/internal/domain/patient"
	apperrors "crf-service/pkg/errors"
	"crf-service/pkg/security"
)

// PatientRepo stores study subjects.
type PatientRepo struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewPatientRepo creates a new instance of PatientRepo.
func NewPatientRepo(db *gorm.DB, log *zap.Logger) *PatientRepo {
	return &PatientRepo{db: db, log: log}
}

// List returns patients, newest first. A non-empty query filters on subject
// label or protocol id; it is validated and matched literally.
func (r *PatientRepo) List(ctx context.Context, query string) ([]patient.Patient, error) {
	validated, err := security.ValidateSearchQuery(query)
	if err != nil {
		r.log.Warn("invalid patient search query", zap.String("query", query), zap.Error(err))
		return nil, fmt.Errorf("invalid search query: %w", err)
	}

	tx := r.db.WithContext(ctx).Model(&PatientSchema{})
	if validated != "" {
		pattern := "%" + security.SanitizeSearchString(validated) + "%"
		tx = tx.Where("subject_label LIKE ? ESCAPE '"+security.LikeEscapeChar+"' OR protocol_id LIKE ? ESCAPE '"+security.LikeEscapeChar+"'", pattern, pattern)
	}

	var models []PatientSchema
	if err := tx.Order("created_at DESC").Find(&models).Error; err != nil {
		r.log.Error("failed to list patients from db", zap.Error(err), zap.String("query", validated))
		return nil, apperrors.NewInternalError("failed to list patients", err)
	}

	patients := make([]patient.Patient, len(models))
	for i, m := range models {
		patients[i] = patient.Patient{
			ID:           m.ID,
			SubjectLabel: m.SubjectLabel,
			ProtocolID:   m.ProtocolID,
			CreatedAt:    m.CreatedAt,
		}
	}
	return patients, nil
}

// Create inserts a patient. The caller assigns the id.
func (r *PatientRepo) Create(ctx context.Context, p *patient.Patient) error {
	if p == nil {
		return errors.New("patient cannot be nil")
	}

	model := PatientSchema{
		ID:           p.ID,
		SubjectLabel: p.SubjectLabel,
		ProtocolID:   p.ProtocolID,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		r.log.Error("failed to create patient in db", zap.Error(err), zap.String("subject_label", p.SubjectLabel))
		return apperrors.NewInternalError("failed to create patient", err)
	}

	p.CreatedAt = model.CreatedAt
	r.log.Info("patient created in db", zap.String("id", p.ID))
	return nil
}

// Update rewrites the label and protocol of a patient. Updating a missing
// patient is not an error.
func (r *PatientRepo) Update(ctx context.Context, p *patient.Patient) error {
	if p == nil {
		return errors.New("patient cannot be nil")
	}

	res := r.db.WithContext(ctx).Model(&PatientSchema{}).Where("id = ?", p.ID).Updates(map[string]any{
		"subject_label": p.SubjectLabel,
		"protocol_id":   p.ProtocolID,
	})
	if res.Error != nil {
		r.log.Error("failed to update patient in db", zap.Error(res.Error), zap.String("id", p.ID))
		return apperrors.NewInternalError("failed to update patient", res.Error)
	}

	r.log.Info("patient updated in db", zap.String("id", p.ID), zap.Int64("rows", res.RowsAffected))
	return nil
}

// Delete removes a patient. CRF rows are expected to cascade in the database.
func (r *PatientRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&PatientSchema{})
	if res.Error != nil {
		r.log.Error("failed to delete patient in db", zap.Error(res.Error), zap.String("id", id))
		return apperrors.NewInternalError("failed to delete patient", res.Error)
	}

	r.log.Info("patient deleted in db", zap.String("id", id), zap.Int64("rows", res.RowsAffected))
	return nil
}
