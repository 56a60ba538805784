package mysql

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"crf-service/internal/domain/study"
	apperrors "crf-service/pkg/errors"
	"crf-service/pkg/security"
)

// StudyRepo reads the study design and the dynamic CRF data tables.
type StudyRepo struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewStudyRepo creates a new instance of StudyRepo.
func NewStudyRepo(db *gorm.DB, log *zap.Logger) *StudyRepo {
	return &StudyRepo{db: db, log: log}
}

// Events returns all study events ordered by ordinal.
func (r *StudyRepo) Events(ctx context.Context) ([]study.Node, error) {
	return r.nodes(ctx, study.NodeTypeEvent)
}

// CRFs returns all case report forms ordered by ordinal.
func (r *StudyRepo) CRFs(ctx context.Context) ([]study.Node, error) {
	return r.nodes(ctx, study.NodeTypeCRF)
}

func (r *StudyRepo) nodes(ctx context.Context, nodeType string) ([]study.Node, error) {
	var models []MetaStudyStructureSchema
	if err := r.db.WithContext(ctx).Where("type = ?", nodeType).Order("ordinal").Find(&models).Error; err != nil {
		r.log.Error("failed to read study structure", zap.Error(err), zap.String("type", nodeType))
		return nil, apperrors.NewInternalError("failed to read study structure", err)
	}

	nodes := make([]study.Node, len(models))
	for i, m := range models {
		nodes[i] = study.Node{
			Code:       m.Code,
			Name:       m.Name,
			ParentCode: m.ParentCode,
			Ordinal:    m.Ordinal,
		}
	}
	return nodes, nil
}

// Dictionary returns the labelled columns of a CRF table ordered by ordinal.
func (r *StudyRepo) Dictionary(ctx context.Context, table string) ([]study.DictionaryEntry, error) {
	var models []DataDictionarySchema
	if err := r.db.WithContext(ctx).Where("table_name = ?", table).Order("ordinal").Find(&models).Error; err != nil {
		r.log.Error("failed to read data dictionary", zap.Error(err), zap.String("table", table))
		return nil, apperrors.NewInternalError("failed to read data dictionary", err)
	}

	entries := make([]study.DictionaryEntry, len(models))
	for i, m := range models {
		entries[i] = study.DictionaryEntry{
			ColumnName:   m.ColumnName,
			DisplayLabel: m.DisplayLabel,
			Ordinal:      m.Ordinal,
		}
	}
	return entries, nil
}

// CRFRow returns the first row of table belonging to the patient, or nil when
// the patient has no data yet. Byte values are returned as strings.
func (r *StudyRepo) CRFRow(ctx context.Context, table, patientID string) (map[string]any, error) {
	if !security.IsCRFTable(table) {
		return nil, fmt.Errorf("invalid CRF table %q", table)
	}

	var rows []map[string]any
	if err := r.db.WithContext(ctx).Table(table).Where("patient_id = ?", patientID).Limit(1).Find(&rows).Error; err != nil {
		r.log.Warn("failed to read CRF table", zap.Error(err), zap.String("table", table), zap.String("patient_id", patientID))
		return nil, apperrors.NewInternalError("failed to read "+table, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	row := rows[0]
	for k, v := range row {
		if b, ok := v.([]byte); ok {
			row[k] = string(b)
		}
	}
	return row, nil
}

// UpdateCRFRow writes columns into the patient's row of table and returns the
// number of rows touched. Column names must already be validated.
func (r *StudyRepo) UpdateCRFRow(ctx context.Context, table, patientID string, columns []study.Column) (int64, error) {
	if !security.IsCRFTable(table) {
		return 0, fmt.Errorf("invalid CRF table %q", table)
	}
	if len(columns) == 0 {
		return 0, nil
	}

	updates := make(map[string]any, len(columns))
	for _, c := range columns {
		if !security.IsSafeIdentifier(c.Name) {
			return 0, fmt.Errorf("invalid column name %q", c.Name)
		}
		updates[c.Name] = c.Value
	}

	res := r.db.WithContext(ctx).Table(table).Where("patient_id = ?", patientID).Updates(updates)
	if res.Error != nil {
		r.log.Error("failed to update CRF table", zap.Error(res.Error), zap.String("table", table), zap.String("patient_id", patientID))
		return 0, apperrors.NewInternalError("failed to update "+table, res.Error)
	}

	r.log.Info("CRF data saved", zap.String("table", table), zap.String("patient_id", patientID), zap.Int64("rows", res.RowsAffected))
	return res.RowsAffected, nil
}
