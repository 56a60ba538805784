// Package study serves the study tree and reads and writes CRF data.
package study

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"go.uber.org/zap"

	"crf-service/internal/adapter/cache"
	domain "crf-service/internal/domain/study"
	"crf-service/pkg/security"
)

// Messages returned to clients inside the response body.
const (
	ErrTableUndefined = "未找到该表定义"
	ErrTableNoData    = "该表尚未生成或无数据"
	ErrIllegalTable   = "非法表名"
	ErrNoData         = "没有数据提交"
)

// Repository defines the interface for study metadata and CRF data access.
type Repository interface {
	Events(ctx context.Context) ([]domain.Node, error)
	CRFs(ctx context.Context) ([]domain.Node, error)
	Dictionary(ctx context.Context, table string) ([]domain.DictionaryEntry, error)
	CRFRow(ctx context.Context, table, patientID string) (map[string]any, error)
	UpdateCRFRow(ctx context.Context, table, patientID string, columns []domain.Column) (int64, error)
}

// Usecase defines the study operations exposed to transports.
type Usecase interface {
	Structure(ctx context.Context) ([]domain.Event, error)
	CRFDetail(ctx context.Context, in CRFDetailRequest) (*CRFDetailResponse, error)
	SaveCRF(ctx context.Context, in SaveCRFRequest) (*SaveCRFResponse, error)
}

// Service implements Usecase.
type Service struct {
	repo  Repository
	cache cache.StructureCache
	log   *zap.Logger
}

// New creates a new study Service. If c is nil the tree is read from the
// database on every call.
func New(r Repository, c cache.StructureCache, log *zap.Logger) *Service {
	return &Service{repo: r, cache: c, log: log}
}

// Structure returns the events in ordinal order, each with its CRFs.
func (s *Service) Structure(ctx context.Context) ([]domain.Event, error) {
	if s.cache != nil {
		tree, err := s.cache.Get(ctx)
		if err != nil {
			s.log.Warn("cache get error, falling back to database", zap.Error(err))
		} else if tree != nil {
			return tree, nil
		}
	}

	events, err := s.repo.Events(ctx)
	if err != nil {
		return nil, err
	}
	crfs, err := s.repo.CRFs(ctx)
	if err != nil {
		return nil, err
	}
	tree := domain.BuildTree(events, crfs)

	if s.cache != nil {
		if err := s.cache.Set(ctx, tree); err != nil {
			s.log.Warn("failed to cache study structure", zap.Error(err))
		}
	}
	return tree, nil
}

// CRFDetail returns the patient's values of a CRF labelled by the data dictionary.
func (s *Service) CRFDetail(ctx context.Context, in CRFDetailRequest) (*CRFDetailResponse, error) {
	table, err := security.CRFTableName(in.EventCode, in.CRFCode)
	if err != nil {
		s.log.Warn("rejected CRF table name", zap.String("table", table))
		return &CRFDetailResponse{Error: ErrTableUndefined, Fields: []Field{}}, nil
	}

	dictionary, err := s.repo.Dictionary(ctx, table)
	if err != nil {
		return nil, err
	}
	if len(dictionary) == 0 {
		return &CRFDetailResponse{Error: ErrTableUndefined, Fields: []Field{}}, nil
	}

	row, err := s.repo.CRFRow(ctx, table, in.PatientID)
	if err != nil {
		return &CRFDetailResponse{Error: ErrTableNoData, Fields: []Field{}}, nil
	}

	labelled := domain.BuildFields(dictionary, row)
	fields := make([]Field, len(labelled))
	for i, f := range labelled {
		fields[i] = Field{Key: f.Key, Label: f.Label, Value: f.Value}
	}
	return &CRFDetailResponse{TableName: table, Fields: fields}, nil
}

// SaveCRF writes the submitted values into the patient's row. Keys that are
// not plain identifiers are skipped.
func (s *Service) SaveCRF(ctx context.Context, in SaveCRFRequest) (*SaveCRFResponse, error) {
	if !strings.HasPrefix(in.TableName, security.CRFTablePrefix) || !security.IsCRFTable(in.TableName) {
		s.log.Warn("rejected CRF table name", zap.String("table", in.TableName))
		return &SaveCRFResponse{Error: ErrIllegalTable}, nil
	}

	columns := Columns(in.Data)
	if len(columns) == 0 {
		return &SaveCRFResponse{Error: ErrNoData}, nil
	}

	if _, err := s.repo.UpdateCRFRow(ctx, in.TableName, in.PatientID, columns); err != nil {
		return &SaveCRFResponse{Error: err.Error()}, nil
	}
	return &SaveCRFResponse{Success: true}, nil
}

// Columns turns submitted form data into column writes, sorted by name.
// Unsafe keys are dropped. Objects and arrays are stored as JSON text.
func Columns(data map[string]any) []domain.Column {
	keys := make([]string, 0, len(data))
	for k := range data {
		if security.IsSafeIdentifier(k) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	columns := make([]domain.Column, 0, len(keys))
	for _, k := range keys {
		columns = append(columns, domain.Column{Name: k, Value: columnValue(data[k])})
	}
	return columns
}

// columnValue converts a decoded JSON value into a driver value. Numbers that
// fit int64 are written as integers, the rest as float64.
func columnValue(v any) any {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i
		}
		if f, err := n.Float64(); err == nil {
			return f
		}
		return n.String()
	case map[string]any, []any:
		b, err := json.Marshal(v)
		if err != nil {
			return nil
		}
		return string(b)
	default:
		return v
	}
}
