package study

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"crf-service/internal/adapter/cache"
	domain "crf-service/internal/domain/study"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Events(ctx context.Context) ([]domain.Node, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Node), args.Error(1)
}

func (m *MockRepository) CRFs(ctx context.Context) ([]domain.Node, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Node), args.Error(1)
}

func (m *MockRepository) Dictionary(ctx context.Context, table string) ([]domain.DictionaryEntry, error) {
	args := m.Called(ctx, table)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DictionaryEntry), args.Error(1)
}

func (m *MockRepository) CRFRow(ctx context.Context, table, patientID string) (map[string]any, error) {
	args := m.Called(ctx, table, patientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]any), args.Error(1)
}

func (m *MockRepository) UpdateCRFRow(ctx context.Context, table, patientID string, columns []domain.Column) (int64, error) {
	args := m.Called(ctx, table, patientID, columns)
	return args.Get(0).(int64), args.Error(1)
}

func strPtr(s string) *string { return &s }

func setupTestService(t *testing.T) (*Service, *MockRepository) {
	mockRepo := new(MockRepository)
	return New(mockRepo, nil, zaptest.NewLogger(t)), mockRepo
}

func TestStructure_BuildsTree(t *testing.T) {
	svc, mockRepo := setupTestService(t)
	ctx := context.Background()

	mockRepo.On("Events", ctx).Return([]domain.Node{{Code: "SCR", Name: "Screening", Ordinal: 1}, {Code: "V1", Name: "Visit 1", Ordinal: 2}}, nil)
	mockRepo.On("CRFs", ctx).Return([]domain.Node{{Code: "DM", Name: "Demographics", ParentCode: strPtr("SCR"), Ordinal: 1}}, nil)

	tree, err := svc.Structure(ctx)
	require.NoError(t, err)
	require.Len(t, tree, 2)
	assert.Len(t, tree[0].CRFs, 1)
	assert.Empty(t, tree[1].CRFs)
}

func TestStructure_Error(t *testing.T) {
	svc, mockRepo := setupTestService(t)
	ctx := context.Background()

	mockRepo.On("Events", ctx).Return(nil, errors.New("table meta_study_structure doesn't exist"))

	_, err := svc.Structure(ctx)
	assert.Error(t, err)
}

func TestStructure_Cached(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	log := zaptest.NewLogger(t)
	mockRepo := new(MockRepository)
	svc := New(mockRepo, cache.NewRedisStructureCache(client, time.Minute, log), log)
	ctx := context.Background()

	mockRepo.On("Events", ctx).Return([]domain.Node{{Code: "SCR", Name: "Screening"}}, nil).Once()
	mockRepo.On("CRFs", ctx).Return([]domain.Node{}, nil).Once()

	first, err := svc.Structure(ctx)
	require.NoError(t, err)
	second, err := svc.Structure(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	mockRepo.AssertExpectations(t)
	assert.True(t, mr.Exists(cache.StructureKey))
}

func TestCRFDetail_Success(t *testing.T) {
	svc, mockRepo := setupTestService(t)
	ctx := context.Background()

	mockRepo.On("Dictionary", ctx, "crf_v1_vs").Return([]domain.DictionaryEntry{
		{ColumnName: "height", DisplayLabel: "身高"},
		{ColumnName: "weight", DisplayLabel: "体重"},
	}, nil)
	mockRepo.On("CRFRow", ctx, "crf_v1_vs", "p-1").Return(map[string]any{"patient_id": "p-1", "height": 172.0}, nil)

	resp, err := svc.CRFDetail(ctx, CRFDetailRequest{PatientID: "p-1", EventCode: "V1", CRFCode: "VS"})
	require.NoError(t, err)
	assert.Empty(t, resp.Error)
	assert.Equal(t, "crf_v1_vs", resp.TableName)
	assert.Equal(t, []Field{{Key: "height", Label: "身高", Value: 172.0}, {Key: "weight", Label: "体重"}}, resp.Fields)
}

func TestCRFDetail_NoRow(t *testing.T) {
	svc, mockRepo := setupTestService(t)
	ctx := context.Background()

	mockRepo.On("Dictionary", ctx, "crf_v1_vs").Return([]domain.DictionaryEntry{{ColumnName: "height", DisplayLabel: "身高"}}, nil)
	mockRepo.On("CRFRow", ctx, "crf_v1_vs", "p-2").Return(nil, nil)

	resp, err := svc.CRFDetail(ctx, CRFDetailRequest{PatientID: "p-2", EventCode: "v1", CRFCode: "vs"})
	require.NoError(t, err)
	require.Len(t, resp.Fields, 1)
	assert.Nil(t, resp.Fields[0].Value)
}

func TestCRFDetail_Failures(t *testing.T) {
	svc, mockRepo := setupTestService(t)
	ctx := context.Background()

	mockRepo.On("Dictionary", ctx, "crf_v1_xx").Return([]domain.DictionaryEntry{}, nil)
	resp, err := svc.CRFDetail(ctx, CRFDetailRequest{PatientID: "p-1", EventCode: "V1", CRFCode: "XX"})
	require.NoError(t, err)
	assert.Equal(t, ErrTableUndefined, resp.Error)
	assert.NotNil(t, resp.Fields)
	assert.Empty(t, resp.Fields)

	mockRepo.On("Dictionary", ctx, "crf_v2_lb").Return([]domain.DictionaryEntry{{ColumnName: "alt", DisplayLabel: "ALT"}}, nil)
	mockRepo.On("CRFRow", ctx, "crf_v2_lb", "p-1").Return(nil, errors.New("Table 'clinical.crf_v2_lb' doesn't exist"))
	resp, err = svc.CRFDetail(ctx, CRFDetailRequest{PatientID: "p-1", EventCode: "V2", CRFCode: "LB"})
	require.NoError(t, err)
	assert.Equal(t, ErrTableNoData, resp.Error)
	assert.Empty(t, resp.Fields)

	resp, err = svc.CRFDetail(ctx, CRFDetailRequest{PatientID: "p-1", EventCode: "V1`", CRFCode: "DM"})
	require.NoError(t, err)
	assert.Equal(t, ErrTableUndefined, resp.Error)

	mockRepo.On("Dictionary", ctx, "crf_v3_ae").Return(nil, errors.New("connection reset"))
	_, err = svc.CRFDetail(ctx, CRFDetailRequest{PatientID: "p-1", EventCode: "V3", CRFCode: "AE"})
	assert.Error(t, err)
}

func TestSaveCRF_Success(t *testing.T) {
	svc, mockRepo := setupTestService(t)
	ctx := context.Background()

	mockRepo.On("UpdateCRFRow", ctx, "crf_v1_vs", "p-1", []domain.Column{
		{Name: "symptoms", Value: `["cough","fever"]`},
		{Name: "weight", Value: 66.5},
	}).Return(int64(1), nil)

	resp, err := svc.SaveCRF(ctx, SaveCRFRequest{
		PatientID: "p-1",
		TableName: "crf_v1_vs",
		Data: map[string]any{
			"weight":        66.5,
			"symptoms":      []any{"cough", "fever"},
			"bad key":       "x",
			"x`=1; DROP --": "y",
			"___":           "z",
		},
	})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	mockRepo.AssertExpectations(t)
}

func TestSaveCRF_Failures(t *testing.T) {
	svc, mockRepo := setupTestService(t)
	ctx := context.Background()

	resp, err := svc.SaveCRF(ctx, SaveCRFRequest{PatientID: "p-1", TableName: "patients", Data: map[string]any{"a": 1}})
	require.NoError(t, err)
	assert.Equal(t, ErrIllegalTable, resp.Error)

	resp, err = svc.SaveCRF(ctx, SaveCRFRequest{PatientID: "p-1", TableName: "crf_x`; DROP TABLE patients", Data: map[string]any{"a": 1}})
	require.NoError(t, err)
	assert.Equal(t, ErrIllegalTable, resp.Error)

	resp, err = svc.SaveCRF(ctx, SaveCRFRequest{PatientID: "p-1", TableName: "crf_v1_vs", Data: map[string]any{"no-dash": 1}})
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, ErrNoData, resp.Error)

	mockRepo.On("UpdateCRFRow", ctx, "crf_v1_vs", "p-1", mock.Anything).Return(int64(0), errors.New("Unknown column 'ghost' in 'field list'"))
	resp, err = svc.SaveCRF(ctx, SaveCRFRequest{PatientID: "p-1", TableName: "crf_v1_vs", Data: map[string]any{"ghost": 1}})
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "Unknown column")
}

func TestColumns_Numbers(t *testing.T) {
	columns := Columns(map[string]any{
		"card":   json.Number("9007199254740993"),
		"height": json.Number("172.5"),
		"huge":   json.Number("1e400"),
		"nested": map[string]any{"n": json.Number("9007199254740993")},
	})

	assert.Equal(t, []domain.Column{
		{Name: "card", Value: int64(9007199254740993)},
		{Name: "height", Value: 172.5},
		{Name: "huge", Value: "1e400"},
		{Name: "nested", Value: `{"n":9007199254740993}`},
	}, columns)
}
