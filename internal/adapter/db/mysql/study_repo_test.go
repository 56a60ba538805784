package mysql

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"crf-service/internal/domain/study"
)

func seedStructure(t *testing.T, repo *StudyRepo) {
	rows := []MetaStudyStructureSchema{
		{Code: "V1", Name: "Visit 1", Type: study.NodeTypeEvent, Ordinal: 2},
		{Code: "SCR", Name: "Screening", Type: study.NodeTypeEvent, Ordinal: 1},
		{Code: "VS", Name: "Vital Signs", Type: study.NodeTypeCRF, ParentCode: strPtr("V1"), Ordinal: 2},
		{Code: "DM", Name: "Demographics", Type: study.NodeTypeCRF, ParentCode: strPtr("SCR"), Ordinal: 1},
	}
	require.NoError(t, repo.db.Create(&rows).Error)

	dict := []DataDictionarySchema{
		{TargetTable: "crf_v1_vs", ColumnName: "weight", DisplayLabel: "体重", Ordinal: 2},
		{TargetTable: "crf_v1_vs", ColumnName: "height", DisplayLabel: "身高", Ordinal: 1},
		{TargetTable: "crf_scr_dm", ColumnName: "race", DisplayLabel: "民族", Ordinal: 1},
	}
	require.NoError(t, repo.db.Create(&dict).Error)
}

func TestStudyRepo_Structure(t *testing.T) {
	repo := NewStudyRepo(setupTestDB(t), zaptest.NewLogger(t))
	seedStructure(t, repo)
	ctx := context.Background()

	events, err := repo.Events(ctx)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "SCR", events[0].Code)
	assert.Nil(t, events[0].ParentCode)

	crfs, err := repo.CRFs(ctx)
	require.NoError(t, err)
	require.Len(t, crfs, 2)
	assert.Equal(t, "DM", crfs[0].Code)
	require.NotNil(t, crfs[0].ParentCode)
	assert.Equal(t, "SCR", *crfs[0].ParentCode)
}

func TestStudyRepo_Dictionary(t *testing.T) {
	repo := NewStudyRepo(setupTestDB(t), zaptest.NewLogger(t))
	seedStructure(t, repo)

	entries, err := repo.Dictionary(context.Background(), "crf_v1_vs")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "height", entries[0].ColumnName)
	assert.Equal(t, "体重", entries[1].DisplayLabel)

	entries, err = repo.Dictionary(context.Background(), "crf_none")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStudyRepo_CRFRowAndUpdate(t *testing.T) {
	repo := NewStudyRepo(setupTestDB(t), zaptest.NewLogger(t))
	ctx := context.Background()
	require.NoError(t, repo.db.Exec("CREATE TABLE crf_v1_vs (patient_id TEXT, height REAL, weight REAL, note TEXT)").Error)
	require.NoError(t, repo.db.Exec("INSERT INTO crf_v1_vs (patient_id, height, weight) VALUES (?, ?, ?)", "p-1", 170.5, 65.0).Error)

	row, err := repo.CRFRow(ctx, "crf_v1_vs", "p-1")
	require.NoError(t, err)
	assert.Equal(t, 170.5, row["height"])
	assert.Nil(t, row["note"])

	row, err = repo.CRFRow(ctx, "crf_v1_vs", "p-2")
	require.NoError(t, err)
	assert.Nil(t, row)

	n, err := repo.UpdateCRFRow(ctx, "crf_v1_vs", "p-1", []study.Column{
		{Name: "weight", Value: 66.2},
		{Name: "note", Value: "复查"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	row, err = repo.CRFRow(ctx, "crf_v1_vs", "p-1")
	require.NoError(t, err)
	assert.Equal(t, 66.2, row["weight"])
	assert.Equal(t, "复查", row["note"])

	n, err = repo.UpdateCRFRow(ctx, "crf_v1_vs", "p-404", []study.Column{{Name: "note", Value: "x"}})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStudyRepo_CRFRow_MissingTable(t *testing.T) {
	repo := NewStudyRepo(setupTestDB(t), zaptest.NewLogger(t))

	_, err := repo.CRFRow(context.Background(), "crf_v9_xx", "p-1")
	assert.Error(t, err)
}

func TestStudyRepo_RejectsUnsafeNames(t *testing.T) {
	repo := NewStudyRepo(setupTestDB(t), zaptest.NewLogger(t))
	ctx := context.Background()

	_, err := repo.CRFRow(ctx, "patients", "p-1")
	assert.Error(t, err)

	_, err = repo.UpdateCRFRow(ctx, "crf_v1_vs`; DROP TABLE patients; --", "p-1", []study.Column{{Name: "a", Value: 1}})
	assert.Error(t, err)

	_, err = repo.UpdateCRFRow(ctx, "crf_v1_vs", "p-1", []study.Column{{Name: "a=1,b", Value: 1}})
	assert.Error(t, err)

	n, err := repo.UpdateCRFRow(ctx, "crf_v1_vs", "p-1", nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStudyRepo_CRFRow_MySQL(t *testing.T) {
	db, mock, _ := setupMockDB(t)
	repo := NewStudyRepo(db, zaptest.NewLogger(t))

	mock.ExpectQuery("SELECT \\* FROM `crf_v1_vs` WHERE patient_id = \\? LIMIT \\?").
		WithArgs("p-1", 1).
		WillReturnRows(sqlmock.NewRows([]string{"patient_id", "note"}).AddRow([]byte("p-1"), []byte("ok")))

	row, err := repo.CRFRow(context.Background(), "crf_v1_vs", "p-1")
	require.NoError(t, err)
	assert.Equal(t, "ok", row["note"])
	assert.NoError(t, mock.ExpectationsWereMet())
}
