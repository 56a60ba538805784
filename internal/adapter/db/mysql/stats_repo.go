package mysql

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"crf-service/internal/domain/stats"
	apperrors "crf-service/pkg/errors"
)

// StatsRepo aggregates dashboard figures.
type StatsRepo struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewStatsRepo creates a new instance of StatsRepo.
func NewStatsRepo(db *gorm.DB, log *zap.Logger) *StatsRepo {
	return &StatsRepo{db: db, log: log}
}

type bucketRow struct {
	Label string
	Total int64
}

// CountUsers returns the number of user accounts.
func (r *StatsRepo) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&UserSchema{}).Count(&n).Error; err != nil {
		r.log.Error("user count failed", zap.Error(err))
		return 0, apperrors.NewInternalError("failed to count users", err)
	}
	return n, nil
}

// CountPatients returns the number of enrolled patients.
func (r *StatsRepo) CountPatients(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&PatientSchema{}).Count(&n).Error; err != nil {
		r.log.Warn("patient count failed", zap.Error(err))
		return 0, apperrors.NewInternalError("failed to count patients", err)
	}
	return n, nil
}

// GenderCounts groups users by their stored gender, ignoring unset values.
func (r *StatsRepo) GenderCounts(ctx context.Context) ([]stats.Bucket, error) {
	var rows []bucketRow
	err := r.db.WithContext(ctx).Model(&UserSchema{}).
		Select("gender AS label, COUNT(*) AS total").
		Where("gender IS NOT NULL").
		Group("gender").
		Scan(&rows).Error
	if err != nil {
		r.log.Warn("gender aggregation failed", zap.Error(err))
		return nil, apperrors.NewInternalError("failed to aggregate genders", err)
	}
	return toBuckets(rows), nil
}

// BirthYearCounts groups users by birth year in ascending order, ignoring
// users without a birthday.
func (r *StatsRepo) BirthYearCounts(ctx context.Context) ([]stats.Bucket, error) {
	year := r.yearExpr("birthday")

	var rows []bucketRow
	err := r.db.WithContext(ctx).Model(&UserSchema{}).
		Select(year + " AS label, COUNT(*) AS total").
		Where("birthday IS NOT NULL").
		Group(year).
		Order("label ASC").
		Scan(&rows).Error
	if err != nil {
		r.log.Warn("birth year aggregation failed", zap.Error(err))
		return nil, apperrors.NewInternalError("failed to aggregate birth years", err)
	}
	return toBuckets(rows), nil
}

// yearExpr renders the four digit year of a datetime column for the active dialect.
func (r *StatsRepo) yearExpr(column string) string {
	switch r.db.Dialector.Name() {
	case "sqlite":
		return "substr(" + column + ", 1, 4)"
	default:
		return "DATE_FORMAT(" + column + ", '%Y')"
	}
}

func toBuckets(rows []bucketRow) []stats.Bucket {
	out := make([]stats.Bucket, len(rows))
	for i, row := range rows {
		out[i] = stats.Bucket{Key: row.Label, Count: row.Total}
	}
	return out
}
