// Package admin computes the administrator dashboard.
package admin

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"crf-service/internal/domain/stats"
)

// Repository defines the aggregate queries behind the dashboard.
type Repository interface {
	CountUsers(ctx context.Context) (int64, error)
	CountPatients(ctx context.Context) (int64, error)
	GenderCounts(ctx context.Context) ([]stats.Bucket, error)
	BirthYearCounts(ctx context.Context) ([]stats.Bucket, error)
}

// Usecase defines the dashboard operations exposed to transports.
type Usecase interface {
	Stats(ctx context.Context) (*stats.AdminStats, error)
}

// Service implements Usecase.
type Service struct {
	repo Repository
	log  *zap.Logger
}

// New creates a new admin Service.
func New(r Repository, log *zap.Logger) *Service {
	return &Service{repo: r, log: log}
}

// Stats runs the four aggregates concurrently. Only the user count is
// mandatory; the others degrade to zero or an empty list.
func (s *Service) Stats(ctx context.Context) (*stats.AdminStats, error) {
	out := &stats.AdminStats{
		GenderStats: []stats.GenderStat{},
		YearStats:   []stats.YearStat{},
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.repo.CountUsers(gctx)
		if err != nil {
			return fmt.Errorf("count users: %w", err)
		}
		out.UserCount = n
		return nil
	})
	g.Go(func() error {
		n, err := s.repo.CountPatients(gctx)
		if err != nil {
			s.log.Warn("patient count unavailable", zap.Error(err))
			return nil
		}
		out.PatientCount = n
		return nil
	})
	g.Go(func() error {
		buckets, err := s.repo.GenderCounts(gctx)
		if err != nil {
			s.log.Warn("gender stats error", zap.Error(err))
			return nil
		}
		out.GenderStats = stats.GenderStatsFrom(buckets)
		return nil
	})
	g.Go(func() error {
		buckets, err := s.repo.BirthYearCounts(gctx)
		if err != nil {
			s.log.Warn("year stats error", zap.Error(err))
			return nil
		}
		out.YearStats = stats.YearStatsFrom(buckets)
		return nil
	})

	if err := g.Wait(); err != nil {
		s.log.Error("failed to compute admin stats", zap.Error(err))
		return nil, err
	}
	return out, nil
}
