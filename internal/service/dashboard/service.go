package dashboard

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"compliance-platform/internal/domain"
	"compliance-platform/internal/repository"
)

const cacheKey = "dashboard:stats"

type Stats struct {
	Users               int64                                `json:"users"`
	Departments         int64                                `json:"departments"`
	Regulations         int64                                `json:"regulations"`
	Articles            int64                                `json:"articles"`
	RegulationsByStatus []domain.StatusCount                 `json:"regulations_by_status"`
	ComplianceSummary   []domain.DepartmentComplianceSummary `json:"compliance_summary"`
	RecentActivity      []domain.AuditLog                    `json:"recent_activity"`
	GeneratedAt         time.Time                            `json:"generated_at"`
}

type Service interface {
	Stats(ctx context.Context) (*Stats, error)
}

type service struct {
	repos *repository.Repositories
	rdb   *redis.Client
	ttl   time.Duration
}

func NewService(repos *repository.Repositories, rdb *redis.Client, ttl time.Duration) Service {
	return &service{
		repos: repos,
		rdb:   rdb,
		ttl:   ttl,
	}
}

// Stats is cache-aside: a short TTL in Redis absorbs the dashboard's poll
// traffic, and a cache outage degrades to direct queries.
func (s *service) Stats(ctx context.Context) (*Stats, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var stats Stats
			if err := json.Unmarshal([]byte(cached), &stats); err == nil {
				return &stats, nil
			}
		}
	}

	stats, err := s.compute(ctx)
	if err != nil {
		return nil, err
	}

	if s.rdb != nil {
		if payload, err := json.Marshal(stats); err == nil {
			if err := s.rdb.Set(ctx, cacheKey, payload, s.ttl).Err(); err != nil {
				logrus.WithError(err).Warn("failed to cache dashboard stats")
			}
		}
	}
	return stats, nil
}

func (s *service) compute(ctx context.Context) (*Stats, error) {
	users, err := s.repos.User.CountAll(ctx)
	if err != nil {
		return nil, err
	}
	departments, err := s.repos.Department.CountAll(ctx)
	if err != nil {
		return nil, err
	}
	regulations, err := s.repos.Regulation.CountAll(ctx)
	if err != nil {
		return nil, err
	}
	articles, err := s.repos.Article.CountAll(ctx)
	if err != nil {
		return nil, err
	}
	byStatus, err := s.repos.Regulation.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	summary, err := s.repos.Compliance.SummaryByDepartment(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.repos.AuditLog.Recent(ctx, 10)
	if err != nil {
		return nil, err
	}

	return &Stats{
		Users:               users,
		Departments:         departments,
		Regulations:         regulations,
		Articles:            articles,
		RegulationsByStatus: byStatus,
		ComplianceSummary:   summary,
		RecentActivity:      recent,
		GeneratedAt:         time.Now().UTC(),
	}, nil
}
