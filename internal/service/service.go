package service

import (
	"github.com/go-playground/validator/v10"
	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"

	"compliance-platform/internal/config"
	"compliance-platform/internal/repository"
	"compliance-platform/internal/service/article"
	"compliance-platform/internal/service/audit"
	"compliance-platform/internal/service/auth"
	"compliance-platform/internal/service/compliance"
	"compliance-platform/internal/service/dashboard"
	"compliance-platform/internal/service/department"
	"compliance-platform/internal/service/email"
	"compliance-platform/internal/service/evidence"
	"compliance-platform/internal/service/export"
	"compliance-platform/internal/service/notification"
	"compliance-platform/internal/service/regulation"
	"compliance-platform/internal/service/search"
	"compliance-platform/internal/service/user"
	"compliance-platform/internal/workflow"
)

type Services struct {
	Auth         auth.Service
	User         user.Service
	Department   department.Service
	Regulation   regulation.Service
	Article      article.Service
	Compliance   compliance.Service
	Notification notification.Service
	Search       search.Service
	Audit        audit.Service
	Dashboard    dashboard.Service
	Export       export.Service
	Evidence     evidence.Service
	Email        email.Service
}

func NewServices(
	repos *repository.Repositories,
	cfg *config.Config,
	policy *workflow.Policy,
	rdb *redis.Client,
	minioClient *minio.Client,
	index search.Index,
) *Services {
	validate := validator.New()

	emailSvc := email.NewService(cfg)
	searchSvc := search.NewService(index, repos.Regulation, cfg.SearchTimeout)
	notifSvc := notification.NewService(repos.Notification, repos.User, emailSvc)

	return &Services{
		Auth:         auth.NewService(repos, emailSvc, cfg, validate),
		User:         user.NewService(repos.User, repos.Department, repos.AuditLog, validate),
		Department:   department.NewService(repos.Department, repos.AuditLog, validate),
		Regulation:   regulation.NewService(repos, policy, notifSvc, searchSvc, validate, cfg.ReferencePrefix),
		Article:      article.NewService(repos.Article, repos.Regulation, policy, validate),
		Compliance:   compliance.NewService(repos.Compliance, repos.Article, repos.Regulation, repos.User, validate),
		Notification: notifSvc,
		Search:       searchSvc,
		Audit:        audit.NewService(repos.AuditLog),
		Dashboard:    dashboard.NewService(repos, rdb, cfg.DashboardCacheTTL),
		Export:       export.NewService(repos.Regulation, repos.Compliance),
		Evidence:     evidence.NewService(repos.Evidence, repos.Compliance, repos.User, repos.AuditLog, minioClient, cfg.MinIOBucket),
		Email:        emailSvc,
	}
}
