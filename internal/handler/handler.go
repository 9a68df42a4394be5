package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"compliance-platform/internal/domain"
	"compliance-platform/internal/service"
)

type Handlers struct {
	Auth         *AuthHandler
	User         *UserHandler
	Department   *DepartmentHandler
	Regulation   *RegulationHandler
	Article      *ArticleHandler
	Compliance   *ComplianceHandler
	Evidence     *EvidenceHandler
	Notification *NotificationHandler
	Audit        *AuditHandler
	Dashboard    *DashboardHandler
	Export       *ExportHandler
}

func NewHandlers(svcs *service.Services) *Handlers {
	return &Handlers{
		Auth:         NewAuthHandler(svcs.Auth, svcs.User),
		User:         NewUserHandler(svcs.User),
		Department:   NewDepartmentHandler(svcs.Department),
		Regulation:   NewRegulationHandler(svcs.Regulation, svcs.Search),
		Article:      NewArticleHandler(svcs.Article),
		Compliance:   NewComplianceHandler(svcs.Compliance),
		Evidence:     NewEvidenceHandler(svcs.Evidence),
		Notification: NewNotificationHandler(svcs.Notification),
		Audit:        NewAuditHandler(svcs.Audit),
		Dashboard:    NewDashboardHandler(svcs.Dashboard),
		Export:       NewExportHandler(svcs.Export, svcs.Audit),
	}
}

func parseUUIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

func paginationFromQuery(c *fiber.Ctx) domain.PaginationParams {
	params := domain.PaginationParams{
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("page_size", domain.DefaultPageSize),
	}
	params.Validate()
	return params
}
