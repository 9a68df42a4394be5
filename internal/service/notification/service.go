package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"compliance-platform/internal/domain"
	"compliance-platform/internal/repository"
	"compliance-platform/internal/service/email"
	"compliance-platform/internal/workflow"
)

type Service interface {
	// NotifyTransition fans a status change out to the group named by the
	// transition's notify target. Every failure is logged and swallowed;
	// a missed notification never rolls back a transition.
	NotifyTransition(ctx context.Context, reg *domain.Regulation, t workflow.Transition, actor *domain.User)
	List(ctx context.Context, userID uuid.UUID, unreadOnly bool, params domain.PaginationParams) (domain.PaginatedResponse[domain.Notification], error)
	MarkAsRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
}

type service struct {
	notifRepo repository.NotificationRepository
	userRepo  repository.UserRepository
	emailSvc  email.Service
}

func NewService(notifRepo repository.NotificationRepository, userRepo repository.UserRepository, emailSvc email.Service) Service {
	return &service{
		notifRepo: notifRepo,
		userRepo:  userRepo,
		emailSvc:  emailSvc,
	}
}

func (s *service) NotifyTransition(ctx context.Context, reg *domain.Regulation, t workflow.Transition, actor *domain.User) {
	recipients, err := s.recipients(ctx, reg, t)
	if err != nil {
		logrus.WithError(err).WithField("regulation_id", reg.ID).Warn("could not resolve notification recipients")
		return
	}

	notifType := typeFor(t)
	title, message := messageFor(reg, t, notifType)

	data, _ := json.Marshal(map[string]string{
		"from_status": string(t.From),
		"to_status":   string(t.To),
		"actor_id":    actor.ID.String(),
	})

	for _, recipient := range recipients {
		if recipient.ID == actor.ID {
			continue
		}

		notif := &domain.Notification{
			ID:           uuid.New(),
			UserID:       recipient.ID,
			Type:         notifType,
			Title:        title,
			Message:      message,
			RegulationID: &reg.ID,
			Data:         data,
		}
		if err := s.notifRepo.Create(ctx, notif); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"regulation_id": reg.ID,
				"user_id":       recipient.ID,
			}).Warn("failed to create notification")
			continue
		}

		go func(toEmail, fullName string) {
			if err := s.emailSvc.SendNotificationEmail(context.Background(), toEmail, fullName, title, message); err != nil {
				logrus.WithError(err).WithField("email", toEmail).Warn("failed to send notification email")
			}
		}(recipient.Email, recipient.FullName)
	}
}

func (s *service) recipients(ctx context.Context, reg *domain.Regulation, t workflow.Transition) ([]domain.User, error) {
	switch t.Notify {
	case workflow.NotifyDepartments:
		ids := make([]uuid.UUID, 0, len(reg.Departments))
		for _, d := range reg.Departments {
			ids = append(ids, d.ID)
		}
		if len(ids) == 0 {
			return nil, nil
		}
		return s.userRepo.ListByDepartments(ctx, ids)
	case workflow.NotifyComplianceTeam:
		return s.userRepo.ListByRoles(ctx, domain.ComplianceRoles())
	case workflow.NotifyCreator:
		if reg.CreatedBy == nil {
			return nil, nil
		}
		creator, err := s.userRepo.GetByID(ctx, *reg.CreatedBy)
		if err != nil || creator == nil {
			return nil, err
		}
		return []domain.User{*creator}, nil
	default:
		return nil, nil
	}
}

func typeFor(t workflow.Transition) domain.NotificationType {
	switch t.Notify {
	case workflow.NotifyDepartments:
		if t.To == workflow.StatusReturnedForRework {
			return domain.NotifReturnedForRework
		}
		return domain.NotifActionRequired
	case workflow.NotifyComplianceTeam:
		if t.To == workflow.StatusDeptResponseSubmitted {
			return domain.NotifResponseSubmitted
		}
		return domain.NotifStatusChanged
	case workflow.NotifyCreator:
		if t.To == workflow.StatusFullyApproved || t.To == workflow.SimpleApproved {
			return domain.NotifRegulationApproved
		}
		return domain.NotifStatusChanged
	default:
		return domain.NotifStatusChanged
	}
}

func messageFor(reg *domain.Regulation, t workflow.Transition, notifType domain.NotificationType) (title, message string) {
	switch notifType {
	case domain.NotifActionRequired:
		title = fmt.Sprintf("Action required: %s", reg.Reference)
		message = fmt.Sprintf("Regulation %s (%s) requires a response from your department.", reg.Reference, reg.Name)
	case domain.NotifReturnedForRework:
		title = fmt.Sprintf("Returned for rework: %s", reg.Reference)
		message = fmt.Sprintf("The response for regulation %s (%s) was returned to your department for rework.", reg.Reference, reg.Name)
	case domain.NotifResponseSubmitted:
		title = fmt.Sprintf("Response submitted: %s", reg.Reference)
		message = fmt.Sprintf("A department submitted its response for regulation %s (%s).", reg.Reference, reg.Name)
	case domain.NotifRegulationApproved:
		title = fmt.Sprintf("Approved: %s", reg.Reference)
		message = fmt.Sprintf("Regulation %s (%s) is fully approved.", reg.Reference, reg.Name)
	default:
		title = fmt.Sprintf("Status changed: %s", reg.Reference)
		message = fmt.Sprintf("Regulation %s (%s) moved from %s to %s.", reg.Reference, reg.Name, t.From, t.To)
	}
	return title, message
}

func (s *service) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, params domain.PaginationParams) (domain.PaginatedResponse[domain.Notification], error) {
	params.Validate()

	notifications, total, err := s.notifRepo.ListByUser(ctx, userID, unreadOnly, params)
	if err != nil {
		return domain.PaginatedResponse[domain.Notification]{}, err
	}
	return domain.NewPaginatedResponse(notifications, params.Page, params.PageSize, total), nil
}

func (s *service) MarkAsRead(ctx context.Context, id, userID uuid.UUID) error {
	return s.notifRepo.MarkAsRead(ctx, id, userID)
}

func (s *service) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.notifRepo.MarkAllAsRead(ctx, userID)
}

func (s *service) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.notifRepo.CountUnread(ctx, userID)
}
