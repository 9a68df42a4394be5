package evidence

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/sirupsen/logrus"

	"compliance-platform/internal/domain"
	"compliance-platform/internal/repository"
)

const (
	entityType     = "evidence"
	maxUploadBytes = 25 << 20
	presignExpiry  = 15 * time.Minute
)

type Service interface {
	// Upload stores the file in object storage and records its pointer.
	// Only members of the verdict's department (or an admin) may attach
	// evidence.
	Upload(ctx context.Context, actor *domain.User, complianceStatusID uuid.UUID, fileName, contentType string, size int64, r io.Reader, meta domain.RequestMeta) (*domain.Evidence, error)
	List(ctx context.Context, complianceStatusID uuid.UUID) ([]domain.Evidence, error)
	Delete(ctx context.Context, actor *domain.User, id uuid.UUID, meta domain.RequestMeta) error
}

type service struct {
	evidenceRepo repository.EvidenceRepository
	compRepo     repository.ComplianceRepository
	userRepo     repository.UserRepository
	auditRepo    repository.AuditLogRepository
	client       *minio.Client
	bucket       string
}

func NewService(
	evidenceRepo repository.EvidenceRepository,
	compRepo repository.ComplianceRepository,
	userRepo repository.UserRepository,
	auditRepo repository.AuditLogRepository,
	client *minio.Client,
	bucket string,
) Service {
	return &service{
		evidenceRepo: evidenceRepo,
		compRepo:     compRepo,
		userRepo:     userRepo,
		auditRepo:    auditRepo,
		client:       client,
		bucket:       bucket,
	}
}

func (s *service) Upload(ctx context.Context, actor *domain.User, complianceStatusID uuid.UUID, fileName, contentType string, size int64, r io.Reader, meta domain.RequestMeta) (*domain.Evidence, error) {
	if size <= 0 || size > maxUploadBytes {
		return nil, fmt.Errorf("%w: file size must be between 1 byte and %d MB", domain.ErrValidation, maxUploadBytes>>20)
	}

	cs, err := s.compRepo.GetByID(ctx, complianceStatusID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, actor, cs.DepartmentID); err != nil {
		return nil, err
	}

	objectKey := fmt.Sprintf("evidence/%s/%s%s", complianceStatusID, uuid.New(), filepath.Ext(fileName))

	if _, err := s.client.PutObject(ctx, s.bucket, objectKey, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	}); err != nil {
		return nil, fmt.Errorf("failed to store evidence file: %w", err)
	}

	ev := &domain.Evidence{
		ID:                 uuid.New(),
		ComplianceStatusID: complianceStatusID,
		FileName:           fileName,
		ObjectKey:          objectKey,
		ContentType:        contentType,
		SizeBytes:          size,
		UploadedBy:         &actor.ID,
	}
	if err := s.evidenceRepo.Create(ctx, ev); err != nil {
		// The row failed; remove the orphaned object.
		if rmErr := s.client.RemoveObject(ctx, s.bucket, objectKey, minio.RemoveObjectOptions{}); rmErr != nil {
			logrus.WithError(rmErr).WithField("object_key", objectKey).Warn("failed to remove orphaned evidence object")
		}
		return nil, err
	}

	s.record(ctx, actor, domain.AuditCreate, ev.ID, fmt.Sprintf("Uploaded evidence %s", fileName), meta)

	ev.URL = s.presign(ctx, objectKey)
	return ev, nil
}

func (s *service) authorize(ctx context.Context, actor *domain.User, departmentID uuid.UUID) error {
	if actor.Role == domain.RoleAdmin {
		return nil
	}
	if !actor.Role.IsDepartmentRole() {
		return fmt.Errorf("%w: role %s may not manage evidence", domain.ErrAuthorization, actor.Role)
	}

	depts, err := s.userRepo.GetDepartments(ctx, actor.ID)
	if err != nil {
		return err
	}
	for _, d := range depts {
		if d.ID == departmentID {
			return nil
		}
	}
	return fmt.Errorf("%w: you do not belong to this department", domain.ErrAuthorization)
}

func (s *service) List(ctx context.Context, complianceStatusID uuid.UUID) ([]domain.Evidence, error) {
	if _, err := s.compRepo.GetByID(ctx, complianceStatusID); err != nil {
		return nil, err
	}

	evidence, err := s.evidenceRepo.ListByComplianceStatus(ctx, complianceStatusID)
	if err != nil {
		return nil, err
	}
	for i := range evidence {
		evidence[i].URL = s.presign(ctx, evidence[i].ObjectKey)
	}
	return evidence, nil
}

func (s *service) presign(ctx context.Context, objectKey string) string {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, objectKey, presignExpiry, url.Values{})
	if err != nil {
		logrus.WithError(err).WithField("object_key", objectKey).Warn("failed to presign evidence URL")
		return ""
	}
	return u.String()
}

func (s *service) Delete(ctx context.Context, actor *domain.User, id uuid.UUID, meta domain.RequestMeta) error {
	ev, err := s.evidenceRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if actor.Role != domain.RoleAdmin && (ev.UploadedBy == nil || *ev.UploadedBy != actor.ID) {
		return fmt.Errorf("%w: only the uploader or an admin may delete evidence", domain.ErrAuthorization)
	}

	if err := s.evidenceRepo.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.client.RemoveObject(ctx, s.bucket, ev.ObjectKey, minio.RemoveObjectOptions{}); err != nil {
		logrus.WithError(err).WithField("object_key", ev.ObjectKey).Warn("failed to remove evidence object")
	}

	s.record(ctx, actor, domain.AuditDelete, id, fmt.Sprintf("Deleted evidence %s", ev.FileName), meta)
	return nil
}

func (s *service) record(ctx context.Context, actor *domain.User, action domain.AuditAction, entityID uuid.UUID, details string, meta domain.RequestMeta) {
	entry := &domain.AuditLog{
		UserID:     &actor.ID,
		ActionType: action,
		EntityType: entityType,
		EntityID:   &entityID,
		Details:    details,
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
	}
	if err := s.auditRepo.Create(ctx, entry); err != nil {
		logrus.WithError(err).WithField("entity_id", entityID).Warn("failed to record evidence audit event")
	}
}
