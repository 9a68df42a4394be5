package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"compliance-platform/internal/config"
	"compliance-platform/internal/domain"
	"compliance-platform/internal/mocks"
	"compliance-platform/internal/repository"
	"compliance-platform/internal/service/auth"
)

type fixture struct {
	userRepo    *mocks.UserRepository
	sessionRepo *mocks.SessionRepository
	auditRepo   *mocks.AuditLogRepository
	emailSvc    *mocks.EmailService
	svc         auth.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		userRepo:    new(mocks.UserRepository),
		sessionRepo: new(mocks.SessionRepository),
		auditRepo:   new(mocks.AuditLogRepository),
		emailSvc:    new(mocks.EmailService),
	}
	repos := &repository.Repositories{
		User:     f.userRepo,
		Session:  f.sessionRepo,
		AuditLog: f.auditRepo,
	}
	cfg := &config.Config{
		JWTSecret:        "test-secret",
		JWTAccessExpiry:  15 * time.Minute,
		JWTRefreshExpiry: 7 * 24 * time.Hour,
	}
	f.svc = auth.NewService(repos, f.emailSvc, cfg, validator.New())
	return f
}

func activeUser(t *testing.T, password string) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &domain.User{
		ID:           uuid.New(),
		Email:        "user@example.com",
		FullName:     "Test User",
		PasswordHash: string(hash),
		Role:         domain.RoleComplianceMaker,
		IsActive:     true,
	}
}

func TestService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("issues a token pair and records the login", func(t *testing.T) {
		f := newFixture(t)
		user := activeUser(t, "correct horse")
		f.userRepo.On("GetByEmail", ctx, user.Email).Return(user, nil)
		f.sessionRepo.On("Create", ctx, mock.MatchedBy(func(s *repository.Session) bool {
			return s.UserID == user.ID && s.TokenHash != "" && s.ExpiresAt.After(time.Now())
		})).Return(nil)
		f.userRepo.On("GetDepartments", ctx, user.ID).Return([]domain.Department{}, nil)
		f.auditRepo.On("Create", ctx, mock.MatchedBy(func(entry *domain.AuditLog) bool {
			return entry.ActionType == domain.AuditLogin
		})).Return(nil)

		got, pair, err := f.svc.Login(ctx, domain.LoginInput{Email: user.Email, Password: "correct horse"}, domain.RequestMeta{})
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
		assert.NotEmpty(t, pair.AccessToken)
		assert.NotEmpty(t, pair.RefreshToken)
		assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

		claims, err := f.svc.ValidateAccessToken(pair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, user.ID, claims.UserID)
		assert.Equal(t, user.Role, claims.Role)
	})

	t.Run("wrong password", func(t *testing.T) {
		f := newFixture(t)
		user := activeUser(t, "correct horse")
		f.userRepo.On("GetByEmail", ctx, user.Email).Return(user, nil)

		_, _, err := f.svc.Login(ctx, domain.LoginInput{Email: user.Email, Password: "battery staple"}, domain.RequestMeta{})
		var fiberErr *fiber.Error
		require.ErrorAs(t, err, &fiberErr)
		assert.Equal(t, fiber.StatusUnauthorized, fiberErr.Code)
		f.sessionRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("deactivated accounts cannot sign in", func(t *testing.T) {
		f := newFixture(t)
		user := activeUser(t, "correct horse")
		user.IsActive = false
		f.userRepo.On("GetByEmail", ctx, user.Email).Return(user, nil)

		_, _, err := f.svc.Login(ctx, domain.LoginInput{Email: user.Email, Password: "correct horse"}, domain.RequestMeta{})
		var fiberErr *fiber.Error
		require.ErrorAs(t, err, &fiberErr)
		assert.Equal(t, fiber.StatusUnauthorized, fiberErr.Code)
	})

	t.Run("unknown account gets the same answer as a bad password", func(t *testing.T) {
		f := newFixture(t)
		f.userRepo.On("GetByEmail", ctx, "nobody@example.com").Return(nil, nil)

		_, _, err := f.svc.Login(ctx, domain.LoginInput{Email: "nobody@example.com", Password: "whatever1"}, domain.RequestMeta{})
		var fiberErr *fiber.Error
		require.ErrorAs(t, err, &fiberErr)
		assert.Equal(t, "invalid email or password", fiberErr.Message)
	})
}

func TestService_ValidateAccessToken_Malformed(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ValidateAccessToken("not a token")
	assert.Error(t, err)
}

func TestService_ResetPassword(t *testing.T) {
	ctx := context.Background()

	t.Run("too short", func(t *testing.T) {
		f := newFixture(t)
		err := f.svc.ResetPassword(ctx, "token", "short")
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("expired token", func(t *testing.T) {
		f := newFixture(t)
		user := activeUser(t, "old password")
		expired := time.Now().Add(-time.Minute)
		user.PasswordResetExpiresAt = &expired
		f.userRepo.On("GetByResetToken", ctx, "stale").Return(user, nil)

		err := f.svc.ResetPassword(ctx, "stale", "new password 123")
		var fiberErr *fiber.Error
		require.ErrorAs(t, err, &fiberErr)
		assert.Equal(t, fiber.StatusBadRequest, fiberErr.Code)
	})

	t.Run("rotates the hash and revokes every session", func(t *testing.T) {
		f := newFixture(t)
		user := activeUser(t, "old password")
		expires := time.Now().Add(30 * time.Minute)
		user.PasswordResetExpiresAt = &expires
		oldHash := user.PasswordHash

		f.userRepo.On("GetByResetToken", ctx, "fresh").Return(user, nil)
		f.userRepo.On("Update", ctx, mock.MatchedBy(func(u *domain.User) bool {
			return u.PasswordHash != oldHash
		})).Return(nil)
		f.userRepo.On("ClearPasswordResetToken", ctx, user.ID).Return(nil)
		f.sessionRepo.On("RevokeAllForUser", ctx, user.ID).Return(nil)

		require.NoError(t, f.svc.ResetPassword(ctx, "fresh", "new password 123"))
		f.sessionRepo.AssertExpectations(t)
	})
}

func TestService_RequestPasswordReset(t *testing.T) {
	ctx := context.Background()

	t.Run("silent for unknown addresses", func(t *testing.T) {
		f := newFixture(t)
		f.userRepo.On("GetByEmail", ctx, "nobody@example.com").Return(nil, nil)

		require.NoError(t, f.svc.RequestPasswordReset(ctx, "nobody@example.com"))
		f.userRepo.AssertNotCalled(t, "SetPasswordResetToken", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("stores a token for known accounts", func(t *testing.T) {
		f := newFixture(t)
		user := activeUser(t, "pw12345678")
		f.userRepo.On("GetByEmail", ctx, user.Email).Return(user, nil)
		f.userRepo.On("SetPasswordResetToken", ctx, user.ID, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(nil)
		f.emailSvc.On("SendPasswordResetEmail", mock.Anything, user.Email, user.FullName, mock.AnythingOfType("string")).
			Return(nil).Maybe()

		require.NoError(t, f.svc.RequestPasswordReset(ctx, user.Email))
		f.userRepo.AssertExpectations(t)
	})
}

func TestService_Refresh(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown token", func(t *testing.T) {
		f := newFixture(t)
		f.sessionRepo.On("GetByTokenHash", ctx, mock.AnythingOfType("string")).Return(nil, nil)

		_, err := f.svc.Refresh(ctx, "bogus")
		var fiberErr *fiber.Error
		require.ErrorAs(t, err, &fiberErr)
		assert.Equal(t, fiber.StatusUnauthorized, fiberErr.Code)
	})

	t.Run("rotates the presented session", func(t *testing.T) {
		f := newFixture(t)
		user := activeUser(t, "pw12345678")
		session := &repository.Session{ID: uuid.New(), UserID: user.ID, ExpiresAt: time.Now().Add(time.Hour)}
		f.sessionRepo.On("GetByTokenHash", ctx, mock.AnythingOfType("string")).Return(session, nil)
		f.userRepo.On("GetByID", ctx, user.ID).Return(user, nil)
		f.sessionRepo.On("Revoke", ctx, session.ID).Return(nil)
		f.sessionRepo.On("Create", ctx, mock.AnythingOfType("*repository.Session")).Return(nil)

		pair, err := f.svc.Refresh(ctx, "presented-token")
		require.NoError(t, err)
		assert.NotEmpty(t, pair.RefreshToken)
		f.sessionRepo.AssertCalled(t, "Revoke", ctx, session.ID)
	})
}
