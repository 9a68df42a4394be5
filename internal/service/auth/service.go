package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"compliance-platform/internal/config"
	"compliance-platform/internal/domain"
	"compliance-platform/internal/repository"
	"compliance-platform/internal/service/email"
)

type Claims struct {
	UserID uuid.UUID       `json:"user_id"`
	Email  string          `json:"email"`
	Role   domain.UserRole `json:"role"`
	jwt.RegisteredClaims
}

type Service interface {
	Login(ctx context.Context, input domain.LoginInput, meta domain.RequestMeta) (*domain.User, *domain.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error)
	Logout(ctx context.Context, userID uuid.UUID, refreshToken string, meta domain.RequestMeta) error
	ValidateAccessToken(tokenString string) (*Claims, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	RequestPasswordReset(ctx context.Context, emailAddr string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

type service struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	auditRepo   repository.AuditLogRepository
	emailSvc    email.Service
	cfg         *config.Config
	validate    *validator.Validate
}

func NewService(repos *repository.Repositories, emailSvc email.Service, cfg *config.Config, validate *validator.Validate) Service {
	return &service{
		userRepo:    repos.User,
		sessionRepo: repos.Session,
		auditRepo:   repos.AuditLog,
		emailSvc:    emailSvc,
		cfg:         cfg,
		validate:    validate,
	}
}

func (s *service) Login(ctx context.Context, input domain.LoginInput, meta domain.RequestMeta) (*domain.User, *domain.TokenPair, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, nil, err
	}
	if user == nil || !user.IsActive {
		return nil, nil, fiber.NewError(fiber.StatusUnauthorized, "invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, nil, fiber.NewError(fiber.StatusUnauthorized, "invalid email or password")
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	user.Departments, _ = s.userRepo.GetDepartments(ctx, user.ID)

	s.recordAuthEvent(ctx, user, domain.AuditLogin, "Logged in", meta)
	return user, pair, nil
}

func (s *service) issueTokens(ctx context.Context, user *domain.User) (*domain.TokenPair, error) {
	now := time.Now()
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTAccessExpiry)),
		},
	}

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshToken, err := randomToken()
	if err != nil {
		return nil, err
	}

	session := &repository.Session{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: hashToken(refreshToken),
		ExpiresAt: now.Add(s.cfg.JWTRefreshExpiry),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.cfg.JWTAccessExpiry.Seconds()),
	}, nil
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	session, err := s.sessionRepo.GetByTokenHash(ctx, hashToken(refreshToken))
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "invalid or expired refresh token")
	}

	user, err := s.userRepo.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "account is no longer active")
	}

	// Rotate: the presented token is single use.
	if err := s.sessionRepo.Revoke(ctx, session.ID); err != nil {
		return nil, err
	}
	return s.issueTokens(ctx, user)
}

func (s *service) Logout(ctx context.Context, userID uuid.UUID, refreshToken string, meta domain.RequestMeta) error {
	if refreshToken != "" {
		session, err := s.sessionRepo.GetByTokenHash(ctx, hashToken(refreshToken))
		if err != nil {
			return err
		}
		if session != nil && session.UserID == userID {
			if err := s.sessionRepo.Revoke(ctx, session.ID); err != nil {
				return err
			}
		}
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil || user == nil {
		return err
	}
	s.recordAuthEvent(ctx, user, domain.AuditLogout, "Logged out", meta)
	return nil
}

func (s *service) recordAuthEvent(ctx context.Context, user *domain.User, action domain.AuditAction, details string, meta domain.RequestMeta) {
	entry := &domain.AuditLog{
		UserID:     &user.ID,
		ActionType: action,
		EntityType: "user",
		EntityID:   &user.ID,
		Details:    fmt.Sprintf("%s (%s)", details, user.Email),
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
	}
	if err := s.auditRepo.Create(ctx, entry); err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Warn("failed to record auth audit event")
	}
}

func (s *service) ValidateAccessToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

func (s *service) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *service) RequestPasswordReset(ctx context.Context, emailAddr string) error {
	user, err := s.userRepo.GetByEmail(ctx, emailAddr)
	if err != nil {
		return err
	}
	if user == nil || !user.IsActive {
		// Same response whether or not the account exists.
		return nil
	}

	token, err := randomToken()
	if err != nil {
		return err
	}
	if err := s.userRepo.SetPasswordResetToken(ctx, user.ID, token, time.Now().Add(time.Hour)); err != nil {
		return err
	}

	go func(toEmail, fullName string) {
		if err := s.emailSvc.SendPasswordResetEmail(context.Background(), toEmail, fullName, token); err != nil {
			logrus.WithError(err).WithField("email", toEmail).Error("failed to send password reset email")
		}
	}(user.Email, user.FullName)

	return nil
}

func (s *service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", domain.ErrValidation)
	}

	user, err := s.userRepo.GetByResetToken(ctx, token)
	if err != nil {
		return err
	}
	if user == nil || user.PasswordResetExpiresAt == nil || user.PasswordResetExpiresAt.Before(time.Now()) {
		return fiber.NewError(fiber.StatusBadRequest, "invalid or expired reset token")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user.PasswordHash = string(hash)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}
	if err := s.userRepo.ClearPasswordResetToken(ctx, user.ID); err != nil {
		return err
	}
	// Invalidate every open session on password change.
	return s.sessionRepo.RevokeAllForUser(ctx, user.ID)
}

func randomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
