package handler

import (
	"github.com/gofiber/fiber/v2"

	"compliance-platform/internal/domain"
	"compliance-platform/internal/middleware"
	"compliance-platform/internal/service/auth"
	"compliance-platform/internal/service/user"
)

type AuthHandler struct {
	authSvc auth.Service
	userSvc user.Service
}

func NewAuthHandler(authSvc auth.Service, userSvc user.Service) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, userSvc: userSvc}
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input domain.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	usr, tokens, err := h.authSvc.Login(c.Context(), input, middleware.RequestMeta(c))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"user":   usr,
		"tokens": tokens,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil || req.RefreshToken == "" {
		return fiber.NewError(fiber.StatusBadRequest, "refresh_token is required")
	}

	tokens, err := h.authSvc.Refresh(c.Context(), req.RefreshToken)
	if err != nil {
		return err
	}
	return c.JSON(tokens)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var req refreshRequest
	_ = c.BodyParser(&req)

	if err := h.authSvc.Logout(c.Context(), middleware.GetUserID(c), req.RefreshToken, middleware.RequestMeta(c)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "logged out"})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	usr, err := h.userSvc.GetByID(c.Context(), middleware.GetUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(usr)
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req forgotPasswordRequest
	if err := c.BodyParser(&req); err != nil || req.Email == "" {
		return fiber.NewError(fiber.StatusBadRequest, "email is required")
	}

	if err := h.authSvc.RequestPasswordReset(c.Context(), req.Email); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "if the account exists, a reset email has been sent"})
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req resetPasswordRequest
	if err := c.BodyParser(&req); err != nil || req.Token == "" {
		return fiber.NewError(fiber.StatusBadRequest, "token and password are required")
	}

	if err := h.authSvc.ResetPassword(c.Context(), req.Token, req.Password); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "password updated"})
}
