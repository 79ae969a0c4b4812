package handler

import (
	"errors"
	"strings"
	"time"

	"go-procurement-ws/internal/service"
	"go-procurement-ws/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// SessionCookie configures the cookie that carries the JWT for page routes.
type SessionCookie struct {
	Name   string
	Secure bool
	TTL    time.Duration
}

type AuthHandler struct {
	authService service.AuthService
	cookie      SessionCookie
	log         *logger.Logger
}

func NewAuthHandler(authService service.AuthService, cookie SessionCookie, log *logger.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, cookie: cookie, log: log.WithComponent("auth_handler")}
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// ResetPasswordRequest represents the reset password request body
type ResetPasswordRequest struct {
	Email       string `json:"email"`
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// Login handles user authentication
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	if req.Email == "" || req.Password == "" {
		return badRequest(c, "Email and password are required")
	}

	response, err := h.authService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(response)
}

// SessionLogin authenticates and stores the token in the session cookie.
// Form posts are redirected, JSON callers get the login response.
// POST /auth/login
func (h *AuthHandler) SessionLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	isForm := !strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON)

	response, err := h.authService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		if isForm {
			return c.Status(fiber.StatusUnauthorized).Render("pages/login", fiber.Map{
				"Title": "Sign in",
				"Email": req.Email,
				"Error": err.Error(),
			}, "layouts/base")
		}
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cookie.Name,
		Value:    response.Token,
		Path:     "/",
		Expires:  time.Now().Add(h.cookie.TTL),
		HTTPOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	if isForm {
		return c.Redirect("/dashboard")
	}
	return c.JSON(response)
}

// Logout invalidates every token of the user and clears the cookie
// POST /auth/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if id, err := uuid.Parse(actorFrom(c).ID); err == nil {
		if err := h.authService.Logout(c.UserContext(), id); err != nil {
			h.log.Warnw("logout failed", "user_id", id, "error", err)
		}
	}
	c.ClearCookie(h.cookie.Name)

	if strings.Contains(c.Get(fiber.HeaderAccept), fiber.MIMETextHTML) {
		return c.Redirect("/login")
	}
	return c.JSON(fiber.Map{"message": "Logged out"})
}

// ResetPassword handles password change
// POST /api/v1/auth/reset-password
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	if req.Email == "" || req.OldPassword == "" || req.NewPassword == "" {
		return badRequest(c, "Email, old_password, and new_password are required")
	}

	if len(req.NewPassword) < 6 {
		return badRequest(c, "New password must be at least 6 characters")
	}

	if err := h.authService.ResetPassword(c.UserContext(), req.Email, req.OldPassword, req.NewPassword); err != nil {
		if errors.Is(err, service.ErrUserNotFound) || errors.Is(err, service.ErrWrongPassword) {
			return badRequest(c, err.Error())
		}
		return respondError(c, h.log, err)
	}

	return c.JSON(fiber.Map{"message": "Password updated successfully"})
}

// Me returns the authenticated user
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	actor := actorFrom(c)
	return c.JSON(fiber.Map{
		"user":       actor,
		"privileges": c.Locals("user_privileges"),
	})
}

// ValidateTokenRequest represents the validate token request body
type ValidateTokenRequest struct {
	Token string `json:"token"`
}

// ValidateToken handles JWT token validation
// POST /api/v1/auth/validate-token
func (h *AuthHandler) ValidateToken(c *fiber.Ctx) error {
	var req ValidateTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	if req.Token == "" {
		return badRequest(c, "Token is required")
	}

	response, err := h.authService.ValidateToken(c.UserContext(), req.Token)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(response)
}
