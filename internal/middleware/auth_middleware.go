package middleware

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"go-procurement-ws/internal/model"
	"go-procurement-ws/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Authenticator resolves a token to the active user it was issued to.
type Authenticator interface {
	Authenticate(ctx context.Context, tokenString string) (*model.User, error)
}

// RequireAuth validates the bearer token (or the session cookie) and sets user info in context.
// Failures are answered with 401 JSON.
func RequireAuth(auth Authenticator, cookieName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, problem := extractToken(c, cookieName)
		if problem != "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": problem})
		}

		user, err := auth.Authenticate(c.UserContext(), tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": authFailure(err)})
		}

		setUser(c, user)
		return c.Next()
	}
}

// RequireSession is RequireAuth for rendered pages: failures redirect to the login page.
func RequireSession(auth Authenticator, cookieName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := c.Cookies(cookieName)
		if tokenString == "" {
			return c.Redirect("/login")
		}

		user, err := auth.Authenticate(c.UserContext(), tokenString)
		if err != nil {
			c.ClearCookie(cookieName)
			return c.Redirect("/login?notice=" + url.QueryEscape(authFailure(err)))
		}

		setUser(c, user)
		return c.Next()
	}
}

// extractToken returns the token, or a message explaining why there is none.
func extractToken(c *fiber.Ctx, cookieName string) (string, string) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		if cookie := c.Cookies(cookieName); cookie != "" {
			return cookie, ""
		}
		return "", "Missing authorization token"
	}

	// "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", "Invalid authorization format. Use: Bearer <token>"
	}
	return parts[1], ""
}

func authFailure(err error) string {
	switch {
	case errors.Is(err, service.ErrSessionReplaced):
		return "Session expired (logged in on another device)"
	case errors.Is(err, service.ErrUserNotFound):
		return "User not found"
	case errors.Is(err, service.ErrUserInactive):
		return "User account is inactive"
	default:
		return "Invalid or expired token"
	}
}

func setUser(c *fiber.Ctx, user *model.User) {
	c.Locals("user_id", user.ID.String())
	c.Locals("user_email", user.Email)
	c.Locals("user_name", user.FullName)
	c.Locals("user_role", user.RoleCode())
	c.Locals("user_privileges", user.GetPrivilegeCodes())
}

// RequirePrivilege checks if the authenticated user has the required privilege
func RequirePrivilege(requiredPrivilege string) fiber.Handler {
	return RequireAnyPrivilege(requiredPrivilege)
}

// RequireAnyPrivilege checks if the user has at least one of the specified privileges
func RequireAnyPrivilege(requiredPrivileges ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		privileges, ok := c.Locals("user_privileges").([]string)
		if !ok {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "No privileges found"})
		}

		for _, userPriv := range privileges {
			for _, reqPriv := range requiredPrivileges {
				if userPriv == reqPriv {
					return c.Next()
				}
			}
		}

		if len(requiredPrivileges) == 1 {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Forbidden: requires '" + requiredPrivileges[0] + "' privilege",
			})
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Forbidden: requires one of " + strings.Join(requiredPrivileges, ", ") + " privileges",
		})
	}
}
