package handler

import (
	"net/http"

	"go-procurement-ws/internal/repository"
	"go-procurement-ws/internal/service"
	"go-procurement-ws/pkg/apperror"
	"go-procurement-ws/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// respondError writes err as {"error", "code", "fields"}. Internal details are only logged.
func respondError(c *fiber.Ctx, log *logger.Logger, err error) error {
	status := apperror.GetHTTPStatus(err)
	appErr, ok := apperror.AsAppError(err)
	if !ok || status >= http.StatusInternalServerError {
		log.Errorw("request failed", "method", c.Method(), "path", c.Path(), "error", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal Server Error",
			"code":  apperror.CodeInternal,
		})
	}

	body := fiber.Map{"error": appErr.Message, "code": appErr.Code}
	if len(appErr.Fields) > 0 {
		body["fields"] = appErr.Fields
	}
	if len(appErr.Details) > 0 {
		body["details"] = appErr.Details
	}
	return c.Status(status).JSON(body)
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": message})
}

// actorFrom reads the user set by middleware.RequireAuth.
func actorFrom(c *fiber.Ctx) service.Actor {
	actor := service.SystemActor
	if id, ok := c.Locals("user_id").(string); ok && id != "" {
		actor.ID = id
		actor.Name = "Unknown"
	}
	if name, ok := c.Locals("user_name").(string); ok && name != "" {
		actor.Name = name
	}
	if email, ok := c.Locals("user_email").(string); ok {
		actor.Email = email
	}
	return actor
}

func paramID(c *fiber.Ctx, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(name))
	return id, err == nil
}

// queryUUID returns uuid.Nil, meaning "no filter", for a missing or malformed value.
func queryUUID(c *fiber.Ctx, key string) uuid.UUID {
	id, err := uuid.Parse(c.Query(key))
	if err != nil {
		return uuid.Nil
	}
	return id
}

func pageFrom(c *fiber.Ctx) repository.Page {
	return repository.Page{
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("page_size", repository.DefaultPageSize),
	}.Normalize()
}
