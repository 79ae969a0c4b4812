package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// MethodOverride lets HTML forms issue PUT, PATCH and DELETE through a hidden _method field.
func MethodOverride() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() == fiber.MethodPost {
			switch method := strings.ToUpper(c.FormValue("_method")); method {
			case fiber.MethodPut, fiber.MethodPatch, fiber.MethodDelete:
				c.Method(method)
			}
		}
		return c.Next()
	}
}
