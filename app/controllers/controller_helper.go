package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/swapit-app/swapit/internal/pkg/usercontext"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// paginationParams reads ?page and ?limit and returns an offset/limit pair.
// Pages are 1-based.
func paginationParams(c *fiber.Ctx) (int, int) {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := c.QueryInt("limit", defaultPageSize)
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return (page - 1) * limit, limit
}

func apiError(c *fiber.Ctx, status int, code, details string) error {
	return c.Status(status).JSON(fiber.Map{
		"error":   code,
		"details": details,
		"success": false,
	})
}

// requireUser resolves the authenticated user or writes a 401. The bool is
// false when the response has already been sent.
func requireUser(c *fiber.Ctx) (usercontext.UserContext, bool) {
	user := usercontext.GetUserContext(c)
	if !user.IsLoggedIn {
		_ = apiError(c, fiber.StatusUnauthorized, "unauthorized", "Missing or invalid authentication")
		return user, false
	}
	return user, true
}
