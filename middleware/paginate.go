package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/krishkalaria12/snap-vault/images"
)

const paginationKey = "pagination"

// Paginate validates the page and limit query parameters before the handler
// runs.
func Paginate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		pg, err := images.ParsePagination(c.Query("page"), c.Query("limit"))
		if err != nil {
			return err
		}
		c.Locals(paginationKey, pg)
		return c.Next()
	}
}

// PaginationFrom returns the window stored by Paginate, or the defaults.
func PaginationFrom(c *fiber.Ctx) images.Pagination {
	if pg, ok := c.Locals(paginationKey).(images.Pagination); ok {
		return pg
	}
	return images.Pagination{Page: images.DefaultPage, Limit: images.DefaultLimit}
}
