package controller

import (
	"github.com/gofiber/fiber/v2"
)

// requireQuery fails with 400 when any of the named query parameters is absent.
func requireQuery(ctx *fiber.Ctx, names ...string) error {
	for _, name := range names {
		if ctx.Query(name) == "" {
			return fiber.NewError(fiber.StatusBadRequest, name+" is required")
		}
	}
	return nil
}

func parseQuery(ctx *fiber.Ctx, out interface{}) error {
	if err := ctx.QueryParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "lat and lng must be numbers")
	}
	return nil
}
