package controller

import (
	"errors"

	"store-locator-be/internal/dto"
	"store-locator-be/internal/pkg/serverutils"
	"store-locator-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IHistoryController interface {
	RegisterRoutes(r fiber.Router)
	ListSessionHistory(ctx *fiber.Ctx) error
}

type historyController struct {
	service service.IHistoryService
}

func NewHistoryController(service service.IHistoryService) IHistoryController {
	return &historyController{service: service}
}

func (c *historyController) RegisterRoutes(r fiber.Router) {
	r.Get("/session/history", c.ListSessionHistory)
}

// ListSessionHistory lists the caller's own logged interactions, newest first.
func (c *historyController) ListSessionHistory(ctx *fiber.Ctx) error {
	var req dto.SessionHistoryRequest
	if err := ctx.QueryParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "limit and offset must be numbers")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.ListInteractions(ctx.UserContext(), dto.InteractionHistoryQuery{
		SessionID: serverutils.SessionID(ctx),
		Kind:      req.Kind,
		Limit:     req.Limit,
		Offset:    req.Offset,
	})
	if errors.Is(err, service.ErrHistoryDisabled) {
		return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	}
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get session history", res))
}
