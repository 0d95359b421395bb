package controller

import (
	"errors"

	"store-locator-be/internal/dto"
	"store-locator-be/internal/pkg/serverutils"
	"store-locator-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISearchController interface {
	RegisterRoutes(r fiber.Router)
	SearchNearby(ctx *fiber.Ctx) error
	SearchKeyword(ctx *fiber.Ctx) error
	GetSession(ctx *fiber.Ctx) error
}

type searchController struct {
	service service.ISearchService
}

func NewSearchController(service service.ISearchService) ISearchController {
	return &searchController{service: service}
}

func (c *searchController) RegisterRoutes(r fiber.Router) {
	r.Get("/search", c.SearchNearby)
	r.Get("/search/keyword", c.SearchKeyword)
	r.Get("/session", c.GetSession)
}

func (c *searchController) SearchNearby(ctx *fiber.Ctx) error {
	if err := requireQuery(ctx, "lat", "lng"); err != nil {
		return err
	}

	var req dto.SearchNearbyRequest
	if err := parseQuery(ctx, &req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.SearchNearby(ctx.UserContext(), serverutils.SessionID(ctx), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success search nearby stores", res))
}

func (c *searchController) SearchKeyword(ctx *fiber.Ctx) error {
	if err := requireQuery(ctx, "lat", "lng", "keyword"); err != nil {
		return err
	}

	var req dto.SearchKeywordRequest
	if err := parseQuery(ctx, &req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.SearchKeyword(ctx.UserContext(), serverutils.SessionID(ctx), &req)
	if errors.Is(err, service.ErrInvalidKeyword) {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success search stores by keyword", res))
}

func (c *searchController) GetSession(ctx *fiber.Ctx) error {
	res, err := c.service.GetSession(ctx.UserContext(), serverutils.SessionID(ctx))
	if errors.Is(err, service.ErrSessionNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "No search in this session yet")
	}
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get session", res))
}
