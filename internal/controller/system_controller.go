package controller

import (
	"simple-notes-be/internal/apperror"
	"simple-notes-be/internal/dto"
	"simple-notes-be/internal/pkg/serverutils"
	"simple-notes-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISystemController interface {
	RegisterRoutes(r fiber.Router)
	Stats(ctx *fiber.Ctx) error
	Health(ctx *fiber.Ctx) error
	Clear(ctx *fiber.Ctx) error
}

type systemController struct {
	systemService service.ISystemService
}

func NewSystemController(systemService service.ISystemService) ISystemController {
	return &systemController{
		systemService: systemService,
	}
}

func (c *systemController) RegisterRoutes(r fiber.Router) {
	r.Get("/stats", c.Stats)
	r.Get("/health", c.Health)
	r.Post("/clear", c.Clear)
}

func (c *systemController) Stats(ctx *fiber.Ctx) error {
	res, err := c.systemService.Stats(ctx.UserContext())
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

func (c *systemController) Health(ctx *fiber.Ctx) error {
	res := c.systemService.Health(ctx.UserContext())
	if res.Status != service.HealthStatusHealthy {
		return ctx.Status(fiber.StatusServiceUnavailable).JSON(res)
	}

	return ctx.JSON(res)
}

func (c *systemController) Clear(ctx *fiber.Ctx) error {
	var req dto.ClearRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return apperror.NewValidationError("body", "Invalid request body")
		}
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return apperror.NewValidationError("confirm", `Confirmation required. Send {"confirm": "true"} to clear all data.`)
	}

	res, err := c.systemService.Clear(ctx.UserContext())
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}
