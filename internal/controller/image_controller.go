package controller

import (
	"simple-notes-be/internal/pkg/serverutils"
	"simple-notes-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IImageController interface {
	RegisterRoutes(r fiber.Router)
	Show(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type imageController struct {
	imageService service.IImageService
}

func NewImageController(imageService service.IImageService) IImageController {
	return &imageController{
		imageService: imageService,
	}
}

func (c *imageController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/images")
	h.Get(":blobKey", c.Show)
	h.Delete(":blobKey", c.Delete)
}

func (c *imageController) Show(ctx *fiber.Ctx) error {
	data, err := c.imageService.Get(ctx.UserContext(), ctx.Params("blobKey"))
	if err != nil {
		return err
	}

	// Blob keys never get reused for different bytes.
	ctx.Set(fiber.HeaderContentType, "image/png")
	ctx.Set(fiber.HeaderCacheControl, "public, max-age=31536000")
	return ctx.Send(data)
}

func (c *imageController) Delete(ctx *fiber.Ctx) error {
	if err := c.imageService.Delete(ctx.UserContext(), ctx.Params("blobKey")); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse())
}
