package controller

import (
	"encoding/json"
	"io"
	"strings"

	"simple-notes-be/internal/apperror"
	"simple-notes-be/internal/dto"
	"simple-notes-be/internal/pkg/serverutils"
	"simple-notes-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type INoteController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	UploadImage(ctx *fiber.Ctx) error
}

type noteController struct {
	noteService  service.INoteService
	imageService service.IImageService
}

func NewNoteController(noteService service.INoteService, imageService service.IImageService) INoteController {
	return &noteController{
		noteService:  noteService,
		imageService: imageService,
	}
}

func (c *noteController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/notes")
	h.Get("", c.List)
	h.Post("", c.Create)
	h.Put("", c.Update)
	h.Delete("", c.Delete)
	h.Get(":id", c.Show)
	h.Put(":id", c.Update)
	h.Delete(":id", c.Delete)
	h.Post(":id/images", c.UploadImage)
}

func (c *noteController) List(ctx *fiber.Ctx) error {
	res, err := c.noteService.List(ctx.UserContext(), ctx.Query("q"))
	if err != nil {
		return err
	}

	return ctx.JSON(dto.NotesResponse{Notes: res})
}

func (c *noteController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateNoteRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return apperror.NewValidationError("body", "Invalid request body")
		}
	}

	res, err := c.noteService.Create(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(dto.NoteResponse{Note: *res})
}

func (c *noteController) Show(ctx *fiber.Ctx) error {
	res, err := c.noteService.Show(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(dto.NoteResponse{Note: *res})
}

// Update serves both PUT /notes/:id and PUT /notes with the id in the body.
func (c *noteController) Update(ctx *fiber.Ctx) error {
	var req dto.UpdateNoteRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return apperror.NewValidationError("body", "Invalid request body")
		}
	}
	if id := ctx.Params("id"); id != "" {
		req.Id = id
	}
	req.Id = strings.TrimSpace(req.Id)

	if err := serverutils.ValidateRequest(req); err != nil {
		return apperror.NewValidationError("id", "Note ID is required")
	}

	res, err := c.noteService.Update(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(dto.NoteResponse{Note: *res})
}

func (c *noteController) Delete(ctx *fiber.Ctx) error {
	id := ctx.Params("id")
	if id == "" {
		id = ctx.Query("id")
	}

	if err := c.noteService.Delete(ctx.UserContext(), id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse())
}

func (c *noteController) UploadImage(ctx *fiber.Ctx) error {
	fileHeader, err := ctx.FormFile("image")
	if err != nil {
		return apperror.NewValidationError("image", "Image file is required")
	}

	var meta dto.UploadImageMetadata
	if raw := ctx.FormValue("metadata"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &meta); err != nil {
			return apperror.NewValidationError("metadata", "Invalid image metadata")
		}
		if err := serverutils.ValidateRequest(meta); err != nil {
			return err
		}
	}

	file, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}

	res, err := c.imageService.Upload(ctx.UserContext(), ctx.Params("id"), data, &meta)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(dto.ImageResponse{Image: *res})
}
