package handler

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"github.com/krishkalaria12/snap-vault/apperr"
	"github.com/krishkalaria12/snap-vault/images"
	"github.com/krishkalaria12/snap-vault/media"
	"github.com/krishkalaria12/snap-vault/middleware"
	"github.com/krishkalaria12/snap-vault/models"
)

const uploadField = "images"

type ImageService interface {
	Upload(ctx context.Context, userID uint, payloads []media.Payload) ([]models.Image, error)
	Query(ctx context.Context, userID uint, pg images.Pagination, params images.ListParams) (*models.ImagePage, error)
}

type UploadLimits struct {
	MaxFiles int
	MaxBytes int64
}

type ImageHandler struct {
	images ImageService
	limits UploadLimits
}

func NewImageHandler(svc ImageService, limits UploadLimits) *ImageHandler {
	return &ImageHandler{images: svc, limits: limits}
}

// ListImages expects AuthMiddleware and Paginate to have run.
func (h *ImageHandler) ListImages(c *fiber.Ctx) error {
	identity, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	page, err := h.images.Query(c.UserContext(), identity.UserID, middleware.PaginationFrom(c), images.ListParams{
		Color:     c.Query("color"),
		Search:    c.Query("search"),
		SimilarTo: c.Query("similarTo"),
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "success",
		"message": "Images fetched successfully",
		"data":    page.Data,
		"meta":    page.Meta,
	})
}

func (h *ImageHandler) UploadImages(c *fiber.Ctx) error {
	identity, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	form, err := c.MultipartForm()
	if err != nil {
		return apperr.Validation("Expected a multipart form with %q files", uploadField)
	}

	files := form.File[uploadField]
	if len(files) == 0 {
		return apperr.Validation("No file provided")
	}
	if h.limits.MaxFiles > 0 && len(files) > h.limits.MaxFiles {
		return apperr.Validation("At most %d files can be uploaded at once", h.limits.MaxFiles)
	}

	payloads := make([]media.Payload, 0, len(files))
	for _, file := range files {
		if h.limits.MaxBytes > 0 && file.Size > h.limits.MaxBytes {
			return apperr.Validation("%s exceeds the %d byte limit", file.Filename, h.limits.MaxBytes)
		}
		p, err := readPayload(file)
		if err != nil {
			return apperr.Internal("Error opening the file", err)
		}
		payloads = append(payloads, p)
	}

	created, err := h.images.Upload(c.UserContext(), identity.UserID, payloads)
	if err != nil {
		return err
	}

	return success(c, fiber.StatusCreated, "Successfully uploaded the files", created)
}

func readPayload(file *multipart.FileHeader) (media.Payload, error) {
	blobFile, err := file.Open()
	if err != nil {
		return media.Payload{}, fmt.Errorf("open %s: %w", file.Filename, err)
	}
	defer blobFile.Close()

	data, err := io.ReadAll(blobFile)
	if err != nil {
		return media.Payload{}, fmt.Errorf("read %s: %w", file.Filename, err)
	}

	return media.Payload{
		Filename:    file.Filename,
		ContentType: file.Header.Get(fiber.HeaderContentType),
		Data:        data,
	}, nil
}
