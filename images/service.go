// Package images ingests uploaded images and answers filtered, paginated
// queries over a user's library.
package images

import (
	"context"
	"log/slog"

	"github.com/krishkalaria12/snap-vault/media"
	"github.com/krishkalaria12/snap-vault/models"
)

// Gateway hosts one payload and returns what it derived from it.
type Gateway interface {
	Upload(ctx context.Context, p media.Payload) (*media.UploadResult, error)
}

// Repository is the persistence needed by Service.
type Repository interface {
	CreateBatch(ctx context.Context, images []models.Image) ([]models.Image, error)
	FindMetadata(ctx context.Context, userID, imageID uint) (*models.ImageMetadata, error)
	Page(ctx context.Context, userID uint, filter models.ImageFilter, offset, limit int) ([]models.Image, int64, error)
}

type Service struct {
	gateway Gateway
	repo    Repository
	log     *slog.Logger
}

func NewService(gateway Gateway, repo Repository, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{gateway: gateway, repo: repo, log: log}
}
