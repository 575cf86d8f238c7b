package images

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/krishkalaria12/snap-vault/apperr"
	"github.com/krishkalaria12/snap-vault/media"
	"github.com/krishkalaria12/snap-vault/models"
	"github.com/lib/pq"
	"golang.org/x/sync/errgroup"
)

// Upload sends every payload to the gateway concurrently and, once all of
// them succeeded, stores one image with its metadata per payload in a single
// transaction. Any gateway failure fails the batch and nothing is stored;
// objects already hosted for the batch are left in place.
func (s *Service) Upload(ctx context.Context, userID uint, payloads []media.Payload) ([]models.Image, error) {
	if len(payloads) == 0 {
		return nil, apperr.Validation("at least one image is required")
	}

	results := make([]*media.UploadResult, len(payloads))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range payloads {
		g.Go(func() error {
			res, err := s.gateway.Upload(gctx, p)
			if err != nil {
				return fmt.Errorf("upload %q: %w", p.Filename, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.logOrphans(userID, results)
		if errors.Is(err, media.ErrUnsupportedImage) {
			return nil, apperr.New(apperr.KindValidation, "Unsupported image payload", err)
		}
		return nil, apperr.Upstream("Failed to upload images", err)
	}

	batch := make([]models.Image, len(results))
	for i, res := range results {
		batch[i] = models.Image{
			UserID:    userID,
			PublicID:  res.PublicID,
			SecureURL: res.SecureURL,
			Metadata:  DeriveMetadata(res),
		}
	}

	created, err := s.repo.CreateBatch(ctx, batch)
	if err != nil {
		s.logOrphans(userID, results)
		return nil, apperr.Internal("Failed to save images", err)
	}

	s.log.Info("images uploaded", "user_id", userID, "count", len(created))
	return created, nil
}

// DeriveMetadata bounds and normalizes what the gateway returned: at most
// MaxTags tags, at most MaxColors lower-cased colors, and the caption when
// there is one.
func DeriveMetadata(res *media.UploadResult) *models.ImageMetadata {
	tags := pq.StringArray{}
	for _, tag := range res.Tags {
		if len(tags) == models.MaxTags {
			break
		}
		tags = append(tags, strings.ToLower(tag))
	}

	colors := pq.StringArray{}
	for _, c := range res.Predominant {
		if len(colors) == models.MaxColors {
			break
		}
		colors = append(colors, strings.ToLower(c.Name))
	}

	return &models.ImageMetadata{
		Tags:               tags,
		Colors:             colors,
		Description:        res.Caption,
		AIProcessingStatus: models.StatusCompleted,
	}
}

func (s *Service) logOrphans(userID uint, results []*media.UploadResult) {
	var ids []string
	for _, res := range results {
		if res != nil {
			ids = append(ids, res.PublicID)
		}
	}
	if len(ids) > 0 {
		s.log.Warn("hosted objects left without image records", "user_id", userID, "public_ids", ids)
	}
}
