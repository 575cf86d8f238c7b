package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/krishkalaria12/snap-vault/models"
	"gorm.io/gorm"
)

type ImageStore struct {
	db *gorm.DB
}

func NewImageStore(db *gorm.DB) *ImageStore {
	return &ImageStore{db: db}
}

// CreateBatch inserts all images and their metadata in one transaction.
// On success the returned slice carries generated ids and timestamps.
func (s *ImageStore) CreateBatch(ctx context.Context, images []models.Image) ([]models.Image, error) {
	if len(images) == 0 {
		return images, nil
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&images).Error
	})
	if err != nil {
		return nil, err
	}
	return images, nil
}

// FindMetadata returns the metadata of an image owned by userID, or nil
// when the image does not exist, belongs to someone else or has none.
func (s *ImageStore) FindMetadata(ctx context.Context, userID, imageID uint) (*models.ImageMetadata, error) {
	var meta models.ImageMetadata
	err := s.db.WithContext(ctx).
		Joins("JOIN images ON images.id = image_metadata.image_id").
		Where("images.id = ? AND images.user_id = ?", imageID, userID).
		First(&meta).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &meta, nil
}

// Page counts and fetches one page of a user's images inside a single
// read-only transaction so the total and the items come from one snapshot.
func (s *ImageStore) Page(ctx context.Context, userID uint, filter models.ImageFilter, offset, limit int) ([]models.Image, int64, error) {
	if offset < 0 || limit < 1 {
		return nil, 0, fmt.Errorf("invalid page window: offset %d, limit %d", offset, limit)
	}

	images := []models.Image{}
	var total int64

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Image{}).
			Scopes(OwnedBy(userID), FilterImages(filter)).
			Count(&total).Error; err != nil {
			return err
		}
		if total == 0 || int64(offset) >= total {
			return nil
		}
		return tx.Select("images.*").
			Scopes(OwnedBy(userID), FilterImages(filter), NewestFirst).
			Preload("Metadata").
			Offset(offset).
			Limit(limit).
			Find(&images).Error
	}, &sql.TxOptions{ReadOnly: true, Isolation: sql.LevelRepeatableRead})
	if err != nil {
		return nil, 0, err
	}
	return images, total, nil
}
