package database

import (
	"strings"

	"github.com/krishkalaria12/snap-vault/models"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

const metadataJoin = "JOIN image_metadata ON image_metadata.image_id = images.id"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// OwnedBy restricts a query on images to one user.
func OwnedBy(userID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("images.user_id = ?", userID)
	}
}

// FilterImages turns an ImageFilter into join and where clauses on the
// image_metadata table. An empty filter leaves the query untouched.
func FilterImages(f models.ImageFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.Color == "" && f.Search == nil && f.Similar == nil {
			return db
		}
		db = db.Joins(metadataJoin)

		if f.Color != "" {
			db = db.Where("? = ANY(image_metadata.colors)", f.Color)
		}

		if s := f.Search; s != nil {
			db = db.Where(
				"(image_metadata.tags && ?::text[] OR ? = ANY(image_metadata.tags) OR image_metadata.description ILIKE ?)",
				textArray(s.Tokens), s.Exact, "%"+likeEscaper.Replace(s.Raw)+"%",
			)
		}

		if sim := f.Similar; sim != nil {
			db = db.Where(
				"(image_metadata.colors && ?::text[] OR image_metadata.tags && ?::text[])",
				textArray(sim.Colors), textArray(sim.Tags),
			).Where("images.id <> ?", sim.SourceID)
		}

		return db
	}
}

// NewestFirst orders images by creation time with the id as tie-breaker.
func NewestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("images.created_at DESC").Order("images.id DESC")
}

// textArray never yields NULL, which would make && unknown instead of false.
func textArray(values []string) pq.StringArray {
	if values == nil {
		return pq.StringArray{}
	}
	return pq.StringArray(values)
}
