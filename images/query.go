package images

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/krishkalaria12/snap-vault/apperr"
	"github.com/krishkalaria12/snap-vault/models"
)

const (
	DefaultPage  = 1
	DefaultLimit = 12
	MaxLimit     = 500
)

// ListParams carries the list endpoint's filter parameters as received.
type ListParams struct {
	Color     string
	Search    string
	SimilarTo string
}

// Pagination is a validated page window.
type Pagination struct {
	Page  int
	Limit int
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// ParsePagination applies defaults to missing values and rejects anything
// outside page >= 1 and 1 <= limit <= MaxLimit, as well as pages whose
// offset does not fit in an int.
func ParsePagination(rawPage, rawLimit string) (Pagination, error) {
	p := Pagination{Page: DefaultPage, Limit: DefaultLimit}

	if s := strings.TrimSpace(rawPage); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return Pagination{}, apperr.Validation("page must be an integer >= 1")
		}
		p.Page = n
	}

	if s := strings.TrimSpace(rawLimit); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > MaxLimit {
			return Pagination{}, apperr.Validation("limit must be an integer between 1 and %d", MaxLimit)
		}
		p.Limit = n
	}

	if p.Page-1 > math.MaxInt/p.Limit {
		return Pagination{}, apperr.Validation("page is out of range")
	}

	return p, nil
}

// Query returns one page of the user's images, newest first, together with
// the total count of matches.
func (s *Service) Query(ctx context.Context, userID uint, pg Pagination, params ListParams) (*models.ImagePage, error) {
	filter, err := s.compileFilter(ctx, userID, params)
	if err != nil {
		return nil, err
	}

	items, total, err := s.repo.Page(ctx, userID, filter, pg.Offset(), pg.Limit)
	if err != nil {
		return nil, apperr.Internal("Failed to fetch images", err)
	}
	if items == nil {
		items = []models.Image{}
	}

	return &models.ImagePage{
		Data: items,
		Meta: models.PageMeta{
			Total:      total,
			Page:       pg.Page,
			Limit:      pg.Limit,
			TotalPages: TotalPages(total, pg.Limit),
		},
	}, nil
}

// TotalPages is ceil(total / limit).
func TotalPages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	l := int64(limit)
	return int((total + l - 1) / l)
}

func (s *Service) compileFilter(ctx context.Context, userID uint, params ListParams) (models.ImageFilter, error) {
	var f models.ImageFilter

	if color := strings.TrimSpace(params.Color); color != "" {
		f.Color = strings.ToLower(color)
	}

	if raw := strings.TrimSpace(params.Search); raw != "" {
		exact := strings.ToLower(raw)
		f.Search = &models.SearchFilter{
			Tokens: strings.Fields(exact),
			Exact:  exact,
			Raw:    raw,
		}
	}

	if ref := strings.TrimSpace(params.SimilarTo); ref != "" {
		similar, err := s.resolveSimilar(ctx, userID, ref)
		if err != nil {
			return models.ImageFilter{}, err
		}
		f.Similar = similar
	}

	return f, nil
}

// resolveSimilar loads the reference image's metadata. Unknown or
// malformed references yield no filter.
func (s *Service) resolveSimilar(ctx context.Context, userID uint, ref string) (*models.SimilarFilter, error) {
	id, err := strconv.ParseUint(ref, 10, 0)
	if err != nil || id == 0 {
		s.log.Debug("ignoring similarTo reference", "ref", ref)
		return nil, nil
	}

	meta, err := s.repo.FindMetadata(ctx, userID, uint(id))
	if err != nil {
		return nil, apperr.Internal("Failed to resolve similar image", err)
	}
	if meta == nil {
		s.log.Debug("similarTo image not found", "image_id", id)
		return nil, nil
	}

	return &models.SimilarFilter{
		SourceID: uint(id),
		Colors:   lowerAll(meta.Colors),
		Tags:     lowerAll(meta.Tags),
	}, nil
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, strings.ToLower(s))
	}
	return out
}
