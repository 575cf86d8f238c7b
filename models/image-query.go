package models

// ImageFilter is a normalized set of predicates over a user's images. Zero
// fields are inactive; active ones are AND-ed.
type ImageFilter struct {
	// Color is lower-cased and matched against ImageMetadata.Colors.
	Color string

	Search *SearchFilter

	Similar *SimilarFilter
}

// SearchFilter matches when any token is a tag, the exact lower-cased
// term is a tag, or the description contains Raw (case-insensitive).
type SearchFilter struct {
	Tokens []string
	Exact  string
	Raw    string
}

// SimilarFilter matches images sharing at least one color or tag with the
// source image and excludes the source itself.
type SimilarFilter struct {
	SourceID uint
	Colors   []string
	Tags     []string
}

type PageMeta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

type ImagePage struct {
	Data []Image  `json:"data"`
	Meta PageMeta `json:"meta"`
}
