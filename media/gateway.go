// Package media hosts uploaded images and derives their descriptive
// metadata: tags and a caption from a vision model, dominant colors from
// the pixels.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "golang.org/x/image/webp"
)

// ErrUnsupportedImage is returned for payloads that do not decode as an image.
var ErrUnsupportedImage = errors.New("payload is not a supported image")

type Payload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// UploadOptions are the processing options applied to every upload.
// MaxPixels caps width*height before the pixels are decoded; zero means
// no cap.
type UploadOptions struct {
	AutoTaggingThreshold float64
	Colors               bool
	Categorization       string
	Captioning           bool
	MaxPixels            int64
}

var DefaultUploadOptions = UploadOptions{
	AutoTaggingThreshold: 0.6,
	Colors:               true,
	Categorization:       "google_tagging",
	Captioning:           true,
	MaxPixels:            40_000_000,
}

type ColorShare struct {
	Name  string  `json:"name"`
	Share float64 `json:"share"`
}

type UploadResult struct {
	PublicID    string
	SecureURL   string
	Tags        []string
	Predominant []ColorShare
	Caption     *string
}

type Object struct {
	Key string
	URL string
}

type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader) (Object, error)
}

type Description struct {
	Tags    []string
	Caption string
}

type Tagger interface {
	Describe(ctx context.Context, data []byte, contentType string, opts UploadOptions) (*Description, error)
}

type Gateway struct {
	store   ObjectStore
	tagger  Tagger
	opts    UploadOptions
	timeout time.Duration
	prefix  string
}

// NewGateway returns a gateway that stores objects under prefix. A nil
// tagger disables tags and captions.
func NewGateway(store ObjectStore, tagger Tagger, opts UploadOptions, timeout time.Duration, prefix string) *Gateway {
	return &Gateway{
		store:   store,
		tagger:  tagger,
		opts:    opts,
		timeout: timeout,
		prefix:  prefix,
	}
}

// Upload analyzes the payload and then hosts it. Analysis runs first so a
// rejected payload never leaves an object behind.
func (g *Gateway) Upload(ctx context.Context, p Payload) (*UploadResult, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(p.Data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	if px := int64(cfg.Width) * int64(cfg.Height); g.opts.MaxPixels > 0 && px > g.opts.MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrUnsupportedImage, cfg.Width, cfg.Height, g.opts.MaxPixels)
	}

	img, format, err := image.Decode(bytes.NewReader(p.Data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	contentType := p.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(p.Data)
	}

	result := &UploadResult{Tags: []string{}}

	if g.opts.Colors {
		result.Predominant = Predominant(img, paletteSampleSize)
	}

	if g.tagger != nil {
		desc, err := g.tagger.Describe(ctx, p.Data, contentType, g.opts)
		if err != nil {
			return nil, fmt.Errorf("describe image: %w", err)
		}
		result.Tags = desc.Tags
		if g.opts.Captioning && strings.TrimSpace(desc.Caption) != "" {
			caption := strings.TrimSpace(desc.Caption)
			result.Caption = &caption
		}
	}

	key := g.objectKey(p.Filename, format)
	obj, err := g.store.Put(ctx, key, contentType, bytes.NewReader(p.Data))
	if err != nil {
		return nil, fmt.Errorf("store object: %w", err)
	}
	result.PublicID = obj.Key
	result.SecureURL = obj.URL

	slog.Debug("image uploaded", "public_id", obj.Key, "tags", len(result.Tags), "colors", len(result.Predominant))
	return result, nil
}

func (g *Gateway) objectKey(filename, format string) string {
	ext := strings.ToLower(path.Ext(filename))
	if ext == "" && format != "" {
		ext = "." + format
	}
	return g.prefix + uuid.NewString() + ext
}
