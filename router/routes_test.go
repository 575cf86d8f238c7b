package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/krishkalaria12/snap-vault/apperr"
	"github.com/krishkalaria12/snap-vault/auth"
	handler "github.com/krishkalaria12/snap-vault/handlers"
	"github.com/krishkalaria12/snap-vault/images"
	"github.com/krishkalaria12/snap-vault/media"
	"github.com/krishkalaria12/snap-vault/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuth struct{}

func (stubAuth) Login(context.Context, string, string) (string, auth.Identity, error) {
	return "", auth.Identity{}, apperr.Authentication("Invalid email or password")
}

func (stubAuth) CookieDuration() time.Duration { return time.Hour }

func (stubAuth) Verify(tokenStr string) (auth.Identity, error) {
	if tokenStr == "good" {
		return auth.Identity{UserID: 1, Email: "ada@example.com"}, nil
	}
	return auth.Identity{}, apperr.Authentication("Invalid or expired token")
}

type stubUsers struct{}

func (stubUsers) Create(_ context.Context, email, _ string) (*models.User, error) {
	return &models.User{ID: 1, Email: email}, nil
}

type stubImages struct{}

func (stubImages) Upload(_ context.Context, _ uint, payloads []media.Payload) ([]models.Image, error) {
	return make([]models.Image, len(payloads)), nil
}

func (stubImages) Query(_ context.Context, _ uint, pg images.Pagination, _ images.ListParams) (*models.ImagePage, error) {
	return &models.ImagePage{Data: []models.Image{}, Meta: models.PageMeta{Page: pg.Page, Limit: pg.Limit}}, nil
}

func newTestApp(rateLimit int) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: handler.ErrorHandler(slog.New(slog.NewTextHandler(io.Discard, nil))),
	})
	SetupRoutes(app, Deps{
		Auth:            handler.NewAuthHandler(stubAuth{}),
		Users:           handler.NewUserHandler(stubUsers{}),
		Images:          handler.NewImageHandler(stubImages{}, handler.UploadLimits{MaxFiles: 5, MaxBytes: 1 << 20}),
		Verifier:        stubAuth{},
		CORSOrigins:     []string{"https://snaps.example.com"},
		UploadRateLimit: rateLimit,
	})
	return app
}

func get(t *testing.T, app *fiber.App, target, bearer string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestHealth(t *testing.T) {
	resp := get(t, newTestApp(0), "/api/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))
}

func TestUnknownRouteIsNotFound(t *testing.T) {
	app := newTestApp(0)
	for _, target := range []string{"/api/nope", "/elsewhere"} {
		resp := get(t, app, target, "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, target)

		var body struct {
			Status string `json:"status"`
			Kind   string `json:"kind"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "error", body.Status)
		assert.Equal(t, "not_found", body.Kind)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	app := newTestApp(0)
	for _, target := range []string{"/api/user/profile", "/api/images"} {
		assert.Equal(t, http.StatusUnauthorized, get(t, app, target, "").StatusCode, target)
		assert.Equal(t, http.StatusUnauthorized, get(t, app, target, "forged").StatusCode, target)
		assert.Equal(t, http.StatusOK, get(t, app, target, "good").StatusCode, target)
	}
}

func TestImagesPaginationValidated(t *testing.T) {
	resp := get(t, newTestApp(0), "/api/images?page=0", "good")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCORSAllowsLocalhostAndConfiguredOrigins(t *testing.T) {
	app := newTestApp(0)
	tests := map[string]bool{
		"http://localhost":          true,
		"http://localhost:5173":     true,
		"https://snaps.example.com": true,
		"https://evil.example.com":  false,
	}
	for origin, allowed := range tests {
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		req.Header.Set(fiber.HeaderOrigin, origin)
		resp, err := app.Test(req)
		require.NoError(t, err)

		got := resp.Header.Get(fiber.HeaderAccessControlAllowOrigin)
		if allowed {
			assert.Equal(t, origin, got, origin)
		} else {
			assert.Empty(t, got, origin)
		}
	}
}

func uploadRequest(t *testing.T) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("images", "a.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("png"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/images/upload", &body)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer good")
	return req
}

func TestUploadRateLimited(t *testing.T) {
	app := newTestApp(2)

	for i := 0; i < 2; i++ {
		resp, err := app.Test(uploadRequest(t))
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp, err := app.Test(uploadRequest(t))
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}
