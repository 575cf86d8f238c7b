package router

import (
	"regexp"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/krishkalaria12/snap-vault/apperr"
	handler "github.com/krishkalaria12/snap-vault/handlers"
	"github.com/krishkalaria12/snap-vault/middleware"
)

var localhostOrigin = regexp.MustCompile(`^http://localhost(:\d+)?$`)

type Deps struct {
	Auth     *handler.AuthHandler
	Users    *handler.UserHandler
	Images   *handler.ImageHandler
	Verifier middleware.TokenVerifier

	CORSOrigins     []string
	UploadRateLimit int
	// AccessLog enables the request logger; tests turn it off.
	AccessLog bool
}

func SetupRoutes(app *fiber.App, d Deps) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(corsConfig(d.CORSOrigins)))

	api := app.Group("/api")
	if d.AccessLog {
		api.Use(logger.New(logger.Config{
			Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
		}))
	}
	api.Get("/health", handler.Health)

	requireUser := middleware.AuthMiddleware(d.Verifier)

	// Auth
	auth := api.Group("/auth")
	auth.Post("/login", d.Auth.Login)
	auth.Post("/logout", d.Auth.Logout)

	// User
	user := api.Group("/user")
	user.Post("/register", d.Users.Register)
	user.Get("/profile", requireUser, d.Users.Profile)

	// Images
	images := api.Group("/images", requireUser)
	images.Get("/", middleware.Paginate(), d.Images.ListImages)
	images.Post("/upload", uploadLimiter(d.UploadRateLimit), d.Images.UploadImages)

	app.Use(func(c *fiber.Ctx) error {
		return apperr.NotFound("Route not found")
	})
}

func corsConfig(origins []string) cors.Config {
	allowed := map[string]bool{}
	for _, o := range origins {
		allowed[strings.TrimRight(o, "/")] = true
	}

	listed := "http://localhost"
	if len(origins) > 0 {
		listed = strings.Join(origins, ",")
	}

	return cors.Config{
		AllowOrigins: listed,
		AllowOriginsFunc: func(origin string) bool {
			return localhostOrigin.MatchString(origin) || allowed[origin]
		},
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}
}

func uploadLimiter(perMinute int) fiber.Handler {
	if perMinute <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return limiter.New(limiter.Config{
		Max:        perMinute,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return fiber.NewError(fiber.StatusTooManyRequests, "Too many uploads, try again later")
		},
	})
}
