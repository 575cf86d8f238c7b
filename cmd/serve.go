package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/krishkalaria12/snap-vault/auth"
	"github.com/krishkalaria12/snap-vault/config"
	"github.com/krishkalaria12/snap-vault/database"
	handler "github.com/krishkalaria12/snap-vault/handlers"
	"github.com/krishkalaria12/snap-vault/images"
	"github.com/krishkalaria12/snap-vault/logging"
	"github.com/krishkalaria12/snap-vault/media"
	"github.com/krishkalaria12/snap-vault/router"
	"github.com/krishkalaria12/snap-vault/users"
	"github.com/spf13/cobra"
)

const uploadPath = "images/"

func newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Example: `  # Start server on the port from PORT (default 3000)
  snap-vault serve

  # Start server on a custom port
  snap-vault serve --port 8080`,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.FromEnv()
			if err != nil {
				return err
			}
			if port != "" {
				settings.Port = port
			}
			return serve(cmd.Context(), settings)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (overrides PORT)")

	return cmd
}

func serve(ctx context.Context, settings *config.Settings) error {
	log := logging.New(settings.LogLevel)

	db, err := database.Connect(settings.DatabaseURL, logging.GormLevel(settings.DBLogLevel))
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Error("Error closing the database connection", "err", err)
		}
	}()

	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	store, closeStore, err := newObjectStore(ctx, settings)
	if err != nil {
		return err
	}
	defer closeStore()

	var tagger media.Tagger
	if settings.GeminiAPIKey != "" {
		gt, err := media.NewGeminiTagger(ctx, settings.GeminiAPIKey, settings.GeminiModel)
		if err != nil {
			return err
		}
		tagger = gt
	} else {
		log.Warn("GEMINI_API_KEY not set, images will be stored without tags or captions")
	}

	opts := media.DefaultUploadOptions
	opts.MaxPixels = settings.UploadMaxPixels
	gateway := media.NewGateway(store, tagger, opts, settings.GatewayTimeout, "")

	userSvc := users.NewService(database.NewUserStore(db))
	guard := auth.NewGuard(userSvc, auth.Options{
		Secret:         settings.JWTSecret,
		TokenDuration:  settings.TokenDuration,
		CookieDuration: settings.CookieDuration,
		URL:            settings.AppURL,
		AvatarDir:      settings.AvatarDir,
	})
	imageSvc := images.NewService(gateway, database.NewImageStore(db), log)

	app := fiber.New(fiber.Config{
		AppName:      "snap-vault",
		ErrorHandler: handler.ErrorHandler(log),
		BodyLimit:    bodyLimit(settings),
	})

	limits := handler.UploadLimits{
		MaxFiles: settings.UploadMaxFiles,
		MaxBytes: settings.UploadMaxBytes,
	}
	router.SetupRoutes(app, router.Deps{
		Auth:            handler.NewAuthHandler(guard),
		Users:           handler.NewUserHandler(userSvc),
		Images:          handler.NewImageHandler(imageSvc, limits),
		Verifier:        guard,
		CORSOrigins:     settings.CORSOrigins,
		UploadRateLimit: settings.UploadRateLimit,
		AccessLog:       true,
	})

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Server is listening", "port", settings.Port)
		if err := app.Listen(":" + settings.Port); err != nil {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error("Server shutdown failed", "err", err)
			return err
		}
		log.Info("Server stopped")
		return nil
	case err := <-serverErr:
		return err
	}
}

func newObjectStore(ctx context.Context, settings *config.Settings) (media.ObjectStore, func(), error) {
	switch settings.StorageBackend {
	case config.StorageS3:
		store, err := media.NewS3Store(ctx, settings.S3, uploadPath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	default:
		store, err := media.NewGCSStore(ctx, settings.GCS.ProjectID, settings.GCS.BucketName, settings.GCS.CredentialsFile, uploadPath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {
			if err := store.Close(); err != nil {
				slog.Error("Error closing the storage client", "err", err)
			}
		}, nil
	}
}

// bodyLimit leaves room for a full batch of maximum-size files plus the
// multipart framing.
func bodyLimit(settings *config.Settings) int {
	return int(int64(settings.UploadMaxFiles)*settings.UploadMaxBytes) + 1<<20
}
