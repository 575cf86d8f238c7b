package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageGCS = "gcs"
	StorageS3  = "s3"
)

type Settings struct {
	Port           string
	AppURL         string
	DatabaseURL    string
	DBLogLevel     string
	LogLevel       string
	JWTSecret      string
	TokenDuration  time.Duration
	CookieDuration time.Duration
	AvatarDir      string
	CORSOrigins    []string

	StorageBackend string
	GCS            GCSSettings
	S3             S3Settings

	GeminiAPIKey   string
	GeminiModel    string
	GatewayTimeout time.Duration

	UploadMaxFiles  int
	UploadMaxBytes  int64
	UploadMaxPixels int64
	UploadRateLimit int
}

type GCSSettings struct {
	ProjectID       string
	BucketName      string
	CredentialsFile string
}

// S3Settings targets any S3-compatible endpoint; with AccountID set the
// endpoint is the Cloudflare R2 one.
type S3Settings struct {
	AccountID       string
	AccessKeyID     string
	AccessKeySecret string
	BucketName      string
	PublicURL       string
	Region          string
}

// LoadEnvFile reads a .env file into the environment when one exists.
func LoadEnvFile() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Error loading .env file: %v\n", err)
	}
}

// FromEnv builds Settings from the environment. Missing required keys are
// reported together.
func FromEnv() (*Settings, error) {
	var missing []string
	required := func(key string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}

	s := &Settings{
		Port:           Get("PORT", "3000"),
		AppURL:         Get("APP_URL", "http://localhost:3000"),
		DatabaseURL:    required("DATABASE_URL"),
		DBLogLevel:     strings.ToLower(Get("DB_LOG_LEVEL", "warn")),
		LogLevel:       strings.ToLower(Get("LOG_LEVEL", "info")),
		JWTSecret:      required("JWT_SECRET"),
		AvatarDir:      Get("AVATAR_DIR", "/tmp/avatars"),
		CORSOrigins:    splitList(Get("CORS_ORIGINS", "")),
		StorageBackend: strings.ToLower(Get("STORAGE_BACKEND", StorageGCS)),
		GCS: GCSSettings{
			ProjectID:       Get("GSC_PROJECT_ID", ""),
			BucketName:      Get("GSC_BUCKET_NAME", ""),
			CredentialsFile: Get("GOOGLE_APPLICATION_CREDENTIALS", "./credentials.json"),
		},
		S3: S3Settings{
			AccountID:       Get("ACCOUNT_ID", ""),
			AccessKeyID:     Get("ACCESS_KEY_ID", ""),
			AccessKeySecret: Get("ACCESS_KEY_SECRET", ""),
			BucketName:      Get("BUCKET_NAME", ""),
			PublicURL:       Get("PUBLIC_URL", ""),
			Region:          Get("S3_REGION", "auto"),
		},
		GeminiAPIKey: Get("GEMINI_API_KEY", ""),
		GeminiModel:  Get("GEMINI_MODEL", "gemini-2.5-flash"),
	}

	var err error
	if s.TokenDuration, err = duration("TOKEN_DURATION", 24*time.Hour); err != nil {
		return nil, err
	}
	if s.CookieDuration, err = duration("COOKIE_DURATION", 7*24*time.Hour); err != nil {
		return nil, err
	}
	if s.GatewayTimeout, err = duration("GATEWAY_TIMEOUT", 60*time.Second); err != nil {
		return nil, err
	}
	if s.UploadMaxFiles, err = positiveInt("UPLOAD_MAX_FILES", 10); err != nil {
		return nil, err
	}
	maxBytes, err := positiveInt("UPLOAD_MAX_BYTES", 10*1024*1024)
	if err != nil {
		return nil, err
	}
	s.UploadMaxBytes = int64(maxBytes)
	maxPixels, err := positiveInt("UPLOAD_MAX_PIXELS", 40_000_000)
	if err != nil {
		return nil, err
	}
	s.UploadMaxPixels = int64(maxPixels)
	if s.UploadRateLimit, err = positiveInt("UPLOAD_RATE_LIMIT", 20); err != nil {
		return nil, err
	}

	switch s.StorageBackend {
	case StorageGCS:
		if s.GCS.BucketName == "" {
			missing = append(missing, "GSC_BUCKET_NAME")
		}
	case StorageS3:
		if s.S3.BucketName == "" {
			missing = append(missing, "BUCKET_NAME")
		}
	default:
		return nil, fmt.Errorf("STORAGE_BACKEND must be %q or %q, got %q", StorageGCS, StorageS3, s.StorageBackend)
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return s, nil
}

// Get returns the trimmed value of envVar or def when unset.
func Get(envVar, def string) string {
	if v := strings.TrimSpace(os.Getenv(envVar)); v != "" {
		return v
	}
	return def
}

func duration(envVar string, def time.Duration) (time.Duration, error) {
	raw := Get(envVar, "")
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive duration", envVar, raw)
	}
	return d, nil
}

func positiveInt(envVar string, def int) (int, error) {
	raw := Get(envVar, "")
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive integer", envVar, raw)
	}
	return n, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
