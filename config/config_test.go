package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/snap")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("GSC_BUCKET_NAME", "snap-bucket")
}

func TestFromEnvDefaults(t *testing.T) {
	setBaseEnv(t)

	s, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "3000", s.Port)
	assert.Equal(t, StorageGCS, s.StorageBackend)
	assert.Equal(t, 24*time.Hour, s.TokenDuration)
	assert.Equal(t, 60*time.Second, s.GatewayTimeout)
	assert.Equal(t, 10, s.UploadMaxFiles)
	assert.Equal(t, int64(10*1024*1024), s.UploadMaxBytes)
	assert.Equal(t, int64(40_000_000), s.UploadMaxPixels)
	assert.Equal(t, "gemini-2.5-flash", s.GeminiModel)
	assert.Empty(t, s.CORSOrigins)
}

func TestFromEnvMissingRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("GSC_BUCKET_NAME", "")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "GSC_BUCKET_NAME")
}

func TestFromEnvS3Backend(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("STORAGE_BACKEND", "S3")
	t.Setenv("BUCKET_NAME", "r2-bucket")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,")

	s, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, StorageS3, s.StorageBackend)
	assert.Equal(t, "r2-bucket", s.S3.BucketName)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, s.CORSOrigins)
}

func TestFromEnvRejectsBadValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad duration", "TOKEN_DURATION", "soon"},
		{"negative duration", "GATEWAY_TIMEOUT", "-1s"},
		{"zero files", "UPLOAD_MAX_FILES", "0"},
		{"zero pixels", "UPLOAD_MAX_PIXELS", "0"},
		{"unknown backend", "STORAGE_BACKEND", "ftp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setBaseEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}
