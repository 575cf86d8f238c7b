package media

import (
	"context"
	"fmt"
	"io"
	"os"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSStore hosts objects in a Google Cloud Storage bucket.
type GCSStore struct {
	cl         *storage.Client
	bucketName string
	uploadPath string
}

// NewGCSStore uses credentialsFile when it exists and falls back to
// application default credentials otherwise. A non-empty projectID is
// billed as the quota project.
func NewGCSStore(ctx context.Context, projectID, bucketName, credentialsFile, uploadPath string) (*GCSStore, error) {
	client, err := storage.NewClient(ctx, gcsClientOptions(projectID, credentialsFile)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &GCSStore{
		cl:         client,
		bucketName: bucketName,
		uploadPath: uploadPath,
	}, nil
}

func gcsClientOptions(projectID, credentialsFile string) []option.ClientOption {
	var opts []option.ClientOption
	if credentialsFile != "" {
		if _, err := os.Stat(credentialsFile); err == nil {
			opts = append(opts, option.WithCredentialsFile(credentialsFile))
		}
	}
	if projectID != "" {
		opts = append(opts, option.WithQuotaProject(projectID))
	}
	return opts
}

func (c *GCSStore) Put(ctx context.Context, key, contentType string, body io.Reader) (Object, error) {
	objectPath := c.uploadPath + key

	wc := c.cl.Bucket(c.bucketName).Object(objectPath).NewWriter(ctx)
	wc.ContentType = contentType
	if _, err := io.Copy(wc, body); err != nil {
		_ = wc.Close()
		return Object{}, fmt.Errorf("io.Copy: %w", err)
	}
	if err := wc.Close(); err != nil {
		return Object{}, fmt.Errorf("Writer.Close: %w", err)
	}

	return Object{
		Key: objectPath,
		URL: fmt.Sprintf("https://storage.googleapis.com/%s/%s", c.bucketName, objectPath),
	}, nil
}

func (c *GCSStore) Close() error {
	return c.cl.Close()
}
