package media

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/krishkalaria12/snap-vault/config"
)

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store hosts objects in an S3-compatible bucket (Cloudflare R2 when an
// account id is configured).
type S3Store struct {
	client     objectPutter
	bucketName string
	publicURL  string
	uploadPath string
}

func NewS3Store(ctx context.Context, cfg config.S3Settings, uploadPath string) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.AccessKeySecret, "")),
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.AccountID != "" {
			o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID))
		}
	})

	return &S3Store{
		client:     client,
		bucketName: cfg.BucketName,
		publicURL:  cfg.PublicURL,
		uploadPath: uploadPath,
	}, nil
}

func (s *S3Store) Put(ctx context.Context, key, contentType string, body io.Reader) (Object, error) {
	objectKey := s.uploadPath + key

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(objectKey),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return Object{}, fmt.Errorf("failed to put object %s: %w", objectKey, err)
	}

	return Object{Key: objectKey, URL: s.objectURL(objectKey)}, nil
}

func (s *S3Store) objectURL(key string) string {
	base := s.publicURL
	if base == "" {
		base = fmt.Sprintf("https://%s.s3.amazonaws.com", s.bucketName)
	}
	return cleanURL(strings.TrimRight(base, "/") + "/" + key)
}

func cleanURL(urlStr string) string {
	urlStr = strings.ReplaceAll(urlStr, " ", "%20")
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return urlStr
	}
	return parsedURL.String()
}
