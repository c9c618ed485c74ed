package client

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	appConfig "loan-portal-api/internal/config"
)

// StorageClient is the object-storage gateway. The service never writes to
// the bucket directly; all byte transfer happens against signed URLs minted
// here, and URL expiry is enforced by the gateway itself.
type StorageClient interface {
	GenerateTaskFileKey(taskID uuid.UUID, fileName string) string
	GenerateClientFileKey(clientID uuid.UUID, folder, fileName string) string
	PresignUpload(ctx context.Context, key, contentType string) (string, error)
	PresignDownload(ctx context.Context, key string, ttl time.Duration) (string, error)
	DeleteFile(ctx context.Context, key string) error
}

// S3Client wraps the AWS S3 client and implements StorageClient
type S3Client struct {
	client        *s3.Client
	presignClient *s3.PresignClient
	bucket        string
	region        string
	endpoint      string
	uploadExpiry  time.Duration
}

// NewS3Client creates a new S3 client
func NewS3Client(cfg *appConfig.S3Config) (*S3Client, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("S3 bucket is required")
	}
	if cfg.Region == "" {
		return nil, fmt.Errorf("S3 region is required")
	}

	var awsCfg aws.Config
	var err error

	if cfg.Endpoint != "" {
		// Local MinIO endpoint requires explicit credentials and path style
		if cfg.AccessKey == "" || cfg.SecretKey == "" {
			return nil, fmt.Errorf("access key and secret key are required for custom endpoint")
		}

		awsCfg, err = config.LoadDefaultConfig(context.TODO(),
			config.WithRegion(cfg.Region),
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				cfg.AccessKey,
				cfg.SecretKey,
				"",
			)),
			config.WithEndpointResolverWithOptions(aws.EndpointResolverWithOptionsFunc(
				func(service, region string, options ...interface{}) (aws.Endpoint, error) {
					return aws.Endpoint{
						URL:               cfg.Endpoint,
						HostnameImmutable: true,
						SigningRegion:     cfg.Region,
					}, nil
				},
			)),
		)
	} else {
		// AWS SDK default credential chain (IAM role on EC2, ~/.aws locally)
		awsCfg, err = config.LoadDefaultConfig(context.TODO(),
			config.WithRegion(cfg.Region),
		)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.UsePathStyle = true
		}
	})

	return &S3Client{
		client:        s3Client,
		presignClient: s3.NewPresignClient(s3Client),
		bucket:        cfg.Bucket,
		region:        cfg.Region,
		endpoint:      cfg.Endpoint,
		uploadExpiry:  cfg.UploadExpiry,
	}, nil
}

// GenerateTaskFileKey builds a unique storage key scoped under a task.
// Format: tasks/{taskId}/{uuid}_{sanitizedFileName}
func (c *S3Client) GenerateTaskFileKey(taskID uuid.UUID, fileName string) string {
	return fmt.Sprintf("tasks/%s/%s_%s", taskID, uuid.New(), SanitizeFileName(fileName))
}

// GenerateClientFileKey builds a unique storage key scoped under a client
// document folder.
// Format: clients/{clientId}/{folder}/{uuid}_{sanitizedFileName}
func (c *S3Client) GenerateClientFileKey(clientID uuid.UUID, folder, fileName string) string {
	folder = SanitizeFileName(folder)
	if folder == "" {
		folder = "general"
	}
	return fmt.Sprintf("clients/%s/%s/%s_%s", clientID, folder, uuid.New(), SanitizeFileName(fileName))
}

// PresignUpload mints a signed PUT URL for the given key
func (c *S3Client) PresignUpload(ctx context.Context, key, contentType string) (string, error) {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}

	presignedReq, err := c.presignClient.PresignPutObject(ctx, input, func(opts *s3.PresignOptions) {
		opts.Expires = c.uploadExpiry
	})
	if err != nil {
		return "", fmt.Errorf("failed to presign upload: %w", err)
	}

	return presignedReq.URL, nil
}

// PresignDownload mints a signed GET URL for the given key, valid for ttl
func (c *S3Client) PresignDownload(ctx context.Context, key string, ttl time.Duration) (string, error) {
	input := &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	}

	presignedReq, err := c.presignClient.PresignGetObject(ctx, input, func(opts *s3.PresignOptions) {
		opts.Expires = ttl
	})
	if err != nil {
		return "", fmt.Errorf("failed to presign download: %w", err)
	}

	return presignedReq.URL, nil
}

// DeleteFile deletes a file from the bucket (cleanup job only)
func (c *S3Client) DeleteFile(ctx context.Context, key string) error {
	_, err := c.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from S3: %w", err)
	}
	return nil
}

// SanitizeFileName strips path components and characters that do not belong
// in a storage key
func SanitizeFileName(fileName string) string {
	fileName = path.Base(fileName)

	var b strings.Builder
	for _, r := range fileName {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	out := strings.Trim(b.String(), "._")
	if out == "" {
		return "file"
	}
	return out
}
