package upload

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"marketplace-api/internal/config"
	"marketplace-api/internal/domain"
)

// S3Uploader sube imagenes a un bucket S3 (o compatible, p. ej. MinIO).
type S3Uploader struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

// NewS3Uploader construye el cliente con credenciales estaticas a
// partir de la configuración del servicio.
func NewS3Uploader(ctx context.Context, cfg *config.Config) (*S3Uploader, error) {
	if !cfg.S3Configured() {
		return nil, fmt.Errorf("s3 bucket and credentials are required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKey,
			cfg.S3SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	baseURL := strings.TrimRight(cfg.S3PublicURL, "/")
	if baseURL == "" {
		baseURL = strings.TrimRight(cfg.S3Endpoint, "/") + "/" + cfg.S3Bucket
	}

	return &S3Uploader{
		client:  client,
		bucket:  cfg.S3Bucket,
		baseURL: baseURL,
	}, nil
}

// storageKey reparte los objetos por fecha para que el bucket no
// acumule todo en un solo prefijo.
func storageKey() string {
	d := time.Now()
	return fmt.Sprintf("offers/%d/%d/%d/%v", d.Year(), d.Month(), d.Day(), uuid.New())
}

func (u *S3Uploader) Upload(ctx context.Context, data []byte, mimeType string) (domain.Image, error) {
	key := storageKey()

	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(mimeType),
	})
	if err != nil {
		return domain.Image{}, fmt.Errorf("upload image: %w", err)
	}

	url := u.baseURL + "/" + key
	return domain.Image{
		URL:       url,
		SecureURL: secureVariant(url),
	}, nil
}

func secureVariant(url string) string {
	if rest, ok := strings.CutPrefix(url, "http://"); ok {
		return "https://" + rest
	}
	return url
}
