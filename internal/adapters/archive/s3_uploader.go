package archive

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type S3Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	Region          string
}

// S3Uploader puts archive objects into an S3-compatible bucket.
type S3Uploader struct {
	client *s3.Client
	bucket string
}

// NewS3Uploader returns nil when the endpoint or credentials are missing, so
// callers can treat the upload as optional.
func NewS3Uploader(cfg S3Config) *S3Uploader {
	if cfg.Endpoint == "" || cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		return nil
	}

	bucket := cfg.Bucket
	if bucket == "" {
		bucket = "vtts-analysis"
	}
	region := cfg.Region
	if region == "" {
		region = "auto"
	}

	endpoint := cfg.Endpoint
	client := s3.New(s3.Options{
		BaseEndpoint: &endpoint,
		Region:       region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		UsePathStyle: true,
	})

	return &S3Uploader{client: client, bucket: bucket}
}

func (u *S3Uploader) Bucket() string { return u.bucket }

func (u *S3Uploader) Put(ctx context.Context, key string, body []byte, meta map[string]string) error {
	contentType := "application/vnd.apache.parquet"
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &u.bucket,
		Key:         &key,
		Body:        bytes.NewReader(body),
		ContentType: &contentType,
		Metadata:    meta,
	})
	if err != nil {
		return fmt.Errorf("upload %s/%s: %w", u.bucket, key, err)
	}
	return nil
}
