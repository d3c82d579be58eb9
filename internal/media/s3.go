package media

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/d60-Lab/socialnet/config"
)

// ObjectAPI is the subset of the S3 client used by the relay.
type ObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Relay 基于 S3 兼容存储（MinIO / AWS）的图片托管
type S3Relay struct {
	client   ObjectAPI
	bucket   string
	baseURL  string
	maxBytes int64
}

// NewS3Client builds a path-style client against cfg.Endpoint with static credentials.
func NewS3Client(ctx context.Context, cfg config.MediaConfig) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey, cfg.SecretKey, "",
		)))
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

func NewS3Relay(client ObjectAPI, cfg config.MediaConfig) *S3Relay {
	base := cfg.PublicBaseURL
	if base == "" {
		base = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	}
	return &S3Relay{
		client:   client,
		bucket:   cfg.Bucket,
		baseURL:  strings.TrimRight(base, "/"),
		maxBytes: cfg.MaxBytes,
	}
}

func (r *S3Relay) Upload(ctx context.Context, folder, payload string) (string, error) {
	img, err := DecodeImage(payload, r.maxBytes)
	if err != nil {
		return "", err
	}
	key := ObjectKey(folder, img.Extension)
	_, err = r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(img.Data),
		ContentType: aws.String(img.ContentType),
	})
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}
	return r.baseURL + "/" + key, nil
}

// Delete removes the object behind url. URLs outside this bucket are ignored.
func (r *S3Relay) Delete(ctx context.Context, url string) error {
	key, ok := strings.CutPrefix(url, r.baseURL+"/")
	if !ok || key == "" {
		return nil
	}
	_, err := r.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}
