package config

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config holds S3 client and bucket info
type S3Config struct {
	Client     *s3.Client
	BucketName string
	Endpoint   string
	Region     string
}

// NewS3Config initializes the S3 client. Static credentials are taken from
// AWS_ACCESS_KEY_ID / AWS_SECRET_ACCESS_KEY through the default chain; a custom
// endpoint switches the client to path-style addressing for MinIO-like stores.
func NewS3Config(ctx context.Context, cfg *Config) (*S3Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.S3Region),
	}
	if key, secret := readSecret("aws_access_key_id"), readSecret("aws_secret_access_key"); key != "" && secret != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(key, secret, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		}
		o.UsePathStyle = cfg.S3UsePathStyle || cfg.S3Endpoint != ""
	})

	return &S3Config{
		Client:     client,
		BucketName: cfg.S3Bucket,
		Endpoint:   cfg.S3Endpoint,
		Region:     cfg.S3Region,
	}, nil
}
