// Package s3 stores source documents in an S3-compatible bucket.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/kirillkom/document-summarizer/internal/infrastructure/resilience"
)

type Config struct {
	// Endpoint selects a non-AWS service such as MinIO; path-style
	// addressing is used whenever it is set.
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
}

type Storage struct {
	client   *awss3.Client
	uploader *manager.Uploader
	cfg      Config
	executor *resilience.Executor
}

func New(ctx context.Context, cfg Config, executor *resilience.Executor) (*Storage, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, errors.New("s3 bucket name not set")
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	cfg.Endpoint = strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/")

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" || cfg.SecretKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
		// MinIO and older gateways reject streaming checksum trailers.
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
	})

	return &Storage{
		client:   client,
		uploader: manager.NewUploader(client),
		cfg:      cfg,
		executor: executor,
	}, nil
}

func (s *Storage) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	call := func(ctx context.Context) error {
		_, err := s.uploader.Upload(ctx, &awss3.PutObjectInput{
			Bucket:      aws.String(s.cfg.Bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(data),
			ContentType: aws.String(contentType),
		})
		if err != nil {
			return fmt.Errorf("s3 upload: %w", err)
		}
		return nil
	}

	var err error
	if s.executor != nil {
		err = s.executor.Execute(ctx, "s3.put", call, classifyS3Error)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", err
	}
	return s.ObjectURL(key), nil
}

func (s *Storage) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	resp, err := s.client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 get: %w", err)
	}
	return resp.Body, nil
}

// ObjectURL is the address the object is reachable at, assuming the bucket
// allows reads.
func (s *Storage) ObjectURL(key string) string {
	if s.cfg.Endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", s.cfg.Endpoint, s.cfg.Bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.Bucket, s.cfg.Region, key)
}

// classifyS3Error retries throttling, server-side failures and broken
// connections; auth and bucket errors fail at once.
func classifyS3Error(err error) resilience.ErrorClassification {
	var respErr *awshttp.ResponseError
	var netErr net.Error
	switch {
	case err == nil, errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return resilience.Ignored
	case errors.As(err, &respErr):
		code := respErr.HTTPStatusCode()
		if code == http.StatusTooManyRequests || code >= http.StatusInternalServerError {
			return resilience.Transient
		}
		return resilience.Permanent
	case errors.As(err, &netErr):
		return resilience.Transient
	default:
		return resilience.Permanent
	}
}
