package media

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Options configures an S3Host. Endpoint and the static key pair are only
// needed for S3-compatible services.
type S3Options struct {
	Bucket          string
	Region          string
	Prefix          string
	PublicBaseURL   string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Host stores images as objects in one bucket. Object keys carry no
// extension so the id recovered from the public URL is the key itself.
type S3Host struct {
	client  s3API
	bucket  string
	prefix  string
	baseURL string
}

func NewS3Host(ctx context.Context, opts S3Options) (*S3Host, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	if opts.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
	})
	return newS3Host(client, opts), nil
}

func newS3Host(client s3API, opts S3Options) *S3Host {
	baseURL := strings.TrimRight(opts.PublicBaseURL, "/")
	if baseURL == "" {
		baseURL = "https://" + opts.Bucket + ".s3." + opts.Region + ".amazonaws.com"
	}
	return &S3Host{
		client:  client,
		bucket:  opts.Bucket,
		prefix:  strings.Trim(opts.Prefix, "/"),
		baseURL: baseURL,
	}
}

func (h *S3Host) Name() string {
	return ProviderS3
}

func (h *S3Host) Upload(ctx context.Context, id string, upload Upload) (string, error) {
	key := h.key(id)
	input := &s3.PutObjectInput{
		Bucket:      aws.String(h.bucket),
		Key:         aws.String(key),
		Body:        upload.Body,
		ContentType: aws.String(upload.ContentType),
	}
	if upload.Size > 0 {
		input.ContentLength = aws.Int64(upload.Size)
	}
	if _, err := h.client.PutObject(ctx, input); err != nil {
		return "", err
	}
	return h.baseURL + "/" + key, nil
}

func (h *S3Host) Remove(ctx context.Context, id string) error {
	_, err := h.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(h.bucket),
		Key:    aws.String(h.key(id)),
	})
	return err
}

func (h *S3Host) key(id string) string {
	if h.prefix == "" {
		return id
	}
	return h.prefix + "/" + id
}
