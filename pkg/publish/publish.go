// Package publish uploads rendered weave documents to S3-compatible object
// storage.
//
// Example usage:
//
//	client, err := publish.NewS3Client(publish.ClientConfig{Region: "us-east-1"})
//	p := publish.New(client, "my-bucket", "pages/")
//	url, err := p.Publish(ctx, "index.html", doc)
package publish

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vango-dev/weave/pkg/dom"
)

// ContentType is the content type of published documents.
const ContentType = "text/html; charset=utf-8"

// ErrNoBucket is returned by Publish when the publisher has no bucket.
var ErrNoBucket = errors.New("weave: no publish bucket configured")

// PutObjectAPI is the subset of *s3.Client used by Publisher.
type PutObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Publisher renders nodes and stores them as objects.
type Publisher struct {
	client PutObjectAPI
	bucket string
	prefix string
	logger *slog.Logger
	now    func() time.Time
}

// New creates a publisher writing to bucket under prefix.
func New(client PutObjectAPI, bucket, prefix string) *Publisher {
	return &Publisher{
		client: client,
		bucket: bucket,
		prefix: prefix,
		logger: slog.Default().With("component", "publish"),
		now:    time.Now,
	}
}

// WithLogger sets the publisher logger.
func (p *Publisher) WithLogger(l *slog.Logger) *Publisher {
	if l != nil {
		p.logger = l.With("component", "publish")
	}
	return p
}

// Publish renders n and uploads it under prefix+key. An <html> root gets a
// doctype. It returns the full object key.
func (p *Publisher) Publish(ctx context.Context, key string, n *dom.Node) (string, error) {
	html, err := dom.Render(n)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", key, err)
	}
	if dom.IsElement(n) && n.Data == "html" {
		html = "<!DOCTYPE html>" + html
	}
	return p.PublishHTML(ctx, key, html)
}

// PublishHTML uploads an already rendered document.
func (p *Publisher) PublishHTML(ctx context.Context, key, html string) (string, error) {
	if p.bucket == "" {
		return "", ErrNoBucket
	}
	fullKey := p.prefix + key

	_, err := p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(fullKey),
		Body:        bytes.NewReader([]byte(html)),
		ContentType: aws.String(ContentType),
		Metadata: map[string]string{
			"published-at": p.now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return "", fmt.Errorf("s3 upload failed: %w", err)
	}

	p.logger.Info("document published", "bucket", p.bucket, "key", fullKey, "bytes", len(html))
	return fullKey, nil
}

// ClientConfig configures NewS3Client.
type ClientConfig struct {
	Region string

	// Endpoint overrides the service endpoint, e.g. for MinIO. Path-style
	// addressing is used when it is set.
	Endpoint string
}

// NewS3Client builds an S3 client. Credentials are read from
// AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY and AWS_SESSION_TOKEN when the
// client first signs a request.
func NewS3Client(cfg ClientConfig) (*s3.Client, error) {
	if cfg.Region == "" {
		cfg.Region = os.Getenv("AWS_REGION")
	}
	if cfg.Region == "" {
		return nil, errors.New("weave: publish region is not set")
	}

	opts := s3.Options{
		Region:      cfg.Region,
		Credentials: aws.CredentialsProviderFunc(envCredentials),
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
		opts.UsePathStyle = true
	}
	return s3.New(opts), nil
}

func envCredentials(context.Context) (aws.Credentials, error) {
	id, secret := os.Getenv("AWS_ACCESS_KEY_ID"), os.Getenv("AWS_SECRET_ACCESS_KEY")
	if id == "" || secret == "" {
		return aws.Credentials{}, errors.New("weave: AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set")
	}
	return aws.Credentials{
		AccessKeyID:     id,
		SecretAccessKey: secret,
		SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
		Source:          "Environment",
	}, nil
}
