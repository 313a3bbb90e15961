// Package storage provides the 10-storage hook, an S3-compatible object
// storage client. It runs after the 05 group so a failing database or cache
// stops startup before any bucket is touched.
package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"yqhp/hookserver/common/config"
	"yqhp/hookserver/internal/hook"
)

const (
	Name        = "10-storage"
	ResourceKey = "storage"
)

// Hook owns the S3 client.
type Hook struct {
	cfg config.StorageConfig

	mu     sync.RWMutex
	client *s3.Client
}

func New(cfg config.StorageConfig) *Hook {
	return &Hook{cfg: cfg}
}

// Factory builds the hook from the shared configuration.
func Factory(cfg *config.Config) (any, error) {
	if cfg.Storage.Enabled && cfg.Storage.Bucket == "" {
		return nil, fmt.Errorf("storage.bucket is required")
	}
	return New(cfg.Storage), nil
}

func (h *Hook) Enabled() bool { return h.cfg.Enabled }

// Init builds the client and, when check_bucket is set, verifies the bucket.
func (h *Hook) Init(ctx context.Context, o *hook.Orchestrator) error {
	client, err := NewClient(ctx, h.cfg)
	if err != nil {
		return err
	}

	if h.cfg.CheckBucket {
		if _, err := client.HeadBucket(ctx, &s3.HeadBucketInput{
			Bucket: aws.String(h.cfg.Bucket),
		}); err != nil {
			return fmt.Errorf("check bucket %s: %w", h.cfg.Bucket, err)
		}
	}

	h.mu.Lock()
	h.client = client
	h.mu.Unlock()

	o.Provide(ResourceKey, client)
	o.Logger().Info("object storage ready", zap.String("bucket", h.cfg.Bucket),
		zap.String("endpoint", h.cfg.Endpoint), zap.Bool("checked", h.cfg.CheckBucket))
	return nil
}

// Destroy drops the client. The SDK keeps no connections that need closing.
func (h *Hook) Destroy(ctx context.Context, o *hook.Orchestrator) error {
	o.Withdraw(ResourceKey)
	h.mu.Lock()
	h.client = nil
	h.mu.Unlock()
	return nil
}

func (h *Hook) Reinitialize(ctx context.Context, o *hook.Orchestrator) error {
	return h.Init(ctx, o)
}

func (h *Hook) Info(ctx context.Context, o *hook.Orchestrator) (map[string]any, error) {
	return map[string]any{
		"storage": map[string]any{
			"bucket":    h.cfg.Bucket,
			"endpoint":  h.cfg.Endpoint,
			"region":    h.cfg.Region,
			"connected": h.Client() != nil,
		},
	}, nil
}

// Client returns the current client, or nil.
func (h *Hook) Client() *s3.Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.client
}

// NewClient creates an S3 client from cfg. Static credentials are used when an
// access key is configured, otherwise the default AWS credential chain.
func NewClient(ctx context.Context, cfg config.StorageConfig) (*s3.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}
	if cfg.ForcePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	return s3.NewFromConfig(awsCfg, s3Opts...), nil
}
