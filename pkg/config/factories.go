package config

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/mitchellh/mapstructure"

	"github.com/Clay-Ferguson/quanta-sub001/internal/logger"
	"github.com/Clay-Ferguson/quanta-sub001/pkg/store/content"
	contentfs "github.com/Clay-Ferguson/quanta-sub001/pkg/store/content/fs"
	contentmemory "github.com/Clay-Ferguson/quanta-sub001/pkg/store/content/memory"
	contents3 "github.com/Clay-Ferguson/quanta-sub001/pkg/store/content/s3"
	"github.com/Clay-Ferguson/quanta-sub001/pkg/store/node"
	nodebadger "github.com/Clay-Ferguson/quanta-sub001/pkg/store/node/badger"
	nodememory "github.com/Clay-Ferguson/quanta-sub001/pkg/store/node/memory"
	nodesqlite "github.com/Clay-Ferguson/quanta-sub001/pkg/store/node/sqlite"
)

// CreateNodeStore instantiates the node store backend named by cfg.Type:
//
//   - "memory": in-memory store, nothing persists
//   - "badger": embedded BadgerDB store (options: db_path, block_cache_mb,
//     index_cache_mb)
//   - "sqlite": single-file SQLite store (options: path)
func CreateNodeStore(ctx context.Context, cfg StoreConfig) (node.NodeStore, error) {
	switch cfg.Type {
	case "memory":
		logger.Info("node store: memory")
		return nodememory.NewMemoryNodeStore(), nil

	case "badger":
		var storeCfg nodebadger.Config
		if err := mapstructure.Decode(cfg.Options, &storeCfg); err != nil {
			return nil, fmt.Errorf("failed to decode badger node store config: %w", err)
		}
		if storeCfg.DBPath == "" {
			return nil, fmt.Errorf("badger node store: db_path is required")
		}
		store, err := nodebadger.NewBadgerNodeStore(ctx, storeCfg)
		if err != nil {
			return nil, err
		}
		logger.Info("node store: badger at %s", storeCfg.DBPath)
		return store, nil

	case "sqlite":
		var storeCfg nodesqlite.Config
		if err := mapstructure.Decode(cfg.Options, &storeCfg); err != nil {
			return nil, fmt.Errorf("failed to decode sqlite node store config: %w", err)
		}
		if storeCfg.Path == "" {
			return nil, fmt.Errorf("sqlite node store: path is required")
		}
		store, err := nodesqlite.NewSQLiteNodeStore(ctx, storeCfg)
		if err != nil {
			return nil, err
		}
		logger.Info("node store: sqlite at %s", storeCfg.Path)
		return store, nil

	default:
		return nil, fmt.Errorf("unknown node store type: %q", cfg.Type)
	}
}

// CreateContentStore instantiates the content store backend named by
// cfg.Type:
//
//   - "memory": in-memory store
//   - "filesystem": blob-per-file store (options: root)
//   - "s3": S3 or S3-compatible bucket (options: bucket, region, key_prefix,
//     endpoint, access_key_id, secret_access_key)
func CreateContentStore(ctx context.Context, cfg StoreConfig) (content.ContentStore, error) {
	switch cfg.Type {
	case "memory":
		logger.Info("content store: memory")
		return contentmemory.NewMemoryContentStore(), nil

	case "filesystem":
		var storeCfg contentfs.Config
		if err := mapstructure.Decode(cfg.Options, &storeCfg); err != nil {
			return nil, fmt.Errorf("failed to decode filesystem content store config: %w", err)
		}
		store, err := contentfs.NewFilesystemContentStore(storeCfg)
		if err != nil {
			return nil, err
		}
		logger.Info("content store: filesystem at %s", storeCfg.Root)
		return store, nil

	case "s3":
		return createS3ContentStore(ctx, cfg.Options)

	default:
		return nil, fmt.Errorf("unknown content store type: %q", cfg.Type)
	}
}

// createS3ContentStore builds the AWS client and wraps it in the S3 content
// store.
func createS3ContentStore(ctx context.Context, options map[string]any) (content.ContentStore, error) {
	type s3Options struct {
		Bucket          string `mapstructure:"bucket"`
		Region          string `mapstructure:"region"`
		KeyPrefix       string `mapstructure:"key_prefix"`
		Endpoint        string `mapstructure:"endpoint"`
		AccessKeyID     string `mapstructure:"access_key_id"`
		SecretAccessKey string `mapstructure:"secret_access_key"`
	}

	var storeCfg s3Options
	if err := mapstructure.Decode(options, &storeCfg); err != nil {
		return nil, fmt.Errorf("failed to decode S3 content store config: %w", err)
	}
	if storeCfg.Bucket == "" {
		return nil, fmt.Errorf("S3 content store: bucket is required")
	}
	if storeCfg.Region == "" {
		return nil, fmt.Errorf("S3 content store: region is required")
	}

	configOptions := []func(*awsConfig.LoadOptions) error{
		awsConfig.WithRegion(storeCfg.Region),
		// Retries smooth over transient S3 faults mid-operation.
		awsConfig.WithRetryer(func() aws.Retryer {
			return retry.AddWithMaxAttempts(retry.NewStandard(), 3)
		}),
	}
	if storeCfg.AccessKeyID != "" && storeCfg.SecretAccessKey != "" {
		configOptions = append(configOptions, awsConfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(storeCfg.AccessKeyID, storeCfg.SecretAccessKey, "")))
	}

	awsCfg, err := awsConfig.LoadDefaultConfig(ctx, configOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if storeCfg.Endpoint != "" {
			// Custom endpoint for S3-compatible storage (MinIO, LocalStack).
			o.BaseEndpoint = aws.String(storeCfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	store, err := contents3.NewS3ContentStore(ctx, contents3.Config{
		Client:    client,
		Bucket:    storeCfg.Bucket,
		KeyPrefix: storeCfg.KeyPrefix,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 content store: %w", err)
	}

	logger.Info("content store: s3 bucket=%s region=%s prefix=%s",
		storeCfg.Bucket, storeCfg.Region, storeCfg.KeyPrefix)
	return store, nil
}
