// Package lambdaboot provides the cold-start wiring shared by the story
// Lambdas: AWS config, S3, the selection store, EventBridge, the minimum
// photo count from SSM, and startup logging. Each Lambda's init() is a short
// composition of these helpers.
package lambdaboot

import (
	"context"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog/log"

	"github.com/fpang/photobook-stories/internal/logging"
	"github.com/fpang/photobook-stories/internal/notify"
	"github.com/fpang/photobook-stories/internal/product"
	"github.com/fpang/photobook-stories/internal/store"
)

// Environment variables read at cold start.
const (
	EnvSnapshotBucket = "SNAPSHOT_BUCKET_NAME"
	EnvSelectionTable = "SELECTION_TABLE_NAME"
	EnvEventBus       = "EVENT_BUS_NAME"
	EnvMinimumParam   = "SSM_MIN_ASSETS_PARAM"
)

// AWSClients holds the core AWS SDK clients used across Lambdas.
type AWSClients struct {
	Config aws.Config
	SSM    *ssm.Client
}

// S3Clients holds the S3 client and bucket name.
type S3Clients struct {
	Client *s3.Client
	Bucket string
}

// InitAWS loads the default AWS config and returns it along with common clients.
func InitAWS() AWSClients {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load AWS config")
	}
	log.Debug().Str("region", cfg.Region).Msg("AWS config loaded")
	return AWSClients{
		Config: cfg,
		SSM:    ssm.NewFromConfig(cfg),
	}
}

// InitS3 creates an S3 client and reads the bucket name from the given
// environment variable. Fatals if the env var is empty.
func InitS3(cfg aws.Config, bucketEnvVar string) S3Clients {
	bucket := os.Getenv(bucketEnvVar)
	if bucket == "" {
		log.Fatal().Str("envVar", bucketEnvVar).Msg("Bucket environment variable is required")
	}
	return S3Clients{
		Client: s3.NewFromConfig(cfg),
		Bucket: bucket,
	}
}

// InitSelectionStore creates the DynamoDB selection store from the table
// name environment variable. Fatals if the env var is empty.
func InitSelectionStore(cfg aws.Config, tableEnvVar string) *store.DynamoStore {
	tableName := os.Getenv(tableEnvVar)
	if tableName == "" {
		log.Fatal().Str("envVar", tableEnvVar).Msg("DynamoDB table environment variable is required")
	}
	return store.NewDynamoStore(dynamodb.NewFromConfig(cfg), tableName)
}

// InitPublisher creates an EventBridge publisher if the bus env var is set.
// Returns nil (with a warning) if not configured.
func InitPublisher(cfg aws.Config, busEnvVar string) *notify.Publisher {
	bus := os.Getenv(busEnvVar)
	if bus == "" {
		log.Warn().Str("envVar", busEnvVar).Msg("Event bus not set, story events disabled")
		return nil
	}
	return notify.NewPublisher(eventbridge.NewFromConfig(cfg), bus)
}

// LoadMinimumAssets resolves the minimum photo count per book. An explicit
// STORIES_MIN_ASSETS wins; otherwise the SSM parameter is read. SSM failures
// fall back to the default with a warning.
func LoadMinimumAssets(ssmClient product.ParameterGetter) product.Static {
	if os.Getenv(product.MinimumEnvVar) != "" {
		return product.FromEnv()
	}

	param := logging.EnvOrDefault(EnvMinimumParam, product.DefaultMinimumParam)
	minimum, err := product.LoadMinimumFromSSM(context.Background(), ssmClient, param)
	if err != nil {
		log.Warn().Err(err).Str("param", param).Int("default", product.DefaultMinimumAssets).Msg("Minimum assets not loaded from SSM, using default")
		return product.DefaultMinimumAssets
	}
	return minimum
}

// StartupLog is a convenience wrapper for the startup logger.
func StartupLog(name string, initStart time.Time) *logging.StartupLogger {
	return logging.NewStartupLogger(name).InitDuration(time.Since(initStart))
}
