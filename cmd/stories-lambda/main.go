// Package main provides the Lambda entry point that ranks a photo-library
// snapshot into stories and hands the auto-selected photos of one story to
// the book workflow.
//
// The snapshot is read from S3, ranked, and the requested story (or the top
// one) is hydrated and auto-selected. The run and the selection are written
// to DynamoDB and announced on EventBridge.
package main

import (
	"strconv"
	"time"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/fpang/photobook-stories/internal/lambdaboot"
	"github.com/fpang/photobook-stories/internal/logging"
	"github.com/fpang/photobook-stories/internal/product"
)

// Build identity, set with -ldflags at build time.
var (
	commitHash = "dev"
	buildTime  = ""
)

// svc is wired on cold start in main.
var svc *service

var coldStart = true

func init() {
	logging.Init()
}

// newServiceFromEnv builds the AWS clients and configuration. It fatals on
// missing required configuration.
func newServiceFromEnv() *service {
	initStart := time.Now()

	clients := lambdaboot.InitAWS()
	s3c := lambdaboot.InitS3(clients.Config, lambdaboot.EnvSnapshotBucket)
	s := &service{
		snapshots:      s3c.Client,
		snapshotBucket: s3c.Bucket,
		selections:     lambdaboot.InitSelectionStore(clients.Config, lambdaboot.EnvSelectionTable),
		minimum:        lambdaboot.LoadMinimumAssets(clients.SSM),
		publisher:      lambdaboot.InitPublisher(clients.Config, lambdaboot.EnvEventBus),
		limit:          limitFromEnv(),
		now:            time.Now,
	}

	lambdaboot.StartupLog("stories-lambda", initStart).
		CommitHash(commitHash).
		BuildTime(buildTime).
		S3Bucket("snapshots", s.snapshotBucket).
		DynamoTable("selections", logging.EnvOrDefault(lambdaboot.EnvSelectionTable, "")).
		EventBus("stories", logging.EnvOrDefault(lambdaboot.EnvEventBus, "")).
		SSMParam("minimumAssets", logging.EnvOrDefault(lambdaboot.EnvMinimumParam, product.DefaultMinimumParam)).
		Feature("events", s.publisher != nil).
		Config("minimumAssets", strconv.Itoa(int(s.minimum))).
		Config("storyLimit", strconv.Itoa(s.limit)).
		Log()
	return s
}

func main() {
	svc = newServiceFromEnv()
	lambda.Start(handler)
}
