// Command stories ranks a photo library into book-sized stories and
// auto-selects the photos of each book. It reads a photo directory, a
// snapshot file or a snapshot in S3.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/photobook-stories/internal/cli"
	"github.com/fpang/photobook-stories/internal/library"
	"github.com/fpang/photobook-stories/internal/logging"
	"github.com/fpang/photobook-stories/internal/product"
	"github.com/fpang/photobook-stories/internal/s3util"
	"github.com/fpang/photobook-stories/internal/story"
)

// CLI flags
var (
	sourceFlag      string
	minAssetsFlag   int
	limitFlag       int
	logLevelFlag    string
	outputFlag      string
	concurrencyFlag int
)

// rootCmd is the main Cobra command for the CLI.
var rootCmd = &cobra.Command{
	Use:   "stories",
	Short: "Rank a photo library into printable stories",
	Long: `Stories scans a photo library for trips and events, ranks them by how
good a photo book they would make, and picks the photos of each book.

The library is a directory of photos (one top-level folder per event), a
snapshot file written by "stories snapshot", or a snapshot in S3.

Examples:
  stories rank --source ~/Pictures/trips
  stories prepare -s library.json.zst --min-assets 24
  stories snapshot -s ~/Pictures/trips -o s3://my-bucket/snapshots/library.json.zst
  stories watch -s ~/Pictures/trips lisbon`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init()
		if logLevelFlag != "" {
			logging.SetLevel(logLevelFlag)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&sourceFlag, "source", "s", "", "Photo directory, snapshot file or s3:// snapshot URI")
	rootCmd.PersistentFlags().IntVar(&minAssetsFlag, "min-assets", 0, "Photos per book (0 = $"+product.MinimumEnvVar+" or the default)")
	rootCmd.PersistentFlags().IntVar(&limitFlag, "limit", story.DefaultStoryLimit, "Maximum stories to rank")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level (debug, info, warn, error)")

	prepareCmd.Flags().IntVarP(&concurrencyFlag, "concurrency", "c", 4, "Stories prepared in parallel")
	snapshotCmd.Flags().StringVarP(&outputFlag, "output", "o", "library.json.zst", "Snapshot file or s3:// URI (.zst compresses)")

	rootCmd.AddCommand(rankCmd, prepareCmd, snapshotCmd, watchCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// resolveSource returns the --source flag, prompting when it is empty.
func resolveSource() (string, cli.SourceKind) {
	source := sourceFlag
	if source == "" {
		source = cli.PromptForSource()
	}
	return cli.ResolveSource(source)
}

// loadLibrary reads the library the source points at into a snapshot.
func loadLibrary(ctx context.Context, source string, kind cli.SourceKind) (*library.Snapshot, error) {
	switch kind {
	case cli.SourceDirectory:
		return library.ScanDirectory(source)
	case cli.SourceSnapshotFile:
		return library.ReadSnapshotFile(source)
	case cli.SourceS3:
		bucket, key, err := s3util.ParseURI(source)
		if err != nil {
			return nil, err
		}
		client, err := newS3Client(ctx)
		if err != nil {
			return nil, err
		}
		return s3util.ReadSnapshot(ctx, client, bucket, key)
	default:
		return nil, fmt.Errorf("unknown source kind %d", kind)
	}
}

func newS3Client(ctx context.Context) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	log.Debug().Str("region", cfg.Region).Msg("AWS config loaded")
	return s3.NewFromConfig(cfg), nil
}

// minimumAssets resolves --min-assets against the environment.
func minimumAssets() product.Static {
	if minAssetsFlag > 0 {
		return product.Static(minAssetsFlag)
	}
	return product.FromEnv()
}

// mustLoad resolves the source and loads it, exiting fatally on failure.
func mustLoad(ctx context.Context) *library.Snapshot {
	source, kind := resolveSource()
	snap, err := loadLibrary(ctx, source, kind)
	if err != nil {
		log.Fatal().Err(err).Str("source", source).Msg("Failed to load library")
	}
	log.Info().Str("source", source).Int("clusters", snap.Len()).Msg("Library loaded")
	return snap
}
