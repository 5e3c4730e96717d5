// Package s3util moves library snapshots between S3 and the story engine.
package s3util

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"

	"github.com/fpang/photobook-stories/internal/library"
)

// ObjectGetter is the subset of the S3 client used to read snapshots.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// ObjectPutter is the subset of the S3 client used to write snapshots.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

var (
	_ ObjectGetter = (*s3.Client)(nil)
	_ ObjectPutter = (*s3.Client)(nil)
)

// ReadSnapshot downloads and decodes a snapshot object. Compressed and plain
// JSON objects are both accepted.
func ReadSnapshot(ctx context.Context, client ObjectGetter, bucket, key string) (*library.Snapshot, error) {
	start := time.Now()
	log.Debug().Str("bucket", bucket).Str("key", key).Msg("Downloading snapshot from S3")

	result, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	})
	if err != nil {
		return nil, fmt.Errorf("S3 GetObject %s/%s: %w", bucket, key, err)
	}
	defer result.Body.Close()

	snap, err := library.DecodeSnapshot(result.Body)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s/%s: %w", bucket, key, err)
	}

	log.Info().
		Str("key", key).
		Int64("bytes", aws.ToInt64(result.ContentLength)).
		Dur("elapsed", time.Since(start)).
		Msg("Snapshot loaded from S3")
	return snap, nil
}

// WriteSnapshot encodes and uploads a snapshot. Keys ending in .zst are
// zstd-compressed.
func WriteSnapshot(ctx context.Context, client ObjectPutter, bucket, key string, snap *library.Snapshot) error {
	compress := strings.HasSuffix(key, ".zst")

	var buf bytes.Buffer
	if err := library.EncodeSnapshot(&buf, snap, compress); err != nil {
		return err
	}
	size := buf.Len()

	contentType := "application/json"
	if compress {
		contentType = "application/zstd"
	}
	_, err := client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		Body:        &buf,
		ContentType: &contentType,
		Tagging:     ProjectTagging(),
	})
	if err != nil {
		return fmt.Errorf("S3 PutObject %s/%s: %w", bucket, key, err)
	}

	log.Info().Str("bucket", bucket).Str("key", key).Int("bytes", size).Msg("Snapshot uploaded to S3")
	return nil
}

// ParseURI splits "s3://bucket/key" into bucket and key.
func ParseURI(uri string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(uri, "s3://")
	if !ok {
		return "", "", fmt.Errorf("not an s3:// URI: %q", uri)
	}
	bucket, key, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("s3 URI needs a bucket and a key: %q", uri)
	}
	return bucket, key, nil
}
