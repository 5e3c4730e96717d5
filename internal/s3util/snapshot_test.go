package s3util

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/fpang/photobook-stories/internal/library"
)

// memBucket stores objects in memory.
type memBucket struct {
	objects map[string][]byte
	types   map[string]string
	tagging map[string]string
}

func newMemBucket() *memBucket {
	return &memBucket{objects: map[string][]byte{}, types: map[string]string{}, tagging: map[string]string{}}
}

func (b *memBucket) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	key := aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)
	b.objects[key] = data
	b.types[key] = aws.ToString(in.ContentType)
	b.tagging[key] = aws.ToString(in.Tagging)
	return &s3.PutObjectOutput{}, nil
}

func (b *memBucket) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := b.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(data)),
		ContentLength: aws.Int64(int64(len(data))),
	}, nil
}

func testSnapshot() *library.Snapshot {
	d := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	return library.NewSnapshot([]library.MomentCluster{{
		ID: "lisbon", Title: "Lisbon", StartDate: d, EndDate: d.AddDate(0, 0, 3),
		Moments: []library.Moment{{ID: "m1", Assets: []library.AssetDescriptor{{ID: "a1", CreationDate: d}}}},
	}})
}

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	bucket := newMemBucket()

	for _, key := range []string{"snapshots/library.json", "snapshots/library.json.zst"} {
		if err := WriteSnapshot(ctx, bucket, "media", key, testSnapshot()); err != nil {
			t.Fatalf("WriteSnapshot(%s): %v", key, err)
		}

		got, err := ReadSnapshot(ctx, bucket, "media", key)
		if err != nil {
			t.Fatalf("ReadSnapshot(%s): %v", key, err)
		}
		clusters := got.Clusters()
		if len(clusters) != 1 || clusters[0].ID != "lisbon" || len(clusters[0].Moments[0].Assets) != 1 {
			t.Errorf("%s: unexpected clusters %+v", key, clusters)
		}
		if bucket.tagging["media/"+key] != projectTag {
			t.Errorf("%s: object not tagged", key)
		}
	}

	if bucket.types["media/snapshots/library.json.zst"] != "application/zstd" {
		t.Errorf("unexpected content type %q", bucket.types["media/snapshots/library.json.zst"])
	}
	if bytes.HasPrefix(bucket.objects["media/snapshots/library.json.zst"], []byte("{")) {
		t.Error("expected the .zst object to be compressed")
	}
}

func TestReadSnapshotMissing(t *testing.T) {
	if _, err := ReadSnapshot(context.Background(), newMemBucket(), "media", "missing.json"); err == nil {
		t.Fatal("expected an error for a missing object")
	}
}

func TestParseURI(t *testing.T) {
	tests := []struct {
		uri         string
		bucket, key string
		wantErr     bool
	}{
		{uri: "s3://media/snapshots/library.json.zst", bucket: "media", key: "snapshots/library.json.zst"},
		{uri: "s3://media", wantErr: true},
		{uri: "s3:///key", wantErr: true},
		{uri: "/tmp/library.json", wantErr: true},
	}
	for _, tt := range tests {
		bucket, key, err := ParseURI(tt.uri)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseURI(%q) error = %v, wantErr %v", tt.uri, err, tt.wantErr)
			continue
		}
		if bucket != tt.bucket || key != tt.key {
			t.Errorf("ParseURI(%q) = %q, %q", tt.uri, bucket, key)
		}
	}
}
