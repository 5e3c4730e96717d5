package main

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/fpang/photobook-stories/internal/cli"
	"github.com/fpang/photobook-stories/internal/dispatch"
	"github.com/fpang/photobook-stories/internal/library"
	"github.com/fpang/photobook-stories/internal/product"
	"github.com/fpang/photobook-stories/internal/story"
)

func testSnapshot(now time.Time) *library.Snapshot {
	var clusters []library.MomentCluster
	for c, name := range []string{"Lisbon", "Porto", "Faro"} {
		end := now.AddDate(0, 0, -10*(c+1))
		assets := make([]library.AssetDescriptor, 25)
		for i := range assets {
			assets[i] = library.AssetDescriptor{ID: fmt.Sprintf("%s/%02d.jpg", name, i), CreationDate: end.Add(-time.Duration(i) * time.Hour)}
		}
		clusters = append(clusters, library.MomentCluster{
			ID: name, Title: name, StartDate: end.AddDate(0, 0, -1), EndDate: end,
			Moments: []library.Moment{{ID: name + "-m", Assets: assets}},
		})
	}
	return library.NewSnapshot(clusters)
}

func TestPickStories(t *testing.T) {
	stories := []*story.Story{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	tests := []struct {
		ids     []string
		want    string
		wantErr bool
	}{
		{nil, "a,b,c", false},
		{[]string{"c", "a"}, "c,a", false},
		{[]string{"z"}, "", true},
	}
	for _, tt := range tests {
		got, err := pickStories(stories, tt.ids)
		if (err != nil) != tt.wantErr {
			t.Errorf("pickStories(%v) error = %v, wantErr %v", tt.ids, err, tt.wantErr)
			continue
		}
		ids := ""
		for i, s := range got {
			if i > 0 {
				ids += ","
			}
			ids += s.ID
		}
		if ids != tt.want {
			t.Errorf("pickStories(%v) = %s, want %s", tt.ids, ids, tt.want)
		}
	}
}

func TestLoadAndPrepareOnLoop(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	loop := dispatch.NewLoop(0)
	go loop.Run(ctx)
	workers := &dispatch.Goroutines{}
	m := story.NewManager(testSnapshot(time.Now()), product.Static(20),
		story.WithMainQueue(loop),
		story.WithExecutor(workers),
	)

	stories, err := loadStories(ctx, m)
	if err != nil {
		t.Fatalf("loadStories: %v", err)
	}
	if len(stories) != 3 {
		t.Fatalf("expected 3 stories, got %d", len(stories))
	}

	for _, s := range stories {
		if err := prepare(ctx, m, s); err != nil {
			t.Fatalf("prepare %s: %v", s.ID, err)
		}
	}
	workers.Wait()

	loop.Sync(func() {
		for _, s := range stories {
			if got := m.SelectedAssets(s).Count(); got != 20 {
				t.Errorf("%s: selected %d, want 20", s.ID, got)
			}
		}
	})
}

func TestLoadLibrarySnapshotFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.json.zst")
	if err := library.WriteSnapshotFile(path, testSnapshot(time.Now())); err != nil {
		t.Fatalf("WriteSnapshotFile: %v", err)
	}

	source, kind := cli.ResolveSource(path)
	if kind != cli.SourceSnapshotFile {
		t.Fatalf("expected a snapshot file source, got %v", kind)
	}
	snap, err := loadLibrary(context.Background(), source, kind)
	if err != nil {
		t.Fatalf("loadLibrary: %v", err)
	}
	if snap.Len() != 3 {
		t.Errorf("expected 3 clusters, got %d", snap.Len())
	}
}

func TestMinimumAssets(t *testing.T) {
	t.Setenv(product.MinimumEnvVar, "24")

	minAssetsFlag = 0
	if got := minimumAssets(); got != 24 {
		t.Errorf("minimumAssets() from env = %d, want 24", got)
	}

	minAssetsFlag = 30
	defer func() { minAssetsFlag = 0 }()
	if got := minimumAssets(); got != 30 {
		t.Errorf("minimumAssets() from flag = %d, want 30", got)
	}
}
