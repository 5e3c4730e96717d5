package library

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writePhoto(t *testing.T, root, rel string, modTime time.Time) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("jpeg"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.Chtimes(path, modTime, modTime); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
}

func TestScanDirectory(t *testing.T) {
	root := t.TempDir()
	writePhoto(t, root, "Lisbon & Porto/Alfama/1.jpg", day(2025, 3, 2))
	writePhoto(t, root, "Lisbon & Porto/Alfama/2.jpg", day(2025, 3, 1))
	writePhoto(t, root, "Lisbon & Porto/3.jpg", day(2025, 3, 4))
	writePhoto(t, root, "Lisbon & Porto/4.jpg", day(2025, 3, 4))
	writePhoto(t, root, "2025-01-01/Fireworks/5.jpg", day(2025, 1, 1))
	writePhoto(t, root, "loose.jpg", day(2025, 1, 1))

	s, err := ScanDirectory(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	clusters := s.Clusters()
	if len(clusters) != 2 {
		t.Fatalf("expected 2 clusters, got %d", len(clusters))
	}

	byID := map[string]MomentCluster{}
	for _, c := range clusters {
		byID[c.ID] = c
	}

	trip := byID["Lisbon & Porto"]
	if trip.Title != "Lisbon & Porto" {
		t.Errorf("title = %q", trip.Title)
	}
	if !trip.StartDate.Equal(day(2025, 3, 1)) || !trip.EndDate.Equal(day(2025, 3, 4)) {
		t.Errorf("unexpected date range %v - %v", trip.StartDate, trip.EndDate)
	}
	if len(trip.Moments) != 2 {
		t.Fatalf("expected 2 moments, got %d", len(trip.Moments))
	}
	alfama := trip.Moments[0]
	if alfama.Title != "Alfama" || alfama.Assets[0].ID != "Lisbon & Porto/Alfama/2.jpg" {
		t.Errorf("unexpected first moment: %+v", alfama)
	}
	if !strings.HasPrefix(trip.Moments[1].ID, "Lisbon & Porto@") || trip.Moments[1].ImageCount() != 2 {
		t.Errorf("unexpected day moment: %+v", trip.Moments[1])
	}

	if byID["2025-01-01"].Title != "" {
		t.Errorf("expected date-only folder to be untitled, got %q", byID["2025-01-01"].Title)
	}

	assets, _ := s.Assets(context.Background(), "Lisbon & Porto/Alfama")
	if len(assets) != 2 {
		t.Errorf("expected 2 assets, got %d", len(assets))
	}
}
