package library

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherReportsDeletedPhotos(t *testing.T) {
	root := t.TempDir()
	writePhoto(t, root, "Lisbon/1.jpg", day(2025, 3, 1))
	writePhoto(t, root, "Lisbon/notes.txt", day(2025, 3, 1))

	w, err := NewWatcher(root, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	changes := make(chan ChangeSet, 1)
	go w.Run(ctx, func(c ChangeSet) {
		select {
		case changes <- c:
		default:
		}
	})

	if err := os.Remove(filepath.Join(root, "Lisbon", "notes.txt")); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := os.Remove(filepath.Join(root, "Lisbon", "1.jpg")); err != nil {
		t.Fatalf("remove: %v", err)
	}

	select {
	case c := <-changes:
		got := c.Deleted()
		if len(got) != 1 || got[0] != "Lisbon/1.jpg" {
			t.Errorf("Deleted() = %v, want [Lisbon/1.jpg]", got)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for change set")
	}
}
