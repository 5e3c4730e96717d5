package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fpang/photobook-stories/internal/story"
)

func TestPrintStories(t *testing.T) {
	var buf bytes.Buffer
	PrintStories(&buf, []*story.Story{
		{Title: "LISBON", Subtitle: "2 - 5 March 2026", PhotoCount: 40, Score: 30},
		{Title: "SINTRA", Subtitle: "7 - 8 March 2026", PhotoCount: 22, Score: 40, IsWeekend: true},
	})

	out := buf.String()
	for _, want := range []string{"Top stories (2)", " 1. LISBON · 2 - 5 March 2026 (40 photos, score 30)", "weekend"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Count(out, "weekend") != 1 {
		t.Errorf("weekend marker should appear once:\n%s", out)
	}
}

func TestPrintStoriesEmpty(t *testing.T) {
	var buf bytes.Buffer
	PrintStories(&buf, nil)
	if !strings.Contains(buf.String(), "No story") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}

func TestPrintSelection(t *testing.T) {
	day := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	s := &story.Story{Title: "LISBON", Subtitle: "2 - 5 March 2026", Assets: make([]story.Asset, 40)}

	var buf bytes.Buffer
	PrintSelection(&buf, s, []story.Asset{{ID: "lisbon/a.jpg", Date: day}})

	out := buf.String()
	if !strings.Contains(out, "1 of 40 photos selected") || !strings.Contains(out, "2026-03-02 09:30  lisbon/a.jpg") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestPrintAlbumChange(t *testing.T) {
	var buf bytes.Buffer
	PrintAlbumChange(&buf, story.AlbumChange{
		StoryID:        "lisbon",
		Removed:        []story.Asset{{ID: "lisbon/a.jpg"}, {ID: "lisbon/b.jpg"}},
		RemovedIndices: []int{0, 5},
	})

	out := buf.String()
	if !strings.Contains(out, "lisbon lost 2 photo(s)") || !strings.Contains(out, "#5 lisbon/b.jpg") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestResolveSource(t *testing.T) {
	dir := t.TempDir()

	if got, kind := ResolveSource("s3://bucket/library.json.zst"); kind != SourceS3 || got != "s3://bucket/library.json.zst" {
		t.Errorf("ResolveSource(s3) = %q, %v", got, kind)
	}
	if _, kind := ResolveSource(dir); kind != SourceDirectory {
		t.Errorf("expected a directory source, got %v", kind)
	}
}
