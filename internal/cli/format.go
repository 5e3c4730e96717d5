// Package cli holds the terminal helpers of the stories command: prompting,
// source resolution and story listings.
package cli

import (
	"fmt"
	"io"

	"github.com/fpang/photobook-stories/internal/story"
)

// PrintStories writes the ranked stories, one per line, best first.
func PrintStories(w io.Writer, stories []*story.Story) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "============================================")
	fmt.Fprintf(w, "📚 Top stories (%d)\n", len(stories))
	fmt.Fprintln(w, "============================================")
	if len(stories) == 0 {
		fmt.Fprintln(w, "   No story has enough photos for a book.")
		return
	}
	for i, s := range stories {
		weekend := ""
		if s.IsWeekend {
			weekend = " 🗓 weekend"
		}
		fmt.Fprintf(w, "   %2d. %s · %s (%d photos, score %d)%s\n", i+1, s.Title, s.Subtitle, s.PhotoCount, s.Score, weekend)
	}
}

// PrintSelection writes the selected assets of a story in book order.
func PrintSelection(w io.Writer, s *story.Story, assets []story.Asset) {
	fmt.Fprintln(w, "--------------------------------------------")
	fmt.Fprintf(w, "📖 %s · %s\n", s.Title, s.Subtitle)
	fmt.Fprintf(w, "   %d of %d photos selected\n", len(assets), len(s.Assets))
	for i, a := range assets {
		fmt.Fprintf(w, "   %2d. %s  %s\n", i+1, a.Date.Format("2006-01-02 15:04"), a.ID)
	}
}

// PrintAlbumChange writes the photos removed from the current story.
func PrintAlbumChange(w io.Writer, change story.AlbumChange) {
	fmt.Fprintf(w, "🗑  %s lost %d photo(s)\n", change.StoryID, len(change.Removed))
	for i, a := range change.Removed {
		fmt.Fprintf(w, "   - #%d %s\n", change.RemovedIndices[i], a.ID)
	}
}
