package story

import (
	"fmt"
	"time"

	"github.com/fpang/photobook-stories/internal/library"
)

// refNow is a Monday.
var refNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func daysAgo(n int) time.Time {
	return refNow.AddDate(0, 0, -n)
}

// cluster builds a cluster with one moment holding photos images, spread one
// hour apart from start.
func cluster(id, title string, start, end time.Time, photos int) library.MomentCluster {
	assets := make([]library.AssetDescriptor, photos)
	for i := range assets {
		assets[i] = library.AssetDescriptor{
			ID:           fmt.Sprintf("%s-a%03d", id, i),
			CreationDate: start.Add(time.Duration(i) * time.Hour),
			MediaType:    library.MediaTypeImage,
		}
	}
	return library.MomentCluster{
		ID:        id,
		Title:     title,
		StartDate: start,
		EndDate:   end,
		Moments:   []library.Moment{{ID: id + "-m", Assets: assets}},
	}
}

// firstSource always picks the first candidate.
type firstSource struct{}

func (firstSource) IntN(int) int { return 0 }

// lastSource always picks the last candidate.
type lastSource struct{}

func (lastSource) IntN(n int) int { return n - 1 }

type staticMinimum int

func (m staticMinimum) MinimumAssets() int { return int(m) }
