package notify

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fpang/photobook-stories/internal/story"
)

// publishTimeout bounds each observer-triggered publish.
const publishTimeout = 5 * time.Second

// Attach registers manager observers that forward story and album updates to
// the publisher. Publish failures are logged and never reach the manager.
// The returned func detaches both observers.
func Attach(m *story.Manager, p *Publisher, runID string) func() {
	cancelStories := m.OnStoriesUpdated(func(stories []*story.Story) {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		event := StoriesUpdated{RunID: runID, Stories: Summarize(stories)}
		if err := p.Publish(ctx, DetailStoriesUpdated, event); err != nil {
			log.Warn().Err(err).Int("stories", len(stories)).Msg("Failed to publish stories update")
		}
	})

	cancelAlbums := m.OnAlbumsUpdated(func(change story.AlbumChange) {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		ids := make([]string, len(change.Removed))
		for i, a := range change.Removed {
			ids[i] = a.ID
		}
		event := AlbumUpdated{
			RunID:           runID,
			StoryID:         change.StoryID,
			RemovedAssetIDs: ids,
			RemovedIndices:  change.RemovedIndices,
		}
		if err := p.Publish(ctx, DetailAlbumUpdated, event); err != nil {
			log.Warn().Err(err).Str("storyId", change.StoryID).Msg("Failed to publish album update")
		}
	})

	return func() {
		cancelStories()
		cancelAlbums()
	}
}
