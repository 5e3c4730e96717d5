package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fpang/photobook-stories/internal/dispatch"
	"github.com/fpang/photobook-stories/internal/jobs"
	"github.com/fpang/photobook-stories/internal/metrics"
	"github.com/fpang/photobook-stories/internal/notify"
	"github.com/fpang/photobook-stories/internal/product"
	"github.com/fpang/photobook-stories/internal/s3util"
	"github.com/fpang/photobook-stories/internal/store"
	"github.com/fpang/photobook-stories/internal/story"
)

// service holds the cold-start wiring the handler runs against.
type service struct {
	snapshots      s3util.ObjectGetter
	snapshotBucket string
	selections     store.SelectionStore
	publisher      *notify.Publisher
	minimum        product.Static
	limit          int
	now            func() time.Time
}

func limitFromEnv() int {
	raw := os.Getenv("STORIES_LIMIT")
	if raw == "" {
		return story.DefaultStoryLimit
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		log.Warn().Str("value", raw).Msg("Ignoring invalid STORIES_LIMIT")
		return story.DefaultStoryLimit
	}
	return n
}

func handler(ctx context.Context, event StoriesEvent) (StoriesResult, error) {
	handlerStart := time.Now()
	if coldStart {
		coldStart = false
		log.Info().Str("function", "stories-lambda").Msg("Cold start, first invocation")
	}

	switch event.Action {
	case "", ActionRank:
		return svc.rank(ctx, event, handlerStart)
	case ActionReset:
		return svc.reset(ctx, event)
	default:
		return StoriesResult{Error: "unknown action"}, fmt.Errorf("unknown action %q", event.Action)
	}
}

// rank ranks the snapshot, auto-selects one story and persists both.
func (s *service) rank(ctx context.Context, event StoriesEvent, handlerStart time.Time) (StoriesResult, error) {
	if event.SnapshotKey == "" {
		return StoriesResult{Error: "snapshotKey is required"}, fmt.Errorf("snapshotKey is required")
	}

	runID := jobs.NormalizeID(event.RunID, "run-")
	if runID == "" {
		runID = jobs.GenerateID("run-")
	}
	bucket := s.snapshotBucket
	if event.Bucket != "" {
		bucket = event.Bucket
	}
	limit := s.limit
	if event.Limit > 0 {
		limit = event.Limit
	}

	logger := log.With().Str("runId", runID).Str("snapshotKey", event.SnapshotKey).Logger()
	logger.Info().Str("bucket", bucket).Int("minimum", int(s.minimum)).Int("limit", limit).Msg("Starting story ranking")

	run := &store.Run{
		ID:            runID,
		Status:        store.StatusProcessing,
		SnapshotKey:   event.SnapshotKey,
		MinimumAssets: int(s.minimum),
	}
	if err := s.selections.PutRun(ctx, run); err != nil {
		logger.Error().Err(err).Msg("Failed to record run start")
		// Non-fatal: the final PutRun below retries.
	}

	fail := func(msg string, cause error) (StoriesResult, error) {
		if err := jobs.SetJobError(ctx, runID, msg, s.writeRunError); err != nil {
			logger.Error().Err(err).Msg("Failed to persist run error")
		}
		return StoriesResult{RunID: runID, Error: msg}, cause
	}

	snap, err := s3util.ReadSnapshot(ctx, s.snapshots, bucket, event.SnapshotKey)
	if err != nil {
		return fail(fmt.Sprintf("load snapshot: %v", err), err)
	}

	m := story.NewManager(snap, s.minimum,
		story.WithMainQueue(dispatch.Inline{}),
		story.WithExecutor(dispatch.Inline{}),
		story.WithClock(s.now),
		story.WithStoryLimit(limit),
	)
	if s.publisher != nil {
		detach := notify.Attach(m, s.publisher, runID)
		defer detach()
	}

	rankStart := time.Now()
	var stories []*story.Story
	m.LoadTopStories(ctx, func(loaded []*story.Story) { stories = loaded })
	rankDuration := time.Since(rankStart)

	run.Stories = summarize(stories)
	run.Status = store.StatusComplete
	result := StoriesResult{RunID: runID, Stories: run.Stories}

	selected, err := selectStory(ctx, m, stories, event.StoryID)
	if err != nil {
		return fail(err.Error(), err)
	}
	if selected != nil {
		sel := m.SelectedAssets(selected)
		book := &store.BookSelection{
			StoryID:      selected.ID,
			Title:        selected.Title,
			Subtitle:     selected.Subtitle,
			AssetIDs:     assetIDs(sel.Assets()),
			AutoSelected: selected.HasPerformedAutoSelection,
		}
		if err := s.selections.PutBookSelection(ctx, runID, book); err != nil {
			return fail(fmt.Sprintf("save selection: %v", err), err)
		}
		result.StoryID = selected.ID
		result.SelectedCount = len(book.AssetIDs)

		if s.publisher != nil {
			ready := notify.SelectionReady{RunID: runID, StoryID: selected.ID, AssetCount: len(book.AssetIDs), AutoSelected: book.AutoSelected}
			if err := s.publisher.Publish(ctx, notify.DetailSelectionReady, ready); err != nil {
				logger.Warn().Err(err).Msg("Failed to publish selection event")
			}
		}
	}

	if err := s.selections.PutRun(ctx, run); err != nil {
		return StoriesResult{RunID: runID, Error: "failed to save run"}, fmt.Errorf("save run: %w", err)
	}

	metrics.New(metrics.Namespace).
		Dimension("Operation", ActionRank).
		Duration("RankingMs", rankDuration).
		Duration("HandlerMs", time.Since(handlerStart)).
		Count("ClustersScanned", snap.Len()).
		Count("StoriesRanked", len(stories)).
		Count("AssetsSelected", result.SelectedCount).
		Property("runId", runID).
		Flush()

	logger.Info().
		Int("stories", len(stories)).
		Str("storyId", result.StoryID).
		Int("selected", result.SelectedCount).
		Dur("duration", time.Since(handlerStart)).
		Msg("Story ranking complete")
	return result, nil
}

// selectStory prepares the requested story, or the top-ranked one when no ID
// is given. It returns nil when there is nothing to select.
func selectStory(ctx context.Context, m *story.Manager, stories []*story.Story, storyID string) (*story.Story, error) {
	if len(stories) == 0 {
		return nil, nil
	}

	target := stories[0]
	if storyID != "" {
		target = nil
		for _, s := range stories {
			if s.ID == storyID {
				target = s
				break
			}
		}
		if target == nil {
			return nil, fmt.Errorf("story %s is not among the ranked stories", storyID)
		}
	}

	var prepareErr error
	m.SetCurrentStory(target)
	m.Prepare(ctx, target, func(err error) { prepareErr = err })
	if prepareErr != nil {
		return nil, fmt.Errorf("prepare story %s: %w", target.ID, prepareErr)
	}
	return target, nil
}

// reset clears every persisted selection of a run.
func (s *service) reset(ctx context.Context, event StoriesEvent) (StoriesResult, error) {
	runID := jobs.NormalizeID(event.RunID, "run-")
	if runID == "" {
		return StoriesResult{Error: "runId is required"}, fmt.Errorf("runId is required")
	}

	cleared, err := s.selections.ResetSelections(ctx, runID)
	if err != nil {
		return StoriesResult{RunID: runID, Error: "reset failed"}, err
	}

	metrics.New(metrics.Namespace).
		Dimension("Operation", ActionReset).
		Count("SelectionsCleared", len(cleared)).
		Property("runId", runID).
		Flush()

	return StoriesResult{RunID: runID, ClearedCount: len(cleared)}, nil
}

func (s *service) writeRunError(ctx context.Context, runID, msg string) error {
	return s.selections.UpdateRunStatus(ctx, runID, store.StatusError, msg)
}

func summarize(stories []*story.Story) []store.RankedStory {
	out := make([]store.RankedStory, 0, len(stories))
	for _, s := range stories {
		out = append(out, store.RankedStory{
			ID:         s.ID,
			Title:      s.Title,
			Subtitle:   s.Subtitle,
			PhotoCount: s.PhotoCount,
			Score:      s.Score,
			IsWeekend:  s.IsWeekend,
		})
	}
	return out
}

func assetIDs(assets []story.Asset) []string {
	ids := make([]string, len(assets))
	for i, a := range assets {
		ids[i] = a.ID
	}
	return ids
}
