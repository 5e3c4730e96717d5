package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/fpang/photobook-stories/internal/cli"
	"github.com/fpang/photobook-stories/internal/dispatch"
	"github.com/fpang/photobook-stories/internal/library"
	"github.com/fpang/photobook-stories/internal/s3util"
	"github.com/fpang/photobook-stories/internal/story"
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "List the top stories of the library",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		snap := mustLoad(ctx)

		m := story.NewManager(snap, minimumAssets(),
			story.WithExecutor(dispatch.Inline{}),
			story.WithStoryLimit(limitFlag),
		)
		var stories []*story.Story
		m.LoadTopStories(ctx, func(loaded []*story.Story) { stories = loaded })

		cli.PrintStories(cmd.OutOrStdout(), stories)
	},
}

var prepareCmd = &cobra.Command{
	Use:   "prepare [story-id...]",
	Short: "Auto-select the photos of the top stories",
	Long: `Prepare ranks the library, loads the photos of the given stories (all
ranked stories when none are named) and prints each book's auto-selection.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		snap := mustLoad(ctx)

		loop := dispatch.NewLoop(0)
		go loop.Run(ctx)
		workers := &dispatch.Goroutines{}
		m := story.NewManager(snap, minimumAssets(),
			story.WithMainQueue(loop),
			story.WithExecutor(workers),
			story.WithStoryLimit(limitFlag),
		)

		stories, err := loadStories(ctx, m)
		if err != nil {
			log.Fatal().Err(err).Msg("Ranking interrupted")
		}
		targets, err := pickStories(stories, args)
		if err != nil {
			log.Fatal().Err(err).Msg("Unknown story")
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(max(concurrencyFlag, 1))
		for _, s := range targets {
			g.Go(func() error {
				if err := prepare(gctx, m, s); err != nil {
					return fmt.Errorf("prepare %s: %w", s.ID, err)
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			log.Fatal().Err(err).Msg("Failed to prepare stories")
		}
		workers.Wait()

		out := cmd.OutOrStdout()
		loop.Sync(func() {
			cli.PrintStories(out, stories)
			for _, s := range targets {
				cli.PrintSelection(out, s, m.SelectedAssets(s).Assets())
			}
		})
	},
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Write the library to a snapshot file or S3",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		snap := mustLoad(ctx)

		if strings.HasPrefix(outputFlag, "s3://") {
			bucket, key, err := s3util.ParseURI(outputFlag)
			if err != nil {
				log.Fatal().Err(err).Msg("Invalid output")
			}
			client, err := newS3Client(ctx)
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to create S3 client")
			}
			if err := s3util.WriteSnapshot(ctx, client, bucket, key, snap); err != nil {
				log.Fatal().Err(err).Msg("Failed to upload snapshot")
			}
		} else if err := library.WriteSnapshotFile(outputFlag, snap); err != nil {
			log.Fatal().Err(err).Str("path", outputFlag).Msg("Failed to write snapshot")
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Snapshot of %d clusters written to %s\n", snap.Len(), outputFlag)
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch [story-id]",
	Short: "Follow deletions in a photo directory while a book is open",
	Long: `Watch prepares one story (the top-ranked one unless named) of a photo
directory and keeps its selection in sync as photos are deleted from disk.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		source := sourceFlag
		if source == "" {
			source = cli.PromptForSource()
		}
		dir := cli.ValidateAndResolveDirectory(source)

		snap, err := library.ScanDirectory(dir)
		if err != nil {
			log.Fatal().Err(err).Str("path", dir).Msg("Failed to scan library")
		}
		watcher, err := library.NewWatcher(dir, library.DefaultDebounce)
		if err != nil {
			log.Fatal().Err(err).Str("path", dir).Msg("Failed to watch library")
		}
		defer watcher.Close()

		loop := dispatch.NewLoop(0)
		go loop.Run(ctx)
		m := story.NewManager(snap, minimumAssets(),
			story.WithMainQueue(loop),
			story.WithStoryLimit(limitFlag),
		)

		stories, err := loadStories(ctx, m)
		if err != nil {
			log.Fatal().Err(err).Msg("Ranking interrupted")
		}
		targets, err := pickStories(stories, args)
		if err != nil {
			log.Fatal().Err(err).Msg("Unknown story")
		}
		if len(targets) == 0 {
			log.Fatal().Int("minimum", minimumAssets().MinimumAssets()).Msg("No story has enough photos")
		}
		current := targets[0]

		out := cmd.OutOrStdout()
		detach := m.OnAlbumsUpdated(func(change story.AlbumChange) {
			cli.PrintAlbumChange(out, change)
			fmt.Fprintf(out, "   %d photos left, %d selected\n", len(current.Assets), m.SelectedAssets(current).Count())
		})
		defer detach()

		loop.Sync(func() { m.SetCurrentStory(current) })
		if err := prepare(ctx, m, current); err != nil {
			log.Fatal().Err(err).Str("storyId", current.ID).Msg("Failed to prepare story")
		}
		loop.Sync(func() {
			cli.PrintSelection(out, current, m.SelectedAssets(current).Assets())
		})

		fmt.Fprintln(out, "Watching for deleted photos, Ctrl-C to stop")
		err = watcher.Run(ctx, func(change library.ChangeSet) {
			m.HandleLibraryChange(snap.Remove(change.Deleted()...))
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Watcher stopped")
		}
	},
}

// loadStories runs a ranking pass and waits for its result.
func loadStories(ctx context.Context, m *story.Manager) ([]*story.Story, error) {
	loaded := make(chan []*story.Story, 1)
	m.LoadTopStories(ctx, func(stories []*story.Story) { loaded <- stories })
	select {
	case stories := <-loaded:
		return stories, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// prepare hydrates and auto-selects a story and waits for it to finish.
func prepare(ctx context.Context, m *story.Manager, s *story.Story) error {
	prepared := make(chan error, 1)
	m.Prepare(ctx, s, func(err error) { prepared <- err })
	select {
	case err := <-prepared:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// pickStories returns the stories named by ids in the given order, or every
// story when ids is empty.
func pickStories(stories []*story.Story, ids []string) ([]*story.Story, error) {
	if len(ids) == 0 {
		return stories, nil
	}
	byID := make(map[string]*story.Story, len(stories))
	for _, s := range stories {
		byID[s.ID] = s
	}
	picked := make([]*story.Story, 0, len(ids))
	for _, id := range ids {
		s, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("story %q is not among the %d ranked stories", id, len(stories))
		}
		picked = append(picked, s)
	}
	return picked, nil
}
