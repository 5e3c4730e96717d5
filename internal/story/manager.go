package story

import (
	"context"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fpang/photobook-stories/internal/dispatch"
	"github.com/fpang/photobook-stories/internal/library"
)

// MinimumProvider supplies the minimum number of photos a book needs.
type MinimumProvider interface {
	MinimumAssets() int
}

// Manager caches ranked stories and drives asset hydration and
// auto-selection for them.
//
// Work is split between two contexts: library reads run on the background
// executor, and everything that mutates the cache, a story or a selection
// runs on the main queue. Methods that do not say otherwise must be called on
// the main queue.
type Manager struct {
	library library.Library
	minimum MinimumProvider
	main    dispatch.Queue
	worker  dispatch.Executor
	rnd     RandomSource
	now     func() time.Time
	limit   int

	loading atomic.Bool

	// Owned by the main queue.
	stories    []*Story
	selections map[string]*Selection
	current    *Story

	observers observers
}

// Option configures a Manager.
type Option func(*Manager)

// WithMainQueue sets the serial context that owns manager state.
func WithMainQueue(q dispatch.Queue) Option {
	return func(m *Manager) { m.main = q }
}

// WithExecutor sets the executor used for library reads.
func WithExecutor(e dispatch.Executor) Option {
	return func(m *Manager) { m.worker = e }
}

// WithRandomSource sets the source used by auto-selection.
func WithRandomSource(r RandomSource) Option {
	return func(m *Manager) { m.rnd = r }
}

// WithClock sets the reference clock for ranking.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithStoryLimit caps the number of cached stories.
func WithStoryLimit(n int) Option {
	return func(m *Manager) { m.limit = n }
}

// NewManager creates a Manager reading from lib. By default the main queue
// runs work inline and library reads run on their own goroutines.
func NewManager(lib library.Library, minimum MinimumProvider, opts ...Option) *Manager {
	m := &Manager{
		library:    lib,
		minimum:    minimum,
		main:       dispatch.Inline{},
		worker:     &dispatch.Goroutines{},
		rnd:        rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x5eed)),
		now:        time.Now,
		limit:      DefaultStoryLimit,
		selections: make(map[string]*Selection),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// OnStoriesUpdated registers fn to run on the main queue whenever a ranking
// pass changes the cached stories. The returned func unregisters it.
// Safe to call from any goroutine.
func (m *Manager) OnStoriesUpdated(fn StoriesUpdatedFunc) func() {
	return m.observers.addStories(fn)
}

// OnAlbumsUpdated registers fn to run on the main queue whenever a library
// change removes assets from the current story. Safe to call from any goroutine.
func (m *Manager) OnAlbumsUpdated(fn AlbumsUpdatedFunc) func() {
	return m.observers.addAlbums(fn)
}

// Loading reports whether a ranking pass is in flight. Safe to call from any
// goroutine.
func (m *Manager) Loading() bool {
	return m.loading.Load()
}

// Stories returns the cached stories.
func (m *Manager) Stories() []*Story {
	return append([]*Story(nil), m.stories...)
}

// SetCurrentStory marks the story the user is working on. Library changes
// only affect the current story.
func (m *Manager) SetCurrentStory(s *Story) {
	m.current = s
}

// CurrentStory returns the story set by SetCurrentStory, or nil.
func (m *Manager) CurrentStory() *Story {
	return m.current
}

// LoadTopStories ranks the library once and caches the result. done runs on
// the main queue with the cached stories.
//
// When stories are already cached, or a ranking pass is in flight, done is
// called with the current cache and nothing is scanned. Callers arriving
// during a pass therefore see the stale (possibly empty) cache. Safe to call
// from any goroutine.
func (m *Manager) LoadTopStories(ctx context.Context, done func([]*Story)) {
	m.main.Async(func() {
		if len(m.stories) > 0 || !m.loading.CompareAndSwap(false, true) {
			log.Debug().Int("cached", len(m.stories)).Bool("loading", m.loading.Load()).Msg("Skipping ranking pass")
			if done != nil {
				done(m.Stories())
			}
			return
		}

		m.worker.Go(func() {
			ranked := m.rank(ctx)
			m.main.Async(func() {
				m.publish(ranked)
				m.loading.Store(false)
				if done != nil {
					done(m.Stories())
				}
			})
		})
	})
}

// rank reads the library snapshot and runs the ranking pass. Library errors
// leave the snapshot empty. Runs on the background executor.
func (m *Manager) rank(ctx context.Context) []*Story {
	start := time.Now()
	now := m.now()

	clusters, err := library.Load(ctx, m.library, Since(now))
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load photo library, ranking nothing")
		clusters = nil
	}

	ranked := Rank(clusters, RankOptions{
		Now:           now,
		MinimumAssets: m.minimum.MinimumAssets(),
		Limit:         m.limit,
	})

	log.Info().
		Int("clusters", len(clusters)).
		Int("stories", len(ranked)).
		Dur("duration", time.Since(start)).
		Msg("Top stories ranked")
	return ranked
}

// publish replaces the cache and notifies observers if it changed.
func (m *Manager) publish(ranked []*Story) {
	changed := storiesChanged(m.stories, ranked)
	m.stories = ranked
	for _, s := range ranked {
		if _, ok := m.selections[s.ID]; !ok {
			m.selections[s.ID] = newSelection()
		}
	}
	if changed {
		m.observers.storiesUpdated(m.Stories())
	}
}

// storiesChanged compares two rankings by count and by title and subtitle
// at every position.
func storiesChanged(old, updated []*Story) bool {
	if len(old) != len(updated) {
		return true
	}
	for i := range old {
		if old[i].Title != updated[i].Title || old[i].Subtitle != updated[i].Subtitle {
			return true
		}
	}
	return false
}

// Prepare hydrates the story's assets on the background executor, then runs
// auto-selection once and calls done on the main queue. done receives the
// library error if hydration failed. Safe to call from any goroutine.
func (m *Manager) Prepare(ctx context.Context, s *Story, done func(error)) {
	finish := func(err error) {
		if done != nil {
			done(err)
		}
	}

	m.main.Async(func() {
		if len(s.Assets) > 0 {
			m.PerformAutoSelectionIfNeeded(s)
			finish(nil)
			return
		}

		momentIDs := s.MomentIDs
		m.worker.Go(func() {
			assets, err := fetchAssets(ctx, m.library, momentIDs)
			m.main.Async(func() {
				if err != nil {
					log.Warn().Err(err).Str("storyId", s.ID).Msg("Failed to load story assets")
					finish(err)
					return
				}
				if s.setAssets(assets) {
					log.Debug().Str("storyId", s.ID).Int("assets", len(assets)).Msg("Story assets loaded")
				}
				m.PerformAutoSelectionIfNeeded(s)
				finish(nil)
			})
		})
	})
}

// SelectedAssets returns the selection belonging to a story.
func (m *Manager) SelectedAssets(s *Story) *Selection {
	sel, ok := m.selections[s.ID]
	if !ok {
		sel = newSelection()
		m.selections[s.ID] = sel
	}
	return sel
}

// PerformAutoSelectionIfNeeded auto-selects the story's assets unless that
// already happened since the last reset. Stories without hydrated assets are
// left untouched.
func (m *Manager) PerformAutoSelectionIfNeeded(s *Story) {
	if s.HasPerformedAutoSelection || len(s.Assets) == 0 {
		return
	}
	m.PerformAutoSelection(s)
}

// PerformAutoSelection replaces the story's selection with AutoSelect's
// pick and marks the story as auto-selected.
func (m *Manager) PerformAutoSelection(s *Story) {
	minimum := m.minimum.MinimumAssets()
	picked := AutoSelect(s.Assets, minimum, m.rnd)

	sel := m.SelectedAssets(s)
	sel.DeselectAll()
	sel.Select(picked...)
	sel.OrderByDate()
	s.HasPerformedAutoSelection = true

	log.Debug().
		Str("storyId", s.ID).
		Int("assets", len(s.Assets)).
		Int("minimum", minimum).
		Int("selected", sel.Count()).
		Msg("Auto-selection performed")
}

// ResetStoriesSelections clears every story's selection and re-arms
// auto-selection, e.g. when the order flow is dismissed.
func (m *Manager) ResetStoriesSelections() {
	for _, sel := range m.selections {
		sel.DeselectAll()
	}
	for _, s := range m.stories {
		s.HasPerformedAutoSelection = false
	}
	log.Debug().Int("stories", len(m.stories)).Msg("Story selections reset")
}

// HandleLibraryChange removes deleted assets from the current story and
// notifies album observers. It runs synchronously on the main queue, so the
// story is updated before it returns. It must not be called from the main
// queue itself when that queue is a dispatch.Loop.
func (m *Manager) HandleLibraryChange(change library.ChangeSet) {
	if change.Empty() {
		return
	}

	m.main.Sync(func() {
		s := m.current
		if s == nil || len(s.Assets) == 0 {
			return
		}

		var indices []int
		for i, a := range s.Assets {
			if change.IsDeleted(a.ID) {
				indices = append(indices, i)
			}
		}
		if len(indices) == 0 {
			return
		}

		removed := make([]Asset, len(indices))
		ids := make([]string, len(indices))
		for k := len(indices) - 1; k >= 0; k-- {
			i := indices[k]
			removed[k] = s.Assets[i]
			ids[k] = s.Assets[i].ID
			s.Assets = append(s.Assets[:i], s.Assets[i+1:]...)
		}
		deselected := m.SelectedAssets(s).Deselect(ids...)

		log.Info().
			Str("storyId", s.ID).
			Int("removed", len(removed)).
			Int("deselected", deselected).
			Msg("Deleted photos removed from current story")

		m.observers.albumsUpdated(AlbumChange{
			StoryID:        s.ID,
			Removed:        removed,
			RemovedIndices: indices,
		})
	})
}
