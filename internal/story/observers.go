package story

import "sync"

// AlbumChange describes assets removed from (or inserted into) a story after
// a photo-library change. Indices refer to the story's asset list before the
// change.
type AlbumChange struct {
	StoryID         string
	Removed         []Asset
	RemovedIndices  []int
	Inserted        []Asset
	InsertedIndices []int
}

// StoriesUpdatedFunc receives the new cache after a ranking pass changed it.
type StoriesUpdatedFunc func(stories []*Story)

// AlbumsUpdatedFunc receives album changes of the current story.
type AlbumsUpdatedFunc func(change AlbumChange)

// observers is the registration list for manager notifications.
type observers struct {
	mu      sync.Mutex
	nextID  int
	stories map[int]StoriesUpdatedFunc
	albums  map[int]AlbumsUpdatedFunc
}

func (o *observers) addStories(fn StoriesUpdatedFunc) func() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.stories == nil {
		o.stories = make(map[int]StoriesUpdatedFunc)
	}
	id := o.nextID
	o.nextID++
	o.stories[id] = fn
	return func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		delete(o.stories, id)
	}
}

func (o *observers) addAlbums(fn AlbumsUpdatedFunc) func() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.albums == nil {
		o.albums = make(map[int]AlbumsUpdatedFunc)
	}
	id := o.nextID
	o.nextID++
	o.albums[id] = fn
	return func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		delete(o.albums, id)
	}
}

func (o *observers) storiesUpdated(stories []*Story) {
	o.mu.Lock()
	fns := make([]StoriesUpdatedFunc, 0, len(o.stories))
	for _, fn := range o.stories {
		fns = append(fns, fn)
	}
	o.mu.Unlock()

	for _, fn := range fns {
		fn(stories)
	}
}

func (o *observers) albumsUpdated(change AlbumChange) {
	o.mu.Lock()
	fns := make([]AlbumsUpdatedFunc, 0, len(o.albums))
	for _, fn := range o.albums {
		fns = append(fns, fn)
	}
	o.mu.Unlock()

	for _, fn := range fns {
		fn(change)
	}
}
