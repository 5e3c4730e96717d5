// Package story turns a photo-library snapshot into ranked "stories" (trips,
// weekends, recent events) and pre-selects a representative, date-ordered set
// of photos from a story to seed a photo book.
//
// Rank is a pure function over library.MomentCluster values. Manager owns the
// cached ranking, hydrates a story's assets on demand and runs the one-shot
// auto-selection.
package story

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/fpang/photobook-stories/internal/library"
)

// Asset is a hydrated story photo.
type Asset struct {
	ID   string    `json:"id"`
	Date time.Time `json:"date"`
}

// State is the position of a story in its selection lifecycle.
type State int

const (
	// StateUnranked is a story not produced by a ranking pass.
	StateUnranked State = iota
	// StateRanked is a cached story whose assets have not been loaded.
	StateRanked
	// StateAssetsLoaded is a story with hydrated assets and no auto-selection.
	StateAssetsLoaded
	// StateAutoSelected is a story whose assets were auto-selected once.
	StateAutoSelected
)

func (s State) String() string {
	switch s {
	case StateRanked:
		return "ranked"
	case StateAssetsLoaded:
		return "assets-loaded"
	case StateAutoSelected:
		return "auto-selected"
	default:
		return "unranked"
	}
}

// Story is a ranked moment cluster.
//
// Score and IsWeekend are written by the ranking pass only. Assets and
// HasPerformedAutoSelection are written by the Manager on its main queue.
type Story struct {
	ID         string
	Title      string
	Subtitle   string
	Components []string
	PhotoCount int
	Score      int
	IsWeekend  bool
	StartDate  time.Time
	EndDate    time.Time

	// CoverMomentID is the first moment of the cluster, used for the cover image.
	CoverMomentID string
	// MomentIDs lists the cluster's moments in library order.
	MomentIDs []string

	Assets                    []Asset
	HasPerformedAutoSelection bool

	ranked bool
}

// State reports where the story is in its selection lifecycle.
func (s *Story) State() State {
	switch {
	case !s.ranked:
		return StateUnranked
	case s.HasPerformedAutoSelection:
		return StateAutoSelected
	case len(s.Assets) > 0:
		return StateAssetsLoaded
	default:
		return StateRanked
	}
}

// LoadAssets hydrates the story's image assets from lib, sorted by date.
// It is a no-op once assets are present.
func (s *Story) LoadAssets(ctx context.Context, lib library.Library) error {
	if len(s.Assets) > 0 {
		return nil
	}
	assets, err := fetchAssets(ctx, lib, s.MomentIDs)
	if err != nil {
		return err
	}
	s.setAssets(assets)
	return nil
}

// setAssets stores hydrated assets unless the story already has some.
func (s *Story) setAssets(assets []Asset) bool {
	if len(s.Assets) > 0 {
		return false
	}
	s.Assets = assets
	return true
}

// fetchAssets reads the image assets of every moment and orders them by date.
func fetchAssets(ctx context.Context, lib library.Library, momentIDs []string) ([]Asset, error) {
	var assets []Asset
	for _, id := range momentIDs {
		descriptors, err := lib.Assets(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("fetch assets of moment %s: %w", id, err)
		}
		for _, d := range descriptors {
			if !d.IsImage() {
				continue
			}
			assets = append(assets, Asset{ID: d.ID, Date: d.CreationDate})
		}
	}
	sortByDate(assets)
	return assets, nil
}

func sortByDate(assets []Asset) {
	sort.SliceStable(assets, func(i, j int) bool {
		return assets[i].Date.Before(assets[j].Date)
	})
}
