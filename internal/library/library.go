// Package library models the photo library the story engine reads from:
// moment clusters, the moments inside them, and the image assets of each
// moment. Implementations are snapshots (in memory, on disk, in S3) of a
// device library; the engine never talks to a platform API directly.
package library

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// Media types carried by AssetDescriptor.MediaType.
const (
	MediaTypeImage = "image"
	MediaTypeVideo = "video"
)

// AssetDescriptor identifies a single library asset.
type AssetDescriptor struct {
	ID           string    `json:"id"`
	CreationDate time.Time `json:"creationDate"`
	MediaType    string    `json:"mediaType"`
}

// IsImage reports whether the asset is a still image. An empty media type
// is treated as an image.
func (a AssetDescriptor) IsImage() bool {
	return a.MediaType == "" || a.MediaType == MediaTypeImage
}

// Moment is a group of assets taken at one place and time.
type Moment struct {
	ID     string            `json:"id"`
	Title  string            `json:"title,omitempty"`
	Assets []AssetDescriptor `json:"assets,omitempty"`
}

// ImageCount returns the number of image assets in the moment.
func (m Moment) ImageCount() int {
	n := 0
	for _, a := range m.Assets {
		if a.IsImage() {
			n++
		}
	}
	return n
}

// MomentCluster groups consecutive moments, e.g. a trip. A zero StartDate or
// EndDate means the date is unknown.
type MomentCluster struct {
	ID        string    `json:"id"`
	Title     string    `json:"title,omitempty"`
	StartDate time.Time `json:"startDate,omitempty"`
	EndDate   time.Time `json:"endDate,omitempty"`
	Moments   []Moment  `json:"moments,omitempty"`
}

// Library is the photo-library collaborator.
//
// MomentClusters returns clusters whose start date is not before since,
// sorted by end date descending. Moments and Assets fill in the children of a
// cluster and the image-only assets of a moment. All Get-style methods return
// an empty slice and a nil error for unknown identifiers.
type Library interface {
	MomentClusters(ctx context.Context, since time.Time) ([]MomentCluster, error)
	Moments(ctx context.Context, clusterID string) ([]Moment, error)
	Assets(ctx context.Context, momentID string) ([]AssetDescriptor, error)
}

// Load fetches clusters starting at or after since and fills in their moments
// and image assets, producing the snapshot handed to the ranker.
// A cluster whose children cannot be fetched is skipped; only a failure to
// list clusters is returned.
func Load(ctx context.Context, lib Library, since time.Time) ([]MomentCluster, error) {
	clusters, err := lib.MomentClusters(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("fetch moment clusters: %w", err)
	}

	loaded := make([]MomentCluster, 0, len(clusters))
	for _, cluster := range clusters {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		moments, err := lib.Moments(ctx, cluster.ID)
		if err != nil {
			log.Warn().Err(err).Str("clusterId", cluster.ID).Msg("Failed to fetch moments, skipping cluster")
			continue
		}

		ok := true
		for i := range moments {
			assets, err := lib.Assets(ctx, moments[i].ID)
			if err != nil {
				log.Warn().Err(err).Str("clusterId", cluster.ID).Str("momentId", moments[i].ID).Msg("Failed to fetch assets, skipping cluster")
				ok = false
				break
			}
			moments[i].Assets = assets
		}
		if !ok {
			continue
		}

		cluster.Moments = moments
		loaded = append(loaded, cluster)
	}

	log.Debug().Int("clusters", len(loaded)).Time("since", since).Msg("Library snapshot loaded")
	return loaded, nil
}
