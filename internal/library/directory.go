package library

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fpang/photobook-stories/internal/filehandler"
)

// dayLayout names day-based moments and detects date-only folder names.
const dayLayout = "2006-01-02"

// ScanDirectory builds a Snapshot from a folder of photos.
//
// Layout:
//   - every top-level folder is a moment cluster titled by the folder name;
//     a folder named only by a date (2024-05-01) has no title
//   - every sub-folder of a cluster is a moment titled by the sub-folder name
//   - loose photos in a cluster folder form one untitled moment per capture day
//
// Photos directly under root belong to no cluster and are ignored. Asset IDs
// are slash-separated paths relative to root.
func ScanDirectory(root string) (*Snapshot, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve library root: %w", err)
	}

	images, err := filehandler.ScanImages(absRoot, filehandler.ScanOptions{})
	if err != nil {
		return nil, err
	}

	type momentAcc struct {
		moment Moment
		first  time.Time
	}
	clusterMoments := make(map[string]map[string]*momentAcc)
	var clusterOrder []string
	skipped := 0

	for _, img := range images {
		rel, err := filepath.Rel(absRoot, img.Path)
		if err != nil {
			skipped++
			continue
		}
		id := filepath.ToSlash(rel)
		parts := strings.Split(id, "/")
		if len(parts) < 2 {
			skipped++
			continue
		}

		date := img.CaptureDate()
		clusterName := parts[0]

		var momentID, momentTitle string
		if len(parts) >= 3 {
			momentID = parts[0] + "/" + parts[1]
			momentTitle = parts[1]
		} else {
			momentID = parts[0] + "@" + date.Format(dayLayout)
		}

		moments, ok := clusterMoments[clusterName]
		if !ok {
			moments = make(map[string]*momentAcc)
			clusterMoments[clusterName] = moments
			clusterOrder = append(clusterOrder, clusterName)
		}
		acc, ok := moments[momentID]
		if !ok {
			acc = &momentAcc{moment: Moment{ID: momentID, Title: momentTitle}, first: date}
			moments[momentID] = acc
		}
		if date.Before(acc.first) {
			acc.first = date
		}
		acc.moment.Assets = append(acc.moment.Assets, AssetDescriptor{
			ID:           id,
			CreationDate: date,
			MediaType:    MediaTypeImage,
		})
	}

	clusters := make([]MomentCluster, 0, len(clusterOrder))
	for _, name := range clusterOrder {
		accs := make([]*momentAcc, 0, len(clusterMoments[name]))
		for _, acc := range clusterMoments[name] {
			accs = append(accs, acc)
		}
		sort.Slice(accs, func(i, j int) bool {
			if accs[i].first.Equal(accs[j].first) {
				return accs[i].moment.ID < accs[j].moment.ID
			}
			return accs[i].first.Before(accs[j].first)
		})

		cluster := MomentCluster{ID: name, Title: clusterTitle(name)}
		for _, acc := range accs {
			assets := acc.moment.Assets
			sort.SliceStable(assets, func(i, j int) bool {
				return assets[i].CreationDate.Before(assets[j].CreationDate)
			})
			for _, a := range assets {
				if cluster.StartDate.IsZero() || a.CreationDate.Before(cluster.StartDate) {
					cluster.StartDate = a.CreationDate
				}
				if a.CreationDate.After(cluster.EndDate) {
					cluster.EndDate = a.CreationDate
				}
			}
			cluster.Moments = append(cluster.Moments, acc.moment)
		}
		clusters = append(clusters, cluster)
	}

	log.Info().
		Str("root", absRoot).
		Int("clusters", len(clusters)).
		Int("images", len(images)).
		Int("skipped", skipped).
		Msg("Directory library built")

	return NewSnapshot(clusters), nil
}

// clusterTitle returns the folder name unless it is just a date.
func clusterTitle(folder string) string {
	if _, err := time.Parse(dayLayout, folder); err == nil {
		return ""
	}
	return folder
}
