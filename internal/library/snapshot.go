package library

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Snapshot is an in-memory Library built from a fully materialised set of
// clusters. It is safe for concurrent use; Remove lets a watcher apply
// deletions while readers are active.
type Snapshot struct {
	mu          sync.RWMutex
	generatedAt time.Time
	clusters    []MomentCluster

	// momentIndex maps a moment ID to its cluster and moment positions.
	momentIndex map[string][2]int
}

// Compile-time interface check.
var _ Library = (*Snapshot)(nil)

// NewSnapshot creates a Snapshot owning the given clusters.
func NewSnapshot(clusters []MomentCluster) *Snapshot {
	return newSnapshotAt(clusters, time.Now().UTC())
}

func newSnapshotAt(clusters []MomentCluster, generatedAt time.Time) *Snapshot {
	s := &Snapshot{
		generatedAt: generatedAt,
		clusters:    clusters,
	}
	s.reindex()
	return s
}

func (s *Snapshot) reindex() {
	s.momentIndex = make(map[string][2]int)
	for ci := range s.clusters {
		for mi := range s.clusters[ci].Moments {
			s.momentIndex[s.clusters[ci].Moments[mi].ID] = [2]int{ci, mi}
		}
	}
}

// GeneratedAt returns when the snapshot was taken.
func (s *Snapshot) GeneratedAt() time.Time {
	return s.generatedAt
}

// MomentClusters returns clusters with a known start date not before since,
// sorted by end date descending. Moments are not included.
func (s *Snapshot) MomentClusters(ctx context.Context, since time.Time) ([]MomentCluster, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []MomentCluster
	for _, c := range s.clusters {
		if c.StartDate.IsZero() || c.StartDate.Before(since) {
			continue
		}
		c.Moments = nil
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EndDate.After(out[j].EndDate)
	})
	return out, nil
}

// Moments returns the moments of a cluster without their assets.
func (s *Snapshot) Moments(ctx context.Context, clusterID string) ([]Moment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.clusters {
		if c.ID != clusterID {
			continue
		}
		out := make([]Moment, len(c.Moments))
		for i, m := range c.Moments {
			out[i] = Moment{ID: m.ID, Title: m.Title}
		}
		return out, nil
	}
	return []Moment{}, nil
}

// Assets returns the image assets of a moment in stored order.
func (s *Snapshot) Assets(ctx context.Context, momentID string) ([]AssetDescriptor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	pos, ok := s.momentIndex[momentID]
	if !ok {
		return []AssetDescriptor{}, nil
	}
	var out []AssetDescriptor
	for _, a := range s.clusters[pos[0]].Moments[pos[1]].Assets {
		if a.IsImage() {
			out = append(out, a)
		}
	}
	return out, nil
}

// Remove deletes assets from the snapshot and returns a ChangeSet holding
// the IDs that were actually present.
func (s *Snapshot) Remove(assetIDs ...string) ChangeSet {
	wanted := NewChangeSet(assetIDs...)

	s.mu.Lock()
	defer s.mu.Unlock()

	var removed []string
	for ci := range s.clusters {
		for mi := range s.clusters[ci].Moments {
			m := &s.clusters[ci].Moments[mi]
			kept := m.Assets[:0]
			for _, a := range m.Assets {
				if wanted.IsDeleted(a.ID) {
					removed = append(removed, a.ID)
					continue
				}
				kept = append(kept, a)
			}
			m.Assets = kept
		}
	}
	return NewChangeSet(removed...)
}

// Clusters returns a copy of every cluster including moments and assets.
func (s *Snapshot) Clusters() []MomentCluster {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]MomentCluster, len(s.clusters))
	for i, c := range s.clusters {
		moments := make([]Moment, len(c.Moments))
		for j, m := range c.Moments {
			moments[j] = Moment{
				ID:     m.ID,
				Title:  m.Title,
				Assets: append([]AssetDescriptor(nil), m.Assets...),
			}
		}
		c.Moments = moments
		out[i] = c
	}
	return out
}

// Len returns the number of clusters in the snapshot.
func (s *Snapshot) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clusters)
}
