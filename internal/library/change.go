package library

import "sort"

// ChangeSet describes a photo-library change. Only deletions matter to the
// story engine.
type ChangeSet struct {
	deleted map[string]struct{}
}

// NewChangeSet returns a change set deleting the given asset IDs.
func NewChangeSet(deleted ...string) ChangeSet {
	c := ChangeSet{deleted: make(map[string]struct{}, len(deleted))}
	for _, id := range deleted {
		c.deleted[id] = struct{}{}
	}
	return c
}

// IsDeleted reports whether the asset was deleted by this change.
func (c ChangeSet) IsDeleted(assetID string) bool {
	_, ok := c.deleted[assetID]
	return ok
}

// Empty reports whether the change deletes nothing.
func (c ChangeSet) Empty() bool {
	return len(c.deleted) == 0
}

// Deleted returns the deleted asset IDs in sorted order.
func (c ChangeSet) Deleted() []string {
	ids := make([]string, 0, len(c.deleted))
	for id := range c.deleted {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
