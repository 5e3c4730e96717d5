package main

import "github.com/fpang/photobook-stories/internal/store"

// Actions accepted by the handler.
const (
	ActionRank  = "rank"
	ActionReset = "reset"
)

// StoriesEvent is the input payload, sent by the app backend or a schedule.
type StoriesEvent struct {
	Action      string `json:"action,omitempty"`
	RunID       string `json:"runId,omitempty"`
	SnapshotKey string `json:"snapshotKey"`
	Bucket      string `json:"bucket,omitempty"`
	StoryID     string `json:"storyId,omitempty"`
	Limit       int    `json:"limit,omitempty"`
}

// StoriesResult is returned to the caller.
type StoriesResult struct {
	RunID         string              `json:"runId"`
	Stories       []store.RankedStory `json:"stories,omitempty"`
	StoryID       string              `json:"storyId,omitempty"`
	SelectedCount int                 `json:"selectedCount"`
	ClearedCount  int                 `json:"clearedCount,omitempty"`
	Error         string              `json:"error,omitempty"`
}
