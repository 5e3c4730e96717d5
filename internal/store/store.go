// Package store hands auto-selected stories over to the book workflow.
//
// A ranking run is persisted as a single-table DynamoDB partition
// (RUN#{runId}). The META record carries the run status and the ranked
// stories; each story the user (or the Lambda) prepared gets a BOOK#{storyId}
// record holding its selected asset IDs. A TTL attribute (expiresAt) removes
// runs once the order window has passed.
package store

import (
	"context"
	"time"
)

// RunTTL is how long run records live.
const RunTTL = 72 * time.Hour

// Run statuses.
const (
	StatusProcessing = "processing"
	StatusComplete   = "complete"
	StatusError      = "error"
)

// SelectionStore persists ranking runs and the book selections made from
// them. Each method is safe for concurrent use.
//
// All Get methods return (nil, nil) when the record does not exist.
// All Put methods perform full-item replacement.
type SelectionStore interface {
	// PutRun creates or replaces a run's metadata.
	PutRun(ctx context.Context, run *Run) error

	// GetRun retrieves run metadata by ID.
	GetRun(ctx context.Context, runID string) (*Run, error)

	// UpdateRunStatus updates the status and error fields only.
	UpdateRunStatus(ctx context.Context, runID, status, errMsg string) error

	// PutBookSelection creates or replaces the selection of one story.
	PutBookSelection(ctx context.Context, runID string, sel *BookSelection) error

	// GetBookSelection retrieves the selection of one story.
	GetBookSelection(ctx context.Context, runID, storyID string) (*BookSelection, error)

	// ListBookSelections returns every selection of a run, ordered by story ID.
	ListBookSelections(ctx context.Context, runID string) ([]*BookSelection, error)

	// ResetSelections deletes every selection of a run and returns the
	// story IDs that were cleared. The run itself is kept.
	ResetSelections(ctx context.Context, runID string) ([]string, error)
}

// Run is the metadata of one ranking pass (SK = META). ID is derived from the
// partition key.
type Run struct {
	ID            string        `json:"id" dynamodbav:"-"`
	Status        string        `json:"status" dynamodbav:"status"`
	SnapshotKey   string        `json:"snapshotKey,omitempty" dynamodbav:"snapshotKey,omitempty"`
	MinimumAssets int           `json:"minimumAssets" dynamodbav:"minimumAssets"`
	Stories       []RankedStory `json:"stories,omitempty" dynamodbav:"stories,omitempty"`
	Error         string        `json:"error,omitempty" dynamodbav:"error,omitempty"`
	CreatedAt     int64         `json:"createdAt" dynamodbav:"createdAt"`
}

// RankedStory is the persisted summary of a ranked story.
type RankedStory struct {
	ID         string `json:"id" dynamodbav:"id"`
	Title      string `json:"title" dynamodbav:"title"`
	Subtitle   string `json:"subtitle" dynamodbav:"subtitle"`
	PhotoCount int    `json:"photoCount" dynamodbav:"photoCount"`
	Score      int    `json:"score" dynamodbav:"score"`
	IsWeekend  bool   `json:"isWeekend,omitempty" dynamodbav:"isWeekend,omitempty"`
}

// BookSelection is the date-ordered asset selection of a story
// (SK = BOOK#{storyId}). StoryID and RunID are derived from the keys.
type BookSelection struct {
	StoryID      string   `json:"storyId" dynamodbav:"-"`
	RunID        string   `json:"-" dynamodbav:"-"`
	Title        string   `json:"title" dynamodbav:"title"`
	Subtitle     string   `json:"subtitle" dynamodbav:"subtitle"`
	AssetIDs     []string `json:"assetIds" dynamodbav:"assetIds"`
	AutoSelected bool     `json:"autoSelected" dynamodbav:"autoSelected"`
	CreatedAt    int64    `json:"createdAt" dynamodbav:"createdAt"`
}
