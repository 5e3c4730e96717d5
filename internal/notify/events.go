// Package notify fans story engine updates out to EventBridge so the book
// workflow and the apps can react off-process.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	eventbridgetypes "github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/rs/zerolog/log"

	"github.com/fpang/photobook-stories/internal/story"
)

// Source is the EventBridge source of every event.
const Source = "photobook-stories"

// Detail types.
const (
	DetailStoriesUpdated = "StoriesUpdated"
	DetailAlbumUpdated   = "AlbumUpdated"
	DetailSelectionReady = "SelectionReady"
)

// EventPutter is the subset of the EventBridge client used here.
type EventPutter interface {
	PutEvents(ctx context.Context, params *eventbridge.PutEventsInput, optFns ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error)
}

var _ EventPutter = (*eventbridge.Client)(nil)

// StorySummary is the event form of a ranked story.
type StorySummary struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Subtitle   string `json:"subtitle"`
	PhotoCount int    `json:"photoCount"`
	Score      int    `json:"score"`
}

// StoriesUpdated is emitted when a ranking pass changed the cached stories.
type StoriesUpdated struct {
	RunID   string         `json:"runId,omitempty"`
	Stories []StorySummary `json:"stories"`
}

// AlbumUpdated is emitted when deleted photos were removed from a story.
type AlbumUpdated struct {
	RunID           string   `json:"runId,omitempty"`
	StoryID         string   `json:"storyId"`
	RemovedAssetIDs []string `json:"removedAssetIds"`
	RemovedIndices  []int    `json:"removedIndices"`
}

// SelectionReady is emitted when a book selection has been persisted.
type SelectionReady struct {
	RunID        string `json:"runId"`
	StoryID      string `json:"storyId"`
	AssetCount   int    `json:"assetCount"`
	AutoSelected bool   `json:"autoSelected"`
}

// Publisher writes events to one EventBridge bus.
type Publisher struct {
	client  EventPutter
	busName string
}

// NewPublisher creates a Publisher. An empty busName targets the default bus.
func NewPublisher(client EventPutter, busName string) *Publisher {
	return &Publisher{client: client, busName: busName}
}

// Publish marshals detail and puts a single event.
func (p *Publisher) Publish(ctx context.Context, detailType string, detail any) error {
	body, err := json.Marshal(detail)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", detailType, err)
	}

	entry := eventbridgetypes.PutEventsRequestEntry{
		Source:     aws.String(Source),
		DetailType: aws.String(detailType),
		Detail:     aws.String(string(body)),
		Time:       aws.Time(time.Now()),
	}
	if p.busName != "" {
		entry.EventBusName = aws.String(p.busName)
	}

	result, err := p.client.PutEvents(ctx, &eventbridge.PutEventsInput{
		Entries: []eventbridgetypes.PutEventsRequestEntry{entry},
	})
	if err != nil {
		log.Error().Err(err).Str("detailType", detailType).Msg("EventBridge PutEvents failed")
		return fmt.Errorf("PutEvents: %w", err)
	}

	if result.FailedEntryCount > 0 {
		for i, e := range result.Entries {
			if e.ErrorCode != nil || e.ErrorMessage != nil {
				log.Error().
					Int("index", i).
					Str("errorCode", aws.ToString(e.ErrorCode)).
					Str("errorMessage", aws.ToString(e.ErrorMessage)).
					Str("detailType", detailType).
					Msg("EventBridge PutEvents entry failed")
				return fmt.Errorf("PutEvents entry %d failed: %s - %s", i, aws.ToString(e.ErrorCode), aws.ToString(e.ErrorMessage))
			}
		}
	}

	log.Debug().Str("detailType", detailType).Msg("Event emitted to EventBridge")
	return nil
}

// Summarize converts ranked stories to their event form.
func Summarize(stories []*story.Story) []StorySummary {
	out := make([]StorySummary, 0, len(stories))
	for _, s := range stories {
		out = append(out, StorySummary{
			ID:         s.ID,
			Title:      s.Title,
			Subtitle:   s.Subtitle,
			PhotoCount: s.PhotoCount,
			Score:      s.Score,
		})
	}
	return out
}
