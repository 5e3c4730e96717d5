package store

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog/log"
)

// DynamoDB key constants for the single-table design.
const (
	pkPrefix = "RUN#"
	skMeta   = "META"
	skBook   = "BOOK#"

	// maxBatchWrite is the DynamoDB BatchWriteItem limit per call.
	maxBatchWrite = 25
)

// DynamoAPI is the subset of the DynamoDB client the store uses.
type DynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

var _ DynamoAPI = (*dynamodb.Client)(nil)

// DynamoStore implements SelectionStore on a single DynamoDB table.
type DynamoStore struct {
	client    DynamoAPI
	tableName string
	now       func() time.Time
}

// Compile-time interface check.
var _ SelectionStore = (*DynamoStore)(nil)

// NewDynamoStore creates a DynamoStore for the given table.
func NewDynamoStore(client DynamoAPI, tableName string) *DynamoStore {
	return &DynamoStore{
		client:    client,
		tableName: tableName,
		now:       time.Now,
	}
}

func runPK(runID string) string {
	return pkPrefix + runID
}

func (s *DynamoStore) expiresAt() int64 {
	return s.now().Add(RunTTL).Unix()
}

// putItem marshals a record and writes it with PK, SK and TTL.
func (s *DynamoStore) putItem(ctx context.Context, pk, sk string, data any) error {
	item, err := attributevalue.MarshalMap(data)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	item["PK"] = &types.AttributeValueMemberS{Value: pk}
	item["SK"] = &types.AttributeValueMemberS{Value: sk}
	item["expiresAt"] = &types.AttributeValueMemberN{Value: strconv.FormatInt(s.expiresAt(), 10)}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: &s.tableName,
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("PutItem PK=%s SK=%s: %w", pk, sk, err)
	}
	return nil
}

// getItem reads a single record into out. It reports false if the record
// does not exist.
func (s *DynamoStore) getItem(ctx context.Context, pk, sk string, out any) (bool, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: pk},
			"SK": &types.AttributeValueMemberS{Value: sk},
		},
	})
	if err != nil {
		return false, fmt.Errorf("GetItem PK=%s SK=%s: %w", pk, sk, err)
	}
	if result.Item == nil {
		return false, nil
	}
	if err := attributevalue.UnmarshalMap(result.Item, out); err != nil {
		return false, fmt.Errorf("unmarshal PK=%s SK=%s: %w", pk, sk, err)
	}
	return true, nil
}

// queryBySKPrefix returns every item of a run whose SK begins with prefix.
func (s *DynamoStore) queryBySKPrefix(ctx context.Context, runID, skPrefix string) ([]map[string]types.AttributeValue, error) {
	pk := runPK(runID)
	input := &dynamodb.QueryInput{
		TableName:              &s.tableName,
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :skPrefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":       &types.AttributeValueMemberS{Value: pk},
			":skPrefix": &types.AttributeValueMemberS{Value: skPrefix},
		},
	}

	var items []map[string]types.AttributeValue
	for {
		result, err := s.client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("Query PK=%s SK prefix=%s: %w", pk, skPrefix, err)
		}
		items = append(items, result.Items...)

		if result.LastEvaluatedKey == nil {
			break
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}
	return items, nil
}

// batchDeleteKeys deletes items in chunks of maxBatchWrite.
func (s *DynamoStore) batchDeleteKeys(ctx context.Context, keys []map[string]types.AttributeValue) error {
	for i := 0; i < len(keys); i += maxBatchWrite {
		end := min(i+maxBatchWrite, len(keys))

		requests := make([]types.WriteRequest, 0, end-i)
		for _, key := range keys[i:end] {
			requests = append(requests, types.WriteRequest{
				DeleteRequest: &types.DeleteRequest{Key: key},
			})
		}

		_, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{
				s.tableName: requests,
			},
		})
		if err != nil {
			return fmt.Errorf("BatchWriteItem delete (%d items): %w", len(requests), err)
		}
		// Unprocessed items are left to the TTL.
	}
	return nil
}

// --- Run operations ---

func (s *DynamoStore) PutRun(ctx context.Context, run *Run) error {
	if run.CreatedAt == 0 {
		run.CreatedAt = s.now().Unix()
	}
	if err := s.putItem(ctx, runPK(run.ID), skMeta, run); err != nil {
		return fmt.Errorf("put run %s: %w", run.ID, err)
	}
	log.Debug().Str("runId", run.ID).Str("status", run.Status).Int("stories", len(run.Stories)).Msg("Run saved")
	return nil
}

func (s *DynamoStore) GetRun(ctx context.Context, runID string) (*Run, error) {
	var run Run
	found, err := s.getItem(ctx, runPK(runID), skMeta, &run)
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", runID, err)
	}
	if !found {
		return nil, nil
	}
	run.ID = runID
	return &run, nil
}

func (s *DynamoStore) UpdateRunStatus(ctx context.Context, runID, status, errMsg string) error {
	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: runPK(runID)},
			"SK": &types.AttributeValueMemberS{Value: skMeta},
		},
		UpdateExpression: aws.String("SET #s = :s, #e = :e"),
		ExpressionAttributeNames: map[string]string{
			"#s": "status", // reserved word
			"#e": "error",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":s": &types.AttributeValueMemberS{Value: status},
			":e": &types.AttributeValueMemberS{Value: errMsg},
		},
	})
	if err != nil {
		return fmt.Errorf("update run status %s -> %s: %w", runID, status, err)
	}

	log.Debug().Str("runId", runID).Str("status", status).Msg("Run status updated")
	return nil
}

// --- Book selection operations ---

func (s *DynamoStore) PutBookSelection(ctx context.Context, runID string, sel *BookSelection) error {
	if sel.CreatedAt == 0 {
		sel.CreatedAt = s.now().Unix()
	}
	if err := s.putItem(ctx, runPK(runID), skBook+sel.StoryID, sel); err != nil {
		return fmt.Errorf("put book selection %s/%s: %w", runID, sel.StoryID, err)
	}
	log.Debug().Str("runId", runID).Str("storyId", sel.StoryID).Int("assets", len(sel.AssetIDs)).Msg("Book selection saved")
	return nil
}

func (s *DynamoStore) GetBookSelection(ctx context.Context, runID, storyID string) (*BookSelection, error) {
	var sel BookSelection
	found, err := s.getItem(ctx, runPK(runID), skBook+storyID, &sel)
	if err != nil {
		return nil, fmt.Errorf("get book selection %s/%s: %w", runID, storyID, err)
	}
	if !found {
		return nil, nil
	}
	sel.StoryID = storyID
	sel.RunID = runID
	return &sel, nil
}

func (s *DynamoStore) ListBookSelections(ctx context.Context, runID string) ([]*BookSelection, error) {
	items, err := s.queryBySKPrefix(ctx, runID, skBook)
	if err != nil {
		return nil, fmt.Errorf("list book selections %s: %w", runID, err)
	}

	selections := make([]*BookSelection, 0, len(items))
	for _, item := range items {
		var sel BookSelection
		if err := attributevalue.UnmarshalMap(item, &sel); err != nil {
			return nil, fmt.Errorf("unmarshal book selection in %s: %w", runID, err)
		}
		if sk, ok := item["SK"].(*types.AttributeValueMemberS); ok {
			sel.StoryID = strings.TrimPrefix(sk.Value, skBook)
		}
		sel.RunID = runID
		selections = append(selections, &sel)
	}
	sort.Slice(selections, func(i, j int) bool {
		return selections[i].StoryID < selections[j].StoryID
	})
	return selections, nil
}

func (s *DynamoStore) ResetSelections(ctx context.Context, runID string) ([]string, error) {
	items, err := s.queryBySKPrefix(ctx, runID, skBook)
	if err != nil {
		return nil, fmt.Errorf("reset selections %s: %w", runID, err)
	}

	keys := make([]map[string]types.AttributeValue, 0, len(items))
	cleared := make([]string, 0, len(items))
	for _, item := range items {
		sk, ok := item["SK"].(*types.AttributeValueMemberS)
		if !ok {
			continue
		}
		keys = append(keys, map[string]types.AttributeValue{
			"PK": item["PK"],
			"SK": item["SK"],
		})
		cleared = append(cleared, strings.TrimPrefix(sk.Value, skBook))
	}

	if err := s.batchDeleteKeys(ctx, keys); err != nil {
		return nil, fmt.Errorf("reset selections %s: %w", runID, err)
	}
	sort.Strings(cleared)

	log.Info().Str("runId", runID).Int("cleared", len(cleared)).Msg("Book selections reset")
	return cleared, nil
}
