package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	// batchGetCeiling is DynamoDB's hard item-count limit per BatchGetItem.
	batchGetCeiling = 100
	// batchWriteCeiling is DynamoDB's hard limit per BatchWriteItem.
	batchWriteCeiling = 25
	// unprocessedRetries bounds re-issuing of keys the service returned
	// unprocessed under throttling.
	unprocessedRetries = 3
)

// batchGetItems fetches every key from one table, chunking below the
// service ceiling and re-issuing unprocessed keys.
func batchGetItems(ctx context.Context, client *dynamodb.Client, tableName string, keys []map[string]types.AttributeValue) ([]map[string]types.AttributeValue, error) {
	var items []map[string]types.AttributeValue

	for start := 0; start < len(keys); start += batchGetCeiling {
		end := start + batchGetCeiling
		if end > len(keys) {
			end = len(keys)
		}
		pending := keys[start:end]

		for attempt := 0; len(pending) > 0; attempt++ {
			if attempt > unprocessedRetries {
				return nil, fmt.Errorf("batch get left %d keys unprocessed after %d retries", len(pending), unprocessedRetries)
			}

			out, err := client.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{
				RequestItems: map[string]types.KeysAndAttributes{
					tableName: {Keys: pending},
				},
			})
			if err != nil {
				return nil, fmt.Errorf("batch get from %s: %w", tableName, err)
			}

			items = append(items, out.Responses[tableName]...)
			pending = out.UnprocessedKeys[tableName].Keys
		}
	}

	return items, nil
}

// batchDeleteItems deletes every key from one table, chunking below the
// service ceiling and re-issuing unprocessed requests.
func batchDeleteItems(ctx context.Context, client *dynamodb.Client, tableName string, keys []map[string]types.AttributeValue) error {
	for start := 0; start < len(keys); start += batchWriteCeiling {
		end := start + batchWriteCeiling
		if end > len(keys) {
			end = len(keys)
		}

		pending := make([]types.WriteRequest, 0, end-start)
		for _, key := range keys[start:end] {
			pending = append(pending, types.WriteRequest{
				DeleteRequest: &types.DeleteRequest{Key: key},
			})
		}

		for attempt := 0; len(pending) > 0; attempt++ {
			if attempt > unprocessedRetries {
				return fmt.Errorf("batch delete left %d requests unprocessed after %d retries", len(pending), unprocessedRetries)
			}

			out, err := client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
				RequestItems: map[string][]types.WriteRequest{
					tableName: pending,
				},
			})
			if err != nil {
				return fmt.Errorf("batch delete from %s: %w", tableName, err)
			}

			pending = out.UnprocessedItems[tableName]
		}
	}

	return nil
}

// stringKeys builds single-attribute string keys for a batch call.
func stringKeys(attr string, ids []string) []map[string]types.AttributeValue {
	keys := make([]map[string]types.AttributeValue, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, map[string]types.AttributeValue{
			attr: &types.AttributeValueMemberS{Value: id},
		})
	}
	return keys
}
