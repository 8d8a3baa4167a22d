package dynamodb

import (
	"context"
	"errors"
	"time"

	"circulate-backend/application/ports"
	"circulate-backend/domain/model"
	appErrors "circulate-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// ContentRepository implements ports.ContentRepository using DynamoDB
type ContentRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewContentRepository creates a new ContentRepository
func NewContentRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.ContentRepository {
	return &ContentRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// contentItem represents the DynamoDB item structure for content
type contentItem struct {
	ID          string   `dynamodbav:"Id"`
	CreatedBy   string   `dynamodbav:"CreatedBy"`
	Title       string   `dynamodbav:"Title"`
	CircleIDs   []string `dynamodbav:"CircleIds"`
	DateTime    *string  `dynamodbav:"DateTime,omitempty"`
	Description string   `dynamodbav:"Description"`
	Link        string   `dynamodbav:"Link"`
	Privacy     string   `dynamodbav:"Privacy"`
	Categories  []string `dynamodbav:"Categories,stringset,omitempty"`
	CreatedAt   string   `dynamodbav:"CreatedAt"`
	UpdatedAt   string   `dynamodbav:"UpdatedAt"`
}

func contentToItem(content *model.Content) contentItem {
	item := contentItem{
		ID:          content.ID,
		CreatedBy:   content.CreatedBy,
		Title:       content.Title,
		CircleIDs:   content.CircleIDs,
		Description: content.Description,
		Link:        content.Link,
		Privacy:     string(content.Privacy),
		Categories:  content.Categories,
		CreatedAt:   content.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   content.UpdatedAt.Format(time.RFC3339),
	}
	if content.DateTime != nil {
		dt := content.DateTime.Format(time.RFC3339)
		item.DateTime = &dt
	}
	return item
}

func (i contentItem) toModel() *model.Content {
	createdAt, _ := time.Parse(time.RFC3339, i.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339, i.UpdatedAt)

	content := &model.Content{
		ID:          i.ID,
		CreatedBy:   i.CreatedBy,
		Title:       i.Title,
		CircleIDs:   i.CircleIDs,
		Description: i.Description,
		Link:        i.Link,
		Privacy:     model.Privacy(i.Privacy),
		Categories:  i.Categories,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
	if i.DateTime != nil {
		if dt, err := time.Parse(time.RFC3339, *i.DateTime); err == nil {
			content.DateTime = &dt
		}
	}
	if content.CircleIDs == nil {
		content.CircleIDs = []string{}
	}
	if content.Categories == nil {
		content.Categories = []string{}
	}
	return content
}

// Create stores a new piece of content
func (r *ContentRepository) Create(ctx context.Context, content *model.Content) error {
	av, err := attributevalue.MarshalMap(contentToItem(content))
	if err != nil {
		return appErrors.NewDatabaseError("marshal content", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(Id)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return appErrors.NewConflictError("content already exists")
		}
		r.logger.Error("Failed to create content",
			zap.String("contentID", content.ID),
			zap.Error(err),
		)
		return appErrors.NewDatabaseError("create content", err)
	}

	r.logger.Info("Content created",
		zap.String("contentID", content.ID),
		zap.Strings("circleIDs", content.CircleIDs),
		zap.Bool("event", content.IsEvent()),
	)
	return nil
}

// GetByID retrieves content by its id
func (r *ContentRepository) GetByID(ctx context.Context, id string) (*model.Content, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"Id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return nil, appErrors.NewDatabaseError("get content", err)
	}
	if out.Item == nil {
		return nil, appErrors.NewNotFoundError("content")
	}

	var item contentItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, appErrors.NewDatabaseError("unmarshal content", err)
	}
	return item.toModel(), nil
}

// BatchGetByIDs resolves many content records at once
func (r *ContentRepository) BatchGetByIDs(ctx context.Context, ids []string) (map[string]*model.Content, error) {
	content := make(map[string]*model.Content, len(ids))
	if len(ids) == 0 {
		return content, nil
	}

	items, err := batchGetItems(ctx, r.client, r.tableName, stringKeys("Id", ids))
	if err != nil {
		return nil, appErrors.NewDatabaseError("batch get content", err)
	}

	for _, raw := range items {
		var item contentItem
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			r.logger.Warn("Failed to unmarshal content item", zap.Error(err))
			continue
		}
		content[item.ID] = item.toModel()
	}
	return content, nil
}

// Delete removes a piece of content
func (r *ContentRepository) Delete(ctx context.Context, id string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"Id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return appErrors.NewDatabaseError("delete content", err)
	}
	return nil
}
