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
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// CircleRepository implements ports.CircleRepository using DynamoDB
type CircleRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewCircleRepository creates a new CircleRepository
func NewCircleRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.CircleRepository {
	return &CircleRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// circleItem represents the DynamoDB item structure for a circle
type circleItem struct {
	ID                 string   `dynamodbav:"Id"`
	Name               string   `dynamodbav:"Name"`
	Description        string   `dynamodbav:"Description"`
	CreatedBy          string   `dynamodbav:"CreatedBy"`
	Members            []string `dynamodbav:"Members,stringset"`
	ContentIDs         []string `dynamodbav:"ContentIds"`
	UpcomingContentIDs []string `dynamodbav:"UpcomingContentIds"`
	Frequency          string   `dynamodbav:"Frequency"`
	Privacy            string   `dynamodbav:"Privacy"`
	CreatedAt          string   `dynamodbav:"CreatedAt"`
	UpdatedAt          string   `dynamodbav:"UpdatedAt"`
}

func circleToItem(circle *model.Circle) circleItem {
	return circleItem{
		ID:                 circle.ID,
		Name:               circle.Name,
		Description:        circle.Description,
		CreatedBy:          circle.CreatedBy,
		Members:            circle.Members,
		ContentIDs:         circle.ContentIDs,
		UpcomingContentIDs: circle.UpcomingContentIDs,
		Frequency:          string(circle.Frequency),
		Privacy:            string(circle.Privacy),
		CreatedAt:          circle.CreatedAt.Format(time.RFC3339),
		UpdatedAt:          circle.UpdatedAt.Format(time.RFC3339),
	}
}

func (i circleItem) toModel() *model.Circle {
	createdAt, _ := time.Parse(time.RFC3339, i.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339, i.UpdatedAt)

	circle := &model.Circle{
		ID:                 i.ID,
		Name:               i.Name,
		Description:        i.Description,
		CreatedBy:          i.CreatedBy,
		Members:            i.Members,
		ContentIDs:         i.ContentIDs,
		UpcomingContentIDs: i.UpcomingContentIDs,
		Frequency:          model.Frequency(i.Frequency),
		Privacy:            model.Privacy(i.Privacy),
		CreatedAt:          createdAt,
		UpdatedAt:          updatedAt,
	}

	// Absent collections deserialize to typed empty slices, not nil maps
	// of unknown shape.
	if circle.Members == nil {
		circle.Members = []string{}
	}
	if circle.ContentIDs == nil {
		circle.ContentIDs = []string{}
	}
	if circle.UpcomingContentIDs == nil {
		circle.UpcomingContentIDs = []string{}
	}
	return circle
}

// Create stores a new circle, failing with a conflict when the id exists
func (r *CircleRepository) Create(ctx context.Context, circle *model.Circle) error {
	av, err := attributevalue.MarshalMap(circleToItem(circle))
	if err != nil {
		return appErrors.NewDatabaseError("marshal circle", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(Id)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return appErrors.NewConflictError("circle already exists")
		}
		r.logger.Error("Failed to create circle",
			zap.String("circleID", circle.ID),
			zap.Error(err),
		)
		return appErrors.NewDatabaseError("create circle", err)
	}

	r.logger.Info("Circle created",
		zap.String("circleID", circle.ID),
		zap.String("createdBy", circle.CreatedBy),
	)
	return nil
}

// GetByID retrieves a circle by its id
func (r *CircleRepository) GetByID(ctx context.Context, id string) (*model.Circle, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"Id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return nil, appErrors.NewDatabaseError("get circle", err)
	}
	if out.Item == nil {
		return nil, appErrors.NewNotFoundError("circle")
	}

	var item circleItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, appErrors.NewDatabaseError("unmarshal circle", err)
	}
	return item.toModel(), nil
}

// BatchGetByIDs resolves many circles at once; missing ids are absent from
// the returned map
func (r *CircleRepository) BatchGetByIDs(ctx context.Context, ids []string) (map[string]*model.Circle, error) {
	circles := make(map[string]*model.Circle, len(ids))
	if len(ids) == 0 {
		return circles, nil
	}

	items, err := batchGetItems(ctx, r.client, r.tableName, stringKeys("Id", ids))
	if err != nil {
		return nil, appErrors.NewDatabaseError("batch get circles", err)
	}

	for _, raw := range items {
		var item circleItem
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			r.logger.Warn("Failed to unmarshal circle item", zap.Error(err))
			continue
		}
		circles[item.ID] = item.toModel()
	}
	return circles, nil
}

// ListByMember returns every circle the user belongs to
func (r *CircleRepository) ListByMember(ctx context.Context, userID string) ([]*model.Circle, error) {
	filter := expression.Contains(expression.Name("Members"), userID)
	return r.scan(ctx, filter)
}

// ListPublic returns every publicly visible circle
func (r *CircleRepository) ListPublic(ctx context.Context) ([]*model.Circle, error) {
	filter := expression.Name("Privacy").Equal(expression.Value(string(model.PrivacyPublic)))
	return r.scan(ctx, filter)
}

func (r *CircleRepository) scan(ctx context.Context, filter expression.ConditionBuilder) ([]*model.Circle, error) {
	expr, err := expression.NewBuilder().WithFilter(filter).Build()
	if err != nil {
		return nil, appErrors.NewDatabaseError("build circle scan filter", err)
	}

	var circles []*model.Circle
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:                 aws.String(r.tableName),
			FilterExpression:          expr.Filter(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return nil, appErrors.NewDatabaseError("scan circles", err)
		}

		for _, raw := range out.Items {
			var item circleItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				r.logger.Warn("Failed to unmarshal circle item", zap.Error(err))
				continue
			}
			circles = append(circles, item.toModel())
		}

		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}
	return circles, nil
}

// AddMember unions the user into the circle's member set
func (r *CircleRepository) AddMember(ctx context.Context, circleID, userID string) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"Id": &types.AttributeValueMemberS{Value: circleID},
		},
		UpdateExpression:    aws.String("ADD Members :member SET UpdatedAt = :now"),
		ConditionExpression: aws.String("attribute_exists(Id)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":member": &types.AttributeValueMemberSS{Value: []string{userID}},
			":now":    &types.AttributeValueMemberS{Value: time.Now().Format(time.RFC3339)},
		},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return appErrors.NewNotFoundError("circle")
		}
		return appErrors.NewDatabaseError("add circle member", err)
	}
	return nil
}

// RemoveMember removes the user from the circle's member set
func (r *CircleRepository) RemoveMember(ctx context.Context, circleID, userID string) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"Id": &types.AttributeValueMemberS{Value: circleID},
		},
		UpdateExpression:    aws.String("DELETE Members :member SET UpdatedAt = :now"),
		ConditionExpression: aws.String("attribute_exists(Id)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":member": &types.AttributeValueMemberSS{Value: []string{userID}},
			":now":    &types.AttributeValueMemberS{Value: time.Now().Format(time.RFC3339)},
		},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return appErrors.NewNotFoundError("circle")
		}
		return appErrors.NewDatabaseError("remove circle member", err)
	}
	return nil
}

// AppendContent records a content id on both the full history and the
// unsent list
func (r *CircleRepository) AppendContent(ctx context.Context, circleID, contentID string) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"Id": &types.AttributeValueMemberS{Value: circleID},
		},
		UpdateExpression: aws.String(
			"SET ContentIds = list_append(if_not_exists(ContentIds, :empty), :content), " +
				"UpcomingContentIds = list_append(if_not_exists(UpcomingContentIds, :empty), :content), " +
				"UpdatedAt = :now"),
		ConditionExpression: aws.String("attribute_exists(Id)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":content": &types.AttributeValueMemberL{Value: []types.AttributeValue{
				&types.AttributeValueMemberS{Value: contentID},
			}},
			":empty": &types.AttributeValueMemberL{Value: []types.AttributeValue{}},
			":now":   &types.AttributeValueMemberS{Value: time.Now().Format(time.RFC3339)},
		},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return appErrors.NewNotFoundError("circle")
		}
		return appErrors.NewDatabaseError("append circle content", err)
	}
	return nil
}

// ClearUpcomingContent empties the unsent content list after a send cycle
func (r *CircleRepository) ClearUpcomingContent(ctx context.Context, circleID string) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"Id": &types.AttributeValueMemberS{Value: circleID},
		},
		UpdateExpression: aws.String("SET UpcomingContentIds = :empty, UpdatedAt = :now"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":empty": &types.AttributeValueMemberL{Value: []types.AttributeValue{}},
			":now":   &types.AttributeValueMemberS{Value: time.Now().Format(time.RFC3339)},
		},
	})
	if err != nil {
		return appErrors.NewDatabaseError("clear circle upcoming content", err)
	}

	r.logger.Debug("Cleared upcoming content", zap.String("circleID", circleID))
	return nil
}

// Delete removes a circle
func (r *CircleRepository) Delete(ctx context.Context, id string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"Id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return appErrors.NewDatabaseError("delete circle", err)
	}

	r.logger.Info("Circle deleted", zap.String("circleID", id))
	return nil
}
