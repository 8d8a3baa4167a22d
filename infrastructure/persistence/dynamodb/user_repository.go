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

// UserRepository implements ports.UserRepository using DynamoDB
type UserRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.UserRepository {
	return &UserRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// userItem represents the DynamoDB item structure for a user
type userItem struct {
	ID        string `dynamodbav:"Id"`
	Email     string `dynamodbav:"Email"`
	FirstName string `dynamodbav:"FirstName"`
	LastName  string `dynamodbav:"LastName"`
	Timezone  string `dynamodbav:"Timezone"`
	CreatedAt string `dynamodbav:"CreatedAt"`
	UpdatedAt string `dynamodbav:"UpdatedAt"`
}

func (i userItem) toModel() *model.User {
	createdAt, _ := time.Parse(time.RFC3339, i.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339, i.UpdatedAt)

	timezone := i.Timezone
	if timezone == "" {
		timezone = model.DefaultTimezone
	}
	return &model.User{
		ID:        i.ID,
		Email:     i.Email,
		FirstName: i.FirstName,
		LastName:  i.LastName,
		Timezone:  timezone,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

// TIMEZONE is on DynamoDB's reserved-word list, so every raw expression
// touching the attribute has to go through an alias.
const timezoneAlias = "#tz"

var timezoneNames = map[string]string{timezoneAlias: "Timezone"}

// userUpsertExpression rewrites the identity fields every time; profile
// fields the user can edit here (timezone) survive via if_not_exists.
const userUpsertExpression = "SET Email = :email, FirstName = :first, LastName = :last, " +
	timezoneAlias + " = if_not_exists(" + timezoneAlias + ", :tz), " +
	"CreatedAt = if_not_exists(CreatedAt, :now), UpdatedAt = :now"

// Upsert creates or refreshes a user record on authentication.
func (r *UserRepository) Upsert(ctx context.Context, user *model.User) error {
	now := time.Now().Format(time.RFC3339)

	timezone := user.Timezone
	if timezone == "" {
		timezone = model.DefaultTimezone
	}

	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"Id": &types.AttributeValueMemberS{Value: user.ID},
		},
		UpdateExpression:         aws.String(userUpsertExpression),
		ExpressionAttributeNames: timezoneNames,
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":email": &types.AttributeValueMemberS{Value: user.Email},
			":first": &types.AttributeValueMemberS{Value: user.FirstName},
			":last":  &types.AttributeValueMemberS{Value: user.LastName},
			":tz":    &types.AttributeValueMemberS{Value: timezone},
			":now":   &types.AttributeValueMemberS{Value: now},
		},
	})
	if err != nil {
		r.logger.Error("Failed to upsert user",
			zap.String("userID", user.ID),
			zap.Error(err),
		)
		return appErrors.NewDatabaseError("upsert user", err)
	}

	r.logger.Debug("User upserted", zap.String("userID", user.ID))
	return nil
}

// GetByID retrieves a user by id
func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"Id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return nil, appErrors.NewDatabaseError("get user", err)
	}
	if out.Item == nil {
		return nil, appErrors.NewNotFoundError("user")
	}

	var item userItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, appErrors.NewDatabaseError("unmarshal user", err)
	}
	return item.toModel(), nil
}

// BatchGetByIDs resolves many users at once
func (r *UserRepository) BatchGetByIDs(ctx context.Context, ids []string) (map[string]*model.User, error) {
	users := make(map[string]*model.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	items, err := batchGetItems(ctx, r.client, r.tableName, stringKeys("Id", ids))
	if err != nil {
		return nil, appErrors.NewDatabaseError("batch get users", err)
	}

	for _, raw := range items {
		var item userItem
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			r.logger.Warn("Failed to unmarshal user item", zap.Error(err))
			continue
		}
		users[item.ID] = item.toModel()
	}
	return users, nil
}

// buildProfileUpdate assembles the patch expression. The names map is nil
// unless the timezone alias is actually referenced; DynamoDB rejects
// unused attribute names.
func buildProfileUpdate(patch ports.UserProfilePatch, now string) (string, map[string]string, map[string]types.AttributeValue) {
	sets := []string{"UpdatedAt = :now"}
	values := map[string]types.AttributeValue{
		":now": &types.AttributeValueMemberS{Value: now},
	}
	var names map[string]string

	if patch.FirstName != nil {
		sets = append(sets, "FirstName = :first")
		values[":first"] = &types.AttributeValueMemberS{Value: *patch.FirstName}
	}
	if patch.LastName != nil {
		sets = append(sets, "LastName = :last")
		values[":last"] = &types.AttributeValueMemberS{Value: *patch.LastName}
	}
	if patch.Timezone != nil {
		sets = append(sets, timezoneAlias+" = :tz")
		values[":tz"] = &types.AttributeValueMemberS{Value: *patch.Timezone}
		names = timezoneNames
	}

	update := "SET " + sets[0]
	for _, s := range sets[1:] {
		update += ", " + s
	}
	return update, names, values
}

// UpdateProfile patches the mutable profile fields
func (r *UserRepository) UpdateProfile(ctx context.Context, id string, patch ports.UserProfilePatch) error {
	update, names, values := buildProfileUpdate(patch, time.Now().Format(time.RFC3339))

	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"Id": &types.AttributeValueMemberS{Value: id},
		},
		UpdateExpression:          aws.String(update),
		ConditionExpression:       aws.String("attribute_exists(Id)"),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return appErrors.NewNotFoundError("user")
		}
		return appErrors.NewDatabaseError("update user profile", err)
	}
	return nil
}
