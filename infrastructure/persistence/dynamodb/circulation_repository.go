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
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CirculationRepository implements ports.CirculationRepository using
// DynamoDB
type CirculationRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewCirculationRepository creates a new CirculationRepository
func NewCirculationRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.CirculationRepository {
	return &CirculationRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// circulationItem represents the DynamoDB item structure for an
// UpcomingCirculation aggregate
type circulationItem struct {
	Urn               string   `dynamodbav:"Urn"`
	CirculationID     string   `dynamodbav:"CirculationId"`
	UserID            string   `dynamodbav:"UserId"`
	Frequency         string   `dynamodbav:"Frequency"`
	Circles           []string `dynamodbav:"Circles,stringset"`
	DispatchID        string   `dynamodbav:"DispatchId,omitempty"`
	DispatchClaimedAt string   `dynamodbav:"DispatchClaimedAt,omitempty"`
	CreatedAt         string   `dynamodbav:"CreatedAt"`
	UpdatedAt         string   `dynamodbav:"UpdatedAt"`
}

func (i circulationItem) toModel() *model.UpcomingCirculation {
	createdAt, _ := time.Parse(time.RFC3339, i.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339, i.UpdatedAt)

	rec := &model.UpcomingCirculation{
		Urn:           i.Urn,
		CirculationID: i.CirculationID,
		UserID:        i.UserID,
		Frequency:     model.Frequency(i.Frequency),
		Circles:       i.Circles,
		DispatchID:    i.DispatchID,
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	}
	if rec.Circles == nil {
		rec.Circles = []string{}
	}
	if i.DispatchClaimedAt != "" {
		if t, err := time.Parse(time.RFC3339, i.DispatchClaimedAt); err == nil {
			rec.DispatchClaimedAt = &t
		}
	}
	return rec
}

// Upsert atomically creates the (userID, frequency) aggregate seeded with
// circleID, or unions circleID into the existing record's circle set.
//
// A single UpdateItem with ADD on a string set gives create-or-union
// without exception-driven control flow: the urn primary key enforces the
// one-record-per-pair invariant, if_not_exists seeds identity fields on
// first touch only, and ADD on a set is a no-op for an already present
// circle id. Two concurrent content events for the same new pair both
// succeed and converge on one record.
func (r *CirculationRepository) Upsert(ctx context.Context, userID string, frequency model.Frequency, circleID string) error {
	urn := model.CirculationUrn(userID, frequency)
	now := time.Now().Format(time.RFC3339)

	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"Urn": &types.AttributeValueMemberS{Value: urn},
		},
		UpdateExpression: aws.String(
			"ADD Circles :circle " +
				"SET CirculationId = if_not_exists(CirculationId, :cid), " +
				"UserId = if_not_exists(UserId, :uid), " +
				"Frequency = if_not_exists(Frequency, :freq), " +
				"CreatedAt = if_not_exists(CreatedAt, :now), " +
				"UpdatedAt = :now"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":circle": &types.AttributeValueMemberSS{Value: []string{circleID}},
			":cid":    &types.AttributeValueMemberS{Value: uuid.New().String()},
			":uid":    &types.AttributeValueMemberS{Value: userID},
			":freq":   &types.AttributeValueMemberS{Value: string(frequency)},
			":now":    &types.AttributeValueMemberS{Value: now},
		},
	})
	if err != nil {
		r.logger.Error("Failed to upsert upcoming circulation",
			zap.String("urn", urn),
			zap.String("circleID", circleID),
			zap.Error(err),
		)
		return appErrors.NewDatabaseError("upsert upcoming circulation", err)
	}

	r.logger.Debug("Upserted upcoming circulation",
		zap.String("urn", urn),
		zap.String("circleID", circleID),
	)
	return nil
}

// dueFilter OR-combines one frequency clause per due bucket.
func dueFilter(frequencies []model.Frequency) expression.ConditionBuilder {
	filter := expression.Name("Frequency").Equal(expression.Value(string(frequencies[0])))
	for _, f := range frequencies[1:] {
		filter = filter.Or(expression.Name("Frequency").Equal(expression.Value(string(f))))
	}
	return filter
}

// ScanDue returns every aggregate whose frequency is one of frequencies.
func (r *CirculationRepository) ScanDue(ctx context.Context, frequencies []model.Frequency) ([]*model.UpcomingCirculation, error) {
	if len(frequencies) == 0 {
		return nil, nil
	}

	expr, err := expression.NewBuilder().WithFilter(dueFilter(frequencies)).Build()
	if err != nil {
		return nil, appErrors.NewDatabaseError("build circulation scan filter", err)
	}

	var records []*model.UpcomingCirculation
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
			return nil, appErrors.NewDatabaseError("scan upcoming circulations", err)
		}

		for _, raw := range out.Items {
			var item circulationItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				r.logger.Warn("Failed to unmarshal circulation item", zap.Error(err))
				continue
			}
			records = append(records, item.toModel())
		}

		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}

	r.logger.Info("Scanned due circulations",
		zap.Int("count", len(records)),
		zap.Any("frequencies", frequencies),
	)
	return records, nil
}

// Claim stamps the record with dispatchID so a concurrent or replayed
// sender run cannot pick it up while the claim is live. Returns false when
// the record is gone or another run holds a claim younger than grace.
func (r *CirculationRepository) Claim(ctx context.Context, urn, dispatchID string, now time.Time, grace time.Duration) (bool, error) {
	cutoff := now.Add(-grace).Format(time.RFC3339)

	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"Urn": &types.AttributeValueMemberS{Value: urn},
		},
		UpdateExpression: aws.String("SET DispatchId = :dispatch, DispatchClaimedAt = :now"),
		ConditionExpression: aws.String(
			"attribute_exists(Urn) AND " +
				"(attribute_not_exists(DispatchId) OR DispatchClaimedAt < :cutoff OR DispatchId = :dispatch)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":dispatch": &types.AttributeValueMemberS{Value: dispatchID},
			":now":      &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
			":cutoff":   &types.AttributeValueMemberS{Value: cutoff},
		},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			r.logger.Info("Circulation already claimed by a live run",
				zap.String("urn", urn),
			)
			return false, nil
		}
		return false, appErrors.NewDatabaseError("claim upcoming circulation", err)
	}
	return true, nil
}

// BatchDelete removes consumed aggregates by urn
func (r *CirculationRepository) BatchDelete(ctx context.Context, urns []string) error {
	if len(urns) == 0 {
		return nil
	}

	if err := batchDeleteItems(ctx, r.client, r.tableName, stringKeys("Urn", urns)); err != nil {
		return appErrors.NewDatabaseError("batch delete upcoming circulations", err)
	}

	r.logger.Info("Deleted consumed circulations", zap.Int("count", len(urns)))
	return nil
}
