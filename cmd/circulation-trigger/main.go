package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"circulate-backend/application/circulation"
	"circulate-backend/infrastructure/di"
)

var (
	container *di.Container
	trigger   *circulation.Trigger
)

// init runs during cold start
func init() {
	var err error
	container, err = di.InitializeContainer(context.Background())
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	trigger = container.Trigger
}

// Handler consumes the content table's stream. Inserts carry the new
// content item's circle ids; everything else (modify, remove) is ignored.
// A returned error makes the platform redeliver the batch, which is safe
// because the fan-out upsert is idempotent.
func Handler(ctx context.Context, event events.DynamoDBEvent) error {
	circleIDs := make([]string, 0)
	for _, record := range event.Records {
		if record.EventName != "INSERT" {
			continue
		}
		circleIDs = append(circleIDs, extractCircleIDs(record.Change.NewImage)...)
	}

	container.Logger.Info("content stream batch received",
		zap.Int("records", len(event.Records)),
		zap.Int("circleIds", len(circleIDs)))

	return trigger.FanOut(ctx, circleIDs)
}

func extractCircleIDs(image map[string]events.DynamoDBAttributeValue) []string {
	attr, ok := image["CircleIds"]
	if !ok || attr.DataType() != events.DataTypeList {
		return nil
	}
	ids := make([]string, 0, len(attr.List()))
	for _, item := range attr.List() {
		if item.DataType() == events.DataTypeString {
			ids = append(ids, item.String())
		}
	}
	return ids
}

func main() {
	lambda.Start(Handler)
}
