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
	sender    *circulation.Sender
)

// init runs during cold start
func init() {
	var err error
	container, err = di.InitializeContainer(context.Background())
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	sender = container.Sender
}

// Handler runs one send cycle per scheduled invocation. Partial failures
// return an error so the schedule's retry picks up the recipients whose
// aggregates were left in place.
func Handler(ctx context.Context, event events.CloudWatchEvent) error {
	container.Logger.Info("scheduled send invocation",
		zap.String("source", event.Source),
		zap.Time("eventTime", event.Time))

	_, err := sender.Run(ctx)
	return err
}

func main() {
	lambda.Start(Handler)
}
