package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"circulate-backend/application/services"
	"circulate-backend/infrastructure/di"
)

var (
	container   *di.Container
	userService *services.UserService
)

// init runs during cold start
func init() {
	var err error
	container, err = di.InitializeContainer(context.Background())
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	userService = container.UserService
}

// Handler mirrors a confirmed Cognito user into the users table. The event
// must be returned unchanged or the sign-up flow breaks.
func Handler(ctx context.Context, event events.CognitoEventUserPoolsPostConfirmation) (events.CognitoEventUserPoolsPostConfirmation, error) {
	attrs := event.Request.UserAttributes

	req := services.SyncRequest{
		ID:        attrs["sub"],
		Email:     attrs["email"],
		FirstName: attrs["given_name"],
		LastName:  attrs["family_name"],
	}

	if err := userService.Sync(ctx, req); err != nil {
		container.Logger.Error("user sync failed",
			zap.String("userId", req.ID),
			zap.Error(err))
		return event, err
	}

	return event, nil
}

func main() {
	lambda.Start(Handler)
}
