// Package di assembles the application's dependency graph. Providers are
// plain functions so each entrypoint builds only what it needs.
package di

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"

	"circulate-backend/application/circulation"
	"circulate-backend/application/ports"
	"circulate-backend/application/services"
	"circulate-backend/infrastructure/config"
	"circulate-backend/infrastructure/email"
	"circulate-backend/infrastructure/persistence/dynamodb"
	"circulate-backend/interfaces/http/rest"
	"circulate-backend/pkg/auth"
)

// Container holds every constructed dependency.
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	DynamoDBClient *awsdynamodb.Client

	CircleRepository      ports.CircleRepository
	ContentRepository     ports.ContentRepository
	UserRepository        ports.UserRepository
	CirculationRepository ports.CirculationRepository

	Mailer   ports.Mailer
	Renderer ports.DigestRenderer

	CircleService  *services.CircleService
	ContentService *services.ContentService
	UserService    *services.UserService

	Trigger *circulation.Trigger
	Sender  *circulation.Sender

	Router *rest.Router
}

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideMailer picks the mail provider. Development and tests use the
// mock; everything else talks to Mailgun.
func ProvideMailer(cfg *config.Config, logger *zap.Logger) ports.Mailer {
	if cfg.MockMail || cfg.MailgunDomain == "" {
		return email.NewMockProvider(logger)
	}
	return email.NewMailgunProvider(cfg.MailgunDomain, cfg.MailgunAPIKey, logger)
}

// InitializeContainer builds the full dependency graph.
func InitializeContainer(ctx context.Context) (*Container, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := ProvideLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	awsCfg, err := ProvideAWSConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := ProvideDynamoDBClient(awsCfg)

	circleRepo := dynamodb.NewCircleRepository(client, cfg.CirclesTable, logger)
	contentRepo := dynamodb.NewContentRepository(client, cfg.ContentTable, logger)
	userRepo := dynamodb.NewUserRepository(client, cfg.UsersTable, logger)
	circulationRepo := dynamodb.NewCirculationRepository(client, cfg.CirculationsTable, logger)

	mailer := ProvideMailer(cfg, logger)
	renderer, err := email.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("create renderer: %w", err)
	}

	circleService := services.NewCircleService(circleRepo, logger)
	contentService := services.NewContentService(contentRepo, circleRepo, logger)
	userService := services.NewUserService(userRepo, logger)

	trigger := circulation.NewTrigger(circleRepo, circulationRepo, logger)
	sender := circulation.NewSender(circulation.SenderDeps{
		Circles:      circleRepo,
		Content:      contentRepo,
		Users:        userRepo,
		Circulations: circulationRepo,
		Mailer:       mailer,
		Renderer:     renderer,
		FromName:     cfg.MailFromName,
		FromAddr:     cfg.MailFromAddr,
		SendLocation: cfg.SendLocation(),
		Grace:        cfg.DispatchGrace,
		Logger:       logger,
	})

	router := rest.NewRouter(
		circleService,
		contentService,
		userService,
		auth.NewTokenParser(parserSecret(cfg)),
		cfg.EnableCORS,
		logger,
	)

	return &Container{
		Config:                cfg,
		Logger:                logger,
		DynamoDBClient:        client,
		CircleRepository:      circleRepo,
		ContentRepository:     contentRepo,
		UserRepository:        userRepo,
		CirculationRepository: circulationRepo,
		Mailer:                mailer,
		Renderer:              renderer,
		CircleService:         circleService,
		ContentService:        contentService,
		UserService:           userService,
		Trigger:               trigger,
		Sender:                sender,
		Router:                router,
	}, nil
}

// parserSecret returns the HS256 secret for local-dev verification, or
// empty inside Lambda where the gateway authorizer has already verified
// the token.
func parserSecret(cfg *config.Config) string {
	if cfg.IsLambda {
		return ""
	}
	return cfg.JWTSecret
}
