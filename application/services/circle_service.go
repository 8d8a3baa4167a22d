// Package services holds the application use cases behind the REST
// handlers. Services validate input, enforce authorization, and delegate
// persistence to the repository ports.
package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"circulate-backend/application/ports"
	"circulate-backend/domain/model"
	"circulate-backend/pkg/errors"
	"circulate-backend/pkg/utils"
)

// CreateCircleRequest is the payload for creating a circle.
type CreateCircleRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"max=500"`
	Frequency   string `json:"frequency" validate:"required,oneof=daily weekly biweekly monthly"`
	Privacy     string `json:"privacy" validate:"required,oneof=private public"`
}

// CircleService implements the circle use cases.
type CircleService struct {
	circles ports.CircleRepository
	logger  *zap.Logger
}

// NewCircleService builds a CircleService.
func NewCircleService(circles ports.CircleRepository, logger *zap.Logger) *CircleService {
	return &CircleService{circles: circles, logger: logger}
}

// Create stores a new circle with the caller as creator and sole member.
func (s *CircleService) Create(ctx context.Context, userID string, req CreateCircleRequest) (*model.Circle, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	circle := &model.Circle{
		ID:                 uuid.New().String(),
		Name:               req.Name,
		Description:        req.Description,
		CreatedBy:          userID,
		Members:            []string{userID},
		ContentIDs:         []string{},
		UpcomingContentIDs: []string{},
		Frequency:          model.Frequency(req.Frequency),
		Privacy:            model.Privacy(req.Privacy),
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.circles.Create(ctx, circle); err != nil {
		return nil, err
	}

	s.logger.Info("circle created",
		zap.String("circleId", circle.ID),
		zap.String("userId", userID))
	return circle, nil
}

// Get returns a circle. Private circles are visible to members only.
func (s *CircleService) Get(ctx context.Context, userID, circleID string) (*model.Circle, error) {
	circle, err := s.circles.GetByID(ctx, circleID)
	if err != nil {
		return nil, err
	}
	if !circle.IsPublic() && !circle.HasMember(userID) {
		return nil, errors.NewUnauthorizedError("not a member of this circle")
	}
	return circle, nil
}

// ListMine returns the circles the caller belongs to.
func (s *CircleService) ListMine(ctx context.Context, userID string) ([]*model.Circle, error) {
	return s.circles.ListByMember(ctx, userID)
}

// ListPublic returns every publicly visible circle.
func (s *CircleService) ListPublic(ctx context.Context) ([]*model.Circle, error) {
	return s.circles.ListPublic(ctx)
}

// Join adds the caller to an existing circle. Knowing the circle id is the
// capability to join; re-joining is a no-op because membership is a set.
func (s *CircleService) Join(ctx context.Context, userID, circleID string) (*model.Circle, error) {
	circle, err := s.circles.GetByID(ctx, circleID)
	if err != nil {
		return nil, err
	}
	if circle.HasMember(userID) {
		return circle, nil
	}
	if err := s.circles.AddMember(ctx, circleID, userID); err != nil {
		return nil, err
	}

	s.logger.Info("member joined circle",
		zap.String("circleId", circleID),
		zap.String("userId", userID))
	circle.Members = append(circle.Members, userID)
	return circle, nil
}

// Leave removes the caller from a circle. The circle is deleted when its
// last member leaves.
func (s *CircleService) Leave(ctx context.Context, userID, circleID string) error {
	circle, err := s.circles.GetByID(ctx, circleID)
	if err != nil {
		return err
	}
	if !circle.HasMember(userID) {
		return errors.NewValidationError("not a member of this circle")
	}

	if len(circle.Members) == 1 {
		if err := s.circles.Delete(ctx, circleID); err != nil {
			return err
		}
		s.logger.Info("last member left, circle deleted",
			zap.String("circleId", circleID),
			zap.String("userId", userID))
		return nil
	}

	if err := s.circles.RemoveMember(ctx, circleID, userID); err != nil {
		return err
	}
	s.logger.Info("member left circle",
		zap.String("circleId", circleID),
		zap.String("userId", userID))
	return nil
}
