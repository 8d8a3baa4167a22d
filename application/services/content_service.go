package services

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"circulate-backend/application/ports"
	"circulate-backend/domain/model"
	"circulate-backend/pkg/errors"
	"circulate-backend/pkg/utils"
)

// CreateContentRequest is the payload for posting content into circles.
// DateTime present makes the content an event.
type CreateContentRequest struct {
	Title       string   `json:"title" validate:"required,min=1,max=200"`
	CircleIDs   []string `json:"circleIds" validate:"required,min=1,dive,required"`
	DateTime    *string  `json:"dateTime" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Description string   `json:"description" validate:"max=2000"`
	Link        string   `json:"link" validate:"omitempty,url"`
	Privacy     string   `json:"privacy" validate:"required,oneof=private public"`
	Categories  []string `json:"categories" validate:"max=10,dive,max=50"`
}

// ContentService implements the content use cases.
type ContentService struct {
	content ports.ContentRepository
	circles ports.CircleRepository
	logger  *zap.Logger
}

// NewContentService builds a ContentService.
func NewContentService(content ports.ContentRepository, circles ports.CircleRepository, logger *zap.Logger) *ContentService {
	return &ContentService{content: content, circles: circles, logger: logger}
}

// Create stores a post or event and records it on every target circle. The
// caller must be a member of each target circle.
func (s *ContentService) Create(ctx context.Context, userID string, req CreateContentRequest) (*model.Content, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	circles, err := s.circles.BatchGetByIDs(ctx, req.CircleIDs)
	if err != nil {
		return nil, err
	}
	for _, id := range req.CircleIDs {
		circle, ok := circles[id]
		if !ok {
			return nil, errors.NewNotFoundError("circle " + id + " not found")
		}
		if !circle.HasMember(userID) {
			return nil, errors.NewUnauthorizedError("not a member of circle " + id)
		}
	}

	now := time.Now().UTC()
	content := &model.Content{
		ID:          uuid.New().String(),
		CreatedBy:   userID,
		Title:       req.Title,
		CircleIDs:   req.CircleIDs,
		Description: req.Description,
		Link:        req.Link,
		Privacy:     model.Privacy(req.Privacy),
		Categories:  req.Categories,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.DateTime != nil {
		when, err := utils.ParseRFC3339(*req.DateTime)
		if err != nil {
			return nil, errors.NewValidationError("dateTime must be RFC3339")
		}
		content.DateTime = &when
	}

	if err := s.content.Create(ctx, content); err != nil {
		return nil, err
	}

	for _, id := range req.CircleIDs {
		if err := s.circles.AppendContent(ctx, id, content.ID); err != nil {
			return nil, errors.Wrapf(err, "append content to circle %s", id)
		}
	}

	s.logger.Info("content created",
		zap.String("contentId", content.ID),
		zap.String("userId", userID),
		zap.Int("circles", len(req.CircleIDs)),
		zap.Bool("event", content.IsEvent()))
	return content, nil
}

// Get returns a piece of content. Private content is visible only to
// members of at least one of its circles.
func (s *ContentService) Get(ctx context.Context, userID, contentID string) (*model.Content, error) {
	content, err := s.content.GetByID(ctx, contentID)
	if err != nil {
		return nil, err
	}
	if content.Privacy == model.PrivacyPublic || content.CreatedBy == userID {
		return content, nil
	}

	circles, err := s.circles.BatchGetByIDs(ctx, content.CircleIDs)
	if err != nil {
		return nil, err
	}
	for _, circle := range circles {
		if circle.HasMember(userID) {
			return content, nil
		}
	}
	return nil, errors.NewUnauthorizedError("no shared circle with this content")
}

// ListMyEvents returns upcoming events across every circle the caller
// belongs to, ordered by start time.
func (s *ContentService) ListMyEvents(ctx context.Context, userID string) ([]*model.Content, error) {
	circles, err := s.circles.ListByMember(ctx, userID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	ids := make([]string, 0)
	for _, circle := range circles {
		for _, id := range circle.ContentIDs {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return []*model.Content{}, nil
	}

	resolved, err := s.content.BatchGetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	events := make([]*model.Content, 0)
	for _, item := range resolved {
		if item.IsEvent() && item.DateTime.After(now) {
			events = append(events, item)
		}
	}
	sort.Slice(events, func(i, j int) bool { return events[i].DateTime.Before(*events[j].DateTime) })
	return events, nil
}
