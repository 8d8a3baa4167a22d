package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"circulate-backend/application/ports"
	"circulate-backend/domain/model"
	"circulate-backend/pkg/utils"
)

// UpdateProfileRequest carries the mutable profile fields. Absent fields
// are left unchanged.
type UpdateProfileRequest struct {
	FirstName *string `json:"firstName" validate:"omitempty,max=50"`
	LastName  *string `json:"lastName" validate:"omitempty,max=50"`
	Timezone  *string `json:"timezone" validate:"omitempty,timezone"`
}

// SyncRequest carries the identity-provider attributes mirrored on sign-in.
type SyncRequest struct {
	ID        string `validate:"required"`
	Email     string `validate:"required,email"`
	FirstName string
	LastName  string
}

// UserService implements the user use cases.
type UserService struct {
	users  ports.UserRepository
	logger *zap.Logger
}

// NewUserService builds a UserService.
func NewUserService(users ports.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{users: users, logger: logger}
}

// UpdateProfile patches the caller's profile and returns the updated user.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*model.User, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	patch := ports.UserProfilePatch{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Timezone:  req.Timezone,
	}
	if err := s.users.UpdateProfile(ctx, userID, patch); err != nil {
		return nil, err
	}

	s.logger.Info("profile updated", zap.String("userId", userID))
	return s.users.GetByID(ctx, userID)
}

// Sync mirrors the identity provider's record of a user. Called from the
// post-confirmation trigger; existing Timezone and CreatedAt survive.
func (s *UserService) Sync(ctx context.Context, req SyncRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return err
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:        req.ID,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Timezone:  model.DefaultTimezone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.Upsert(ctx, user); err != nil {
		return err
	}

	s.logger.Info("user synced", zap.String("userId", req.ID))
	return nil
}
