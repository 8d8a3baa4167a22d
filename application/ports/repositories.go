// Package ports defines the interfaces the application layer depends on.
// Infrastructure packages provide the implementations.
package ports

import (
	"context"
	"time"

	"circulate-backend/domain/model"
)

// CircleRepository persists circles.
type CircleRepository interface {
	// Create stores a new circle; returns a conflict error when the id
	// already exists.
	Create(ctx context.Context, circle *model.Circle) error
	GetByID(ctx context.Context, id string) (*model.Circle, error)
	// BatchGetByIDs resolves many circles at once; absent ids are simply
	// missing from the returned map.
	BatchGetByIDs(ctx context.Context, ids []string) (map[string]*model.Circle, error)
	ListByMember(ctx context.Context, userID string) ([]*model.Circle, error)
	ListPublic(ctx context.Context) ([]*model.Circle, error)
	AddMember(ctx context.Context, circleID, userID string) error
	RemoveMember(ctx context.Context, circleID, userID string) error
	// AppendContent records a new content id on both the full history and
	// the upcoming (unsent) list.
	AppendContent(ctx context.Context, circleID, contentID string) error
	ClearUpcomingContent(ctx context.Context, circleID string) error
	Delete(ctx context.Context, id string) error
}

// ContentRepository persists posts and events.
type ContentRepository interface {
	Create(ctx context.Context, content *model.Content) error
	GetByID(ctx context.Context, id string) (*model.Content, error)
	BatchGetByIDs(ctx context.Context, ids []string) (map[string]*model.Content, error)
	Delete(ctx context.Context, id string) error
}

// UserProfilePatch carries the mutable profile fields. Nil fields are left
// untouched.
type UserProfilePatch struct {
	FirstName *string
	LastName  *string
	Timezone  *string
}

// UserRepository persists the identity-provider mirror of accounts.
type UserRepository interface {
	// Upsert creates or refreshes the user record on authentication.
	Upsert(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	BatchGetByIDs(ctx context.Context, ids []string) (map[string]*model.User, error)
	UpdateProfile(ctx context.Context, id string, patch UserProfilePatch) error
}

// CirculationRepository persists the per-(user, frequency) digest
// aggregates.
type CirculationRepository interface {
	// Upsert atomically creates the (userID, frequency) record seeded with
	// circleID, or unions circleID into the existing record's circle set.
	Upsert(ctx context.Context, userID string, frequency model.Frequency, circleID string) error
	// ScanDue returns every record whose frequency is in frequencies.
	ScanDue(ctx context.Context, frequencies []model.Frequency) ([]*model.UpcomingCirculation, error)
	// Claim stamps the record with dispatchID unless another live claim
	// (younger than grace) exists. Returns false when the record is
	// already claimed or gone.
	Claim(ctx context.Context, urn, dispatchID string, now time.Time, grace time.Duration) (bool, error)
	BatchDelete(ctx context.Context, urns []string) error
}
