package services

import (
	"context"
	"time"

	"circulate-backend/application/ports"
	"circulate-backend/domain/model"
	"circulate-backend/pkg/errors"
)

// memCircleRepo is an in-memory CircleRepository for service tests.
type memCircleRepo struct {
	circles map[string]*model.Circle
}

func newMemCircleRepo(circles ...*model.Circle) *memCircleRepo {
	repo := &memCircleRepo{circles: make(map[string]*model.Circle)}
	for _, c := range circles {
		repo.circles[c.ID] = c
	}
	return repo
}

func (r *memCircleRepo) Create(ctx context.Context, circle *model.Circle) error {
	if _, ok := r.circles[circle.ID]; ok {
		return errors.NewConflictError("circle exists")
	}
	r.circles[circle.ID] = circle
	return nil
}

func (r *memCircleRepo) GetByID(ctx context.Context, id string) (*model.Circle, error) {
	circle, ok := r.circles[id]
	if !ok {
		return nil, errors.NewNotFoundError("circle")
	}
	return circle, nil
}

func (r *memCircleRepo) BatchGetByIDs(ctx context.Context, ids []string) (map[string]*model.Circle, error) {
	out := make(map[string]*model.Circle)
	for _, id := range ids {
		if circle, ok := r.circles[id]; ok {
			out[id] = circle
		}
	}
	return out, nil
}

func (r *memCircleRepo) ListByMember(ctx context.Context, userID string) ([]*model.Circle, error) {
	out := make([]*model.Circle, 0)
	for _, circle := range r.circles {
		if circle.HasMember(userID) {
			out = append(out, circle)
		}
	}
	return out, nil
}

func (r *memCircleRepo) ListPublic(ctx context.Context) ([]*model.Circle, error) {
	out := make([]*model.Circle, 0)
	for _, circle := range r.circles {
		if circle.IsPublic() {
			out = append(out, circle)
		}
	}
	return out, nil
}

func (r *memCircleRepo) AddMember(ctx context.Context, circleID, userID string) error {
	circle, ok := r.circles[circleID]
	if !ok {
		return errors.NewNotFoundError("circle")
	}
	if !circle.HasMember(userID) {
		circle.Members = append(circle.Members, userID)
	}
	return nil
}

func (r *memCircleRepo) RemoveMember(ctx context.Context, circleID, userID string) error {
	circle, ok := r.circles[circleID]
	if !ok {
		return errors.NewNotFoundError("circle")
	}
	members := circle.Members[:0]
	for _, m := range circle.Members {
		if m != userID {
			members = append(members, m)
		}
	}
	circle.Members = members
	return nil
}

func (r *memCircleRepo) AppendContent(ctx context.Context, circleID, contentID string) error {
	circle, ok := r.circles[circleID]
	if !ok {
		return errors.NewNotFoundError("circle")
	}
	circle.ContentIDs = append(circle.ContentIDs, contentID)
	circle.UpcomingContentIDs = append(circle.UpcomingContentIDs, contentID)
	return nil
}

func (r *memCircleRepo) ClearUpcomingContent(ctx context.Context, circleID string) error {
	if circle, ok := r.circles[circleID]; ok {
		circle.UpcomingContentIDs = []string{}
	}
	return nil
}

func (r *memCircleRepo) Delete(ctx context.Context, id string) error {
	delete(r.circles, id)
	return nil
}

// memContentRepo is an in-memory ContentRepository for service tests.
type memContentRepo struct {
	content map[string]*model.Content
}

func newMemContentRepo(items ...*model.Content) *memContentRepo {
	repo := &memContentRepo{content: make(map[string]*model.Content)}
	for _, item := range items {
		repo.content[item.ID] = item
	}
	return repo
}

func (r *memContentRepo) Create(ctx context.Context, content *model.Content) error {
	r.content[content.ID] = content
	return nil
}

func (r *memContentRepo) GetByID(ctx context.Context, id string) (*model.Content, error) {
	item, ok := r.content[id]
	if !ok {
		return nil, errors.NewNotFoundError("content")
	}
	return item, nil
}

func (r *memContentRepo) BatchGetByIDs(ctx context.Context, ids []string) (map[string]*model.Content, error) {
	out := make(map[string]*model.Content)
	for _, id := range ids {
		if item, ok := r.content[id]; ok {
			out[id] = item
		}
	}
	return out, nil
}

func (r *memContentRepo) Delete(ctx context.Context, id string) error {
	delete(r.content, id)
	return nil
}

// memUserRepo is an in-memory UserRepository for service tests.
type memUserRepo struct {
	users map[string]*model.User
}

func newMemUserRepo(users ...*model.User) *memUserRepo {
	repo := &memUserRepo{users: make(map[string]*model.User)}
	for _, user := range users {
		repo.users[user.ID] = user
	}
	return repo
}

func (r *memUserRepo) Upsert(ctx context.Context, user *model.User) error {
	if existing, ok := r.users[user.ID]; ok {
		existing.Email = user.Email
		existing.FirstName = user.FirstName
		existing.LastName = user.LastName
		existing.UpdatedAt = time.Now().UTC()
		return nil
	}
	r.users[user.ID] = user
	return nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, errors.NewNotFoundError("user")
	}
	return user, nil
}

func (r *memUserRepo) BatchGetByIDs(ctx context.Context, ids []string) (map[string]*model.User, error) {
	out := make(map[string]*model.User)
	for _, id := range ids {
		if user, ok := r.users[id]; ok {
			out[id] = user
		}
	}
	return out, nil
}

func (r *memUserRepo) UpdateProfile(ctx context.Context, id string, patch ports.UserProfilePatch) error {
	user, ok := r.users[id]
	if !ok {
		return errors.NewNotFoundError("user")
	}
	if patch.FirstName != nil {
		user.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		user.LastName = *patch.LastName
	}
	if patch.Timezone != nil {
		user.Timezone = *patch.Timezone
	}
	user.UpdatedAt = time.Now().UTC()
	return nil
}
