package circulation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"circulate-backend/application/ports"
	"circulate-backend/domain/model"
	"circulate-backend/pkg/errors"
)

// fakeCircleRepo is an in-memory CircleRepository.
type fakeCircleRepo struct {
	mu       sync.Mutex
	circles  map[string]*model.Circle
	cleared  []string
	clearErr error
}

func newFakeCircleRepo(circles ...*model.Circle) *fakeCircleRepo {
	repo := &fakeCircleRepo{circles: make(map[string]*model.Circle)}
	for _, c := range circles {
		repo.circles[c.ID] = c
	}
	return repo
}

func (r *fakeCircleRepo) Create(ctx context.Context, circle *model.Circle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.circles[circle.ID]; ok {
		return errors.NewConflictError("circle exists")
	}
	r.circles[circle.ID] = circle
	return nil
}

func (r *fakeCircleRepo) GetByID(ctx context.Context, id string) (*model.Circle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	circle, ok := r.circles[id]
	if !ok {
		return nil, errors.NewNotFoundError("circle")
	}
	return circle, nil
}

func (r *fakeCircleRepo) BatchGetByIDs(ctx context.Context, ids []string) (map[string]*model.Circle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]*model.Circle)
	for _, id := range ids {
		if circle, ok := r.circles[id]; ok {
			out[id] = circle
		}
	}
	return out, nil
}

func (r *fakeCircleRepo) ListByMember(ctx context.Context, userID string) ([]*model.Circle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Circle, 0)
	for _, circle := range r.circles {
		if circle.HasMember(userID) {
			out = append(out, circle)
		}
	}
	return out, nil
}

func (r *fakeCircleRepo) ListPublic(ctx context.Context) ([]*model.Circle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Circle, 0)
	for _, circle := range r.circles {
		if circle.IsPublic() {
			out = append(out, circle)
		}
	}
	return out, nil
}

func (r *fakeCircleRepo) AddMember(ctx context.Context, circleID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	circle, ok := r.circles[circleID]
	if !ok {
		return errors.NewNotFoundError("circle")
	}
	if !circle.HasMember(userID) {
		circle.Members = append(circle.Members, userID)
	}
	return nil
}

func (r *fakeCircleRepo) RemoveMember(ctx context.Context, circleID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
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

func (r *fakeCircleRepo) AppendContent(ctx context.Context, circleID, contentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	circle, ok := r.circles[circleID]
	if !ok {
		return errors.NewNotFoundError("circle")
	}
	circle.ContentIDs = append(circle.ContentIDs, contentID)
	circle.UpcomingContentIDs = append(circle.UpcomingContentIDs, contentID)
	return nil
}

func (r *fakeCircleRepo) ClearUpcomingContent(ctx context.Context, circleID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.clearErr != nil {
		return r.clearErr
	}
	if circle, ok := r.circles[circleID]; ok {
		circle.UpcomingContentIDs = []string{}
	}
	r.cleared = append(r.cleared, circleID)
	return nil
}

func (r *fakeCircleRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.circles, id)
	return nil
}

func (r *fakeCircleRepo) clearedCircles() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.cleared...)
}

// fakeContentRepo is an in-memory ContentRepository.
type fakeContentRepo struct {
	content map[string]*model.Content
}

func newFakeContentRepo(items ...*model.Content) *fakeContentRepo {
	repo := &fakeContentRepo{content: make(map[string]*model.Content)}
	for _, item := range items {
		repo.content[item.ID] = item
	}
	return repo
}

func (r *fakeContentRepo) Create(ctx context.Context, content *model.Content) error {
	r.content[content.ID] = content
	return nil
}

func (r *fakeContentRepo) GetByID(ctx context.Context, id string) (*model.Content, error) {
	item, ok := r.content[id]
	if !ok {
		return nil, errors.NewNotFoundError("content")
	}
	return item, nil
}

func (r *fakeContentRepo) BatchGetByIDs(ctx context.Context, ids []string) (map[string]*model.Content, error) {
	out := make(map[string]*model.Content)
	for _, id := range ids {
		if item, ok := r.content[id]; ok {
			out[id] = item
		}
	}
	return out, nil
}

func (r *fakeContentRepo) Delete(ctx context.Context, id string) error {
	delete(r.content, id)
	return nil
}

// fakeUserRepo is an in-memory UserRepository.
type fakeUserRepo struct {
	users map[string]*model.User
}

func newFakeUserRepo(users ...*model.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[string]*model.User)}
	for _, user := range users {
		repo.users[user.ID] = user
	}
	return repo
}

func (r *fakeUserRepo) Upsert(ctx context.Context, user *model.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, errors.NewNotFoundError("user")
	}
	return user, nil
}

func (r *fakeUserRepo) BatchGetByIDs(ctx context.Context, ids []string) (map[string]*model.User, error) {
	out := make(map[string]*model.User)
	for _, id := range ids {
		if user, ok := r.users[id]; ok {
			out[id] = user
		}
	}
	return out, nil
}

func (r *fakeUserRepo) UpdateProfile(ctx context.Context, id string, patch ports.UserProfilePatch) error {
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
	return nil
}

// fakeCirculationRepo mimics the store's create-or-union and conditional
// claim semantics in memory.
type fakeCirculationRepo struct {
	mu        sync.Mutex
	records   map[string]*model.UpcomingCirculation
	upsertErr error
	nextID    int
}

func newFakeCirculationRepo(records ...*model.UpcomingCirculation) *fakeCirculationRepo {
	repo := &fakeCirculationRepo{records: make(map[string]*model.UpcomingCirculation)}
	for _, rec := range records {
		repo.records[rec.Urn] = rec
	}
	return repo
}

func (r *fakeCirculationRepo) Upsert(ctx context.Context, userID string, frequency model.Frequency, circleID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.upsertErr != nil {
		return r.upsertErr
	}

	urn := model.CirculationUrn(userID, frequency)
	rec, ok := r.records[urn]
	if !ok {
		r.nextID++
		rec = &model.UpcomingCirculation{
			Urn:           urn,
			CirculationID: fmt.Sprintf("cid-%d", r.nextID),
			UserID:        userID,
			Frequency:     frequency,
		}
		r.records[urn] = rec
	}
	for _, existing := range rec.Circles {
		if existing == circleID {
			return nil
		}
	}
	rec.Circles = append(rec.Circles, circleID)
	return nil
}

func (r *fakeCirculationRepo) ScanDue(ctx context.Context, frequencies []model.Frequency) ([]*model.UpcomingCirculation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	due := make(map[model.Frequency]bool)
	for _, f := range frequencies {
		due[f] = true
	}
	out := make([]*model.UpcomingCirculation, 0)
	for _, rec := range r.records {
		if due[rec.Frequency] {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *fakeCirculationRepo) Claim(ctx context.Context, urn, dispatchID string, now time.Time, grace time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[urn]
	if !ok {
		return false, nil
	}
	if rec.DispatchID != "" && rec.DispatchID != dispatchID && rec.ClaimedWithin(grace, now) {
		return false, nil
	}
	rec.DispatchID = dispatchID
	claimedAt := now
	rec.DispatchClaimedAt = &claimedAt
	return true, nil
}

func (r *fakeCirculationRepo) BatchDelete(ctx context.Context, urns []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, urn := range urns {
		delete(r.records, urn)
	}
	return nil
}

func (r *fakeCirculationRepo) get(urn string) *model.UpcomingCirculation {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.records[urn]
}

func (r *fakeCirculationRepo) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

// fakeMailer records sends and can fail selected recipients.
type fakeMailer struct {
	mu      sync.Mutex
	sent    []ports.MailMessage
	failFor map[string]bool
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{failFor: make(map[string]bool)}
}

func (m *fakeMailer) Send(ctx context.Context, msg ports.MailMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFor[msg.To] {
		return errors.NewExternalError("mail", fmt.Errorf("refused %s", msg.To))
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *fakeMailer) sentTo() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.sent))
	for _, msg := range m.sent {
		out = append(out, msg.To)
	}
	return out
}

// fakeRenderer returns a canned body.
type fakeRenderer struct {
	renderErr error
}

func (r *fakeRenderer) Render(firstName string, digest *model.Digest) (string, error) {
	if r.renderErr != nil {
		return "", r.renderErr
	}
	return "<html>digest for " + digest.UserID + "</html>", nil
}
