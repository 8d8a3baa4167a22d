package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"circulate-backend/domain/model"
	"circulate-backend/pkg/errors"
)

func TestCircleServiceCreate(t *testing.T) {
	ctx := context.Background()
	repo := newMemCircleRepo()
	service := NewCircleService(repo, zap.NewNop())

	t.Run("creator becomes the sole member", func(t *testing.T) {
		circle, err := service.Create(ctx, "u1", CreateCircleRequest{
			Name:      "Hiking Club",
			Frequency: "weekly",
			Privacy:   "private",
		})
		require.NoError(t, err)

		assert.NotEmpty(t, circle.ID)
		assert.Equal(t, "u1", circle.CreatedBy)
		assert.Equal(t, []string{"u1"}, circle.Members)
		assert.Equal(t, model.FrequencyWeekly, circle.Frequency)
		assert.Empty(t, circle.UpcomingContentIDs)
	})

	t.Run("rejects unknown frequency", func(t *testing.T) {
		_, err := service.Create(ctx, "u1", CreateCircleRequest{
			Name:      "Bad",
			Frequency: "hourly",
			Privacy:   "private",
		})
		assert.True(t, errors.IsValidation(err))
	})

	t.Run("rejects missing name", func(t *testing.T) {
		_, err := service.Create(ctx, "u1", CreateCircleRequest{
			Frequency: "daily",
			Privacy:   "public",
		})
		assert.True(t, errors.IsValidation(err))
	})
}

func TestCircleServiceGet(t *testing.T) {
	ctx := context.Background()
	repo := newMemCircleRepo(
		&model.Circle{ID: "private-c", Members: []string{"u1"}, Privacy: model.PrivacyPrivate},
		&model.Circle{ID: "public-c", Members: []string{"u1"}, Privacy: model.PrivacyPublic},
	)
	service := NewCircleService(repo, zap.NewNop())

	t.Run("member reads a private circle", func(t *testing.T) {
		circle, err := service.Get(ctx, "u1", "private-c")
		require.NoError(t, err)
		assert.Equal(t, "private-c", circle.ID)
	})

	t.Run("non-member cannot read a private circle", func(t *testing.T) {
		_, err := service.Get(ctx, "u2", "private-c")
		assert.True(t, errors.IsUnauthorized(err))
	})

	t.Run("anyone reads a public circle", func(t *testing.T) {
		_, err := service.Get(ctx, "u2", "public-c")
		assert.NoError(t, err)
	})

	t.Run("absent circle is not found", func(t *testing.T) {
		_, err := service.Get(ctx, "u1", "nope")
		assert.True(t, errors.IsNotFound(err))
	})
}

func TestCircleServiceJoinLeave(t *testing.T) {
	ctx := context.Background()

	t.Run("join adds the member once", func(t *testing.T) {
		repo := newMemCircleRepo(&model.Circle{ID: "c1", Members: []string{"u1"}})
		service := NewCircleService(repo, zap.NewNop())

		circle, err := service.Join(ctx, "u2", "c1")
		require.NoError(t, err)
		assert.Equal(t, []string{"u1", "u2"}, circle.Members)

		circle, err = service.Join(ctx, "u2", "c1")
		require.NoError(t, err)
		assert.Equal(t, []string{"u1", "u2"}, circle.Members)
	})

	t.Run("leave removes the member", func(t *testing.T) {
		repo := newMemCircleRepo(&model.Circle{ID: "c1", Members: []string{"u1", "u2"}})
		service := NewCircleService(repo, zap.NewNop())

		require.NoError(t, service.Leave(ctx, "u2", "c1"))
		circle, err := repo.GetByID(ctx, "c1")
		require.NoError(t, err)
		assert.Equal(t, []string{"u1"}, circle.Members)
	})

	t.Run("last member leaving deletes the circle", func(t *testing.T) {
		repo := newMemCircleRepo(&model.Circle{ID: "c1", Members: []string{"u1"}})
		service := NewCircleService(repo, zap.NewNop())

		require.NoError(t, service.Leave(ctx, "u1", "c1"))
		_, err := repo.GetByID(ctx, "c1")
		assert.True(t, errors.IsNotFound(err))
	})

	t.Run("leaving a circle you are not in fails", func(t *testing.T) {
		repo := newMemCircleRepo(&model.Circle{ID: "c1", Members: []string{"u1"}})
		service := NewCircleService(repo, zap.NewNop())

		err := service.Leave(ctx, "u2", "c1")
		assert.True(t, errors.IsValidation(err))
	})
}
