package dynamodb

import (
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"circulate-backend/domain/model"
)

func TestStringKeys(t *testing.T) {
	keys := stringKeys("Id", []string{"a", "b"})

	require.Len(t, keys, 2)
	first, ok := keys[0]["Id"].(*types.AttributeValueMemberS)
	require.True(t, ok)
	assert.Equal(t, "a", first.Value)
}

func TestCirculationItemToModel(t *testing.T) {
	t.Run("round trips timestamps and claim", func(t *testing.T) {
		item := circulationItem{
			Urn:               "u1:daily",
			CirculationID:     "cid-1",
			UserID:            "u1",
			Frequency:         "daily",
			Circles:           []string{"circle-a"},
			DispatchID:        "d-1",
			DispatchClaimedAt: "2025-06-06T09:00:00Z",
			CreatedAt:         "2025-06-01T00:00:00Z",
			UpdatedAt:         "2025-06-05T00:00:00Z",
		}

		rec := item.toModel()

		assert.Equal(t, model.FrequencyDaily, rec.Frequency)
		require.NotNil(t, rec.DispatchClaimedAt)
		assert.Equal(t, time.Date(2025, 6, 6, 9, 0, 0, 0, time.UTC), rec.DispatchClaimedAt.UTC())
		assert.Equal(t, 2025, rec.CreatedAt.Year())
	})

	t.Run("absent collections come back empty, not nil", func(t *testing.T) {
		rec := circulationItem{Urn: "u1:daily"}.toModel()

		assert.NotNil(t, rec.Circles)
		assert.Empty(t, rec.Circles)
		assert.Nil(t, rec.DispatchClaimedAt)
	})
}
