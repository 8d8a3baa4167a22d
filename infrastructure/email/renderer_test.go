package email

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"circulate-backend/domain/model"
)

func testDigest() *model.Digest {
	when := time.Date(2025, 6, 7, 14, 0, 0, 0, time.UTC)
	return &model.Digest{
		CirculationID: "cid-1",
		UserID:        "u1",
		Circles: []model.DigestCircle{
			{
				ID: "circle-a", Name: "Hiking Club",
				Posts: []model.DigestItem{
					{Title: "Trail map", CreatorLabel: "Ann S.", CircleName: "Hiking Club", Link: "https://example.com/map"},
				},
			},
		},
		Days: []model.DigestDay{
			{
				Date: time.Date(2025, 6, 7, 0, 0, 0, 0, time.UTC),
				Events: []model.DigestItem{
					{Title: "Summit hike", CreatorLabel: "Ann S.", CircleName: "Hiking Club", When: &when, Description: "Bring water"},
				},
			},
		},
	}
}

func TestRendererRender(t *testing.T) {
	renderer, err := NewRenderer()
	require.NoError(t, err)

	t.Run("renders events and posts sections", func(t *testing.T) {
		html, err := renderer.Render("Ann", testDigest())
		require.NoError(t, err)

		assert.Contains(t, html, "Hi Ann,")
		assert.Contains(t, html, "Upcoming events")
		assert.Contains(t, html, "Saturday, June 7")
		assert.Contains(t, html, "Summit hike")
		assert.Contains(t, html, "2:00 PM")
		assert.Contains(t, html, "Upcoming posts")
		assert.Contains(t, html, "Hiking Club")
		assert.Contains(t, html, "Trail map")
		assert.Contains(t, html, "shared by Ann S.")
	})

	t.Run("omits the events section when there are none", func(t *testing.T) {
		digest := testDigest()
		digest.Days = nil

		html, err := renderer.Render("Ann", digest)
		require.NoError(t, err)

		assert.NotContains(t, html, "Upcoming events")
		assert.Contains(t, html, "Upcoming posts")
	})

	t.Run("omits the posts section when there are none", func(t *testing.T) {
		digest := testDigest()
		digest.Circles = nil

		html, err := renderer.Render("Ann", digest)
		require.NoError(t, err)

		assert.Contains(t, html, "Upcoming events")
		assert.NotContains(t, html, "Upcoming posts")
	})

	t.Run("escapes user supplied markup", func(t *testing.T) {
		digest := testDigest()
		digest.Circles[0].Posts[0].Title = `<script>alert("x")</script>`

		html, err := renderer.Render("Ann", digest)
		require.NoError(t, err)

		assert.NotContains(t, html, "<script>")
		assert.Contains(t, html, "&lt;script&gt;")
	})

	t.Run("greets anonymously without a first name", func(t *testing.T) {
		html, err := renderer.Render("", testDigest())
		require.NoError(t, err)

		assert.Contains(t, html, "Hi there,")
	})

	t.Run("links titles only when a link exists", func(t *testing.T) {
		html, err := renderer.Render("Ann", testDigest())
		require.NoError(t, err)

		assert.Contains(t, html, `<a href="https://example.com/map">Trail map</a>`)
		assert.False(t, strings.Contains(html, `<a href="">`))
	})
}
