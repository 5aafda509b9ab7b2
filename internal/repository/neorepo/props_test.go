package neorepo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPropConversions(t *testing.T) {
	props := map[string]any{
		"id":         int64(42),
		"name":       "Catan",
		"bgg_rating": 7.1,
		"weight":     int64(2),
		"available":  true,
		"created_at": "2024-03-15T12:00:00Z",
		"dob":        "1952-06-25",
		"bad_time":   "not a time",
	}

	assert.Equal(t, 42, intProp(props, "id"))
	assert.Zero(t, intProp(props, "missing"))
	assert.Equal(t, 42, *intPtrProp(props, "id"))
	assert.Nil(t, intPtrProp(props, "missing"))

	assert.Equal(t, "Catan", strProp(props, "name"))
	assert.Equal(t, "Catan", *strPtrProp(props, "name"))
	assert.Nil(t, strPtrProp(props, "missing"))

	// Integers coming back where a float is expected still convert.
	assert.InDelta(t, 7.1, *floatPtrProp(props, "bgg_rating"), 0.001)
	assert.InDelta(t, 2.0, *floatPtrProp(props, "weight"), 0.001)
	assert.Nil(t, floatPtrProp(props, "missing"))

	assert.True(t, boolProp(props, "available"))
	assert.False(t, boolProp(props, "missing"))

	ts := timePtrProp(props, "created_at")
	require.NotNil(t, ts)
	assert.Equal(t, time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC), ts.UTC())

	dob := timePtrProp(props, "dob")
	require.NotNil(t, dob)
	assert.Equal(t, "1952-06-25", dob.Format("2006-01-02"))

	assert.Nil(t, timePtrProp(props, "bad_time"))
	assert.Nil(t, timePtrProp(props, "missing"))
}

func TestPropsToGame(t *testing.T) {
	game := propsToGame(map[string]any{
		"id":           int64(42),
		"name":         "Catan",
		"slug":         "catan",
		"bgg_rating":   7.1,
		"playing_time": int64(120),
	})

	assert.Equal(t, 42, game.ID)
	assert.Equal(t, "Catan", game.Name)
	assert.Equal(t, "catan", *game.Slug)
	assert.InDelta(t, 7.1, *game.BggRating, 0.001)
	assert.Equal(t, 120, *game.PlayingTime)
	assert.Nil(t, game.Description)
	assert.Nil(t, game.MinPlayers)
}

func TestSetClauses(t *testing.T) {
	allowed := map[string]bool{"name": true, "playing_time": true}

	t.Run("sorted whitelisted clauses", func(t *testing.T) {
		params := map[string]any{"id": 42}
		set := setClauses("g", map[string]any{
			"playing_time": 90,
			"name":         "Catan",
			"hacked":       "MATCH (n) DETACH DELETE n",
		}, allowed, params)

		assert.Equal(t, "g.name = $name, g.playing_time = $playing_time", set)
		assert.Equal(t, map[string]any{"id": 42, "name": "Catan", "playing_time": 90}, params)
	})

	t.Run("nothing updatable", func(t *testing.T) {
		params := map[string]any{}
		set := setClauses("g", map[string]any{"hacked": 1}, allowed, params)
		assert.Empty(t, set)
		assert.Empty(t, params)
	})
}

func TestGameSortableWhitelist(t *testing.T) {
	// Every sortable field must resolve to an aliased property; requested
	// sort strings are never interpolated directly.
	for field, column := range gameSortable {
		assert.NotContains(t, field, " ")
		assert.Contains(t, column, "g.")
	}
	_, ok := gameSortable["id; DETACH DELETE"]
	assert.False(t, ok)

	assert.Equal(t, "DESC", sortDir(true))
	assert.Equal(t, "ASC", sortDir(false))
}
