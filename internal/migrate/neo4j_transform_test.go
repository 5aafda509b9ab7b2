package migrate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamevault/gamevault-go/internal/models"
)

func TestGameNode(t *testing.T) {
	stmt := GameNode(catanGame(), migrationTime)

	assert.Contains(t, stmt.Query, "MERGE (g:Game {id: $id})")
	assert.Equal(t, 42, stmt.Params["id"])
	assert.Equal(t, "2024-03-15T12:00:00Z", stmt.Params["migrated_at"])

	props, ok := stmt.Params["props"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Catan", props["name"])
	assert.Equal(t, strPtr("1995"), props["year_published"])
}

func TestUserNodeOmitsMissingDOB(t *testing.T) {
	stmt := UserNode(models.User{ID: 5, Username: "alice"}, migrationTime)
	props := stmt.Params["props"].(map[string]any)
	_, hasDOB := props["dob"]
	assert.False(t, hasDOB)

	stmt = UserNode(models.User{
		ID: 5, Username: "alice",
		DOB: timePtr(time.Date(1990, 6, 1, 0, 0, 0, 0, time.UTC)),
	}, migrationTime)
	props = stmt.Params["props"].(map[string]any)
	assert.Equal(t, "1990-06-01", props["dob"])
}

func TestPersonNodesBatch(t *testing.T) {
	people := []models.Person{
		{ID: 1, Name: "Klaus Teuber"},
		{ID: 2, Name: "Uwe Rosenberg", DOB: timePtr(time.Date(1970, 3, 27, 0, 0, 0, 0, time.UTC))},
	}

	stmt := PersonNodes("Designer", people, migrationTime)

	assert.Contains(t, stmt.Query, "MERGE (n:Designer {id: row.id})")
	rows := stmt.Params["rows"].([]map[string]any)
	require.Len(t, rows, 2)
	assert.Equal(t, "Klaus Teuber", rows[0]["name"])
	_, hasDOB := rows[0]["dob"]
	assert.False(t, hasDOB)
	assert.Equal(t, "1970-03-27", rows[1]["dob"])
}

func TestGameRelationEdges(t *testing.T) {
	stmt := GameRelationEdges(42, "DESIGNED_BY", "Designer",
		[]models.IDName{{ID: 1, Name: "Klaus Teuber"}, {ID: 2, Name: "Uwe Rosenberg"}})

	assert.Contains(t, stmt.Query, "MATCH (g:Game {id: $game_id})")
	assert.Contains(t, stmt.Query, "MATCH (n:Designer {id: rid})")
	assert.Contains(t, stmt.Query, "MERGE (g)-[:DESIGNED_BY]->(n)")
	assert.Equal(t, 42, stmt.Params["game_id"])
	assert.Equal(t, []int{1, 2}, stmt.Params["ids"])
}

func TestReviewNodeAttachesBothEndpoints(t *testing.T) {
	review := models.ReviewWithUser{
		Review: models.Review{ID: 10, Title: "Great", StarAmount: 5, UserID: 5, GameID: 42},
	}

	stmt := ReviewNode(review, migrationTime)

	assert.Contains(t, stmt.Query, "MERGE (rev:Review {id: $id})")
	assert.Contains(t, stmt.Query, "[:WROTE]->(rev)")
	assert.Contains(t, stmt.Query, "(rev)-[:FOR_GAME]->(g)")
	assert.Equal(t, 5, stmt.Params["user_id"])
	assert.Equal(t, 42, stmt.Params["game_id"])
}

func TestVideoNodeLanguageParam(t *testing.T) {
	stmt := VideoNode(models.Video{ID: 3, Title: "How to play", Link: "http://v", GameID: 42}, migrationTime)
	assert.Nil(t, stmt.Params["language_id"])
	assert.Contains(t, stmt.Query, "(g)-[:HAS_VIDEO]->(v)")
	assert.Contains(t, stmt.Query, "(v)-[:IN_LANGUAGE]->(l)")

	stmt = VideoNode(models.Video{ID: 3, Title: "x", Link: "y", GameID: 42, LanguageID: intPtr(1)}, migrationTime)
	assert.Equal(t, 1, stmt.Params["language_id"])
}

func TestMatchupStatements(t *testing.T) {
	winner := 5
	creator := 7
	matchup := models.Matchup{
		ID: 3, GameID: 42, UserID1: 5, UserID2: 6,
		UserIDWinner: &winner, CreatedByUserID: &creator,
	}
	moves := []models.Move{{ID: 1, MatchupID: 3, Ply: 1}}

	stmts := MatchupStatements(matchup, moves, []int{8}, migrationTime)

	// node + 2 participants + winner + creator + spectators + moves
	require.Len(t, stmts, 7)
	assert.Contains(t, stmts[0].Query, "MERGE (m:Matchup {id: $id})")
	assert.Contains(t, stmts[1].Query, "PARTICIPATED_IN")
	assert.Equal(t, 1, stmts[1].Params["role"])
	assert.Equal(t, 2, stmts[2].Params["role"])
	assert.Contains(t, stmts[3].Query, "[:WON]")
	assert.Equal(t, 5, stmts[3].Params["user_id"])
	assert.Contains(t, stmts[4].Query, "[:CREATED]")
	assert.Contains(t, stmts[5].Query, "[:SPECTATED]")
	assert.Contains(t, stmts[6].Query, "[:CONTAINS_MOVE]")
}

func TestMatchupStatementsMinimal(t *testing.T) {
	stmts := MatchupStatements(models.Matchup{ID: 3, GameID: 42, UserID1: 5, UserID2: 6}, nil, nil, migrationTime)

	// No winner, creator, spectators or moves: node + two participants only.
	require.Len(t, stmts, 3)
}

func TestFriendshipAndMessageEdges(t *testing.T) {
	f := FriendshipEdge(models.Friendship{UserID1: 5, UserID2: 6, CreatedAt: timePtr(migrationTime)})
	assert.Contains(t, f.Query, "[f:FRIENDS_WITH]")
	assert.Equal(t, 5, f.Params["user_id_1"])
	assert.Equal(t, strPtr("2024-03-15T12:00:00Z"), f.Params["created_at"])

	m := MessageEdge(models.Message{ID: 9, UserID1: 5, UserID2: 6, Text: "hi"})
	// Messages merge on their id so duplicate texts between the same pair
	// survive a re-run without collapsing.
	assert.Contains(t, m.Query, "[msg:MESSAGED {id: $id}]")
	assert.Equal(t, 9, m.Params["id"])
	assert.Equal(t, "hi", m.Params["text"])
}
