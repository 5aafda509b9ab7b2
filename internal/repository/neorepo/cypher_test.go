package neorepo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeleteCypherRemovesSingleNode(t *testing.T) {
	tests := []struct {
		name   string
		cypher string
		detach string
	}{
		{"game", deleteGameCypher, "DETACH DELETE g"},
		{"user", deleteUserCypher, "DETACH DELETE u"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Contains(t, tt.cypher, tt.detach)
			assert.NotContains(t, tt.cypher, "OPTIONAL MATCH")
			assert.NotContains(t, tt.cypher, ":Review")
			assert.NotContains(t, tt.cypher, ":Video")
		})
	}
}

func TestSearchClauseIsCaseSensitive(t *testing.T) {
	clause := searchClause("g.name")

	assert.Equal(t, " WHERE g.name CONTAINS $search", clause)
	assert.NotContains(t, clause, "toLower")
}
