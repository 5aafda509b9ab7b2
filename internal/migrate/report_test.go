package migrate

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamevault/gamevault-go/internal/models"
)

func TestReportAccounting(t *testing.T) {
	report := NewReport()

	_, err := uuid.Parse(report.RunID)
	require.NoError(t, err)

	report.Add("games", 3)
	report.Add("games", 2)
	report.Add("users", 1)
	report.Fail("games", 42, errors.New("boom"))
	report.Fail("reviews", 7, errors.New("bad row"))
	report.Finish()

	assert.Equal(t, 5, report.Migrated("games"))
	assert.Equal(t, 1, report.Migrated("users"))
	assert.Zero(t, report.Migrated("languages"))

	require.Len(t, report.Failures, 2)
	assert.Equal(t, "games 42: boom", report.Failures[0].String())
	assert.False(t, report.EndedAt.Before(report.StartedAt))
}

func TestSplitIDNamePairs(t *testing.T) {
	tests := []struct {
		name  string
		ids   string
		names string
		want  []models.IDName
	}{
		{
			name:  "matched pairs",
			ids:   "1,2,3",
			names: "Klaus Teuber,Uwe Rosenberg,Reiner Knizia",
			want: []models.IDName{
				{ID: 1, Name: "Klaus Teuber"},
				{ID: 2, Name: "Uwe Rosenberg"},
				{ID: 3, Name: "Reiner Knizia"},
			},
		},
		{
			name:  "more ids than names drops the tail",
			ids:   "1,2,3",
			names: "Klaus Teuber,Uwe Rosenberg",
			want: []models.IDName{
				{ID: 1, Name: "Klaus Teuber"},
				{ID: 2, Name: "Uwe Rosenberg"},
			},
		},
		{
			name:  "more names than ids drops the tail",
			ids:   "1",
			names: "Klaus Teuber,Uwe Rosenberg",
			want:  []models.IDName{{ID: 1, Name: "Klaus Teuber"}},
		},
		{
			name:  "malformed id drops only its pair",
			ids:   "1,x,3",
			names: "a,b,c",
			want:  []models.IDName{{ID: 1, Name: "a"}, {ID: 3, Name: "c"}},
		},
		{
			name:  "whitespace trimmed",
			ids:   " 1 , 2 ",
			names: " a , b ",
			want:  []models.IDName{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}},
		},
		{name: "empty ids", ids: "", names: "a", want: []models.IDName{}},
		{name: "empty names", ids: "1", names: "", want: []models.IDName{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitIDNamePairs(tt.ids, tt.names))
		})
	}
}
