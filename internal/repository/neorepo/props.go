// Package neorepo implements the repository contracts over Neo4j. Every
// entity is a node carrying an integer id property; associations are
// relationships. Queries return map projections (`n{.*}`), which this file
// converts back into model values.
package neorepo

import (
	"time"
)

// Relationship types shared by the graph repositories and the graph
// migration. Changing one of these invalidates existing graphs.
const (
	RelDesignedBy   = "DESIGNED_BY"
	RelArtBy        = "ART_BY"
	RelPublishedBy  = "PUBLISHED_BY"
	RelUsesMechanic = "USES_MECHANIC"
	RelInGenre      = "IN_GENRE"
	RelWrote        = "WROTE"
	RelForGame      = "FOR_GAME"
	RelHasVideo     = "HAS_VIDEO"
	RelInLanguage   = "IN_LANGUAGE"
	RelParticipated = "PARTICIPATED_IN"
	RelWon          = "WON"
	RelCreated      = "CREATED"
	RelFriendsWith  = "FRIENDS_WITH"
	RelMessaged     = "MESSAGED"
	RelSpectated    = "SPECTATED"
	RelContainsMove = "CONTAINS_MOVE"
)

// The driver hands back int64 for integers and float64 for floats. Timestamps
// are stored as RFC 3339 strings, date-of-birth values as plain dates.

func intProp(props map[string]any, key string) int {
	if v, ok := props[key].(int64); ok {
		return int(v)
	}
	return 0
}

func intPtrProp(props map[string]any, key string) *int {
	if v, ok := props[key].(int64); ok {
		n := int(v)
		return &n
	}
	return nil
}

func floatPtrProp(props map[string]any, key string) *float64 {
	switch v := props[key].(type) {
	case float64:
		return &v
	case int64:
		f := float64(v)
		return &f
	}
	return nil
}

func strProp(props map[string]any, key string) string {
	if v, ok := props[key].(string); ok {
		return v
	}
	return ""
}

func strPtrProp(props map[string]any, key string) *string {
	if v, ok := props[key].(string); ok {
		return &v
	}
	return nil
}

func boolProp(props map[string]any, key string) bool {
	if v, ok := props[key].(bool); ok {
		return v
	}
	return false
}

func timePtrProp(props map[string]any, key string) *time.Time {
	s, ok := props[key].(string)
	if !ok || s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// nodeProps extracts the `n{.*}` projection column from a record.
func nodeProps(record map[string]any, key string) (map[string]any, bool) {
	props, ok := record[key].(map[string]any)
	return props, ok
}

// sortDir renders the ORDER BY direction keyword.
func sortDir(desc bool) string {
	if desc {
		return "DESC"
	}
	return "ASC"
}

// searchClause builds the list filter on one node property. CONTAINS is
// case-sensitive; collation is left to the engine.
func searchClause(property string) string {
	return " WHERE " + property + " CONTAINS $search"
}
