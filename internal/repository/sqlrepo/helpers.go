// Package sqlrepo implements the repository contracts over a relational
// engine through sqlx. Queries are written with ? placeholders and passed
// through Rebind, so the same code serves Postgres (pgx) and SQLite.
package sqlrepo

import (
	"sort"
	"strings"
)

// buildSet turns a partial-update payload into a SET clause, keeping only
// whitelisted columns. Keys are sorted so generated SQL is deterministic.
// Returns ok=false when no updatable field remains.
func buildSet(fields map[string]any, allowed map[string]bool) (string, []any, bool) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if allowed[k] {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return "", nil, false
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	args := make([]any, len(keys))
	for i, k := range keys {
		parts[i] = k + " = ?"
		args[i] = fields[k]
	}
	return strings.Join(parts, ", "), args, true
}

// likePattern builds the case-insensitive substring pattern used by list
// searches. The column side is lowered in SQL; the pattern side here.
func likePattern(search string) string {
	return "%" + strings.ToLower(search) + "%"
}

// sortClause resolves a requested sort against a whitelist. Sort fields are
// never interpolated from caller input directly; unknown fields fall back to
// the default ordering.
func sortClause(sortBy string, desc bool, allowed map[string]string, fallback string) string {
	col, ok := allowed[sortBy]
	if !ok {
		col = fallback
	}
	if desc {
		return col + " DESC"
	}
	return col + " ASC"
}
