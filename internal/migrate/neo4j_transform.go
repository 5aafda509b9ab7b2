package migrate

import (
	"time"

	"github.com/gamevault/gamevault-go/internal/models"
	"github.com/gamevault/gamevault-go/internal/repository/neorepo"
)

// CypherStatement is one parameterized write, ready for execution. Node
// statements MERGE on id so replaying a migration is idempotent;
// relationship statements MATCH both endpoints first and silently no-op
// when one is missing.
type CypherStatement struct {
	Query  string
	Params map[string]any
}

func GameNode(game models.Game, now time.Time) CypherStatement {
	return CypherStatement{
		Query: `MERGE (g:Game {id: $id}) SET g += $props, g.migrated_at = $migrated_at`,
		Params: map[string]any{
			"id": game.ID,
			"props": map[string]any{
				"name":              game.Name,
				"slug":              game.Slug,
				"year_published":    game.YearPublished,
				"bgg_rating":        game.BggRating,
				"difficulty_rating": game.DifficultyRating,
				"description":       game.Description,
				"playing_time":      game.PlayingTime,
				"min_players":       game.MinPlayers,
				"max_players":       game.MaxPlayers,
				"minimum_age":       game.MinimumAge,
				"image":             game.Image,
				"thumbnail":         game.Thumbnail,
			},
			"migrated_at": stamp(now),
		},
	}
}

func UserNode(user models.User, now time.Time) CypherStatement {
	props := map[string]any{
		"display_name": user.DisplayName,
		"username":     user.Username,
		"password":     user.Password,
		"email":        user.Email,
		"is_admin":     user.IsAdmin,
	}
	if user.DOB != nil {
		props["dob"] = user.DOB.Format("2006-01-02")
	}
	return CypherStatement{
		Query: `MERGE (u:User {id: $id}) SET u += $props, u.migrated_at = $migrated_at`,
		Params: map[string]any{
			"id": user.ID, "props": props, "migrated_at": stamp(now),
		},
	}
}

// PersonNodes batches designer or artist rows into one UNWIND statement.
// The label comes from the orchestrator's fixed set.
func PersonNodes(label string, people []models.Person, now time.Time) CypherStatement {
	rows := make([]map[string]any, 0, len(people))
	for _, person := range people {
		row := map[string]any{"id": person.ID, "name": person.Name}
		if person.DOB != nil {
			row["dob"] = person.DOB.Format("2006-01-02")
		}
		rows = append(rows, row)
	}
	return CypherStatement{
		Query: `UNWIND $rows AS row
			MERGE (n:` + label + ` {id: row.id})
			SET n.name = row.name, n.dob = row.dob, n.migrated_at = $migrated_at`,
		Params: map[string]any{"rows": rows, "migrated_at": stamp(now)},
	}
}

// NamedNodes batches publisher, mechanic or genre rows.
func NamedNodes(label string, entities []models.NamedEntity, now time.Time) CypherStatement {
	rows := make([]map[string]any, 0, len(entities))
	for _, entity := range entities {
		rows = append(rows, map[string]any{"id": entity.ID, "name": entity.Name})
	}
	return CypherStatement{
		Query: `UNWIND $rows AS row
			MERGE (n:` + label + ` {id: row.id})
			SET n.name = row.name, n.migrated_at = $migrated_at`,
		Params: map[string]any{"rows": rows, "migrated_at": stamp(now)},
	}
}

func LanguageNodes(languages []models.Language, now time.Time) CypherStatement {
	rows := make([]map[string]any, 0, len(languages))
	for _, language := range languages {
		rows = append(rows, map[string]any{"id": language.ID, "name": language.Language})
	}
	return CypherStatement{
		Query: `UNWIND $rows AS row
			MERGE (n:Language {id: row.id})
			SET n.name = row.name, n.migrated_at = $migrated_at`,
		Params: map[string]any{"rows": rows, "migrated_at": stamp(now)},
	}
}

// GameRelationEdges links one game to a batch of sub-entities. Missing
// endpoints drop out of the MATCH and produce no edge.
func GameRelationEdges(gameID int, relType, label string, items []models.IDName) CypherStatement {
	ids := make([]int, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	return CypherStatement{
		Query: `UNWIND $ids AS rid
			MATCH (g:Game {id: $game_id})
			MATCH (n:` + label + ` {id: rid})
			MERGE (g)-[:` + relType + `]->(n)`,
		Params: map[string]any{"game_id": gameID, "ids": ids},
	}
}

func ReviewNode(review models.ReviewWithUser, now time.Time) CypherStatement {
	return CypherStatement{
		Query: `MERGE (rev:Review {id: $id})
			SET rev.title = $title, rev.text = $text, rev.star_amount = $star_amount,
			    rev.migrated_at = $migrated_at
			WITH rev
			OPTIONAL MATCH (u:User {id: $user_id})
			OPTIONAL MATCH (g:Game {id: $game_id})
			FOREACH (_ IN CASE WHEN u IS NULL THEN [] ELSE [1] END | MERGE (u)-[:` + neorepo.RelWrote + `]->(rev))
			FOREACH (_ IN CASE WHEN g IS NULL THEN [] ELSE [1] END | MERGE (rev)-[:` + neorepo.RelForGame + `]->(g))`,
		Params: map[string]any{
			"id":          review.ID,
			"title":       review.Title,
			"text":        review.Text,
			"star_amount": review.StarAmount,
			"user_id":     review.UserID,
			"game_id":     review.GameID,
			"migrated_at": stamp(now),
		},
	}
}

func VideoNode(video models.Video, now time.Time) CypherStatement {
	languageID := any(nil)
	if video.LanguageID != nil {
		languageID = *video.LanguageID
	}
	return CypherStatement{
		Query: `MERGE (v:Video {id: $id})
			SET v.title = $title, v.category = $category, v.link = $link,
			    v.migrated_at = $migrated_at
			WITH v
			OPTIONAL MATCH (g:Game {id: $game_id})
			OPTIONAL MATCH (l:Language {id: $language_id})
			FOREACH (_ IN CASE WHEN g IS NULL THEN [] ELSE [1] END | MERGE (g)-[:` + neorepo.RelHasVideo + `]->(v))
			FOREACH (_ IN CASE WHEN l IS NULL THEN [] ELSE [1] END | MERGE (v)-[:` + neorepo.RelInLanguage + `]->(l))`,
		Params: map[string]any{
			"id":          video.ID,
			"title":       video.Title,
			"category":    video.Category,
			"link":        video.Link,
			"game_id":     video.GameID,
			"language_id": languageID,
			"migrated_at": stamp(now),
		},
	}
}

// MatchupStatements renders one matchup as a node plus its participation,
// outcome, spectator and move edges.
func MatchupStatements(matchup models.Matchup, moves []models.Move, spectators []int, now time.Time) []CypherStatement {
	statements := []CypherStatement{{
		Query: `MERGE (m:Matchup {id: $id})
			SET m.game_id = $game_id, m.start_time = $start_time, m.end_time = $end_time,
			    m.created_at = $created_at, m.is_private = $is_private,
			    m.is_expired = $is_expired, m.migrated_at = $migrated_at
			WITH m
			OPTIONAL MATCH (g:Game {id: $game_id})
			FOREACH (_ IN CASE WHEN g IS NULL THEN [] ELSE [1] END | MERGE (m)-[:` + neorepo.RelForGame + `]->(g))`,
		Params: map[string]any{
			"id":          matchup.ID,
			"game_id":     matchup.GameID,
			"start_time":  formatTime(matchup.StartTime),
			"end_time":    formatTime(matchup.EndTime),
			"created_at":  formatTime(matchup.CreatedAt),
			"is_private":  matchup.IsPrivate,
			"is_expired":  matchup.IsExpired,
			"migrated_at": stamp(now),
		},
	}}

	participate := func(userID, role int) CypherStatement {
		return CypherStatement{
			Query: `MATCH (u:User {id: $user_id}), (m:Matchup {id: $matchup_id})
				MERGE (u)-[:` + neorepo.RelParticipated + ` {role: $role}]->(m)`,
			Params: map[string]any{"user_id": userID, "matchup_id": matchup.ID, "role": role},
		}
	}
	statements = append(statements, participate(matchup.UserID1, 1), participate(matchup.UserID2, 2))

	if matchup.UserIDWinner != nil {
		statements = append(statements, CypherStatement{
			Query: `MATCH (u:User {id: $user_id}), (m:Matchup {id: $matchup_id})
				MERGE (u)-[:` + neorepo.RelWon + `]->(m)`,
			Params: map[string]any{"user_id": *matchup.UserIDWinner, "matchup_id": matchup.ID},
		})
	}
	if matchup.CreatedByUserID != nil {
		statements = append(statements, CypherStatement{
			Query: `MATCH (u:User {id: $user_id}), (m:Matchup {id: $matchup_id})
				MERGE (u)-[:` + neorepo.RelCreated + `]->(m)`,
			Params: map[string]any{"user_id": *matchup.CreatedByUserID, "matchup_id": matchup.ID},
		})
	}

	if len(spectators) > 0 {
		statements = append(statements, CypherStatement{
			Query: `UNWIND $user_ids AS uid
				MATCH (u:User {id: uid}), (m:Matchup {id: $matchup_id})
				MERGE (u)-[:` + neorepo.RelSpectated + `]->(m)`,
			Params: map[string]any{"user_ids": spectators, "matchup_id": matchup.ID},
		})
	}

	if len(moves) > 0 {
		rows := make([]map[string]any, 0, len(moves))
		for _, move := range moves {
			rows = append(rows, map[string]any{
				"id": move.ID, "ply": move.Ply,
				"start_x": move.StartX, "start_y": move.StartY,
				"end_x": move.EndX, "end_y": move.EndY,
			})
		}
		statements = append(statements, CypherStatement{
			Query: `UNWIND $rows AS row
				MATCH (m:Matchup {id: $matchup_id})
				MERGE (mv:Move {id: row.id})
				SET mv.ply = row.ply, mv.start_x = row.start_x, mv.start_y = row.start_y,
				    mv.end_x = row.end_x, mv.end_y = row.end_y
				MERGE (m)-[:` + neorepo.RelContainsMove + `]->(mv)`,
			Params: map[string]any{"rows": rows, "matchup_id": matchup.ID},
		})
	}
	return statements
}

func FriendshipEdge(friendship models.Friendship) CypherStatement {
	return CypherStatement{
		Query: `MATCH (a:User {id: $user_id_1}), (b:User {id: $user_id_2})
			MERGE (a)-[f:` + neorepo.RelFriendsWith + `]->(b)
			SET f.created_at = $created_at`,
		Params: map[string]any{
			"user_id_1":  friendship.UserID1,
			"user_id_2":  friendship.UserID2,
			"created_at": formatTime(friendship.CreatedAt),
		},
	}
}

func MessageEdge(message models.Message) CypherStatement {
	return CypherStatement{
		Query: `MATCH (a:User {id: $user_id_1}), (b:User {id: $user_id_2})
			MERGE (a)-[msg:` + neorepo.RelMessaged + ` {id: $id}]->(b)
			SET msg.text = $text, msg.sent_at = $sent_at`,
		Params: map[string]any{
			"id":        message.ID,
			"user_id_1": message.UserID1,
			"user_id_2": message.UserID2,
			"text":      message.Text,
			"sent_at":   formatTime(message.SentAt),
		},
	}
}
