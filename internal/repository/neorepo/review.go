package neorepo

import (
	"context"
	"fmt"

	"github.com/gamevault/gamevault-go/internal/database"
	"github.com/gamevault/gamevault-go/internal/models"
	"github.com/gamevault/gamevault-go/internal/repository"
)

// ReviewRepository serves Review nodes. Authorship and the reviewed game are
// relationships, not properties: (User)-[:WROTE]->(Review)-[:FOR_GAME]->(Game).
type ReviewRepository struct {
	client *database.Neo4jClient
}

func NewReviewRepository(client *database.Neo4jClient) *ReviewRepository {
	return &ReviewRepository{client: client}
}

func recordToReview(record map[string]any) (*models.Review, error) {
	props, ok := nodeProps(record, "node")
	if !ok {
		return nil, fmt.Errorf("unexpected review record shape")
	}
	review := &models.Review{
		ID:         intProp(props, "id"),
		Title:      strProp(props, "title"),
		Text:       strProp(props, "text"),
		StarAmount: intProp(props, "star_amount"),
	}
	if v, ok := record["user_id"].(int64); ok {
		review.UserID = int(v)
	}
	if v, ok := record["game_id"].(int64); ok {
		review.GameID = int(v)
	}
	return review, nil
}

const reviewMatch = `
	MATCH (rev:Review {id: $id})
	OPTIONAL MATCH (u:User)-[:` + RelWrote + `]->(rev)
	OPTIONAL MATCH (rev)-[:` + RelForGame + `]->(g:Game)
	RETURN rev{.*} AS node, u.id AS user_id, g.id AS game_id`

func (r *ReviewRepository) Get(ctx context.Context, id int) (*models.Review, error) {
	records, err := r.client.RunRead(ctx, reviewMatch, map[string]any{"id": id})
	if err != nil {
		return nil, fmt.Errorf("get review %d: %w", id, err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return recordToReview(records[0])
}

func (r *ReviewRepository) List(ctx context.Context, p repository.ListParams) ([]models.Review, int, error) {
	where := ""
	params := map[string]any{}
	if p.Search != "" {
		where = searchClause("rev.title")
		params["search"] = p.Search
	}

	countRecords, err := r.client.RunRead(ctx,
		`MATCH (rev:Review)`+where+` RETURN count(rev) AS total`, params)
	if err != nil {
		return nil, 0, fmt.Errorf("count reviews: %w", err)
	}
	total, err := database.CountValue(countRecords, "total")
	if err != nil {
		return nil, 0, fmt.Errorf("count reviews: %w", err)
	}

	params["offset"] = p.Offset
	params["limit"] = p.Limit
	records, err := r.client.RunRead(ctx, `
		MATCH (rev:Review)`+where+`
		OPTIONAL MATCH (u:User)-[:`+RelWrote+`]->(rev)
		OPTIONAL MATCH (rev)-[:`+RelForGame+`]->(g:Game)
		RETURN rev{.*} AS node, u.id AS user_id, g.id AS game_id
		ORDER BY rev.id `+sortDir(p.Desc())+`
		SKIP $offset LIMIT $limit`, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}

	reviews := []models.Review{}
	for _, record := range records {
		review, err := recordToReview(record)
		if err != nil {
			return nil, 0, err
		}
		reviews = append(reviews, *review)
	}
	return reviews, total, nil
}

func (r *ReviewRepository) ListByGame(ctx context.Context, gameID int) ([]models.ReviewWithUser, error) {
	records, err := r.client.RunRead(ctx, `
		MATCH (rev:Review)-[:`+RelForGame+`]->(g:Game {id: $game_id})
		OPTIONAL MATCH (u:User)-[:`+RelWrote+`]->(rev)
		RETURN rev{.*} AS node, u.id AS user_id, g.id AS game_id,
		       u.display_name AS display_name, u.username AS username
		ORDER BY rev.id`,
		map[string]any{"game_id": gameID})
	if err != nil {
		return nil, fmt.Errorf("list reviews of game %d: %w", gameID, err)
	}

	reviews := []models.ReviewWithUser{}
	for _, record := range records {
		review, err := recordToReview(record)
		if err != nil {
			return nil, err
		}
		withUser := models.ReviewWithUser{Review: *review}
		if v, ok := record["display_name"].(string); ok {
			withUser.DisplayName = v
		}
		if v, ok := record["username"].(string); ok {
			withUser.Username = v
		}
		reviews = append(reviews, withUser)
	}
	return reviews, nil
}

func (r *ReviewRepository) CountByGame(ctx context.Context, gameID int) (int, error) {
	records, err := r.client.RunRead(ctx,
		`MATCH (rev:Review)-[:`+RelForGame+`]->(g:Game {id: $game_id}) RETURN count(rev) AS total`,
		map[string]any{"game_id": gameID})
	if err != nil {
		return 0, fmt.Errorf("count reviews of game %d: %w", gameID, err)
	}
	return database.CountValue(records, "total")
}

func (r *ReviewRepository) AverageStarsByGame(ctx context.Context, gameID int) (float64, error) {
	records, err := r.client.RunRead(ctx,
		`MATCH (rev:Review)-[:`+RelForGame+`]->(g:Game {id: $game_id})
		 RETURN coalesce(avg(rev.star_amount), 0.0) AS average`,
		map[string]any{"game_id": gameID})
	if err != nil {
		return 0, fmt.Errorf("average stars of game %d: %w", gameID, err)
	}
	if len(records) == 0 {
		return 0, nil
	}
	switch v := records[0]["average"].(type) {
	case float64:
		return v, nil
	case int64:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("unexpected type for average: %T", records[0]["average"])
	}
}

// Create writes the node and attaches the author and game edges. A missing
// endpoint leaves the review node dangling rather than failing the write;
// migrations replay edges afterwards.
func (r *ReviewRepository) Create(ctx context.Context, review *models.Review) (*models.Review, error) {
	if review.ID == 0 {
		records, err := r.client.RunRead(ctx,
			`MATCH (rev:Review) RETURN coalesce(max(rev.id), 0) + 1 AS next`, nil)
		if err != nil {
			return nil, fmt.Errorf("next review id: %w", err)
		}
		next, err := database.CountValue(records, "next")
		if err != nil {
			return nil, fmt.Errorf("next review id: %w", err)
		}
		if next == 0 {
			next = 1
		}
		review.ID = next
	}

	_, err := r.client.Run(ctx, `
		MERGE (rev:Review {id: $id})
		SET rev.title = $title, rev.text = $text, rev.star_amount = $star_amount
		WITH rev
		OPTIONAL MATCH (u:User {id: $user_id})
		OPTIONAL MATCH (g:Game {id: $game_id})
		FOREACH (_ IN CASE WHEN u IS NULL THEN [] ELSE [1] END | MERGE (u)-[:`+RelWrote+`]->(rev))
		FOREACH (_ IN CASE WHEN g IS NULL THEN [] ELSE [1] END | MERGE (rev)-[:`+RelForGame+`]->(g))`,
		map[string]any{
			"id":          review.ID,
			"title":       review.Title,
			"text":        review.Text,
			"star_amount": review.StarAmount,
			"user_id":     review.UserID,
			"game_id":     review.GameID,
		})
	if err != nil {
		return nil, fmt.Errorf("create review %d: %w", review.ID, err)
	}
	return review, nil
}

var reviewUpdatable = map[string]bool{
	"title":       true,
	"text":        true,
	"star_amount": true,
}

func (r *ReviewRepository) Update(ctx context.Context, id int, fields map[string]any) (*models.Review, error) {
	params := map[string]any{"id": id}
	set := setClauses("rev", fields, reviewUpdatable, params)
	if set == "" {
		return r.Get(ctx, id)
	}

	records, err := r.client.Run(ctx,
		`MATCH (rev:Review {id: $id}) SET `+set+` RETURN rev.id AS id`, params)
	if err != nil {
		return nil, fmt.Errorf("update review %d: %w", id, err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return r.Get(ctx, id)
}

func (r *ReviewRepository) Delete(ctx context.Context, id int) (bool, error) {
	records, err := r.client.Run(ctx,
		`MATCH (rev:Review {id: $id}) DETACH DELETE rev RETURN count(rev) AS deleted`,
		map[string]any{"id": id})
	if err != nil {
		return false, fmt.Errorf("delete review %d: %w", id, err)
	}
	deleted, err := database.CountValue(records, "deleted")
	if err != nil {
		return false, fmt.Errorf("delete review %d: %w", id, err)
	}
	return deleted > 0, nil
}
