package neorepo

import (
	"context"
	"fmt"

	"github.com/gamevault/gamevault-go/internal/database"
	"github.com/gamevault/gamevault-go/internal/models"
)

// VideoRepository serves Video nodes attached to games:
// (Game)-[:HAS_VIDEO]->(Video), (Video)-[:IN_LANGUAGE]->(Language).
type VideoRepository struct {
	client *database.Neo4jClient
}

func NewVideoRepository(client *database.Neo4jClient) *VideoRepository {
	return &VideoRepository{client: client}
}

func recordToVideo(record map[string]any) (*models.Video, error) {
	props, ok := nodeProps(record, "node")
	if !ok {
		return nil, fmt.Errorf("unexpected video record shape")
	}
	video := &models.Video{
		ID:       intProp(props, "id"),
		Title:    strProp(props, "title"),
		Category: strPtrProp(props, "category"),
		Link:     strProp(props, "link"),
	}
	if v, ok := record["game_id"].(int64); ok {
		video.GameID = int(v)
	}
	if v, ok := record["language_id"].(int64); ok {
		langID := int(v)
		video.LanguageID = &langID
	}
	return video, nil
}

func (r *VideoRepository) Get(ctx context.Context, id int) (*models.Video, error) {
	records, err := r.client.RunRead(ctx, `
		MATCH (v:Video {id: $id})
		OPTIONAL MATCH (g:Game)-[:`+RelHasVideo+`]->(v)
		OPTIONAL MATCH (v)-[:`+RelInLanguage+`]->(l:Language)
		RETURN v{.*} AS node, g.id AS game_id, l.id AS language_id`,
		map[string]any{"id": id})
	if err != nil {
		return nil, fmt.Errorf("get video %d: %w", id, err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return recordToVideo(records[0])
}

func (r *VideoRepository) ListByGame(ctx context.Context, gameID int) ([]models.Video, error) {
	records, err := r.client.RunRead(ctx, `
		MATCH (g:Game {id: $game_id})-[:`+RelHasVideo+`]->(v:Video)
		OPTIONAL MATCH (v)-[:`+RelInLanguage+`]->(l:Language)
		RETURN v{.*} AS node, g.id AS game_id, l.id AS language_id
		ORDER BY v.id`,
		map[string]any{"game_id": gameID})
	if err != nil {
		return nil, fmt.Errorf("list videos of game %d: %w", gameID, err)
	}

	videos := []models.Video{}
	for _, record := range records {
		video, err := recordToVideo(record)
		if err != nil {
			return nil, err
		}
		videos = append(videos, *video)
	}
	return videos, nil
}

func (r *VideoRepository) Create(ctx context.Context, video *models.Video) (*models.Video, error) {
	if video.ID == 0 {
		records, err := r.client.RunRead(ctx,
			`MATCH (v:Video) RETURN coalesce(max(v.id), 0) + 1 AS next`, nil)
		if err != nil {
			return nil, fmt.Errorf("next video id: %w", err)
		}
		next, err := database.CountValue(records, "next")
		if err != nil {
			return nil, fmt.Errorf("next video id: %w", err)
		}
		if next == 0 {
			next = 1
		}
		video.ID = next
	}

	languageID := any(nil)
	if video.LanguageID != nil {
		languageID = *video.LanguageID
	}
	_, err := r.client.Run(ctx, `
		MERGE (v:Video {id: $id})
		SET v.title = $title, v.category = $category, v.link = $link
		WITH v
		OPTIONAL MATCH (g:Game {id: $game_id})
		OPTIONAL MATCH (l:Language {id: $language_id})
		FOREACH (_ IN CASE WHEN g IS NULL THEN [] ELSE [1] END | MERGE (g)-[:`+RelHasVideo+`]->(v))
		FOREACH (_ IN CASE WHEN l IS NULL THEN [] ELSE [1] END | MERGE (v)-[:`+RelInLanguage+`]->(l))`,
		map[string]any{
			"id":          video.ID,
			"title":       video.Title,
			"category":    video.Category,
			"link":        video.Link,
			"game_id":     video.GameID,
			"language_id": languageID,
		})
	if err != nil {
		return nil, fmt.Errorf("create video %d: %w", video.ID, err)
	}
	return video, nil
}

var videoUpdatable = map[string]bool{
	"title":    true,
	"category": true,
	"link":     true,
}

func (r *VideoRepository) Update(ctx context.Context, id int, fields map[string]any) (*models.Video, error) {
	params := map[string]any{"id": id}
	set := setClauses("v", fields, videoUpdatable, params)
	if set == "" {
		return r.Get(ctx, id)
	}

	records, err := r.client.Run(ctx,
		`MATCH (v:Video {id: $id}) SET `+set+` RETURN v.id AS id`, params)
	if err != nil {
		return nil, fmt.Errorf("update video %d: %w", id, err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return r.Get(ctx, id)
}

func (r *VideoRepository) Delete(ctx context.Context, id int) (bool, error) {
	records, err := r.client.Run(ctx,
		`MATCH (v:Video {id: $id}) DETACH DELETE v RETURN count(v) AS deleted`,
		map[string]any{"id": id})
	if err != nil {
		return false, fmt.Errorf("delete video %d: %w", id, err)
	}
	deleted, err := database.CountValue(records, "deleted")
	if err != nil {
		return false, fmt.Errorf("delete video %d: %w", id, err)
	}
	return deleted > 0, nil
}
