package sqlrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/gamevault/gamevault-go/internal/models"
)

type VideoRepository struct {
	db *sqlx.DB
}

func NewVideoRepository(db *sqlx.DB) *VideoRepository {
	return &VideoRepository{db: db}
}

var videoUpdatable = map[string]bool{
	"title": true, "category": true, "link": true, "language_id": true,
}

func (r *VideoRepository) Get(ctx context.Context, id int) (*models.Video, error) {
	var video models.Video
	query := r.db.Rebind(`SELECT * FROM video WHERE id = ?`)
	if err := r.db.GetContext(ctx, &video, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get video %d: %w", id, err)
	}
	return &video, nil
}

func (r *VideoRepository) ListByGame(ctx context.Context, gameID int) ([]models.Video, error) {
	query := r.db.Rebind(`SELECT * FROM video WHERE game_id = ? ORDER BY id`)
	videos := []models.Video{}
	if err := r.db.SelectContext(ctx, &videos, query, gameID); err != nil {
		return nil, fmt.Errorf("list videos for game %d: %w", gameID, err)
	}
	return videos, nil
}

func (r *VideoRepository) Create(ctx context.Context, video *models.Video) (*models.Video, error) {
	if video.ID == 0 {
		query := r.db.Rebind(`
			INSERT INTO video (id, title, category, link, game_id, language_id)
			VALUES ((SELECT COALESCE(MAX(id), 0) + 1 FROM video), ?, ?, ?, ?, ?)
			RETURNING id`)
		if err := r.db.QueryRowxContext(ctx, query,
			video.Title, video.Category, video.Link, video.GameID, video.LanguageID).Scan(&video.ID); err != nil {
			return nil, fmt.Errorf("create video: %w", err)
		}
		return video, nil
	}

	query := r.db.Rebind(`
		INSERT INTO video (id, title, category, link, game_id, language_id)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if _, err := r.db.ExecContext(ctx, query,
		video.ID, video.Title, video.Category, video.Link, video.GameID, video.LanguageID); err != nil {
		return nil, fmt.Errorf("create video %d: %w", video.ID, err)
	}
	return video, nil
}

func (r *VideoRepository) Update(ctx context.Context, id int, fields map[string]any) (*models.Video, error) {
	set, args, ok := buildSet(fields, videoUpdatable)
	if !ok {
		return r.Get(ctx, id)
	}

	query := r.db.Rebind(`UPDATE video SET ` + set + ` WHERE id = ?`)
	args = append(args, id)
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("update video %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, nil
	}
	return r.Get(ctx, id)
}

func (r *VideoRepository) Delete(ctx context.Context, id int) (bool, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM video WHERE id = ?`), id)
	if err != nil {
		return false, fmt.Errorf("delete video %d: %w", id, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
