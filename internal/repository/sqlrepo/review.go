package sqlrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/gamevault/gamevault-go/internal/models"
	"github.com/gamevault/gamevault-go/internal/repository"
)

type ReviewRepository struct {
	db *sqlx.DB
}

func NewReviewRepository(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

var reviewUpdatable = map[string]bool{
	"title": true, "text": true, "star_amount": true,
}

func (r *ReviewRepository) Get(ctx context.Context, id int) (*models.Review, error) {
	var review models.Review
	query := r.db.Rebind(`SELECT * FROM review WHERE id = ?`)
	if err := r.db.GetContext(ctx, &review, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get review %d: %w", id, err)
	}
	return &review, nil
}

func (r *ReviewRepository) List(ctx context.Context, p repository.ListParams) ([]models.Review, int, error) {
	where := ""
	args := []any{}
	if p.Search != "" {
		where = ` WHERE LOWER(title) LIKE ?`
		args = append(args, likePattern(p.Search))
	}

	var total int
	countQuery := r.db.Rebind(`SELECT COUNT(*) FROM review` + where)
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count reviews: %w", err)
	}

	order := sortClause(p.SortBy, p.Desc(), map[string]string{
		"title":       "title",
		"star_amount": "star_amount",
	}, "id")
	query := r.db.Rebind(`SELECT * FROM review` + where +
		` ORDER BY ` + order + ` LIMIT ? OFFSET ?`)
	args = append(args, p.Limit, p.Offset)

	reviews := []models.Review{}
	if err := r.db.SelectContext(ctx, &reviews, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, total, nil
}

// ListByGame joins the author in one query so detail views need no per-row
// user lookups.
func (r *ReviewRepository) ListByGame(ctx context.Context, gameID int) ([]models.ReviewWithUser, error) {
	query := r.db.Rebind(`
		SELECT r.*, u.display_name, u.username
		FROM review r
		JOIN "user" u ON r.user_id = u.id
		WHERE r.game_id = ?
		ORDER BY r.id`)
	reviews := []models.ReviewWithUser{}
	if err := r.db.SelectContext(ctx, &reviews, query, gameID); err != nil {
		return nil, fmt.Errorf("list reviews for game %d: %w", gameID, err)
	}
	return reviews, nil
}

func (r *ReviewRepository) CountByGame(ctx context.Context, gameID int) (int, error) {
	var total int
	query := r.db.Rebind(`SELECT COUNT(*) FROM review WHERE game_id = ?`)
	if err := r.db.GetContext(ctx, &total, query, gameID); err != nil {
		return 0, fmt.Errorf("count reviews for game %d: %w", gameID, err)
	}
	return total, nil
}

func (r *ReviewRepository) AverageStarsByGame(ctx context.Context, gameID int) (float64, error) {
	var avg sql.NullFloat64
	query := r.db.Rebind(`SELECT AVG(star_amount) FROM review WHERE game_id = ?`)
	if err := r.db.GetContext(ctx, &avg, query, gameID); err != nil {
		return 0, fmt.Errorf("average stars for game %d: %w", gameID, err)
	}
	return avg.Float64, nil
}

func (r *ReviewRepository) Create(ctx context.Context, review *models.Review) (*models.Review, error) {
	if review.ID == 0 {
		query := r.db.Rebind(`
			INSERT INTO review (id, title, text, star_amount, user_id, game_id)
			VALUES ((SELECT COALESCE(MAX(id), 0) + 1 FROM review), ?, ?, ?, ?, ?)
			RETURNING id`)
		if err := r.db.QueryRowxContext(ctx, query,
			review.Title, review.Text, review.StarAmount, review.UserID, review.GameID).Scan(&review.ID); err != nil {
			return nil, fmt.Errorf("create review: %w", err)
		}
		return review, nil
	}

	query := r.db.Rebind(`
		INSERT INTO review (id, title, text, star_amount, user_id, game_id)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if _, err := r.db.ExecContext(ctx, query,
		review.ID, review.Title, review.Text, review.StarAmount, review.UserID, review.GameID); err != nil {
		return nil, fmt.Errorf("create review %d: %w", review.ID, err)
	}
	return review, nil
}

func (r *ReviewRepository) Update(ctx context.Context, id int, fields map[string]any) (*models.Review, error) {
	set, args, ok := buildSet(fields, reviewUpdatable)
	if !ok {
		return r.Get(ctx, id)
	}

	query := r.db.Rebind(`UPDATE review SET ` + set + ` WHERE id = ?`)
	args = append(args, id)
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("update review %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, nil
	}
	return r.Get(ctx, id)
}

func (r *ReviewRepository) Delete(ctx context.Context, id int) (bool, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM review WHERE id = ?`), id)
	if err != nil {
		return false, fmt.Errorf("delete review %d: %w", id, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
