package sqlrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/gamevault/gamevault-go/internal/models"
)

// MatchupRepository and MoveRepository exist only on the relational backend.
type MatchupRepository struct {
	db *sqlx.DB
}

func NewMatchupRepository(db *sqlx.DB) *MatchupRepository {
	return &MatchupRepository{db: db}
}

var matchupUpdatable = map[string]bool{
	"user_id_winner": true, "start_time": true, "end_time": true,
	"is_private": true, "is_expired": true,
}

func (r *MatchupRepository) Get(ctx context.Context, id int) (*models.Matchup, error) {
	var matchup models.Matchup
	query := r.db.Rebind(`SELECT * FROM matchup WHERE id = ?`)
	if err := r.db.GetContext(ctx, &matchup, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get matchup %d: %w", id, err)
	}
	return &matchup, nil
}

func (r *MatchupRepository) ListByUser(ctx context.Context, userID int) ([]models.Matchup, error) {
	query := r.db.Rebind(`
		SELECT * FROM matchup
		WHERE user_id_1 = ? OR user_id_2 = ?
		ORDER BY id`)
	matchups := []models.Matchup{}
	if err := r.db.SelectContext(ctx, &matchups, query, userID, userID); err != nil {
		return nil, fmt.Errorf("list matchups for user %d: %w", userID, err)
	}
	return matchups, nil
}

func (r *MatchupRepository) Create(ctx context.Context, matchup *models.Matchup) (*models.Matchup, error) {
	if matchup.ID == 0 {
		query := r.db.Rebind(`
			INSERT INTO matchup (id, game_id, user_id_1, user_id_2, user_id_winner,
				created_by_user_id, start_time, end_time, created_at, is_private, is_expired)
			VALUES ((SELECT COALESCE(MAX(id), 0) + 1 FROM matchup), ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			RETURNING id`)
		if err := r.db.QueryRowxContext(ctx, query,
			matchup.GameID, matchup.UserID1, matchup.UserID2, matchup.UserIDWinner,
			matchup.CreatedByUserID, matchup.StartTime, matchup.EndTime, matchup.CreatedAt,
			matchup.IsPrivate, matchup.IsExpired).Scan(&matchup.ID); err != nil {
			return nil, fmt.Errorf("create matchup: %w", err)
		}
		return matchup, nil
	}

	query := r.db.Rebind(`
		INSERT INTO matchup (id, game_id, user_id_1, user_id_2, user_id_winner,
			created_by_user_id, start_time, end_time, created_at, is_private, is_expired)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if _, err := r.db.ExecContext(ctx, query,
		matchup.ID, matchup.GameID, matchup.UserID1, matchup.UserID2, matchup.UserIDWinner,
		matchup.CreatedByUserID, matchup.StartTime, matchup.EndTime, matchup.CreatedAt,
		matchup.IsPrivate, matchup.IsExpired); err != nil {
		return nil, fmt.Errorf("create matchup %d: %w", matchup.ID, err)
	}
	return matchup, nil
}

func (r *MatchupRepository) Update(ctx context.Context, id int, fields map[string]any) (*models.Matchup, error) {
	set, args, ok := buildSet(fields, matchupUpdatable)
	if !ok {
		return r.Get(ctx, id)
	}

	query := r.db.Rebind(`UPDATE matchup SET ` + set + ` WHERE id = ?`)
	args = append(args, id)
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("update matchup %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, nil
	}
	return r.Get(ctx, id)
}

// Delete removes the matchup with its moves, comments and spectator rows.
func (r *MatchupRepository) Delete(ctx context.Context, id int) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin matchup delete: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM move WHERE matchup_id = ?`,
		`DELETE FROM matchup_comment WHERE matchup_id = ?`,
		`DELETE FROM spectator WHERE matchup_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, tx.Rebind(stmt), id); err != nil {
			return false, fmt.Errorf("delete matchup %d dependents: %w", id, err)
		}
	}

	res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM matchup WHERE id = ?`), id)
	if err != nil {
		return false, fmt.Errorf("delete matchup %d: %w", id, err)
	}
	n, _ := res.RowsAffected()
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit matchup delete: %w", err)
	}
	return n > 0, nil
}

type MoveRepository struct {
	db *sqlx.DB
}

func NewMoveRepository(db *sqlx.DB) *MoveRepository {
	return &MoveRepository{db: db}
}

var moveUpdatable = map[string]bool{
	"end_x": true, "end_y": true,
}

func (r *MoveRepository) Get(ctx context.Context, id int) (*models.Move, error) {
	var move models.Move
	query := r.db.Rebind(`SELECT * FROM move WHERE id = ?`)
	if err := r.db.GetContext(ctx, &move, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get move %d: %w", id, err)
	}
	return &move, nil
}

// ListByMatchup returns moves in ply order.
func (r *MoveRepository) ListByMatchup(ctx context.Context, matchupID int) ([]models.Move, error) {
	query := r.db.Rebind(`SELECT * FROM move WHERE matchup_id = ? ORDER BY ply`)
	moves := []models.Move{}
	if err := r.db.SelectContext(ctx, &moves, query, matchupID); err != nil {
		return nil, fmt.Errorf("list moves for matchup %d: %w", matchupID, err)
	}
	return moves, nil
}

func (r *MoveRepository) Create(ctx context.Context, move *models.Move) (*models.Move, error) {
	if move.ID == 0 {
		query := r.db.Rebind(`
			INSERT INTO move (id, matchup_id, ply, start_x, start_y, end_x, end_y)
			VALUES ((SELECT COALESCE(MAX(id), 0) + 1 FROM move), ?, ?, ?, ?, ?, ?)
			RETURNING id`)
		if err := r.db.QueryRowxContext(ctx, query,
			move.MatchupID, move.Ply, move.StartX, move.StartY, move.EndX, move.EndY).Scan(&move.ID); err != nil {
			return nil, fmt.Errorf("create move: %w", err)
		}
		return move, nil
	}

	query := r.db.Rebind(`
		INSERT INTO move (id, matchup_id, ply, start_x, start_y, end_x, end_y)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if _, err := r.db.ExecContext(ctx, query,
		move.ID, move.MatchupID, move.Ply, move.StartX, move.StartY, move.EndX, move.EndY); err != nil {
		return nil, fmt.Errorf("create move %d: %w", move.ID, err)
	}
	return move, nil
}

func (r *MoveRepository) Update(ctx context.Context, id int, fields map[string]any) (*models.Move, error) {
	set, args, ok := buildSet(fields, moveUpdatable)
	if !ok {
		return r.Get(ctx, id)
	}

	query := r.db.Rebind(`UPDATE move SET ` + set + ` WHERE id = ?`)
	args = append(args, id)
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("update move %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, nil
	}
	return r.Get(ctx, id)
}

func (r *MoveRepository) Delete(ctx context.Context, id int) (bool, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM move WHERE id = ?`), id)
	if err != nil {
		return false, fmt.Errorf("delete move %d: %w", id, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
