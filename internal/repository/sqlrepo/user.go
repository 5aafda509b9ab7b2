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

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

var userUpdatable = map[string]bool{
	"display_name": true, "username": true, "password": true,
	"email": true, "dob": true, "is_admin": true,
}

func (r *UserRepository) Get(ctx context.Context, id int) (*models.User, error) {
	var user models.User
	query := r.db.Rebind(`SELECT * FROM "user" WHERE id = ?`)
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return &user, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	query := r.db.Rebind(`SELECT * FROM "user" WHERE username = ?`)
	if err := r.db.GetContext(ctx, &user, query, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by username %q: %w", username, err)
	}
	return &user, nil
}

func (r *UserRepository) GetByDisplayName(ctx context.Context, displayName string) (*models.User, error) {
	var user models.User
	query := r.db.Rebind(`SELECT * FROM "user" WHERE display_name = ?`)
	if err := r.db.GetContext(ctx, &user, query, displayName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by display name %q: %w", displayName, err)
	}
	return &user, nil
}

func (r *UserRepository) List(ctx context.Context, p repository.ListParams) ([]models.User, int, error) {
	where := ""
	args := []any{}
	if p.Search != "" {
		where = ` WHERE LOWER(username) LIKE ? OR LOWER(email) LIKE ?`
		pattern := likePattern(p.Search)
		args = append(args, pattern, pattern)
	}

	var total int
	countQuery := r.db.Rebind(`SELECT COUNT(*) FROM "user"` + where)
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	order := sortClause(p.SortBy, p.Desc(), map[string]string{
		"display_name": "display_name",
		"username":     "username",
	}, "id")
	query := r.db.Rebind(`SELECT * FROM "user"` + where +
		` ORDER BY ` + order + ` LIMIT ? OFFSET ?`)
	args = append(args, p.Limit, p.Offset)

	users := []models.User{}
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if user.ID == 0 {
		query := r.db.Rebind(`
			INSERT INTO "user" (id, display_name, username, password, email, dob, is_admin)
			VALUES ((SELECT COALESCE(MAX(id), 0) + 1 FROM "user"), ?, ?, ?, ?, ?, ?)
			RETURNING id`)
		if err := r.db.QueryRowxContext(ctx, query,
			user.DisplayName, user.Username, user.Password, user.Email, user.DOB, user.IsAdmin).Scan(&user.ID); err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		return user, nil
	}

	query := r.db.Rebind(`
		INSERT INTO "user" (id, display_name, username, password, email, dob, is_admin)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if _, err := r.db.ExecContext(ctx, query,
		user.ID, user.DisplayName, user.Username, user.Password, user.Email, user.DOB, user.IsAdmin); err != nil {
		return nil, fmt.Errorf("create user %d: %w", user.ID, err)
	}
	return user, nil
}

func (r *UserRepository) Update(ctx context.Context, id int, fields map[string]any) (*models.User, error) {
	set, args, ok := buildSet(fields, userUpdatable)
	if !ok {
		return r.Get(ctx, id)
	}

	query := r.db.Rebind(`UPDATE "user" SET ` + set + ` WHERE id = ?`)
	args = append(args, id)
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("update user %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, nil
	}
	return r.Get(ctx, id)
}

// Delete removes a user together with their reviews, social rows and matchup
// participation footprint in one transaction.
func (r *UserRepository) Delete(ctx context.Context, id int) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin user delete: %w", err)
	}
	defer tx.Rollback()

	cleanups := []string{
		`DELETE FROM review WHERE user_id = ?`,
		`DELETE FROM spectator WHERE user_id = ?`,
		`DELETE FROM friendship WHERE user_id_1 = ? OR user_id_2 = ?`,
		`DELETE FROM message WHERE user_id_1 = ? OR user_id_2 = ?`,
	}
	for _, stmt := range cleanups {
		q := tx.Rebind(stmt)
		var err error
		if countPlaceholders(stmt) == 2 {
			_, err = tx.ExecContext(ctx, q, id, id)
		} else {
			_, err = tx.ExecContext(ctx, q, id)
		}
		if err != nil {
			return false, fmt.Errorf("delete user %d dependents: %w", id, err)
		}
	}

	res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM "user" WHERE id = ?`), id)
	if err != nil {
		return false, fmt.Errorf("delete user %d: %w", id, err)
	}
	n, _ := res.RowsAffected()
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit user delete: %w", err)
	}
	return n > 0, nil
}

func countPlaceholders(stmt string) int {
	n := 0
	for _, c := range stmt {
		if c == '?' {
			n++
		}
	}
	return n
}
