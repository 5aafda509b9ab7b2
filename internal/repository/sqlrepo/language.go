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

type LanguageRepository struct {
	db *sqlx.DB
}

func NewLanguageRepository(db *sqlx.DB) *LanguageRepository {
	return &LanguageRepository{db: db}
}

func (r *LanguageRepository) Get(ctx context.Context, id int) (*models.Language, error) {
	var lang models.Language
	query := r.db.Rebind(`SELECT * FROM language WHERE id = ?`)
	if err := r.db.GetContext(ctx, &lang, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get language %d: %w", id, err)
	}
	return &lang, nil
}

func (r *LanguageRepository) GetByName(ctx context.Context, name string) (*models.Language, error) {
	var lang models.Language
	query := r.db.Rebind(`SELECT * FROM language WHERE language = ?`)
	if err := r.db.GetContext(ctx, &lang, query, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get language by name %q: %w", name, err)
	}
	return &lang, nil
}

func (r *LanguageRepository) List(ctx context.Context, p repository.ListParams) ([]models.Language, int, error) {
	where := ""
	args := []any{}
	if p.Search != "" {
		where = ` WHERE LOWER(language) LIKE ?`
		args = append(args, likePattern(p.Search))
	}

	var total int
	countQuery := r.db.Rebind(`SELECT COUNT(*) FROM language` + where)
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count languages: %w", err)
	}

	order := sortClause(p.SortBy, p.Desc(), map[string]string{"language": "language"}, "id")
	query := r.db.Rebind(`SELECT * FROM language` + where +
		` ORDER BY ` + order + ` LIMIT ? OFFSET ?`)
	args = append(args, p.Limit, p.Offset)

	languages := []models.Language{}
	if err := r.db.SelectContext(ctx, &languages, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list languages: %w", err)
	}
	return languages, total, nil
}

func (r *LanguageRepository) Create(ctx context.Context, lang *models.Language) (*models.Language, error) {
	if lang.ID == 0 {
		query := r.db.Rebind(`
			INSERT INTO language (id, language)
			VALUES ((SELECT COALESCE(MAX(id), 0) + 1 FROM language), ?)
			RETURNING id`)
		if err := r.db.QueryRowxContext(ctx, query, lang.Language).Scan(&lang.ID); err != nil {
			return nil, fmt.Errorf("create language: %w", err)
		}
		return lang, nil
	}

	query := r.db.Rebind(`INSERT INTO language (id, language) VALUES (?, ?)`)
	if _, err := r.db.ExecContext(ctx, query, lang.ID, lang.Language); err != nil {
		return nil, fmt.Errorf("create language %d: %w", lang.ID, err)
	}
	return lang, nil
}

func (r *LanguageRepository) Delete(ctx context.Context, id int) (bool, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM language WHERE id = ?`), id)
	if err != nil {
		return false, fmt.Errorf("delete language %d: %w", id, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
