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

// PersonRepository serves the designer and artist tables, which share a
// shape (id, name, dob). The table name is fixed at construction, never
// taken from callers.
type PersonRepository struct {
	db    *sqlx.DB
	table string
}

func NewPersonRepository(db *sqlx.DB, table string) *PersonRepository {
	return &PersonRepository{db: db, table: table}
}

var personUpdatable = map[string]bool{"name": true, "dob": true}

func (r *PersonRepository) Get(ctx context.Context, id int) (*models.Person, error) {
	var person models.Person
	query := r.db.Rebind(fmt.Sprintf(`SELECT * FROM %s WHERE id = ?`, r.table))
	if err := r.db.GetContext(ctx, &person, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get %s %d: %w", r.table, id, err)
	}
	return &person, nil
}

func (r *PersonRepository) GetByName(ctx context.Context, name string) (*models.Person, error) {
	var person models.Person
	query := r.db.Rebind(fmt.Sprintf(`SELECT * FROM %s WHERE name = ?`, r.table))
	if err := r.db.GetContext(ctx, &person, query, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get %s by name %q: %w", r.table, name, err)
	}
	return &person, nil
}

func (r *PersonRepository) List(ctx context.Context, p repository.ListParams) ([]models.Person, int, error) {
	where := ""
	args := []any{}
	if p.Search != "" {
		where = ` WHERE LOWER(name) LIKE ?`
		args = append(args, likePattern(p.Search))
	}

	var total int
	countQuery := r.db.Rebind(fmt.Sprintf(`SELECT COUNT(*) FROM %s`, r.table) + where)
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", r.table, err)
	}

	order := sortClause(p.SortBy, p.Desc(), map[string]string{"name": "name"}, "id")
	query := r.db.Rebind(fmt.Sprintf(`SELECT * FROM %s`, r.table) + where +
		` ORDER BY ` + order + ` LIMIT ? OFFSET ?`)
	args = append(args, p.Limit, p.Offset)

	people := []models.Person{}
	if err := r.db.SelectContext(ctx, &people, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", r.table, err)
	}
	return people, total, nil
}

func (r *PersonRepository) Create(ctx context.Context, person *models.Person) (*models.Person, error) {
	if person.ID == 0 {
		query := r.db.Rebind(fmt.Sprintf(`
			INSERT INTO %s (id, name, dob)
			VALUES ((SELECT COALESCE(MAX(id), 0) + 1 FROM %s), ?, ?)
			RETURNING id`, r.table, r.table))
		if err := r.db.QueryRowxContext(ctx, query, person.Name, person.DOB).Scan(&person.ID); err != nil {
			return nil, fmt.Errorf("create %s: %w", r.table, err)
		}
		return person, nil
	}

	query := r.db.Rebind(fmt.Sprintf(`INSERT INTO %s (id, name, dob) VALUES (?, ?, ?)`, r.table))
	if _, err := r.db.ExecContext(ctx, query, person.ID, person.Name, person.DOB); err != nil {
		return nil, fmt.Errorf("create %s %d: %w", r.table, person.ID, err)
	}
	return person, nil
}

func (r *PersonRepository) Update(ctx context.Context, id int, fields map[string]any) (*models.Person, error) {
	set, args, ok := buildSet(fields, personUpdatable)
	if !ok {
		return r.Get(ctx, id)
	}

	query := r.db.Rebind(fmt.Sprintf(`UPDATE %s SET `, r.table) + set + ` WHERE id = ?`)
	args = append(args, id)
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("update %s %d: %w", r.table, id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, nil
	}
	return r.Get(ctx, id)
}

// Delete clears the game associations first, then the row itself.
func (r *PersonRepository) Delete(ctx context.Context, id int) (bool, error) {
	return deleteWithAssociations(ctx, r.db, r.table, id)
}

// NamedRepository serves the publisher, mechanic and genre tables (id, name).
type NamedRepository struct {
	db    *sqlx.DB
	table string
}

func NewNamedRepository(db *sqlx.DB, table string) *NamedRepository {
	return &NamedRepository{db: db, table: table}
}

var namedUpdatable = map[string]bool{"name": true}

func (r *NamedRepository) Get(ctx context.Context, id int) (*models.NamedEntity, error) {
	var entity models.NamedEntity
	query := r.db.Rebind(fmt.Sprintf(`SELECT * FROM %s WHERE id = ?`, r.table))
	if err := r.db.GetContext(ctx, &entity, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get %s %d: %w", r.table, id, err)
	}
	return &entity, nil
}

func (r *NamedRepository) GetByName(ctx context.Context, name string) (*models.NamedEntity, error) {
	var entity models.NamedEntity
	query := r.db.Rebind(fmt.Sprintf(`SELECT * FROM %s WHERE name = ?`, r.table))
	if err := r.db.GetContext(ctx, &entity, query, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get %s by name %q: %w", r.table, name, err)
	}
	return &entity, nil
}

func (r *NamedRepository) List(ctx context.Context, p repository.ListParams) ([]models.NamedEntity, int, error) {
	where := ""
	args := []any{}
	if p.Search != "" {
		where = ` WHERE LOWER(name) LIKE ?`
		args = append(args, likePattern(p.Search))
	}

	var total int
	countQuery := r.db.Rebind(fmt.Sprintf(`SELECT COUNT(*) FROM %s`, r.table) + where)
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", r.table, err)
	}

	order := sortClause(p.SortBy, p.Desc(), map[string]string{"name": "name"}, "id")
	query := r.db.Rebind(fmt.Sprintf(`SELECT * FROM %s`, r.table) + where +
		` ORDER BY ` + order + ` LIMIT ? OFFSET ?`)
	args = append(args, p.Limit, p.Offset)

	entities := []models.NamedEntity{}
	if err := r.db.SelectContext(ctx, &entities, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", r.table, err)
	}
	return entities, total, nil
}

func (r *NamedRepository) Create(ctx context.Context, entity *models.NamedEntity) (*models.NamedEntity, error) {
	if entity.ID == 0 {
		query := r.db.Rebind(fmt.Sprintf(`
			INSERT INTO %s (id, name)
			VALUES ((SELECT COALESCE(MAX(id), 0) + 1 FROM %s), ?)
			RETURNING id`, r.table, r.table))
		if err := r.db.QueryRowxContext(ctx, query, entity.Name).Scan(&entity.ID); err != nil {
			return nil, fmt.Errorf("create %s: %w", r.table, err)
		}
		return entity, nil
	}

	query := r.db.Rebind(fmt.Sprintf(`INSERT INTO %s (id, name) VALUES (?, ?)`, r.table))
	if _, err := r.db.ExecContext(ctx, query, entity.ID, entity.Name); err != nil {
		return nil, fmt.Errorf("create %s %d: %w", r.table, entity.ID, err)
	}
	return entity, nil
}

func (r *NamedRepository) Update(ctx context.Context, id int, fields map[string]any) (*models.NamedEntity, error) {
	set, args, ok := buildSet(fields, namedUpdatable)
	if !ok {
		return r.Get(ctx, id)
	}

	query := r.db.Rebind(fmt.Sprintf(`UPDATE %s SET `, r.table) + set + ` WHERE id = ?`)
	args = append(args, id)
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("update %s %d: %w", r.table, id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, nil
	}
	return r.Get(ctx, id)
}

func (r *NamedRepository) Delete(ctx context.Context, id int) (bool, error) {
	return deleteWithAssociations(ctx, r.db, r.table, id)
}

// deleteWithAssociations removes a sub-entity row after clearing its
// join-table rows, inside one transaction.
func deleteWithAssociations(ctx context.Context, db *sqlx.DB, table string, id int) (bool, error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin %s delete: %w", table, err)
	}
	defer tx.Rollback()

	if join, ok := joinTables[table]; ok {
		clear := tx.Rebind(fmt.Sprintf(`DELETE FROM %s WHERE %s = ?`, join.Table, join.Column))
		if _, err := tx.ExecContext(ctx, clear, id); err != nil {
			return false, fmt.Errorf("clear %s associations: %w", table, err)
		}
	}

	res, err := tx.ExecContext(ctx, tx.Rebind(fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, table)), id)
	if err != nil {
		return false, fmt.Errorf("delete %s %d: %w", table, id, err)
	}
	n, _ := res.RowsAffected()
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit %s delete: %w", table, err)
	}
	return n > 0, nil
}
