package neorepo

import (
	"context"
	"fmt"
	"time"

	"github.com/gamevault/gamevault-go/internal/database"
	"github.com/gamevault/gamevault-go/internal/models"
	"github.com/gamevault/gamevault-go/internal/repository"
)

type UserRepository struct {
	client *database.Neo4jClient
}

func NewUserRepository(client *database.Neo4jClient) *UserRepository {
	return &UserRepository{client: client}
}

func propsToUser(props map[string]any) *models.User {
	return &models.User{
		ID:          intProp(props, "id"),
		DisplayName: strProp(props, "display_name"),
		Username:    strProp(props, "username"),
		Password:    strProp(props, "password"),
		Email:       strProp(props, "email"),
		DOB:         timePtrProp(props, "dob"),
		IsAdmin:     boolProp(props, "is_admin"),
	}
}

func (r *UserRepository) getOne(ctx context.Context, query string, params map[string]any) (*models.User, error) {
	records, err := r.client.RunRead(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	props, ok := nodeProps(records[0], "node")
	if !ok {
		return nil, fmt.Errorf("get user: unexpected record shape")
	}
	return propsToUser(props), nil
}

func (r *UserRepository) Get(ctx context.Context, id int) (*models.User, error) {
	return r.getOne(ctx,
		`MATCH (u:User {id: $id}) RETURN u{.*} AS node`,
		map[string]any{"id": id})
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getOne(ctx,
		`MATCH (u:User {username: $username}) RETURN u{.*} AS node LIMIT 1`,
		map[string]any{"username": username})
}

func (r *UserRepository) GetByDisplayName(ctx context.Context, displayName string) (*models.User, error) {
	return r.getOne(ctx,
		`MATCH (u:User) WHERE toLower(u.display_name) = toLower($name) RETURN u{.*} AS node LIMIT 1`,
		map[string]any{"name": displayName})
}

func (r *UserRepository) List(ctx context.Context, p repository.ListParams) ([]models.User, int, error) {
	where := ""
	params := map[string]any{}
	if p.Search != "" {
		where = searchClause("u.display_name")
		params["search"] = p.Search
	}

	countRecords, err := r.client.RunRead(ctx,
		`MATCH (u:User)`+where+` RETURN count(u) AS total`, params)
	if err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}
	total, err := database.CountValue(countRecords, "total")
	if err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	params["offset"] = p.Offset
	params["limit"] = p.Limit
	records, err := r.client.RunRead(ctx,
		`MATCH (u:User)`+where+
			` RETURN u{.*} AS node ORDER BY u.display_name `+sortDir(p.Desc())+
			` SKIP $offset LIMIT $limit`, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	users := []models.User{}
	for _, record := range records {
		props, ok := nodeProps(record, "node")
		if !ok {
			return nil, 0, fmt.Errorf("list users: unexpected record shape")
		}
		users = append(users, *propsToUser(props))
	}
	return users, total, nil
}

func userProps(user *models.User) map[string]any {
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
	return props
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if user.ID == 0 {
		records, err := r.client.RunRead(ctx,
			`MATCH (u:User) RETURN coalesce(max(u.id), 0) + 1 AS next`, nil)
		if err != nil {
			return nil, fmt.Errorf("next user id: %w", err)
		}
		next, err := database.CountValue(records, "next")
		if err != nil {
			return nil, fmt.Errorf("next user id: %w", err)
		}
		if next == 0 {
			next = 1
		}
		user.ID = next
	}

	_, err := r.client.Run(ctx,
		`MERGE (u:User {id: $id}) SET u += $props`,
		map[string]any{"id": user.ID, "props": userProps(user)})
	if err != nil {
		return nil, fmt.Errorf("create user %d: %w", user.ID, err)
	}
	return user, nil
}

var userUpdatable = map[string]bool{
	"display_name": true,
	"username":     true,
	"password":     true,
	"email":        true,
	"dob":          true,
	"is_admin":     true,
}

func (r *UserRepository) Update(ctx context.Context, id int, fields map[string]any) (*models.User, error) {
	if t, ok := fields["dob"].(time.Time); ok {
		fields["dob"] = t.Format("2006-01-02")
	}
	params := map[string]any{"id": id}
	set := setClauses("u", fields, userUpdatable, params)
	if set == "" {
		return r.Get(ctx, id)
	}

	records, err := r.client.Run(ctx,
		`MATCH (u:User {id: $id}) SET `+set+` RETURN u{.*} AS node`, params)
	if err != nil {
		return nil, fmt.Errorf("update user %d: %w", id, err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	props, ok := nodeProps(records[0], "node")
	if !ok {
		return nil, fmt.Errorf("update user %d: unexpected record shape", id)
	}
	return propsToUser(props), nil
}

// deleteUserCypher drops the user node. Friendship, message and spectating
// relationships disappear with DETACH DELETE; review nodes the user wrote
// stay behind as orphans.
const deleteUserCypher = `
	MATCH (u:User {id: $id})
	DETACH DELETE u
	RETURN count(u) AS deleted`

func (r *UserRepository) Delete(ctx context.Context, id int) (bool, error) {
	records, err := r.client.Run(ctx, deleteUserCypher, map[string]any{"id": id})
	if err != nil {
		return false, fmt.Errorf("delete user %d: %w", id, err)
	}
	deleted, err := database.CountValue(records, "deleted")
	if err != nil {
		return false, fmt.Errorf("delete user %d: %w", id, err)
	}
	return deleted > 0, nil
}
