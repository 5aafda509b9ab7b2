package neorepo

import (
	"context"
	"fmt"
	"time"

	"github.com/gamevault/gamevault-go/internal/database"
	"github.com/gamevault/gamevault-go/internal/models"
	"github.com/gamevault/gamevault-go/internal/repository"
)

// labelRepository is the shared node CRUD for the catalog sub-entities. The
// label comes from the factory's fixed set (Designer, Artist, Publisher,
// Mechanic, Genre), never from callers, so interpolating it is safe.
type labelRepository struct {
	client *database.Neo4jClient
	label  string
}

func (r *labelRepository) getOne(ctx context.Context, query string, params map[string]any) (map[string]any, error) {
	records, err := r.client.RunRead(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", r.label, err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	props, ok := nodeProps(records[0], "node")
	if !ok {
		return nil, fmt.Errorf("get %s: unexpected record shape", r.label)
	}
	return props, nil
}

func (r *labelRepository) get(ctx context.Context, id int) (map[string]any, error) {
	return r.getOne(ctx,
		`MATCH (n:`+r.label+` {id: $id}) RETURN n{.*} AS node`,
		map[string]any{"id": id})
}

func (r *labelRepository) getByName(ctx context.Context, name string) (map[string]any, error) {
	return r.getOne(ctx,
		`MATCH (n:`+r.label+`) WHERE toLower(n.name) = toLower($name) RETURN n{.*} AS node LIMIT 1`,
		map[string]any{"name": name})
}

func (r *labelRepository) list(ctx context.Context, p repository.ListParams) ([]map[string]any, int, error) {
	where := ""
	params := map[string]any{}
	if p.Search != "" {
		where = searchClause("n.name")
		params["search"] = p.Search
	}

	countRecords, err := r.client.RunRead(ctx,
		`MATCH (n:`+r.label+`)`+where+` RETURN count(n) AS total`, params)
	if err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", r.label, err)
	}
	total, err := database.CountValue(countRecords, "total")
	if err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", r.label, err)
	}

	params["offset"] = p.Offset
	params["limit"] = p.Limit
	records, err := r.client.RunRead(ctx,
		`MATCH (n:`+r.label+`)`+where+
			` RETURN n{.*} AS node ORDER BY n.name `+sortDir(p.Desc())+
			` SKIP $offset LIMIT $limit`, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", r.label, err)
	}

	items := []map[string]any{}
	for _, record := range records {
		props, ok := nodeProps(record, "node")
		if !ok {
			return nil, 0, fmt.Errorf("list %s: unexpected record shape", r.label)
		}
		items = append(items, props)
	}
	return items, total, nil
}

func (r *labelRepository) nextID(ctx context.Context) (int, error) {
	records, err := r.client.RunRead(ctx,
		`MATCH (n:`+r.label+`) RETURN coalesce(max(n.id), 0) + 1 AS next`, nil)
	if err != nil {
		return 0, fmt.Errorf("next %s id: %w", r.label, err)
	}
	next, err := database.CountValue(records, "next")
	if err != nil {
		return 0, fmt.Errorf("next %s id: %w", r.label, err)
	}
	if next == 0 {
		next = 1
	}
	return next, nil
}

func (r *labelRepository) create(ctx context.Context, id int, props map[string]any) error {
	_, err := r.client.Run(ctx,
		`MERGE (n:`+r.label+` {id: $id}) SET n += $props`,
		map[string]any{"id": id, "props": props})
	if err != nil {
		return fmt.Errorf("create %s %d: %w", r.label, id, err)
	}
	return nil
}

func (r *labelRepository) update(ctx context.Context, id int, fields map[string]any, allowed map[string]bool) (map[string]any, error) {
	params := map[string]any{"id": id}
	set := setClauses("n", fields, allowed, params)
	if set == "" {
		return r.get(ctx, id)
	}

	records, err := r.client.Run(ctx,
		`MATCH (n:`+r.label+` {id: $id}) SET `+set+` RETURN n{.*} AS node`, params)
	if err != nil {
		return nil, fmt.Errorf("update %s %d: %w", r.label, id, err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	props, ok := nodeProps(records[0], "node")
	if !ok {
		return nil, fmt.Errorf("update %s %d: unexpected record shape", r.label, id)
	}
	return props, nil
}

func (r *labelRepository) delete(ctx context.Context, id int) (bool, error) {
	records, err := r.client.Run(ctx,
		`MATCH (n:`+r.label+` {id: $id}) DETACH DELETE n RETURN count(n) AS deleted`,
		map[string]any{"id": id})
	if err != nil {
		return false, fmt.Errorf("delete %s %d: %w", r.label, id, err)
	}
	deleted, err := database.CountValue(records, "deleted")
	if err != nil {
		return false, fmt.Errorf("delete %s %d: %w", r.label, id, err)
	}
	return deleted > 0, nil
}

// PersonRepository serves Designer and Artist nodes.
type PersonRepository struct {
	nodes labelRepository
}

func NewPersonRepository(client *database.Neo4jClient, label string) *PersonRepository {
	return &PersonRepository{nodes: labelRepository{client: client, label: label}}
}

func propsToPerson(props map[string]any) *models.Person {
	if props == nil {
		return nil
	}
	return &models.Person{
		ID:   intProp(props, "id"),
		Name: strProp(props, "name"),
		DOB:  timePtrProp(props, "dob"),
	}
}

func (r *PersonRepository) Get(ctx context.Context, id int) (*models.Person, error) {
	props, err := r.nodes.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return propsToPerson(props), nil
}

func (r *PersonRepository) GetByName(ctx context.Context, name string) (*models.Person, error) {
	props, err := r.nodes.getByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return propsToPerson(props), nil
}

func (r *PersonRepository) List(ctx context.Context, p repository.ListParams) ([]models.Person, int, error) {
	items, total, err := r.nodes.list(ctx, p)
	if err != nil {
		return nil, 0, err
	}
	people := make([]models.Person, 0, len(items))
	for _, props := range items {
		people = append(people, *propsToPerson(props))
	}
	return people, total, nil
}

func (r *PersonRepository) Create(ctx context.Context, person *models.Person) (*models.Person, error) {
	if person.ID == 0 {
		next, err := r.nodes.nextID(ctx)
		if err != nil {
			return nil, err
		}
		person.ID = next
	}
	props := map[string]any{"name": person.Name}
	if person.DOB != nil {
		props["dob"] = person.DOB.Format("2006-01-02")
	}
	if err := r.nodes.create(ctx, person.ID, props); err != nil {
		return nil, err
	}
	return person, nil
}

var personUpdatable = map[string]bool{"name": true, "dob": true}

func (r *PersonRepository) Update(ctx context.Context, id int, fields map[string]any) (*models.Person, error) {
	if t, ok := fields["dob"].(time.Time); ok {
		fields["dob"] = t.Format("2006-01-02")
	}
	props, err := r.nodes.update(ctx, id, fields, personUpdatable)
	if err != nil {
		return nil, err
	}
	return propsToPerson(props), nil
}

func (r *PersonRepository) Delete(ctx context.Context, id int) (bool, error) {
	return r.nodes.delete(ctx, id)
}

// NamedRepository serves Publisher, Mechanic and Genre nodes.
type NamedRepository struct {
	nodes labelRepository
}

func NewNamedRepository(client *database.Neo4jClient, label string) *NamedRepository {
	return &NamedRepository{nodes: labelRepository{client: client, label: label}}
}

func propsToNamed(props map[string]any) *models.NamedEntity {
	if props == nil {
		return nil
	}
	return &models.NamedEntity{ID: intProp(props, "id"), Name: strProp(props, "name")}
}

func (r *NamedRepository) Get(ctx context.Context, id int) (*models.NamedEntity, error) {
	props, err := r.nodes.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return propsToNamed(props), nil
}

func (r *NamedRepository) GetByName(ctx context.Context, name string) (*models.NamedEntity, error) {
	props, err := r.nodes.getByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return propsToNamed(props), nil
}

func (r *NamedRepository) List(ctx context.Context, p repository.ListParams) ([]models.NamedEntity, int, error) {
	items, total, err := r.nodes.list(ctx, p)
	if err != nil {
		return nil, 0, err
	}
	entities := make([]models.NamedEntity, 0, len(items))
	for _, props := range items {
		entities = append(entities, *propsToNamed(props))
	}
	return entities, total, nil
}

func (r *NamedRepository) Create(ctx context.Context, entity *models.NamedEntity) (*models.NamedEntity, error) {
	if entity.ID == 0 {
		next, err := r.nodes.nextID(ctx)
		if err != nil {
			return nil, err
		}
		entity.ID = next
	}
	if err := r.nodes.create(ctx, entity.ID, map[string]any{"name": entity.Name}); err != nil {
		return nil, err
	}
	return entity, nil
}

var namedUpdatable = map[string]bool{"name": true}

func (r *NamedRepository) Update(ctx context.Context, id int, fields map[string]any) (*models.NamedEntity, error) {
	props, err := r.nodes.update(ctx, id, fields, namedUpdatable)
	if err != nil {
		return nil, err
	}
	return propsToNamed(props), nil
}

func (r *NamedRepository) Delete(ctx context.Context, id int) (bool, error) {
	return r.nodes.delete(ctx, id)
}
