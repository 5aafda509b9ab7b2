package mongorepo

import (
	"context"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/gamevault/gamevault-go/internal/models"
	"github.com/gamevault/gamevault-go/internal/repository"
)

// embeddedRepository reads one of the id/name arrays embedded in game
// documents (designers, artists, publishers, mechanics, genres). These
// entities have no collection of their own, so reads are aggregation
// pipelines over games and writes are not supported.
type embeddedRepository struct {
	games *mongo.Collection
	field string
}

func (r *embeddedRepository) runPipeline(ctx context.Context, pipeline mongo.Pipeline) ([]models.IDName, error) {
	cursor, err := r.games.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate %s: %w", r.field, err)
	}
	defer cursor.Close(ctx)

	items := []models.IDName{}
	for cursor.Next(ctx) {
		var item models.IDName
		if err := cursor.Decode(&item); err != nil {
			return nil, fmt.Errorf("decode %s: %w", r.field, err)
		}
		items = append(items, item)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", r.field, err)
	}
	return items, nil
}

func (r *embeddedRepository) getOne(ctx context.Context, match bson.M) (*models.IDName, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$unwind", Value: "$" + r.field}},
		{{Key: "$match", Value: match}},
		{{Key: "$replaceRoot", Value: bson.M{"newRoot": "$" + r.field}}},
		{{Key: "$limit", Value: 1}},
	}
	items, err := r.runPipeline(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

func (r *embeddedRepository) get(ctx context.Context, id int) (*models.IDName, error) {
	return r.getOne(ctx, bson.M{r.field + ".id": id})
}

func (r *embeddedRepository) getByName(ctx context.Context, name string) (*models.IDName, error) {
	return r.getOne(ctx, bson.M{
		r.field + ".name": bson.M{"$regex": "^" + regexp.QuoteMeta(name) + "$", "$options": "i"},
	})
}

// basePipeline unwinds the embedded array and deduplicates across games by
// grouping on the embedded id. The count query reuses it with $count; the
// page query appends sort and pagination stages.
func (r *embeddedRepository) basePipeline(search string) mongo.Pipeline {
	pipeline := mongo.Pipeline{
		{{Key: "$unwind", Value: "$" + r.field}},
	}
	if search != "" {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: bson.M{
			r.field + ".name": bson.M{"$regex": regexp.QuoteMeta(search), "$options": "i"},
		}}})
	}
	pipeline = append(pipeline, bson.D{{Key: "$group", Value: bson.M{
		"_id":  "$" + r.field + ".id",
		"id":   bson.M{"$first": "$" + r.field + ".id"},
		"name": bson.M{"$first": "$" + r.field + ".name"},
	}}})
	return pipeline
}

func (r *embeddedRepository) count(ctx context.Context, search string) (int, error) {
	pipeline := append(r.basePipeline(search), bson.D{{Key: "$count", Value: "total"}})
	cursor, err := r.games.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", r.field, err)
	}
	defer cursor.Close(ctx)

	if !cursor.Next(ctx) {
		return 0, cursor.Err()
	}
	var result struct {
		Total int `bson:"total"`
	}
	if err := cursor.Decode(&result); err != nil {
		return 0, fmt.Errorf("decode %s count: %w", r.field, err)
	}
	return result.Total, nil
}

func (r *embeddedRepository) list(ctx context.Context, p repository.ListParams) ([]models.IDName, int, error) {
	total, err := r.count(ctx, p.Search)
	if err != nil {
		return nil, 0, err
	}

	dir := 1
	if p.Desc() {
		dir = -1
	}
	pipeline := append(r.basePipeline(p.Search),
		bson.D{{Key: "$sort", Value: bson.D{{Key: "name", Value: dir}}}},
		bson.D{{Key: "$skip", Value: p.Offset}},
		bson.D{{Key: "$limit", Value: p.Limit}},
	)
	items, err := r.runPipeline(ctx, pipeline)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// PersonRepository serves designers and artists from the embedded arrays.
// Dates of birth are not carried in game documents, so Person records come
// back with a nil DateOfBirth.
type PersonRepository struct {
	embedded embeddedRepository
}

func NewPersonRepository(db *mongo.Database, field string) *PersonRepository {
	return &PersonRepository{embedded: embeddedRepository{games: db.Collection(gamesCollection), field: field}}
}

func personFrom(item *models.IDName) *models.Person {
	if item == nil {
		return nil
	}
	return &models.Person{ID: item.ID, Name: item.Name}
}

func (r *PersonRepository) Get(ctx context.Context, id int) (*models.Person, error) {
	item, err := r.embedded.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return personFrom(item), nil
}

func (r *PersonRepository) GetByName(ctx context.Context, name string) (*models.Person, error) {
	item, err := r.embedded.getByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return personFrom(item), nil
}

func (r *PersonRepository) List(ctx context.Context, p repository.ListParams) ([]models.Person, int, error) {
	items, total, err := r.embedded.list(ctx, p)
	if err != nil {
		return nil, 0, err
	}
	people := make([]models.Person, 0, len(items))
	for _, item := range items {
		people = append(people, models.Person{ID: item.ID, Name: item.Name})
	}
	return people, total, nil
}

func (r *PersonRepository) Create(ctx context.Context, person *models.Person) (*models.Person, error) {
	return nil, fmt.Errorf("create %s: %w", r.embedded.field, repository.ErrUnsupported)
}

func (r *PersonRepository) Update(ctx context.Context, id int, fields map[string]any) (*models.Person, error) {
	return nil, fmt.Errorf("update %s %d: %w", r.embedded.field, id, repository.ErrUnsupported)
}

func (r *PersonRepository) Delete(ctx context.Context, id int) (bool, error) {
	return false, fmt.Errorf("delete %s %d: %w", r.embedded.field, id, repository.ErrUnsupported)
}

// NamedRepository serves publishers, mechanics and genres the same way.
type NamedRepository struct {
	embedded embeddedRepository
}

func NewNamedRepository(db *mongo.Database, field string) *NamedRepository {
	return &NamedRepository{embedded: embeddedRepository{games: db.Collection(gamesCollection), field: field}}
}

func namedFrom(item *models.IDName) *models.NamedEntity {
	if item == nil {
		return nil
	}
	return &models.NamedEntity{ID: item.ID, Name: item.Name}
}

func (r *NamedRepository) Get(ctx context.Context, id int) (*models.NamedEntity, error) {
	item, err := r.embedded.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return namedFrom(item), nil
}

func (r *NamedRepository) GetByName(ctx context.Context, name string) (*models.NamedEntity, error) {
	item, err := r.embedded.getByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return namedFrom(item), nil
}

func (r *NamedRepository) List(ctx context.Context, p repository.ListParams) ([]models.NamedEntity, int, error) {
	items, total, err := r.embedded.list(ctx, p)
	if err != nil {
		return nil, 0, err
	}
	entities := make([]models.NamedEntity, 0, len(items))
	for _, item := range items {
		entities = append(entities, models.NamedEntity{ID: item.ID, Name: item.Name})
	}
	return entities, total, nil
}

func (r *NamedRepository) Create(ctx context.Context, entity *models.NamedEntity) (*models.NamedEntity, error) {
	return nil, fmt.Errorf("create %s: %w", r.embedded.field, repository.ErrUnsupported)
}

func (r *NamedRepository) Update(ctx context.Context, id int, fields map[string]any) (*models.NamedEntity, error) {
	return nil, fmt.Errorf("update %s %d: %w", r.embedded.field, id, repository.ErrUnsupported)
}

func (r *NamedRepository) Delete(ctx context.Context, id int) (bool, error) {
	return false, fmt.Errorf("delete %s %d: %w", r.embedded.field, id, repository.ErrUnsupported)
}
