package neorepo

import (
	"context"

	"github.com/gamevault/gamevault-go/internal/database"
	"github.com/gamevault/gamevault-go/internal/models"
	"github.com/gamevault/gamevault-go/internal/repository"
)

// LanguageRepository serves Language nodes. The contract has no update
// operation; language names are immutable lookups.
type LanguageRepository struct {
	nodes labelRepository
}

func NewLanguageRepository(client *database.Neo4jClient) *LanguageRepository {
	return &LanguageRepository{nodes: labelRepository{client: client, label: "Language"}}
}

func propsToLanguage(props map[string]any) *models.Language {
	if props == nil {
		return nil
	}
	return &models.Language{ID: intProp(props, "id"), Language: strProp(props, "name")}
}

func (r *LanguageRepository) Get(ctx context.Context, id int) (*models.Language, error) {
	props, err := r.nodes.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return propsToLanguage(props), nil
}

func (r *LanguageRepository) GetByName(ctx context.Context, name string) (*models.Language, error) {
	props, err := r.nodes.getByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return propsToLanguage(props), nil
}

func (r *LanguageRepository) List(ctx context.Context, p repository.ListParams) ([]models.Language, int, error) {
	items, total, err := r.nodes.list(ctx, p)
	if err != nil {
		return nil, 0, err
	}
	languages := make([]models.Language, 0, len(items))
	for _, props := range items {
		languages = append(languages, *propsToLanguage(props))
	}
	return languages, total, nil
}

func (r *LanguageRepository) Create(ctx context.Context, language *models.Language) (*models.Language, error) {
	if language.ID == 0 {
		next, err := r.nodes.nextID(ctx)
		if err != nil {
			return nil, err
		}
		language.ID = next
	}
	if err := r.nodes.create(ctx, language.ID, map[string]any{"name": language.Language}); err != nil {
		return nil, err
	}
	return language, nil
}

func (r *LanguageRepository) Delete(ctx context.Context, id int) (bool, error) {
	return r.nodes.delete(ctx, id)
}
