// Package repository defines the per-entity capability contracts shared by
// the three storage backends. Callers above the factory depend only on these
// interfaces; which engine serves them is a configuration concern.
package repository

import (
	"context"
	"errors"

	"github.com/gamevault/gamevault-go/internal/models"
)

// ErrUnsupported is returned by operations a backend's data model cannot
// express. The document backend raises it for CRUD on embedded sub-entities:
// when mechanics live only as arrays inside game documents there is no
// single-document target for an independent create/update/delete.
var ErrUnsupported = errors.New("operation not supported by this backend")

// ListParams carries the uniform list/search/paginate/sort arguments.
// Search is a substring filter on the entity's primary text field. Sort
// fields are whitelisted per backend; unknown fields are ignored.
type ListParams struct {
	Offset    int
	Limit     int
	Search    string
	SortBy    string
	SortOrder string // "asc" or "desc"
}

// Desc reports whether a descending sort was requested.
func (p ListParams) Desc() bool {
	return p.SortOrder == "desc"
}

// Contract conventions, uniform across the interfaces below:
//   - Get/GetByName/Update return (nil, nil) when the id or name does not
//     exist; an error means the backend failed, never "not found".
//   - List returns the page plus the total count of the filtered set,
//     computed independently of the page window.
//   - Update merges only the provided fields.
//   - Delete reports whether a record was actually removed.
// Name uniqueness is a service-layer pre-check, not a repository concern.

type GameRepository interface {
	Get(ctx context.Context, id int) (*models.Game, error)
	GetByName(ctx context.Context, name string) (*models.Game, error)
	GetDetail(ctx context.Context, id int) (*models.GameDetail, error)
	List(ctx context.Context, p ListParams) ([]models.Game, int, error)
	Create(ctx context.Context, game *models.Game) (*models.Game, error)
	Update(ctx context.Context, id int, fields map[string]any) (*models.Game, error)
	Delete(ctx context.Context, id int) (bool, error)
}

// PersonRepository serves designers and artists.
type PersonRepository interface {
	Get(ctx context.Context, id int) (*models.Person, error)
	GetByName(ctx context.Context, name string) (*models.Person, error)
	List(ctx context.Context, p ListParams) ([]models.Person, int, error)
	Create(ctx context.Context, person *models.Person) (*models.Person, error)
	Update(ctx context.Context, id int, fields map[string]any) (*models.Person, error)
	Delete(ctx context.Context, id int) (bool, error)
}

// NamedRepository serves publishers, mechanics and genres.
type NamedRepository interface {
	Get(ctx context.Context, id int) (*models.NamedEntity, error)
	GetByName(ctx context.Context, name string) (*models.NamedEntity, error)
	List(ctx context.Context, p ListParams) ([]models.NamedEntity, int, error)
	Create(ctx context.Context, entity *models.NamedEntity) (*models.NamedEntity, error)
	Update(ctx context.Context, id int, fields map[string]any) (*models.NamedEntity, error)
	Delete(ctx context.Context, id int) (bool, error)
}

type UserRepository interface {
	Get(ctx context.Context, id int) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByDisplayName(ctx context.Context, displayName string) (*models.User, error)
	List(ctx context.Context, p ListParams) ([]models.User, int, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	Update(ctx context.Context, id int, fields map[string]any) (*models.User, error)
	Delete(ctx context.Context, id int) (bool, error)
}

type ReviewRepository interface {
	Get(ctx context.Context, id int) (*models.Review, error)
	List(ctx context.Context, p ListParams) ([]models.Review, int, error)
	ListByGame(ctx context.Context, gameID int) ([]models.ReviewWithUser, error)
	CountByGame(ctx context.Context, gameID int) (int, error)
	AverageStarsByGame(ctx context.Context, gameID int) (float64, error)
	Create(ctx context.Context, review *models.Review) (*models.Review, error)
	Update(ctx context.Context, id int, fields map[string]any) (*models.Review, error)
	Delete(ctx context.Context, id int) (bool, error)
}

type VideoRepository interface {
	Get(ctx context.Context, id int) (*models.Video, error)
	ListByGame(ctx context.Context, gameID int) ([]models.Video, error)
	Create(ctx context.Context, video *models.Video) (*models.Video, error)
	Update(ctx context.Context, id int, fields map[string]any) (*models.Video, error)
	Delete(ctx context.Context, id int) (bool, error)
}

type LanguageRepository interface {
	Get(ctx context.Context, id int) (*models.Language, error)
	GetByName(ctx context.Context, name string) (*models.Language, error)
	List(ctx context.Context, p ListParams) ([]models.Language, int, error)
	Create(ctx context.Context, language *models.Language) (*models.Language, error)
	Delete(ctx context.Context, id int) (bool, error)
}

// MatchupRepository and MoveRepository exist only on the relational backend;
// matchups never grew document or graph read paths outside of migration.
type MatchupRepository interface {
	Get(ctx context.Context, id int) (*models.Matchup, error)
	ListByUser(ctx context.Context, userID int) ([]models.Matchup, error)
	Create(ctx context.Context, matchup *models.Matchup) (*models.Matchup, error)
	Update(ctx context.Context, id int, fields map[string]any) (*models.Matchup, error)
	Delete(ctx context.Context, id int) (bool, error)
}

type MoveRepository interface {
	Get(ctx context.Context, id int) (*models.Move, error)
	ListByMatchup(ctx context.Context, matchupID int) ([]models.Move, error)
	Create(ctx context.Context, move *models.Move) (*models.Move, error)
	Update(ctx context.Context, id int, fields map[string]any) (*models.Move, error)
	Delete(ctx context.Context, id int) (bool, error)
}

// Repositories bundles one repository per entity, all served by the same
// backend. Matchups and Moves are nil unless the backend is relational.
type Repositories struct {
	Games      GameRepository
	Users      UserRepository
	Reviews    ReviewRepository
	Videos     VideoRepository
	Languages  LanguageRepository
	Designers  PersonRepository
	Artists    PersonRepository
	Publishers NamedRepository
	Mechanics  NamedRepository
	Genres     NamedRepository
	Matchups   MatchupRepository
	Moves      MoveRepository
}
