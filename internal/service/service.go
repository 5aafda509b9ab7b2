// Package service holds the thin entity services sitting between callers and
// the repository seam. Their single cross-cutting rule is the name-uniqueness
// pre-check on create and rename: repositories do not enforce it.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/gamevault/gamevault-go/internal/models"
	"github.com/gamevault/gamevault-go/internal/repository"
)

// ErrDuplicateName is returned when a create or rename would reuse an
// existing entity name. The check is read-then-write; two concurrent
// writers can still race past it.
var ErrDuplicateName = errors.New("name already in use")

// Services bundles one service per entity family, all driving the same
// repository set.
type Services struct {
	Games     *GameService
	Users     *UserService
	Reviews   *ReviewService
	Catalog   *CatalogService
	Languages *LanguageService
}

func New(repos *repository.Repositories, logger *logrus.Logger) *Services {
	return &Services{
		Games:     &GameService{repos: repos, logger: logger},
		Users:     &UserService{repos: repos, logger: logger},
		Reviews:   &ReviewService{repos: repos},
		Catalog:   &CatalogService{repos: repos},
		Languages: &LanguageService{repos: repos},
	}
}

type GameService struct {
	repos  *repository.Repositories
	logger *logrus.Logger
}

func (s *GameService) Get(ctx context.Context, id int) (*models.Game, error) {
	return s.repos.Games.Get(ctx, id)
}

func (s *GameService) GetDetail(ctx context.Context, id int) (*models.GameDetail, error) {
	return s.repos.Games.GetDetail(ctx, id)
}

func (s *GameService) List(ctx context.Context, p repository.ListParams) ([]models.Game, int, error) {
	if p.Limit <= 0 {
		p.Limit = 20
	}
	return s.repos.Games.List(ctx, p)
}

func (s *GameService) Create(ctx context.Context, game *models.Game) (*models.Game, error) {
	existing, err := s.repos.Games.GetByName(ctx, game.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("game %q: %w", game.Name, ErrDuplicateName)
	}

	created, err := s.repos.Games.Create(ctx, game)
	if err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{"id": created.ID, "name": created.Name}).Info("game created")
	return created, nil
}

func (s *GameService) Update(ctx context.Context, id int, fields map[string]any) (*models.Game, error) {
	if name, ok := fields["name"].(string); ok {
		existing, err := s.repos.Games.GetByName(ctx, name)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != id {
			return nil, fmt.Errorf("game %q: %w", name, ErrDuplicateName)
		}
	}
	return s.repos.Games.Update(ctx, id, fields)
}

func (s *GameService) Delete(ctx context.Context, id int) (bool, error) {
	deleted, err := s.repos.Games.Delete(ctx, id)
	if err == nil && deleted {
		s.logger.WithField("id", id).Info("game deleted")
	}
	return deleted, err
}

type UserService struct {
	repos  *repository.Repositories
	logger *logrus.Logger
}

func (s *UserService) Get(ctx context.Context, id int) (*models.User, error) {
	return s.repos.Users.Get(ctx, id)
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.repos.Users.GetByUsername(ctx, username)
}

func (s *UserService) List(ctx context.Context, p repository.ListParams) ([]models.User, int, error) {
	if p.Limit <= 0 {
		p.Limit = 20
	}
	return s.repos.Users.List(ctx, p)
}

// Create rejects both duplicate usernames and duplicate display names.
func (s *UserService) Create(ctx context.Context, user *models.User) (*models.User, error) {
	byUsername, err := s.repos.Users.GetByUsername(ctx, user.Username)
	if err != nil {
		return nil, err
	}
	if byUsername != nil {
		return nil, fmt.Errorf("username %q: %w", user.Username, ErrDuplicateName)
	}
	byDisplay, err := s.repos.Users.GetByDisplayName(ctx, user.DisplayName)
	if err != nil {
		return nil, err
	}
	if byDisplay != nil {
		return nil, fmt.Errorf("display name %q: %w", user.DisplayName, ErrDuplicateName)
	}

	created, err := s.repos.Users.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{"id": created.ID, "username": created.Username}).Info("user created")
	return created, nil
}

func (s *UserService) Update(ctx context.Context, id int, fields map[string]any) (*models.User, error) {
	if username, ok := fields["username"].(string); ok {
		existing, err := s.repos.Users.GetByUsername(ctx, username)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != id {
			return nil, fmt.Errorf("username %q: %w", username, ErrDuplicateName)
		}
	}
	return s.repos.Users.Update(ctx, id, fields)
}

func (s *UserService) Delete(ctx context.Context, id int) (bool, error) {
	return s.repos.Users.Delete(ctx, id)
}

// ReviewService passes through; review titles are not unique.
type ReviewService struct {
	repos *repository.Repositories
}

func (s *ReviewService) Get(ctx context.Context, id int) (*models.Review, error) {
	return s.repos.Reviews.Get(ctx, id)
}

func (s *ReviewService) ListByGame(ctx context.Context, gameID int) ([]models.ReviewWithUser, error) {
	return s.repos.Reviews.ListByGame(ctx, gameID)
}

func (s *ReviewService) GameRating(ctx context.Context, gameID int) (average float64, count int, err error) {
	count, err = s.repos.Reviews.CountByGame(ctx, gameID)
	if err != nil {
		return 0, 0, err
	}
	if count == 0 {
		return 0, 0, nil
	}
	average, err = s.repos.Reviews.AverageStarsByGame(ctx, gameID)
	return average, count, err
}

func (s *ReviewService) Create(ctx context.Context, review *models.Review) (*models.Review, error) {
	return s.repos.Reviews.Create(ctx, review)
}

func (s *ReviewService) Update(ctx context.Context, id int, fields map[string]any) (*models.Review, error) {
	return s.repos.Reviews.Update(ctx, id, fields)
}

func (s *ReviewService) Delete(ctx context.Context, id int) (bool, error) {
	return s.repos.Reviews.Delete(ctx, id)
}

// CatalogService serves the five game sub-entities behind a uniform
// name-checked create.
type CatalogService struct {
	repos *repository.Repositories
}

func (s *CatalogService) CreatePerson(ctx context.Context, repo repository.PersonRepository, person *models.Person) (*models.Person, error) {
	existing, err := repo.GetByName(ctx, person.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%q: %w", person.Name, ErrDuplicateName)
	}
	return repo.Create(ctx, person)
}

func (s *CatalogService) CreateNamed(ctx context.Context, repo repository.NamedRepository, entity *models.NamedEntity) (*models.NamedEntity, error) {
	existing, err := repo.GetByName(ctx, entity.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%q: %w", entity.Name, ErrDuplicateName)
	}
	return repo.Create(ctx, entity)
}

func (s *CatalogService) Designers() repository.PersonRepository { return s.repos.Designers }
func (s *CatalogService) Artists() repository.PersonRepository   { return s.repos.Artists }
func (s *CatalogService) Publishers() repository.NamedRepository { return s.repos.Publishers }
func (s *CatalogService) Mechanics() repository.NamedRepository  { return s.repos.Mechanics }
func (s *CatalogService) Genres() repository.NamedRepository     { return s.repos.Genres }

type LanguageService struct {
	repos *repository.Repositories
}

func (s *LanguageService) Create(ctx context.Context, language *models.Language) (*models.Language, error) {
	existing, err := s.repos.Languages.GetByName(ctx, language.Language)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("language %q: %w", language.Language, ErrDuplicateName)
	}
	return s.repos.Languages.Create(ctx, language)
}

func (s *LanguageService) List(ctx context.Context, p repository.ListParams) ([]models.Language, int, error) {
	if p.Limit <= 0 {
		p.Limit = 50
	}
	return s.repos.Languages.List(ctx, p)
}
