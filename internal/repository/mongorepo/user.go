package mongorepo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/gamevault/gamevault-go/internal/models"
	"github.com/gamevault/gamevault-go/internal/repository"
)

type UserRepository struct {
	users *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{users: db.Collection(usersCollection)}
}

// parseDocTime reads the string timestamps the documents carry. Migrated
// records use RFC 3339; date-only values come from date-of-birth fields.
func parseDocTime(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, *s); err == nil {
			return &t
		}
	}
	return nil
}

func formatDocTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

func docToUser(doc *models.UserDocument) *models.User {
	if doc == nil {
		return nil
	}
	return &models.User{
		ID:          doc.ID,
		DisplayName: doc.DisplayName,
		Username:    doc.Username,
		Password:    doc.Password,
		Email:       doc.Email,
		DOB:         parseDocTime(doc.DOB),
		IsAdmin:     doc.IsAdmin,
	}
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var doc models.UserDocument
	err := r.users.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return docToUser(&doc), nil
}

func (r *UserRepository) Get(ctx context.Context, id int) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *UserRepository) GetByDisplayName(ctx context.Context, displayName string) (*models.User, error) {
	return r.findOne(ctx, bson.M{
		"display_name": bson.M{"$regex": "^" + regexp.QuoteMeta(displayName) + "$", "$options": "i"},
	})
}

func (r *UserRepository) List(ctx context.Context, p repository.ListParams) ([]models.User, int, error) {
	filter := bson.M{}
	if p.Search != "" {
		filter["display_name"] = bson.M{"$regex": regexp.QuoteMeta(p.Search), "$options": "i"}
	}

	total, err := r.users.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	dir := 1
	if p.Desc() {
		dir = -1
	}
	opts := options.Find().
		SetSkip(int64(p.Offset)).
		SetLimit(int64(p.Limit)).
		SetSort(bson.D{{Key: "display_name", Value: dir}})

	cursor, err := r.users.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	for cursor.Next(ctx) {
		var doc models.UserDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, 0, fmt.Errorf("decode user document: %w", err)
		}
		users = append(users, *docToUser(&doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate users: %w", err)
	}
	return users, int(total), nil
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if user.ID == 0 {
		next, err := nextIntID(ctx, r.users)
		if err != nil {
			return nil, err
		}
		user.ID = next
	}

	doc := models.UserDocument{
		ID:          user.ID,
		DisplayName: user.DisplayName,
		Username:    user.Username,
		Password:    user.Password,
		Email:       user.Email,
		DOB:         formatDocTime(user.DOB),
		IsAdmin:     user.IsAdmin,
		Friends:     []models.FriendDoc{},
		Messages:    []models.MessageDoc{},
	}
	if _, err := r.users.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("create user %d: %w", user.ID, err)
	}
	return user, nil
}

var userUpdatable = map[string]string{
	"display_name": "display_name",
	"username":     "username",
	"password":     "password",
	"email":        "email",
	"dob":          "dob",
	"is_admin":     "is_admin",
}

func (r *UserRepository) Update(ctx context.Context, id int, fields map[string]any) (*models.User, error) {
	set := bson.M{}
	for key, value := range fields {
		if path, ok := userUpdatable[key]; ok {
			set[path] = value
		}
	}
	if len(set) == 0 {
		return r.Get(ctx, id)
	}

	res, err := r.users.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return nil, fmt.Errorf("update user %d: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return nil, nil
	}
	return r.Get(ctx, id)
}

// Delete removes only the user document. Review documents carrying the
// user snapshot and friend/message entries embedded in other users'
// documents are left untouched; this backend has no referential integrity.
func (r *UserRepository) Delete(ctx context.Context, id int) (bool, error) {
	ok, err := deleteByID(ctx, r.users, id)
	if err != nil {
		return false, fmt.Errorf("delete user %d: %w", id, err)
	}
	return ok, nil
}
