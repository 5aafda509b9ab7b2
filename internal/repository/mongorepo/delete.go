package mongorepo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// singleDeleter is the slice of *mongo.Collection the delete paths go through.
type singleDeleter interface {
	DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
}

// deleteByID removes at most the one document whose _id matches. Dependent
// documents are never touched; the document model carries no referential
// integrity.
func deleteByID(ctx context.Context, col singleDeleter, id int) (bool, error) {
	res, err := col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}
