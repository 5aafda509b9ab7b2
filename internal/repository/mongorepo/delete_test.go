package mongorepo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type recordingDeleter struct {
	filters []interface{}
	deleted int64
}

func (d *recordingDeleter) DeleteOne(_ context.Context, filter interface{}, _ ...*options.DeleteOptions) (*mongo.DeleteResult, error) {
	d.filters = append(d.filters, filter)
	return &mongo.DeleteResult{DeletedCount: d.deleted}, nil
}

func TestDeleteByIDRemovesSingleDocument(t *testing.T) {
	d := &recordingDeleter{deleted: 1}

	ok, err := deleteByID(context.Background(), d, 7)

	require.NoError(t, err)
	assert.True(t, ok)
	require.Len(t, d.filters, 1)
	assert.Equal(t, bson.M{"_id": 7}, d.filters[0])
}

func TestDeleteByIDMissingDocument(t *testing.T) {
	d := &recordingDeleter{}

	ok, err := deleteByID(context.Background(), d, 404)

	require.NoError(t, err)
	assert.False(t, ok)
	require.Len(t, d.filters, 1)
	assert.Equal(t, bson.M{"_id": 404}, d.filters[0])
}
