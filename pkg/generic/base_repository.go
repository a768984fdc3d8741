package generic

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrInvalidID is returned for identifiers that are not ObjectID hex strings.
var ErrInvalidID = errors.New("invalid id")

// Entity is a stored model with an ObjectID primary key. Implementations
// use pointer receivers so SetID mutates the caller's value.
type Entity interface {
	GetID() primitive.ObjectID
	SetID(primitive.ObjectID)
}

// BaseRepository Interface
type BaseRepository[T Entity] interface {
	Create(ctx context.Context, entity T) error
	GetByID(ctx context.Context, id string) (T, error)
	Update(ctx context.Context, entity T) error
	Delete(ctx context.Context, id string) error
}

// MongoBaseRepository implements BaseRepository over one collection.
// Errors are returned as the driver reports them; a document that does not
// exist is mongo.ErrNoDocuments.
type MongoBaseRepository[T Entity] struct {
	Collection *mongo.Collection
}

func NewBaseRepository[T Entity](collection *mongo.Collection) *MongoBaseRepository[T] {
	return &MongoBaseRepository[T]{Collection: collection}
}

// Create assigns a fresh ID and inserts the entity.
func (r *MongoBaseRepository[T]) Create(ctx context.Context, entity T) error {
	entity.SetID(primitive.NewObjectID())
	_, err := r.Collection.InsertOne(ctx, entity)
	return err
}

// GetByID decodes the document with the given hex ID into a new T.
// T is expected to be a pointer type.
func (r *MongoBaseRepository[T]) GetByID(ctx context.Context, id string) (T, error) {
	var entity T
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return entity, ErrInvalidID
	}

	err = r.Collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&entity)
	return entity, err
}

// Update replaces the whole document.
func (r *MongoBaseRepository[T]) Update(ctx context.Context, entity T) error {
	res, err := r.Collection.ReplaceOne(ctx, bson.M{"_id": entity.GetID()}, entity)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete removes the document with the given hex ID.
func (r *MongoBaseRepository[T]) Delete(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}
	res, err := r.Collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Find decodes every document matching filter.
func (r *MongoBaseRepository[T]) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := r.Collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := make([]T, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FindOne decodes the first document matching filter.
func (r *MongoBaseRepository[T]) FindOne(ctx context.Context, filter interface{}) (T, error) {
	var entity T
	err := r.Collection.FindOne(ctx, filter).Decode(&entity)
	return entity, err
}
