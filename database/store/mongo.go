package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoTable implements Table on a MongoDB collection.
type MongoTable[T any] struct {
	coll    *mongo.Collection
	timeout time.Duration
}

// NewMongoTable binds a table to the collection of the same name.
func NewMongoTable[T any](db *mongo.Database, name string) *MongoTable[T] {
	return &MongoTable[T]{
		coll:    db.Collection(name),
		timeout: 5 * time.Second,
	}
}

func (t *MongoTable[T]) Name() string {
	return t.coll.Name()
}

// newContext bounds a store call by the table timeout.
func (t *MongoTable[T]) newContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, t.timeout)
}

func (t *MongoTable[T]) Select(ctx context.Context, filter Filter) ([]T, error) {
	ctx, cancel := t.newContext(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := t.coll.Find(ctx, toBSON(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("find in %s: %w", t.Name(), err)
	}
	defer cursor.Close(ctx)

	rows := make([]T, 0)
	for cursor.Next(ctx) {
		var row T
		if err := cursor.Decode(&row); err != nil {
			return nil, fmt.Errorf("decode %s row: %w", t.Name(), err)
		}
		rows = append(rows, row)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return rows, nil
}

func (t *MongoTable[T]) SelectOne(ctx context.Context, filter Filter) (T, error) {
	ctx, cancel := t.newContext(ctx)
	defer cancel()

	var row T
	if err := t.coll.FindOne(ctx, toBSON(filter)).Decode(&row); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return row, ErrNoRows
		}
		return row, fmt.Errorf("find one in %s: %w", t.Name(), err)
	}
	return row, nil
}

func (t *MongoTable[T]) Insert(ctx context.Context, row T) (T, error) {
	ctx, cancel := t.newContext(ctx)
	defer cancel()

	if _, err := t.coll.InsertOne(ctx, row); err != nil {
		return row, fmt.Errorf("insert into %s: %w", t.Name(), err)
	}
	return row, nil
}

func (t *MongoTable[T]) Update(ctx context.Context, filter Filter, patch Patch) (T, int64, error) {
	ctx, cancel := t.newContext(ctx)
	defer cancel()

	var row T
	update := bson.M{"$set": bson.M(patch)}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := t.coll.FindOneAndUpdate(ctx, toBSON(filter), update, opts).Decode(&row)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return row, 0, nil
		}
		return row, 0, fmt.Errorf("update %s: %w", t.Name(), err)
	}
	return row, 1, nil
}

func (t *MongoTable[T]) Delete(ctx context.Context, filter Filter) (int64, error) {
	ctx, cancel := t.newContext(ctx)
	defer cancel()

	result, err := t.coll.DeleteMany(ctx, toBSON(filter))
	if err != nil {
		return 0, fmt.Errorf("delete from %s: %w", t.Name(), err)
	}
	return result.DeletedCount, nil
}

func toBSON(filter Filter) bson.M {
	if filter == nil {
		return bson.M{}
	}
	return bson.M(filter)
}
