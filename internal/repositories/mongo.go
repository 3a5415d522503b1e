package repositories

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// ConnectMongo dials and pings a MongoDB deployment.
func ConnectMongo(ctx context.Context, uri, database string) (*mongo.Client, *mongo.Database, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	return client, client.Database(database), nil
}

// InitMongo creates the collections and indexes the repositories rely on.
func InitMongo(ctx context.Context, db *mongo.Database) error {
	for _, col := range []string{"users", "artworks", "collections", "comments"} {
		err := db.CreateCollection(ctx, col)
		if err != nil && !errors.As(err, &mongo.CommandError{}) {
			return fmt.Errorf("failed to create collection %s: %w", col, err)
		}
	}

	indexes := map[string][]mongo.IndexModel{
		"users": {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "reset_password_token", Value: 1}}, Options: options.Index().SetSparse(true)},
		},
		"artworks": {
			{Keys: bson.D{
				{Key: "title", Value: "text"},
				{Key: "description", Value: "text"},
				{Key: "medium", Value: "text"},
				{Key: "style", Value: "text"},
				{Key: "tags", Value: "text"},
			}},
			{Keys: bson.D{{Key: "artist_id", Value: 1}}},
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
		"collections": {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		"comments": {
			{Keys: bson.D{{Key: "artwork_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
	}
	for col, idx := range indexes {
		if _, err := db.Collection(col).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", col, err)
		}
	}
	return nil
}

func mongoErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrDuplicate
	}
	return err
}

// matchedOne turns an update result into ErrNotFound when nothing matched.
func matchedOne(res *mongo.UpdateResult, err error) error {
	if err != nil {
		return mongoErr(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// findAndModify applies a guarded update to one document and decodes the
// result into out. When the guard rejects the document, failed is returned
// unless the document is missing altogether.
func findAndModify(ctx context.Context, col *mongo.Collection, id string, filter bson.M, update, out interface{}, failed error) error {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := col.FindOneAndUpdate(ctx, filter, update, opts).Decode(out)
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return mongoErr(err)
	}
	n, err := col.CountDocuments(ctx, bson.M{"_id": id})
	switch {
	case err != nil:
		return err
	case n == 0:
		return ErrNotFound
	}
	return failed
}
