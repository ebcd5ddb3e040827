package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DeleteAllIndexes deletes all indexes from all collections in the database
// (except the default _id_ index which cannot be deleted)
func DeleteAllIndexes(ctx context.Context, db *mongo.Database) error {
	// Get all collections in the database
	collections, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}

	for _, collName := range collections {
		coll := db.Collection(collName)

		// List all indexes for this collection
		cursor, err := coll.Indexes().List(ctx)
		if err != nil {
			return fmt.Errorf("failed to list indexes for collection '%s': %w", collName, err)
		}

		// Iterate through indexes and delete them (except _id_ which is the default and cannot be deleted)
		for cursor.Next(ctx) {
			var index bson.M
			if err := cursor.Decode(&index); err != nil {
				cursor.Close(ctx)
				return fmt.Errorf("failed to decode index for collection '%s': %w", collName, err)
			}

			indexName, ok := index["name"].(string)
			if !ok {
				continue
			}

			// Skip the default _id_ index as it cannot be deleted
			if indexName == "_id_" {
				continue
			}

			// Delete the index
			_, err := coll.Indexes().DropOne(ctx, indexName)
			if err != nil {
				cursor.Close(ctx)
				return fmt.Errorf("failed to delete index '%s' from collection '%s': %w", indexName, collName, err)
			}
			fmt.Printf("🗑️  Deleted index '%s' from collection '%s'\n", indexName, collName)
		}

		if err := cursor.Err(); err != nil {
			cursor.Close(ctx)
			return fmt.Errorf("cursor error for collection '%s': %w", collName, err)
		}
		cursor.Close(ctx)
	}

	return nil
}

// CreateAllIndexes creates the indexes every collection relies on
func CreateAllIndexes(ctx context.Context, db *mongo.Database, reset bool) error {
	// Create indexes for ratings collection
	if err := CreateRatingIndexes(ctx, db, reset); err != nil {
		return fmt.Errorf("failed to create rating indexes: %w", err)
	}

	// Create indexes for connections collection
	if err := CreateConnectionIndexes(ctx, db, reset); err != nil {
		return fmt.Errorf("failed to create connection indexes: %w", err)
	}

	// Create indexes for ballots collection
	if err := CreateBallotIndexes(ctx, db, reset); err != nil {
		return fmt.Errorf("failed to create ballot indexes: %w", err)
	}

	return nil
}

// CreateRatingIndexes enforces one rating per user and movie and speeds up the
// per-movie rescans behind the aggregate stats
func CreateRatingIndexes(ctx context.Context, db *mongo.Database, reset bool) error {
	coll := db.Collection(RatingsCollection)

	uniqueIndexName := "userId_and_movieId_unique"
	uniqueIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "movieId", Value: 1}},
		Options: options.Index().
			SetUnique(true).
			SetName(uniqueIndexName),
	}
	if err := createIndexIfNotExists(ctx, coll, uniqueIndex, uniqueIndexName, reset); err != nil {
		return err
	}

	movieIndexName := "movieId"
	movieIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "movieId", Value: 1}},
		Options: options.Index().SetName(movieIndexName),
	}
	if err := createIndexIfNotExists(ctx, coll, movieIndex, movieIndexName, reset); err != nil {
		return err
	}

	return nil
}

// CreateConnectionIndexes creates indexes for the connections collection
func CreateConnectionIndexes(ctx context.Context, db *mongo.Database, reset bool) error {
	coll := db.Collection(ConnectionsCollection)
	indexName := "participants_and_createdAt"

	index := mongo.IndexModel{
		Keys:    bson.D{{Key: "participants", Value: 1}, {Key: "createdAt", Value: -1}},
		Options: options.Index().SetName(indexName),
	}
	if err := createIndexIfNotExists(ctx, coll, index, indexName, reset); err != nil {
		return err
	}

	return nil
}

// CreateBallotIndexes creates indexes for the ballots collection
func CreateBallotIndexes(ctx context.Context, db *mongo.Database, reset bool) error {
	coll := db.Collection(BallotsCollection)
	indexName := "eventId"

	index := mongo.IndexModel{
		Keys:    bson.D{{Key: "eventId", Value: 1}},
		Options: options.Index().SetName(indexName),
	}
	if err := createIndexIfNotExists(ctx, coll, index, indexName, reset); err != nil {
		return err
	}

	return nil
}

// createIndexIfNotExists checks if an index exists and creates it if it doesn't
// If reset is true, it will delete the existing index and recreate it
func createIndexIfNotExists(ctx context.Context, coll *mongo.Collection, indexModel mongo.IndexModel, indexName string, reset bool) error {
	// List existing indexes
	cursor, err := coll.Indexes().List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list indexes: %w", err)
	}
	defer cursor.Close(ctx)

	// Check if index already exists
	indexExists := false
	for cursor.Next(ctx) {
		var index bson.M
		if err := cursor.Decode(&index); err != nil {
			return fmt.Errorf("failed to decode index: %w", err)
		}

		if name, ok := index["name"].(string); ok && name == indexName {
			indexExists = true
			break
		}
	}

	if err := cursor.Err(); err != nil {
		return fmt.Errorf("cursor error: %w", err)
	}

	if indexExists {
		if !reset {
			fmt.Printf("ℹ️  Index '%s' already exists on collection '%s', skipping...\n", indexName, coll.Name())
			return nil
		}
		// Delete the existing index
		_, err := coll.Indexes().DropOne(ctx, indexName)
		if err != nil {
			return fmt.Errorf("failed to delete index '%s': %w", indexName, err)
		}
		fmt.Printf("🗑️  Deleted index '%s' on collection '%s'\n", indexName, coll.Name())
	}

	// Create the index
	_, err = coll.Indexes().CreateOne(ctx, indexModel)
	if err != nil {
		return fmt.Errorf("failed to create index '%s': %w", indexName, err)
	}

	fmt.Printf("✅ Created index '%s' on collection '%s'\n", indexName, coll.Name())
	return nil
}
