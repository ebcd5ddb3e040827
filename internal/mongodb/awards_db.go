package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ----- Types for the database -----

type AwardsEventDb struct {
	Id           string       `json:"id" bson:"_id"`
	Name         string       `json:"name" bson:"name"`
	Date         string       `json:"date" bson:"date"`
	IsActive     bool         `json:"isActive" bson:"isActive"`
	LockOverride string       `json:"lockOverride" bson:"lockOverride"`
	Categories   []CategoryDb `json:"categories" bson:"categories"`
	Version      int          `json:"version" bson:"version"`
	CreatedAt    time.Time    `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt" bson:"updatedAt"`
}

type CategoryDb struct {
	Id              string      `json:"id" bson:"id"`
	Name            string      `json:"name" bson:"name"`
	AwardsRatingKey string      `json:"awardsRatingKey" bson:"awardsRatingKey"`
	Nominees        []NomineeDb `json:"nominees" bson:"nominees"`
	WinnerTmdbId    *int        `json:"winnerTmdbId" bson:"winnerTmdbId"`
}

type NomineeDb struct {
	TmdbId     int    `json:"tmdbId" bson:"tmdbId"`
	Title      string `json:"title" bson:"title"`
	Name       string `json:"name" bson:"name"`
	PosterPath string `json:"poster_path" bson:"poster_path"`
}

// AwardsEventUpdateDb holds the top level event fields an admin may change.
// Nil fields are left as they are.
type AwardsEventUpdateDb struct {
	Name         *string
	Date         *string
	IsActive     *bool
	LockOverride *string
}

// ----- Methods for the database -----

func (db *DB) CreateAwardsEvent(ctx context.Context, event AwardsEventDb) (AwardsEventDb, error) {
	coll := db.Collection(AwardsEventsCollection)

	if event.Id == "" {
		event.Id = primitive.NewObjectID().Hex()
	}
	now := time.Now()
	event.CreatedAt = now
	event.UpdatedAt = now
	event.Version = 1
	if event.Categories == nil {
		event.Categories = []CategoryDb{}
	}

	if _, err := coll.InsertOne(ctx, event); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return AwardsEventDb{}, ErrDuplicateKey
		}
		return AwardsEventDb{}, err
	}
	return event, nil
}

func (db *DB) GetAwardsEventById(ctx context.Context, id string) (AwardsEventDb, error) {
	coll := db.Collection(AwardsEventsCollection)

	var event AwardsEventDb
	err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(&event)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return AwardsEventDb{}, ErrRecordNotFound
		}
		return AwardsEventDb{}, err
	}
	return event, nil
}

func (db *DB) GetAwardsEvents(ctx context.Context, activeOnly bool) ([]AwardsEventDb, error) {
	coll := db.Collection(AwardsEventsCollection)

	filter := bson.M{}
	if activeOnly {
		filter["isActive"] = true
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})

	cursor, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return []AwardsEventDb{}, err
	}
	defer cursor.Close(ctx)

	var events []AwardsEventDb
	if err := cursor.All(ctx, &events); err != nil {
		return []AwardsEventDb{}, err
	}
	return events, nil
}

func (db *DB) UpdateAwardsEvent(ctx context.Context, id string, update AwardsEventUpdateDb) error {
	coll := db.Collection(AwardsEventsCollection)

	set := bson.M{"updatedAt": time.Now()}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Date != nil {
		set["date"] = *update.Date
	}
	if update.IsActive != nil {
		set["isActive"] = *update.IsActive
	}
	if update.LockOverride != nil {
		set["lockOverride"] = *update.LockOverride
	}

	res, err := coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// ReplaceAwardsEventCategories writes the whole category list if the stored
// version still equals expectedVersion, and bumps the version.
func (db *DB) ReplaceAwardsEventCategories(ctx context.Context, id string, expectedVersion int, categories []CategoryDb) error {
	coll := db.Collection(AwardsEventsCollection)

	res, err := coll.UpdateOne(ctx,
		bson.M{"_id": id, "version": expectedVersion},
		bson.M{
			"$set": bson.M{"categories": categories, "updatedAt": time.Now()},
			"$inc": bson.M{"version": 1},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		exists, err := db.awardsEventExists(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			return ErrRecordNotFound
		}
		return ErrVersionConflict
	}
	return nil
}

func (db *DB) DeleteAwardsEvent(ctx context.Context, id string) (bool, error) {
	coll := db.Collection(AwardsEventsCollection)

	res, err := coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	if res.DeletedCount == 0 {
		return false, nil
	}

	if _, err := db.Collection(BallotsCollection).DeleteMany(ctx, bson.M{"eventId": id}); err != nil {
		return true, err
	}
	return true, nil
}

func (db *DB) awardsEventExists(ctx context.Context, id string) (bool, error) {
	coll := db.Collection(AwardsEventsCollection)

	opts := options.FindOne().SetProjection(bson.M{"_id": 1})
	err := coll.FindOne(ctx, bson.M{"_id": id}, opts).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
