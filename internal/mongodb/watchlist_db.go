package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ----- Types for the database -----

// MovieStubDb is the slice of catalog metadata stored alongside ids so lists
// can be rendered without another catalog round trip.
type MovieStubDb struct {
	Id          int    `json:"id" bson:"id"`
	Title       string `json:"title" bson:"title"`
	PosterPath  string `json:"poster_path" bson:"poster_path"`
	Overview    string `json:"overview" bson:"overview"`
	ReleaseDate string `json:"release_date" bson:"release_date"`
}

type WatchlistDb struct {
	UserId    string        `json:"userId" bson:"_id"`
	Items     []MovieStubDb `json:"items" bson:"items"`
	UpdatedAt time.Time     `json:"updatedAt" bson:"updatedAt"`
}

// ----- Methods for the database -----

func (db *DB) GetWatchLater(ctx context.Context, userId string) ([]MovieStubDb, error) {
	coll := db.Collection(WatchlistsCollection)

	var list WatchlistDb
	err := coll.FindOne(ctx, bson.M{"_id": userId}).Decode(&list)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return []MovieStubDb{}, nil
		}
		return []MovieStubDb{}, err
	}
	if list.Items == nil {
		return []MovieStubDb{}, nil
	}
	return list.Items, nil
}

// AddWatchLater appends the movie unless it is already on the list. Reports
// whether the list changed.
func (db *DB) AddWatchLater(ctx context.Context, userId string, movie MovieStubDb) (bool, error) {
	coll := db.Collection(WatchlistsCollection)

	// Make sure the document exists so the conditional push below can match it.
	_, err := coll.UpdateOne(ctx,
		bson.M{"_id": userId},
		bson.M{"$setOnInsert": bson.M{"items": []MovieStubDb{}, "updatedAt": time.Now()}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return false, err
	}

	res, err := coll.UpdateOne(ctx,
		bson.M{"_id": userId, "items.id": bson.M{"$ne": movie.Id}},
		bson.M{
			"$push": bson.M{"items": movie},
			"$set":  bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

func (db *DB) RemoveWatchLater(ctx context.Context, userId string, movieId int) (bool, error) {
	coll := db.Collection(WatchlistsCollection)

	res, err := coll.UpdateOne(ctx,
		bson.M{"_id": userId, "items.id": movieId},
		bson.M{
			"$pull": bson.M{"items": bson.M{"id": movieId}},
			"$set":  bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}
