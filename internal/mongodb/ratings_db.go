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

type RatingDb struct {
	Id        string            `json:"id" bson:"_id"`
	MovieId   int               `json:"movieId" bson:"movieId"`
	UserId    string            `json:"userId" bson:"userId"`
	Method    string            `json:"ratingMethod" bson:"ratingMethod"`
	Score     float64           `json:"score" bson:"score"`
	Breakdown map[string]string `json:"breakdown,omitempty" bson:"breakdown,omitempty"`
	CreatedAt time.Time         `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt" bson:"updatedAt"`
}

type MethodStatsDb struct {
	Count   int     `json:"count" bson:"count"`
	Sum     float64 `json:"sum" bson:"sum"`
	Average float64 `json:"average" bson:"average"`
}

type MovieStatsDb struct {
	MovieId   int                      `json:"movieId" bson:"_id"`
	Stats     map[string]MethodStatsDb `json:"stats" bson:"stats"`
	UpdatedAt time.Time                `json:"updatedAt" bson:"updatedAt"`
}

// ----- Methods for the database -----

// UpsertRating stores the user's rating of a movie, replacing any earlier one.
func (db *DB) UpsertRating(ctx context.Context, rating RatingDb) (RatingDb, error) {
	coll := db.Collection(RatingsCollection)

	now := time.Now()
	set := bson.M{
		"ratingMethod": rating.Method,
		"score":        rating.Score,
		"updatedAt":    now,
	}
	update := bson.M{
		"$set": set,
		"$setOnInsert": bson.M{
			"_id":       primitive.NewObjectID().Hex(),
			"createdAt": now,
		},
	}
	if len(rating.Breakdown) > 0 {
		set["breakdown"] = rating.Breakdown
	} else {
		update["$unset"] = bson.M{"breakdown": ""}
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var stored RatingDb
	err := coll.FindOneAndUpdate(ctx,
		bson.M{"userId": rating.UserId, "movieId": rating.MovieId},
		update,
		opts,
	).Decode(&stored)
	if err != nil {
		return RatingDb{}, err
	}
	return stored, nil
}

func (db *DB) GetRatingsByMovieId(ctx context.Context, movieId int) ([]RatingDb, error) {
	return db.GetRatings(ctx, bson.M{"movieId": movieId})
}

func (db *DB) GetRatingsByUserAndMovies(ctx context.Context, userId string, movieIds []int) ([]RatingDb, error) {
	return db.GetRatings(ctx, bson.M{"userId": userId, "movieId": bson.M{"$in": movieIds}})
}

func (db *DB) GetRatings(ctx context.Context, args ...any) ([]RatingDb, error) {
	coll := db.Collection(RatingsCollection)

	filter, opts := ResolveFilterAndOptionsSearch(args...)
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return []RatingDb{}, err
	}
	defer cursor.Close(ctx)

	var ratingsDb []RatingDb
	if err := cursor.All(ctx, &ratingsDb); err != nil {
		return []RatingDb{}, err
	}

	return ratingsDb, nil
}

// SetMovieStats overwrites the aggregate document of a movie.
func (db *DB) SetMovieStats(ctx context.Context, stats MovieStatsDb) error {
	coll := db.Collection(MovieStatsCollection)

	stats.UpdatedAt = time.Now()
	_, err := coll.ReplaceOne(ctx, bson.M{"_id": stats.MovieId}, stats, options.Replace().SetUpsert(true))
	return err
}

func (db *DB) GetMovieStats(ctx context.Context, movieId int) (MovieStatsDb, error) {
	coll := db.Collection(MovieStatsCollection)

	var stats MovieStatsDb
	err := coll.FindOne(ctx, bson.M{"_id": movieId}).Decode(&stats)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return MovieStatsDb{}, ErrRecordNotFound
		}
		return MovieStatsDb{}, err
	}
	return stats, nil
}

// GetRatedMovieIds lists every movie that has at least one rating.
func (db *DB) GetRatedMovieIds(ctx context.Context) ([]int, error) {
	coll := db.Collection(RatingsCollection)

	values, err := coll.Distinct(ctx, "movieId", bson.M{})
	if err != nil {
		return nil, err
	}

	ids := make([]int, 0, len(values))
	for _, v := range values {
		switch id := v.(type) {
		case int32:
			ids = append(ids, int(id))
		case int64:
			ids = append(ids, int(id))
		}
	}
	return ids, nil
}
