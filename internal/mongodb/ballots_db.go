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

type BallotDb struct {
	Id        string         `json:"id" bson:"_id"`
	UserId    string         `json:"userId" bson:"userId"`
	EventId   string         `json:"eventId" bson:"eventId"`
	Picks     map[string]int `json:"picks" bson:"picks"`
	UpdatedAt time.Time      `json:"updatedAt" bson:"updatedAt"`
}

func BallotId(userId, eventId string) string {
	return eventId + ":" + userId
}

// ----- Methods for the database -----

// SetBallotPick stores the pick for a single category, creating the ballot on
// first use. Picks for other categories are not touched.
func (db *DB) SetBallotPick(ctx context.Context, userId, eventId, categoryId string, tmdbId int) error {
	if !ValidFieldKey(categoryId) {
		return ErrInvalidFieldKey
	}
	coll := db.Collection(BallotsCollection)

	now := time.Now()
	_, err := coll.UpdateOne(ctx,
		bson.M{"_id": BallotId(userId, eventId)},
		bson.M{
			"$set": bson.M{
				"picks." + categoryId: tmdbId,
				"updatedAt":           now,
			},
			"$setOnInsert": bson.M{
				"userId":  userId,
				"eventId": eventId,
			},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

func (db *DB) GetBallot(ctx context.Context, userId, eventId string) (BallotDb, error) {
	coll := db.Collection(BallotsCollection)

	var ballot BallotDb
	err := coll.FindOne(ctx, bson.M{"_id": BallotId(userId, eventId)}).Decode(&ballot)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return BallotDb{}, ErrRecordNotFound
		}
		return BallotDb{}, err
	}
	return ballot, nil
}

func (db *DB) GetBallotsByEvent(ctx context.Context, eventId string) ([]BallotDb, error) {
	coll := db.Collection(BallotsCollection)

	cursor, err := coll.Find(ctx, bson.M{"eventId": eventId})
	if err != nil {
		return []BallotDb{}, err
	}
	defer cursor.Close(ctx)

	var ballots []BallotDb
	if err := cursor.All(ctx, &ballots); err != nil {
		return []BallotDb{}, err
	}
	return ballots, nil
}
