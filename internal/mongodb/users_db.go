package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UserDb struct {
	Id         string    `json:"id" bson:"_id"`
	Name       string    `json:"name" bson:"name"`
	IsActive   bool      `json:"isActive" bson:"isActive"`
	IsAdmin    bool      `json:"isAdmin" bson:"isAdmin"`
	PushTokens []string  `json:"-" bson:"pushTokens,omitempty"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt" bson:"updatedAt"`
}

func (db *DB) GetUserById(ctx context.Context, id string) (UserDb, error) {
	coll := db.Collection(UsersCollection)
	var userDb UserDb
	if err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(&userDb); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return UserDb{}, ErrRecordNotFound
		}
		return UserDb{}, err
	}

	return userDb, nil
}

func (db *DB) GetUsersByIds(ctx context.Context, ids []string) ([]UserDb, error) {
	if len(ids) == 0 {
		return []UserDb{}, nil
	}

	coll := db.Collection(UsersCollection)
	cursor, err := coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return []UserDb{}, err
	}
	defer cursor.Close(ctx)

	var users []UserDb
	if err := cursor.All(ctx, &users); err != nil {
		return []UserDb{}, err
	}
	return users, nil
}

// AddPushToken registers a device token for the user; repeated tokens are kept once.
func (db *DB) AddPushToken(ctx context.Context, userId, token string) error {
	coll := db.Collection(UsersCollection)

	res, err := coll.UpdateOne(ctx,
		bson.M{"_id": userId},
		bson.M{
			"$addToSet": bson.M{"pushTokens": token},
			"$set":      bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// UpsertUser creates the user or refreshes its name and flags. Push tokens are
// left untouched. Reports whether a new document was inserted.
func (db *DB) UpsertUser(ctx context.Context, user UserDb) (bool, error) {
	if !ValidFieldKey(user.Id) {
		return false, ErrInvalidFieldKey
	}
	coll := db.Collection(UsersCollection)

	now := time.Now()
	res, err := coll.UpdateOne(ctx,
		bson.M{"_id": user.Id},
		bson.M{
			"$set": bson.M{
				"name":      user.Name,
				"isActive":  user.IsActive,
				"isAdmin":   user.IsAdmin,
				"updatedAt": now,
			},
			"$setOnInsert": bson.M{"createdAt": now},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return false, err
	}
	return res.UpsertedCount > 0, nil
}
