package mongodb

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lealre/cinematch-backend/internal/logx"
)

// ----- Types for the database -----

const (
	StatusMatching = "matching"
	StatusVoting   = "voting"
	StatusRevealed = "revealed"
)

type ConnectionDb struct {
	Id            string        `json:"id" bson:"_id"`
	Name          string        `json:"name" bson:"name"`
	Participants  []string      `json:"participants" bson:"participants"`
	Status        string        `json:"status" bson:"status"`
	MatchedMovies []MovieStubDb `json:"matchedMovies" bson:"matchedMovies"`
	// userId -> movieId -> score. Movie ids are stored as decimal strings
	// because document keys must be strings.
	Votes       map[string]map[string]int `json:"votes" bson:"votes"`
	Deadline    time.Time                 `json:"deadline" bson:"deadline"`
	PopularPage int                       `json:"popularPage" bson:"popularPage"`
	CreatedBy   string                    `json:"createdBy" bson:"createdBy"`
	CreatedAt   time.Time                 `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time                 `json:"updatedAt" bson:"updatedAt"`
	RevealedAt  *time.Time                `json:"revealedAt,omitempty" bson:"revealedAt,omitempty"`
}

// VotePath is the dotted field path of a single vote inside a connection document.
func VotePath(userId string, movieId int) string {
	return fmt.Sprintf("votes.%s.%s", userId, strconv.Itoa(movieId))
}

// ----- Methods for the database -----

func (db *DB) CreateConnection(ctx context.Context, conn ConnectionDb) (ConnectionDb, error) {
	coll := db.Collection(ConnectionsCollection)

	if conn.Id == "" {
		conn.Id = primitive.NewObjectID().Hex()
	}
	if conn.CreatedAt.IsZero() {
		conn.CreatedAt = time.Now()
	}
	conn.UpdatedAt = conn.CreatedAt
	if conn.MatchedMovies == nil {
		conn.MatchedMovies = []MovieStubDb{}
	}
	if conn.Votes == nil {
		conn.Votes = map[string]map[string]int{}
	}

	if _, err := coll.InsertOne(ctx, conn); err != nil {
		return ConnectionDb{}, err
	}
	return conn, nil
}

func (db *DB) GetConnectionById(ctx context.Context, id string) (ConnectionDb, error) {
	coll := db.Collection(ConnectionsCollection)

	var conn ConnectionDb
	err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(&conn)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ConnectionDb{}, ErrRecordNotFound
		}
		return ConnectionDb{}, err
	}
	return conn, nil
}

func (db *DB) GetConnectionsByUser(ctx context.Context, userId string) ([]ConnectionDb, error) {
	coll := db.Collection(ConnectionsCollection)

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := coll.Find(ctx, bson.M{"participants": userId}, opts)
	if err != nil {
		return []ConnectionDb{}, err
	}
	defer cursor.Close(ctx)

	var conns []ConnectionDb
	if err := cursor.All(ctx, &conns); err != nil {
		return []ConnectionDb{}, err
	}
	return conns, nil
}

// StartVoting stores the candidate list and moves the connection from
// "matching" to "voting". Returns ErrRecordNotFound when no connection in the
// "matching" state has that id.
func (db *DB) StartVoting(ctx context.Context, id string, movies []MovieStubDb, popularPage int) error {
	coll := db.Collection(ConnectionsCollection)

	res, err := coll.UpdateOne(ctx,
		bson.M{"_id": id, "status": StatusMatching},
		bson.M{"$set": bson.M{
			"matchedMovies": movies,
			"status":        StatusVoting,
			"popularPage":   popularPage,
			"updatedAt":     time.Now(),
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// SetVote writes a single vote with a field path update, leaving every other
// vote in the document untouched. The write only applies while the movie is
// one of the connection's candidates.
func (db *DB) SetVote(ctx context.Context, id, userId string, movieId, score int) error {
	if !ValidFieldKey(userId) {
		return ErrInvalidFieldKey
	}
	coll := db.Collection(ConnectionsCollection)

	res, err := coll.UpdateOne(ctx,
		bson.M{"_id": id, "matchedMovies.id": movieId},
		bson.M{"$set": bson.M{
			VotePath(userId, movieId): score,
			"updatedAt":               time.Now(),
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// AppendMatchedMovie pushes a candidate unless one with the same id is already
// present. Reports whether it was appended.
func (db *DB) AppendMatchedMovie(ctx context.Context, id string, movie MovieStubDb) (bool, error) {
	coll := db.Collection(ConnectionsCollection)

	res, err := coll.UpdateOne(ctx,
		bson.M{"_id": id, "status": StatusVoting, "matchedMovies.id": bson.M{"$ne": movie.Id}},
		bson.M{
			"$push": bson.M{"matchedMovies": movie},
			"$set":  bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

// SetPopularPage records the last catalog page consumed. The page never moves backwards.
func (db *DB) SetPopularPage(ctx context.Context, id string, page int) error {
	coll := db.Collection(ConnectionsCollection)

	_, err := coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$max": bson.M{"popularPage": page}},
	)
	return err
}

// RevealConnection moves the connection from "voting" to "revealed".
func (db *DB) RevealConnection(ctx context.Context, id string, at time.Time) error {
	coll := db.Collection(ConnectionsCollection)

	res, err := coll.UpdateOne(ctx,
		bson.M{"_id": id, "status": StatusVoting},
		bson.M{"$set": bson.M{
			"status":     StatusRevealed,
			"revealedAt": at,
			"updatedAt":  at,
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (db *DB) DeleteConnection(ctx context.Context, id string) (bool, error) {
	coll := db.Collection(ConnectionsCollection)

	res, err := coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// WatchConnection streams every change of a connection document to onChange
// as a full snapshot; a deleted document is delivered as nil. Change streams
// need a replica set. The returned function stops the stream.
func (db *DB) WatchConnection(ctx context.Context, id string, onChange func(*ConnectionDb)) (func(), error) {
	coll := db.Collection(ConnectionsCollection)

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"documentKey._id": id}}},
	}
	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)

	streamCtx, cancel := context.WithCancel(ctx)
	stream, err := coll.Watch(streamCtx, pipeline, opts)
	if err != nil {
		cancel()
		return nil, err
	}

	logger := logx.FromContext(ctx).WithField("connection_id", id)

	go func() {
		defer stream.Close(context.Background())
		for stream.Next(streamCtx) {
			var event struct {
				OperationType string        `bson:"operationType"`
				FullDocument  *ConnectionDb `bson:"fullDocument"`
			}
			if err := stream.Decode(&event); err != nil {
				logger.WithError(err).Warn("could not decode connection change event")
				continue
			}
			if event.OperationType == "delete" {
				onChange(nil)
				return
			}
			if event.FullDocument != nil {
				onChange(event.FullDocument)
			}
		}
		if err := stream.Err(); err != nil && streamCtx.Err() == nil {
			logger.WithError(err).Warn("connection change stream stopped")
		}
	}()

	return cancel, nil
}
