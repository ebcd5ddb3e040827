package mongodb

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var testClient *mongo.Client

const TEST_DB_NAME = "testDb"

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}

	ctx := context.Background()

	// A single node replica set, so change streams work.
	req := testcontainers.ContainerRequest{
		Image:        "mongo:7.0",
		ExposedPorts: []string{"27017/tcp"},
		Cmd:          []string{"--replSet", "rs0", "--bind_ip_all"},
		WaitingFor:   wait.ForListeningPort("27017/tcp"),
	}
	mongoC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		log.Fatalf("failed to start mongo container: %v", err)
	}

	endpoint, err := mongoC.Endpoint(ctx, "")
	if err != nil {
		log.Fatalf("failed to get mongo endpoint: %v", err)
	}

	testClient, err = mongo.Connect(ctx, options.Client().ApplyURI("mongodb://"+endpoint+"/?directConnection=true"))
	if err != nil {
		log.Fatalf("failed to connect to test mongo: %v", err)
	}
	if err := initReplicaSet(ctx, testClient); err != nil {
		log.Fatalf("failed to init replica set: %v", err)
	}

	code := m.Run()

	_ = testClient.Disconnect(ctx)
	_ = mongoC.Terminate(ctx)

	os.Exit(code)
}

func initReplicaSet(ctx context.Context, client *mongo.Client) error {
	admin := client.Database("admin")
	err := admin.RunCommand(ctx, bson.D{{Key: "replSetInitiate", Value: bson.M{
		"_id":     "rs0",
		"members": bson.A{bson.M{"_id": 0, "host": "localhost:27017"}},
	}}}).Err()
	if err != nil {
		return err
	}

	deadline := time.Now().Add(30 * time.Second)
	for time.Now().Before(deadline) {
		var hello struct {
			IsWritablePrimary bool `bson:"isWritablePrimary"`
		}
		if err := admin.RunCommand(ctx, bson.D{{Key: "hello", Value: 1}}).Decode(&hello); err == nil && hello.IsWritablePrimary {
			return nil
		}
		time.Sleep(200 * time.Millisecond)
	}
	return fmt.Errorf("replica set did not elect a primary in time")
}

// newTestDB returns a DB over an emptied test database.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	if testClient == nil {
		t.Skip("mongo container not started (-short)")
	}

	ctx := context.Background()
	database := testClient.Database(TEST_DB_NAME)

	collections, err := database.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		t.Fatalf("failed to list collections: %v", err)
	}
	for _, coll := range collections {
		if err := database.Collection(coll).Drop(ctx); err != nil {
			t.Fatalf("failed to drop collection %s: %v", coll, err)
		}
	}

	return NewDB(testClient, TEST_DB_NAME)
}
