package server

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lealre/cinematch-backend/internal/mongodb"
)

var testClient *mongo.Client

const TEST_DB_NAME = "testDb"

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "mongo:7.0",
		ExposedPorts: []string{"27017/tcp"},
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

	testClient, err = mongo.Connect(ctx, options.Client().ApplyURI("mongodb://"+endpoint))
	if err != nil {
		log.Fatalf("failed to connect to test mongo: %v", err)
	}

	code := m.Run()

	_ = testClient.Disconnect(ctx)
	_ = mongoC.Terminate(ctx)

	os.Exit(code)
}

// resetDB drops every collection and returns a DB over the empty database.
func resetDB(t *testing.T) *mongodb.DB {
	t.Helper()
	if testClient == nil {
		t.Skip("mongo container not started (-short)")
	}

	ctx := context.Background()
	db := testClient.Database(TEST_DB_NAME)

	collections, err := db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		t.Fatalf("failed to list collections: %v", err)
	}
	for _, coll := range collections {
		if err := db.Collection(coll).Drop(ctx); err != nil {
			t.Fatalf("failed to drop collection %s: %v", coll, err)
		}
	}

	return mongodb.NewDB(testClient, TEST_DB_NAME)
}

func seedCollection(t *testing.T, collection string, docs []interface{}) {
	t.Helper()

	coll := testClient.Database(TEST_DB_NAME).Collection(collection)
	if _, err := coll.InsertMany(context.Background(), docs); err != nil {
		t.Fatalf("failed to insert seed documents: %v", err)
	}
}

func loadFixture(t *testing.T, path string) []interface{} {
	t.Helper()

	absPath, err := filepath.Abs(path)
	if err != nil {
		t.Fatalf("failed to get abs path: %v", err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		t.Fatalf("failed to read fixture file %s: %v", absPath, err)
	}

	var docs []bson.M
	if err := json.Unmarshal(data, &docs); err != nil {
		t.Fatalf("failed to unmarshal fixture JSON: %v", err)
	}

	result := make([]interface{}, len(docs))
	for i, d := range docs {
		result[i] = d
	}
	return result
}
