package main

import (
	"context"
	"flag"
	"sync"
	"sync/atomic"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/lealre/cinematch-backend/internal/mongodb"
	"github.com/lealre/cinematch-backend/internal/services/ratings"
)

type routineConfig struct {
	MongoURI      string `env:"MONGODB_URI,required"`
	MongoDatabase string `env:"MONGODB_DB" envDefault:"cinematch"`
}

type statsRecomputer interface {
	RecomputeStats(ctx context.Context, movieId int) error
}

func main() {
	_ = godotenv.Load()

	workers := flag.Int("workers", 5, "number of movies recomputed concurrently")
	flag.Parse()

	var cfg routineConfig
	if err := env.Parse(&cfg); err != nil {
		logrus.Fatalf("Failed to read config: %v", err)
	}

	logrus.Info("starting movie stats recompute")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	client, err := mongodb.Connect(ctx, cfg.MongoURI)
	if err != nil {
		logrus.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(context.Background())

	db := mongodb.NewDB(client, cfg.MongoDatabase)

	movieIds, err := db.GetRatedMovieIds(ctx)
	if err != nil {
		logrus.Fatalf("Failed to list rated movies: %v", err)
	}
	logrus.Infof("found %d rated movies", len(movieIds))

	failed := recomputeAll(ctx, ratings.NewService(db), movieIds, *workers)
	logrus.WithFields(logrus.Fields{
		"movies": len(movieIds),
		"failed": failed,
	}).Info("movie stats recompute finished")
}

// recomputeAll rebuilds the aggregates of every movie with a pool of workers
// and returns how many movies failed.
func recomputeAll(ctx context.Context, svc statsRecomputer, movieIds []int, workerCount int) int {
	if workerCount < 1 {
		workerCount = 1
	}

	jobs := make(chan int, len(movieIds))
	var failed atomic.Int64
	wg := sync.WaitGroup{}

	for i := 0; i < workerCount; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for movieId := range jobs {
				if err := svc.RecomputeStats(ctx, movieId); err != nil {
					logrus.WithError(err).WithField("movie_id", movieId).Warn("failed recomputing stats")
					failed.Add(1)
				}
			}
		}()
	}

	for _, id := range movieIds {
		jobs <- id
	}

	close(jobs)
	wg.Wait()

	return int(failed.Load())
}
