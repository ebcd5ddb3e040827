package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/lealre/cinematch-backend/internal/mongodb"
	"github.com/lealre/cinematch-backend/internal/services/awards"
)

type toolConfig struct {
	MongoURI       string `env:"MONGODB_URI,required"`
	MongoDatabase  string `env:"MONGODB_DB" envDefault:"cinematch"`
	AwardsTimezone string `env:"AWARDS_TIMEZONE" envDefault:"America/Los_Angeles"`
	AdminId        string `env:"ADMIN_USER_ID" envDefault:"admin"`
	AdminName      string `env:"ADMIN_NAME" envDefault:"Admin"`
}

func main() {
	_ = godotenv.Load()

	indexes := flag.Bool("indexes", false, "create indexes in the database if they do not exist")
	resetIndexes := flag.Bool("reset", false, "delete the indexes and recreate them")
	deleteIndexes := flag.Bool("delete", false, "delete the indexes")
	admin := flag.Bool("admin", false, "create or refresh the admin user from ADMIN_USER_ID and ADMIN_NAME")
	seedAwards := flag.String("awards", "", "seed an awards event from a JSON fixture file")
	flag.Parse()

	var cfg toolConfig
	if err := env.Parse(&cfg); err != nil {
		logrus.Fatalf("Failed to read config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	client, err := mongodb.Connect(ctx, cfg.MongoURI)
	if err != nil {
		logrus.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(context.Background())

	db := mongodb.NewDB(client, cfg.MongoDatabase)

	switch {
	case *indexes:
		if *deleteIndexes {
			if err := mongodb.DeleteAllIndexes(ctx, db.Database()); err != nil {
				logrus.Fatalf("Failed to delete indexes: %v", err)
			}
			logrus.Info("all indexes deleted")
			return
		}
		if err := mongodb.CreateAllIndexes(ctx, db.Database(), *resetIndexes); err != nil {
			logrus.Fatalf("Failed to create indexes: %v", err)
		}
		logrus.Info("indexes command ran successfully")

	case *admin:
		created, err := db.UpsertUser(ctx, mongodb.UserDb{Id: cfg.AdminId, Name: cfg.AdminName, IsActive: true, IsAdmin: true})
		if err != nil {
			logrus.Fatalf("Failed to create admin: %v", err)
		}
		logrus.WithFields(logrus.Fields{"user_id": cfg.AdminId, "created": created}).Info("admin command ran successfully")

	case *seedAwards != "":
		loc, err := time.LoadLocation(cfg.AwardsTimezone)
		if err != nil {
			logrus.Fatalf("Invalid AWARDS_TIMEZONE: %v", err)
		}
		fixture, err := loadAwardsFixture(*seedAwards)
		if err != nil {
			logrus.Fatalf("Failed to read fixture: %v", err)
		}
		event, err := seedAwardsEvent(ctx, awards.NewService(db, loc), fixture)
		if errors.Is(err, awards.ErrDuplicateEvent) {
			logrus.WithField("event_id", fixture.Id).
				Fatal("Awards event already exists, delete it or change the fixture id before seeding again")
		}
		if err != nil {
			logrus.Fatalf("Failed to seed awards event: %v", err)
		}
		logrus.WithFields(logrus.Fields{
			"event_id":   event.Id,
			"categories": len(event.Categories),
		}).Info("awards event seeded")

	default:
		fmt.Println("No valid command specified.")
		flag.Usage()
	}
}
