// Command seed_localities pushes the localities stored in MongoDB into the
// Meilisearch directory. Useful after a fresh Meilisearch deployment, when
// the documents exist in MongoDB but the index is empty.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/address-cleanser/app/models"
	"github.com/address-cleanser/internal/search"
)

func main() {
	var (
		mongoURL  = flag.String("mongo", envOr("MONGO_URL", "mongodb://localhost:27017/address_cleanser"), "MongoDB URL")
		meiliURL  = flag.String("meili", envOr("MEILI_URL", "http://localhost:7700"), "Meilisearch URL")
		meiliKey  = flag.String("key", os.Getenv("MEILI_MASTER_KEY"), "Meilisearch master key")
		indexName = flag.String("index", "localities", "Meilisearch index name")
	)
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("cannot initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(*mongoURL))
	if err != nil {
		logger.Fatal("mongodb connect failed", zap.Error(err))
	}
	defer client.Disconnect(context.Background())

	directory, err := search.NewLocalityDirectory(search.SearchConfig{
		Host:      *meiliURL,
		APIKey:    *meiliKey,
		IndexName: *indexName,
	}, logger)
	if err != nil {
		logger.Fatal("meilisearch connect failed", zap.Error(err))
	}

	collection := client.Database("address_cleanser").Collection("localities")
	cursor, err := collection.Find(ctx, bson.M{})
	if err != nil {
		logger.Fatal("locality query failed", zap.Error(err))
	}
	defer cursor.Close(ctx)

	var localities []models.Locality
	if err := cursor.All(ctx, &localities); err != nil {
		logger.Fatal("locality decode failed", zap.Error(err))
	}
	if len(localities) == 0 {
		logger.Warn("no localities in mongodb, nothing to seed")
		return
	}

	if err := directory.BuildIndexes(); err != nil {
		logger.Fatal("index settings failed", zap.Error(err))
	}
	if err := directory.SeedLocalities(localities); err != nil {
		logger.Fatal("seed failed", zap.Error(err))
	}

	logger.Info("localities seeded", zap.Int("count", len(localities)))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
