package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/address-cleanser/app/config"
	"github.com/address-cleanser/app/controllers"
	"github.com/address-cleanser/app/services"
	"github.com/address-cleanser/internal/batch"
	"github.com/address-cleanser/internal/pipeline"
	"github.com/address-cleanser/internal/reference"
	"github.com/address-cleanser/internal/search"
	"github.com/address-cleanser/internal/tagger"
	"github.com/address-cleanser/routes"
)

func main() {
	loadConfig()

	logger := initLogger()
	defer logger.Sync()

	logger.Info("starting address cleansing service")

	mongoDB := initMongoDB(logger)
	defer func() {
		if err := mongoDB.Client().Disconnect(context.Background()); err != nil {
			logger.Error("mongodb disconnect failed", zap.Error(err))
		}
	}()

	tables := reference.Default()

	directory, err := search.NewLocalityDirectory(search.SearchConfig{
		Host:       viper.GetString("meilisearch.url"),
		APIKey:     viper.GetString("meilisearch.master_key"),
		IndexName:  "localities",
		MaxResults: 20,
	}, logger)
	if err != nil {
		logger.Warn("locality directory unavailable", zap.Error(err))
		directory = nil
	}

	tg := tagger.FromConfig(config.C.UseLibpostal, tables)
	cleanser := pipeline.New(tg, tables, logger)

	cacheService := initCache(mongoDB, tables.Revision, logger)

	batchOpts := batch.Options{
		ChunkSize: config.C.Batch.ChunkSize,
		Workers:   config.C.Batch.Workers,
	}
	addressService := services.NewAddressService(cleanser, cacheService, tables, batchOpts, logger)
	adminService := services.NewAdminService(mongoDB, directory, cacheService, tables, logger)

	addressController := controllers.NewAddressController(addressService, logger)
	adminController := controllers.NewAdminController(adminService, logger)

	router := gin.New()
	routes.SetupAllRoutes(router, addressController, adminController)

	port := getEnv("APP_PORT", "8080")
	logger.Info("address cleansing service listening", zap.String("port", port))

	if err := router.Run(":" + port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

// initCache builds the hybrid Redis+MongoDB cache, degrading to the in-memory
// cache when either backend is unreachable.
func initCache(mongoDB *mongo.Database, tableRevision string, logger *zap.Logger) services.ICacheService {
	if !config.C.Cache.Enabled {
		return nil
	}

	redisURL := getEnv("REDIS_URL", "redis://localhost:6379")
	redisCache, err := services.NewRedisCacheService(redisURL, logger)
	if err != nil {
		logger.Warn("redis unavailable, using in-memory cache", zap.Error(err))
		return services.NewCacheService(config.CacheTTL(), tableRevision)
	}

	l1Size := config.C.Cache.L1Size
	mongoCache, err := services.NewMongoCacheService(mongoDB, l1Size, tableRevision, logger)
	if err != nil {
		logger.Warn("mongodb cache unavailable, using redis only", zap.Error(err))
		return redisCache
	}

	if err := mongoCache.WarmUp(context.Background(), l1Size/2); err != nil {
		logger.Warn("cache warmup failed", zap.Error(err))
	}

	return services.NewHybridCacheService(redisCache, mongoCache, logger)
}

// loadConfig reads the yaml config and applies env overrides.
func loadConfig() {
	viper.SetConfigName("app")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	viper.SetDefault("app.port", "8080")
	viper.SetDefault("app.env", "development")
	viper.SetDefault("meilisearch.url", "http://meili:7700")
	viper.SetDefault("meilisearch.master_key", "")
	viper.SetDefault("mongo.url", "mongodb://localhost:27017/address_cleanser")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("warning: cannot read config file: %v", err)
	}
	if path := viper.ConfigFileUsed(); path != "" {
		if err := config.Load(path); err != nil {
			log.Printf("warning: cannot load pipeline config: %v", err)
		}
	}
}

func initLogger() *zap.Logger {
	env := getEnv("APP_ENV", "development")

	var cfg zap.Config
	if env == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}

	logger, err := cfg.Build()
	if err != nil {
		log.Fatal("cannot initialize logger:", err)
	}
	return logger
}

func initMongoDB(logger *zap.Logger) *mongo.Database {
	mongoURL := getEnv("MONGO_URL", "mongodb://localhost:27017/address_cleanser")

	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(mongoURL))
	if err != nil {
		logger.Fatal("mongodb connect failed", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.Ping(ctx, nil); err != nil {
		logger.Fatal("mongodb ping failed", zap.Error(err))
	}

	dbName := "address_cleanser"
	clientOpts := options.Client().ApplyURI(mongoURL)
	if clientOpts.Auth != nil && clientOpts.Auth.AuthSource != "" {
		dbName = clientOpts.Auth.AuthSource
	}

	db := client.Database(dbName)
	logger.Info("connected to mongodb", zap.String("database", dbName))
	return db
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
