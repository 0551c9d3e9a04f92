package main

import (
	"bbpApi/models"
	"fmt"
	"github.com/RediSearch/redisearch-go/redisearch"
	goredis "github.com/go-redis/redis/v8"
	"github.com/nitishm/go-rejson/v4"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var DatabaseConnection *gorm.DB
var RedisConnection *goredis.Client
var ReJsonClient *rejson.Handler
var RediSearchClient *redisearch.Client

const topicSearchIndex = "topicSearch"

func SetupDatabaseConnection() error {
	databaseConfig := ServiceConfig.Database

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable TimeZone=Etc/UTC",
		databaseConfig.Host,
		databaseConfig.User,
		databaseConfig.Password,
		databaseConfig.Database,
		databaseConfig.Port)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})

	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	sqlDb, err := db.DB()

	if err != nil {
		return fmt.Errorf("database handle: %w", err)
	}

	sqlDb.SetMaxIdleConns(databaseConfig.MaxIdleConnections)
	sqlDb.SetMaxOpenConns(databaseConfig.MaxOpenConnections)

	MigrateDatabase(db)

	DatabaseConnection = db
	return nil
}

// MigrateDatabase logs tables that fail to migrate and carries on with the rest.
func MigrateDatabase(db *gorm.DB) {
	tables := []interface{}{
		&models.User{},
		&models.Forum{},
		&models.Topic{},
		&models.Favorite{},
		&models.Subscription{},
		&models.Option{},
	}

	for _, table := range tables {
		if err := db.AutoMigrate(table); err != nil {
			logger.Error("auto migrate failed", zap.String("table", fmt.Sprintf("%T", table)), zap.Error(err))
		}
	}
}

func SetupRedisConnection() {
	redisConfig := ServiceConfig.Redis

	if redisConfig.Host == "" {
		logger.Info("redis disabled, using in-process toggle locks")
		toggleLocks = newMemoryLocker()
		return
	}

	host := fmt.Sprintf("%s:%d", redisConfig.Host, redisConfig.Port)

	rh := rejson.NewReJSONHandler()
	client := goredis.NewClient(&goredis.Options{Addr: host})
	rs := redisearch.NewClient(host, topicSearchIndex)

	rh.SetGoRedisClient(client)

	RedisConnection = client
	ReJsonClient = rh
	RediSearchClient = rs
	toggleLocks = &redisLocker{client: client}
}
