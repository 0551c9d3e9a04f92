package main

import (
	"bbpApi/models"
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"github.com/RediSearch/redisearch-go/redisearch"
	"github.com/bytedance/sonic"
	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"net/http"
	"strconv"
	"strings"
)

const (
	rebuildStatusKey    = "rebuild_search_index"
	topicDocumentPrefix = "topic:"
	rebuildBatchSize    = 1000
	maxSearchResults    = 100
)

var ErrAlreadyRebuilding = fiber.Map{"error": "Search index rebuild is already running. Please wait."}
var ErrSearchUnavailable = fiber.Map{"error": "Search is not available."}

func adminRoutes(router fiber.Router) {
	router.Post("/admin/rebuild_search_index", EnforceAdminSecret, RebuildSearchIndex)
	router.Get("/admin/rebuild_search_index/status", EnforceAdminSecret, RebuildSearchIndexStatus)
	router.Get("/topics/search", SearchTopics)
}

func EnforceAdminSecret(c *fiber.Ctx) error {
	authorizationHeader := c.Get("Authorization")

	if !strings.HasPrefix(authorizationHeader, "Bearer ") {
		return c.Status(http.StatusUnauthorized).
			JSON(ErrMissingBearerToken)
	}

	authorizationHeader = strings.TrimPrefix(authorizationHeader, "Bearer ")

	if ServiceConfig.AdminSecret == "" ||
		subtle.ConstantTimeCompare([]byte(authorizationHeader), []byte(ServiceConfig.AdminSecret)) != 1 {
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{})
	}

	return c.Next()
}

func searchDocumentKey(id uint) string {
	return fmt.Sprintf("%s%d", topicDocumentPrefix, id)
}

func IndexTopic(t *models.Topic) error {
	res, err := ReJsonClient.JSONSet(searchDocumentKey(t.ID), "$", t.GetLimitedTopic())

	if err != nil {
		return err
	}

	if s, ok := res.(string); !ok || s != "OK" {
		logger.Warn("unexpected search index reply", zap.Uint("topic_id", t.ID), zap.Any("reply", res))
	}

	return nil
}

func RebuildSearchIndex(c *fiber.Ctx) error {
	if RedisConnection == nil {
		return c.Status(http.StatusServiceUnavailable).JSON(ErrSearchUnavailable)
	}

	ctx := c.UserContext()

	started, err := RedisConnection.SetNX(ctx, rebuildStatusKey, 0, 0).Result()

	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(ErrInternalServerError)
	}

	if !started {
		return c.Status(http.StatusBadRequest).JSON(ErrAlreadyRebuilding)
	}

	// DD drops the indexed documents along with the index.
	RedisConnection.Do(ctx, "FT.DROPINDEX", topicSearchIndex, "DD")
	err = RedisConnection.Do(ctx, "FT.CREATE", topicSearchIndex, "ON", "JSON",
		"PREFIX", "1", topicDocumentPrefix,
		"SCHEMA", "$.title", "AS", "title", "TEXT").Err()

	if err != nil {
		logger.Error("create search index", zap.Error(err))
		RedisConnection.Del(ctx, rebuildStatusKey)
		return c.Status(http.StatusInternalServerError).JSON(ErrInternalServerError)
	}

	go rebuildTopicIndex()

	return c.Status(http.StatusOK).JSON(fiber.Map{})
}

func rebuildTopicIndex() {
	ctx := context.Background()
	var topics []models.Topic

	tx := DatabaseConnection.FindInBatches(&topics, rebuildBatchSize, func(tx *gorm.DB, batch int) error {
		for i := range topics {
			if err := IndexTopic(&topics[i]); err != nil {
				logger.Warn("index topic", zap.Uint("topic_id", topics[i].ID), zap.Error(err))
			}
		}

		logger.Info("processed search index batch", zap.Int("batch", batch))
		RedisConnection.Set(ctx, rebuildStatusKey, batch, 0)

		return nil
	})

	if tx.Error != nil {
		logger.Error("rebuild search index", zap.Error(tx.Error))
	} else {
		logger.Info("finished rebuilding search index")
	}

	RedisConnection.Del(ctx, rebuildStatusKey)
}

func RebuildSearchIndexStatus(c *fiber.Ctx) error {
	if RedisConnection == nil {
		return c.Status(http.StatusServiceUnavailable).JSON(ErrSearchUnavailable)
	}

	batch, err := RedisConnection.Get(c.UserContext(), rebuildStatusKey).Result()

	if errors.Is(err, redis.Nil) {
		return c.Status(http.StatusNoContent).JSON(fiber.Map{})
	} else if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(ErrInternalServerError)
	}

	batchInt, err := strconv.Atoi(batch)

	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(ErrInternalServerError)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{"batch": batchInt})
}

func SearchTopics(c *fiber.Ctx) error {
	if RediSearchClient == nil {
		return c.Status(http.StatusServiceUnavailable).JSON(ErrSearchUnavailable)
	}

	q := strings.TrimSpace(c.Query("q"))

	if q == "" {
		return c.Status(http.StatusOK).JSON([]models.LimitedTopic{})
	}

	docs, total, err := RediSearchClient.Search(redisearch.NewQuery(q).Limit(0, maxSearchResults))

	if err != nil {
		logger.Warn("search topics", zap.String("q", q), zap.Error(err))
		return c.Status(http.StatusInternalServerError).JSON(ErrInternalServerError)
	}

	if total > len(docs) {
		total = len(docs)
	}

	l := make([]models.LimitedTopic, 0, total)

	for i := 0; i < total; i++ {
		var t models.LimitedTopic
		raw, ok := docs[i].Properties["$"].(string)

		if !ok {
			return c.Status(http.StatusInternalServerError).JSON(ErrInternalServerError)
		}

		if err := sonic.Unmarshal([]byte(raw), &t); err != nil {
			return c.Status(http.StatusInternalServerError).JSON(ErrInternalServerError)
		}

		l = append(l, t)
	}

	return c.Status(http.StatusOK).JSON(l)
}
