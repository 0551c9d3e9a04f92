package main

import (
	"bbpApi/models"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"net/http"
)

var ErrFavoritesInactive = fiber.Map{"error": "Favorites are no longer active."}
var ErrSubscriptionsInactive = fiber.Map{"error": "Subscriptions are no longer active."}

func favoriteRoutes(router fiber.Router) {
	router.Get("/users/me/favorites", JwtRequired, GetUserFavoritesList)
	router.Get("/users/me/subscriptions", JwtRequired, GetUserSubscriptionsList)
}

func topicSummaries(topics []models.Topic) []TopicSummary {
	summaries := make([]TopicSummary, len(topics))

	for i := range topics {
		summaries[i] = TopicSummary{
			TopicId:   topics[i].ID,
			Title:     topics[i].Title,
			Permalink: TopicPermalink(&topics[i]),
		}
	}

	return summaries
}

func GetUserFavoritesList(c *fiber.Ctx) error {
	if !ServiceConfig.Features.Favorites {
		return c.Status(http.StatusNotFound).JSON(ErrFavoritesInactive)
	}

	userId := CurrentUserId(c)
	topics, err := GetUserFavorites(userId)

	if err != nil {
		logger.Error("load favorites", zap.Uint("user_id", userId), zap.Error(err))
		return c.Status(http.StatusInternalServerError).JSON(ErrInternalServerError)
	}

	return c.Status(http.StatusOK).JSON(RelationshipListResponse{
		Topics: topicSummaries(topics),
	})
}

func GetUserSubscriptionsList(c *fiber.Ctx) error {
	if !ServiceConfig.Features.Subscriptions {
		return c.Status(http.StatusNotFound).JSON(ErrSubscriptionsInactive)
	}

	userId := CurrentUserId(c)
	topics, err := GetUserTopicSubscriptions(userId)

	if err != nil {
		logger.Error("load topic subscriptions", zap.Uint("user_id", userId), zap.Error(err))
		return c.Status(http.StatusInternalServerError).JSON(ErrInternalServerError)
	}

	forums, err := GetUserForumSubscriptions(userId)

	if err != nil {
		logger.Error("load forum subscriptions", zap.Uint("user_id", userId), zap.Error(err))
		return c.Status(http.StatusInternalServerError).JSON(ErrInternalServerError)
	}

	forumSummaries := make([]ForumSummary, len(forums))
	for i := range forums {
		forumSummaries[i] = ForumSummary{
			ForumId:   forums[i].ID,
			Title:     forums[i].Title,
			Permalink: ForumPermalink(&forums[i]),
		}
	}

	return c.Status(http.StatusOK).JSON(RelationshipListResponse{
		Topics: topicSummaries(topics),
		Forums: forumSummaries,
	})
}
