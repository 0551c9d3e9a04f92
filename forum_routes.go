package main

import (
	"bbpApi/models"
	"fmt"
	"github.com/dustin/go-humanize"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"net/http"
	"time"
)

const (
	defaultLatestTopics = 5
	maxTopicListLimit   = 50
	defaultUserTopics   = 3
	avatarSize          = 14
)

func forumRoutes(router fiber.Router) {
	router.Get("/forums/:id/subforums", ListSubforums)
	router.Get("/forums/:id/last-poster", GetForumLastPoster)
	router.Get("/topics/latest", GetLatestTopics)
	router.Get("/topics/:id/last-poster", GetTopicLastPoster)
	router.Get("/users/:id/topics", GetUserTopicsStarted)
}

func freshness(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	return humanize.Time(t)
}

func limitQuery(c *fiber.Ctx, fallback int) int {
	limit := c.QueryInt("limit", fallback)

	if limit <= 0 {
		return fallback
	}

	if limit > maxTopicListLimit {
		return maxTopicListLimit
	}

	return limit
}

// loadAuthors fetches the users behind ids in one query.
func loadAuthors(ids []uint) (map[uint]*authorView, error) {
	authors := make(map[uint]*authorView, len(ids))

	if len(ids) == 0 {
		return authors, nil
	}

	var users []models.User
	if tx := DatabaseConnection.Where("id IN ?", ids).Find(&users); tx.Error != nil {
		return nil, tx.Error
	}

	for i := range users {
		u := &users[i]
		authors[u.ID] = &authorView{
			Name:      u.DisplayName,
			Url:       UserProfileUrl(u),
			AvatarUrl: AvatarUrl(u.Email, avatarSize),
		}
	}

	return authors, nil
}

// ForumLastActiveTopic returns the most recently active topic of a forum, or
// nil when the forum has no topics.
func ForumLastActiveTopic(forumId uint) (*models.Topic, error) {
	var topics []models.Topic

	tx := DatabaseConnection.Where("forum_id = ?", forumId).
		Order("last_active_time DESC").
		Limit(1).
		Find(&topics)

	if tx.Error != nil || len(topics) == 0 {
		return nil, tx.Error
	}

	return &topics[0], nil
}

// LastReplyTitle matches the title a reply to the topic is given.
func LastReplyTitle(t *models.Topic) string {
	if t.LastReplyID != 0 {
		return "Reply To: " + t.Title
	}

	return t.Title
}

func forumLastPosterView(forumId uint) (*lastPosterView, error) {
	topic, err := ForumLastActiveTopic(forumId)

	if err != nil || topic == nil {
		return nil, err
	}

	authorId := topic.LastActiveAuthorID()
	authors, err := loadAuthors([]uint{authorId})

	if err != nil {
		return nil, err
	}

	return &lastPosterView{
		Title:     LastReplyTitle(topic),
		Permalink: TopicPermalink(topic),
		Author:    authors[authorId],
		Freshness: freshness(topic.LastActiveTime),
	}, nil
}

// ForumLastPosterBlock renders the last topic, author and freshness of a
// forum. Forums without topics render an empty string.
func ForumLastPosterBlock(forumId uint) (string, error) {
	view, err := forumLastPosterView(forumId)

	if err != nil || view == nil {
		return "", err
	}

	return renderForumTemplate("last_poster", view)
}

func TopicLastPosterBlock(t *models.Topic) (string, error) {
	authorId := t.LastActiveAuthorID()
	authors, err := loadAuthors([]uint{authorId})

	if err != nil {
		return "", err
	}

	return renderForumTemplate("topic_last_poster", lastPosterView{
		Author:    authors[authorId],
		Freshness: freshness(t.LastActiveTime),
	})
}

func forumCounts(forumId uint) (int64, int64, error) {
	var topics int64
	var replies struct{ Total int64 }

	if tx := DatabaseConnection.Model(&models.Topic{}).Where("forum_id = ?", forumId).Count(&topics); tx.Error != nil {
		return 0, 0, tx.Error
	}

	tx := DatabaseConnection.Model(&models.Topic{}).
		Select("COALESCE(SUM(reply_count), 0) AS total").
		Where("forum_id = ?", forumId).
		Scan(&replies)

	return topics, replies.Total, tx.Error
}

// SubforumList renders the subforums of parentId with alternating row classes.
// It returns an empty string when there are none.
func SubforumList(parentId uint) (string, error) {
	var subforums []models.Forum

	tx := DatabaseConnection.Where("parent_id = ?", parentId).Order("menu_order ASC, id ASC").Find(&subforums)

	if tx.Error != nil {
		return "", tx.Error
	}

	if len(subforums) == 0 {
		return "", nil
	}

	rows := make([]forumRowView, len(subforums))

	for i := range subforums {
		f := &subforums[i]

		rowClass := "even-forum-row"
		if (i+1)%2 == 1 {
			rowClass = "odd-forum-row"
		}

		counts := ""
		if !f.IsCategory {
			topics, replies, err := forumCounts(f.ID)
			if err != nil {
				return "", err
			}

			counts = fmt.Sprintf(" (%d, %d)", topics, replies)
		}

		lastPoster, err := forumLastPosterView(f.ID)
		if err != nil {
			return "", err
		}

		rows[i] = forumRowView{
			RowClass:    rowClass,
			Title:       f.Title,
			Permalink:   ForumPermalink(f),
			Description: f.Content,
			Counts:      counts,
			LastPoster:  lastPoster,
		}
	}

	return renderForumTemplate("forum_list", rows)
}

// TopicLoop renders the "Latest Discussions" loop for topics.
func TopicLoop(topics []models.Topic) (string, error) {
	ids := make([]uint, 0, len(topics))
	for i := range topics {
		ids = append(ids, topics[i].LastActiveAuthorID())
	}

	authors, err := loadAuthors(ids)

	if err != nil {
		return "", err
	}

	rows := make([]topicRowView, len(topics))

	for i := range topics {
		t := &topics[i]

		replies := t.PostCount()
		if ServiceConfig.Features.ShowLeadTopic {
			replies = t.ReplyCount
		}

		rows[i] = topicRowView{
			Title:      t.Title,
			Permalink:  TopicPermalink(t),
			ReplyCount: replies,
			LastAuthor: authors[t.LastActiveAuthorID()],
		}
	}

	return renderForumTemplate("latest_topics", rows)
}

func LatestTopics(limit int) ([]models.Topic, error) {
	var topics []models.Topic
	tx := DatabaseConnection.Order("last_active_time DESC, id DESC").Limit(limit).Find(&topics)

	return topics, tx.Error
}

// UserTopicsStarted lists the newest topics authored by userId.
func UserTopicsStarted(userId uint, limit int) ([]models.Topic, error) {
	var topics []models.Topic
	tx := DatabaseConnection.Where("author_id = ?", userId).Order("created_at DESC, id DESC").Limit(limit).Find(&topics)

	return topics, tx.Error
}

func sendHtml(c *fiber.Ctx, html string) error {
	c.Type("html")
	return c.Status(http.StatusOK).SendString(html)
}

func ListSubforums(c *fiber.Ctx) error {
	forum, err := forumParam(c)

	if forum == nil {
		return err
	}

	html, err := SubforumList(forum.ID)

	if err != nil {
		logger.Error("render subforum list", zap.Uint("forum_id", forum.ID), zap.Error(err))
		return c.Status(http.StatusInternalServerError).JSON(ErrInternalServerError)
	}

	if html == "" {
		return c.SendStatus(http.StatusNoContent)
	}

	return sendHtml(c, html)
}

func GetForumLastPoster(c *fiber.Ctx) error {
	forum, err := forumParam(c)

	if forum == nil {
		return err
	}

	html, err := ForumLastPosterBlock(forum.ID)

	if err != nil {
		logger.Error("render forum last poster", zap.Uint("forum_id", forum.ID), zap.Error(err))
		return c.Status(http.StatusInternalServerError).JSON(ErrInternalServerError)
	}

	return sendHtml(c, html)
}

func GetTopicLastPoster(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")

	if err != nil || id <= 0 {
		return c.Status(http.StatusNotFound).JSON(ErrTopicNotFound)
	}

	topic, err := GetTopic(uint(id))

	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(ErrInternalServerError)
	}

	if topic == nil {
		return c.Status(http.StatusNotFound).JSON(ErrTopicNotFound)
	}

	html, err := TopicLastPosterBlock(topic)

	if err != nil {
		logger.Error("render topic last poster", zap.Uint("topic_id", topic.ID), zap.Error(err))
		return c.Status(http.StatusInternalServerError).JSON(ErrInternalServerError)
	}

	return sendHtml(c, html)
}

func GetLatestTopics(c *fiber.Ctx) error {
	topics, err := LatestTopics(limitQuery(c, defaultLatestTopics))

	if err != nil {
		logger.Error("load latest topics", zap.Error(err))
		return c.Status(http.StatusInternalServerError).JSON(ErrInternalServerError)
	}

	html, err := TopicLoop(topics)

	if err != nil {
		logger.Error("render latest topics", zap.Error(err))
		return c.Status(http.StatusInternalServerError).JSON(ErrInternalServerError)
	}

	return sendHtml(c, html)
}

func GetUserTopicsStarted(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")

	if err != nil || id <= 0 {
		return c.Status(http.StatusNotFound).JSON(ErrUserNotFound)
	}

	user, err := GetUser(uint(id))

	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(ErrInternalServerError)
	}

	if user == nil {
		return c.Status(http.StatusNotFound).JSON(ErrUserNotFound)
	}

	topics, err := UserTopicsStarted(user.ID, limitQuery(c, defaultUserTopics))

	if err != nil {
		logger.Error("load user topics", zap.Uint("user_id", user.ID), zap.Error(err))
		return c.Status(http.StatusInternalServerError).JSON(ErrInternalServerError)
	}

	html, err := TopicLoop(topics)

	if err != nil {
		logger.Error("render user topics", zap.Uint("user_id", user.ID), zap.Error(err))
		return c.Status(http.StatusInternalServerError).JSON(ErrInternalServerError)
	}

	return sendHtml(c, html)
}

// forumParam resolves the :id forum. A nil forum means the response has
// already been written and the returned error should be passed on.
func forumParam(c *fiber.Ctx) (*models.Forum, error) {
	id, err := c.ParamsInt("id")

	if err != nil || id <= 0 {
		return nil, c.Status(http.StatusNotFound).JSON(ErrForumNotFound)
	}

	forum, err := GetForum(uint(id))

	if err != nil {
		logger.Error("load forum", zap.Int("forum_id", id), zap.Error(err))
		return nil, c.Status(http.StatusInternalServerError).JSON(ErrInternalServerError)
	}

	if forum == nil {
		return nil, c.Status(http.StatusNotFound).JSON(ErrForumNotFound)
	}

	return forum, nil
}
