package main

import (
	"bbpApi/models"
	"errors"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	kindFavorite     = "favorite"
	kindSubscription = "subscription"
)

// Response codes of the toggle endpoint. The client script switches on these,
// not on the message text.
const (
	CodeSuccess          = 200
	CodeFeatureDisabled  = 300
	CodeNotAuthenticated = 301
	CodeNotAuthorized    = 302
	CodeEntityNotFound   = 303
	CodeInvalidNonce     = 304
	CodeToggleFailed     = 305
)

const (
	msgNoPermission  = "You do not have permission to do this."
	msgInvalidNonce  = "Are you sure you meant to do that?"
	msgToggleFailed  = "The request was unsuccessful. Please try again."
	msgUnknownAction = "Unknown action."
)

// ToggleTarget is a resolved forum or topic that a toggle endpoint flips a
// relationship against.
type ToggleTarget interface {
	EntityId() uint
	Toggle(userId uint) (bool, error)
	Link(userId uint, session string, state bool) (string, error)
}

type ToggleEndpoint struct {
	Action string
	// NonceKind names the nonce action, "toggle-<kind>_<id>".
	NonceKind       string
	Active          func() bool
	DisabledMessage string
	LoginMessage    string
	NotFoundMessage string
	// Lookup returns a nil target when the entity does not exist.
	Lookup func(id uint) (ToggleTarget, error)
}

// AjaxDispatcher maps an AJAX action name to its toggle endpoint.
type AjaxDispatcher map[string]*ToggleEndpoint

func NewAjaxDispatcher() AjaxDispatcher {
	d := AjaxDispatcher{}

	d.Register(&ToggleEndpoint{
		Action:          "favorite",
		NonceKind:       kindFavorite,
		Active:          func() bool { return ServiceConfig.Features.Favorites },
		DisabledMessage: "Favorites are no longer active.",
		LoginMessage:    "Please login to make this topic a favorite.",
		NotFoundMessage: "The topic could not be found.",
		Lookup:          lookupFavoriteTarget,
	})

	d.Register(&ToggleEndpoint{
		Action:          "subscription",
		NonceKind:       kindSubscription,
		Active:          func() bool { return ServiceConfig.Features.Subscriptions },
		DisabledMessage: "Subscriptions are no longer active.",
		LoginMessage:    "Please login to subscribe to this topic.",
		NotFoundMessage: "The topic could not be found.",
		Lookup:          lookupTopicSubscriptionTarget,
	})

	d.Register(&ToggleEndpoint{
		Action:          "forum_subscription",
		NonceKind:       kindSubscription,
		Active:          func() bool { return ServiceConfig.Features.Subscriptions },
		DisabledMessage: "Subscriptions are no longer active.",
		LoginMessage:    "Please login to subscribe to this forum.",
		NotFoundMessage: "The forum could not be found.",
		Lookup:          lookupForumSubscriptionTarget,
	})

	return d
}

func (d AjaxDispatcher) Register(e *ToggleEndpoint) {
	d[e.Action] = e
}

func ajaxRoutes(router fiber.Router, dispatcher AjaxDispatcher) {
	router.Post("/ajax", JwtOptional, dispatcher.Handle)
	router.Post("/ajax/:action", JwtOptional, dispatcher.Handle)
}

func (d AjaxDispatcher) Handle(c *fiber.Ctx) error {
	action := c.Params("action")
	if action == "" {
		action = postValue(c, "action")
	}

	endpoint, ok := d[strings.TrimPrefix(action, "bbp_ajax_")]

	if !ok {
		return c.Status(http.StatusBadRequest).JSON(AjaxResponse{Success: false, Data: msgUnknownAction})
	}

	start := time.Now()
	response := endpoint.Serve(c)
	observeToggle(endpoint.Action, response.Code, time.Since(start))

	return c.Status(http.StatusOK).JSON(response)
}

// postValue reads a field from the request body only; query string values
// never stand in for it.
func postValue(c *fiber.Ctx, key string) string {
	if v := c.Request().PostArgs().Peek(key); len(v) > 0 {
		return string(v)
	}

	if form, err := c.MultipartForm(); err == nil {
		if v := form.Value[key]; len(v) > 0 {
			return v[0]
		}
	}

	return ""
}

// leadingUint reads the leading decimal digits of s, so "42abc" and "42.0"
// both give 42. Anything without leading digits gives 0.
func leadingUint(s string) uint {
	s = strings.TrimPrefix(strings.TrimSpace(s), "+")

	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}

	n, err := strconv.ParseUint(s[:end], 10, 0)
	if err != nil {
		return 0
	}

	return uint(n)
}

func ajaxFailure(message string, code int) AjaxResponse {
	return AjaxResponse{Success: false, Data: message, Code: code}
}

// Serve runs the toggle checks in order and stops at the first failure.
func (e *ToggleEndpoint) Serve(c *fiber.Ctx) AjaxResponse {
	if !e.Active() {
		return ajaxFailure(e.DisabledMessage, CodeFeatureDisabled)
	}

	userId := CurrentUserId(c)
	user, err := GetUser(userId)

	if err != nil {
		logger.Error("load current user", zap.String("action", e.Action), zap.Uint("user_id", userId), zap.Error(err))
		return ajaxFailure(msgToggleFailed, CodeToggleFailed)
	}

	if user == nil {
		return ajaxFailure(e.LoginMessage, CodeNotAuthenticated)
	}

	if !CanEditUser(user, user.ID) {
		return ajaxFailure(msgNoPermission, CodeNotAuthorized)
	}

	id := leadingUint(postValue(c, "id"))

	var target ToggleTarget
	if id != 0 {
		target, err = e.Lookup(id)

		if err != nil {
			logger.Error("look up toggle entity", zap.String("action", e.Action), zap.Uint("id", id), zap.Error(err))
			return ajaxFailure(msgToggleFailed, CodeToggleFailed)
		}
	}

	if target == nil {
		return ajaxFailure(e.NotFoundMessage, CodeEntityNotFound)
	}

	session := CurrentSession(c)
	nonceAction := ToggleNonceAction(e.NonceKind, target.EntityId())

	if VerifyNonce(postValue(c, "nonce"), nonceAction, user.ID, session) == 0 {
		return ajaxFailure(msgInvalidNonce, CodeInvalidNonce)
	}

	release, locked, err := toggleLocks.Acquire(c.UserContext(), ToggleLockKey(e.Action, user.ID, target.EntityId()))

	if err != nil || !locked {
		logger.Warn("toggle lock unavailable", zap.String("action", e.Action), zap.Uint("user_id", user.ID),
			zap.Uint("id", target.EntityId()), zap.Error(err))
		return ajaxFailure(msgToggleFailed, CodeToggleFailed)
	}

	defer release()

	state, err := target.Toggle(user.ID)

	if err != nil {
		logger.Error("toggle relationship", zap.String("action", e.Action), zap.Uint("user_id", user.ID),
			zap.Uint("id", target.EntityId()), zap.Error(err))
		return ajaxFailure(msgToggleFailed, CodeToggleFailed)
	}

	link, err := target.Link(user.ID, session, state)

	if err != nil {
		logger.Error("render toggle link", zap.String("action", e.Action), zap.Error(err))
		return ajaxFailure(msgToggleFailed, CodeToggleFailed)
	}

	return AjaxResponse{Success: true, Data: link, Code: CodeSuccess}
}

func GetTopic(id uint) (*models.Topic, error) {
	var t models.Topic
	err := DatabaseConnection.First(&t, id).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	return &t, nil
}

func GetForum(id uint) (*models.Forum, error) {
	var f models.Forum
	err := DatabaseConnection.First(&f, id).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	return &f, nil
}

type favoriteTarget struct{ topic *models.Topic }

func lookupFavoriteTarget(id uint) (ToggleTarget, error) {
	t, err := GetTopic(id)
	if t == nil || err != nil {
		return nil, err
	}

	return favoriteTarget{topic: t}, nil
}

func (f favoriteTarget) EntityId() uint { return f.topic.ID }

func (f favoriteTarget) Toggle(userId uint) (bool, error) {
	return ToggleUserFavorite(userId, f.topic.ID)
}

func (f favoriteTarget) Link(userId uint, session string, state bool) (string, error) {
	return FavoriteLink(f.topic, userId, session, state)
}

type topicSubscriptionTarget struct{ topic *models.Topic }

func lookupTopicSubscriptionTarget(id uint) (ToggleTarget, error) {
	t, err := GetTopic(id)
	if t == nil || err != nil {
		return nil, err
	}

	return topicSubscriptionTarget{topic: t}, nil
}

func (s topicSubscriptionTarget) EntityId() uint { return s.topic.ID }

func (s topicSubscriptionTarget) Toggle(userId uint) (bool, error) {
	return ToggleUserSubscription(userId, models.SubscriptionTopic, s.topic.ID)
}

func (s topicSubscriptionTarget) Link(userId uint, session string, state bool) (string, error) {
	return TopicSubscriptionLink(s.topic, userId, session, state)
}

type forumSubscriptionTarget struct{ forum *models.Forum }

func lookupForumSubscriptionTarget(id uint) (ToggleTarget, error) {
	f, err := GetForum(id)
	if f == nil || err != nil {
		return nil, err
	}

	return forumSubscriptionTarget{forum: f}, nil
}

func (s forumSubscriptionTarget) EntityId() uint { return s.forum.ID }

func (s forumSubscriptionTarget) Toggle(userId uint) (bool, error) {
	return ToggleUserSubscription(userId, models.SubscriptionForum, s.forum.ID)
}

func (s forumSubscriptionTarget) Link(userId uint, session string, state bool) (string, error) {
	return ForumSubscriptionLink(s.forum, userId, session, state)
}
