package main

import (
	"bbpApi/models"
	"fmt"
	"html/template"
	"strings"
)

// The ids, classes and data attributes below are what the topic and forum
// scripts look up when they swap the link after a toggle.
var toggleLinkTemplates = template.Must(template.New("links").Parse(`
{{define "favorite"}}<span id="favorite-{{.Id}}"{{if .Active}} class="is-favorite"{{end}}><a href="{{.Url}}" class="favorite-toggle" data-topic="{{.Id}}">{{.Text}}</a></span>{{end}}
{{define "subscription"}}<span id="subscribe-{{.Id}}"{{if .Active}} class="is-subscribed"{{end}}><a href="{{.Url}}" class="subscription-toggle" data-topic="{{.Id}}">{{.Text}}</a></span>{{end}}
{{define "forum_subscription"}}<span id="subscribe-{{.Id}}"{{if .Active}} class="is-subscribed"{{end}}><a href="{{.Url}}" class="subscription-toggle" data-forum="{{.Id}}">{{.Text}}</a></span>{{end}}
`))

type toggleLinkView struct {
	Id     uint
	Active bool
	Url    string
	Text   string
}

func renderToggleLink(name string, view toggleLinkView) (string, error) {
	var b strings.Builder

	if err := toggleLinkTemplates.ExecuteTemplate(&b, name, view); err != nil {
		return "", err
	}

	return b.String(), nil
}

func toggleUrl(permalink string, action string, idParam string, id uint, nonce string) string {
	return fmt.Sprintf("%s?action=%s&%s=%d&_wpnonce=%s", permalink, action, idParam, id, nonce)
}

// FavoriteLink renders the favorite toggle for the state the topic is now in.
func FavoriteLink(topic *models.Topic, userId uint, session string, favorited bool) (string, error) {
	action, text := "bbp_favorite_add", "Favorite"
	if favorited {
		action, text = "bbp_favorite_remove", "Unfavorite"
	}

	nonce := CreateNonce(ToggleNonceAction(kindFavorite, topic.ID), userId, session)

	return renderToggleLink("favorite", toggleLinkView{
		Id:     topic.ID,
		Active: favorited,
		Url:    toggleUrl(TopicPermalink(topic), action, "topic_id", topic.ID, nonce),
		Text:   text,
	})
}

func TopicSubscriptionLink(topic *models.Topic, userId uint, session string, subscribed bool) (string, error) {
	action, text := subscriptionAction(subscribed)
	nonce := CreateNonce(ToggleNonceAction(kindSubscription, topic.ID), userId, session)

	return renderToggleLink("subscription", toggleLinkView{
		Id:     topic.ID,
		Active: subscribed,
		Url:    toggleUrl(TopicPermalink(topic), action, "topic_id", topic.ID, nonce),
		Text:   text,
	})
}

func ForumSubscriptionLink(forum *models.Forum, userId uint, session string, subscribed bool) (string, error) {
	action, text := subscriptionAction(subscribed)
	nonce := CreateNonce(ToggleNonceAction(kindSubscription, forum.ID), userId, session)

	return renderToggleLink("forum_subscription", toggleLinkView{
		Id:     forum.ID,
		Active: subscribed,
		Url:    toggleUrl(ForumPermalink(forum), action, "forum_id", forum.ID, nonce),
		Text:   text,
	})
}

func subscriptionAction(subscribed bool) (string, string) {
	if subscribed {
		return "bbp_unsubscribe", "Unsubscribe"
	}

	return "bbp_subscribe", "Subscribe"
}
