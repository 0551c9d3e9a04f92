package main

import (
	"bbpApi/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFavoriteLink(t *testing.T) {
	setupTestApp(t)
	topic := &models.Topic{ID: 42, Slug: "hello-world"}

	link, err := FavoriteLink(topic, 3, "s", true)
	require.NoError(t, err)

	nonce := CreateNonce("toggle-favorite_42", 3, "s")
	assert.Equal(t,
		`<span id="favorite-42" class="is-favorite"><a href="`+testSiteUrl+`/forums/topic/hello-world/?action=bbp_favorite_remove&amp;topic_id=42&amp;_wpnonce=`+nonce+`" class="favorite-toggle" data-topic="42">Unfavorite</a></span>`,
		link)

	link, err = FavoriteLink(topic, 3, "s", false)
	require.NoError(t, err)
	assert.Contains(t, link, `<span id="favorite-42"><a href=`)
	assert.Contains(t, link, "action=bbp_favorite_add")
	assert.Contains(t, link, ">Favorite</a>")
}

func TestSubscriptionLinks(t *testing.T) {
	setupTestApp(t)

	topicLink, err := TopicSubscriptionLink(&models.Topic{ID: 5, Slug: "t"}, 1, "", false)
	require.NoError(t, err)
	assert.Contains(t, topicLink, `<span id="subscribe-5"><a href=`)
	assert.Contains(t, topicLink, "action=bbp_subscribe&amp;topic_id=5")
	assert.Contains(t, topicLink, `class="subscription-toggle" data-topic="5">Subscribe</a>`)

	forumLink, err := ForumSubscriptionLink(&models.Forum{ID: 9, Slug: "general"}, 1, "", true)
	require.NoError(t, err)
	assert.Contains(t, forumLink, `<span id="subscribe-9" class="is-subscribed">`)
	assert.Contains(t, forumLink, testSiteUrl+"/forums/forum/general/?action=bbp_unsubscribe&amp;forum_id=9")
	assert.Contains(t, forumLink, `data-forum="9">Unsubscribe</a>`)
}

func TestPermalinks(t *testing.T) {
	setupTestApp(t)
	ServiceConfig.Theme.SiteUrl = "https://example.test/"
	ServiceConfig.Theme.ForumRoot = "/community/"

	assert.Equal(t, "https://example.test/community/forum/general/", ForumPermalink(&models.Forum{Slug: "general"}))
	assert.Equal(t, "https://example.test/community/topic/hi/", TopicPermalink(&models.Topic{Slug: "hi"}))
	assert.Equal(t, "https://example.test/community/users/alice/", UserProfileUrl(&models.User{Login: "alice"}))
	assert.Equal(t, "https://example.test/api/v1/ajax", AjaxUrl())
	assert.Equal(t,
		"https://secure.gravatar.com/avatar/55502f40dc8b7c769880b10874abc9d0?s=14&d=mm&r=g",
		AvatarUrl(" Test@Example.com ", 14))
}
