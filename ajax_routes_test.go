package main

import (
	"bbpApi/models"
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func toggleForm(id uint, nonce string) url.Values {
	return url.Values{
		"id":    {strconv.FormatUint(uint64(id), 10)},
		"nonce": {nonce},
	}
}

func TestAjaxToggle_FeatureDisabled(t *testing.T) {
	app := setupTestApp(t)
	ServiceConfig.Features.Favorites = false
	ServiceConfig.Features.Subscriptions = false

	u := loginAs(t, createUser(t, "alice"))
	createTopic(t, 42, 1, u.User.ID, "Hello World", time.Now())

	cases := []struct {
		action string
		token  string
		form   url.Values
		msg    string
	}{
		{"favorite", u.Token, toggleForm(42, CreateNonce("toggle-favorite_42", u.User.ID, u.Session)), "Favorites are no longer active."},
		{"favorite", "", url.Values{}, "Favorites are no longer active."},
		{"subscription", u.Token, toggleForm(999, "bogus"), "Subscriptions are no longer active."},
		{"forum_subscription", "", toggleForm(1, ""), "Subscriptions are no longer active."},
	}

	for _, tc := range cases {
		t.Run(tc.action, func(t *testing.T) {
			status, r := postAjax(t, app, tc.action, tc.form, tc.token)

			assert.Equal(t, http.StatusOK, status)
			assert.False(t, r.Success)
			assert.Equal(t, CodeFeatureDisabled, r.Code)
			assert.Equal(t, tc.msg, r.Data)
		})
	}

	is, err := IsUserFavorite(u.User.ID, 42)
	require.NoError(t, err)
	assert.False(t, is)
}

func TestAjaxToggle_NotAuthenticated(t *testing.T) {
	app := setupTestApp(t)
	createTopic(t, 42, 1, 0, "Hello World", time.Now())

	for _, action := range []string{"favorite", "subscription", "forum_subscription"} {
		_, r := postAjax(t, app, action, toggleForm(42, CreateNonce("toggle-favorite_42", 0, "")), "")

		assert.Equal(t, CodeNotAuthenticated, r.Code, action)
		assert.False(t, r.Success, action)
	}

	_, r := postAjax(t, app, "favorite", toggleForm(42, ""), "Bearer.not.a.token")
	assert.Equal(t, CodeNotAuthenticated, r.Code)
}

func TestAjaxToggle_DeletedUserIsNotAuthenticated(t *testing.T) {
	app := setupTestApp(t)
	u := loginAs(t, createUser(t, "alice"))
	createTopic(t, 42, 1, 0, "Hello World", time.Now())

	require.NoError(t, DatabaseConnection.Delete(u.User).Error)

	_, r := postAjax(t, app, "favorite", toggleForm(42, CreateNonce("toggle-favorite_42", u.User.ID, u.Session)), u.Token)
	assert.Equal(t, CodeNotAuthenticated, r.Code)
	assert.Equal(t, "Please login to make this topic a favorite.", r.Data)
}

func TestAjaxToggle_NotAuthorized(t *testing.T) {
	app := setupTestApp(t)
	u := loginAs(t, createUser(t, "mallory", models.RoleBlocked))
	createTopic(t, 42, 1, 0, "Hello World", time.Now())

	_, r := postAjax(t, app, "favorite", toggleForm(42, CreateNonce("toggle-favorite_42", u.User.ID, u.Session)), u.Token)

	assert.Equal(t, CodeNotAuthorized, r.Code)
	assert.Equal(t, "You do not have permission to do this.", r.Data)
}

func TestAjaxToggle_EntityNotFound(t *testing.T) {
	app := setupTestApp(t)
	u := loginAs(t, createUser(t, "alice"))
	createForum(t, 7, 0, "General")
	createTopic(t, 42, 7, u.User.ID, "Hello World", time.Now())

	cases := []struct {
		name   string
		action string
		id     string
		msg    string
	}{
		{"missing topic", "favorite", "43", "The topic could not be found."},
		{"non numeric id", "favorite", "abc", "The topic could not be found."},
		{"zero id", "subscription", "0", "The topic could not be found."},
		{"forum id is a topic", "forum_subscription", "42", "The forum could not be found."},
		{"topic id is a forum", "subscription", "7", "The topic could not be found."},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			form := url.Values{"id": {tc.id}, "nonce": {"whatever"}}
			_, r := postAjax(t, app, tc.action, form, u.Token)

			assert.Equal(t, CodeEntityNotFound, r.Code)
			assert.Equal(t, tc.msg, r.Data)
		})
	}
}

func TestAjaxToggle_InvalidNonce(t *testing.T) {
	app := setupTestApp(t)
	alice := loginAs(t, createUser(t, "alice"))
	bob := loginAs(t, createUser(t, "bob"))
	createTopic(t, 42, 1, alice.User.ID, "Hello World", time.Now())

	cases := []struct {
		name string
		form url.Values
	}{
		{"missing", url.Values{"id": {"42"}}},
		{"empty", toggleForm(42, "")},
		{"garbage", toggleForm(42, "0123456789")},
		{"other kind", toggleForm(42, CreateNonce("toggle-subscription_42", alice.User.ID, alice.Session))},
		{"other entity", toggleForm(42, CreateNonce("toggle-favorite_41", alice.User.ID, alice.Session))},
		{"other user", toggleForm(42, CreateNonce("toggle-favorite_42", bob.User.ID, bob.Session))},
		{"other session", toggleForm(42, CreateNonce("toggle-favorite_42", alice.User.ID, "stale-session"))},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, r := postAjax(t, app, "favorite", tc.form, alice.Token)

			assert.Equal(t, CodeInvalidNonce, r.Code)
			assert.Equal(t, "Are you sure you meant to do that?", r.Data)
		})
	}

	is, err := IsUserFavorite(alice.User.ID, 42)
	require.NoError(t, err)
	assert.False(t, is)
}

func TestAjaxToggle_FavoriteEndToEnd(t *testing.T) {
	app := setupTestApp(t)
	u := loginAs(t, createUser(t, "alice"))
	createTopic(t, 42, 1, u.User.ID, "Hello World", time.Now())

	form := toggleForm(42, CreateNonce("toggle-favorite_42", u.User.ID, u.Session))

	status, r := postAjax(t, app, "favorite", form, u.Token)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, r.Success)
	assert.Equal(t, CodeSuccess, r.Code)
	assert.Contains(t, r.Data, `<span id="favorite-42" class="is-favorite">`)
	assert.Contains(t, r.Data, `class="favorite-toggle" data-topic="42">Unfavorite</a>`)
	assert.Contains(t, r.Data, "action=bbp_favorite_remove")

	is, err := IsUserFavorite(u.User.ID, 42)
	require.NoError(t, err)
	assert.True(t, is)

	_, r = postAjax(t, app, "favorite", form, u.Token)
	assert.True(t, r.Success)
	assert.Equal(t, CodeSuccess, r.Code)
	assert.Contains(t, r.Data, `<span id="favorite-42">`)
	assert.Contains(t, r.Data, ">Favorite</a>")
	assert.Contains(t, r.Data, "action=bbp_favorite_add")

	is, err = IsUserFavorite(u.User.ID, 42)
	require.NoError(t, err)
	assert.False(t, is)
}

func TestAjaxToggle_AlreadyFavorite(t *testing.T) {
	app := setupTestApp(t)
	u := loginAs(t, createUser(t, "alice"))
	createTopic(t, 42, 1, u.User.ID, "Hello World", time.Now())
	require.NoError(t, AddUserFavorite(u.User.ID, 42))

	_, r := postAjax(t, app, "favorite", toggleForm(42, CreateNonce("toggle-favorite_42", u.User.ID, u.Session)), u.Token)

	assert.True(t, r.Success)
	assert.Equal(t, CodeSuccess, r.Code)
	assert.Contains(t, r.Data, ">Favorite</a>")
	assert.NotContains(t, r.Data, "is-favorite")

	is, err := IsUserFavorite(u.User.ID, 42)
	require.NoError(t, err)
	assert.False(t, is)
}

func TestAjaxToggle_TopicSubscriptionRoundTrip(t *testing.T) {
	app := setupTestApp(t)
	u := loginAs(t, createUser(t, "alice"))
	createTopic(t, 42, 1, u.User.ID, "Hello World", time.Now())

	form := toggleForm(42, CreateNonce("toggle-subscription_42", u.User.ID, u.Session))

	_, r := postAjax(t, app, "subscription", form, u.Token)
	require.Equal(t, CodeSuccess, r.Code)
	assert.Contains(t, r.Data, `<span id="subscribe-42" class="is-subscribed">`)
	assert.Contains(t, r.Data, `data-topic="42">Unsubscribe</a>`)

	is, err := IsUserSubscribed(u.User.ID, models.SubscriptionTopic, 42)
	require.NoError(t, err)
	assert.True(t, is)

	_, r = postAjax(t, app, "subscription", form, u.Token)
	require.Equal(t, CodeSuccess, r.Code)
	assert.Contains(t, r.Data, ">Subscribe</a>")

	is, err = IsUserSubscribed(u.User.ID, models.SubscriptionTopic, 42)
	require.NoError(t, err)
	assert.False(t, is)
}

func TestAjaxToggle_ForumSubscription(t *testing.T) {
	app := setupTestApp(t)
	u := loginAs(t, createUser(t, "alice"))
	createForum(t, 7, 0, "General")

	_, r := postAjax(t, app, "forum_subscription", toggleForm(7, CreateNonce("toggle-subscription_7", u.User.ID, u.Session)), u.Token)

	require.Equal(t, CodeSuccess, r.Code)
	assert.Contains(t, r.Data, `data-forum="7">Unsubscribe</a>`)
	assert.Contains(t, r.Data, "forum_id=7")

	forumSub, err := IsUserSubscribed(u.User.ID, models.SubscriptionForum, 7)
	require.NoError(t, err)
	assert.True(t, forumSub)

	topicSub, err := IsUserSubscribed(u.User.ID, models.SubscriptionTopic, 7)
	require.NoError(t, err)
	assert.False(t, topicSub)
}

func TestAjaxToggle_LockHeld(t *testing.T) {
	app := setupTestApp(t)
	u := loginAs(t, createUser(t, "alice"))
	createTopic(t, 42, 1, u.User.ID, "Hello World", time.Now())

	release, ok, err := toggleLocks.Acquire(context.Background(), ToggleLockKey("favorite", u.User.ID, 42))
	require.NoError(t, err)
	require.True(t, ok)

	form := toggleForm(42, CreateNonce("toggle-favorite_42", u.User.ID, u.Session))

	_, r := postAjax(t, app, "favorite", form, u.Token)
	assert.Equal(t, CodeToggleFailed, r.Code)
	assert.Equal(t, "The request was unsuccessful. Please try again.", r.Data)

	release()

	_, r = postAjax(t, app, "favorite", form, u.Token)
	assert.Equal(t, CodeSuccess, r.Code)
}

func TestAjaxToggle_ActionFormField(t *testing.T) {
	app := setupTestApp(t)
	u := loginAs(t, createUser(t, "alice"))
	createTopic(t, 42, 1, u.User.ID, "Hello World", time.Now())

	form := toggleForm(42, CreateNonce("toggle-favorite_42", u.User.ID, u.Session))
	form.Set("action", "bbp_ajax_favorite")

	resp, body := doRequest(t, app, http.MethodPost, "/api/v1/ajax", strings.NewReader(form.Encode()),
		"application/x-www-form-urlencoded", u.Token)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"code":200`)
}

func TestAjaxToggle_UnknownAction(t *testing.T) {
	app := setupTestApp(t)

	status, r := postAjax(t, app, "like", url.Values{}, "")

	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, r.Success)
	assert.Equal(t, "Unknown action.", r.Data)
}

func TestAjaxToggle_StorageFailure(t *testing.T) {
	app := setupTestApp(t)
	u := loginAs(t, createUser(t, "alice"))
	createTopic(t, 42, 1, u.User.ID, "Hello World", time.Now())

	require.NoError(t, DatabaseConnection.Migrator().DropTable(&models.Favorite{}))

	status, r := postAjax(t, app, "favorite", toggleForm(42, CreateNonce("toggle-favorite_42", u.User.ID, u.Session)), u.Token)
	require.Equal(t, http.StatusOK, status)
	assert.False(t, r.Success)
	assert.Equal(t, CodeToggleFailed, r.Code)
	assert.Equal(t, "The request was unsuccessful. Please try again.", r.Data)
}

func TestAjaxToggle_EntityLookupFailure(t *testing.T) {
	app := setupTestApp(t)
	u := loginAs(t, createUser(t, "alice"))

	require.NoError(t, DatabaseConnection.Migrator().DropTable(&models.Topic{}))

	status, r := postAjax(t, app, "subscription", toggleForm(42, CreateNonce("toggle-subscription_42", u.User.ID, u.Session)), u.Token)
	require.Equal(t, http.StatusOK, status)
	assert.False(t, r.Success)
	assert.Equal(t, CodeToggleFailed, r.Code)
	assert.Equal(t, "The request was unsuccessful. Please try again.", r.Data)
}

func TestAjaxToggle_IgnoresQueryString(t *testing.T) {
	app := setupTestApp(t)
	u := loginAs(t, createUser(t, "alice"))
	createTopic(t, 42, 1, u.User.ID, "Hello World", time.Now())
	createTopic(t, 43, 1, u.User.ID, "Other Topic", time.Now())

	form := toggleForm(42, CreateNonce("toggle-favorite_42", u.User.ID, u.Session))

	_, r := postAjax(t, app, "favorite?id=43&nonce=0000000000", form, u.Token)
	assert.Equal(t, CodeSuccess, r.Code)

	is, err := IsUserFavorite(u.User.ID, 42)
	require.NoError(t, err)
	assert.True(t, is)

	is, err = IsUserFavorite(u.User.ID, 43)
	require.NoError(t, err)
	assert.False(t, is)

	// Nothing in the body means nothing to toggle, whatever the URL says.
	_, r = postAjax(t, app, "favorite?id=42&nonce="+form.Get("nonce"), url.Values{}, u.Token)
	assert.Equal(t, CodeEntityNotFound, r.Code)
}

func TestAjaxToggle_LeadingDigitsId(t *testing.T) {
	app := setupTestApp(t)
	u := loginAs(t, createUser(t, "alice"))
	createTopic(t, 42, 1, u.User.ID, "Hello World", time.Now())

	form := toggleForm(42, CreateNonce("toggle-favorite_42", u.User.ID, u.Session))
	form.Set("id", "42abc")

	_, r := postAjax(t, app, "favorite", form, u.Token)
	assert.Equal(t, CodeSuccess, r.Code)
}

func TestLeadingUint(t *testing.T) {
	cases := map[string]uint{
		"42":     42,
		" 42 ":   42,
		"+42":    42,
		"42abc":  42,
		"42.0":   42,
		"abc":    0,
		"-42":    0,
		"":       0,
	}

	for in, want := range cases {
		assert.Equal(t, want, leadingUint(in), in)
	}

	assert.Equal(t, uint(0), leadingUint("999999999999999999999999"))
}
