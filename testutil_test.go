package main

import (
	"bbpApi/models"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

const testSiteUrl = "https://example.test"

type testSession struct {
	User    *models.User
	Session string
	Token   string
}

func setupTestApp(t *testing.T) *fiber.App {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(t, err)

	sqlDb, err := db.DB()
	require.NoError(t, err)
	sqlDb.SetMaxOpenConns(1)

	MigrateDatabase(db)

	config := DefaultConfig()
	config.Jwt.Secret = "test-jwt-secret"
	config.Jwt.BindIp = false
	config.Nonce.Secret = "test-nonce-secret"
	config.Theme.SiteUrl = testSiteUrl

	ServiceConfig = config
	DatabaseConnection = db
	RedisConnection = nil
	ReJsonClient = nil
	RediSearchClient = nil
	toggleLocks = newMemoryLocker()
	logger = zap.NewNop()
	nonceNow = time.Now

	t.Cleanup(func() {
		_ = sqlDb.Close()
	})

	return newApp()
}

func createUser(t *testing.T, login string, roles ...string) *models.User {
	t.Helper()

	if len(roles) == 0 {
		roles = []string{models.RoleParticipant}
	}

	u := &models.User{
		Login:       login,
		DisplayName: strings.ToUpper(login[:1]) + login[1:],
		Email:       login + "@example.test",
		Roles:       pq.StringArray(roles),
	}
	require.NoError(t, DatabaseConnection.Create(u).Error)

	return u
}

func loginAs(t *testing.T, u *models.User) testSession {
	t.Helper()

	session := uuid.NewString()
	token, err := IssueToken(u.ID, session, "")
	require.NoError(t, err)

	return testSession{User: u, Session: session, Token: token}
}

func createForum(t *testing.T, id uint, parentId uint, title string) *models.Forum {
	t.Helper()

	f := &models.Forum{
		ID:       id,
		ParentID: parentId,
		Title:    title,
		Slug:     strings.ReplaceAll(strings.ToLower(title), " ", "-"),
		Content:  title + " description",
	}
	require.NoError(t, DatabaseConnection.Create(f).Error)

	return f
}

func createTopic(t *testing.T, id uint, forumId uint, authorId uint, title string, lastActive time.Time) *models.Topic {
	t.Helper()

	topic := &models.Topic{
		ID:             id,
		ForumID:        forumId,
		Title:          title,
		Slug:           strings.ReplaceAll(strings.ToLower(title), " ", "-"),
		AuthorID:       authorId,
		LastActiveTime: lastActive,
		CreatedAt:      lastActive,
	}
	require.NoError(t, DatabaseConnection.Create(topic).Error)

	return topic
}

func postAjax(t *testing.T, app *fiber.App, action string, form url.Values, token string) (int, AjaxResponse) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ajax/"+action, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var r AjaxResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&r))

	return resp.StatusCode, r
}

func doRequest(t *testing.T, app *fiber.App, method string, target string, body io.Reader, contentType string, token string) (*http.Response, string) {
	t.Helper()

	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, string(b)
}
