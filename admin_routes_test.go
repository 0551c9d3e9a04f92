package main

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnforceAdminSecret(t *testing.T) {
	app := setupTestApp(t)

	resp, _ := doRequest(t, app, http.MethodPost, "/api/v1/admin/rebuild_search_index", nil, "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// An unset secret never matches.
	resp, _ = doRequest(t, app, http.MethodPost, "/api/v1/admin/rebuild_search_index", nil, "", "anything")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	ServiceConfig.AdminSecret = "admin-secret"

	resp, _ = doRequest(t, app, http.MethodPost, "/api/v1/admin/rebuild_search_index", nil, "", "wrong")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = doRequest(t, app, http.MethodPost, "/api/v1/admin/rebuild_search_index", nil, "", "admin-secret")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp, _ = doRequest(t, app, http.MethodGet, "/api/v1/admin/rebuild_search_index/status", nil, "", "admin-secret")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestSearchTopics_Unavailable(t *testing.T) {
	app := setupTestApp(t)

	resp, body := doRequest(t, app, http.MethodGet, "/api/v1/topics/search?q=hello", nil, "", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, body, "Search is not available.")
}

func TestSearchDocumentKey(t *testing.T) {
	assert.Equal(t, "topic:42", searchDocumentKey(42))
}
