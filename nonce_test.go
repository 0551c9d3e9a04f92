package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyNonce_TickWindow(t *testing.T) {
	setupTestApp(t)

	minted := time.Unix(43200*1000+1, 0)
	nonceNow = func() time.Time { return minted }

	nonce := CreateNonce("toggle-favorite_42", 7, "session")
	require.Len(t, nonce, 10)

	assert.Equal(t, 1, VerifyNonce(nonce, "toggle-favorite_42", 7, "session"))

	nonceNow = func() time.Time { return minted.Add(12 * time.Hour) }
	assert.Equal(t, 2, VerifyNonce(nonce, "toggle-favorite_42", 7, "session"))

	nonceNow = func() time.Time { return minted.Add(24 * time.Hour) }
	assert.Equal(t, 0, VerifyNonce(nonce, "toggle-favorite_42", 7, "session"))
}

func TestVerifyNonce_Scope(t *testing.T) {
	setupTestApp(t)

	nonce := CreateNonce("toggle-favorite_42", 7, "session")

	assert.Equal(t, 0, VerifyNonce("", "toggle-favorite_42", 7, "session"))
	assert.Equal(t, 0, VerifyNonce(nonce, "toggle-favorite_43", 7, "session"))
	assert.Equal(t, 0, VerifyNonce(nonce, "toggle-subscription_42", 7, "session"))
	assert.Equal(t, 0, VerifyNonce(nonce, "toggle-favorite_42", 8, "session"))
	assert.Equal(t, 0, VerifyNonce(nonce, "toggle-favorite_42", 7, "other"))

	ServiceConfig.Nonce.Secret = "rotated"
	assert.Equal(t, 0, VerifyNonce(nonce, "toggle-favorite_42", 7, "session"))
}

func TestToggleNonceAction(t *testing.T) {
	assert.Equal(t, "toggle-favorite_42", ToggleNonceAction(kindFavorite, 42))
	assert.Equal(t, "toggle-subscription_7", ToggleNonceAction(kindSubscription, 7))
}
