package main

import (
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"github.com/zeebo/blake3"
	"math"
	"time"
)

var nonceNow = time.Now

// NonceTick splits time into half-lifetime windows; a nonce stays valid for the
// window it was minted in and the one after it.
func NonceTick() int64 {
	half := float64(ServiceConfig.Nonce.Lifetime) / 2
	if half <= 0 {
		half = 43200
	}

	return int64(math.Ceil(float64(nonceNow().Unix()) / half))
}

func nonceHash(tick int64, action string, userId uint, session string) string {
	key := blake3.Sum256([]byte(ServiceConfig.Nonce.Secret))
	h, err := blake3.NewKeyed(key[:])
	if err != nil {
		panic(err)
	}

	_, _ = fmt.Fprintf(h, "%d|%s|%d|%s", tick, action, userId, session)
	sum := hex.EncodeToString(h.Sum(nil))

	return sum[len(sum)-12 : len(sum)-2]
}

func CreateNonce(action string, userId uint, session string) string {
	return nonceHash(NonceTick(), action, userId, session)
}

// VerifyNonce returns 1 when the nonce was minted in the current tick, 2 when
// it was minted in the previous one and 0 when it is invalid.
func VerifyNonce(nonce string, action string, userId uint, session string) int {
	if nonce == "" {
		return 0
	}

	tick := NonceTick()

	if subtle.ConstantTimeCompare([]byte(nonceHash(tick, action, userId, session)), []byte(nonce)) == 1 {
		return 1
	}

	if subtle.ConstantTimeCompare([]byte(nonceHash(tick-1, action, userId, session)), []byte(nonce)) == 1 {
		return 2
	}

	return 0
}

func ToggleNonceAction(kind string, id uint) string {
	return fmt.Sprintf("toggle-%s_%d", kind, id)
}
