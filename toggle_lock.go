package main

import (
	"context"
	"fmt"
	goredis "github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"sync"
	"time"
)

const toggleLockTTL = 5 * time.Second

// ToggleLocker serializes toggles of one (kind, user, entity) pair so the
// read-then-flip in the relationship store cannot interleave.
type ToggleLocker interface {
	// Acquire returns a release func, or ok=false when the pair is already
	// being toggled.
	Acquire(ctx context.Context, key string) (release func(), ok bool, err error)
}

var toggleLocks ToggleLocker = newMemoryLocker()

func ToggleLockKey(kind string, userId uint, id uint) string {
	return fmt.Sprintf("toggle:%s:%d:%d", kind, userId, id)
}

type memoryLocker struct {
	mutex sync.Mutex
	held  map[string]struct{}
}

func newMemoryLocker() *memoryLocker {
	return &memoryLocker{held: make(map[string]struct{})}
}

func (m *memoryLocker) Acquire(_ context.Context, key string) (func(), bool, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, busy := m.held[key]; busy {
		return nil, false, nil
	}

	m.held[key] = struct{}{}

	return func() {
		m.mutex.Lock()
		delete(m.held, key)
		m.mutex.Unlock()
	}, true, nil
}

// releaseScript deletes the key only while it still holds our token, so a
// lock that expired and was taken by another request is left alone.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type redisLocker struct {
	client *goredis.Client
}

func (r *redisLocker) Acquire(ctx context.Context, key string) (func(), bool, error) {
	token := uuid.NewString()

	ok, err := r.client.SetNX(ctx, key, token, toggleLockTTL).Result()
	if err != nil || !ok {
		return nil, false, err
	}

	return func() {
		releaseRedisLock(context.Background(), r.client, key, token)
	}, true, nil
}

func releaseRedisLock(ctx context.Context, client *goredis.Client, key string, token string) {
	if err := releaseScript.Run(ctx, client, []string{key}, token).Err(); err != nil {
		logger.Warn("release toggle lock", zap.String("key", key), zap.Error(err))
	}
}
