package lock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	customError "github.com/pawnshop/pawn-engine/pkg/errors"
)

// releaseScript deletes the lock key only if it still holds our token, so an
// expired lock re-acquired by another caller is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

const retryInterval = 50 * time.Millisecond

// Locker provides per-loan mutual exclusion on top of Redis. Every mutating
// loan operation acquires the loan's lock before reading the ledger and holds
// it through commit.
type Locker struct {
	client         *redis.Client
	ttl            time.Duration
	acquireTimeout time.Duration
}

func NewLocker(client *redis.Client, ttl, acquireTimeout time.Duration) *Locker {
	return &Locker{
		client:         client,
		ttl:            ttl,
		acquireTimeout: acquireTimeout,
	}
}

// Handle is a held lock. Release it on all exit paths.
type Handle struct {
	locker *Locker
	key    string
	token  string
}

// Acquire takes the lock for a key, retrying until the acquire timeout.
// Contention past the timeout surfaces ConcurrentModification rather than
// blocking indefinitely.
func (l *Locker) Acquire(ctx context.Context, key string) (*Handle, error) {
	token := uuid.NewString()
	deadline := time.Now().Add(l.acquireTimeout)

	for {
		ok, err := l.client.SetNX(ctx, lockKey(key), token, l.ttl).Result()
		if err != nil {
			return nil, customError.WrapDatabaseError(err)
		}
		if ok {
			return &Handle{locker: l, key: lockKey(key), token: token}, nil
		}

		if time.Now().After(deadline) {
			return nil, customError.WrapConcurrentModification(key)
		}

		select {
		case <-ctx.Done():
			return nil, customError.WrapConcurrentModification(key)
		case <-time.After(retryInterval):
		}
	}
}

// Release frees the lock if we still own it. Safe to call after TTL expiry.
func (h *Handle) Release(ctx context.Context) error {
	return releaseScript.Run(ctx, h.locker.client, []string{h.key}, h.token).Err()
}

func lockKey(key string) string {
	return "pawn:loan:lock:" + key
}
