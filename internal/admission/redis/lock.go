package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Lock serializes concurrent verify attempts on the same pass id. The lock
// is best-effort: the conditional checked-in update in the user directory
// is the authoritative guard, this just keeps duplicate scans from doing
// redundant storage work.
type Lock struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewLock(client *redis.Client, ttl time.Duration) *Lock {
	return &Lock{Client: client, TTL: ttl}
}

func key(passID string) string {
	return "pass_lock:" + passID
}

// LockPass acquires the per-pass lock. Returns false when another scan of
// the same pass currently holds it.
func (l *Lock) LockPass(ctx context.Context, passID, token string) (bool, error) {
	return l.Client.SetNX(ctx, key(passID), token, l.TTL).Result()
}

// UnlockPass releases the lock if we still hold it. A lock that expired and
// was taken by someone else is left alone.
func (l *Lock) UnlockPass(ctx context.Context, passID, token string) error {
	k := key(passID)
	val, err := l.Client.Get(ctx, k).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return err
	}
	if val == token {
		if _, err := l.Client.Del(ctx, k).Result(); err != nil {
			return fmt.Errorf("failed to release pass lock: %w", err)
		}
	}
	return nil
}
