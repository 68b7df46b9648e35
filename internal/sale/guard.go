package sale

import (
	"context"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// Guard serialises submissions per cart so a double-pressed finalise button
// cannot post the same cart twice. The lock expires on its own if the process
// dies mid-flight.
type Guard struct {
	R   *redis.Client
	TTL time.Duration
}

func (g Guard) ttl() time.Duration {
	if g.TTL <= 0 {
		return 30 * time.Second
	}
	return g.TTL
}

// Acquire takes the in-flight lock for cartID. It reports false when another
// submission already holds it. A nil Redis client grants every acquisition.
func (g Guard) Acquire(ctx context.Context, cartID string) (bool, error) {
	if g.R == nil {
		return true, nil
	}
	return g.R.SetNX(ctx, "pos:submit:"+cartID, "locked", g.ttl()).Result()
}

// Release drops the lock so the cart can be finalised again after a failure.
func (g Guard) Release(ctx context.Context, cartID string) {
	if g.R == nil {
		return
	}
	_ = g.R.Del(ctx, "pos:submit:"+cartID).Err()
}
