package auth

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	throttleLimit  = 10
	throttleWindow = 15 * time.Minute
)

// Throttle tracks failed login attempts per email in Redis. The key
// expires with the window, so a lockout clears itself without any
// background job.
type Throttle struct {
	client *redis.Client
}

// NewThrottle constructs a Throttle.
func NewThrottle(client *redis.Client) *Throttle {
	return &Throttle{client: client}
}

// Locked reports whether the email has exceeded the failure limit
// inside the current window.
func (t *Throttle) Locked(ctx context.Context, email string) (bool, error) {
	count, err := t.client.Get(ctx, t.key(email)).Int()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, err
	}
	return count >= throttleLimit, nil
}

// RecordFailure increments the failure counter, starting the window on
// the first failure.
func (t *Throttle) RecordFailure(ctx context.Context, email string) error {
	key := t.key(email)
	count, err := t.client.Incr(ctx, key).Result()
	if err != nil {
		return err
	}
	if count == 1 {
		return t.client.Expire(ctx, key, throttleWindow).Err()
	}
	return nil
}

// Reset clears the failure counter after a successful login.
func (t *Throttle) Reset(ctx context.Context, email string) error {
	return t.client.Del(ctx, t.key(email)).Err()
}

func (t *Throttle) key(email string) string {
	return "login_attempts:" + strings.ToLower(strings.TrimSpace(email))
}
