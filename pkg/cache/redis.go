package cache

import (
	"context"
	"fmt"
	"time"

	"cinema-reservation/pkg/utils"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only if it is still held by the same owner.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// SeatLocker holds short-lived per-seat locks while a reservation is being
// submitted. It narrows, but does not close, the double-booking window.
type SeatLocker struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSeatLocker(cfg utils.RedisConfig) *SeatLocker {
	ttl := cfg.SeatLockTTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &SeatLocker{
		client: redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		ttl:    ttl,
	}
}

// Ping checks the connection.
func (l *SeatLocker) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}

// Acquire takes the lock for seatKey in sessionID on behalf of owner.
func (l *SeatLocker) Acquire(ctx context.Context, sessionID uuid.UUID, seatKey, owner string) (bool, error) {
	ok, err := l.client.SetNX(ctx, seatLockKey(sessionID, seatKey), owner, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire seat lock %s/%s: %w", sessionID, seatKey, err)
	}
	return ok, nil
}

// Release drops the lock if owner still holds it.
func (l *SeatLocker) Release(ctx context.Context, sessionID uuid.UUID, seatKey, owner string) error {
	if err := releaseScript.Run(ctx, l.client, []string{seatLockKey(sessionID, seatKey)}, owner).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("release seat lock %s/%s: %w", sessionID, seatKey, err)
	}
	return nil
}

func (l *SeatLocker) Close() error {
	return l.client.Close()
}

func seatLockKey(sessionID uuid.UUID, seatKey string) string {
	return fmt.Sprintf("lock:session:%s:seat:%s", sessionID, seatKey)
}
