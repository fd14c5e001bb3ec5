package puzzle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"example.com/wordlink/internal/apperr"
	"github.com/redis/go-redis/v9"
)

var ErrQuotaExhausted = apperr.New(apperr.TooManyRequests, "quota_exhausted",
	"daily puzzle generation limit reached; it resets at midnight UTC")

type QuotaStatus struct {
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	ResetsAt  time.Time `json:"resetsAt"`
}

// Quota bounds how many puzzles may be generated per UTC day.
type Quota interface {
	Take(ctx context.Context) (QuotaStatus, error)
	Refund(ctx context.Context) error
	Status(ctx context.Context) (QuotaStatus, error)
}

// NextReset returns the UTC midnight following t.
func NextReset(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, time.UTC)
}

// MemoryQuota keeps the counter in process. The counter is zeroed the first time it is
// touched at or after ResetsAt.
type MemoryQuota struct {
	mu       sync.Mutex
	limit    int
	used     int
	resetsAt time.Time
	now      func() time.Time
}

func NewMemoryQuota(limit int, now func() time.Time) *MemoryQuota {
	if now == nil {
		now = time.Now
	}
	return &MemoryQuota{limit: limit, now: now, resetsAt: NextReset(now())}
}

func (q *MemoryQuota) rolloverLocked() {
	now := q.now()
	if !now.Before(q.resetsAt) {
		q.used = 0
		q.resetsAt = NextReset(now)
	}
}

func (q *MemoryQuota) statusLocked() QuotaStatus {
	return QuotaStatus{Limit: q.limit, Remaining: max(q.limit-q.used, 0), ResetsAt: q.resetsAt}
}

func (q *MemoryQuota) Take(_ context.Context) (QuotaStatus, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.rolloverLocked()
	if q.used >= q.limit {
		return q.statusLocked(), ErrQuotaExhausted
	}
	q.used++
	return q.statusLocked(), nil
}

func (q *MemoryQuota) Refund(_ context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.rolloverLocked()
	if q.used > 0 {
		q.used--
	}
	return nil
}

func (q *MemoryQuota) Status(_ context.Context) (QuotaStatus, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.rolloverLocked()
	return q.statusLocked(), nil
}

// RedisQuota shares the counter between instances. One key per UTC day, expiring at the
// next reset.
type RedisQuota struct {
	rdb   *redis.Client
	limit int
	now   func() time.Time
}

func NewRedisQuota(rdb *redis.Client, limit int) *RedisQuota {
	return &RedisQuota{rdb: rdb, limit: limit, now: time.Now}
}

func (q *RedisQuota) key(t time.Time) string {
	return fmt.Sprintf("quota:generate:%s", t.UTC().Format(time.DateOnly))
}

func (q *RedisQuota) Take(ctx context.Context) (QuotaStatus, error) {
	now := q.now()
	key, reset := q.key(now), NextReset(now)

	pipe := q.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireAt(ctx, key, reset)
	if _, err := pipe.Exec(ctx); err != nil {
		return QuotaStatus{}, fmt.Errorf("quota incr: %w", err)
	}

	used := int(incr.Val())
	if used > q.limit {
		if err := q.rdb.Decr(ctx, key).Err(); err != nil {
			return QuotaStatus{}, fmt.Errorf("quota decr: %w", err)
		}
		return QuotaStatus{Limit: q.limit, Remaining: 0, ResetsAt: reset}, ErrQuotaExhausted
	}
	return QuotaStatus{Limit: q.limit, Remaining: q.limit - used, ResetsAt: reset}, nil
}

func (q *RedisQuota) Refund(ctx context.Context) error {
	key := q.key(q.now())
	n, err := q.rdb.Decr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("quota refund: %w", err)
	}
	if n < 0 {
		return q.rdb.Set(ctx, key, 0, redis.KeepTTL).Err()
	}
	return nil
}

func (q *RedisQuota) Status(ctx context.Context) (QuotaStatus, error) {
	now := q.now()
	used, err := q.rdb.Get(ctx, q.key(now)).Int()
	if errors.Is(err, redis.Nil) {
		used = 0
	} else if err != nil {
		return QuotaStatus{}, fmt.Errorf("quota status: %w", err)
	}
	return QuotaStatus{Limit: q.limit, Remaining: max(q.limit-used, 0), ResetsAt: NextReset(now)}, nil
}
