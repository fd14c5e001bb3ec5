package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Session ids are indexed in sorted sets scored by the key's expiry (+inf without a ttl).
const (
	redisSessionsIndex     = "sessions:index"
	redisSessionsCompleted = "sessions:completed"
)

// RedisSessionStore keeps sessions as JSON values. Update is a WATCH/MULTI compare-and-set
// on the stored version. A zero ttl keeps sessions forever.
type RedisSessionStore struct {
	rdb *redis.Client
	ttl time.Duration
	now func() time.Time
}

func NewRedisSessionStore(rdb *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{rdb: rdb, ttl: ttl, now: time.Now}
}

func (s *RedisSessionStore) key(id string) string {
	return fmt.Sprintf("session:%s", id)
}

func expiryScore(now time.Time, ttl time.Duration) float64 {
	if ttl <= 0 {
		return math.Inf(1)
	}
	return float64(now.Add(ttl).Unix())
}

// Create stores the session and indexes it in one transaction; an existing key fails the call.
func (s *RedisSessionStore) Create(ctx context.Context, sess Session) error {
	b, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	key := s.key(sess.ID)

	err = s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("session %s already exists", sess.ID)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, b, s.ttl)
			pipe.ZAdd(ctx, redisSessionsIndex, redis.Z{Score: expiryScore(s.now(), s.ttl), Member: sess.ID})
			return nil
		})
		return err
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		return fmt.Errorf("session %s already exists", sess.ID)
	}
	return err
}

func (s *RedisSessionStore) Get(ctx context.Context, id string) (Session, error) {
	return s.get(ctx, s.rdb, id)
}

type redisGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (s *RedisSessionStore) get(ctx context.Context, c redisGetter, id string) (Session, error) {
	val, err := c.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Session{}, ErrSessionNotFound
	}
	if err != nil {
		return Session{}, err
	}

	var sess Session
	if err := json.Unmarshal(val, &sess); err != nil {
		return Session{}, fmt.Errorf("decode session %s: %w", id, err)
	}
	return sess, nil
}

func (s *RedisSessionStore) Update(ctx context.Context, sess Session, prevVersion int64) error {
	b, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	key := s.key(sess.ID)

	err = s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := s.get(ctx, tx, sess.ID)
		if err != nil {
			return err
		}
		if cur.Version != prevVersion {
			return ErrConcurrentUpdate
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			z := redis.Z{Score: expiryScore(s.now(), s.ttl), Member: sess.ID}
			pipe.Set(ctx, key, b, s.ttl)
			pipe.ZAdd(ctx, redisSessionsIndex, z)
			if sess.State.Terminal() {
				pipe.ZAdd(ctx, redisSessionsCompleted, z)
			}
			return nil
		})
		return err
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		return ErrConcurrentUpdate
	}
	return err
}

// Counts prunes index entries whose keys have expired, then reports what is left.
func (s *RedisSessionStore) Counts(ctx context.Context) (total, completed int, err error) {
	cutoff := "(" + strconv.FormatInt(s.now().Unix(), 10)
	var totalCmd, completedCmd *redis.IntCmd
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, redisSessionsIndex, "-inf", cutoff)
		pipe.ZRemRangeByScore(ctx, redisSessionsCompleted, "-inf", cutoff)
		totalCmd = pipe.ZCard(ctx, redisSessionsIndex)
		completedCmd = pipe.ZCard(ctx, redisSessionsCompleted)
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return int(totalCmd.Val()), int(completedCmd.Val()), nil
}
