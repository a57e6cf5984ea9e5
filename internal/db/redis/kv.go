package redis

import (
	"context"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/usersearch/internal/db"
)

// Get returns the value at key, or db.ErrKeyNotFound.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.do(ctx, s.b().Get().Key(key).Build()).AsBytes()
	switch {
	case rueidis.IsRedisNil(err):
		return nil, db.ErrKeyNotFound
	case err != nil:
		return nil, opError(db.OpGet, err)
	}
	return data, nil
}

// Set stores value at key with no expiry.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	return s.set(ctx, key, value, 0)
}

// SetWithTTL stores value at key for ttl. A non-positive ttl stores it
// without expiry.
func (s *Store) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.set(ctx, key, value, ttl)
}

func (s *Store) set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	// builders share their argument slice; build exactly once
	set := s.b().Set().Key(key).Value(rueidis.BinaryString(value))
	if ttl > 0 {
		return opError(db.OpSet, s.do(ctx, set.Ex(ttl).Build()).Error())
	}
	return opError(db.OpSet, s.do(ctx, set.Build()).Error())
}

// IncrBy adds val to the counter at key, creating it at zero.
func (s *Store) IncrBy(ctx context.Context, key string, val int64) error {
	cmd := s.b().Incrby().Key(key).Increment(val).Build()
	return opError(db.OpIncrBy, s.do(ctx, cmd).Error())
}

// Expire sets a TTL on key. With nx the TTL is only set when the key has
// none, so a budget window keeps its first deadline.
func (s *Store) Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error {
	expire := s.b().Expire().Key(key).Seconds(int64(ttl / time.Second))
	if nx {
		return opError(db.OpExpire, s.do(ctx, expire.Nx().Build()).Error())
	}
	return opError(db.OpExpire, s.do(ctx, expire.Build()).Error())
}

// opError tags a command failure with its Redis operation. nil stays nil.
func opError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &db.Error{Op: op, Err: err}
}
