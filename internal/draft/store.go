package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store persists one draft blob per wizard session. Absence of a blob is not
// an error: Load returns (nil, nil) and callers fall back to defaults.
//
// All writes go through Apply, which runs load-mutate-save under a per-session
// lock. Two sections saving in overlapping requests can therefore never lose
// each other's keys.
type Store interface {
	Load(ctx context.Context, sessionID string) (*State, error)
	Apply(ctx context.Context, sessionID string, action Action) (*State, error)
	Delete(ctx context.Context, sessionID string) error
}

const keyPrefix = "wizard:draft:"

const lockShards = 64

// RedisStore keeps drafts in Redis with a TTL, the server-side analog of the
// browser tab's session lifetime.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration

	locks [lockShards]sync.Mutex
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    ttl,
	}
}

// sessionLock shards sessions across a fixed set of mutexes, so the store
// carries no per-session state for drafts that only ever expire by TTL.
// Sessions that land on the same shard over-serialize, never under-serialize.
func (s *RedisStore) sessionLock(sessionID string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(sessionID))
	return &s.locks[h.Sum32()%lockShards]
}

func (s *RedisStore) Load(ctx context.Context, sessionID string) (*State, error) {
	data, err := s.client.Get(ctx, keyPrefix+sessionID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("draft: load session %s: %w", sessionID, err)
	}
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("draft: decode session %s: %w", sessionID, err)
	}
	return &st, nil
}

func (s *RedisStore) Apply(ctx context.Context, sessionID string, action Action) (*State, error) {
	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	st, err := s.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if st == nil {
		st = &State{}
	}
	action.apply(st)

	data, err := json.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("draft: encode session %s: %w", sessionID, err)
	}
	if err := s.client.Set(ctx, keyPrefix+sessionID, data, s.ttl).Err(); err != nil {
		return nil, fmt.Errorf("draft: save session %s: %w", sessionID, err)
	}
	return st, nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, keyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("draft: delete session %s: %w", sessionID, err)
	}
	return nil
}
