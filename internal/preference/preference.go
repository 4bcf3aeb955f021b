// Package preference keeps each user's "current group" selection. It lives
// outside the core: services take the group id as an explicit argument and
// never consult this store.
package preference

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"gymcrew-backend/internal/domain"
	"gymcrew-backend/internal/logger"
	"gymcrew-backend/internal/repository"
)

type Store interface {
	// Get returns "" when the user has no selection.
	Get(ctx context.Context, userID string) (string, error)
	Set(ctx context.Context, userID, groupID string) error
	Clear(ctx context.Context, userID string) error
}

// current group key: gymcrew:current_group:<user>
func currentGroupKey(userID string) string { return "gymcrew:current_group:" + userID }

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
}

// NewRedisClient dials Redis and fails fast if it does not answer a ping.
func NewRedisClient(c RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     c.Addr,
		Password: c.Password,
		DB:       c.DB,
		PoolSize: c.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, err
	}
	return rdb, nil
}

// kv is the subset of *redis.Client the store needs.
type kv interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type RedisStore struct {
	rdb kv
	ttl time.Duration
}

func NewRedisStore(rdb kv, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, userID string) (string, error) {
	val, err := s.rdb.Get(ctx, currentGroupKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	logger.ExternalServiceResult("redis", "GET", err, "user_id", userID)
	if err != nil {
		return "", domain.Transient(err)
	}
	return val, nil
}

// Set stores the selection and renews its TTL.
func (s *RedisStore) Set(ctx context.Context, userID, groupID string) error {
	err := s.rdb.Set(ctx, currentGroupKey(userID), groupID, s.ttl).Err()
	logger.ExternalServiceResult("redis", "SET", err, "user_id", userID)
	if err != nil {
		return domain.Transient(err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, userID string) error {
	err := s.rdb.Del(ctx, currentGroupKey(userID)).Err()
	logger.ExternalServiceResult("redis", "DEL", err, "user_id", userID)
	if err != nil {
		return domain.Transient(err)
	}
	return nil
}

// MemoryStore is used when no Redis address is configured. Selections do not
// survive a restart and are not shared between processes.
type MemoryStore struct {
	mu  sync.Mutex
	sel map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sel: make(map[string]string)}
}

func (s *MemoryStore) Get(_ context.Context, userID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel[userID], nil
}

func (s *MemoryStore) Set(_ context.Context, userID, groupID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel[userID] = groupID
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sel, userID)
	return nil
}

// CurrentGroup validates selections against the user's memberships.
type CurrentGroup struct {
	prefs   Store
	groups  repository.GroupRepository
	members repository.MembershipRepository
}

func NewCurrentGroup(prefs Store, groups repository.GroupRepository, members repository.MembershipRepository) *CurrentGroup {
	return &CurrentGroup{prefs: prefs, groups: groups, members: members}
}

// Select records groupID as the user's current group. The user must belong to it.
func (c *CurrentGroup) Select(ctx context.Context, userID, groupID string) error {
	if userID == "" {
		return domain.ErrNotAuthenticated
	}
	m, err := c.members.Get(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if m == nil {
		return domain.NewError(domain.KindNotAuthorized, "not a member of this group")
	}
	return c.prefs.Set(ctx, userID, groupID)
}

// Resolve returns the user's current group, or nil when there is none. A
// selection that no longer matches a membership is cleared.
func (c *CurrentGroup) Resolve(ctx context.Context, userID string) (*domain.Group, error) {
	if userID == "" {
		return nil, domain.ErrNotAuthenticated
	}
	groupID, err := c.prefs.Get(ctx, userID)
	if err != nil || groupID == "" {
		return nil, err
	}

	m, err := c.members.Get(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		logger.Debug("Dropping stale current group", "user_id", userID, "group_id", groupID)
		return nil, c.prefs.Clear(ctx, userID)
	}

	g, err := c.groups.GetByID(ctx, groupID)
	if errors.Is(err, domain.ErrGroupNotFound) {
		return nil, c.prefs.Clear(ctx, userID)
	}
	return g, err
}
