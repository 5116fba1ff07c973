package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// TodoListCacheTTL bounds how long a cached list survives if an
	// invalidation is ever missed.
	TodoListCacheTTL = 5 * time.Minute

	todoListCacheKey = "todos:list"
	todoListGenKey   = "todos:list:gen"
)

// CachedTodo is the read model stored in Redis, one entry of the cached list.
type CachedTodo struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
}

// TodoListCache stores the whole ordered todo list as one JSON value next to
// a generation counter. Invalidate bumps the counter, and Set only writes
// when the counter still holds the generation the reader saw on its miss, so
// a list read before a write can never be stored after that write's
// invalidation.
//
// Key format: "todos:list" (value), "todos:list:gen" (generation)
type TodoListCache struct {
	client *RedisClient
	ttl    time.Duration
}

// NewTodoListCache creates a TodoListCache backed by the given RedisClient.
func NewTodoListCache(r *RedisClient) *TodoListCache {
	return &TodoListCache{client: r, ttl: TodoListCacheTTL}
}

// Get returns the cached list and the current generation. On a miss it
// returns redis.Nil together with the generation to hand back to Set.
func (c *TodoListCache) Get(ctx context.Context) ([]CachedTodo, int64, error) {
	vals, err := c.client.Client().MGet(ctx, todoListCacheKey, todoListGenKey).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("cache get: %w", err)
	}

	gen, err := parseGeneration(vals[1])
	if err != nil {
		return nil, 0, err
	}
	if vals[0] == nil {
		return nil, gen, redis.Nil
	}

	raw, ok := vals[0].(string)
	if !ok {
		return nil, 0, fmt.Errorf("cache decode: unexpected %T", vals[0])
	}
	var todos []CachedTodo
	if err := json.Unmarshal([]byte(raw), &todos); err != nil {
		return nil, 0, fmt.Errorf("cache decode: %w", err)
	}
	return todos, gen, nil
}

// Set stores todos if the generation is still gen. A newer generation means
// a write was invalidated after the caller read the store; Set then leaves
// the cache empty and returns nil.
func (c *TodoListCache) Set(ctx context.Context, gen int64, todos []CachedTodo) error {
	if todos == nil {
		todos = []CachedTodo{}
	}
	raw, err := json.Marshal(todos)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}

	err = c.client.Client().Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, todoListGenKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return errStaleGeneration
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, todoListCacheKey, raw, c.ttl)
			return nil
		})
		return err
	}, todoListGenKey)

	switch {
	case err == nil, errors.Is(err, errStaleGeneration), errors.Is(err, redis.TxFailedErr):
		return nil
	default:
		return fmt.Errorf("cache set: %w", err)
	}
}

// Invalidate drops the cached list and starts a new generation so the next
// read goes to the store.
func (c *TodoListCache) Invalidate(ctx context.Context) error {
	_, err := c.client.Client().TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, todoListGenKey)
		pipe.Del(ctx, todoListCacheKey)
		return nil
	})
	if err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}

var errStaleGeneration = errors.New("cache generation changed")

func parseGeneration(v any) (int64, error) {
	if v == nil {
		return 0, nil
	}
	s, ok := v.(string)
	if !ok {
		return 0, fmt.Errorf("cache generation: unexpected %T", v)
	}
	gen, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("cache generation: %w", err)
	}
	return gen, nil
}
