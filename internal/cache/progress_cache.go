// Package cache holds short-lived copies of derived census state.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/natewolfe/dreamcensus-sub001/internal/progress"
)

// Entry is the cached progress of one subject for one catalog version.
type Entry struct {
	Groupings map[string]progress.Progress `json:"groupings"`
	Locked    map[string]bool              `json:"locked"`
}

// ProgressCache stores per-subject grouping progress.
//
// Every key carries a generation that Invalidate bumps. Callers read the
// generation with Get before computing an entry and pass it back to Set, so
// an entry computed from answers read before a write is never stored after
// that write's Invalidate.
type ProgressCache interface {
	// Get returns the cached entry, nil on a miss, and the key's current
	// generation.
	Get(ctx context.Context, subjectID, version string) (*Entry, uint64, error)
	// Set stores e only while the key's generation is still gen.
	Set(ctx context.Context, subjectID, version string, gen uint64, e *Entry) error
	// Invalidate drops the entry and bumps the generation.
	Invalidate(ctx context.Context, subjectID, version string) error
}

// key escapes both parts so a ':' inside an ID cannot collide with another
// subject's key.
func key(subjectID, version string) string {
	return fmt.Sprintf("progress:%s:%s", url.QueryEscape(subjectID), url.QueryEscape(version))
}

func genKey(subjectID, version string) string {
	return "gen:" + key(subjectID, version)
}

// genTTL bounds how long an idle generation counter lives in redis. It must
// be far longer than any single read-compute-store cycle.
const genTTL = 24 * time.Hour

type redisProgressCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisProgressCache creates a redis-backed progress cache.
func NewRedisProgressCache(client *redis.Client, ttl time.Duration) ProgressCache {
	return &redisProgressCache{client: client, ttl: ttl}
}

// NewRedisClient parses a redis:// URL and pings the server.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func parseGen(v any) (uint64, error) {
	s, ok := v.(string)
	if !ok {
		return 0, nil
	}
	gen, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse generation %q: %w", s, err)
	}
	return gen, nil
}

func (c *redisProgressCache) Get(ctx context.Context, subjectID, version string) (*Entry, uint64, error) {
	vals, err := c.client.MGet(ctx, key(subjectID, version), genKey(subjectID, version)).Result()
	if err != nil {
		return nil, 0, err
	}
	gen, err := parseGen(vals[1])
	if err != nil {
		return nil, 0, err
	}
	data, ok := vals[0].(string)
	if !ok {
		return nil, gen, nil
	}
	var e Entry
	if err := json.Unmarshal([]byte(data), &e); err != nil {
		return nil, gen, err
	}
	return &e, gen, nil
}

func (c *redisProgressCache) Set(ctx context.Context, subjectID, version string, gen uint64, e *Entry) error {
	if c.ttl <= 0 || e == nil {
		return nil
	}
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	gk := genKey(subjectID, version)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, gk).Uint64()
		if errors.Is(err, redis.Nil) {
			cur, err = 0, nil
		}
		if err != nil {
			return err
		}
		if cur != gen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, key(subjectID, version), data, c.ttl)
			return nil
		})
		return err
	}, gk)
	if errors.Is(err, redis.TxFailedErr) {
		// The generation moved while we were writing.
		return nil
	}
	return err
}

func (c *redisProgressCache) Invalidate(ctx context.Context, subjectID, version string) error {
	gk := genKey(subjectID, version)
	_, err := c.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Incr(ctx, gk)
		p.Expire(ctx, gk, genTTL)
		p.Del(ctx, key(subjectID, version))
		return nil
	})
	return err
}

type memoryItem struct {
	entry   Entry
	expires time.Time
}

// MemoryProgressCache is an in-process ProgressCache for single-binary use.
type MemoryProgressCache struct {
	mu    sync.Mutex
	items map[string]memoryItem
	gens  map[string]uint64
	ttl   time.Duration
	now   func() time.Time
}

// NewMemoryProgressCache creates an in-process cache. A zero ttl disables
// caching: every Get misses.
func NewMemoryProgressCache(ttl time.Duration) *MemoryProgressCache {
	return &MemoryProgressCache{
		items: make(map[string]memoryItem),
		gens:  make(map[string]uint64),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (c *MemoryProgressCache) Get(_ context.Context, subjectID, version string) (*Entry, uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := key(subjectID, version)
	gen := c.gens[k]
	it, ok := c.items[k]
	if !ok {
		return nil, gen, nil
	}
	if !c.now().Before(it.expires) {
		delete(c.items, k)
		return nil, gen, nil
	}
	e := it.entry.clone()
	return &e, gen, nil
}

func (c *MemoryProgressCache) Set(_ context.Context, subjectID, version string, gen uint64, e *Entry) error {
	if c.ttl <= 0 || e == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	k := key(subjectID, version)
	if c.gens[k] != gen {
		return nil
	}
	c.items[k] = memoryItem{entry: e.clone(), expires: c.now().Add(c.ttl)}
	return nil
}

func (c *MemoryProgressCache) Invalidate(_ context.Context, subjectID, version string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := key(subjectID, version)
	c.gens[k]++
	delete(c.items, k)
	return nil
}

func (e Entry) clone() Entry {
	out := Entry{
		Groupings: make(map[string]progress.Progress, len(e.Groupings)),
		Locked:    make(map[string]bool, len(e.Locked)),
	}
	for k, v := range e.Groupings {
		out.Groupings[k] = v
	}
	for k, v := range e.Locked {
		out.Locked[k] = v
	}
	return out
}
