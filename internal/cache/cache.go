// Package cache memoizes solve outputs across requests in Redis, keyed
// by the pool's canonical signature, and fans out completed solves to
// subscribers (bot drivers, connected UIs) over pub/sub.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/CrzPhil/Makiaveli/engine"
)

// SolvedChannel is the pub/sub channel new solve outcomes are published on.
const SolvedChannel = "makiaveli:solved"

// DefaultTTL is how long a cached output survives before it must be
// recomputed, independent of whether the underlying floor has changed.
const DefaultTTL = 10 * time.Minute

// Cache wraps a Redis client. The zero value is not usable; build one
// with New.
type Cache struct {
	rdb *redis.Client
}

// New connects to Redis at addr (host:port, no auth — matching the
// teacher's local-dev Redis usage).
func New(addr string) *Cache {
	return &Cache{rdb: redis.NewClient(&redis.Options{Addr: addr})}
}

// Close releases the underlying client.
func (c *Cache) Close() error {
	return c.rdb.Close()
}

// Key derives the cache key for a request from the pool signature the
// enumerator would memoize on, so a cache hit and a memo hit agree on
// what "the same position" means.
func Key(sig engine.Signature) string {
	return "makiaveli:solve:" + string(sig)
}

// Get returns a previously cached Output for sig, or found == false on a
// cache miss.
func (c *Cache) Get(ctx context.Context, sig engine.Signature) (engine.Output, bool, error) {
	raw, err := c.rdb.Get(ctx, Key(sig)).Bytes()
	if err == redis.Nil {
		return engine.Output{}, false, nil
	}
	if err != nil {
		return engine.Output{}, false, fmt.Errorf("redis get: %w", err)
	}
	var out engine.Output
	if err := json.Unmarshal(raw, &out); err != nil {
		return engine.Output{}, false, fmt.Errorf("unmarshal cached output: %w", err)
	}
	return out, true, nil
}

// Set stores out under sig's key and publishes it on SolvedChannel for
// any subscribed bot drivers.
func (c *Cache) Set(ctx context.Context, sig engine.Signature, out engine.Output) error {
	raw, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("marshal output for cache: %w", err)
	}
	if err := c.rdb.Set(ctx, Key(sig), raw, DefaultTTL).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	if err := c.rdb.Publish(ctx, SolvedChannel, raw).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

// Subscribe returns a channel of decoded Outputs published on
// SolvedChannel. Callers must drain it; closing ctx stops the
// subscription and closes the returned channel.
func (c *Cache) Subscribe(ctx context.Context) <-chan engine.Output {
	sub := c.rdb.Subscribe(ctx, SolvedChannel)
	out := make(chan engine.Output)
	go func() {
		defer close(out)
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var decoded engine.Output
				if err := json.Unmarshal([]byte(msg.Payload), &decoded); err != nil {
					continue
				}
				select {
				case out <- decoded:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}
