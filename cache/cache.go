// Copyright 2025
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cache provides a process-local TTL memoizer for provider calls.
// Entries self-evict after their TTL; expired entries are also treated as
// absent on read. Concurrent misses on the same key are not coalesced, so
// duplicate fetches for one key can occur.
package cache

import (
	"context"
	"time"

	"github.com/alphadose/haxmap"
)

type entry[V any] struct {
	value   V
	created time.Time
	ttl     time.Duration
}

func (e *entry[V]) expired(now time.Time) bool {
	return now.Sub(e.created) >= e.ttl
}

// Cache is a TTL key-value store safe for concurrent use.
type Cache[V any] struct {
	items *haxmap.Map[string, *entry[V]]
}

// New creates an empty cache.
func New[V any]() *Cache[V] {
	return &Cache[V]{items: haxmap.New[string, *entry[V]]()}
}

// Get returns the value stored under key if present and unexpired. An
// expired entry is evicted and reported as a miss.
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V

	item, ok := c.items.Get(key)
	if !ok {
		return zero, false
	}

	if item.expired(time.Now()) {
		c.evict(key, item)
		return zero, false
	}

	return item.value, true
}

// Set stores value under key and schedules its eviction after ttl.
func (c *Cache[V]) Set(key string, value V, ttl time.Duration) {
	item := &entry[V]{
		value:   value,
		created: time.Now(),
		ttl:     ttl,
	}

	c.items.Set(key, item)

	time.AfterFunc(ttl, func() {
		c.evict(key, item)
	})
}

// Has reports whether key holds an unexpired value.
func (c *Cache[V]) Has(key string) bool {
	_, ok := c.Get(key)
	return ok
}

// Delete removes key from the cache.
func (c *Cache[V]) Delete(key string) {
	c.items.Del(key)
}

// Len returns the number of stored entries, including any whose deferred
// eviction has not fired yet.
func (c *Cache[V]) Len() int {
	return int(c.items.Len())
}

// evict removes key only if it still holds item, so a timer from an
// overwritten entry cannot delete its replacement.
func (c *Cache[V]) evict(key string, item *entry[V]) {
	if current, ok := c.items.Get(key); ok && current == item {
		c.items.Del(key)
	}
}

// Fetch returns the cached value for key when present; otherwise it calls
// fetchFn, stores the result under key with ttl, and returns it. Errors
// from fetchFn are returned without caching anything.
func Fetch[V any](ctx context.Context, c *Cache[V], key string, ttl time.Duration, fetchFn func(context.Context) (V, error)) (V, error) {
	if cached, ok := c.Get(key); ok {
		return cached, nil
	}

	value, err := fetchFn(ctx)
	if err != nil {
		var zero V
		return zero, err
	}

	c.Set(key, value, ttl)
	return value, nil
}
