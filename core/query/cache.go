/*
Package query is the in-memory cache between the owner console and the REST API

Every cached resource has a key, for example "admins" or "lookup-data", and a
Definition telling the cache how to fetch it and for how long a fetched value stays
fresh. Values are held as their JSON encoding, so a snapshot of an entry is an exact
copy of what was cached.

Per key the cache runs the state machine

	Idle -> Fetching -> Success | Error

Writes go through Mutate, which applies the expected outcome of a request to the
cache before the request is sent and rolls it back verbatim if the request fails,
see Mutation.

A Cache is safe for concurrent use.
*/
package query

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/sync/singleflight"

	"github.com/relabs-tech/aqaar/core/i18n"
	"github.com/relabs-tech/aqaar/core/logger"
	"github.com/relabs-tech/aqaar/core/notify"
)

// ErrUnknownKey is returned for keys without a Definition
var ErrUnknownKey = errors.New("no query registered for key")

// Status is the state of a cache entry
type Status int

// The states of a cache entry
const (
	Idle Status = iota
	Fetching
	Success
	Error
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Fetching:
		return "fetching"
	case Success:
		return "success"
	case Error:
		return "error"
	}
	return "unknown"
}

// FetchFunc fetches the value of a key. The value is stored as its JSON encoding.
type FetchFunc func(ctx context.Context) (interface{}, error)

// Definition describes how a key is fetched
type Definition struct {
	Key   string
	Fetch FetchFunc
	// StaleTime is how long a fetched value is served without fetching again. Zero
	// means every read fetches.
	StaleTime time.Duration
	// RefetchInterval makes Run fetch the key in the background. Zero disables
	// background fetching.
	RefetchInterval time.Duration
	// Retry is the number of retries after a failed fetch. Zero means one retry, a
	// negative value disables retries.
	Retry int
	// RetryDelay is the pause before each retry
	RetryDelay time.Duration
}

func (d *Definition) retries() int {
	switch {
	case d.Retry < 0:
		return 0
	case d.Retry == 0:
		return 1
	}
	return d.Retry
}

// State is a copy of a cache entry
type State struct {
	Status    Status
	Data      []byte
	Err       error
	UpdatedAt time.Time
	// Stale is true once the entry was invalidated and not fetched since
	Stale bool
	// Invalidations counts all invalidations of the key
	Invalidations int
	// Waiting counts the callers waiting for a fetch of the key
	Waiting int
}

// HasData returns true if the entry holds a value
func (s State) HasData() bool {
	return s.Data != nil
}

type entry struct {
	status        Status
	data          []byte
	err           error
	updatedAt     time.Time
	stale         bool
	invalidations int
	// generation is bumped by Cancel, results of fetches started with an older
	// generation are discarded
	generation uint64
	// fetched counts the stored fetch results
	fetched uint64
	waiting int
}

func (e *entry) settledStatus() Status {
	if e.err != nil {
		return Error
	}
	if e.data != nil {
		return Success
	}
	return Idle
}

// Cache holds the fetched values
type Cache struct {
	notifier  notify.Notifier
	languages LanguageSource
	now       func() time.Time

	flights   singleflight.Group
	mutex     sync.Mutex
	defs      map[string]*Definition
	entries   map[string]*entry
	observers []Observer
}

// LanguageSource provides the language notices are written in
type LanguageSource interface {
	Language(ctx context.Context) string
}

// New creates a cache. Notices of mutations are sent to notifier in the language of
// languages, both can be nil.
func New(notifier notify.Notifier, languages LanguageSource) *Cache {
	if notifier == nil {
		notifier = notify.Discard
	}
	return &Cache{
		notifier:  notifier,
		languages: languages,
		now:       time.Now,
		defs:      map[string]*Definition{},
		entries:   map[string]*entry{},
	}
}

// WithClock replaces the clock used for staleness
func (c *Cache) WithClock(now func() time.Time) *Cache {
	c.now = now
	return c
}

// Register adds or replaces the definition for def.Key. Cached data of the key is
// kept.
func (c *Cache) Register(def Definition) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.defs[def.Key] = &def
}

// Registered returns true if there is a definition for key
func (c *Cache) Registered(key string) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	_, ok := c.defs[key]
	return ok
}

// entry returns the entry for key. Must be called with the mutex held.
func (c *Cache) entry(key string) *entry {
	e, ok := c.entries[key]
	if !ok {
		e = &entry{}
		c.entries[key] = e
	}
	return e
}

// Fetch returns the value of key. A fresh value is served from the cache, otherwise
// the key is fetched. Concurrent fetches of the same key share one request.
//
// If the key is cancelled while the fetch is in flight, its result is discarded and
// the caller receives the value cached at that time. Without a cached value the
// caller receives an error wrapping context.Canceled.
func (c *Cache) Fetch(ctx context.Context, key string) ([]byte, error) {
	return c.fetch(ctx, key, false)
}

// Refetch fetches key regardless of the freshness of the cached value
func (c *Cache) Refetch(ctx context.Context, key string) ([]byte, error) {
	return c.fetch(ctx, key, true)
}

func (c *Cache) fetch(ctx context.Context, key string, force bool) ([]byte, error) {
	c.mutex.Lock()
	def, ok := c.defs[key]
	if !ok {
		c.mutex.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	e := c.entry(key)
	if !force && e.status == Success && !e.stale && c.now().Sub(e.updatedAt) < def.StaleTime {
		data := clone(e.data)
		c.mutex.Unlock()
		return data, nil
	}
	e.waiting++
	generation, fetched := e.generation, e.fetched
	fetch, retries, delay := def.Fetch, def.retries(), def.RetryDelay
	c.mutex.Unlock()
	defer func() {
		c.mutex.Lock()
		e.waiting--
		c.mutex.Unlock()
	}()

	results := c.flights.DoChan(key, func() (interface{}, error) {
		return c.load(ctx, key, generation, fetched, fetch, retries, delay)
	})
	select {
	case r := <-results:
		data, _ := r.Val.([]byte)
		return clone(data), r.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// load runs the fetch of one flight and stores its result, unless the key was
// cancelled after generation. If a fetch was stored since fetched, its result is
// served instead.
func (c *Cache) load(ctx context.Context, key string, generation, fetched uint64, fetch FetchFunc, retries int, delay time.Duration) ([]byte, error) {
	c.mutex.Lock()
	e := c.entry(key)
	if e.generation != generation {
		data := clone(e.data)
		c.mutex.Unlock()
		return cancelled(key, data)
	}
	if e.fetched != fetched && e.status == Success && !e.stale {
		data := clone(e.data)
		c.mutex.Unlock()
		return data, nil
	}
	e.status = Fetching
	c.mutex.Unlock()

	data, err := c.run(ctx, key, fetch, retries, delay)

	c.mutex.Lock()
	defer c.mutex.Unlock()
	if e.generation != generation {
		// cancelled while in flight
		return cancelled(key, clone(e.data))
	}
	if err != nil {
		e.status, e.err = Error, err
		return clone(e.data), err
	}
	e.status, e.err, e.data = Success, nil, data
	e.updatedAt = c.now()
	e.stale = false
	e.fetched++
	return clone(data), nil
}

// cancelled is the result of a cancelled fetch: the cached value, or an error if
// there is none
func cancelled(key string, data []byte) ([]byte, error) {
	if data == nil {
		return nil, fmt.Errorf("query %s: %w", key, context.Canceled)
	}
	return data, nil
}

func (c *Cache) run(ctx context.Context, key string, fetch FetchFunc, retries int, delay time.Duration) ([]byte, error) {
	rlog := logger.FromContext(ctx).WithField("query", key)
	var err error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			rlog.WithError(err).Debugf("retrying, attempt %d", attempt)
			select {
			case <-ctx.Done():
				return nil, err
			case <-time.After(delay):
			}
		}
		var v interface{}
		v, err = fetch(ctx)
		if err == nil {
			return json.Marshal(v)
		}
	}
	return nil, err
}

// Cancel discards the result of an in-flight fetch of key. The request itself is not
// aborted.
func (c *Cache) Cancel(key string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	e := c.entry(key)
	e.generation++
	c.flights.Forget(key)
	if e.status == Fetching {
		e.status = e.settledStatus()
	}
}

// Invalidate marks the keys stale, the next read fetches them again
func (c *Cache) Invalidate(keys ...string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	for _, key := range keys {
		e := c.entry(key)
		e.stale = true
		e.invalidations++
	}
}

// GetData returns a copy of the cached value of key
func (c *Cache) GetData(key string) ([]byte, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	e, ok := c.entries[key]
	if !ok || e.data == nil {
		return nil, false
	}
	return clone(e.data), true
}

// SetData replaces the cached value of key. A nil value removes the value.
func (c *Cache) SetData(key string, data []byte) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	e := c.entry(key)
	e.data = clone(data)
	if data == nil {
		e.status = e.settledStatus()
		return
	}
	e.status, e.err = Success, nil
	e.updatedAt = c.now()
}

// State returns a copy of the entry of key
func (c *Cache) State(key string) State {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return State{Status: Idle}
	}
	return State{
		Status:        e.status,
		Data:          clone(e.data),
		Err:           e.err,
		UpdatedAt:     e.updatedAt,
		Stale:         e.stale,
		Invalidations: e.invalidations,
		Waiting:       e.waiting,
	}
}

// Keys returns all registered keys
func (c *Cache) Keys() []string {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	keys := make([]string, 0, len(c.defs))
	for k := range c.defs {
		keys = append(keys, k)
	}
	return keys
}

// Language returns the language notices are written in
func (c *Cache) Language(ctx context.Context) string {
	if c.languages == nil {
		return i18n.Default
	}
	return i18n.Normalize(c.languages.Language(ctx))
}

func clone(data []byte) []byte {
	if data == nil {
		return nil
	}
	return append([]byte(nil), data...)
}

// Read returns the value of key decoded into T, see Cache.Fetch
func Read[T any](ctx context.Context, c *Cache, key string) (T, error) {
	var v T
	data, err := c.Fetch(ctx, key)
	if err != nil {
		return v, err
	}
	return v, decode(data, &v)
}

// Cached returns the cached value of key decoded into T without fetching
func Cached[T any](c *Cache, key string) (T, bool) {
	var v T
	data, ok := c.GetData(key)
	if !ok {
		return v, false
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, false
	}
	return v, true
}

// Set replaces the cached value of key with the encoding of v
func Set[T any](c *Cache, key string, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.SetData(key, data)
	return nil
}

func decode(data []byte, v interface{}) error {
	if data == nil {
		return nil
	}
	return json.Unmarshal(data, v)
}
