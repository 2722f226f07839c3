package query

import (
	"context"
	"time"

	"github.com/goccy/go-json"

	"github.com/relabs-tech/aqaar/core/apierror"
	"github.com/relabs-tech/aqaar/core/i18n"
	"github.com/relabs-tech/aqaar/core/logger"
	"github.com/relabs-tech/aqaar/core/notify"
)

// Patch rewrites the cached value of Key. Apply receives a copy of the cached value,
// or nil if nothing is cached. Returning nil data leaves the value untouched.
type Patch struct {
	Key   string
	Apply func(data []byte) ([]byte, error)
}

// Edit returns a patch which decodes the cached value of key into T, passes it to f and
// stores the result. Keys without a cached value are left untouched.
func Edit[T any](key string, f func(T) T) Patch {
	return Patch{
		Key: key,
		Apply: func(data []byte) ([]byte, error) {
			if data == nil {
				return nil, nil
			}
			var v T
			if err := json.Unmarshal(data, &v); err != nil {
				return nil, err
			}
			return json.Marshal(f(v))
		},
	}
}

// Mutation is a write to the backend with an optimistic cache update.
//
// Mutate runs it as follows:
//
//  1. in-flight fetches of the optimistic keys are cancelled
//  2. the cached values of the optimistic keys are snapshotted
//  3. the Optimistic patches are applied
//  4. Do sends the request
//  5. on failure the snapshots are restored verbatim, the Failure notice is sent and
//     the error is logged with Label
//  6. on success the Invalidate keys are invalidated and the Success notice is sent
//  7. in both cases the Settle keys are fetched again and observers are told
type Mutation struct {
	// Label names the mutation in logs and audit events, for example "admins.toggle"
	Label      string
	Optimistic []Patch
	Do         func(ctx context.Context) error
	Invalidate []string
	Settle     []string
	// Success and Failure are catalog keys of the notices. Empty keys send no notice.
	Success string
	Failure string
	// ServerMessage makes the failure notice show the message reported by the server,
	// if there is one, instead of the Failure text
	ServerMessage bool
}

// Keys returns all keys the mutation touches, without duplicates
func (m Mutation) Keys() []string {
	seen := map[string]bool{}
	var keys []string
	add := func(key string) {
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	for _, p := range m.Optimistic {
		add(p.Key)
	}
	for _, k := range m.Invalidate {
		add(k)
	}
	for _, k := range m.Settle {
		add(k)
	}
	return keys
}

// Settled describes a mutation after its settle step
type Settled struct {
	Label string
	Keys  []string
	Err   error
	At    time.Time
}

// Observer is told about every settled mutation
type Observer interface {
	Settled(ctx context.Context, s Settled)
}

// ObserverFunc adapts a function to the Observer interface
type ObserverFunc func(ctx context.Context, s Settled)

// Settled calls f
func (f ObserverFunc) Settled(ctx context.Context, s Settled) {
	f(ctx, s)
}

// Observe adds an observer
func (c *Cache) Observe(o Observer) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.observers = append(c.observers, o)
}

type snapshot struct {
	key    string
	data   []byte
	status Status
	err    error
	at     time.Time
}

func (c *Cache) snapshot(key string) snapshot {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	e := c.entry(key)
	return snapshot{key: key, data: clone(e.data), status: e.status, err: e.err, at: e.updatedAt}
}

func (c *Cache) restore(s snapshot) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	e := c.entry(s.key)
	e.data, e.status, e.err, e.updatedAt = clone(s.data), s.status, s.err, s.at
}

// Mutate runs m, see Mutation. It returns the error of m.Do.
func (c *Cache) Mutate(ctx context.Context, m Mutation) error {
	ctx, rlog := logger.ContextWithLabel(ctx, m.Label)

	snapshots := make([]snapshot, 0, len(m.Optimistic))
	for _, p := range m.Optimistic {
		c.Cancel(p.Key)
	}
	for _, p := range m.Optimistic {
		snapshots = append(snapshots, c.snapshot(p.Key))
	}
	for _, p := range m.Optimistic {
		current, _ := c.GetData(p.Key)
		next, err := p.Apply(current)
		if err != nil {
			rlog.WithError(err).Warnf("cannot apply optimistic update to %s", p.Key)
			continue
		}
		if next != nil {
			c.SetData(p.Key, next)
		}
	}

	err := m.Do(ctx)
	lang := c.Language(ctx)
	if err != nil {
		for i := len(snapshots) - 1; i >= 0; i-- {
			c.restore(snapshots[i])
		}
		apierror.Log(ctx, err, m.Label)
		if m.Failure != "" || m.ServerMessage {
			notice := notify.Notice{Level: notify.Error, Key: m.Failure, Message: i18n.T(lang, m.Failure)}
			if msg := apierror.ServerMessage(err); m.ServerMessage && msg != "" {
				notice.Key, notice.Message = "", msg
			}
			if notice.Message == "" {
				notice.Message = err.Error()
			}
			c.notifier.Notify(ctx, notice)
		}
	} else {
		c.Invalidate(m.Invalidate...)
		if m.Success != "" {
			c.notifier.Notify(ctx, notify.Notice{Level: notify.Success, Key: m.Success, Message: i18n.T(lang, m.Success)})
		}
	}

	for _, key := range m.Settle {
		if !c.Registered(key) {
			continue
		}
		if _, ferr := c.Refetch(ctx, key); ferr != nil {
			rlog.WithError(ferr).Warnf("cannot settle %s", key)
		}
	}

	c.mutex.Lock()
	observers := append([]Observer(nil), c.observers...)
	c.mutex.Unlock()
	settled := Settled{Label: m.Label, Keys: m.Keys(), Err: err, At: c.now()}
	for _, o := range observers {
		o.Settled(ctx, settled)
	}
	return err
}
