package suggest

import (
	"context"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/coocood/freecache"
	"go.uber.org/zap"
)

const (
	defaultDebounce  = 300 * time.Millisecond
	defaultMinPrefix = 3
	defaultCacheSize = 512 * 1024
	cacheTTLSeconds  = 300
)

// Broker debounces prefix lookups against one Source. Each broker owns its
// timer and cache, so the location and contact fields never interfere.
// Queries follow last-request-wins: a newer prefix supersedes any pending or
// in-flight lookup and stale responses are discarded. Source failures are
// swallowed into an empty result and logged.
type Broker struct {
	mu        sync.Mutex
	source    Source
	cache     *freecache.Cache
	log       *zap.Logger
	debounce  time.Duration
	minPrefix int

	gen    uint64
	timer  *time.Timer
	cancel context.CancelFunc
	closed bool
}

type Option func(*Broker)

func WithDebounce(d time.Duration) Option {
	return func(b *Broker) { b.debounce = d }
}

func WithMinPrefix(n int) Option {
	return func(b *Broker) { b.minPrefix = n }
}

func WithCacheSize(bytes int) Option {
	return func(b *Broker) { b.cache = freecache.NewCache(bytes) }
}

func NewBroker(source Source, log *zap.Logger, opts ...Option) *Broker {
	if log == nil {
		log = zap.NewNop()
	}
	b := &Broker{
		source:    source,
		log:       log,
		debounce:  defaultDebounce,
		minPrefix: defaultMinPrefix,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.cache == nil {
		b.cache = freecache.NewCache(defaultCacheSize)
	}
	return b
}

// Query schedules a lookup for prefix and delivers the result through fn.
// Prefixes shorter than the minimum gate resolve to an empty result
// immediately without touching the source. fn runs at most once per call and
// only while this call is still the newest one.
func (b *Broker) Query(ctx context.Context, prefix string, fn func([]Suggestion)) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		fn(nil)
		return
	}
	b.gen++
	myGen := b.gen
	b.supersedeLocked()

	if len([]rune(prefix)) < b.minPrefix {
		b.mu.Unlock()
		fn(nil)
		return
	}

	if cached, err := b.cache.Get([]byte(prefix)); err == nil {
		b.mu.Unlock()
		var hits []Suggestion
		if sonic.Unmarshal(cached, &hits) == nil {
			fn(hits)
			return
		}
		// fall through on a broken cache entry
		b.mu.Lock()
	}

	b.timer = time.AfterFunc(b.debounce, func() {
		b.fire(ctx, myGen, prefix, fn)
	})
	b.mu.Unlock()
}

// supersedeLocked stops the pending timer and cancels the in-flight lookup.
func (b *Broker) supersedeLocked() {
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
}

func (b *Broker) fire(ctx context.Context, myGen uint64, prefix string, fn func([]Suggestion)) {
	b.mu.Lock()
	if b.closed || myGen != b.gen {
		b.mu.Unlock()
		return
	}
	cctx, cancel := context.WithCancel(ctx)
	b.cancel = cancel
	b.mu.Unlock()

	hits, err := b.source.Lookup(cctx, prefix)
	cancel()

	b.mu.Lock()
	stale := b.closed || myGen != b.gen
	if !stale && err == nil {
		if data, mErr := sonic.Marshal(hits); mErr == nil {
			b.cache.Set([]byte(prefix), data, cacheTTLSeconds)
		}
	}
	b.mu.Unlock()

	if stale {
		return
	}
	if err != nil {
		b.log.Warn("autocomplete lookup failed", zap.String("prefix", prefix), zap.Error(err))
		fn(nil)
		return
	}
	fn(hits)
}

// Close cancels pending and in-flight work. Queries after Close resolve
// empty.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.supersedeLocked()
}
