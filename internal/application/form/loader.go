// Package form drives the interview questionnaire: schema loading, prefill,
// conditional answers, validation, rendering and submission.
package form

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/wordsanctuary/training-portal/internal/domain"
	"golang.org/x/sync/singleflight"
)

// ErrNoSchema means nothing can be rendered for the level yet.
var ErrNoSchema = fmt.Errorf("no interview form: %w", domain.ErrNotFound)

// SchemaSource lists the interview forms published for a leadership level.
type SchemaSource interface {
	FormsByLevel(ctx context.Context, level string) ([]domain.Schema, error)
}

type CacheObserver interface {
	ObserveSchemaCache(hit bool)
}

type LoaderOptions struct {
	CacheSize   int
	CacheTTL    time.Duration
	WarmTimeout time.Duration
	Observer    CacheObserver
	Logger      *slog.Logger
}

// Loader fetches the schema for a level, caching by level. Concurrent misses
// for one level share a single fetch.
type Loader struct {
	src         SchemaSource
	cache       *expirable.LRU[string, domain.Schema]
	group       singleflight.Group
	warmTimeout time.Duration
	obs         CacheObserver
	logger      *slog.Logger
}

func NewLoader(src SchemaSource, opts LoaderOptions) *Loader {
	if opts.CacheSize <= 0 {
		opts.CacheSize = 64
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}
	if opts.WarmTimeout <= 0 {
		opts.WarmTimeout = 10 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Loader{
		src:         src,
		cache:       expirable.NewLRU[string, domain.Schema](opts.CacheSize, nil, opts.CacheTTL),
		warmTimeout: opts.WarmTimeout,
		obs:         opts.Observer,
		logger:      opts.Logger,
	}
}

// Load returns the first form published for level. It returns ErrNoSchema
// when level is empty or no form exists.
func (l *Loader) Load(ctx context.Context, level string) (*domain.Schema, error) {
	if level == "" {
		return nil, ErrNoSchema
	}
	if s, ok := l.cache.Get(level); ok {
		l.observe(true)
		return &s, nil
	}
	l.observe(false)

	v, err, _ := l.group.Do(level, func() (any, error) {
		// Detached from the caller so a cancelled request does not fail the
		// shared fetch, but still bounded.
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.warmTimeout)
		defer cancel()
		schemas, err := l.src.FormsByLevel(fctx, level)
		if err != nil {
			return nil, err
		}
		if len(schemas) == 0 {
			return nil, ErrNoSchema
		}
		l.cache.Add(level, schemas[0])
		return schemas[0], nil
	})
	if err != nil {
		return nil, err
	}
	s := v.(domain.Schema)
	return &s, nil
}

// Warm prefetches the schema for level in the background. It is registered
// as the session's level-change listener.
func (l *Loader) Warm(level string) {
	if level == "" || l.cache.Contains(level) {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), l.warmTimeout)
		defer cancel()
		if _, err := l.Load(ctx, level); err != nil && !errors.Is(err, ErrNoSchema) {
			l.logger.Warn("warm interview form", "level", level, "error", err)
		}
	}()
}

func (l *Loader) observe(hit bool) {
	if l.obs != nil {
		l.obs.ObserveSchemaCache(hit)
	}
}
