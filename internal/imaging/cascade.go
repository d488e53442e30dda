package imaging

import (
	"context"
	"fmt"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/ramachandran-annadurai/patient-p1-sub001/internal/apperror"
	"github.com/ramachandran-annadurai/patient-p1-sub001/internal/model"
	"github.com/ramachandran-annadurai/patient-p1-sub001/pkg/metrics"
)

// Config tunes the cascade's timeouts and cache lifetime.
type Config struct {
	// AttemptTimeout bounds a single strategy invocation.
	AttemptTimeout time.Duration
	// CacheTTL is how long a generated artifact stays servable.
	CacheTTL time.Duration
}

func DefaultConfig() Config {
	return Config{
		AttemptTimeout: 30 * time.Second,
		CacheTTL:       24 * time.Hour,
	}
}

// Cascade walks a prioritized list of strategies until one yields an
// artifact. Results are cached in process with a TTL, concurrent requests
// for the same week and strategy are coalesced into one invocation, and
// the terminal text strategy guarantees a response even when every image
// source is down.
type Cascade struct {
	cfg        Config
	strategies []Strategy
	byID       map[string]Strategy
	cache      *gocache.Cache
	l2         ArtifactStore
	group      singleflight.Group
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

type Option func(*Cascade)

// WithArtifactStore adds a shared second-level cache behind the
// in-process one.
func WithArtifactStore(store ArtifactStore) Option {
	return func(c *Cascade) { c.l2 = store }
}

// NewCascade builds a cascade over the given strategies in priority
// order. A text strategy is appended if none was supplied so the cascade
// can always terminate with a result.
func NewCascade(cfg Config, strategies []Strategy, m *metrics.Metrics, logger zerolog.Logger, opts ...Option) *Cascade {
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = DefaultConfig().AttemptTimeout
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultConfig().CacheTTL
	}
	c := &Cascade{
		cfg:        cfg,
		strategies: strategies,
		byID:       make(map[string]Strategy, len(strategies)+1),
		cache:      gocache.New(cfg.CacheTTL, 10*time.Minute),
		metrics:    m,
		logger:     logger.With().Str("component", "image_cascade").Logger(),
	}
	for _, s := range strategies {
		c.byID[s.ID()] = s
	}
	if _, ok := c.byID[model.StrategyText]; !ok {
		terminal := NewTextStrategy()
		c.strategies = append(c.strategies, terminal)
		c.byID[terminal.ID()] = terminal
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetBest returns the highest-priority artifact obtainable for the week.
// When preferred names a strategy it is tried first, then the standard
// fallback order. GetBest never returns a nil artifact on a valid week:
// the text strategy runs detached from the caller's deadline so even a
// timed-out request gets a textual fallback.
func (c *Cascade) GetBest(ctx context.Context, week int, preferred string, regenerate bool) (*model.ImageArtifact, error) {
	if !model.ValidWeek(week) {
		return nil, apperror.InvalidInput(fmt.Sprintf("week must be between %d and %d", model.MinWeek, model.MaxWeek))
	}
	if preferred != "" {
		if _, ok := c.byID[preferred]; !ok {
			return nil, apperror.InvalidInput(fmt.Sprintf("unknown strategy %q", preferred))
		}
	}

	for _, id := range c.attemptOrder(preferred) {
		if id == model.StrategyText {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		artifact, err := c.attempt(ctx, week, id, regenerate)
		if err == nil {
			return artifact, nil
		}
		c.logger.Debug().Err(err).Int("week", week).Str("strategy", id).
			Msg("strategy failed, falling back")
	}

	// Terminal fallback. Detached from the caller's context so a caller
	// deadline that killed the image strategies still gets a response.
	return c.attempt(context.WithoutCancel(ctx), week, model.StrategyText, regenerate)
}

// GenerateAll invokes every strategy for the week concurrently and
// reports each outcome. Strategies are isolated: one failing never
// affects another's result.
func (c *Cascade) GenerateAll(ctx context.Context, week int, regenerate bool) (map[string]model.StrategyResult, error) {
	if !model.ValidWeek(week) {
		return nil, apperror.InvalidInput(fmt.Sprintf("week must be between %d and %d", model.MinWeek, model.MaxWeek))
	}

	results := make(map[string]model.StrategyResult, len(c.strategies))
	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, s := range c.strategies {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			artifact, err := c.attempt(ctx, week, id, regenerate)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				results[id] = model.StrategyResult{Err: err.Error()}
				return
			}
			results[id] = model.StrategyResult{Artifact: artifact}
		}(s.ID())
	}
	wg.Wait()
	return results, nil
}

// Strategies lists the cascade's strategy identifiers in priority order.
func (c *Cascade) Strategies() []string {
	ids := make([]string, 0, len(c.strategies))
	for _, s := range c.strategies {
		ids = append(ids, s.ID())
	}
	return ids
}

// HealthCheck reports per-strategy availability.
func (c *Cascade) HealthCheck() map[string]bool {
	health := make(map[string]bool, len(c.strategies))
	for _, s := range c.strategies {
		health[s.ID()] = s.Available()
	}
	return health
}

// attemptOrder yields the preferred strategy first, then the standard
// fallback order, skipping duplicates and strategies not configured.
func (c *Cascade) attemptOrder(preferred string) []string {
	order := make([]string, 0, len(model.StrategyFallbackOrder)+1)
	if preferred != "" {
		order = append(order, preferred)
	}
	for _, id := range model.StrategyFallbackOrder {
		if id == preferred {
			continue
		}
		if _, ok := c.byID[id]; !ok {
			continue
		}
		order = append(order, id)
	}
	return order
}

// attempt serves one (week, strategy) pair, consulting the caches first
// and coalescing concurrent generations into a single invocation.
func (c *Cascade) attempt(ctx context.Context, week int, id string, regenerate bool) (*model.ImageArtifact, error) {
	key := artifactKey(week, id)
	if !regenerate {
		if artifact, ok := c.cachedArtifact(ctx, key); ok {
			c.metrics.ImageCacheHits.WithLabelValues("hit").Inc()
			return artifact, nil
		}
		c.metrics.ImageCacheHits.WithLabelValues("miss").Inc()
	}

	v, err, shared := c.group.Do(key, func() (any, error) {
		if !regenerate {
			// A concurrent caller may have populated the cache while we
			// waited for the flight slot.
			if artifact, ok := c.cachedArtifact(ctx, key); ok {
				return artifact, nil
			}
		}
		return c.generate(ctx, week, id, key)
	})
	if shared {
		c.metrics.CoalescedRequests.Inc()
	}
	if err != nil {
		return nil, err
	}
	return v.(*model.ImageArtifact), nil
}

func (c *Cascade) generate(ctx context.Context, week int, id string, key string) (*model.ImageArtifact, error) {
	strat := c.byID[id]
	attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.AttemptTimeout)
	defer cancel()

	start := time.Now()
	artifact, err := strat.Generate(attemptCtx, week)
	c.metrics.StrategyDuration.WithLabelValues(id).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.StrategyAttempts.WithLabelValues(id, "failure").Inc()
		return nil, err
	}
	c.metrics.StrategyAttempts.WithLabelValues(id, "success").Inc()

	c.cache.Set(key, artifact, c.cfg.CacheTTL)
	if c.l2 != nil {
		storeCtx, storeCancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer storeCancel()
		c.l2.Set(storeCtx, key, artifact, c.cfg.CacheTTL)
	}
	return artifact, nil
}

func (c *Cascade) cachedArtifact(ctx context.Context, key string) (*model.ImageArtifact, bool) {
	if v, ok := c.cache.Get(key); ok {
		return v.(*model.ImageArtifact), true
	}
	if c.l2 != nil {
		if artifact, ok := c.l2.Get(ctx, key); ok {
			c.cache.Set(key, artifact, c.cfg.CacheTTL)
			return artifact, true
		}
	}
	return nil, false
}

func artifactKey(week int, strategy string) string {
	return fmt.Sprintf("%d:%s", week, strategy)
}
