// Package weather holds the report cache and the request orchestration:
// deciding fetch-vs-serve-cached and degrading through stale cache and
// AI-generated text when the live provider is down.
package weather

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tenkiweb/tenki/internal/annotate"
	"github.com/tenkiweb/tenki/internal/city"
	"github.com/tenkiweb/tenki/internal/cooldown"
	"github.com/tenkiweb/tenki/internal/report"
	"github.com/tenkiweb/tenki/internal/weatherapi"
)

// depWeather is the cooldown mark name for the weather provider.
const depWeather = "weather"

// Options tunes the orchestrator. Zero values take the defaults below.
type Options struct {
	// CacheDuration is how long a report is served without refetching.
	CacheDuration time.Duration
	// ErrorCooldown is how long the weather provider is skipped after a
	// failure (unless a force refresh overrides it).
	ErrorCooldown time.Duration
	// Now is the clock; tests inject a fake one.
	Now func() time.Time
}

const (
	defaultCacheDuration = 3 * time.Hour
	defaultErrorCooldown = 30 * time.Minute
)

// Service orchestrates upstream fetches, caching, and degradation for
// weather reports.
type Service struct {
	registry  *city.Registry
	client    Client
	annotator Annotator
	gen       Generator

	cache         *reportCache
	gate          *cooldown.Tracker
	cacheDuration time.Duration
	now           func() time.Time

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// NewService creates the orchestrator. annotator and gen may be nil
// when their credentials are not configured; the affected capability
// degrades (sentinel summaries, no AI fallback).
func NewService(registry *city.Registry, client Client, annotator Annotator, gen Generator, opts Options) *Service {
	if opts.CacheDuration <= 0 {
		opts.CacheDuration = defaultCacheDuration
	}
	if opts.ErrorCooldown <= 0 {
		opts.ErrorCooldown = defaultErrorCooldown
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Service{
		registry:      registry,
		client:        client,
		annotator:     annotator,
		gen:           gen,
		cache:         newReportCache(),
		gate:          cooldown.NewTracker(opts.ErrorCooldown),
		cacheDuration: opts.CacheDuration,
		now:           opts.Now,
		locks:         make(map[string]*sync.Mutex),
	}
}

// Report returns the weather report for a city plus provenance,
// refreshing the cache when needed and degrading under upstream
// failure. Refresh decision precedence: force refresh always fetches;
// otherwise a provider cooldown serves cache (or falls back) without
// fetching; otherwise a missing or stale entry fetches; otherwise the
// cache is served.
func (s *Service) Report(ctx context.Context, cityID string, forceRefresh bool, prompt string) (Result, error) {
	cfg := s.registry.Resolve(cityID)

	// At most one upstream fetch per city is in flight; concurrent
	// callers for the same city wait for its result.
	lock := s.cityLock(cfg.ID)
	lock.Lock()
	defer lock.Unlock()

	now := s.now()
	cached, hasCache := s.cache.Get(cfg.ID)

	if !forceRefresh {
		if !s.gate.Available(depWeather) {
			log.Printf("weather: provider in cooldown, skipping fetch for %s", cfg.ID)
			if hasCache {
				return s.cachedResult(cached), nil
			}
			return s.fallback(ctx, cfg, prompt, fmt.Errorf("weather provider in failure cooldown"))
		}
		if hasCache && now.Sub(cached.FetchedAt) < s.cacheDuration {
			log.Printf("weather: serving cached report for %s (age %s)", cfg.ID, now.Sub(cached.FetchedAt).Round(time.Minute))
			return s.cachedResult(cached), nil
		}
	}

	reason := "cache miss or expired"
	if forceRefresh {
		reason = "force refresh requested"
	}
	log.Printf("weather: %s for %s, fetching fresh data", reason, cfg.ID)

	payload, err := s.client.Fetch(ctx, cfg)
	if err != nil {
		s.gate.MarkFailure(depWeather)
		log.Printf("ERROR: weather fetch failed for %s: %v", cfg.ID, err)

		if hasCache {
			// Availability over freshness: a stale report beats an error.
			return s.cachedResult(cached), nil
		}
		return s.fallback(ctx, cfg, prompt, err)
	}
	s.gate.MarkSuccess(depWeather)

	rep := s.buildReport(ctx, cfg, payload, now)
	s.cache.Put(rep)
	log.Printf("weather: stored fresh report %s for %s", rep.ID, cfg.ID)

	return Result{Text: rep.Text}, nil
}

// ClearCache unconditionally empties the report cache for every city.
func (s *Service) ClearCache() {
	s.cache.Clear()
	log.Printf("weather: report cache cleared")
}

func (s *Service) buildReport(ctx context.Context, cfg city.Config, payload weatherapi.Payload, now time.Time) Report {
	env := report.Summaries{
		Pollen:     annotate.NoData,
		YellowSand: annotate.NoData,
	}
	if s.annotator != nil {
		env.Pollen = s.annotator.PollenSummary(ctx, cfg.NameJA)
		env.YellowSand = s.annotator.YellowSandSummary(ctx, cfg.NameJA)
	}

	return Report{
		ID:        uuid.NewString(),
		CityID:    cfg.ID,
		Payload:   payload,
		Text:      report.Format(payload, env, cfg, now),
		FetchedAt: now,
	}
}

// fallback produces an AI-generated report when no live data and no
// cache are available. cause is the upstream failure being recovered
// from; it is surfaced when generation also fails.
func (s *Service) fallback(ctx context.Context, cfg city.Config, prompt string, cause error) (Result, error) {
	if s.gen == nil {
		return Result{}, fmt.Errorf("weather data unavailable and no fallback generator configured: %w", cause)
	}

	if prompt == "" {
		prompt = report.FallbackPrompt(cfg)
	}

	text, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		log.Printf("ERROR: fallback generation failed for %s: %v", cfg.ID, err)
		return Result{}, fmt.Errorf("weather data unavailable and fallback generation failed (%v): %w", err, cause)
	}

	log.Printf("weather: served AI-fallback report for %s", cfg.ID)
	return Result{Text: text, IsAIFallback: true}, nil
}

func (s *Service) cachedResult(rep Report) Result {
	return Result{
		Text:      rep.Text,
		FromCache: true,
		CachedAt:  rep.FetchedAt,
	}
}

func (s *Service) cityLock(cityID string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	lock, ok := s.locks[cityID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[cityID] = lock
	}
	return lock
}
