package weather

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tenkiweb/tenki/internal/city"
	"github.com/tenkiweb/tenki/internal/weatherapi"
)

type fakeClient struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeClient) Fetch(ctx context.Context, cfg city.Config) (weatherapi.Payload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return weatherapi.Payload{}, f.err
	}
	return weatherapi.Payload{
		Location: weatherapi.Location{Name: cfg.APIName, Localtime: "2026-01-09 14:30"},
		Current: weatherapi.Current{
			TempC:     5.2,
			Condition: weatherapi.Condition{Text: fmt.Sprintf("fetch-%d", f.calls)},
		},
	}, nil
}

func (f *fakeClient) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeClient) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

type fakeAnnotator struct{}

func (fakeAnnotator) PollenSummary(ctx context.Context, city string) string     { return "花粉少ない" }
func (fakeAnnotator) YellowSandSummary(ctx context.Context, city string) string { return "観測なし" }

type fakeGenerator struct {
	mu     sync.Mutex
	calls  int
	prompt string
	text   string
	err    error
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.prompt = prompt
	return f.text, f.err
}

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestService(client Client, gen Generator, clk *clock) *Service {
	return NewService(city.NewRegistry(), client, fakeAnnotator{}, gen, Options{
		CacheDuration: 3 * time.Hour,
		ErrorCooldown: 30 * time.Minute,
		Now:           clk.now,
	})
}

func newClock() *clock {
	return &clock{t: time.Date(2026, 1, 9, 14, 0, 0, 0, time.UTC)}
}

func TestReport_ColdRequestFetchesOnce(t *testing.T) {
	client := &fakeClient{}
	svc := newTestService(client, nil, newClock())

	res, err := svc.Report(context.Background(), "sapporo", false, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.count() != 1 {
		t.Fatalf("expected exactly 1 fetch, got %d", client.count())
	}
	if res.FromCache || res.IsAIFallback {
		t.Fatalf("fresh fetch must not carry cache or fallback provenance: %+v", res)
	}
	if !strings.Contains(res.Text, "fetch-1") {
		t.Fatalf("expected formatted report from the fetched payload, got %q", res.Text)
	}
}

func TestReport_FreshCacheSuppressesFetch(t *testing.T) {
	client := &fakeClient{}
	svc := newTestService(client, nil, newClock())

	first, _ := svc.Report(context.Background(), "sapporo", false, "")
	second, err := svc.Report(context.Background(), "sapporo", false, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.count() != 1 {
		t.Fatalf("expected no second fetch, got %d fetches", client.count())
	}
	if !second.FromCache {
		t.Fatal("expected fromCache=true on the second request")
	}
	if second.Text != first.Text {
		t.Fatal("cached text must equal the originally fetched text")
	}
	if second.CachedAt.IsZero() {
		t.Fatal("cached result must carry the fetch timestamp")
	}
}

func TestReport_ForceRefreshAlwaysFetches(t *testing.T) {
	client := &fakeClient{}
	svc := newTestService(client, nil, newClock())

	svc.Report(context.Background(), "sapporo", false, "")
	res, err := svc.Report(context.Background(), "sapporo", true, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.count() != 2 {
		t.Fatalf("expected force refresh to fetch again, got %d fetches", client.count())
	}
	if res.FromCache {
		t.Fatal("force-refreshed result must not be tagged as cached")
	}
}

func TestReport_StaleCacheRefetches(t *testing.T) {
	client := &fakeClient{}
	clk := newClock()
	svc := newTestService(client, nil, clk)

	svc.Report(context.Background(), "sapporo", false, "")
	clk.advance(4 * time.Hour)

	res, err := svc.Report(context.Background(), "sapporo", false, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.count() != 2 {
		t.Fatalf("expected stale cache to trigger a fetch, got %d fetches", client.count())
	}
	if !strings.Contains(res.Text, "fetch-2") {
		t.Fatalf("expected the refreshed report, got %q", res.Text)
	}
}

func TestReport_FetchFailureServesStaleCache(t *testing.T) {
	client := &fakeClient{}
	clk := newClock()
	svc := newTestService(client, nil, clk)

	first, _ := svc.Report(context.Background(), "sapporo", false, "")
	clk.advance(4 * time.Hour)
	client.fail(weatherapi.ErrUnavailable)

	res, err := svc.Report(context.Background(), "sapporo", false, "")
	if err != nil {
		t.Fatalf("stale cache must absorb the upstream failure, got error: %v", err)
	}
	if !res.FromCache {
		t.Fatal("expected fromCache=true when serving stale data after a failure")
	}
	if res.Text != first.Text {
		t.Fatal("expected the previously cached text")
	}
}

func TestReport_FetchFailureNoCacheUsesAIFallback(t *testing.T) {
	client := &fakeClient{err: weatherapi.ErrUnavailable}
	gen := &fakeGenerator{text: "AI生成の天気レポート"}
	svc := newTestService(client, gen, newClock())

	res, err := svc.Report(context.Background(), "sapporo", false, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.IsAIFallback {
		t.Fatal("expected isAIFallback=true")
	}
	if res.FromCache {
		t.Fatal("fallback result must not be tagged as cached")
	}
	if res.Text != "AI生成の天気レポート" {
		t.Fatalf("unexpected fallback text: %q", res.Text)
	}
	// No request prompt given: the per-city template is used.
	if !strings.Contains(gen.prompt, "札幌市") {
		t.Fatalf("expected default prompt naming the city, got %q", gen.prompt)
	}
}

func TestReport_RequestPromptOverridesTemplate(t *testing.T) {
	client := &fakeClient{err: weatherapi.ErrUnavailable}
	gen := &fakeGenerator{text: "ok"}
	svc := newTestService(client, gen, newClock())

	svc.Report(context.Background(), "sapporo", false, "custom prompt")
	if gen.prompt != "custom prompt" {
		t.Fatalf("expected the request prompt to be used, got %q", gen.prompt)
	}
}

func TestReport_FallbackFailureSurfacesError(t *testing.T) {
	client := &fakeClient{err: weatherapi.ErrUnavailable}
	gen := &fakeGenerator{err: errors.New("model overloaded")}
	svc := newTestService(client, gen, newClock())

	_, err := svc.Report(context.Background(), "sapporo", false, "")
	if err == nil {
		t.Fatal("expected an error when both fetch and fallback fail")
	}
	if !errors.Is(err, weatherapi.ErrUnavailable) {
		t.Fatalf("error must carry the upstream cause, got %v", err)
	}
}

func TestReport_NoGeneratorConfigured(t *testing.T) {
	client := &fakeClient{err: weatherapi.ErrUnavailable}
	svc := newTestService(client, nil, newClock())

	_, err := svc.Report(context.Background(), "sapporo", false, "")
	if err == nil {
		t.Fatal("expected an error with no cache and no generator")
	}
}

func TestReport_CooldownSkipsFetch(t *testing.T) {
	client := &fakeClient{err: weatherapi.ErrUnavailable}
	gen := &fakeGenerator{text: "fallback"}
	svc := newTestService(client, gen, newClock())

	svc.Report(context.Background(), "sapporo", false, "")
	if client.count() != 1 {
		t.Fatalf("expected 1 fetch attempt, got %d", client.count())
	}

	// Second request during the cooldown window: the known-failing
	// provider is not called again.
	res, err := svc.Report(context.Background(), "sapporo", false, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.count() != 1 {
		t.Fatalf("expected cooldown to suppress the fetch, got %d attempts", client.count())
	}
	if !res.IsAIFallback {
		t.Fatal("expected fallback result during cooldown with no cache")
	}
}

func TestReport_ForceRefreshOverridesCooldown(t *testing.T) {
	client := &fakeClient{err: weatherapi.ErrUnavailable}
	gen := &fakeGenerator{text: "fallback"}
	svc := newTestService(client, gen, newClock())

	svc.Report(context.Background(), "sapporo", false, "")
	svc.Report(context.Background(), "sapporo", true, "")
	if client.count() != 2 {
		t.Fatalf("force refresh must bypass the cooldown, got %d attempts", client.count())
	}
}

func TestReport_CooldownServesExistingCache(t *testing.T) {
	client := &fakeClient{}
	clk := newClock()
	svc := newTestService(client, nil, clk)

	first, _ := svc.Report(context.Background(), "sapporo", false, "")
	clk.advance(4 * time.Hour)
	client.fail(weatherapi.ErrUnavailable)

	// This fetch fails and starts the cooldown; stale cache is served.
	svc.Report(context.Background(), "sapporo", false, "")
	// During cooldown the cache is served without a fetch attempt.
	res, err := svc.Report(context.Background(), "sapporo", false, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.count() != 2 {
		t.Fatalf("expected no fetch during cooldown, got %d attempts", client.count())
	}
	if !res.FromCache || res.Text != first.Text {
		t.Fatal("expected the cached report during cooldown")
	}
}

func TestClearCache_RestoresColdBehavior(t *testing.T) {
	client := &fakeClient{}
	svc := newTestService(client, nil, newClock())

	svc.Report(context.Background(), "sapporo", false, "")
	svc.ClearCache()

	res, err := svc.Report(context.Background(), "sapporo", false, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.count() != 2 {
		t.Fatalf("expected a fetch after clearing the cache, got %d", client.count())
	}
	if res.FromCache {
		t.Fatal("post-clear request must behave like a cold request")
	}
}

func TestReport_UnknownCityResolvesToDefault(t *testing.T) {
	client := &fakeClient{}
	svc := newTestService(client, nil, newClock())

	res, err := svc.Report(context.Background(), "atlantis", false, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(res.Text, "札幌市") {
		t.Fatalf("unknown city must resolve to the default city, got %q", res.Text)
	}
}

func TestReport_ConcurrentForceRefresh(t *testing.T) {
	client := &fakeClient{}
	svc := newTestService(client, nil, newClock())

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Report(context.Background(), "sapporo", true, "")
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("request %d failed: %v", i, err)
		}
	}

	// The cache holds exactly one of the two fetched reports, whole.
	res, _ := svc.Report(context.Background(), "sapporo", false, "")
	if !strings.Contains(res.Text, "fetch-1") && !strings.Contains(res.Text, "fetch-2") {
		t.Fatalf("cache corrupted after concurrent refreshes: %q", res.Text)
	}
	if client.count() != 2 {
		t.Fatalf("expected both force refreshes to fetch, got %d", client.count())
	}
}
