package weather

import (
	"context"
	"time"

	"github.com/tenkiweb/tenki/internal/city"
	"github.com/tenkiweb/tenki/internal/weatherapi"
)

// Report is the unit of cached value for one city. The formatted text
// is derived from the payload and annotator output at fetch time and is
// never patched in place: a refresh builds a whole new Report that
// atomically replaces the cached one.
type Report struct {
	ID        string
	CityID    string
	Payload   weatherapi.Payload
	Text      string
	FetchedAt time.Time
}

// Result is what a request receives: the report text plus provenance.
type Result struct {
	Text         string
	FromCache    bool
	CachedAt     time.Time // zero unless FromCache
	IsAIFallback bool
}

// Client abstracts the upstream weather provider.
type Client interface {
	Fetch(ctx context.Context, cfg city.Config) (weatherapi.Payload, error)
}

// Annotator abstracts the environmental annotator. Implementations
// degrade to sentinel strings internally and never fail.
type Annotator interface {
	PollenSummary(ctx context.Context, cityNameJA string) string
	YellowSandSummary(ctx context.Context, cityNameJA string) string
}

// Generator abstracts the generative-text provider used for the
// AI-fallback path.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
