// Package annotate sources supplementary pollen and yellow-sand
// observations from a web search provider and condenses them into short
// Japanese summaries. Its data is supplementary, so every failure mode
// degrades to a sentinel string instead of an error.
package annotate

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/tenkiweb/tenki/internal/common"
	"github.com/tenkiweb/tenki/internal/cooldown"
	"github.com/tenkiweb/tenki/internal/search"
)

// Sentinels returned instead of a summary. The presentation layer shows
// them verbatim, so they must never be empty strings.
const (
	// NoData means the capability is not configured at all.
	NoData = "データなし"
	// NoObservation means the search ran (or was suppressed) but no
	// usable observation is available.
	NoObservation = "観測データなし"
)

// Dependency names used for failure cooldown marks.
const (
	depPollen     = "pollen"
	depYellowSand = "yellowsand"
)

// Searcher is the slice of the search client the annotator needs.
type Searcher interface {
	Search(ctx context.Context, query string) ([]search.Result, error)
}

// Summarizer condenses search snippets; optional.
type Summarizer interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Annotator fetches and condenses environmental observations per city.
type Annotator struct {
	search Searcher
	gen    Summarizer
	gate   *cooldown.Tracker
	cache  *summaryCache
	now    func() time.Time
}

// New creates an Annotator. searcher may be nil when no search
// credential is configured; gen may be nil when no generative-text
// credential is configured (summaries then fall back to raw snippets).
func New(searcher Searcher, gen Summarizer, gate *cooldown.Tracker, cacheTTL time.Duration) *Annotator {
	return &Annotator{
		search: searcher,
		gen:    gen,
		gate:   gate,
		cache:  newSummaryCache(cacheTTL),
		now:    time.Now,
	}
}

// PollenSummary returns a short pollen dispersal summary for the city,
// or a sentinel when no observation is available.
func (a *Annotator) PollenSummary(ctx context.Context, cityNameJA string) string {
	return a.summary(ctx, depPollen, cityNameJA, pollenQuery(cityNameJA, a.now()), pollenRelevant, pollenPrompt)
}

// YellowSandSummary returns a short yellow-sand (kosa) summary for the
// city, or a sentinel when no observation is available.
func (a *Annotator) YellowSandSummary(ctx context.Context, cityNameJA string) string {
	return a.summary(ctx, depYellowSand, cityNameJA, yellowSandQuery(cityNameJA, a.now()), yellowSandRelevant, yellowSandPrompt)
}

func (a *Annotator) summary(
	ctx context.Context,
	dep, cityNameJA, query string,
	relevant func(string) bool,
	prompt func(string, []string) string,
) string {
	if a.search == nil {
		return NoData
	}

	cacheKey := dep + ":" + cityNameJA
	if v, ok := a.cache.get(cacheKey); ok {
		return v
	}

	if !a.gate.Available(dep) {
		log.Printf("annotate: skipping %s search for %s, dependency in cooldown", dep, cityNameJA)
		return NoObservation
	}

	results, err := a.search.Search(ctx, query)
	if err != nil {
		a.gate.MarkFailure(dep)
		log.Printf("annotate: %s search failed for %s: %v", dep, cityNameJA, err)
		return NoObservation
	}
	a.gate.MarkSuccess(dep)

	var snippets []string
	for _, r := range results {
		if relevant(r.Description) {
			snippets = append(snippets, r.Description)
		}
	}
	if len(snippets) == 0 {
		return NoObservation
	}

	out := a.condense(ctx, prompt(cityNameJA, snippets), snippets[0])
	a.cache.set(cacheKey, out)
	return out
}

// condense asks the summarizer for a short summary, falling back to the
// first relevant snippet when no summarizer is configured or it fails.
// A summary hedging with 推定 is treated as no observation.
func (a *Annotator) condense(ctx context.Context, prompt, fallback string) string {
	if a.gen == nil {
		return strings.TrimSpace(fallback)
	}

	text, err := a.gen.Generate(ctx, prompt)
	if err != nil {
		log.Printf("annotate: summarize failed: %v", err)
		return strings.TrimSpace(fallback)
	}
	if strings.Contains(text, "推定") {
		return NoObservation
	}
	if text = strings.TrimSpace(text); text != "" {
		return text
	}
	return NoObservation
}

func pollenQuery(cityNameJA string, now time.Time) string {
	// Seasonal species keywords sharpen the search: cedar and cypress in
	// spring, ragweed and grasses in late summer and autumn.
	var species string
	switch m := now.Month(); {
	case m >= 2 && m <= 5:
		species = "杉 ヒノキ"
	case m >= 8 && m <= 10:
		species = "ブタクサ イネ科"
	}

	date := fmt.Sprintf("%d年%d月%d日", now.Year(), now.Month(), now.Day())
	q := fmt.Sprintf("%s 花粉 飛散情報 %s %s 速報", cityNameJA, species, date)
	return strings.Join(strings.Fields(q), " ")
}

func yellowSandQuery(cityNameJA string, now time.Time) string {
	return fmt.Sprintf("%s 黄砂 観測 %d年%d月 気象庁", cityNameJA, now.Year(), now.Month())
}

// pollenRelevant keeps snippets that report pollen observations and
// drops false positives such as allergy treatment articles.
func pollenRelevant(desc string) bool {
	return strings.Contains(desc, "花粉") &&
		!strings.Contains(desc, "アレルギー") &&
		common.HasAny(desc, "観測", "状況", "飛散")
}

func yellowSandRelevant(desc string) bool {
	return strings.Contains(desc, "黄砂") &&
		common.HasAny(desc, "観測", "状況", "予測")
}

func pollenPrompt(cityNameJA string, snippets []string) string {
	return fmt.Sprintf(`次の検索結果をもとに、現在の%sの花粉飛散状況を日本語で30文字以内で要約してください。
花粉の種類（杉、ヒノキ、ブタクサなど）と飛散レベル（少ない、中程度、多いなど）を具体的に示してください。
「推定」という言葉は使わず、観測情報がない場合は「観測データなし」と明記してください：

%s`, cityNameJA, strings.Join(snippets, "\n\n"))
}

func yellowSandPrompt(cityNameJA string, snippets []string) string {
	return fmt.Sprintf(`次の検索結果をもとに、現在の%sにおける黄砂の状況を日本語で30文字以内で要約してください。
黄砂が観測されているかいないかを明確に示し、「推定」という言葉は使わないでください。
観測情報がない場合は「観測なし」と明記してください：

%s`, cityNameJA, strings.Join(snippets, "\n\n"))
}
