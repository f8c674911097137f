package city

// Config describes one supported city. Instances are immutable; the
// registry hands out copies by value.
type Config struct {
	// ID is the internal lowercase key used by the HTTP API and cache.
	ID string `json:"id"`
	// NameJA is the Japanese display name, also used in search queries.
	NameJA string `json:"nameJa"`
	// Suffix is the municipality suffix appended after NameJA (市 or 町).
	Suffix string `json:"suffix"`
	// APIName is the query string sent to the weather provider. It may
	// carry region/country qualifiers to disambiguate same-named cities.
	APIName string `json:"apiName"`
	// Variant is a presentation hint for the client UI.
	Variant string `json:"variant"`
}

// Registry is a static city lookup table built at process start.
type Registry struct {
	byID     map[string]Config
	ordered  []Config
	fallback Config
}

var defaultCities = []Config{
	{ID: "sapporo", NameJA: "札幌", Suffix: "市", APIName: "Sapporo", Variant: "sapporo"},
	{ID: "takasaki", NameJA: "高崎", Suffix: "市", APIName: "Takasaki,Japan", Variant: "takasaki"},
	{ID: "shimonita", NameJA: "下仁田", Suffix: "町", APIName: "Shimonita,Gunma,Japan", Variant: "shimonita"},
	{ID: "tokyo", NameJA: "東京", Suffix: "都", APIName: "Tokyo", Variant: "tokyo"},
	{ID: "osaka", NameJA: "大阪", Suffix: "市", APIName: "Osaka", Variant: "osaka"},
	{ID: "fukuoka", NameJA: "福岡", Suffix: "市", APIName: "Fukuoka", Variant: "fukuoka"},
	{ID: "sendai", NameJA: "仙台", Suffix: "市", APIName: "Sendai,Japan", Variant: "sendai"},
	{ID: "maebashi", NameJA: "前橋", Suffix: "市", APIName: "Maebashi,Japan", Variant: "maebashi"},
}

// NewRegistry builds the registry from the built-in city table.
// The first city (sapporo) is the fallback for unknown ids.
func NewRegistry() *Registry {
	r := &Registry{
		byID:     make(map[string]Config, len(defaultCities)),
		ordered:  defaultCities,
		fallback: defaultCities[0],
	}
	for _, c := range defaultCities {
		r.byID[c.ID] = c
	}
	return r
}

// Resolve returns the configuration for the given city id. Unknown ids
// resolve to the fallback city; callers needing strict membership must
// use Known first.
func (r *Registry) Resolve(id string) Config {
	if c, ok := r.byID[id]; ok {
		return c
	}
	return r.fallback
}

// Known reports whether the given id is a registered city.
func (r *Registry) Known(id string) bool {
	_, ok := r.byID[id]
	return ok
}

// All returns the registered cities in declaration order.
func (r *Registry) All() []Config {
	out := make([]Config, len(r.ordered))
	copy(out, r.ordered)
	return out
}
