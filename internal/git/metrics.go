package git

import "testament/internal/observability"

// resolveMetrics counts the work done by a Resolver
type resolveMetrics struct {
	resolves      *observability.Counter
	fallbacks     *observability.Counter
	commitsLoaded *observability.Counter
	tagsIndexed   *observability.Counter
	modifications *observability.Counter
	duration      *observability.Histogram
}

func newResolveMetrics(reg *observability.MetricsRegistry) *resolveMetrics {
	return &resolveMetrics{
		resolves:      reg.Counter("resolves_total", "Testaments resolved from a repository"),
		fallbacks:     reg.Counter("fallbacks_total", "Testaments that used the fallback time"),
		commitsLoaded: reg.Counter("commits_loaded_total", "Commit objects read while searching for a tag"),
		tagsIndexed:   reg.Counter("tags_indexed_total", "Tags peeled to their target commit"),
		modifications: reg.Counter("modifications_total", "Modified paths reported"),
		duration:      reg.Histogram("resolve_duration_seconds", "Time spent resolving a testament", nil),
	}
}
