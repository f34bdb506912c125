package ttlcache

// Metrics receives cache lifecycle events. Every method takes the cache name
// from Options.Name so one implementation can serve several caches.
type Metrics interface {
	Hit(cache string)
	Miss(cache string)
	// Coalesced is reported by each caller whose Get shared a fetch with another caller.
	Coalesced(cache string)
	Expire(cache string)
	Eviction(cache string)
	FetchError(cache string)
}

// NoopMetrics discards all events.
type NoopMetrics struct{}

func (NoopMetrics) Hit(string)        {}
func (NoopMetrics) Miss(string)       {}
func (NoopMetrics) Coalesced(string)  {}
func (NoopMetrics) Expire(string)     {}
func (NoopMetrics) Eviction(string)   {}
func (NoopMetrics) FetchError(string) {}
