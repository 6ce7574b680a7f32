package bucketblog

import "time"

// SiteConfig holds all configuration for a bucketblog site.
type SiteConfig struct {
	Name        string // Site name (default "Blog")
	URL         string // Canonical URL (default "http://localhost:3000")
	Description string // Site description for RSS

	Addr      string // Listen address (default ":3000")
	StaticDir string // Built front-end assets (default "public")
	LogFile   string // Rotated log file; empty logs to stderr

	CacheTTL         time.Duration // Published view TTL (default 5min)
	IgnorePatterns   string        // Semicolon-separated keys or "*" patterns kept out of the cache
	ExcerptLength    int           // Excerpt size in characters (default 150)
	FetchConcurrency int           // Parallel document fetches per sync (default 8)
	AssetBaseURL     string        // Base URL for ![[embeds]]; empty disables wiki link rewriting
	DatabasePath     string        // SQLite snapshot of the cache; empty keeps it in memory only

	RefreshLimit  int           // Forced refreshes per client per window (default 6)
	RefreshWindow time.Duration // Forced refresh window (default 1min)
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.StaticDir == "" {
		c.StaticDir = "public"
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = DefaultCacheTTL
	}
	if c.ExcerptLength == 0 {
		c.ExcerptLength = 150
	}
	if c.FetchConcurrency == 0 {
		c.FetchConcurrency = DefaultFetchConcurrency
	}
	if c.RefreshLimit == 0 {
		c.RefreshLimit = 6
	}
	if c.RefreshWindow == 0 {
		c.RefreshWindow = time.Minute
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithClock replaces the wall clock used by the cache (for tests).
func WithClock(clock Clock) Option {
	return func(a *App) {
		a.clock = clock
	}
}

// WithSnapshot sets the store the cache persists to, overriding DatabasePath.
func WithSnapshot(s EntryStore) Option {
	return func(a *App) {
		a.snapshot = s
	}
}
