// Package bucketblog serves a blog whose posts live as Markdown files in
// object storage. It keeps an incrementally synchronized in-memory cache of
// the published posts and exposes it through a small JSON API, an RSS feed
// and a sitemap, next to the static front-end.
package bucketblog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/eringen/bucketblog/ignore"
	"github.com/eringen/bucketblog/objstore"
	"github.com/eringen/bucketblog/wikilink"
)

// App is the central bucketblog application. It wires together the object
// store, cache, handlers and middleware.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Cache  *BlogCache
	Store  *Store // SQLite snapshot; nil unless DatabasePath is set

	store          objstore.Store
	snapshot       EntryStore
	clock          Clock
	refreshLimiter *RefreshLimiter
	customRoutes   []func(*App)
	logCloser      io.Closer
	ready          bool
}

// New creates a new App serving the documents of store.
func New(cfg SiteConfig, store objstore.Store, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
		store:  store,
	}
	a.Echo.HideBanner = true

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Setup initializes logging, the snapshot store, the cache, middleware and
// routes. Start calls it; tests call it directly and use Echo as a handler.
func (a *App) Setup() error {
	if a.ready {
		return nil
	}
	if a.store == nil {
		return fmt.Errorf("bucketblog: object store is required")
	}

	closer, err := a.setupLogging()
	if err != nil {
		return fmt.Errorf("bucketblog: init logging: %w", err)
	}
	a.logCloser = closer

	filter, err := ignore.New(a.Config.IgnorePatterns)
	if err != nil {
		return fmt.Errorf("bucketblog: %w", err)
	}
	if filter.Len() > 0 {
		a.Echo.Logger.Infof("ignoring documents matching %d patterns", filter.Len())
	}

	// Initialize snapshot store
	if a.snapshot == nil && a.Config.DatabasePath != "" {
		store, err := NewStore(a.Config.DatabasePath)
		if err != nil {
			return fmt.Errorf("bucketblog: init store: %w", err)
		}
		a.Store = store
		a.snapshot = store
	}

	var transformer *wikilink.Transformer
	if a.Config.AssetBaseURL != "" {
		transformer = wikilink.New(a.Config.AssetBaseURL)
	}

	a.Cache = NewBlogCache(a.store, CacheOptions{
		TTL:              a.Config.CacheTTL,
		Ignore:           filter,
		ExcerptLength:    a.Config.ExcerptLength,
		FetchConcurrency: a.Config.FetchConcurrency,
		Transformer:      transformer,
		Snapshot:         a.snapshot,
		Clock:            a.clock,
		Logger:           a.Echo.Logger,
	})

	a.refreshLimiter = NewRefreshLimiter(a.Config.RefreshLimit, a.Config.RefreshWindow)

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}

	a.ready = true
	return nil
}

// Start sets the app up, warms the cache, and starts the server.
func (a *App) Start() error {
	if err := a.Setup(); err != nil {
		return err
	}

	ctx := context.Background()
	if err := a.Cache.Restore(ctx); err != nil {
		a.Echo.Logger.Warnf("snapshot not restored: %v", err)
	}
	view := a.Cache.Load(ctx, false)
	a.Echo.Logger.Infof("serving %d posts on %s", len(view.Posts), a.Config.Addr)

	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	api := e.Group("/api")
	api.GET("/blogs", a.handleBlogs)
	api.GET("/blogs/tag/:tag", a.handleBlogsByTag)
	api.GET("/blogs/:id", a.handleBlog)
	api.GET("/tags", a.handleTags)
	api.GET("/status", a.handleStatus)

	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)

	// Front-end assets; unknown paths fall back to index.html so client
	// routes like /posts/:id resolve.
	e.Use(middleware.StaticWithConfig(middleware.StaticConfig{
		Root:  a.Config.StaticDir,
		HTML5: true,
		Skipper: func(c echo.Context) bool {
			return isAPIPath(c.Request().URL.Path)
		},
	}))
}

func isAPIPath(path string) bool {
	return path == "/api" || strings.HasPrefix(path, "/api/")
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.refreshLimiter != nil {
		a.refreshLimiter.Stop()
	}
	if a.Store != nil {
		a.Store.Close()
	}
	if a.logCloser != nil {
		a.logCloser.Close()
	}
	return nil
}
