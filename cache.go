package bucketblog

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jmgilman/go/errors"
	"github.com/labstack/gommon/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/eringen/bucketblog/frontmatter"
	"github.com/eringen/bucketblog/ignore"
	"github.com/eringen/bucketblog/objstore"
	"github.com/eringen/bucketblog/wikilink"
)

// ErrNotFound is returned when a requested post does not exist.
var ErrNotFound = errors.New(errors.CodeNotFound, "post not found")

const (
	// DefaultCacheTTL is how long a published view is served without
	// consulting the object store.
	DefaultCacheTTL = 5 * time.Minute

	// DefaultFetchConcurrency bounds parallel document fetches in one sync.
	DefaultFetchConcurrency = 8

	syncKey = "sync"
)

// Logger is the subset of echo.Logger the cache writes to.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// Clock returns the current time.
type Clock func() time.Time

// EntryStore persists the internal cache across restarts.
type EntryStore interface {
	LoadEntries(ctx context.Context) ([]Entry, error)
	SaveEntry(ctx context.Context, e Entry) error
	DeleteEntry(ctx context.Context, key string) error
}

// CacheOptions configures a BlogCache. Zero values select defaults.
type CacheOptions struct {
	TTL              time.Duration
	Ignore           *ignore.Filter
	ExcerptLength    int
	FetchConcurrency int
	Transformer      *wikilink.Transformer // nil leaves bodies untouched
	Snapshot         EntryStore            // nil keeps the cache in memory only
	Clock            Clock
	Logger           Logger
}

// BlogCache keeps the published posts of an object store in memory. It
// re-lists the store at most once per TTL and only fetches documents whose
// last-modified time changed since they were cached.
type BlogCache struct {
	store         objstore.Store
	ttl           time.Duration
	ignore        *ignore.Filter
	excerptLength int
	concurrency   int
	transformer   *wikilink.Transformer
	snapshot      EntryStore
	clock         Clock
	logger        Logger

	group singleflight.Group

	// entries is read and written only inside group, so at most one
	// goroutine touches it at a time.
	entries map[string]Entry

	mu      sync.RWMutex
	view    *BlogData
	fetched time.Time
}

// NewBlogCache creates a BlogCache backed by store.
func NewBlogCache(store objstore.Store, opts CacheOptions) *BlogCache {
	c := &BlogCache{
		store:         store,
		ttl:           opts.TTL,
		ignore:        opts.Ignore,
		excerptLength: opts.ExcerptLength,
		concurrency:   opts.FetchConcurrency,
		transformer:   opts.Transformer,
		snapshot:      opts.Snapshot,
		clock:         opts.Clock,
		logger:        opts.Logger,
		entries:       make(map[string]Entry),
	}
	if c.ttl <= 0 {
		c.ttl = DefaultCacheTTL
	}
	if c.excerptLength <= 0 {
		c.excerptLength = frontmatter.DefaultExcerptLength
	}
	if c.concurrency <= 0 {
		c.concurrency = DefaultFetchConcurrency
	}
	if c.clock == nil {
		c.clock = time.Now
	}
	if c.logger == nil {
		c.logger = log.New("cache")
	}
	return c
}

// fresh returns the current view if it is younger than the TTL.
func (c *BlogCache) fresh() (BlogData, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.view == nil || c.fetched.IsZero() || c.clock().Sub(c.fetched) >= c.ttl {
		return BlogData{}, false
	}
	return *c.view, true
}

// current returns the last built view, or an empty one.
func (c *BlogCache) current() BlogData {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.view == nil {
		return BlogData{Posts: []Post{}, AvailableTags: []string{}}
	}
	return *c.view
}

// Invalidate clears the TTL stamp so the next Load syncs with the store.
func (c *BlogCache) Invalidate() {
	c.mu.Lock()
	c.fetched = time.Time{}
	c.mu.Unlock()
}

// Load returns the published view. A fresh view is returned as is unless
// force is set; otherwise the cache syncs with the object store. Concurrent
// callers share a single sync. Load never fails: when the store cannot be
// listed the last known view (or an empty one) is returned.
func (c *BlogCache) Load(ctx context.Context, force bool) BlogData {
	if !force {
		if view, ok := c.fresh(); ok {
			return view
		}
	}
	for {
		v, _, _ := c.group.Do(syncKey, func() (interface{}, error) {
			return flightResult{view: c.sync(context.WithoutCancel(ctx), force), synced: true}, nil
		})
		// A caller that joined an in-flight Restore goes again once it is done.
		if r, ok := v.(flightResult); ok && r.synced {
			return r.view
		}
	}
}

// flightResult is what Load and Restore share through the single-flight
// group. synced is false for a Restore.
type flightResult struct {
	view   BlogData
	synced bool
}

// changeSet collects the entries a sync wrote or removed.
type changeSet struct {
	saved   []Entry
	deleted []string
}

func (cs changeSet) empty() bool {
	return len(cs.saved) == 0 && len(cs.deleted) == 0
}

func (c *BlogCache) sync(ctx context.Context, force bool) BlogData {
	// Another caller may have finished a sync while this one waited.
	if !force {
		if view, ok := c.fresh(); ok {
			return view
		}
	}

	now := c.clock()
	c.logger.Infof("checking object store for blog updates")

	listing, err := c.store.List(ctx)
	if err != nil {
		c.logger.Warnf("object store unavailable, serving cached posts: %v", err)
		return c.current()
	}
	if len(listing) == 0 {
		c.logger.Warnf("object store returned no documents, serving cached posts")
		return c.current()
	}

	var (
		keys    = make(map[string]struct{}, len(listing))
		stale   []objstore.Entry
		changes changeSet
		ignored int
	)
	for _, obj := range listing {
		if obj.Key == "" {
			continue
		}
		if c.ignore.Match(obj.Key) {
			ignored++
			continue
		}
		if _, dup := keys[obj.Key]; dup {
			continue
		}
		keys[obj.Key] = struct{}{}

		cached, ok := c.entries[obj.Key]
		if ok && millis(cached.LastModified) == millis(obj.LastModified) {
			continue
		}
		stale = append(stale, obj)
	}
	if ignored > 0 {
		c.logger.Infof("ignored %d documents matching ignore patterns", ignored)
	}

	for key := range c.entries {
		if _, ok := keys[key]; !ok {
			c.logger.Infof("removing deleted post: %s", key)
			delete(c.entries, key)
			changes.deleted = append(changes.deleted, key)
		}
	}

	for _, o := range c.fetch(ctx, stale, now) {
		_, existed := c.entries[o.key]
		switch {
		case o.err != nil:
			c.logger.Errorf("error processing %s: %v", o.key, o.err)
		case o.published:
			c.entries[o.key] = o.entry
			changes.saved = append(changes.saved, o.entry)
		case existed:
			c.logger.Infof("removing unpublished post: %s", o.key)
			delete(c.entries, o.key)
			changes.deleted = append(changes.deleted, o.key)
		}
	}

	view := buildView(c.entries)
	c.mu.Lock()
	c.view = &view
	c.fetched = now
	c.mu.Unlock()

	c.persist(ctx, changes)

	status := "no changes detected"
	if !changes.empty() {
		status = fmt.Sprintf("%d updated, %d removed", len(changes.saved), len(changes.deleted))
	}
	c.logger.Infof("cache updated: %d posts, %d tags, %s", len(view.Posts), len(view.AvailableTags), status)
	return view
}

// millis reduces t to the precision the store reports, with absent
// timestamps at epoch 0.
func millis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

type outcome struct {
	key       string
	entry     Entry
	published bool
	err       error
}

// fetch reads and parses the stale documents concurrently. A failure for
// one key never stops the others.
func (c *BlogCache) fetch(ctx context.Context, stale []objstore.Entry, now time.Time) []outcome {
	out := make([]outcome, len(stale))
	var g errgroup.Group
	g.SetLimit(c.concurrency)
	for i, obj := range stale {
		_, cached := c.entries[obj.Key]
		g.Go(func() error {
			out[i] = c.process(ctx, obj, cached, now)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (c *BlogCache) process(ctx context.Context, obj objstore.Entry, cached bool, now time.Time) (o outcome) {
	o.key = obj.Key
	defer func() {
		if r := recover(); r != nil {
			o = outcome{key: obj.Key, err: fmt.Errorf("panic: %v", r)}
		}
	}()

	state := "new"
	if cached {
		state = "modified"
	}
	c.logger.Infof("fetching %s file: %s", state, obj.Key)

	raw, err := c.store.Read(ctx, obj.Key)
	if err != nil {
		o.err = err
		return o
	}
	o.entry, o.published = c.buildEntry(obj, raw, now)
	return o
}

// buildView derives the published view from the internal cache.
func buildView(entries map[string]Entry) BlogData {
	list := make([]Entry, 0, len(entries))
	for _, e := range entries {
		list = append(list, e)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Key < list[j].Key })
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Published.After(list[j].Published)
	})

	view := BlogData{Posts: make([]Post, len(list)), AvailableTags: []string{}}
	seen := make(map[string]struct{})
	for i, e := range list {
		view.Posts[i] = e.Post
		for _, t := range e.Post.Tags {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			view.AvailableTags = append(view.AvailableTags, t)
		}
	}
	return view
}

// persist writes the changes of a sync through to the snapshot store.
// Failures are logged; the in-memory cache stays authoritative.
func (c *BlogCache) persist(ctx context.Context, changes changeSet) {
	if c.snapshot == nil {
		return
	}
	for _, key := range changes.deleted {
		if err := c.snapshot.DeleteEntry(ctx, key); err != nil {
			c.logger.Errorf("snapshot: delete %s: %v", key, err)
		}
	}
	for _, e := range changes.saved {
		if err := c.snapshot.SaveEntry(ctx, e); err != nil {
			c.logger.Errorf("snapshot: save %s: %v", e.Key, err)
		}
	}
}

// Restore loads the internal cache from the snapshot store and publishes it
// without a TTL stamp: requests are served from it right away, and the first
// Load still syncs, fetching only documents that changed meanwhile.
func (c *BlogCache) Restore(ctx context.Context) error {
	if c.snapshot == nil {
		return nil
	}
	_, err, _ := c.group.Do(syncKey, func() (interface{}, error) {
		stored, err := c.snapshot.LoadEntries(ctx)
		if err != nil {
			return nil, fmt.Errorf("restore cache: %w", err)
		}
		for _, e := range stored {
			if c.ignore.Match(e.Key) {
				continue
			}
			c.entries[e.Key] = e
		}
		view := buildView(c.entries)
		c.mu.Lock()
		c.view = &view
		c.mu.Unlock()
		c.logger.Infof("restored %d posts from snapshot", len(view.Posts))
		return flightResult{view: view}, nil
	})
	return err
}

// ListPosts returns published posts, optionally filtered by tag
// (case-insensitive).
func (c *BlogCache) ListPosts(ctx context.Context, tag string) []Post {
	posts := c.Load(ctx, false).Posts
	if tag == "" {
		return posts
	}
	return filterByTag(posts, tag)
}

// ListTags returns every tag used by a published post.
func (c *BlogCache) ListTags(ctx context.Context) []string {
	return c.Load(ctx, false).AvailableTags
}

// GetPost returns a single published post by ID.
func (c *BlogCache) GetPost(ctx context.Context, id string) (Post, error) {
	for _, p := range c.Load(ctx, false).Posts {
		if p.ID == id {
			return p, nil
		}
	}
	return Post{}, ErrNotFound
}

// Stats reports the state of the published view without syncing.
func (c *BlogCache) Stats() CacheStats {
	_, fresh := c.fresh()
	c.mu.RLock()
	defer c.mu.RUnlock()
	stats := CacheStats{
		LastSync:       c.fetched,
		Fresh:          fresh,
		IgnorePatterns: c.ignore.Patterns(),
	}
	if c.view != nil {
		stats.Posts = len(c.view.Posts)
		stats.Tags = len(c.view.AvailableTags)
	}
	return stats
}

func filterByTag(posts []Post, tag string) []Post {
	filtered := []Post{}
	for _, p := range posts {
		for _, t := range p.Tags {
			if strings.EqualFold(t, tag) {
				filtered = append(filtered, p)
				break
			}
		}
	}
	return filtered
}
