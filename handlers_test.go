package bucketblog

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jmgilman/go/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/bucketblog/postid"
)

func newTestApp(t *testing.T, store *fakeStore, withIndex bool) *App {
	t.Helper()
	static := t.TempDir()
	if withIndex {
		require.NoError(t, os.WriteFile(filepath.Join(static, "index.html"), []byte("<html>spa</html>"), 0o644))
	}
	a := New(SiteConfig{
		Name:          "Notes",
		URL:           "https://blog.example.com",
		StaticDir:     static,
		RefreshLimit:  1,
		RefreshWindow: time.Minute,
	}, store, WithClock(newFakeClock().Now))
	require.NoError(t, a.Setup())
	t.Cleanup(func() { a.Close() })
	return a
}

func seededStore() *fakeStore {
	store := newFakeStore()
	store.put("notes/hello.md", "---\ntitle: Hello\ndate: 2024-05-02\ntags: [blog, Go]\n---\nHello **world**", jan)
	store.put("draft.md", "---\ntags: [draft]\n---\nwip", jan)
	return store
}

func serve(a *App, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	return rec
}

func TestHandleBlogs(t *testing.T) {
	a := newTestApp(t, seededStore(), true)

	rec := serve(a, "/api/blogs")
	require.Equal(t, http.StatusOK, rec.Code)

	var data BlogData
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &data))
	require.Len(t, data.Posts, 1)
	assert.Equal(t, "Hello", data.Posts[0].Title)
	assert.Equal(t, "Hello world", data.Posts[0].Excerpt)
	assert.Equal(t, []string{"blog", "Go"}, data.AvailableTags)
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
}

func TestHandleBlogsForceIsRateLimited(t *testing.T) {
	store := seededStore()
	a := newTestApp(t, store, true)

	serve(a, "/api/blogs?force=true")
	serve(a, "/api/blogs?force=true")
	assert.Equal(t, 1, store.listCount())
}

func TestHandleBlogsForceOnlyAcceptsTrue(t *testing.T) {
	store := seededStore()
	a := newTestApp(t, store, true)

	serve(a, "/api/blogs")
	serve(a, "/api/blogs?force=yes")
	serve(a, "/api/blogs?force=1")
	serve(a, "/api/blogs?force=TRUE")
	assert.Equal(t, 1, store.listCount())

	serve(a, "/api/blogs?force=true")
	assert.Equal(t, 2, store.listCount())
}

func TestHandleBlog(t *testing.T) {
	a := newTestApp(t, seededStore(), true)
	id := postid.New("notes/hello")

	rec := serve(a, "/api/blogs/"+id)
	require.Equal(t, http.StatusOK, rec.Code)
	var post Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &post))
	assert.Equal(t, id, post.ID)
	assert.Equal(t, "notes/hello", post.PostPath)
	assert.Equal(t, "Hello **world**", post.Content)
}

func TestHandleBlogNotFound(t *testing.T) {
	a := newTestApp(t, seededStore(), true)

	rec := serve(a, "/api/blogs/deadbeef0000")
	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp errors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, string(errors.CodeNotFound), resp.Code)
	assert.Equal(t, "post not found", resp.Message)
	assert.Equal(t, "deadbeef0000", resp.Context["id"])
}

func TestHandleTags(t *testing.T) {
	a := newTestApp(t, seededStore(), true)

	rec := serve(a, "/api/tags")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Tags []string `json:"tags"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"blog", "Go"}, body.Tags)
}

func TestHandleBlogsByTag(t *testing.T) {
	a := newTestApp(t, seededStore(), true)

	rec := serve(a, "/api/blogs/tag/go")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Posts []Post `json:"posts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Posts, 1)
	assert.Equal(t, "Hello", body.Posts[0].Title)

	rec = serve(a, "/api/blogs/tag/rust")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"posts":[]}`, rec.Body.String())
}

func TestHandleStatus(t *testing.T) {
	a := newTestApp(t, seededStore(), true)
	serve(a, "/api/blogs")

	rec := serve(a, "/api/status")
	require.Equal(t, http.StatusOK, rec.Code)
	var stats CacheStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.Posts)
	assert.Equal(t, 2, stats.Tags)
	assert.True(t, stats.Fresh)
}

func TestUnknownAPIRouteIsJSON(t *testing.T) {
	a := newTestApp(t, seededStore(), true)

	rec := serve(a, "/api/nope")
	require.Equal(t, http.StatusNotFound, rec.Code)
	var resp errors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, string(errors.CodeNotFound), resp.Code)
}

func TestFeed(t *testing.T) {
	a := newTestApp(t, seededStore(), true)

	rec := serve(a, "/feed.xml")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "application/rss+xml"))
	assert.Contains(t, body, "<title>Notes</title>")
	assert.Contains(t, body, "<link>https://blog.example.com/posts/"+postid.New("notes/hello")+"</link>")
	assert.Contains(t, body, "<pubDate>Thu, 02 May 2024 00:00:00 +0000</pubDate>")
	assert.Contains(t, body, "<category>Go</category>")
	assert.NotContains(t, body, "wip")
}

func TestSitemap(t *testing.T) {
	a := newTestApp(t, seededStore(), true)

	rec := serve(a, "/sitemap.xml")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<loc>https://blog.example.com/</loc>")
	assert.Contains(t, body, "<loc>https://blog.example.com/posts/"+postid.New("notes/hello")+"</loc>")
	assert.Contains(t, body, "<lastmod>2024-05-02</lastmod>")
}

func TestClientRoutesFallBackToIndex(t *testing.T) {
	a := newTestApp(t, seededStore(), true)

	rec := serve(a, "/posts/"+postid.New("notes/hello"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "spa")
}

func TestMissingFrontEndRendersNotFoundPage(t *testing.T) {
	a := newTestApp(t, seededStore(), false)

	rec := serve(a, "/posts/whatever")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Page not found")
	assert.Contains(t, rec.Body.String(), "Notes")
}

func TestSetupRequiresStore(t *testing.T) {
	a := New(SiteConfig{}, nil)
	assert.Error(t, a.Setup())
}
