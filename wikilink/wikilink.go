// Package wikilink rewrites note-linking syntax into standard Markdown.
//
//	![[img/cat.png|A cat]]  ->  ![A cat](<base>/img/cat.png)
//	[[notes/go#Intro|Go]]   ->  [Go](/posts/<id>#Intro)
package wikilink

import (
	"net/url"
	"path"
	"regexp"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/eringen/bucketblog/postid"
)

var reWikiLink = regexp.MustCompile(`(!?)\[\[([^\[\]]+)\]\]`)

// PostPrefix is the route posts are linked under.
const PostPrefix = "/posts/"

// Transformer rewrites wiki links and embeds in document bodies.
type Transformer struct {
	baseURL string
	workers int
}

// New returns a Transformer resolving relative embeds against baseURL. An
// empty baseURL leaves relative embed paths relative.
func New(baseURL string) *Transformer {
	return &Transformer{
		baseURL: strings.TrimRight(baseURL, "/"),
		workers: runtime.GOMAXPROCS(0),
	}
}

// Transform returns body with every wiki link and embed replaced. Text
// outside the matches is preserved byte for byte.
func (t *Transformer) Transform(body string) string {
	locs := reWikiLink.FindAllStringSubmatchIndex(body, -1)
	if len(locs) == 0 {
		return body
	}

	replacements := make([]string, len(locs))
	var g errgroup.Group
	g.SetLimit(t.workers)
	for i, loc := range locs {
		g.Go(func() error {
			embed := loc[3] > loc[2]
			target := body[loc[4]:loc[5]]
			if embed {
				replacements[i] = t.embed(target)
			} else {
				replacements[i] = t.link(target)
			}
			return nil
		})
	}
	_ = g.Wait()

	var b strings.Builder
	b.Grow(len(body))
	last := 0
	for i, loc := range locs {
		b.WriteString(body[last:loc[0]])
		b.WriteString(replacements[i])
		last = loc[1]
	}
	b.WriteString(body[last:])
	return b.String()
}

func (t *Transformer) embed(target string) string {
	ref, alias, _ := strings.Cut(target, "|")
	ref, _, _ = strings.Cut(ref, "#")
	ref = strings.TrimSpace(ref)

	alt := strings.TrimSpace(alias)
	if alt == "" {
		alt = path.Base(ref)
	}
	return "![" + alt + "](" + t.AssetURL(ref) + ")"
}

func (t *Transformer) link(target string) string {
	ref, alias, _ := strings.Cut(target, "|")
	ref, anchor, _ := strings.Cut(ref, "#")
	ref = strings.TrimPrefix(strings.TrimSpace(ref), "/")
	ref = strings.TrimSuffix(ref, ".md")
	anchor = strings.TrimSpace(anchor)

	text := strings.TrimSpace(alias)
	if text == "" {
		if ref != "" {
			text = path.Base(ref)
		} else {
			text = anchor
		}
	}

	href := ""
	if ref != "" {
		href = PostPrefix + postid.New(ref)
	}
	if anchor != "" {
		href += "#" + url.PathEscape(anchor)
	}
	return "[" + text + "](" + href + ")"
}

// AssetURL resolves an embed path. Absolute, protocol-relative, remote and
// data URLs pass through; anything else is joined to the base URL with each
// segment percent-encoded.
func (t *Transformer) AssetURL(ref string) string {
	if isExternal(ref) {
		return ref
	}
	segments := strings.Split(ref, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	joined := strings.Join(segments, "/")
	if t.baseURL == "" {
		return joined
	}
	return t.baseURL + "/" + joined
}

func isExternal(ref string) bool {
	lower := strings.ToLower(ref)
	for _, prefix := range []string{"http://", "https://", "data:", "/"} {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}
