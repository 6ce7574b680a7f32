package bucketblog

import (
	"strings"
	"time"

	"github.com/eringen/bucketblog/frontmatter"
	"github.com/eringen/bucketblog/objstore"
	"github.com/eringen/bucketblog/postid"
)

// PublishTag marks a document as a blog post. Matched case-insensitively.
const PublishTag = "blog"

// isoMillis matches JavaScript's Date.prototype.toISOString.
const isoMillis = "2006-01-02T15:04:05.000Z"

// buildEntry turns a raw document into a cache entry. ok is false when the
// document has no front-matter, no tags list, or no blog tag.
func (c *BlogCache) buildEntry(obj objstore.Entry, raw string, now time.Time) (Entry, bool) {
	md, ok := frontmatter.Parse(raw)
	if !ok {
		return Entry{}, false
	}
	tags, ok := md.List("tags")
	if !ok || !hasTag(tags, PublishTag) {
		return Entry{}, false
	}

	body := frontmatter.Strip(raw)
	readTime := frontmatter.ReadTime(body)
	if c.transformer != nil {
		body = c.transformer.Transform(body)
	}

	fallback := obj.LastModified
	if fallback.IsZero() {
		fallback = now
	}
	published := fallback
	date, ok := md.String("date")
	if ok {
		if t, ok := postTime(date); ok {
			published = t
		}
	} else {
		date = fallback.UTC().Format(isoMillis)
	}

	title, ok := md.String("title")
	if !ok {
		title = obj.Key
	}

	postPath := objstore.LogicalPath(obj.Key)
	return Entry{
		Key:          obj.Key,
		LastModified: obj.LastModified,
		Published:    published,
		Post: Post{
			ID:       postid.New(postPath),
			PostPath: postPath,
			Title:    title,
			Excerpt:  frontmatter.Excerpt(raw, c.excerptLength),
			Content:  body,
			Date:     date,
			Tags:     append([]string(nil), tags...),
			ReadTime: readTime,
		},
	}, true
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}
