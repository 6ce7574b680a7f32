package bucketblog

import (
	"net/url"
	"path"
	"time"

	"github.com/araddon/dateparse"
)

// BuildURL joins a base URL with path segments.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) == 0 && u.Path == "" {
		u.Path = "/"
	}
	return u.String()
}

// parseBoolean recognises exactly "true"; anything else, including "TRUE"
// or "1", is false.
func parseBoolean(s string) bool {
	return s == "true"
}

// postTime parses a post's date string, reporting false when it is not a
// recognizable date. Ambiguous forms such as "1/2/3/4" and years outside
// 1000-9999 are rejected so they fall back instead of sorting as year 0.
func postTime(date string) (time.Time, bool) {
	if date == "" {
		return time.Time{}, false
	}
	if _, err := dateparse.ParseStrict(date); err != nil {
		return time.Time{}, false
	}
	t, err := dateparse.ParseIn(date, time.UTC)
	if err != nil || t.Year() < 1000 || t.Year() > 9999 {
		return time.Time{}, false
	}
	return t, true
}
