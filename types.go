package bucketblog

import "time"

// Post is a published blog post built from one Markdown document.
type Post struct {
	ID       string   `json:"id"`
	PostPath string   `json:"postPath"`
	Title    string   `json:"title"`
	Excerpt  string   `json:"excerpt"`
	Content  string   `json:"content"`
	Date     string   `json:"date"`
	Tags     []string `json:"tags"`
	ReadTime string   `json:"readTime"`
}

// BlogData is the published view: every post carrying the blog tag, newest
// first, and the tags they use. A BlogData handed out by the cache is shared
// and must not be modified.
type BlogData struct {
	Posts         []Post   `json:"posts"`
	AvailableTags []string `json:"availableTags"`
}

// Entry is one document in the internal cache.
type Entry struct {
	Key          string
	LastModified time.Time // as reported by the store; zero means absent
	Published    time.Time // instant the post sorts by
	Post         Post
}

// CacheStats summarizes the cache for the status endpoint.
type CacheStats struct {
	Posts          int       `json:"posts"`
	Tags           int       `json:"tags"`
	LastSync       time.Time `json:"lastSync"`
	Fresh          bool      `json:"fresh"`
	IgnorePatterns []string  `json:"ignorePatterns"`
}
