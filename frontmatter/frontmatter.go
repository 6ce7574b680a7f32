// Package frontmatter reads the metadata block at the top of a Markdown
// document and derives the plain-text statistics shown in post listings.
//
// The accepted grammar is deliberately small: "key: value" scalars, inline
// "[a, b]" lists and block lists of "- item" lines. It is not YAML.
package frontmatter

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	delimiter = "---"

	// DefaultExcerptLength is the excerpt size used when none is configured.
	DefaultExcerptLength = 150

	// charsPerMinute drives the read time estimate.
	charsPerMinute = 200
)

var (
	reHeading  = regexp.MustCompile(`#{1,6}\s`)
	reStrong   = regexp.MustCompile(`\*\*|__`)
	reEmphasis = regexp.MustCompile(`\*|_`)
	reLink     = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)

	quotes = strings.NewReplacer(`'`, "", `"`, "")
)

// locate finds the front-matter block. It returns the text between the
// delimiter lines and the offset of the first body byte.
func locate(content string) (block string, bodyStart int, ok bool) {
	first, _, found := strings.Cut(content, "\n")
	if !found || strings.TrimSuffix(first, "\r") != delimiter {
		return "", 0, false
	}
	start := len(first) + 1
	lines := 0
	for pos := start; ; {
		line, _, more := strings.Cut(content[pos:], "\n")
		next := pos + len(line) + 1
		// The block holds at least one line, so "---\n---" is not front-matter.
		if lines > 0 && strings.TrimSuffix(line, "\r") == delimiter {
			if !more {
				next = len(content)
			}
			return content[start : pos-1], next, true
		}
		if !more {
			return "", 0, false
		}
		lines++
		pos = next
	}
}

// Parse extracts the front-matter of content. ok is false when content has no
// front-matter block, which is distinct from a block without keys.
func Parse(content string) (md Metadata, ok bool) {
	block, _, ok := locate(content)
	if !ok {
		return nil, false
	}

	md = Metadata{}
	current := ""
	haveKey := false
	for _, line := range strings.Split(block, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if haveKey && strings.HasPrefix(trimmed, "-") {
			item := quotes.Replace(strings.TrimSpace(trimmed[1:]))
			md[current] = md[current].append(item)
			continue
		}

		key, raw, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		raw = strings.TrimSpace(raw)
		current, haveKey = key, key != ""

		switch {
		case raw == "":
			md[key] = PendingValue()
		case strings.HasPrefix(raw, "[") && strings.HasSuffix(raw, "]"):
			parts := strings.Split(raw[1:len(raw)-1], ",")
			items := make([]string, len(parts))
			for i, p := range parts {
				items[i] = quotes.Replace(strings.TrimSpace(p))
			}
			md[key] = ListValue(items...)
		default:
			md[key] = ScalarValue(quotes.Replace(raw))
		}
	}
	return md, true
}

// Strip returns content without its front-matter block. Content without
// front-matter is returned unchanged.
func Strip(content string) string {
	_, bodyStart, ok := locate(content)
	if !ok {
		return content
	}
	return content[bodyStart:]
}

// Excerpt returns a plain-text summary of content at most max runes long,
// followed by "..." when it was cut. A non-positive max selects
// DefaultExcerptLength.
func Excerpt(content string, max int) string {
	if max <= 0 {
		max = DefaultExcerptLength
	}
	plain := Strip(content)
	plain = reHeading.ReplaceAllString(plain, "")
	plain = reStrong.ReplaceAllString(plain, "")
	plain = reEmphasis.ReplaceAllString(plain, "")
	plain = reLink.ReplaceAllString(plain, "$1")
	plain = strings.TrimSpace(plain)

	if utf8.RuneCountInString(plain) <= max {
		return plain
	}
	return string([]rune(plain)[:max]) + "..."
}

// ReadTime estimates reading time at 200 characters per minute, rounded up.
func ReadTime(content string) string {
	n := utf8.RuneCountInString(content)
	minutes := (n + charsPerMinute - 1) / charsPerMinute
	return fmt.Sprintf("%d min read", minutes)
}
