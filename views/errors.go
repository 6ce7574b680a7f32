// Package views renders the HTML pages the server produces itself. Posts are
// rendered by the front-end; these cover the paths it never sees.
package views

import (
	"context"
	"html"
	"io"

	"github.com/a-h/templ"
)

// NotFound is the page for unknown non-API paths.
func NotFound(siteName string) templ.Component {
	return errorPage(siteName, "Page not found", "The page you are looking for does not exist.")
}

// ServerError is the page for failed non-API requests.
func ServerError(siteName string) templ.Component {
	return errorPage(siteName, "Something went wrong", "Please try again in a moment.")
}

func errorPage(siteName, heading, detail string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		site := html.EscapeString(siteName)
		_, err := io.WriteString(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`+
			`<meta name="viewport" content="width=device-width, initial-scale=1">`+
			`<title>`+html.EscapeString(heading)+` | `+site+`</title></head>`+
			`<body><main><h1>`+html.EscapeString(heading)+`</h1>`+
			`<p>`+html.EscapeString(detail)+`</p>`+
			`<p><a href="/">Back to `+site+`</a></p></main></body></html>`)
		return err
	})
}
