package bucketblog

import (
	stderrors "errors"
	"io/fs"
	"net/http"

	"github.com/jmgilman/go/errors"
	"github.com/labstack/echo/v4"

	"github.com/eringen/bucketblog/views"
)

func (a *App) handleBlogs(c echo.Context) error {
	force := parseBoolean(c.QueryParam("force"))
	if force && !a.refreshLimiter.Allow(c.RealIP()) {
		c.Logger().Warnf("forced refresh limited for %s", c.RealIP())
		force = false
	}
	return c.JSON(http.StatusOK, a.Cache.Load(c.Request().Context(), force))
}

func (a *App) handleBlog(c echo.Context) error {
	id := c.Param("id")
	post, err := a.Cache.GetPost(c.Request().Context(), id)
	if err != nil {
		return writeError(c, errors.WithContext(err, "id", id))
	}
	return c.JSON(http.StatusOK, post)
}

func (a *App) handleTags(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string][]string{
		"tags": a.Cache.ListTags(c.Request().Context()),
	})
}

func (a *App) handleBlogsByTag(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string][]Post{
		"posts": a.Cache.ListPosts(c.Request().Context(), c.Param("tag")),
	})
}

func (a *App) handleStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, a.Cache.Stats())
}

func (a *App) handleSitemap(c echo.Context) error {
	return a.renderSitemap(c, a.Cache.ListPosts(c.Request().Context(), ""))
}

func (a *App) handleFeed(c echo.Context) error {
	return a.renderRSS(c, a.Cache.ListPosts(c.Request().Context(), ""))
}

// writeError serializes err as an errors.ErrorResponse with a status derived
// from its code.
func writeError(c echo.Context, err error) error {
	return c.JSON(statusForCode(errors.GetCode(err)), errors.ToJSON(err))
}

func statusForCode(code errors.ErrorCode) int {
	switch code {
	case errors.CodeNotFound:
		return http.StatusNotFound
	case errors.CodeInvalidInput:
		return http.StatusBadRequest
	case errors.CodeUnauthorized:
		return http.StatusUnauthorized
	case errors.CodeForbidden:
		return http.StatusForbidden
	case errors.CodeRateLimit:
		return http.StatusTooManyRequests
	case errors.CodeNetwork, errors.CodeTimeout:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	var he *echo.HTTPError
	switch {
	case stderrors.As(err, &he):
		code = he.Code
	case stderrors.Is(err, fs.ErrNotExist):
		// the SPA fallback found no index.html
		code = http.StatusNotFound
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
	}

	if isAPIPath(c.Request().URL.Path) {
		msg := http.StatusText(code)
		if he != nil {
			if s, ok := he.Message.(string); ok {
				msg = s
			}
		}
		_ = c.JSON(code, errors.ToJSON(errors.New(codeForStatus(code), msg)))
		return
	}

	switch {
	case code == http.StatusNotFound:
		_ = RenderStatus(c, code, views.NotFound(a.Config.Name))
	case code >= 500:
		_ = RenderStatus(c, code, views.ServerError(a.Config.Name))
	default:
		a.Echo.DefaultHTTPErrorHandler(err, c)
	}
}

func codeForStatus(status int) errors.ErrorCode {
	switch status {
	case http.StatusNotFound:
		return errors.CodeNotFound
	case http.StatusBadRequest:
		return errors.CodeInvalidInput
	case http.StatusUnauthorized:
		return errors.CodeUnauthorized
	case http.StatusForbidden:
		return errors.CodeForbidden
	case http.StatusTooManyRequests:
		return errors.CodeRateLimit
	default:
		return errors.CodeInternal
	}
}
