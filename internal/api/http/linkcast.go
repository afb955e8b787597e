// Package http serves the linkcast pages that let phones and desktop
// browsers open a link in the remote-controlled browser.
package http

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/RemoteBrowser/internal/domain/session"
	"github.com/GriffinCanCode/RemoteBrowser/internal/infrastructure/logging"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses the embedded linkcast pages.
func Templates() *template.Template {
	return template.Must(template.ParseFS(templateFS, "templates/*.html"))
}

const (
	IndexPath = "/"
	ClosePath = "/linkcast.close"
	XHPPath   = "/linkcast.xhp"
	HTMLPath  = "/linkcast.html"

	formContentType = "application/x-www-form-urlencoded"
	pageTitle       = "Linkcast"
)

// Launcher starts browser sessions. *session.Manager implements it.
type Launcher interface {
	Launch(url string) (session.Info, error)
	Active() (session.Info, bool)
}

// Handlers serves the linkcast routes.
type Handlers struct {
	launcher Launcher
	logger   *logging.Logger
}

// NewHandlers creates linkcast handlers.
func NewHandlers(launcher Launcher, logger *logging.Logger) *Handlers {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Handlers{launcher: launcher, logger: logger.Named("linkcast")}
}

// Register mounts the linkcast routes on r. The engine must have
// HandleMethodNotAllowed set for wrong methods to get 405, and the
// templates from Templates loaded.
func (h *Handlers) Register(r gin.IRoutes) {
	r.GET(IndexPath, h.Index)
	r.GET(ClosePath, h.Close)
	r.POST(XHPPath, requireForm, h.XHP)
	r.POST(HTMLPath, requireForm, h.HTML)
	r.GET("/health", h.Health)
}

// Index serves the page with the link form. A url query parameter marks the
// link as sent.
func (h *Handlers) Index(c *gin.Context) {
	link, sent := c.GetQuery("url")
	c.HTML(http.StatusOK, "index.html", gin.H{
		"Title":       pageTitle,
		"URL":         link,
		"Sent":        sent,
		"Bookmarklet": bookmarklet("http://" + c.Request.Host),
	})
}

// bookmarklet returns a javascript: link that casts the current page through
// the close route of the server at origin.
func bookmarklet(origin string) template.URL {
	target := strconv.Quote(origin + ClosePath + "?url=")
	return template.URL("javascript:void(window.open(" + target +
		"+encodeURIComponent(location.href),'linkcast','width=200,height=100'))")
}

// Close launches the link from a query parameter and serves a page that
// closes itself. Bookmarklets use it from secure pages, which may not post
// to plain HTTP.
func (h *Handlers) Close(c *gin.Context) {
	link, ok := h.launch(c, c.Query("url"))
	if !ok {
		return
	}
	h.logger.Debug("Served close page", zap.String("url", link))
	c.HTML(http.StatusOK, "close.html", gin.H{"Title": pageTitle})
}

// XHP launches the link from a form post made by script.
func (h *Handlers) XHP(c *gin.Context) {
	if _, ok := h.launch(c, c.PostForm("url")); !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

// HTML launches the link from the form and redirects back to the index.
func (h *Handlers) HTML(c *gin.Context) {
	link, ok := h.launch(c, c.PostForm("url"))
	if !ok {
		return
	}
	c.Redirect(http.StatusFound, IndexPath+"?"+url.Values{"url": {link}}.Encode())
}

// Health reports liveness and the running session.
func (h *Handlers) Health(c *gin.Context) {
	body := gin.H{"status": "ok"}
	if info, ok := h.launcher.Active(); ok {
		body["session"] = info
	}
	c.JSON(http.StatusOK, body)
}

// launch starts a session for link and writes an error response when it
// cannot.
func (h *Handlers) launch(c *gin.Context, link string) (string, bool) {
	link = strings.TrimSpace(link)
	if link == "" {
		c.String(http.StatusBadRequest, "Missing parameter: url")
		return "", false
	}

	info, err := h.launcher.Launch(link)
	switch {
	case errors.Is(err, session.ErrBusy):
		c.String(http.StatusConflict, err.Error())
		return "", false
	case err != nil:
		_ = c.Error(err)
		c.String(http.StatusInternalServerError, "Failed to open the link")
		return "", false
	}

	h.logger.Info("Linkcast", zap.String("url", link), zap.String("session", info.ID.String()))
	return link, true
}

// requireForm rejects posts that are not URL-encoded forms.
func requireForm(c *gin.Context) {
	if ct := c.ContentType(); ct != formContentType {
		if ct == "" {
			c.String(http.StatusBadRequest, "Missing content type")
		} else {
			c.String(http.StatusBadRequest, "Unsupported content type: %s", ct)
		}
		c.Abort()
		return
	}
	c.Next()
}
