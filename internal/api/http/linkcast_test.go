package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/RemoteBrowser/internal/domain/session"
	"github.com/GriffinCanCode/RemoteBrowser/internal/shared/id"
)

type fakeLauncher struct {
	mu     sync.Mutex
	urls   []string
	err    error
	active *session.Info
}

func (f *fakeLauncher) Launch(link string) (session.Info, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return session.Info{}, f.err
	}
	f.urls = append(f.urls, link)
	return session.Info{ID: id.NewSessionID(), URL: link, StartedAt: time.Now()}, nil
}

func (f *fakeLauncher) Active() (session.Info, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.active == nil {
		return session.Info{}, false
	}
	return *f.active, true
}

func (f *fakeLauncher) launched() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.urls...)
}

func newRouter(launcher Launcher) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.SetHTMLTemplate(Templates())
	NewHandlers(launcher, nil).Register(r)
	return r
}

func postForm(r http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", formContentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func get(r http.Handler, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestIndex(t *testing.T) {
	r := newRouter(&fakeLauncher{})

	w := get(r, "/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `action="/linkcast.html"`)
	assert.NotContains(t, w.Body.String(), `id="status"`)

	w = get(r, "/?url="+url.QueryEscape("https://example.com/a"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `id="status"`)
	assert.Contains(t, w.Body.String(), `value="https://example.com/a"`)
}

func TestHTMLFormRedirects(t *testing.T) {
	launcher := &fakeLauncher{}
	r := newRouter(launcher)

	w := postForm(r, HTMLPath, url.Values{"url": {"https://example.com/?q=a b"}})
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/?url=https%3A%2F%2Fexample.com%2F%3Fq%3Da+b", w.Header().Get("Location"))
	assert.Equal(t, []string{"https://example.com/?q=a b"}, launcher.launched())
}

func TestXHPReturnsJSON(t *testing.T) {
	launcher := &fakeLauncher{}
	r := newRouter(launcher)

	w := postForm(r, XHPPath, url.Values{"url": {"https://example.com"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{}`, w.Body.String())
	assert.Equal(t, []string{"https://example.com"}, launcher.launched())
}

func TestCloseLaunchesFromQuery(t *testing.T) {
	launcher := &fakeLauncher{}
	r := newRouter(launcher)

	w := get(r, ClosePath+"?url="+url.QueryEscape("https://example.com"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "window.close()")
	assert.Equal(t, []string{"https://example.com"}, launcher.launched())
}

func TestMissingURL(t *testing.T) {
	launcher := &fakeLauncher{}
	r := newRouter(launcher)

	assert.Equal(t, http.StatusBadRequest, get(r, ClosePath).Code)
	assert.Equal(t, http.StatusBadRequest, postForm(r, XHPPath, url.Values{}).Code)
	assert.Equal(t, http.StatusBadRequest, postForm(r, HTMLPath, url.Values{"url": {"  "}}).Code)
	assert.Empty(t, launcher.launched())
}

func TestPostRequiresForm(t *testing.T) {
	launcher := &fakeLauncher{}
	r := newRouter(launcher)

	req := httptest.NewRequest(http.MethodPost, XHPPath, strings.NewReader(`{"url":"https://example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "application/json")

	req = httptest.NewRequest(http.MethodPost, HTMLPath, strings.NewReader("url=x"))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Empty(t, launcher.launched())
}

func TestLaunchErrors(t *testing.T) {
	r := newRouter(&fakeLauncher{err: session.ErrBusy})
	assert.Equal(t, http.StatusConflict, postForm(r, XHPPath, url.Values{"url": {"https://example.com"}}).Code)

	r = newRouter(&fakeLauncher{err: errors.New("browser path is not configured")})
	assert.Equal(t, http.StatusInternalServerError, postForm(r, HTMLPath, url.Values{"url": {"https://example.com"}}).Code)
}

func TestUnknownRoutes(t *testing.T) {
	r := newRouter(&fakeLauncher{})

	assert.Equal(t, http.StatusNotFound, get(r, "/nope").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, get(r, XHPPath).Code)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, IndexPath, nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestHealth(t *testing.T) {
	launcher := &fakeLauncher{}
	r := newRouter(launcher)

	w := get(r, "/health")
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.NotContains(t, body, "session")

	launcher.active = &session.Info{ID: id.NewSessionID(), URL: "https://example.com"}
	w = get(r, "/health")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Contains(t, body, "session")
	assert.Equal(t, "https://example.com", body["session"].(map[string]any)["url"])
}
