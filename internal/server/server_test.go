package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/mccw/pkg/core"
	"github.com/oakwood-commons/mccw/pkg/host"
	"github.com/oakwood-commons/mccw/pkg/store"
	"github.com/oakwood-commons/mccw/pkg/widget"
)

func setupTestRouter(t *testing.T) (*gin.Engine, store.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := store.NewMemory()
	w := widget.New()
	e, err := core.New(core.WithStore(st), core.WithWidget(w), core.WithSource(core.StaticSource{
		{ID: "1", Name: "News", Link: "/news/", Count: 5},
		{ID: "2", Name: "Sport", Link: "/sport/", Count: 2},
		{ID: "3", Name: "Travel", Link: "/travel/", Count: 0},
	}))
	require.NoError(t, err)

	reg := host.NewRegistry()
	require.NoError(t, host.Setup(reg, w))
	return NewRouter(NewHandler(e, reg, logr.Discard())), st
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	r, _ := setupTestRouter(t)
	rec := serve(r, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestDisplayDefaults(t *testing.T) {
	r, _ := setupTestRouter(t)
	rec := serve(r, httptest.NewRequest(http.MethodGet, "/widgets/sidebar-1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Link"), "/assets/css/frontend.css?ver=")

	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, `<section class="widget widget_mccw"><h2 class="widget-title">Categories</h2>`))
	assert.Equal(t, 2, strings.Count(body, "<ul "))
	assert.NotContains(t, body, "postcount")
}

func TestFormUpdateRoundTrip(t *testing.T) {
	r, st := setupTestRouter(t)

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/widgets/sidebar-1/form", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="widget-mccw[sidebar-1][columns]"`)

	form := url.Values{}
	form.Set("widget-mccw[sidebar-1][title]", "Topics")
	form.Set("widget-mccw[sidebar-1][columns]", "3")
	form.Set("widget-mccw[sidebar-1][showcount]", "1")
	form.Set("widget-mccw[other][title]", "ignored")
	req := httptest.NewRequest(http.MethodPost, "/widgets/sidebar-1", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = serve(r, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"title":"Topics","columns":3,"showcount":true}`, rec.Body.String())

	saved, err := st.Get(context.Background(), "sidebar-1")
	require.NoError(t, err)
	assert.Equal(t, widget.Settings{Title: "Topics", Columns: 3, ShowCount: true}, saved)

	rec = serve(r, httptest.NewRequest(http.MethodGet, "/widgets/sidebar-1", nil))
	body := rec.Body.String()
	assert.Contains(t, body, "<h2 class=\"widget-title\">Topics</h2>")
	assert.Equal(t, 3, strings.Count(body, "<ul "))
	assert.Contains(t, body, `<span class="postcount">(5)</span>`)

	rec = serve(r, httptest.NewRequest(http.MethodGet, "/widgets/sidebar-1/form", nil))
	assert.Contains(t, rec.Body.String(), `checked="checked"`)
	assert.Contains(t, rec.Body.String(), `value="Topics"`)
}

func TestUpdateJSON(t *testing.T) {
	r, _ := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/widgets/footer", strings.NewReader(`{"title":"<b>Hi</b>","columns":0}`))
	req.Header.Set("Content-Type", "application/json")
	rec := serve(r, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"title":"Hi","columns":1,"showcount":false}`, rec.Body.String())

	req = httptest.NewRequest(http.MethodPost, "/widgets/footer", strings.NewReader(`{"columns":"two"}`))
	req.Header.Set("Content-Type", "application/json")
	rec = serve(r, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListAndDelete(t *testing.T) {
	r, st := setupTestRouter(t)
	require.NoError(t, st.Set(context.Background(), "b", widget.DefaultSettings()))
	require.NoError(t, st.Set(context.Background(), "a", widget.DefaultSettings()))

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/widgets", nil))
	assert.JSONEq(t, `{"instances":["a","b"]}`, rec.Body.String())

	rec = serve(r, httptest.NewRequest(http.MethodDelete, "/widgets/a", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = serve(r, httptest.NewRequest(http.MethodGet, "/widgets", nil))
	assert.JSONEq(t, `{"instances":["b"]}`, rec.Body.String())
}

func TestAssets(t *testing.T) {
	r, _ := setupTestRouter(t)

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/assets/css/frontend.css", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/css; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), ".mccw-col-first")
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)

	req := httptest.NewRequest(http.MethodGet, "/assets/css/frontend.css", nil)
	req.Header.Set("If-None-Match", etag)
	rec = serve(r, req)
	assert.Equal(t, http.StatusNotModified, rec.Code)

	rec = serve(r, httptest.NewRequest(http.MethodGet, "/assets/css/missing.css", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRunStopsOnCancel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, "127.0.0.1:0", gin.New(), logr.Discard())
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
