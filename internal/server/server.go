// Package server exposes widget instances over HTTP: rendered markup, the
// settings form, form submission and the front-end assets.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-logr/logr"

	"github.com/oakwood-commons/mccw/pkg/core"
	"github.com/oakwood-commons/mccw/pkg/host"
	"github.com/oakwood-commons/mccw/pkg/logger"
	"github.com/oakwood-commons/mccw/pkg/widget"
)

const (
	// AssetsPrefix is where registered assets are served.
	AssetsPrefix = "/assets"

	htmlContentType = "text/html; charset=utf-8"
	shutdownTimeout = 5 * time.Second
)

type namerProvider interface {
	Namer(instanceID string) widget.FieldNamer
}

// Handler serves one engine and the assets of a registry.
type Handler struct {
	Engine   *core.Engine
	Registry *host.Registry
	Logger   logr.Logger
}

// NewHandler creates a Handler.
func NewHandler(e *core.Engine, reg *host.Registry, lgr logr.Logger) *Handler {
	return &Handler{Engine: e, Registry: reg, Logger: lgr}
}

// SetupRoutes registers the widget and asset routes on r.
func SetupRoutes(r *gin.RouterGroup, h *Handler) {
	r.GET("/health", h.Health)
	r.GET("/widgets", h.ListInstances)
	r.GET("/widgets/:id", h.Display)
	r.GET("/widgets/:id/form", h.Form)
	r.POST("/widgets/:id", h.Update)
	r.DELETE("/widgets/:id", h.Delete)
	r.GET(AssetsPrefix+"/*path", h.Asset)
}

// NewRouter returns a gin engine with recovery, request logging and the
// routes of h.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(h.Logger))
	SetupRoutes(&r.RouterGroup, h)
	return r
}

func requestLogger(lgr logr.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reqLgr := lgr.WithValues("method", c.Request.Method, "path", c.Request.URL.Path)
		c.Request = c.Request.WithContext(logger.WithLogger(c.Request.Context(), &reqLgr))
		c.Next()
		reqLgr.V(1).Info("request served", "status", c.Writer.Status(), "duration", time.Since(start).String())
	}
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListInstances returns the ids of instances with stored settings.
func (h *Handler) ListInstances(c *gin.Context) {
	ids, err := h.Engine.Instances(c.Request.Context())
	if err != nil {
		logger.FromContext(c.Request.Context()).Error(err, "listing instances")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list instances"})
		return
	}
	if ids == nil {
		ids = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"instances": ids})
}

// Display writes the instance's widget in the default wrapper and
// advertises the registered stylesheets in Link headers.
func (h *Handler) Display(c *gin.Context) {
	for _, a := range h.Registry.Assets() {
		c.Writer.Header().Add("Link", "<"+a.URL(AssetsPrefix)+">; rel=preload; as=style")
	}
	c.Header("Content-Type", htmlContentType)
	c.Status(http.StatusOK)
	if err := h.Engine.Display(c.Request.Context(), c.Writer, c.Param("id"), widget.DefaultArgs()); err != nil {
		logger.FromContext(c.Request.Context()).Error(err, "writing widget")
	}
}

// Form writes the settings form of an instance.
func (h *Handler) Form(c *gin.Context) {
	form := h.Engine.Form(c.Request.Context(), c.Param("id"))
	c.Data(http.StatusOK, htmlContentType, []byte(form))
}

type updateRequest struct {
	Title     *string `json:"title"`
	Columns   *int    `json:"columns"`
	ShowCount *bool   `json:"showcount"`
}

func (r updateRequest) raw() map[string]string {
	raw := map[string]string{}
	if r.Title != nil {
		raw[widget.FieldTitle] = *r.Title
	}
	if r.Columns != nil {
		raw[widget.FieldColumns] = strconv.Itoa(*r.Columns)
	}
	if r.ShowCount != nil && *r.ShowCount {
		raw[widget.FieldShowCount] = widget.CheckboxOn
	}
	return raw
}

// Update applies a submitted settings form, or a JSON body with title,
// columns and showcount, and returns the saved settings.
func (h *Handler) Update(c *gin.Context) {
	id := c.Param("id")
	var raw map[string]string

	if strings.HasPrefix(c.ContentType(), gin.MIMEJSON) {
		var req updateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
			return
		}
		raw = req.raw()
	} else {
		if err := c.Request.ParseForm(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form"})
			return
		}
		submitted := make(map[string]string, len(c.Request.PostForm))
		for k, v := range c.Request.PostForm {
			if len(v) > 0 {
				submitted[k] = v[len(v)-1]
			}
		}
		raw = widget.FormValues(h.namer(id), submitted)
	}

	s, err := h.Engine.Update(c.Request.Context(), id, raw)
	if err != nil {
		logger.FromContext(c.Request.Context()).Error(err, "saving settings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save settings"})
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *Handler) namer(id string) widget.FieldNamer {
	if np, ok := h.Engine.Widget.(namerProvider); ok {
		return np.Namer(id)
	}
	return widget.InstanceNamer{Base: h.Engine.Widget.ID(), Instance: id}
}

// Delete removes an instance's settings.
func (h *Handler) Delete(c *gin.Context) {
	if err := h.Engine.Delete(c.Request.Context(), c.Param("id")); err != nil {
		logger.FromContext(c.Request.Context()).Error(err, "deleting settings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete settings"})
		return
	}
	c.Status(http.StatusNoContent)
}

// Asset serves a registered asset. The version is part of the ETag.
func (h *Handler) Asset(c *gin.Context) {
	a, ok := h.Registry.Asset(c.Param("path"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "asset not found"})
		return
	}
	etag := `"` + a.Handle + "-" + a.Version + `"`
	c.Header("ETag", etag)
	c.Header("Cache-Control", "public, max-age=31536000")
	if c.GetHeader("If-None-Match") == etag {
		c.Status(http.StatusNotModified)
		return
	}
	c.Data(http.StatusOK, a.ContentType, a.Content)
}

// Run serves router on addr until ctx is cancelled, then shuts down.
func Run(ctx context.Context, addr string, router http.Handler, lgr logr.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		lgr.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}
