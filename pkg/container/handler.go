package container

import (
	"bytes"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/material-motion/motion-site/pkg/metrics"
)

const allowedMethods = "GET, HEAD"

// Handler serves the container page for every path ending in "/".
type Handler struct {
	renderer *Renderer
	mode     Mode
	paths    AssetPaths
	bindings map[string]string
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// NewHandler binds the renderer to the paths for mode. m may be nil.
func NewHandler(renderer *Renderer, mode Mode, paths AssetPaths, logger *slog.Logger, m *metrics.Metrics) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		renderer: renderer,
		mode:     mode,
		paths:    paths,
		bindings: paths.Bindings(),
		logger:   logger,
		metrics:  m,
	}
}

func (h *Handler) Mode() Mode { return h.mode }

func (h *Handler) Paths() AssetPaths { return h.paths }

// MatchesPath reports whether path matches (.*)/ , the page's only route.
func MatchesPath(path string) bool {
	return strings.HasSuffix(path, "/")
}

// Handle renders the container page. Paths that do not match are left
// untouched so gin's default not-found response applies; it is meant to be
// installed as the engine's NoRoute handler. A matching path with any method
// other than GET or HEAD gets 405.
func (h *Handler) Handle(c *gin.Context) {
	if !MatchesPath(c.Request.URL.Path) {
		return
	}
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		c.Header("Allow", allowedMethods)
		c.AbortWithStatus(http.StatusMethodNotAllowed)
		return
	}

	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, h.bindings); err != nil {
		h.observe("error")
		h.logger.Error("failed to render container page", "path", c.Request.URL.Path, "error", err)
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	h.observe("ok")

	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (h *Handler) observe(result string) {
	if h.metrics == nil {
		return
	}
	h.metrics.Renders.WithLabelValues(h.mode.String(), result).Inc()
}
