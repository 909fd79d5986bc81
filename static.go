package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/material-motion/motion-site/pkg/config"
	"github.com/material-motion/motion-site/pkg/container"
)

// attachStatic mounts the on-disk bundle and support-file directories under
// their public prefixes. Only deployed instances serve them; in local mode
// the page points at the development bundle server instead.
func attachStatic(engine *gin.Engine, cfg *config.AppConfig, mode container.Mode, logger *slog.Logger) {
	if mode.IsLocal() {
		return
	}
	mounts := []struct {
		prefix string
		dir    string
	}{
		{prefix: cfg.DistPath(), dir: cfg.DistDir()},
		{prefix: cfg.StaticPath(), dir: cfg.StaticDir()},
	}
	for _, m := range mounts {
		if m.dir == "" {
			continue
		}
		if st, err := os.Stat(m.dir); err != nil || !st.IsDir() {
			logger.Warn("static directory unavailable, not mounting", "prefix", m.prefix, "dir", m.dir)
			continue
		}
		route := strings.TrimSuffix(m.prefix, "/")
		engine.Static(route, m.dir)
		logger.Debug("mounted static directory", "prefix", m.prefix, "dir", m.dir)
	}
}
