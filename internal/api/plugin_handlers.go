package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/goatkit/ganttcalendar/internal/middleware"
	"github.com/goatkit/ganttcalendar/internal/plugin"
)

// MenuEntry is a navigation link visible to the current user.
type MenuEntry struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Icon   string `json:"icon,omitempty"`
	Path   string `json:"path"`
	Plugin string `json:"plugin"`
}

// handlePluginList returns all registered plugins.
// GET /api/v1/plugins
func (s *server) handlePluginList(c *gin.Context) {
	if s.cfg.Manager == nil {
		c.JSON(http.StatusOK, gin.H{"plugins": []any{}})
		return
	}

	manifests := s.cfg.Manager.List()
	plugins := make([]map[string]any, 0, len(manifests))
	for _, m := range manifests {
		plugins = append(plugins, map[string]any{
			"name":        m.Name,
			"version":     m.Version,
			"description": m.Description,
			"author":      m.Author,
			"license":     m.License,
			"routes":      m.Routes,
			"menuItems":   m.MenuItems,
		})
	}
	c.JSON(http.StatusOK, gin.H{"plugins": plugins})
}

// handleMenu returns the menu entries of a location the user may see.
// GET /api/v1/menu?location=mainnav
func (s *server) handleMenu(c *gin.Context) {
	location := c.DefaultQuery("location", "mainnav")
	c.JSON(http.StatusOK, gin.H{"items": s.visibleMenu(c, location, middleware.CurrentUser(c))})
}

func (s *server) visibleMenu(c *gin.Context, location, user string) []MenuEntry {
	entries := []MenuEntry{}
	if s.cfg.Manager == nil {
		return entries
	}
	for _, item := range s.cfg.Manager.MenuItems(location) {
		if !s.allowed(c, user, item) {
			continue
		}
		entries = append(entries, MenuEntry{
			ID:     item.ID,
			Label:  item.Label,
			Icon:   item.Icon,
			Path:   item.Path,
			Plugin: item.PluginName,
		})
	}
	return entries
}

func (s *server) allowed(c *gin.Context, user string, item plugin.PluginMenuItem) bool {
	if item.Permission == "" {
		return true
	}
	if s.cfg.Host == nil {
		return false
	}
	ok, err := s.cfg.Host.HasPermission(c.Request.Context(), user, item.Permission)
	if err != nil {
		s.logger.Warn("menu permission check failed", "item", item.ID, "user", user, "error", err)
		return false
	}
	return ok
}
