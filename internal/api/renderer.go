package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/flosch/pongo2/v6"
	"github.com/gin-gonic/gin"

	"github.com/goatkit/ganttcalendar/internal/apierrors"
)

var filtersOnce sync.Once

func registerFilters() {
	filtersOnce.Do(func() {
		if !pongo2.FilterExists("markdown") {
			_ = pongo2.RegisterFilter("markdown", filterMarkdown)
		}
	})
}

func filterMarkdown(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsSafeValue(RenderMarkdown(in.String())), nil
}

// Renderer renders pongo2 templates from a directory.
type Renderer struct {
	set    *pongo2.TemplateSet
	logger *slog.Logger
}

// NewRenderer loads templates from dir. In debug mode templates are
// re-read on every render.
func NewRenderer(dir string, debug bool, logger *slog.Logger) (*Renderer, error) {
	loader, err := pongo2.NewLocalFileSystemLoader(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to create template loader for %s: %w", dir, err)
	}
	registerFilters()

	set := pongo2.NewSet("ganttcalendar", loader)
	set.Debug = debug
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{set: set, logger: logger}, nil
}

// TemplateSet returns the underlying template set.
func (r *Renderer) TemplateSet() *pongo2.TemplateSet {
	return r.set
}

// HTML renders name with data and writes it with status.
func (r *Renderer) HTML(c *gin.Context, status int, name string, data pongo2.Context) {
	tpl, err := r.set.FromCache(name)
	if err != nil {
		r.logger.Error("template load failed", "template", name, "error", err)
		apierrors.Error(c, apierrors.CodeInternalError)
		return
	}
	out, err := tpl.ExecuteBytes(data)
	if err != nil {
		r.logger.Error("template render failed", "template", name, "error", err)
		apierrors.Error(c, apierrors.CodeInternalError)
		return
	}
	c.Data(status, "text/html; charset=utf-8", out)
}

// statusOrOK maps an unset status to 200.
func statusOrOK(status int) int {
	if status == 0 {
		return http.StatusOK
	}
	return status
}
