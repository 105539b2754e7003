// Package api is the HTTP front end: it mounts plugin routes on a gin
// engine, renders their views and maps plugin errors to API errors.
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/flosch/pongo2/v6"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/goatkit/ganttcalendar/internal/apierrors"
	"github.com/goatkit/ganttcalendar/internal/metrics"
	"github.com/goatkit/ganttcalendar/internal/middleware"
	"github.com/goatkit/ganttcalendar/internal/plugin"
)

// RouterConfig holds the dependencies of the HTTP server.
type RouterConfig struct {
	Manager *plugin.Manager
	// Host answers permission checks for menu entries.
	Host      plugin.HostAPI
	Renderer  *Renderer
	Tokens    middleware.TokenValidator
	Metrics   *metrics.Metrics
	Gatherer  prometheus.Gatherer
	Logger    *slog.Logger
	StaticDir string
}

type server struct {
	cfg    RouterConfig
	logger *slog.Logger
}

// NewRouter builds the gin engine with the middleware chain, the fixed API
// endpoints and one route per plugin route spec.
func NewRouter(cfg RouterConfig) *gin.Engine {
	s := &server{cfg: cfg, logger: cfg.Logger}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if cfg.Gatherer == nil {
		cfg.Gatherer = prometheus.DefaultGatherer
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger(s.logger))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	if cfg.StaticDir != "" {
		r.Static("/static", cfg.StaticDir)
	}

	authed := r.Group("/")
	authed.Use(middleware.Auth(cfg.Tokens))

	v1 := authed.Group("/api/v1")
	v1.GET("/plugins", s.handlePluginList)
	v1.GET("/menu", s.handleMenu)

	s.mountPluginRoutes(authed)

	r.NoRoute(func(c *gin.Context) {
		apierrors.Error(c, apierrors.CodeNotFound)
	})
	return r
}

func (s *server) mountPluginRoutes(g *gin.RouterGroup) {
	if s.cfg.Manager == nil {
		return
	}
	routes := s.cfg.Manager.Routes()
	for _, route := range routes {
		pluginName := route.PluginName
		handlerName := route.RouteSpec.Handler

		handler := func(c *gin.Context) {
			s.callPlugin(c, pluginName, handlerName)
		}

		path := route.RouteSpec.Path
		switch strings.ToUpper(route.RouteSpec.Method) {
		case http.MethodPost:
			g.POST(path, handler)
		case http.MethodPut:
			g.PUT(path, handler)
		case http.MethodDelete:
			g.DELETE(path, handler)
		case http.MethodPatch:
			g.PATCH(path, handler)
		default:
			g.GET(path, handler)
		}
		s.logger.Debug("plugin route registered",
			"method", route.RouteSpec.Method, "path", path, "plugin", pluginName, "handler", handlerName)
	}
	s.logger.Info("plugin routes registered", "count", len(routes))
}

func (s *server) callPlugin(c *gin.Context, pluginName, fn string) {
	args, err := buildPluginArgs(c)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			apierrors.Error(c, apierrors.CodeRequestTooLarge)
			return
		}
		apierrors.ErrorWithMessage(c, apierrors.CodeInvalidRequest, err.Error())
		return
	}

	out, err := s.cfg.Manager.Call(c.Request.Context(), pluginName, fn, args)
	if err != nil {
		s.writeError(c, err)
		return
	}

	// Numbers stay json.Number so templates print them as written.
	var resp plugin.HTTPResponse
	dec := json.NewDecoder(bytes.NewReader(out))
	dec.UseNumber()
	if err := dec.Decode(&resp); err != nil {
		s.logger.Error("plugin returned malformed response", "plugin", pluginName, "function", fn, "error", err)
		apierrors.Error(c, apierrors.CodeInternalError)
		return
	}
	status := statusOrOK(resp.Status)

	if resp.Template == "" || s.cfg.Renderer == nil || wantsJSON(c) {
		c.JSON(status, resp.Data)
		return
	}

	user := middleware.CurrentUser(c)
	s.cfg.Renderer.HTML(c, status, resp.Template, pongo2.Context{
		"Title":     resp.Title,
		"Data":      resp.Data,
		"User":      user,
		"Path":      c.Request.URL.Path,
		"Menu":      s.visibleMenu(c, "mainnav", user),
		"RequestID": c.GetString(middleware.RequestIDKey),
	})
}

// writeError maps plugin errors onto registered API error codes. Unknown
// errors become internal errors and are logged.
func (s *server) writeError(c *gin.Context, err error) {
	var perr *plugin.Error
	if !errors.As(err, &perr) {
		s.logger.Error("plugin call failed", "path", c.Request.URL.Path, "error", err)
		apierrors.Error(c, apierrors.CodeInternalError)
		return
	}
	if _, ok := apierrors.Registry.Lookup(perr.Code); !ok {
		s.logger.Error("plugin returned unregistered error code", "code", perr.Code, "error", err)
		apierrors.Error(c, apierrors.CodeInternalError)
		return
	}
	if apierrors.Registry.HTTPStatus(perr.Code) >= http.StatusInternalServerError {
		s.logger.Error("plugin call failed", "path", c.Request.URL.Path, "error", err)
	}

	switch {
	case perr.Details != nil:
		apierrors.ErrorWithDetails(c, perr.Code, perr.Details)
	case perr.Message != "":
		apierrors.ErrorWithMessage(c, perr.Code, perr.Message)
	default:
		apierrors.Error(c, perr.Code)
	}
}

// maxBodyBytes caps plugin request bodies. Hook payloads are a handful of
// ticket fields.
const maxBodyBytes = 16 << 10

// buildPluginArgs extracts request data into the plugin's HTTPArgs.
// Repeated query parameters keep their first value.
func buildPluginArgs(c *gin.Context) (json.RawMessage, error) {
	args := plugin.HTTPArgs{
		Method: c.Request.Method,
		Path:   c.Request.URL.Path,
		User:   middleware.CurrentUser(c),
		Query:  make(map[string]string),
	}
	for key, values := range c.Request.URL.Query() {
		if len(values) > 0 {
			args.Query[key] = values[0]
		}
	}
	for _, p := range c.Params {
		args.Query[p.Key] = p.Value
	}

	if c.Request.Body != nil && c.Request.Method != http.MethodGet {
		body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
		if err != nil {
			return nil, err
		}
		if len(body) > 0 {
			if !json.Valid(body) {
				return nil, errors.New("request body is not valid JSON")
			}
			args.Body = body
		}
	}
	return json.Marshal(args)
}

// wantsJSON reports whether the client asked for data instead of a page.
func wantsJSON(c *gin.Context) bool {
	if c.Query("format") == "json" {
		return true
	}
	accept := c.GetHeader("Accept")
	return strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
}
