package plugin

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/goatkit/ganttcalendar/internal/apierrors"
)

// CallObserver is notified after every plugin call.
type CallObserver interface {
	ObservePluginCall(plugin, fn string, d time.Duration, err error)
}

// Manager handles plugin lifecycle: registration, invocation and shutdown.
type Manager struct {
	mu       sync.RWMutex
	plugins  map[string]*registeredPlugin
	order    []string
	host     HostAPI
	observer CallObserver
}

type registeredPlugin struct {
	plugin   Plugin
	manifest GKRegistration
}

// NewManager creates a plugin manager with the given host API.
func NewManager(host HostAPI) *Manager {
	return &Manager{
		plugins: make(map[string]*registeredPlugin),
		host:    host,
	}
}

// SetObserver installs a call observer, typically the metrics collector.
func (m *Manager) SetObserver(o CallObserver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observer = o
}

// Register initializes p and makes it callable. The plugin's error codes
// are added to the API error registry under its name.
func (m *Manager) Register(ctx context.Context, p Plugin) error {
	manifest := p.GKRegister()
	if manifest.Name == "" {
		return errors.New("plugin registration has no name")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.plugins[manifest.Name]; exists {
		return fmt.Errorf("plugin %q already registered", manifest.Name)
	}

	if err := p.Init(ctx, m.host); err != nil {
		return fmt.Errorf("plugin %q init failed: %w", manifest.Name, err)
	}

	codes := make([]apierrors.ErrorCode, 0, len(manifest.ErrorCodes))
	for _, ec := range manifest.ErrorCodes {
		codes = append(codes, apierrors.ErrorCode{Code: ec.Code, Message: ec.Message, HTTPStatus: ec.HTTPStatus})
	}
	apierrors.Registry.RegisterPlugin(manifest.Name, codes)

	m.plugins[manifest.Name] = &registeredPlugin{plugin: p, manifest: manifest}
	m.order = append(m.order, manifest.Name)
	return nil
}

// Get returns a plugin by name.
func (m *Manager) Get(name string) (Plugin, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rp, exists := m.plugins[name]
	if !exists {
		return nil, false
	}
	return rp.plugin, true
}

// Call invokes a function on a specific plugin.
func (m *Manager) Call(ctx context.Context, pluginName, fn string, args []byte) ([]byte, error) {
	m.mu.RLock()
	rp, exists := m.plugins[pluginName]
	observer := m.observer
	m.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("plugin %q not found", pluginName)
	}

	ctx = context.WithValue(ctx, CallerKey, pluginName)
	start := time.Now()
	out, err := rp.plugin.Call(ctx, fn, args)
	if observer != nil {
		observer.ObservePluginCall(pluginName, fn, time.Since(start), err)
	}
	return out, err
}

// List returns all registered plugin manifests in registration order.
func (m *Manager) List() []GKRegistration {
	m.mu.RLock()
	defer m.mu.RUnlock()

	manifests := make([]GKRegistration, 0, len(m.order))
	for _, name := range m.order {
		manifests = append(manifests, m.plugins[name].manifest)
	}
	return manifests
}

// PluginRoute pairs a route spec with its plugin name.
type PluginRoute struct {
	PluginName string
	RouteSpec  RouteSpec
}

// Routes returns all routes from all plugins.
func (m *Manager) Routes() []PluginRoute {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var routes []PluginRoute
	for _, name := range m.order {
		for _, r := range m.plugins[name].manifest.Routes {
			routes = append(routes, PluginRoute{PluginName: name, RouteSpec: r})
		}
	}
	return routes
}

// PluginMenuItem pairs a menu item spec with its plugin name.
type PluginMenuItem struct {
	PluginName string
	MenuItemSpec
}

// MenuItems returns the menu items for a location sorted by Order.
func (m *Manager) MenuItems(location string) []PluginMenuItem {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var items []PluginMenuItem
	for _, name := range m.order {
		for _, mi := range m.plugins[name].manifest.MenuItems {
			if mi.Location == location {
				items = append(items, PluginMenuItem{PluginName: name, MenuItemSpec: mi})
			}
		}
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Order < items[j].Order })
	return items
}

// ShutdownAll shuts plugins down in reverse registration order and
// returns the joined errors.
func (m *Manager) ShutdownAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for i := len(m.order) - 1; i >= 0; i-- {
		name := m.order[i]
		if err := m.plugins[name].plugin.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("plugin %q shutdown failed: %w", name, err))
		}
		delete(m.plugins, name)
	}
	m.order = nil
	return errors.Join(errs...)
}
