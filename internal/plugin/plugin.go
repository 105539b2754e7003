// Package plugin hosts in-process plugins: it registers them, routes calls
// to them and provides the HostAPI they run against.
//
// The public types live in pkg/plugin and are aliased here so host code
// can use a single import.
package plugin

import (
	pkgplugin "github.com/goatkit/ganttcalendar/pkg/plugin"
)

type Plugin = pkgplugin.Plugin
type GKRegistration = pkgplugin.GKRegistration
type RouteSpec = pkgplugin.RouteSpec
type MenuItemSpec = pkgplugin.MenuItemSpec
type ErrorCodeSpec = pkgplugin.ErrorCodeSpec
type HostAPI = pkgplugin.HostAPI
type HTTPArgs = pkgplugin.HTTPArgs
type HTTPResponse = pkgplugin.HTTPResponse
type Error = pkgplugin.Error
