// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

// Shell routes. Every route except RouteLogin is guarded.
const (
	// RouteLogin is the login entry point.
	RouteLogin        = "/"
	RouteDashboard    = "/dashboard"
	RouteAnalytics    = "/analytics"
	RouteBlog         = "/blog"
	RouteGallery      = "/gallery"
	RouteNewsletter   = "/newsletter"
	RouteTestimonials = "/testimonials"
	RouteEvents       = "/events"
	RouteContactMe    = "/contactme"
	// RouteEvent is the event manager form.
	RouteEvent = "/event"

	// RouteStatic serves the embedded shell assets.
	RouteStatic = "/static/*"
)

// Health routes.
const (
	RouteHealth      = "/health"
	RouteHealthLive  = "/health/live"
	RouteHealthReady = "/health/ready"
)

// ShellRoutes lists the guarded routes that serve the admin shell.
var ShellRoutes = []string{
	RouteDashboard,
	RouteAnalytics,
	RouteBlog,
	RouteGallery,
	RouteNewsletter,
	RouteTestimonials,
	RouteEvents,
	RouteContactMe,
	RouteEvent,
}

// IsShellRoute reports whether path is a guarded shell route. Used to
// validate the post-login return location.
func IsShellRoute(path string) bool {
	for _, r := range ShellRoutes {
		if r == path {
			return true
		}
	}
	return false
}

// NavItem is one sidebar entry.
type NavItem struct {
	Name string `json:"name"`
	Href string `json:"href"`
	Icon string `json:"icon"`
}

// Nav is the sidebar, top to bottom. Logout is rendered apart from the rest.
var Nav = []NavItem{
	{Name: "Dashboard Overview", Href: RouteDashboard, Icon: "ri-dashboard-line"},
	{Name: "Testimonials", Href: RouteTestimonials, Icon: "ri-chat-quote-line"},
	{Name: "Model Manager", Href: RouteBlog, Icon: "ri-article-line"},
	{Name: "Event Display", Href: RouteGallery, Icon: "ri-image-line"},
	{Name: "Newsletter Subscribers", Href: RouteNewsletter, Icon: "ri-mail-line"},
	{Name: "Event Manager", Href: RouteEvents, Icon: "ri-calendar-event-line"},
	{Name: "Contact Me", Href: RouteContactMe, Icon: "ri-contacts-line"},
}

// LogoutItem is the last sidebar entry.
var LogoutItem = NavItem{Name: "Logout", Href: RouteLogin, Icon: "ri-logout-box-line"}
