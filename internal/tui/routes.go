package tui

import (
	"strings"

	"github.com/williamhaley/music-tui/internal/session"
)

// Route paths
const (
	PathRoot   = "/"
	PathLogin  = "/login"
	PathAlbums = "/albums"
)

// RouteKind identifies a view
type RouteKind int

const (
	RouteUnknown RouteKind = iota
	RouteRoot
	RouteLogin
	RouteAlbums
	RouteAlbum
)

// Route is a parsed navigable location
type Route struct {
	Kind    RouteKind
	AlbumID string
}

// Path returns the canonical path for the route
func (r Route) Path() string {
	switch r.Kind {
	case RouteLogin:
		return PathLogin
	case RouteAlbums:
		return PathAlbums
	case RouteAlbum:
		return PathAlbums + "/" + r.AlbumID
	default:
		return PathRoot
	}
}

// Protected reports whether the route requires an authenticated session
func (r Route) Protected() bool {
	return r.Kind == RouteAlbums || r.Kind == RouteAlbum
}

// AlbumPath returns the path of an album detail view
func AlbumPath(albumID string) string {
	return Route{Kind: RouteAlbum, AlbumID: albumID}.Path()
}

// ParseRoute parses a path such as "/albums/42". Unknown paths resolve to root.
func ParseRoute(path string) Route {
	path = "/" + strings.Trim(path, "/")
	switch {
	case path == PathRoot:
		return Route{Kind: RouteRoot}
	case path == PathLogin:
		return Route{Kind: RouteLogin}
	case path == PathAlbums:
		return Route{Kind: RouteAlbums}
	case strings.HasPrefix(path, PathAlbums+"/"):
		id := strings.TrimPrefix(path, PathAlbums+"/")
		if id == "" || strings.Contains(id, "/") {
			return Route{Kind: RouteRoot}
		}
		return Route{Kind: RouteAlbum, AlbumID: id}
	default:
		return Route{Kind: RouteRoot}
	}
}

// Resolve applies session gating to a requested route. It returns the
// route to show and, when the request was redirected to login, the path
// to return to after signing in. While the session is loading no decision
// is taken and ok is false.
func Resolve(requested Route, st session.State) (target Route, returnTo string, ok bool) {
	if st.Loading {
		return Route{}, "", false
	}

	authed := st.Authenticated()

	switch {
	case requested.Kind == RouteRoot:
		if authed {
			return Route{Kind: RouteAlbums}, "", true
		}
		return Route{Kind: RouteLogin}, "", true

	case requested.Protected() && !authed:
		return Route{Kind: RouteLogin}, requested.Path(), true
	}

	return requested, "", true
}
