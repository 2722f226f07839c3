package access

import (
	"context"
	"strconv"
	"strings"

	"github.com/relabs-tech/aqaar/core/logger"
)

// Route is a screen of the console
type Route string

// The routes of the console
const (
	RouteHome       Route = "/"
	RouteProperties Route = "/properties"
	RouteAdmins     Route = "/admins"
	RouteRealOwners Route = "/real-owners"
	RouteLogin      Route = "/auth/login"
)

// RealOwnerPropertiesRoute returns the route listing the properties of a real owner
func RealOwnerPropertiesRoute(realOwnerID int64) Route {
	return Route("/real-owners/" + strconv.FormatInt(realOwnerID, 10) + "/properties")
}

// IsAuthRoute returns true for the routes under /auth
func (r Route) IsAuthRoute() bool {
	return strings.HasPrefix(string(r), "/auth/")
}

// DecisionKind is the outcome of a guard check
type DecisionKind int

// Guard outcomes
const (
	// Loading means the session is not restored yet, nothing can be decided
	Loading DecisionKind = iota
	// Redirect means the destination must not be shown, go to Route instead
	Redirect
	// Allow means the destination can be shown
	Allow
)

func (k DecisionKind) String() string {
	switch k {
	case Loading:
		return "loading"
	case Redirect:
		return "redirect"
	case Allow:
		return "allow"
	}
	return "unknown"
}

// Decision is the result of a guard check
type Decision struct {
	Kind  DecisionKind
	Route Route
}

// Guard decides whether a protected route can be shown. It holds no state of its
// own, every check looks at the current token.
type Guard struct {
	Store *Store
}

// Check decides whether destination can be shown. A missing, undecodable or expired
// token redirects to the login screen, removing the persisted token on the way.
func (g Guard) Check(ctx context.Context, destination Route) Decision {
	if g.Store.Loading() {
		return Decision{Kind: Loading}
	}
	token := g.Store.Token()
	if token == "" {
		return Decision{Kind: Redirect, Route: RouteLogin}
	}
	session, err := DecodeToken(token)
	if err != nil || session.Expired(g.Store.Now()) {
		logger.FromContext(ctx).Infof("session no longer valid, redirecting from %s", destination)
		if err := g.Store.forget(ctx); err != nil {
			logger.FromContext(ctx).WithError(err).Errorln("cannot remove session token")
		}
		return Decision{Kind: Redirect, Route: RouteLogin}
	}
	return Decision{Kind: Allow, Route: destination}
}

// CheckAuthRoute decides whether the login screen can be shown. An owner with a valid
// session is sent home instead.
func (g Guard) CheckAuthRoute(ctx context.Context) Decision {
	if g.Store.Loading() {
		return Decision{Kind: Loading}
	}
	token := g.Store.Token()
	if token == "" {
		return Decision{Kind: Allow, Route: RouteLogin}
	}
	if session, err := DecodeToken(token); err == nil && !session.Expired(g.Store.Now()) {
		return Decision{Kind: Redirect, Route: RouteHome}
	}
	return Decision{Kind: Allow, Route: RouteLogin}
}

// Require runs the guard for destination and turns anything but Allow into an error.
// It is meant for callers which cannot wait, like a command line.
func (g Guard) Require(ctx context.Context, destination Route) (*Session, error) {
	hadToken := g.Store.Token() != ""
	switch g.Check(ctx, destination).Kind {
	case Allow:
		return g.Store.Session(), nil
	case Redirect:
		if hadToken {
			return nil, ErrExpired
		}
	}
	return nil, ErrNoSession
}
