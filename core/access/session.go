/*
Package access holds the session of the signed in owner and guards the protected routes

A session is created from the bearer token returned by the login endpoint. The token
is persisted in a kss.Driver under the key "owner_token" and rehydrated with Restore
on startup. The token is decoded without verification: the backend verifies it on
every request, the console only needs its claims to decide where to route.

Sessions are added to a context with

	ctx = session.ContextWithSession(ctx)

and retrieved with

	session := SessionFromContext(ctx)
*/
package access

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// OwnerRole is the only role admitted to the console
const OwnerRole = "Owner"

// Errors reported by Login and the route guard. They never leave a half
// established session behind.
var (
	ErrInvalidToken = errors.New("invalid session token")
	ErrInvalidRole  = errors.New("token does not belong to an owner")
	ErrNoSession    = errors.New("no session")
	ErrExpired      = errors.New("session expired")
)

// contextKey is the type for context keys. Go linter does not like plain strings
type contextKey string

const contextKeySession contextKey = "_session_"

// Session is the identity of the signed in owner, decoded from the bearer token
type Session struct {
	SubjectID   string
	DisplayName string
	Email       string
	Role        string
	// Expiry is the zero time if the token has no exp claim
	Expiry time.Time
	Claims jwt.MapClaims
}

// IsOwner returns true if the session has the owner role
func (s *Session) IsOwner() bool {
	return s != nil && s.Role == OwnerRole
}

// Expired returns true if the session expired before now. A session without
// expiry counts as expired.
func (s *Session) Expired(now time.Time) bool {
	if s == nil || s.Expiry.IsZero() {
		return true
	}
	return s.Expiry.Before(now)
}

// ContextWithSession returns a new context with this session added to it
func (s *Session) ContextWithSession(ctx context.Context) context.Context {
	return context.WithValue(ctx, contextKeySession, s)
}

// SessionFromContext retrieves a session from the context
func SessionFromContext(ctx context.Context) *Session {
	s, ok := ctx.Value(contextKeySession).(*Session)
	if ok {
		return s
	}
	return nil
}

// DecodeToken decodes the claims of token without verifying its signature
func DecodeToken(token string) (*Session, error) {
	if token == "" {
		return nil, ErrNoSession
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	s := &Session{
		SubjectID:   claimString(claims, "id"),
		DisplayName: claimString(claims, "name"),
		Email:       claimString(claims, "email"),
		Role:        claimString(claims, "role"),
		Claims:      claims,
	}
	if s.SubjectID == "" {
		s.SubjectID = claimString(claims, "sub")
	}
	if exp, ok := claimNumber(claims, "exp"); ok {
		s.Expiry = time.Unix(int64(exp), 0)
	}
	return s, nil
}

func claimString(claims jwt.MapClaims, key string) string {
	switch v := claims[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	}
	return ""
}

func claimNumber(claims jwt.MapClaims, key string) (float64, bool) {
	switch v := claims[key].(type) {
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	}
	return 0, false
}
