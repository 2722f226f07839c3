package access

import (
	"context"

	"github.com/relabs-tech/aqaar/core/apierror"
	"github.com/relabs-tech/aqaar/core/notify"
	"github.com/relabs-tech/aqaar/core/schema"
)

// Authenticator exchanges credentials for a bearer token
type Authenticator interface {
	Login(ctx context.Context, email, password string) (string, error)
}

type loginForm struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Authenticate validates the login form, signs in with auth and establishes the
// session from the returned token, see Login.
func (s *Store) Authenticate(ctx context.Context, auth Authenticator, email, password string) (Route, error) {
	lang := s.language(ctx)
	if err := schema.Default.ValidateStruct(lang, loginForm{Email: email, Password: password}, schema.Login); err != nil {
		s.notifier.Notify(ctx, notify.Notice{Level: notify.Error, Message: err.Error()})
		return RouteLogin, err
	}
	token, err := auth.Login(ctx, email, password)
	if err != nil {
		apierror.Log(ctx, err, "auth.login")
		s.notifier.Notify(ctx, notify.Notice{Level: notify.Error, Key: "auth.login.loginError", Message: err.Error()})
		return RouteLogin, err
	}
	return s.Login(ctx, token)
}
