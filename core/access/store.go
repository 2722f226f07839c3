package access

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/relabs-tech/aqaar/core/i18n"
	"github.com/relabs-tech/aqaar/core/kss"
	"github.com/relabs-tech/aqaar/core/logger"
	"github.com/relabs-tech/aqaar/core/notify"
)

// LanguageSource provides the language notices are written in
type LanguageSource interface {
	Language(ctx context.Context) string
}

// Store holds the session of the signed in owner. The zero value is not usable,
// use NewStore.
//
// All methods are safe for concurrent use.
type Store struct {
	kv        kss.Driver
	notifier  notify.Notifier
	languages LanguageSource
	now       func() time.Time

	mu       sync.RWMutex
	token    string
	session  *Session
	loading  bool
	restored sync.Once
}

// NewStore creates a session store persisting its token in kv. notices for login and
// logout are sent to notifier in the language of languages. Both notifier and
// languages can be nil.
//
// The store starts in the loading state, see Restore.
func NewStore(kv kss.Driver, notifier notify.Notifier, languages LanguageSource) *Store {
	if notifier == nil {
		notifier = notify.Discard
	}
	return &Store{
		kv:        kv,
		notifier:  notifier,
		languages: languages,
		now:       time.Now,
		loading:   true,
	}
}

// WithClock replaces the clock used for expiry checks
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Now returns the current time of the store's clock
func (s *Store) Now() time.Time {
	return s.now()
}

func (s *Store) language(ctx context.Context) string {
	if s.languages == nil {
		return i18n.Default
	}
	return i18n.Normalize(s.languages.Language(ctx))
}

func (s *Store) notify(ctx context.Context, level notify.Level, key string) {
	s.notifier.Notify(ctx, notify.Notice{
		Level:   level,
		Key:     key,
		Message: i18n.T(s.language(ctx), key),
	})
}

// Restore rehydrates the session from the persisted token. The token is kept only
// if it decodes and has not expired, otherwise it is removed from storage. The
// loading state is cleared exactly once, on the first call, whatever the outcome.
func (s *Store) Restore(ctx context.Context) error {
	var err error
	s.restored.Do(func() {
		err = s.restore(ctx)
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	})
	return err
}

func (s *Store) restore(ctx context.Context) error {
	rlog := logger.FromContext(ctx)
	token, err := kss.GetString(ctx, s.kv, kss.KeyToken)
	if errors.Is(err, kss.ErrNotFound) || (err == nil && token == "") {
		return nil
	}
	if err != nil {
		return err
	}
	session, err := DecodeToken(token)
	if err != nil || session.Expired(s.now()) {
		rlog.Infoln("discarding persisted session token")
		return s.forget(ctx)
	}
	s.mu.Lock()
	s.token = token
	s.session = session
	s.mu.Unlock()
	rlog.Debugf("restored session of %s", session.SubjectID)
	return nil
}

// Login establishes a session from token.
//
// A token which cannot be decoded yields ErrInvalidToken, a token with another role
// than "Owner" yields ErrInvalidRole. In both cases nothing is persisted, the
// session state is left untouched and the route is the login screen. On success the
// token is persisted and the route is home.
func (s *Store) Login(ctx context.Context, token string) (Route, error) {
	session, err := DecodeToken(token)
	if err != nil {
		s.notify(ctx, notify.Error, "auth.login.loginError")
		return RouteLogin, ErrInvalidToken
	}
	if !session.IsOwner() {
		s.notify(ctx, notify.Error, "auth.login.invalidRole")
		return RouteLogin, ErrInvalidRole
	}
	if err := s.kv.Put(ctx, kss.KeyToken, []byte(token)); err != nil {
		s.notify(ctx, notify.Error, "auth.login.loginError")
		return RouteLogin, err
	}
	s.mu.Lock()
	s.token = token
	s.session = session
	s.mu.Unlock()
	s.notify(ctx, notify.Success, "auth.login.loginSuccess")
	return RouteHome, nil
}

// Logout removes the persisted token and clears the session
func (s *Store) Logout(ctx context.Context) Route {
	if err := s.forget(ctx); err != nil {
		logger.FromContext(ctx).WithError(err).Errorln("cannot remove session token")
	}
	s.notify(ctx, notify.Success, "auth.logout.logoutSuccess")
	return RouteLogin
}

// forget removes the persisted token and clears the in-memory session
func (s *Store) forget(ctx context.Context) error {
	s.mu.Lock()
	s.token = ""
	s.session = nil
	s.mu.Unlock()
	err := s.kv.Delete(ctx, kss.KeyToken)
	if errors.Is(err, kss.ErrNotFound) {
		return nil
	}
	return err
}

// Token returns the bearer token of the session, or the empty string
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Session returns a copy of the current session, or nil
func (s *Store) Session() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return nil
	}
	c := *s.session
	return &c
}

// Loading returns true until Restore has completed
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}
