// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

/*
Package client provides access to the aqaar REST API

The client either talks to a remote backend through HTTP, or directly to a mux
router. The latter is perfectly suited for unit tests: the sandbox backend is
served in-process without a listening socket.

Every request carries the bearer token of the session (except the public auth
endpoints), the language of the owner as Accept-Language and the request ID of
the context logger as X-Request-ID. Every failure, whether a transport error or
a non-successful status, is returned as *apierror.Error whose message is ready
for display.
*/
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"

	"github.com/relabs-tech/aqaar/core/apierror"
	"github.com/relabs-tech/aqaar/core/i18n"
	"github.com/relabs-tech/aqaar/core/logger"
)

// DefaultTimeout is the timeout for a single HTTP request
const DefaultTimeout = 20 * time.Second

// publicPaths never carry an Authorization header
var publicPaths = []string{"/auth/login", "/auth/register"}

// TokenSource provides the bearer token of the current session. An empty token means
// there is no session.
type TokenSource interface {
	Token() string
}

// LanguageSource provides the language preference of the owner
type LanguageSource interface {
	Language(ctx context.Context) string
}

// StaticToken is a TokenSource for a fixed token
type StaticToken string

// Token implements TokenSource
func (t StaticToken) Token() string {
	return string(t)
}

// Client provides easy access to the REST API.
type Client struct {
	router     *mux.Router
	httpClient *http.Client
	url        string
	tokens     TokenSource
	languages  LanguageSource
	ctx        context.Context

	defaultHeaders map[string]string
}

// NewWithRouter creates a client to make pseudo-REST requests to the backend,
// through the mux router
//
// WithTokenSource() adds the bearer token of a session to every request.
// WithContext() specifies a different base context all together.
func NewWithRouter(router *mux.Router) Client {
	return Client{
		router:         router,
		defaultHeaders: map[string]string{},
	}
}

// NewWithURL creates a client to make REST requests to the backend at url, for
// example https://backend.aqaar.dussur.sa/api
func NewWithURL(url string) Client {
	return Client{
		url:            strings.TrimSuffix(url, "/"),
		httpClient:     &http.Client{Timeout: DefaultTimeout},
		defaultHeaders: map[string]string{},
	}
}

// WithHeader returns a new client with a default header added
func (c Client) WithHeader(key string, value string) Client {
	headers := make(map[string]string, len(c.defaultHeaders)+1)
	for k, v := range c.defaultHeaders {
		headers[k] = v
	}
	headers[key] = value
	c.defaultHeaders = headers
	return c
}

// WithTimeout returns a new client with a different request timeout. It has no effect
// on a client talking directly to a router.
func (c Client) WithTimeout(timeout time.Duration) Client {
	if c.httpClient != nil {
		c.httpClient = &http.Client{Timeout: timeout, Transport: c.httpClient.Transport}
	}
	return c
}

// WithTokenSource returns a new client which authorizes its requests with the token
// of tokens
func (c Client) WithTokenSource(tokens TokenSource) Client {
	c.tokens = tokens
	return c
}

// WithToken returns a new client which authorizes its requests with a fixed token
func (c Client) WithToken(token string) Client {
	return c.WithTokenSource(StaticToken(token))
}

// WithLanguageSource returns a new client which takes the Accept-Language header and
// the language of error messages from languages
func (c Client) WithLanguageSource(languages LanguageSource) Client {
	c.languages = languages
	return c
}

// WithContext returns a new client with specific request context
func (c Client) WithContext(ctx context.Context) Client {
	c.ctx = ctx
	return c
}

// Context returns the request context of the client
func (c Client) Context() context.Context {
	if c.ctx == nil {
		return context.Background()
	}
	return c.ctx
}

// Language returns the language requests are made in
func (c Client) Language() string {
	if c.languages == nil {
		return i18n.Default
	}
	return i18n.Normalize(c.languages.Language(c.Context()))
}

// Get reads the resource at path into result.
//
// The path can be extended with query strings. result can also be raw *[]byte,
// or nil.
func (c Client) Get(path string, result interface{}) (int, error) {
	return c.do(http.MethodGet, path, "", nil, result)
}

// Post posts body to path and reads the response into result.
//
// body can also be a []byte, result can also be raw *[]byte or nil.
func (c Client) Post(path string, body interface{}, result interface{}) (int, error) {
	j, err := marshal(body)
	if err != nil {
		return http.StatusBadRequest, fmt.Errorf("POST to %s: %w", path, err)
	}
	return c.do(http.MethodPost, path, "application/json", j, result)
}

// Put puts body to path and reads the response into result.
//
// body can also be a []byte, result can also be raw *[]byte or nil.
func (c Client) Put(path string, body interface{}, result interface{}) (int, error) {
	j, err := marshal(body)
	if err != nil {
		return http.StatusBadRequest, fmt.Errorf("PUT to %s: %w", path, err)
	}
	return c.do(http.MethodPut, path, "application/json", j, result)
}

// Delete deletes the resource at path
func (c Client) Delete(path string) (int, error) {
	return c.do(http.MethodDelete, path, "", nil, nil)
}

// PostMultipart posts a multipart form to path and reads the response into result
func (c Client) PostMultipart(path string, form Multipart, result interface{}) (int, error) {
	body, contentType, err := form.Encode()
	if err != nil {
		return http.StatusBadRequest, fmt.Errorf("POST to %s: %w", path, err)
	}
	return c.do(http.MethodPost, path, contentType, body, result)
}

// PutMultipart puts a multipart form to path and reads the response into result
func (c Client) PutMultipart(path string, form Multipart, result interface{}) (int, error) {
	body, contentType, err := form.Encode()
	if err != nil {
		return http.StatusBadRequest, fmt.Errorf("PUT to %s: %w", path, err)
	}
	return c.do(http.MethodPut, path, contentType, body, result)
}

func marshal(body interface{}) ([]byte, error) {
	if j, ok := body.([]byte); ok {
		return j, nil
	}
	return json.Marshal(body)
}

func isPublic(path string) bool {
	for _, p := range publicPaths {
		if strings.Contains(path, p) {
			return true
		}
	}
	return false
}

// do performs the request. Any 2xx status is a success. Transport errors are
// reported with status 0.
func (c Client) do(method, path, contentType string, body []byte, result interface{}) (int, error) {
	ctx, rlog := logger.ContextWithLogger(c.Context())
	lang := c.Language()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	r, err := http.NewRequestWithContext(ctx, method, c.url+path, reader)
	if err != nil {
		return 0, apierror.New(lang, err)
	}
	for key, value := range c.defaultHeaders {
		r.Header.Set(key, value)
	}
	if contentType != "" {
		r.Header.Set("Content-Type", contentType)
	}
	r.Header.Set("Accept", "application/json")
	r.Header.Set("Accept-Language", lang)
	r.Header.Set("X-Request-ID", logger.RequestIDFromContext(ctx))
	if c.tokens != nil && !isPublic(path) {
		if token := c.tokens.Token(); token != "" {
			r.Header.Set("Authorization", "Bearer "+token)
		}
	}

	var status int
	var resBody []byte
	if c.router != nil {
		rec := httptest.NewRecorder()
		c.router.ServeHTTP(rec, r)
		res := rec.Result()
		status = res.StatusCode
		resBody = rec.Body.Bytes()
	} else {
		res, err := c.httpClient.Do(r)
		if err != nil {
			rlog.WithError(err).Debugf("%s %s failed", method, path)
			return 0, apierror.New(lang, err)
		}
		defer res.Body.Close()
		status = res.StatusCode
		resBody, err = io.ReadAll(res.Body)
		if err != nil {
			return status, apierror.New(lang, err)
		}
	}
	rlog.Debugf("%s %s -> %d", method, path, status)

	if status < 200 || status > 299 {
		return status, apierror.New(lang, &apierror.Response{Status: status, Body: resBody})
	}

	if len(resBody) > 0 && result != nil {
		if raw, ok := result.(*[]byte); ok {
			*raw = resBody
		} else if err := json.Unmarshal(resBody, result); err != nil {
			decodeErr := apierror.New(lang, fmt.Errorf("%s %s: cannot decode response: %w", method, path, err))
			decodeErr.Status = status
			return status, decodeErr
		}
	}
	return status, nil
}
