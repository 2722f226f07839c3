// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

/*
Package sandbox is an in-memory implementation of the aqaar REST API.

It serves every endpoint the owner console consumes on a mux router, seeded with
demo data, and is meant for tests and local development. Tokens are HS256 signed
with the configured secret and carry id, name, email, role and exp claims,
passwords are checked against bcrypt hashes, and new records get snowflake ids.

Errors are reported in the different body shapes the production backend uses:
{"message": ...}, {"error": ...}, {"detail": ...}, {"errors": [...]} and plain
strings. Tests can inject failures with Fail.

	router := mux.NewRouter()
	sb := sandbox.New(&sandbox.Builder{Router: router, Secret: []byte("secret")})
	c := client.NewWithRouter(router)
*/
package sandbox

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/goccy/go-json"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/relabs-tech/aqaar/api"
	"github.com/relabs-tech/aqaar/core/logger"
)

// DefaultTokenTTL is the lifetime of issued tokens
const DefaultTokenTTL = 24 * time.Hour

// timeLayout is the timestamp format of records
const timeLayout = "2006-01-02T15:04:05"

// Builder is a builder helper for the Backend
type Builder struct {
	// Router is a mux router. This is mandatory.
	Router *mux.Router
	// Secret signs the tokens. This is mandatory.
	Secret []byte
	// Now is the clock, time.Now if nil
	Now func() time.Time
	// TokenTTL is the lifetime of issued tokens, DefaultTokenTTL if zero
	TokenTTL time.Duration
	// Empty skips the demo data
	Empty bool
	// Node is the snowflake node of generated ids
	Node int64
}

type account struct {
	admin    api.Admin
	password []byte
}

type ownerProperty struct {
	realOwnerID int64
	property    api.RealOwnerProperty
}

type failure struct {
	method string
	path   string
	status int
	body   string
}

// Backend is the sandbox REST backend
type Backend struct {
	router *mux.Router
	secret []byte
	now    func() time.Time
	ttl    time.Duration
	node   *snowflake.Node

	mu              sync.Mutex
	accounts        []*account
	properties      []api.Property
	realOwners      []api.RealOwner
	ownerProperties []ownerProperty
	images          map[string][]byte
	lookup          api.LookupData
	failures        []failure
	requests        int
}

// New realizes the sandbox and adds its routes to the router
func New(bb *Builder) *Backend {
	if bb.Router == nil {
		panic("Router is missing")
	}
	if len(bb.Secret) == 0 {
		panic("Secret is missing")
	}
	node, err := snowflake.NewNode(bb.Node)
	if err != nil {
		panic(err)
	}
	b := &Backend{
		router: bb.Router,
		secret: bb.Secret,
		now:    bb.Now,
		ttl:    bb.TokenTTL,
		node:   node,
		images: map[string][]byte{},
	}
	if b.now == nil {
		b.now = time.Now
	}
	if b.ttl == 0 {
		b.ttl = DefaultTokenTTL
	}
	if !bb.Empty {
		b.seed()
	}

	b.router.Use(b.countRequests, b.injectFailures, b.authorize)
	b.handleAuth()
	b.handleAdmins()
	b.handleProperties()
	b.handleRealOwners()
	b.handleLookup()
	return b
}

// Router returns the router of the backend
func (b *Backend) Router() *mux.Router {
	return b.router
}

// Handler returns the router wrapped for a listening server: panics are recovered,
// CORS is answered and the response is compressed when the client accepts it
func (b *Backend) Handler() http.Handler {
	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type", "Accept-Language", "X-Request-ID"}),
	)
	return handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(handlers.CompressHandler(cors(b.router)))
}

// Fail makes the next request matching method and path fail with status and body.
// body is sent as it is, so it can be any of the error shapes of the backend.
func (b *Backend) Fail(method, path string, status int, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = append(b.failures, failure{method: method, path: path, status: status, body: body})
}

// Requests returns the number of requests served so far
func (b *Backend) Requests() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.requests
}

func (b *Backend) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.requests++
		b.mu.Unlock()
		ctx, rlog := logger.ContextWithLogger(r.Context())
		rlog.WithField("clientRequestID", r.Header.Get("X-Request-ID")).Debugf("sandbox: %s %s", r.Method, r.URL.Path)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (b *Backend) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		for i, f := range b.failures {
			if f.method == r.Method && f.path == r.URL.Path {
				b.failures = append(b.failures[:i], b.failures[i+1:]...)
				b.mu.Unlock()
				if strings.HasPrefix(strings.TrimSpace(f.body), "{") {
					w.Header().Set("Content-Type", "application/json")
				}
				w.WriteHeader(f.status)
				w.Write([]byte(f.body))
				return
			}
		}
		b.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) timestamp() string {
	return b.now().UTC().Format(timeLayout)
}

func (b *Backend) nextID() int64 {
	return b.node.Generate().Int64()
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Error 4711", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

// writeMessage writes an error body of the form {field: message}
func writeMessage(w http.ResponseWriter, status int, field, message string) {
	writeJSON(w, status, map[string]string{field: message})
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// writeFieldErrors writes an error body of the form {"errors": [...]}
func writeFieldErrors(w http.ResponseWriter, errs []fieldError) {
	writeJSON(w, http.StatusBadRequest, map[string]interface{}{"errors": errs})
}
