// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

package sandbox_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/aqaar/api"
	"github.com/relabs-tech/aqaar/core/access"
	"github.com/relabs-tech/aqaar/core/apierror"
	"github.com/relabs-tech/aqaar/core/client"
	"github.com/relabs-tech/aqaar/sandbox"
)

var secret = []byte("sandbox-test-secret")

func newSandbox(t *testing.T) (*sandbox.Backend, client.Client) {
	t.Helper()
	router := mux.NewRouter()
	sb := sandbox.New(&sandbox.Builder{Router: router, Secret: secret})
	return sb, client.NewWithRouter(router)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	_, c := newSandbox(t)
	a := api.New(c)

	token, err := a.Login(ctx, sandbox.OwnerEmail, sandbox.OwnerPassword)
	require.NoError(t, err)
	session, err := access.DecodeToken(token)
	require.NoError(t, err)
	assert.True(t, session.IsOwner())
	assert.Equal(t, "1", session.SubjectID)
	assert.Equal(t, sandbox.OwnerEmail, session.Email)
	assert.False(t, session.Expired(time.Now()))

	_, err = a.Login(ctx, sandbox.OwnerEmail, "wrong")
	require.Error(t, err)
	assert.Equal(t, "Invalid email or password", err.Error())
	assert.Equal(t, http.StatusUnauthorized, apierror.Status(err))

	// admins can log in, the role check is the business of the client
	token, err = a.Login(ctx, "khalid@aqaar.sa", sandbox.AdminPassword)
	require.NoError(t, err)
	session, err = access.DecodeToken(token)
	require.NoError(t, err)
	assert.False(t, session.IsOwner())

	_, err = a.Login(ctx, "fahad@aqaar.sa", sandbox.AdminPassword)
	assert.Equal(t, http.StatusForbidden, apierror.Status(err))
}

func TestAuthorization(t *testing.T) {
	ctx := context.Background()
	sb, c := newSandbox(t)

	_, err := api.New(c).ListAdmins(ctx)
	assert.Equal(t, http.StatusUnauthorized, apierror.Status(err))

	_, err = api.New(c.WithToken("garbage")).ListAdmins(ctx)
	assert.Equal(t, http.StatusUnauthorized, apierror.Status(err))

	token, err := sb.IssueToken("khalid@aqaar.sa")
	require.NoError(t, err)
	_, err = api.New(c.WithToken(token)).ListAdmins(ctx)
	assert.Equal(t, http.StatusForbidden, apierror.Status(err))
	assert.Equal(t, "Access denied", err.Error())

	// tokens of another secret are rejected
	router := mux.NewRouter()
	other := sandbox.New(&sandbox.Builder{Router: router, Secret: []byte("other"), Empty: true})
	other.AddAccount(api.Admin{Email: "x@aqaar.sa", Role: api.AdminRole{Name: sandbox.RoleOwner}, Active: true}, "password")
	token, err = other.IssueToken("x@aqaar.sa")
	require.NoError(t, err)
	_, err = api.New(c.WithToken(token)).ListAdmins(ctx)
	assert.Equal(t, http.StatusUnauthorized, apierror.Status(err))
}

func TestExpiredToken(t *testing.T) {
	router := mux.NewRouter()
	past := time.Now().Add(-48 * time.Hour)
	sb := sandbox.New(&sandbox.Builder{Router: router, Secret: secret, Now: func() time.Time { return past }})
	token, err := sb.IssueToken(sandbox.OwnerEmail)
	require.NoError(t, err)

	_, err = api.New(client.NewWithRouter(router).WithToken(token)).ListAdmins(context.Background())
	assert.Equal(t, http.StatusUnauthorized, apierror.Status(err))
}

func TestFailureInjection(t *testing.T) {
	ctx := context.Background()
	sb, c := newSandbox(t)
	token, err := sb.IssueToken(sandbox.OwnerEmail)
	require.NoError(t, err)
	a := api.New(c.WithToken(token))

	sb.Fail(http.MethodGet, api.PathAdmins, http.StatusServiceUnavailable, `{"detail":"maintenance"}`)
	_, err = a.ListAdmins(ctx)
	assert.EqualError(t, err, "maintenance")

	// failures are one-shot
	admins, err := a.ListAdmins(ctx)
	require.NoError(t, err)
	assert.Len(t, admins, 4)
	assert.Equal(t, 2, sb.Requests())
}

func TestAdminRules(t *testing.T) {
	ctx := context.Background()
	sb, c := newSandbox(t)
	token, err := sb.IssueToken(sandbox.OwnerEmail)
	require.NoError(t, err)
	a := api.New(c.WithToken(token))

	err = a.DeleteAdmin(ctx, sandbox.ActiveAdminID)
	assert.Equal(t, http.StatusConflict, apierror.Status(err))
	assert.EqualError(t, err, "Cannot delete an active user")

	require.NoError(t, a.DeleteAdmin(ctx, sandbox.InactiveAdminID))
	err = a.DeleteAdmin(ctx, sandbox.InactiveAdminID)
	assert.EqualError(t, err, "User not found")

	// the owner account cannot be toggled
	err = a.ToggleAdminStatus(ctx, sandbox.OwnerID)
	assert.Equal(t, http.StatusNotFound, apierror.Status(err))
}

func TestHandler(t *testing.T) {
	sb, _ := newSandbox(t)
	r, err := http.NewRequest(http.MethodOptions, api.PathAdmins, nil)
	require.NoError(t, err)
	r.Header.Set("Origin", "http://localhost:5173")
	r.Header.Set("Access-Control-Request-Method", http.MethodGet)

	rec := httptest.NewRecorder()
	sb.Handler().ServeHTTP(rec, r)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
