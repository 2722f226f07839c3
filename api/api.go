/*
Package api maps every endpoint of the aqaar REST API the owner console consumes to
a typed Go call.

Each accessor issues exactly one request, with the exception of AllLookupData which
fetches all lookup tables in parallel. Accessors shape payloads, for example the
multipart forms of real owners, but add no error handling of their own: every
failure is the *apierror.Error produced by the client.

	a := api.New(client.NewWithURL(url).WithTokenSource(store))
	admins, err := a.ListAdmins(ctx)
*/
package api

import (
	"context"
	"errors"
	"strconv"

	"github.com/relabs-tech/aqaar/core/client"
)

// Endpoints of the REST API
const (
	PathLogin = "/auth/login"

	PathAdmins           = "/owner/property-requests/Get-All-Users"
	PathToggleAdmin      = "/owner/property-requests/Toggel-User-Status"
	PathDeleteAdmin      = "/owner/property-requests/Delete-User"
	PathAllProperties    = "/properties/Get-All-Property"
	PathOwnerProperties  = "/owner/property-requests"
	PathApprove          = "/properties/approve"
	PathReject           = "/properties/reject"
	PathDeleteApproved   = "/properties/delete-approval-property"
	PathDeleteUnapproved = "/properties/Delete-UnApproved-Property"
	PathRealOwners       = "/real-owners"
	PathRealOwnerProps   = "/real-owners/properties"
	PathLookup           = "/lookup"
)

// ErrNoToken is returned when a login succeeds without handing out a token
var ErrNoToken = errors.New("login response carries no token")

// noBody sends a request without a body
var noBody []byte

// API is the typed access to the REST API
type API struct {
	client client.Client
}

// New creates the API on top of client
func New(c client.Client) *API {
	return &API{client: c}
}

// Client returns the underlying client
func (a *API) Client() client.Client {
	return a.client
}

func (a *API) with(ctx context.Context) client.Client {
	return a.client.WithContext(ctx)
}

func itemPath(base string, id int64) string {
	return base + "/" + strconv.FormatInt(id, 10)
}

// Login exchanges credentials for a bearer token. The request never carries an
// Authorization header.
func (a *API) Login(ctx context.Context, email, password string) (string, error) {
	var res LoginResponse
	if _, err := a.with(ctx).Post(PathLogin, LoginRequest{Email: email, Password: password}, &res); err != nil {
		return "", err
	}
	if res.Token == "" {
		return "", ErrNoToken
	}
	return res.Token, nil
}
