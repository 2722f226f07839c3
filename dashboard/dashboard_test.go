package dashboard_test

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/aqaar/api"
	"github.com/relabs-tech/aqaar/core/client"
	"github.com/relabs-tech/aqaar/core/i18n"
	"github.com/relabs-tech/aqaar/core/notify"
	"github.com/relabs-tech/aqaar/core/query"
	"github.com/relabs-tech/aqaar/core/schema"
	"github.com/relabs-tech/aqaar/dashboard"
	"github.com/relabs-tech/aqaar/sandbox"
)

type language string

func (l language) Language(ctx context.Context) string {
	return string(l)
}

type fixture struct {
	router  *mux.Router
	sb      *sandbox.Backend
	cache   *query.Cache
	notices *notify.Recorder
	d       *dashboard.Dashboard
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{router: mux.NewRouter(), notices: &notify.Recorder{}}
	f.sb = sandbox.New(&sandbox.Builder{Router: f.router, Secret: []byte("dashboard-test-secret")})
	token, err := f.sb.IssueToken(sandbox.OwnerEmail)
	require.NoError(t, err)
	f.cache = query.New(f.notices, language(i18n.English))
	f.d = dashboard.New(f.cache, api.New(client.NewWithRouter(f.router).WithToken(token)))
	return f
}

// onRequest calls fn before the sandbox serves a request whose path starts with
// prefix
func (f *fixture) onRequest(method, prefix string, fn func()) {
	f.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == method && strings.HasPrefix(r.URL.Path, prefix) {
				fn()
			}
			next.ServeHTTP(w, r)
		})
	})
}

func adminByID(admins []api.Admin, id int64) (api.Admin, bool) {
	for _, a := range admins {
		if a.ID == id {
			return a, true
		}
	}
	return api.Admin{}, false
}

func propertyIDs(properties []api.Property) []int64 {
	ids := []int64{}
	for _, p := range properties {
		ids = append(ids, p.ID)
	}
	return ids
}

func TestToggleAdminStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	admins, err := f.d.Admins.List(ctx)
	require.NoError(t, err)
	require.Len(t, admins, 3, "the owner is not listed")
	admin, _ := adminByID(admins, sandbox.ActiveAdminID)
	require.True(t, admin.Active)

	var mu sync.Mutex
	var during []api.Admin
	f.onRequest(http.MethodPut, api.PathToggleAdmin, func() {
		mu.Lock()
		defer mu.Unlock()
		during, _ = query.Cached[[]api.Admin](f.cache, dashboard.KeyAdmins)
	})

	require.NoError(t, f.d.Admins.ToggleStatus(ctx, sandbox.ActiveAdminID))

	mu.Lock()
	admin, ok := adminByID(during, sandbox.ActiveAdminID)
	mu.Unlock()
	require.True(t, ok)
	assert.False(t, admin.Active, "the cache shows the new status before the server confirms")

	assert.GreaterOrEqual(t, f.cache.State(dashboard.KeyAdmins).Invalidations, 1)
	assert.Equal(t, query.Success, f.cache.State(dashboard.KeyAdmins).Status)

	admins, err = f.d.Admins.List(ctx)
	require.NoError(t, err)
	admin, _ = adminByID(admins, sandbox.ActiveAdminID)
	assert.False(t, admin.Active)
	assert.Equal(t, []string{"admins.actions.toggleSuccess"}, f.notices.Keys())

	counts, err := f.d.Admins.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, dashboard.AdminCounts{All: 3, Active: 1, Inactive: 2}, counts)
}

func TestToggleAdminStatusFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.d.Admins.List(ctx)
	require.NoError(t, err)
	before, ok := f.cache.GetData(dashboard.KeyAdmins)
	require.True(t, ok)

	f.sb.Fail(http.MethodPut, fmt.Sprintf("%s/%d", api.PathToggleAdmin, sandbox.ActiveAdminID), http.StatusInternalServerError, "")
	err = f.d.Admins.ToggleStatus(ctx, sandbox.ActiveAdminID)
	require.Error(t, err)

	after, ok := f.cache.GetData(dashboard.KeyAdmins)
	require.True(t, ok)
	assert.Equal(t, before, after)

	notice, ok := f.notices.Last()
	require.True(t, ok)
	assert.Equal(t, notify.Error, notice.Level)
	assert.Equal(t, "Failed to update admin status", notice.Message)

	f.sb.Fail(http.MethodPut, fmt.Sprintf("%s/%d", api.PathToggleAdmin, sandbox.ActiveAdminID), http.StatusConflict, `{"message":"admin has open requests"}`)
	require.Error(t, f.d.Admins.ToggleStatus(ctx, sandbox.ActiveAdminID))
	notice, ok = f.notices.Last()
	require.True(t, ok)
	assert.Equal(t, notify.Error, notice.Level)
	assert.Equal(t, "admin has open requests", notice.Message, "the message of the server is shown")
}

func TestDeleteAdmin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	admins, err := f.d.Admins.List(ctx)
	require.NoError(t, err)
	active, _ := adminByID(admins, sandbox.ActiveAdminID)
	inactive, _ := adminByID(admins, sandbox.InactiveAdminID)
	assert.False(t, dashboard.CanDelete(active))
	assert.True(t, dashboard.CanDelete(inactive))

	requests := f.sb.Requests()
	err = f.d.Admins.Delete(ctx, sandbox.ActiveAdminID)
	assert.ErrorIs(t, err, dashboard.ErrAdminActive)
	assert.Equal(t, requests, f.sb.Requests(), "no request is sent for an active admin")

	require.NoError(t, f.d.Admins.Delete(ctx, sandbox.InactiveAdminID))
	admins, err = f.d.Admins.List(ctx)
	require.NoError(t, err)
	_, found := adminByID(admins, sandbox.InactiveAdminID)
	assert.False(t, found)
	assert.Len(t, f.sb.Admins(), 3)

	assert.ErrorIs(t, f.d.Admins.Delete(ctx, 999), dashboard.ErrAdminNotFound)

	inactiveOnly, err := f.d.Admins.ByStatus(ctx, dashboard.AdminsInactive)
	require.NoError(t, err)
	assert.Empty(t, inactiveOnly)
}

func TestApproveProperty(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for _, filter := range []dashboard.PropertyFilter{dashboard.PropertiesAll, "PENDING", "APPROVED", "REJECTED"} {
		_, err := f.d.Properties.ByStatus(ctx, filter)
		require.NoError(t, err)
	}
	all, err := f.d.Properties.ByStatus(ctx, dashboard.PropertiesAll)
	require.NoError(t, err)
	total := len(all)

	require.NoError(t, f.d.Properties.Approve(ctx, sandbox.PendingPropertyID))

	pending, ok := query.Cached[[]api.Property](f.cache, dashboard.KeyPendingProperties)
	require.True(t, ok)
	assert.NotContains(t, propertyIDs(pending), sandbox.PendingPropertyID)

	approved, ok := query.Cached[[]api.Property](f.cache, dashboard.KeyApprovedProperties)
	require.True(t, ok)
	assert.Contains(t, propertyIDs(approved), sandbox.PendingPropertyID)

	all, ok = query.Cached[[]api.Property](f.cache, dashboard.KeyAllProperties)
	require.True(t, ok)
	assert.Len(t, all, total)

	counts, err := f.d.Properties.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, dashboard.PropertyCounts{All: 6, Pending: 1, Approved: 3, Rejected: 2}, counts)
	assert.Equal(t, []string{"properties.actions.approveSuccess"}, f.notices.Keys())
}

func TestRejectProperty(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	var mu sync.Mutex
	var during []api.Property
	f.onRequest(http.MethodPost, api.PathReject, func() {
		mu.Lock()
		defer mu.Unlock()
		during, _ = query.Cached[[]api.Property](f.cache, dashboard.KeyRejectedProperties)
	})

	_, err := f.d.Properties.ByStatus(ctx, "REJECTED")
	require.NoError(t, err)
	require.NoError(t, f.d.Properties.Reject(ctx, 102))

	mu.Lock()
	assert.Contains(t, propertyIDs(during), int64(102))
	mu.Unlock()

	rejected, err := f.d.Properties.ByStatus(ctx, "REJECTED")
	require.NoError(t, err)
	assert.Len(t, rejected, 3)
}

func TestReviewOnlyPending(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.d.Properties.ByStatus(ctx, dashboard.PropertiesAll)
	require.NoError(t, err)
	requests := f.sb.Requests()
	assert.ErrorIs(t, f.d.Properties.Approve(ctx, sandbox.ApprovedPropertyID), dashboard.ErrNotPending)
	assert.ErrorIs(t, f.d.Properties.Reject(ctx, sandbox.RejectedPropertyID), dashboard.ErrNotPending)
	assert.Equal(t, requests, f.sb.Requests())

	assert.ErrorIs(t, f.d.Properties.Approve(ctx, 999), dashboard.ErrPropertyNotFound)
}

func TestApproveFailureRestores(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	snapshots := map[string][]byte{}
	for _, key := range dashboard.PropertyKeys {
		_, err := f.cache.Fetch(ctx, key)
		require.NoError(t, err)
		snapshots[key], _ = f.cache.GetData(key)
	}

	f.sb.Fail(http.MethodPost, fmt.Sprintf("%s/%d", api.PathApprove, sandbox.PendingPropertyID), http.StatusConflict, "")
	err := f.d.Properties.Approve(ctx, sandbox.PendingPropertyID)
	require.Error(t, err)

	for _, key := range dashboard.PropertyKeys {
		data, _ := f.cache.GetData(key)
		assert.Equal(t, snapshots[key], data, key)
	}
	notice, _ := f.notices.Last()
	assert.Equal(t, "properties.actions.approveError", notice.Key)
}

func TestDeleteProperty(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.d.Properties.Delete(ctx, sandbox.ApprovedPropertyID))
	require.NoError(t, f.d.Properties.Delete(ctx, sandbox.RejectedPropertyID))

	for _, key := range dashboard.PropertyKeys {
		properties, err := query.Read[[]api.Property](ctx, f.cache, key)
		require.NoError(t, err)
		assert.NotContains(t, propertyIDs(properties), sandbox.ApprovedPropertyID, key)
		assert.NotContains(t, propertyIDs(properties), sandbox.RejectedPropertyID, key)
	}
	assert.Len(t, f.sb.Properties(), 4)
}

func TestPartitionProperties(t *testing.T) {
	properties := []api.Property{
		{ID: 1, Status: api.StatusPending},
		{ID: 2, Status: api.StatusApproved},
		{ID: 3, Status: api.StatusRejected},
		{ID: 4, Status: api.StatusApproved},
		{ID: 5, Status: api.StatusPending},
	}
	p := dashboard.PartitionProperties(properties)
	assert.Equal(t, p, dashboard.PartitionProperties(properties), "idempotent")
	assert.Equal(t, p, dashboard.PartitionProperties(p.All))

	seen := map[int64]int{}
	for _, partition := range [][]api.Property{p.Pending, p.Approved, p.Rejected} {
		for _, property := range partition {
			seen[property.ID]++
		}
	}
	assert.Len(t, seen, len(properties), "exhaustive")
	for id, n := range seen {
		assert.Equal(t, 1, n, "property %d is in one partition", id)
	}

	assert.Equal(t, []int64{2, 4}, propertyIDs(p.ByFilter("APPROVED")))
	assert.Equal(t, dashboard.PropertyCounts{All: 5, Pending: 2, Approved: 2, Rejected: 1}, dashboard.CountProperties(properties))

	empty := dashboard.PartitionProperties(nil)
	assert.Empty(t, empty.All)
	assert.NotNil(t, empty.Pending)
}

func TestPartitionAdmins(t *testing.T) {
	admins := []api.Admin{{ID: 1, Active: true}, {ID: 2}, {ID: 3, Active: true}}
	p := dashboard.PartitionAdmins(admins)
	assert.Equal(t, p, dashboard.PartitionAdmins(admins))
	assert.Len(t, p.Active, 2)
	assert.Len(t, p.Inactive, 1)
	assert.Equal(t, len(p.All), len(p.Active)+len(p.Inactive))
	assert.Equal(t, p.All, p.ByFilter("unknown"))

	filter, err := dashboard.ParseAdminFilter("inactive")
	require.NoError(t, err)
	assert.Equal(t, dashboard.AdminsInactive, filter)
	_, err = dashboard.ParseAdminFilter("deleted")
	assert.Error(t, err)

	pf, err := dashboard.ParsePropertyFilter("all")
	require.NoError(t, err)
	assert.Equal(t, dashboard.PropertiesAll, pf)
	assert.Equal(t, dashboard.KeyPendingProperties, dashboard.KeyOf("PENDING"))
	assert.Equal(t, dashboard.KeyAllProperties, dashboard.KeyOf(pf))
}

func TestRealOwners(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	owners, err := f.d.RealOwners.List(ctx)
	require.NoError(t, err)
	require.Len(t, owners, 2)

	requests := f.sb.Requests()
	_, err = f.d.RealOwners.Create(ctx, api.RealOwnerInput{FullName: "Hassan", NationalID: "string", PhoneNumber: "1", AccountBank: "2", IBAN: "3"})
	var verr *schema.ValidationError
	require.ErrorAs(t, err, &verr)
	field, ok := verr.Field("fullName")
	require.True(t, ok)
	assert.Equal(t, "Name must contain at least 2 names (3+ letters each)", field.Message)
	_, ok = verr.Field("nationalId")
	assert.True(t, ok)
	assert.Equal(t, requests, f.sb.Requests(), "invalid forms are not sent")

	in := api.RealOwnerInput{
		FullName:    "Hassan Al-Ghamdi",
		NationalID:  "1030303030",
		PhoneNumber: "+966533333333",
		AccountBank: "Riyad Bank",
		IBAN:        "SA1110000001111111111111",
	}
	created, err := f.d.RealOwners.Create(ctx, in)
	require.NoError(t, err)
	assert.False(t, created.HasIBANImage())

	owners, err = f.d.RealOwners.List(ctx)
	require.NoError(t, err)
	assert.Len(t, owners, 3)

	_, err = f.d.RealOwners.Create(ctx, in)
	require.Error(t, err)
	notice, _ := f.notices.Last()
	assert.Equal(t, "IBAN already registered", notice.Message, "the message of the server is shown")

	got, err := f.d.RealOwners.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.FullName, got.FullName)

	requests = f.sb.Requests()
	cleared, oneWord := "", "Hassan"
	_, err = f.d.RealOwners.Update(ctx, created.ID, api.RealOwnerUpdate{IBAN: &cleared, FullName: &oneWord})
	require.ErrorAs(t, err, &verr)
	field, ok = verr.Field("iban")
	require.True(t, ok)
	assert.Equal(t, "IBAN is required", field.Message)
	field, ok = verr.Field("fullName")
	require.True(t, ok)
	assert.Equal(t, "Name must contain at least 2 names (3+ letters each)", field.Message)
	_, ok = verr.Field("phoneNumber")
	assert.False(t, ok, "fields which are not provided are not checked")
	assert.Equal(t, requests, f.sb.Requests(), "invalid updates are not sent")

	name := "Hassan Al-Ghamdi Junior"
	updated, err := f.d.RealOwners.Update(ctx, created.ID, api.RealOwnerUpdate{FullName: &name})
	require.NoError(t, err)
	assert.Equal(t, name, updated.FullName)
	got, err = f.d.RealOwners.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, name, got.FullName)

	require.NoError(t, f.d.RealOwners.Delete(ctx, created.ID))
	owners, err = f.d.RealOwners.List(ctx)
	require.NoError(t, err)
	assert.Len(t, owners, 2)
}

func TestOwnerProperties(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	properties := f.d.RealOwners.Properties(sandbox.RealOwnerWithImageID)
	assert.Equal(t, "real-owner-properties/201", properties.Key())

	summary, err := properties.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, dashboard.PropertySummary{
		Properties: 2, SubUnits: 3, TotalPrice: 144000, TotalPaid: 120000, Remaining: 24000, FullyPaid: 1,
	}, summary)

	_, err = properties.Create(ctx, api.RealOwnerPropertyInput{Title: " "})
	var verr *schema.ValidationError
	require.ErrorAs(t, err, &verr)

	created, err := properties.Create(ctx, api.RealOwnerPropertyInput{
		Title: "Malqa Villa", RegionID: 1, CityID: 1, NeighborhoodID: 2, ListingTypeID: 1,
		SubUnits: []api.SubUnitInput{{PropertyTypeID: 2, PaymentType: api.PaymentYearly, PaymentValue: 90000, Price: 90000, PaidAmount: 90000}},
	})
	require.NoError(t, err)
	summary, err = properties.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Properties)
	assert.Equal(t, 2, summary.FullyPaid)

	got, err := properties.Get(ctx, created.ID)
	require.NoError(t, err)
	in := got.Input(sandbox.RealOwnerWithImageID)
	in.SubUnits[0].PaidAmount = 30000
	_, err = properties.Update(ctx, created.ID, in)
	require.NoError(t, err)
	summary, err = properties.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.FullyPaid)
	assert.Equal(t, float64(84000), summary.Remaining)

	require.NoError(t, properties.Delete(ctx, created.ID))
	list, err := properties.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestLookup(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	requests := f.sb.Requests()
	name, err := f.d.Lookup.Name(ctx, api.LookupCities, 2)
	require.NoError(t, err)
	assert.Equal(t, "Jeddah", name)
	assert.Equal(t, requests+9, f.sb.Requests())

	location, err := f.d.Lookup.Locate(ctx, 2, 3, 4)
	require.NoError(t, err)
	assert.Equal(t, dashboard.Location{Region: "Makkah Region", City: "Makkah", Neighborhood: "Al Aziziyah"}, location)
	assert.Equal(t, requests+9, f.sb.Requests(), "lookup data stays fresh")
}

func TestHome(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	stats := f.d.Home()
	assert.Empty(t, stats.Loaded)
	assert.Zero(t, stats.RealOwners)

	stats, err := f.d.LoadHome(ctx)
	require.NoError(t, err)
	assert.Equal(t, dashboard.HomeStats{
		Admins:     dashboard.AdminCounts{All: 3, Active: 2, Inactive: 1},
		Properties: dashboard.PropertyCounts{All: 6, Pending: 2, Approved: 2, Rejected: 2},
		RealOwners: 2,
		Loaded:     []string{dashboard.KeyAdmins, dashboard.KeyAllProperties, dashboard.KeyRealOwners},
	}, stats)

	// one failure for the fetch and one for its retry
	f.sb.Fail(http.MethodGet, api.PathRealOwners, http.StatusBadGateway, "")
	f.sb.Fail(http.MethodGet, api.PathRealOwners, http.StatusBadGateway, "")
	f.cache.Invalidate(dashboard.KeyRealOwners)
	_, err = f.d.LoadHome(ctx)
	assert.Error(t, err)
}
