package dashboard

import (
	"context"

	"github.com/relabs-tech/aqaar/api"
	"github.com/relabs-tech/aqaar/core/query"
)

// Admins is the admin management view
type Admins struct {
	d *Dashboard
}

func (a *Admins) register() {
	a.d.cache.Register(query.Definition{
		Key: KeyAdmins,
		Fetch: func(ctx context.Context) (interface{}, error) {
			return a.d.api.ListAdmins(ctx)
		},
		StaleTime:       AdminsStaleTime,
		RefetchInterval: AdminsStaleTime,
	})
}

// List returns the accounts with role Admin
func (a *Admins) List(ctx context.Context) ([]api.Admin, error) {
	accounts, err := query.Read[[]api.Admin](ctx, a.d.cache, KeyAdmins)
	if err != nil {
		return nil, err
	}
	return OnlyAdmins(accounts), nil
}

// Partitions returns the admins split by status
func (a *Admins) Partitions(ctx context.Context) (AdminPartitions, error) {
	admins, err := a.List(ctx)
	if err != nil {
		return AdminPartitions{}, err
	}
	return PartitionAdmins(admins), nil
}

// ByStatus returns the admins selected by f
func (a *Admins) ByStatus(ctx context.Context, f AdminFilter) ([]api.Admin, error) {
	p, err := a.Partitions(ctx)
	if err != nil {
		return nil, err
	}
	return p.ByFilter(f), nil
}

// Counts counts the admins by status
func (a *Admins) Counts(ctx context.Context) (AdminCounts, error) {
	admins, err := a.List(ctx)
	if err != nil {
		return AdminCounts{}, err
	}
	return CountAdmins(admins), nil
}

// Find returns the admin id
func (a *Admins) Find(ctx context.Context, id int64) (api.Admin, error) {
	admins, err := a.List(ctx)
	if err != nil {
		return api.Admin{}, err
	}
	for _, admin := range admins {
		if admin.ID == id {
			return admin, nil
		}
	}
	return api.Admin{}, ErrAdminNotFound
}

// ToggleStatus activates an inactive admin or deactivates an active one. The cache
// shows the new status right away.
func (a *Admins) ToggleStatus(ctx context.Context, id int64) error {
	return a.d.cache.Mutate(ctx, query.Mutation{
		Label: "admins.toggle",
		Optimistic: []query.Patch{
			query.Edit(KeyAdmins, func(admins []api.Admin) []api.Admin {
				for i := range admins {
					if admins[i].ID == id {
						admins[i].Active = !admins[i].Active
					}
				}
				return admins
			}),
		},
		Do: func(ctx context.Context) error {
			return a.d.api.ToggleAdminStatus(ctx, id)
		},
		Invalidate:    []string{KeyAdmins},
		Settle:        []string{KeyAdmins},
		Success:       "admins.actions.toggleSuccess",
		Failure:       "admins.actions.toggleError",
		ServerMessage: true,
	})
}

// Delete deletes an inactive admin. Active admins are refused with ErrAdminActive
// without asking the backend.
func (a *Admins) Delete(ctx context.Context, id int64) error {
	admin, err := a.Find(ctx, id)
	if err != nil {
		return err
	}
	if !CanDelete(admin) {
		return ErrAdminActive
	}
	return a.d.cache.Mutate(ctx, query.Mutation{
		Label: "admins.delete",
		Optimistic: []query.Patch{
			query.Edit(KeyAdmins, func(admins []api.Admin) []api.Admin {
				return splice(admins, func(admin api.Admin) bool { return admin.ID == id })
			}),
		},
		Do: func(ctx context.Context) error {
			return a.d.api.DeleteAdmin(ctx, id)
		},
		Invalidate: []string{KeyAdmins},
		Settle:     []string{KeyAdmins},
		Success:    "admins.actions.deleteSuccess",
		Failure:    "admins.actions.deleteError",
	})
}
