package commands

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/relabs-tech/aqaar/core/access"
	"github.com/relabs-tech/aqaar/dashboard"
)

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id '%s'", s)
	}
	return id, nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func AdminsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admins",
		Short: "Manage admin accounts",
	}
	cmd.AddCommand(adminsListCmd(app), adminsToggleCmd(app), adminsDeleteCmd(app))
	return cmd
}

func adminsListCmd(app *App) *cobra.Command {
	cmd := protected(&cobra.Command{
		Use:   "list",
		Short: "List admins, optionally only active or inactive ones",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, _ := cmd.Flags().GetString("status")
			filter, err := dashboard.ParseAdminFilter(status)
			if err != nil {
				return err
			}
			partitions, err := app.Dashboard.Admins.Partitions(cmd.Context())
			if err != nil {
				return err
			}
			admins := partitions.ByFilter(filter)
			return app.print(cmd, admins, func(out io.Writer) error {
				t := newTable(out, "ID", "NAME", "EMAIL", "PHONE", "ACTIVE", "DELETABLE")
				for _, a := range admins {
					t.row(a.ID, a.Name, a.Email, a.Phone, yesNo(a.Active), yesNo(dashboard.CanDelete(a)))
				}
				if err := t.flush(); err != nil {
					return err
				}
				c := dashboard.CountAdmins(partitions.All)
				_, err := fmt.Fprintf(out, "\nall %d, active %d, inactive %d\n", c.All, c.Active, c.Inactive)
				return err
			})
		},
	}, access.RouteAdmins)
	cmd.Flags().String("status", string(dashboard.AdminsAll), "ALL, ACTIVE or INACTIVE")
	return cmd
}

func adminsToggleCmd(app *App) *cobra.Command {
	return protected(&cobra.Command{
		Use:   "toggle ID",
		Short: "Activate an inactive admin or deactivate an active one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return app.Dashboard.Admins.ToggleStatus(cmd.Context(), id)
		},
	}, access.RouteAdmins)
}

func adminsDeleteCmd(app *App) *cobra.Command {
	return protected(&cobra.Command{
		Use:   "delete ID",
		Short: "Delete an inactive admin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return app.Dashboard.Admins.Delete(cmd.Context(), id)
		},
	}, access.RouteAdmins)
}
