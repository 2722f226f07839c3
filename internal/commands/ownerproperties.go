package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/relabs-tech/aqaar/api"
	"github.com/relabs-tech/aqaar/core/access"
)

func ownerPropertiesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "properties",
		Short: "Manage the properties of a real owner",
	}
	cmd.AddCommand(
		ownerPropertiesListCmd(app),
		ownerPropertiesShowCmd(app),
		ownerPropertiesCreateCmd(app),
		ownerPropertiesUpdateCmd(app),
		ownerPropertiesDeleteCmd(app),
	)
	return cmd
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, len(args))
	for i, arg := range args {
		id, err := parseID(arg)
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return ids, nil
}

func addOwnerPropertyFlags(flags *pflag.FlagSet) {
	flags.String("title", "", "Title of the property")
	flags.String("description", "", "Description of the property")
	flags.Int64("region", 0, "Region id")
	flags.Int64("city", 0, "City id")
	flags.Int64("neighborhood", 0, "Neighborhood id")
	flags.Int64("listing-type", 0, "Listing type id")
	flags.StringArray("subunit", nil, "Sub unit as type,payment,value,price,paid, may be repeated")
}

// applyOwnerPropertyFlags overwrites the fields of in whose flags were given. Given
// sub units replace all sub units of in.
func applyOwnerPropertyFlags(flags *pflag.FlagSet, in *api.RealOwnerPropertyInput) error {
	if flags.Changed("title") {
		in.Title, _ = flags.GetString("title")
	}
	if flags.Changed("description") {
		in.Description, _ = flags.GetString("description")
	}
	for name, dst := range map[string]*int64{
		"region":       &in.RegionID,
		"city":         &in.CityID,
		"neighborhood": &in.NeighborhoodID,
		"listing-type": &in.ListingTypeID,
	} {
		if flags.Changed(name) {
			*dst, _ = flags.GetInt64(name)
		}
	}
	if flags.Changed("subunit") {
		specs, _ := flags.GetStringArray("subunit")
		in.SubUnits = make([]api.SubUnitInput, 0, len(specs))
		for _, spec := range specs {
			u, err := parseSubUnit(spec)
			if err != nil {
				return err
			}
			in.SubUnits = append(in.SubUnits, u)
		}
	}
	return nil
}

func ownerPropertiesListCmd(app *App) *cobra.Command {
	return protected(&cobra.Command{
		Use:   "list OWNER",
		Short: "List the properties of a real owner",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ownerID, err := parseID(args[0])
			if err != nil {
				return err
			}
			properties, err := app.Dashboard.RealOwners.Properties(ownerID).List(cmd.Context())
			if err != nil {
				return err
			}
			return app.print(cmd, properties, func(out io.Writer) error {
				t := newTable(out, "ID", "TITLE", "SUB UNITS", "PRICE", "PAID", "REMAINING", "FULLY PAID")
				for _, p := range properties {
					t.row(p.ID, p.Title, len(p.SubUnits), p.TotalPrice(), p.TotalPaid(), p.Remaining(), yesNo(p.IsFullyPaid()))
				}
				return t.flush()
			})
		},
	}, access.RouteRealOwners)
}

func ownerPropertiesShowCmd(app *App) *cobra.Command {
	return protected(&cobra.Command{
		Use:   "show OWNER ID",
		Short: "Show a property of a real owner with its sub units",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			property, err := app.Dashboard.RealOwners.Properties(ids[0]).Get(ctx, ids[1])
			if err != nil {
				return err
			}
			location, err := app.Dashboard.Lookup.Locate(ctx, property.RegionID, property.CityID, property.NeighborhoodID)
			if err != nil {
				return err
			}
			return app.print(cmd, property, func(out io.Writer) error {
				fmt.Fprintf(out, "%d %s\n%s, %s, %s\n\n", property.ID, property.Title, location.Neighborhood, location.City, location.Region)
				t := newTable(out, "SUB UNIT", "PAYMENT", "VALUE", "PRICE", "PAID", "TENANT", "STATUS")
				for _, u := range property.SubUnits {
					status := "open"
					if u.Paid() {
						status = "paid"
					}
					t.row(u.ID, u.PaymentType, u.PaymentValue, u.Price, u.PaidAmount, u.Tenant(), status)
				}
				if err := t.flush(); err != nil {
					return err
				}
				_, err := fmt.Fprintf(out, "\ntotal %v, paid %v, remaining %v\n", property.TotalPrice(), property.TotalPaid(), property.Remaining())
				return err
			})
		},
	}, access.RouteRealOwners)
}

func ownerPropertiesCreateCmd(app *App) *cobra.Command {
	cmd := protected(&cobra.Command{
		Use:   "create OWNER",
		Short: "Add a property to a real owner",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ownerID, err := parseID(args[0])
			if err != nil {
				return err
			}
			in := api.RealOwnerPropertyInput{SubUnits: []api.SubUnitInput{}}
			if err := applyOwnerPropertyFlags(cmd.Flags(), &in); err != nil {
				return err
			}
			created, err := app.Dashboard.RealOwners.Properties(ownerID).Create(cmd.Context(), in)
			if err != nil {
				return err
			}
			return app.print(cmd, created, func(out io.Writer) error {
				_, err := fmt.Fprintf(out, "created property %d\n", created.ID)
				return err
			})
		},
	}, access.RouteRealOwners)
	addOwnerPropertyFlags(cmd.Flags())
	return cmd
}

func ownerPropertiesUpdateCmd(app *App) *cobra.Command {
	cmd := protected(&cobra.Command{
		Use:   "update OWNER ID",
		Short: "Change the fields of a property given as flags",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			view := app.Dashboard.RealOwners.Properties(ids[0])
			current, err := view.Get(ctx, ids[1])
			if err != nil {
				return err
			}
			in := current.Input(ids[0])
			if err := applyOwnerPropertyFlags(cmd.Flags(), &in); err != nil {
				return err
			}
			updated, err := view.Update(ctx, ids[1], in)
			if err != nil {
				return err
			}
			return app.print(cmd, updated, func(out io.Writer) error {
				_, err := fmt.Fprintf(out, "updated property %d\n", updated.ID)
				return err
			})
		},
	}, access.RouteRealOwners)
	addOwnerPropertyFlags(cmd.Flags())
	return cmd
}

func ownerPropertiesDeleteCmd(app *App) *cobra.Command {
	return protected(&cobra.Command{
		Use:   "delete OWNER ID",
		Short: "Delete a property of a real owner",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			return app.Dashboard.RealOwners.Properties(ids[0]).Delete(cmd.Context(), ids[1])
		},
	}, access.RouteRealOwners)
}
