package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/relabs-tech/aqaar/api"
	"github.com/relabs-tech/aqaar/core/access"
	"github.com/relabs-tech/aqaar/core/i18n"
)

func RealOwnersCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "realowners",
		Aliases: []string{"real-owners"},
		Short:   "Manage real owners and their properties",
	}
	cmd.AddCommand(
		realOwnersListCmd(app),
		realOwnersShowCmd(app),
		realOwnersCreateCmd(app),
		realOwnersUpdateCmd(app),
		realOwnersDeleteCmd(app),
		ownerPropertiesCmd(app),
	)
	return cmd
}

// realOwnerFlags maps the flags of create and update to the fields of a real owner
var realOwnerFlags = []struct {
	name, usage string
}{
	{"full-name", "Full name, at least two names"},
	{"national-id", "National id"},
	{"phone", "Phone number"},
	{"bank", "Name of the bank"},
	{"iban", "IBAN of the bank account"},
}

func addRealOwnerFlags(flags *pflag.FlagSet) {
	for _, f := range realOwnerFlags {
		flags.String(f.name, "", f.usage)
	}
	flags.String("iban-image", "", "Picture of the bank document, a file or s3://bucket/key")
}

func realOwnersListCmd(app *App) *cobra.Command {
	return protected(&cobra.Command{
		Use:   "list",
		Short: "List real owners",
		RunE: func(cmd *cobra.Command, args []string) error {
			owners, err := app.Dashboard.RealOwners.List(cmd.Context())
			if err != nil {
				return err
			}
			return app.print(cmd, owners, func(out io.Writer) error {
				t := newTable(out, "ID", "NAME", "NATIONAL ID", "PHONE", "BANK", "IBAN", "IMAGE")
				for _, o := range owners {
					t.row(o.ID, o.FullName, o.NationalID, o.PhoneNumber, o.AccountBank, o.IBAN, yesNo(o.HasIBANImage()))
				}
				return t.flush()
			})
		},
	}, access.RouteRealOwners)
}

func realOwnersShowCmd(app *App) *cobra.Command {
	return protected(&cobra.Command{
		Use:   "show ID",
		Short: "Show a real owner with the summary of their properties",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			owner, err := app.Dashboard.RealOwners.Get(ctx, id)
			if err != nil {
				return err
			}
			summary, err := app.Dashboard.RealOwners.Properties(id).Summary(ctx)
			if err != nil {
				return err
			}
			v := struct {
				api.RealOwner
				Summary interface{} `json:"summary"`
			}{owner, summary}
			return app.print(cmd, v, func(out io.Writer) error {
				image := i18n.T(app.Languages.Language(ctx), "realOwners.validation.notAvailable")
				if owner.HasIBANImage() {
					image = owner.IBANImageURL
				}
				t := newTable(out, "FIELD", "VALUE")
				t.row("id", owner.ID)
				t.row("name", owner.FullName)
				t.row("national id", owner.NationalID)
				t.row("phone", owner.PhoneNumber)
				t.row("bank", owner.AccountBank)
				t.row("iban", owner.IBAN)
				t.row("iban image", image)
				t.row("properties", summary.Properties)
				t.row("sub units", summary.SubUnits)
				t.row("total price", summary.TotalPrice)
				t.row("total paid", summary.TotalPaid)
				t.row("remaining", summary.Remaining)
				t.row("fully paid", summary.FullyPaid)
				return t.flush()
			})
		},
	}, access.RouteRealOwners)
}

func realOwnersCreateCmd(app *App) *cobra.Command {
	cmd := protected(&cobra.Command{
		Use:   "create",
		Short: "Add a real owner",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			flags := cmd.Flags()
			in := api.RealOwnerInput{}
			in.FullName, _ = flags.GetString("full-name")
			in.NationalID, _ = flags.GetString("national-id")
			in.PhoneNumber, _ = flags.GetString("phone")
			in.AccountBank, _ = flags.GetString("bank")
			in.IBAN, _ = flags.GetString("iban")
			if ref, _ := flags.GetString("iban-image"); ref != "" {
				image, err := app.Images.Read(ctx, ref)
				if err != nil {
					return err
				}
				in.IBANImage = image
			}
			owner, err := app.Dashboard.RealOwners.Create(ctx, in)
			if err != nil {
				return err
			}
			return app.print(cmd, owner, func(out io.Writer) error {
				_, err := fmt.Fprintf(out, "created real owner %d\n", owner.ID)
				return err
			})
		},
	}, access.RouteRealOwners)
	addRealOwnerFlags(cmd.Flags())
	return cmd
}

func realOwnersUpdateCmd(app *App) *cobra.Command {
	cmd := protected(&cobra.Command{
		Use:   "update ID",
		Short: "Change the fields of a real owner given as flags",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			flags := cmd.Flags()
			changed := func(name string) *string {
				if !flags.Changed(name) {
					return nil
				}
				v, _ := flags.GetString(name)
				return &v
			}
			u := api.RealOwnerUpdate{
				FullName:    changed("full-name"),
				NationalID:  changed("national-id"),
				PhoneNumber: changed("phone"),
				AccountBank: changed("bank"),
				IBAN:        changed("iban"),
			}
			u.ClearIBANImage, _ = flags.GetBool("clear-image")
			if ref := changed("iban-image"); ref != nil {
				if u.ClearIBANImage {
					return fmt.Errorf("--iban-image and --clear-image exclude each other")
				}
				if u.IBANImage, err = app.Images.Read(ctx, *ref); err != nil {
					return err
				}
			}
			if len(u.Fields()) == 0 && u.IBANImage == nil {
				return fmt.Errorf("nothing to update")
			}
			owner, err := app.Dashboard.RealOwners.Update(ctx, id, u)
			if err != nil {
				return err
			}
			return app.print(cmd, owner, func(out io.Writer) error {
				_, err := fmt.Fprintf(out, "updated real owner %d\n", owner.ID)
				return err
			})
		},
	}, access.RouteRealOwners)
	addRealOwnerFlags(cmd.Flags())
	cmd.Flags().Bool("clear-image", false, "Remove the picture of the bank document")
	return cmd
}

func realOwnersDeleteCmd(app *App) *cobra.Command {
	return protected(&cobra.Command{
		Use:   "delete ID",
		Short: "Delete a real owner",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return app.Dashboard.RealOwners.Delete(cmd.Context(), id)
		},
	}, access.RouteRealOwners)
}

// parseSubUnit parses "propertyTypeId,paymentType,paymentValue,price,paidAmount",
// for example "2,MONTHLY,3500,42000,42000"
func parseSubUnit(s string) (api.SubUnitInput, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 5 {
		return api.SubUnitInput{}, fmt.Errorf("invalid sub unit '%s', want type,payment,value,price,paid", s)
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	typeID, err := parseID(parts[0])
	if err != nil {
		return api.SubUnitInput{}, fmt.Errorf("invalid sub unit '%s': %w", s, err)
	}
	u := api.SubUnitInput{PropertyTypeID: typeID, PaymentType: strings.ToUpper(parts[1])}
	for i, dst := range []*float64{&u.PaymentValue, &u.Price, &u.PaidAmount} {
		if *dst, err = strconv.ParseFloat(parts[i+2], 64); err != nil {
			return api.SubUnitInput{}, fmt.Errorf("invalid amount '%s' in sub unit '%s'", parts[i+2], s)
		}
	}
	return u, nil
}
