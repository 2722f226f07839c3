package commands

import (
	"context"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/relabs-tech/aqaar/api"
	"github.com/relabs-tech/aqaar/core/access"
	"github.com/relabs-tech/aqaar/core/logger"
	"github.com/relabs-tech/aqaar/dashboard"
)

func PropertiesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "properties",
		Short: "Review submitted properties",
	}
	cmd.AddCommand(
		propertiesListCmd(app),
		propertiesShowCmd(app),
		propertiesReviewCmd("approve", "Approve a pending property", app.Dashboard.Properties.Approve),
		propertiesReviewCmd("reject", "Reject a pending property", app.Dashboard.Properties.Reject),
		propertiesDeleteCmd(app),
	)
	return cmd
}

func propertiesListCmd(app *App) *cobra.Command {
	cmd := protected(&cobra.Command{
		Use:   "list",
		Short: "List properties of one review status or all of them",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, _ := cmd.Flags().GetString("status")
			filter, err := dashboard.ParsePropertyFilter(status)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			properties, err := app.Dashboard.Properties.ByStatus(ctx, filter)
			if err != nil {
				return err
			}
			return app.print(cmd, properties, func(out io.Writer) error {
				t := newTable(out, "ID", "TITLE", "STATUS", "PRICE", "CITY", "UPDATED")
				for _, p := range properties {
					city, err := app.Dashboard.Lookup.Name(ctx, api.LookupCities, p.CityID)
					if err != nil {
						logger.FromContext(ctx).WithError(err).Debugln("lookup tables not available")
					}
					t.row(p.ID, p.Title, p.Status, p.Price, city, p.UpdatedAt)
				}
				return t.flush()
			})
		},
	}, access.RouteProperties)
	cmd.Flags().String("status", string(dashboard.PropertiesAll), "ALL, PENDING, APPROVED or REJECTED")
	return cmd
}

// propertyDetails is a property with its lookup names resolved
type propertyDetails struct {
	api.Property
	Region        string   `json:"region"`
	City          string   `json:"city"`
	Neighborhood  string   `json:"neighborhood"`
	PropertyType  string   `json:"propertyType"`
	ListingType   string   `json:"listingType"`
	Condition     string   `json:"condition"`
	FinishingType string   `json:"finishingType"`
	FeatureNames  []string `json:"featureNames"`
	Address       string   `json:"address,omitempty"`
}

func (a *App) describe(ctx context.Context, p api.Property, geocode bool) (propertyDetails, error) {
	details := propertyDetails{Property: p}
	data, err := a.Dashboard.Lookup.Data(ctx)
	if err != nil {
		return details, err
	}
	lang := a.Cache.Language(ctx)
	details.Region = data.Region(p.RegionID, lang)
	details.City = data.City(p.CityID, lang)
	details.Neighborhood = data.Neighborhood(p.NeighborhoodID, lang)
	details.PropertyType = data.PropertyType(p.PropertyTypeID, lang)
	details.ListingType = data.ListingType(p.ListingTypeID, lang)
	details.Condition = data.Condition(p.ConditionID, lang)
	details.FinishingType = data.FinishingType(p.FinishTypeID, lang)
	details.FeatureNames = data.FeatureNames(p.Features, lang)
	if geocode {
		address, err := a.Geocoder.ReverseGeocode(ctx, p.Latitude, p.Longitude)
		if err != nil {
			logger.FromContext(ctx).WithError(err).Warnln("reverse geocoding failed")
		}
		details.Address = address
	}
	return details, nil
}

func propertiesShowCmd(app *App) *cobra.Command {
	cmd := protected(&cobra.Command{
		Use:   "show ID",
		Short: "Show a property with the names of its location and features",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			geocode, _ := cmd.Flags().GetBool("address")
			ctx := cmd.Context()
			property, err := app.Dashboard.Properties.Find(ctx, id)
			if err != nil {
				return err
			}
			details, err := app.describe(ctx, property, geocode)
			if err != nil {
				return err
			}
			return app.print(cmd, details, func(out io.Writer) error {
				t := newTable(out, "FIELD", "VALUE")
				t.row("id", details.ID)
				t.row("title", details.Title)
				t.row("status", details.Status)
				t.row("price", details.Price)
				t.row("area", details.Area)
				t.row("type", details.PropertyType)
				t.row("listing", details.ListingType)
				t.row("condition", details.Condition)
				t.row("finishing", details.FinishingType)
				t.row("location", strings.Join([]string{details.Neighborhood, details.City, details.Region}, ", "))
				if details.Address != "" {
					t.row("address", details.Address)
				}
				t.row("rooms", details.RoomsCount)
				t.row("bathrooms", details.BathroomsCount)
				t.row("features", strings.Join(details.FeatureNames, ", "))
				if details.AdminEmail != nil {
					t.row("submitted by", *details.AdminEmail)
				}
				return t.flush()
			})
		},
	}, access.RouteProperties)
	cmd.Flags().Bool("address", false, "Resolve the coordinates into an address")
	return cmd
}

func propertiesReviewCmd(use, short string, review func(ctx context.Context, id int64) error) *cobra.Command {
	return protected(&cobra.Command{
		Use:   use + " ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return review(cmd.Context(), id)
		},
	}, access.RouteProperties)
}

func propertiesDeleteCmd(app *App) *cobra.Command {
	return protected(&cobra.Command{
		Use:   "delete ID",
		Short: "Delete a property",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return app.Dashboard.Properties.Delete(cmd.Context(), id)
		},
	}, access.RouteProperties)
}
