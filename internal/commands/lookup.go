package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/relabs-tech/aqaar/api"
	"github.com/relabs-tech/aqaar/core/access"
)

// lookupRow is one entry of a lookup table. Parent is the region of a city or the
// city of a neighborhood.
type lookupRow struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Parent int64  `json:"parent,omitempty"`
}

var lookupTables = []string{
	api.LookupRegions,
	api.LookupCities,
	api.LookupNeighborhoods,
	api.LookupPropertyTypes,
	api.LookupListingTypes,
	api.LookupPropertyConditions,
	api.LookupFinishingTypes,
	api.LookupPropertyStatusValues,
	api.LookupPropertyFeatures,
}

func lookupRows(data api.LookupData, table, lang string) ([]lookupRow, error) {
	plain := func(items []api.LookupItem) []lookupRow {
		rows := make([]lookupRow, len(items))
		for i, item := range items {
			rows[i] = lookupRow{ID: item.ID, Name: item.Name(lang)}
		}
		return rows
	}
	switch table {
	case api.LookupRegions:
		return plain(data.Regions), nil
	case api.LookupCities:
		rows := make([]lookupRow, len(data.Cities))
		for i, c := range data.Cities {
			rows[i] = lookupRow{ID: c.ID, Name: c.Name(lang), Parent: c.RegionID}
		}
		return rows, nil
	case api.LookupNeighborhoods:
		rows := make([]lookupRow, len(data.Neighborhoods))
		for i, n := range data.Neighborhoods {
			rows[i] = lookupRow{ID: n.ID, Name: n.Name(lang), Parent: n.CityID}
		}
		return rows, nil
	case api.LookupPropertyTypes:
		return plain(data.PropertyTypes), nil
	case api.LookupListingTypes:
		return plain(data.ListingTypes), nil
	case api.LookupPropertyConditions:
		return plain(data.PropertyConditions), nil
	case api.LookupFinishingTypes:
		return plain(data.FinishingTypes), nil
	case api.LookupPropertyStatusValues:
		return plain(data.PropertyStatusValues), nil
	case api.LookupPropertyFeatures:
		return plain(data.PropertyFeatures), nil
	}
	return nil, fmt.Errorf("unknown lookup table '%s', use one of %s", table, strings.Join(lookupTables, ", "))
}

func LookupCmd(app *App) *cobra.Command {
	return protected(&cobra.Command{
		Use:       "lookup [TABLE]",
		Short:     "Show the lookup tables, or the entries of one table",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: lookupTables,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			data, err := app.Dashboard.Lookup.Data(ctx)
			if err != nil {
				return err
			}
			lang := app.Cache.Language(ctx)

			if len(args) == 0 {
				sizes := map[string]int{}
				for _, table := range lookupTables {
					rows, _ := lookupRows(data, table, lang)
					sizes[table] = len(rows)
				}
				return app.print(cmd, sizes, func(out io.Writer) error {
					t := newTable(out, "TABLE", "ENTRIES")
					for _, table := range lookupTables {
						t.row(table, sizes[table])
					}
					return t.flush()
				})
			}

			rows, err := lookupRows(data, args[0], lang)
			if err != nil {
				return err
			}
			return app.print(cmd, rows, func(out io.Writer) error {
				t := newTable(out, "ID", "NAME", "PARENT")
				for _, r := range rows {
					parent := ""
					if r.Parent != 0 {
						parent = fmt.Sprint(r.Parent)
					}
					t.row(r.ID, r.Name, parent)
				}
				return t.flush()
			})
		},
	}, access.RouteHome)
}
