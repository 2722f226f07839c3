package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/relabs-tech/aqaar/core/access"
	"github.com/relabs-tech/aqaar/core/i18n"
	"github.com/relabs-tech/aqaar/core/logger"
	"github.com/relabs-tech/aqaar/dashboard"
)

// routeAnnotation marks a command as a protected screen of the console. The value is
// the route the guard checks.
const routeAnnotation = "route"

func protected(cmd *cobra.Command, route access.Route) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[routeAnnotation] = string(route)
	return cmd
}

// RootCmd returns the ownerdesk command with all sub commands
func RootCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "ownerdesk",
		Short:         "Owner console of the aqaar property platform",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.before(cmd)
		},
	}
	cmd.PersistentFlags().Bool("json", false, "Print results as JSON")
	cmd.SetOut(app.Out)
	cmd.SetErr(app.Err)

	cmd.AddCommand(
		LoginCmd(app),
		LogoutCmd(app),
		WhoamiCmd(app),
		LangCmd(app),
		HomeCmd(app),
		WatchCmd(app),
		AdminsCmd(app),
		PropertiesCmd(app),
		RealOwnersCmd(app),
		LookupCmd(app),
	)
	return cmd
}

// refusals are the catalog keys of actions the dashboard refuses without asking the
// backend
var refusals = map[error]string{
	dashboard.ErrAdminActive: "admins.actions.deleteActive",
	dashboard.ErrNotPending:  "properties.actions.notPending",
}

// localizedError carries a message in the language of the owner
type localizedError struct {
	message string
	err     error
}

func (e *localizedError) Error() string {
	return e.message
}

func (e *localizedError) Unwrap() error {
	return e.err
}

// Execute runs the command line args. Refused actions come back with a localized
// message.
func (a *App) Execute(ctx context.Context, args []string) error {
	cmd := RootCmd(a)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	for refusal, key := range refusals {
		if errors.Is(err, refusal) {
			return &localizedError{message: i18n.T(a.Languages.Language(ctx), key), err: err}
		}
	}
	return err
}

// before restores the session and runs the route guard for protected commands. The
// session of an allowed command is put into its context.
func (a *App) before(cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, rlog := logger.ContextWithLogger(ctx)
	ctx, _ = logger.ContextWithLabel(ctx, cmd.CommandPath())
	if err := a.Store.Restore(ctx); err != nil {
		rlog.WithError(err).Warnln("cannot restore session")
	}

	route, ok := cmd.Annotations[routeAnnotation]
	if !ok {
		cmd.SetContext(ctx)
		return nil
	}
	session, err := a.Guard.Require(ctx, access.Route(route))
	if err != nil {
		return &localizedError{message: i18n.T(a.Languages.Language(ctx), "auth.session.required"), err: err}
	}
	ctx = session.ContextWithSession(ctx)
	ctx, _ = logger.ContextWithLoggerIdentity(ctx, session.Email)
	cmd.SetContext(ctx)
	return nil
}

func jsonOutput(cmd *cobra.Command) bool {
	asJSON, _ := cmd.Flags().GetBool("json")
	return asJSON
}

// printJSON writes v as indented JSON
func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// table writes aligned columns
type table struct {
	tw *tabwriter.Writer
}

func newTable(w io.Writer, header ...interface{}) *table {
	t := &table{tw: tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)}
	t.row(header...)
	return t
}

func (t *table) row(columns ...interface{}) {
	for i, c := range columns {
		if i > 0 {
			fmt.Fprint(t.tw, "\t")
		}
		fmt.Fprint(t.tw, c)
	}
	fmt.Fprintln(t.tw)
}

func (t *table) flush() error {
	return t.tw.Flush()
}

// print writes v as JSON if requested, otherwise it calls text
func (a *App) print(cmd *cobra.Command, v interface{}, text func(w io.Writer) error) error {
	if jsonOutput(cmd) {
		return printJSON(a.Out, v)
	}
	return text(a.Out)
}
