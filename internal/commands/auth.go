package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/relabs-tech/aqaar/core/access"
	"github.com/relabs-tech/aqaar/core/i18n"
)

func LoginCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with the owner account",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")

			if app.Guard.CheckAuthRoute(ctx).Kind == access.Redirect {
				fmt.Fprintf(app.Out, "already signed in as %s\n", app.Store.Session().Email)
				return nil
			}
			if _, err := app.Store.Authenticate(ctx, app.API, strings.TrimSpace(email), password); err != nil {
				return err
			}
			fmt.Fprintf(app.Out, "signed in as %s\n", app.Store.Session().Email)
			return nil
		},
	}
	cmd.Flags().String("email", "", "Email of the owner account")
	cmd.Flags().String("password", "", "Password of the owner account")
	return cmd
}

func LogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Store.Logout(cmd.Context())
			return nil
		},
	}
}

// whoami is the printed session
type whoami struct {
	SubjectID string `json:"subjectId"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Expiry    string `json:"expiry"`
	Language  string `json:"language"`
}

func WhoamiCmd(app *App) *cobra.Command {
	return protected(&cobra.Command{
		Use:   "whoami",
		Short: "Show the signed in owner",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			session := access.SessionFromContext(ctx)
			w := whoami{
				SubjectID: session.SubjectID,
				Name:      session.DisplayName,
				Email:     session.Email,
				Role:      session.Role,
				Expiry:    session.Expiry.Format("2006-01-02 15:04:05 MST"),
				Language:  app.Languages.Language(ctx),
			}
			return app.print(cmd, w, func(out io.Writer) error {
				t := newTable(out, "FIELD", "VALUE")
				t.row("subject", w.SubjectID)
				t.row("name", w.Name)
				t.row("email", w.Email)
				t.row("role", w.Role)
				t.row("expires", w.Expiry)
				t.row("language", w.Language)
				return t.flush()
			})
		},
	}, access.RouteHome)
}

func LangCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:       "lang [ar|en]",
		Short:     "Show or select the language of messages",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{i18n.Arabic, i18n.English},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if len(args) == 1 {
				if err := app.Languages.Set(ctx, args[0]); err != nil {
					return err
				}
			}
			lang := app.Languages.Language(ctx)
			fmt.Fprintf(app.Out, "%s (%s)\n", lang, i18n.Direction(lang))
			return nil
		},
	}
}
