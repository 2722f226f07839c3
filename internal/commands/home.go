package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/relabs-tech/aqaar/core/access"
	"github.com/relabs-tech/aqaar/core/logger"
	"github.com/relabs-tech/aqaar/dashboard"
)

func printHome(out io.Writer, stats dashboard.HomeStats) error {
	t := newTable(out, "", "ALL", "ACTIVE", "INACTIVE", "PENDING", "APPROVED", "REJECTED")
	t.row("admins", stats.Admins.All, stats.Admins.Active, stats.Admins.Inactive, "", "", "")
	t.row("properties", stats.Properties.All, "", "", stats.Properties.Pending, stats.Properties.Approved, stats.Properties.Rejected)
	t.row("real owners", stats.RealOwners, "", "", "", "", "")
	return t.flush()
}

func HomeCmd(app *App) *cobra.Command {
	return protected(&cobra.Command{
		Use:   "home",
		Short: "Show the counters of the home page",
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := app.Dashboard.LoadHome(cmd.Context())
			if err != nil {
				logger.FromContext(cmd.Context()).WithError(err).Warnln("home page is incomplete")
			}
			if err := app.print(cmd, stats, func(out io.Writer) error { return printHome(out, stats) }); err != nil {
				return err
			}
			return err
		},
	}, access.RouteHome)
}

func WatchCmd(app *App) *cobra.Command {
	cmd := protected(&cobra.Command{
		Use:   "watch",
		Short: "Keep the lists fresh in the background and print the home counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			every, _ := cmd.Flags().GetDuration("every")
			duration, _ := cmd.Flags().GetDuration("for")
			if every <= 0 {
				return fmt.Errorf("invalid interval %s", every)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if duration > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, duration)
				defer cancel()
			}
			rlog := logger.FromContext(ctx)

			if _, err := app.Dashboard.LoadHome(ctx); err != nil {
				rlog.WithError(err).Warnln("initial load failed")
			}

			done := make(chan struct{})
			go func() {
				defer close(done)
				app.Cache.Run(ctx)
			}()

			show := func() error {
				stats := app.Dashboard.Home()
				if jsonOutput(cmd) {
					return printJSON(app.Out, stats)
				}
				fmt.Fprintf(app.Out, "%s\n", time.Now().Format("15:04:05"))
				return printHome(app.Out, stats)
			}
			if err := show(); err != nil {
				return err
			}

			ticker := time.NewTicker(every)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					<-done
					return nil
				case <-ticker.C:
					if err := show(); err != nil {
						return err
					}
				}
			}
		},
	}, access.RouteHome)
	cmd.Flags().Duration("every", 10*time.Second, "Interval between two prints")
	cmd.Flags().Duration("for", 0, "Stop after this duration, zero watches until interrupted")
	return cmd
}
