package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/tada/internal/config"
	"github.com/idilsaglam/tada/internal/ui"
)

func newTenantCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tenant",
		Short: "Show the current tenant and where it comes from",
		Args:  argsExactly(0, "tada tenant [use <id> | clear]"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"tenant": app.cfg.Tenant,
					"source": app.cfg.TenantSource,
				})
			}
			t := ui.Current()
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", app.cfg.Tenant, t.Muted.Render("("+string(app.cfg.TenantSource)+")"))
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "use <id>",
		Short: "Remember a tenant for future runs",
		Args:  argsExactly(1, "tada tenant use <id>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.SaveTenant(args[0]); err != nil {
				return err
			}
			ui.OK(cmd.OutOrStdout(), "tenant set to "+args[0])
			if app.cfg.TenantSource == config.SourceEnv || app.cfg.TenantSource == config.SourceFlag {
				fmt.Fprintln(cmd.ErrOrStderr(), ui.Current().Muted.Render(
					"Note: --tenant or TADA_TENANT still takes precedence"))
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Forget the remembered tenant",
		Args:  argsExactly(0, "tada tenant clear"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.ClearState(); err != nil {
				return err
			}
			ui.OK(cmd.OutOrStdout(), "tenant cleared")
			return nil
		},
	})
	return cmd
}
