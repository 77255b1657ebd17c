// Package cli wires the tada commands: the interactive client when run
// bare, and scriptable subcommands for every item operation.
package cli

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/idilsaglam/tada/internal/api"
	"github.com/idilsaglam/tada/internal/config"
	"github.com/idilsaglam/tada/internal/i18n"
	"github.com/idilsaglam/tada/internal/logging"
	"github.com/idilsaglam/tada/internal/tui"
	"github.com/idilsaglam/tada/internal/ui"
)

// Version is stamped at build time.
var Version = "dev"

type App struct {
	ConfigPath string
	BaseURL    string
	Tenant     string
	Theme      string
	Lang       string
	Debug      bool
	Format     string

	cfg      *config.Config
	logger   *log.Logger
	tr       *i18n.Translator
	closeLog func() error
}

// Execute runs the command line and returns the process exit code.
func Execute(args []string) int {
	app := &App{}
	cmd := newRootCmd(app)
	cmd.SetArgs(args)
	err := cmd.Execute()
	if err != nil && !Reported(err) {
		writeErr(cmd.ErrOrStderr(), app, err)
	}
	return ExitCode(err)
}

func newRootCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "tada",
		Short:         "Todo list client (TUI + CLI)",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: strings.TrimSpace(`
  # Start the interactive client
  tada

  # Scriptable commands
  tada add "Buy milk"
  tada ls --group
  tada done 12 15
  tada edit 12 --memo "2L, low fat" --image ./milk.png

  # Work against another tenant
  tada tenant use alice
`),
		Args: argsExactly(0, "tada [command]"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(app)
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.setup(cmd, cmd == cmd.Root())
	}
	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		if app.closeLog != nil {
			return app.closeLog()
		}
		return nil
	}
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return usageErr(err.Error())
	})

	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", "", "Path to config.toml (default ~/.tada/config.toml)")
	cmd.PersistentFlags().StringVar(&app.BaseURL, "base-url", "", "API base URL")
	cmd.PersistentFlags().StringVar(&app.Tenant, "tenant", "", "Tenant id (overrides env, saved state and config)")
	cmd.PersistentFlags().StringVar(&app.Theme, "theme", "", "Color theme (classic|neon|mono)")
	cmd.PersistentFlags().StringVar(&app.Lang, "lang", "", "Message language (en|ko)")
	cmd.PersistentFlags().BoolVar(&app.Debug, "debug", false, "Debug logging")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("TADA_FORMAT", "text"), "Output format (text|json)")

	cmd.AddCommand(newListCmd(app))
	cmd.AddCommand(newAddCmd(app))
	cmd.AddCommand(newShowCmd(app))
	cmd.AddCommand(newEditCmd(app))
	cmd.AddCommand(newDoneCmd(app))
	cmd.AddCommand(newRemoveCmd(app))
	cmd.AddCommand(newTenantCmd(app))

	return cmd
}

// setup resolves configuration, theme and logging before any command runs.
func (app *App) setup(cmd *cobra.Command, interactive bool) error {
	if app.Format != "text" && app.Format != "json" {
		return usageErr(fmt.Sprintf("--format: want text or json, got %q", app.Format))
	}

	o := config.Overrides{
		ConfigPath: app.ConfigPath,
		BaseURL:    app.BaseURL,
		Tenant:     app.Tenant,
		Theme:      app.Theme,
		Lang:       app.Lang,
	}
	if app.Debug {
		o.LogLevel = "debug"
	}
	cfg, err := config.Load(o)
	if err != nil {
		return err
	}
	app.cfg = cfg
	ui.SetTheme(cfg.Theme)
	app.tr = i18n.New(cfg.Lang)

	lo := logging.Options{Level: cfg.LogLevel, File: cfg.LogFile}
	switch {
	case interactive && app.Debug && lo.File == "":
		// The TUI owns the terminal; debug output goes next to the config.
		dir, err := config.Dir()
		if err != nil {
			return err
		}
		lo.File = filepath.Join(dir, "debug.log")
	case !interactive && app.Debug:
		lo.Fallback = cmd.ErrOrStderr()
	}
	logger, closer, err := logging.New(lo)
	if err != nil {
		return err
	}
	app.logger, app.closeLog = logger, closer
	logger.Debug("config resolved",
		"path", cfg.Path,
		"base_url", cfg.BaseURL,
		"tenant", cfg.Tenant,
		"tenant_source", cfg.TenantSource,
		"lang", app.tr.Lang(),
	)
	return nil
}

func (app *App) client() (*api.Client, error) {
	return api.New(app.cfg.BaseURL, app.cfg.Tenant,
		api.WithHTTPClient(&http.Client{Timeout: app.cfg.Timeout}),
		api.WithLogger(app.logger),
		api.WithUserAgent("tada/"+Version),
	)
}

func runTUI(app *App) error {
	c, err := app.client()
	if err != nil {
		return err
	}
	return tui.Run(c, tui.Options{
		Tenant:     c.Tenant(),
		Translator: app.tr,
		Logger:     app.logger,
	})
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

// message renders err in the configured language. API failures keep the
// underlying cause so scripts can tell a 404 from a timeout.
func (app *App) message(err error) string {
	if app.tr == nil {
		return err.Error()
	}
	msg := app.tr.Error(err)
	if api.KindOf(err) != nil {
		msg += " (" + err.Error() + ")"
	}
	return msg
}

// writeErr prints a top-level failure. Usage errors also point at --help.
func writeErr(w io.Writer, app *App, err error) {
	var ue usageError
	if errors.As(err, &ue) {
		ui.Fail(w, ue.msg)
		fmt.Fprintln(w, ui.Current().Muted.Render("Hint: run `tada --help`"))
		return
	}
	ui.Fail(w, app.message(err))
}
