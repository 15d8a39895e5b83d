package main

import (
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/weave/internal/config"
	"github.com/vango-dev/weave/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╦ ╦┌─┐┌─┐┬  ┬┌─┐
  ║║║├┤ ├─┤└┐┌┘├┤
  ╚╩╝└─┘┴ ┴ └┘ └─┘
`

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.PrintError(err)
		os.Exit(1)
	}
}

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "weave",
		Short: "Render and preview weave component manifests",
		Long: `weave builds component trees from a YAML or HCL manifest.

A manifest names templates, drops and the components to mount.
weave can render the settled document to HTML, publish it to an
S3 bucket, or serve it live with a preview server:

  • render   settle every mount barrier and print the document
  • serve    run the frame loop behind an HTTP + WebSocket preview
  • version  print build information`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to weave.json (default: nearest weave.json above the working directory)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log at debug level")

	rootCmd.AddCommand(
		renderCmd(opts),
		serveCmd(opts),
		versionCmd(),
	)
	return rootCmd
}

// loadConfig loads --config, or the nearest weave.json. Without either the
// defaults are used.
func (o *globalOptions) loadConfig() (*config.Config, error) {
	if o.configPath != "" {
		return config.LoadFile(o.configPath)
	}
	cfg, err := config.LoadFromWorkingDir()
	if err != nil {
		var we *errors.WeaveError
		if stderrors.As(err, &we) && we.Code == "E101" {
			return config.New(), nil
		}
		return nil, err
	}
	return cfg, nil
}

// logger returns a text logger at the configured level, or debug with
// --verbose. The level was checked when the config was loaded.
func (o *globalOptions) logger(cfg *config.Config, w io.Writer) *slog.Logger {
	level, _ := cfg.LogLevel()
	if o.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}
