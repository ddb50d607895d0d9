// Package app provides the entrypoint for protoir.
package app

import (
	"fmt"
	"io"

	"github.com/ktr0731/protoir/config"
	"github.com/ktr0731/protoir/cui"
	"github.com/ktr0731/protoir/meta"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
)

// App is the root component for running the application.
type App struct {
	cui cui.UI
	cmd *command
}

// New instantiates a new App instance. ui must not be a nil.
func New(ui cui.UI) *App {
	var flags flags
	return &App{
		cui: ui,
		cmd: newCommand(&flags, ui),
	}
}

// Run starts the application. The return value means the exit code.
func (a *App) Run(args []string) int {
	a.cmd.SetArgs(args)
	err := a.cmd.Execute()
	if err == nil {
		return 0
	}

	a.cui.Error(fmt.Sprintf("%s: %s", meta.AppName, err))
	return 1
}

// printUsage shows the command usage text to cui.Writer and exit. Do not call it before calling parseFlags.
func printUsage(cmd interface{ Help() error }) {
	_ = cmd.Help() // Help never return errors.
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "%s %s\n", meta.AppName, meta.Version.String())
}

// mergedConfig represents the conclusive config. Common config items are stored to *config.Config.
// Flags that can be specified by command line only are represented as fields.
type mergedConfig struct {
	*config.Config

	// Verbose output.
	verbose bool
}

func mergeConfig(fs *pflag.FlagSet, flags *flags, protos []string) (*mergedConfig, error) {
	cfg, err := config.Get(fs)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get config")
	}
	cfg.Default.ProtoFile = append(cfg.Default.ProtoFile, protos...)
	// --header appends values to the headers of config files.
	for k, v := range flags.server.header {
		cfg.Server.Header[k] = append(cfg.Server.Header[k], v...)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &mergedConfig{
		Config:  cfg,
		verbose: flags.meta.verbose,
	}, nil
}
