package app

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/ktr0731/protoir/codegen"
	"github.com/ktr0731/protoir/config"
	"github.com/ktr0731/protoir/cui"
	"github.com/ktr0731/protoir/logger"
	"github.com/ktr0731/protoir/meta"
	"github.com/ktr0731/protoir/present"
	"github.com/ktr0731/protoir/present/json"
	"github.com/ktr0731/protoir/present/table"
	"github.com/ktr0731/protoir/proto"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var usageFormat = `
Usage: %s [--help] [--version] [options ...] [PROTO [PROTO ...]]

Positional arguments:
        PROTO                   .proto files

Options:
%s
`

type command struct {
	*cobra.Command

	flags *flags
	ui    cui.UI
}

// runFunc is a common entrypoint for Run func.
func runFunc(
	flags *flags,
	f func(*cobra.Command, *mergedConfig) error,
) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := flags.validate(); err != nil {
			return errors.Wrap(err, "invalid flag condition")
		}

		switch {
		case flags.meta.edit:
			if err := config.Edit(); err != nil {
				return errors.Wrap(err, "failed to edit the project local config file")
			}
			return nil
		case flags.meta.editGlobal:
			if err := config.EditGlobal(); err != nil {
				return errors.Wrap(err, "failed to edit the global config file")
			}
			return nil
		case flags.meta.version:
			printVersion(cmd.OutOrStdout())
			return nil
		case flags.meta.help:
			printUsage(cmd)
			return nil
		}

		if flags.meta.verbose {
			logger.SetOutput(os.Stderr)
		}

		cfg, err := mergeConfig(cmd.Flags(), flags, args)
		if err != nil {
			var verr *config.ValidationError
			if errors.As(err, &verr) {
				printUsage(cmd)
				return err
			}
			return errors.Wrap(err, "failed to merge command line flags and config files")
		}

		return f(cmd, cfg)
	}
}

func newCommand(flags *flags, ui cui.UI) *command {
	cmd := &cobra.Command{
		Use: meta.AppName,
		RunE: runFunc(flags, func(cmd *cobra.Command, cfg *mergedConfig) error {
			if cui.IsTerminal(os.Stderr) {
				ui = cui.NewColored(ui)
			}

			ctx := cmd.Context()
			src, cleanup, err := newSource(ctx, cfg.Config)
			if err != nil {
				return err
			}
			defer cleanup()

			set, err := proto.Load(
				ctx,
				src,
				codegen.WithFilesToGenerate(cfg.Default.Generate...),
				codegen.WithParseOptions(cfg.ParseOptions()...),
			)
			if err != nil {
				return errors.Wrap(err, "failed to load descriptors")
			}

			out, err := newPresenter(cfg.Output.Format).Format(set, cfg.Output.Indent)
			if err != nil {
				return errors.Wrap(err, "failed to format the compiled set")
			}
			ui.Output(out)
			return nil
		}),
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	bindFlags(cmd.PersistentFlags(), flags, ui.Writer())
	cmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		cmd.PersistentFlags().Usage()
	})
	cmd.SetOut(ui.Writer())
	return &command{cmd, flags, ui}
}

// newPresenter returns the presenter of format, which must be validated by config.
func newPresenter(format string) present.Presenter {
	if format == config.FormatTable {
		return table.NewPresenter()
	}
	return json.NewPresenter()
}

func bindFlags(f *pflag.FlagSet, flags *flags, w io.Writer) {
	initFlagSet(f, w)

	f.StringSliceVar(&flags.source.path, "path", nil, "proto file paths")
	f.StringSliceVar(&flags.source.proto, "proto", nil, "proto file names")
	f.StringSliceVar(&flags.source.descriptorSet, "descriptor-set", nil, "FileDescriptorSet files produced by protoc -o")
	f.StringSliceVar(
		&flags.source.generate, "generate", nil,
		"names of the files to generate. PROTO files are always generated")

	f.StringVar(&flags.server.host, "host", "", "gRPC server host")
	f.StringVarP(&flags.server.port, "port", "p", "", "gRPC server port")
	f.Var(
		newStringToStringValue(nil, &flags.server.header),
		"header", "headers that set to each reflection requests (example: foo=bar)")
	f.BoolVar(&flags.server.web, "web", false, "use gRPC-Web protocol")
	f.BoolVarP(&flags.server.reflection, "reflection", "r", false, "load schemas by gRPC reflection")
	f.BoolVarP(&flags.server.tls, "tls", "t", false, "use a secure TLS connection")
	f.StringVar(&flags.server.cacert, "cacert", "", "the CA certificate file for verifying the server")
	f.StringVar(
		&flags.server.cert,
		"cert", "", "the certificate file for mutual TLS auth. it must be provided with --certkey.")
	f.StringVar(
		&flags.server.certKey,
		"certkey", "", "the private key file for mutual TLS auth. it must be provided with --cert.")
	f.StringVar(
		&flags.server.serverName,
		"servername", "", "override the server name used to verify the hostname (ignored if --tls is disabled)")

	f.StringVar(&flags.compile.normalizer, "normalizer", "", `name normalizer, "auto" or "null"`)
	f.StringSliceVar(&flags.compile.valueTypes, "value-type", nil, "fully-qualified names of messages generated as value types")
	f.StringVar(&flags.compile.access, "access", "", `accessibility of generated types, "public" or "internal"`)
	f.StringVar(&flags.compile.separator, "separator", "", "separator joining the names of nested types")

	f.StringVarP(&flags.output.format, "output", "o", "", `output format, "json" or "table"`)
	f.StringVar(&flags.output.indent, "indent", "", "indent of the JSON output")

	f.BoolVarP(&flags.meta.edit, "edit", "e", false, "edit the project config file by using $EDITOR")
	f.BoolVar(&flags.meta.editGlobal, "edit-global", false, "edit the global config file by using $EDITOR")
	f.BoolVar(&flags.meta.verbose, "verbose", false, "verbose output")
	f.BoolVarP(&flags.meta.version, "version", "v", false, "display version and exit")
	f.BoolVarP(&flags.meta.help, "help", "h", false, "display help text and exit")
}

func initFlagSet(f *pflag.FlagSet, w io.Writer) {
	f.SortFlags = false
	f.SetOutput(w)
	f.Usage = usageFunc(w, f)
}

// usage is the generator for usage output.
func usageFunc(out io.Writer, f *pflag.FlagSet) func() {
	return func() {
		printVersion(out)
		var buf bytes.Buffer
		w := tabwriter.NewWriter(&buf, 0, 8, 8, ' ', tabwriter.TabIndent)
		f.VisitAll(func(f *pflag.Flag) {
			if f.Hidden {
				return
			}
			cmd := "--" + f.Name
			if f.Shorthand != "" {
				cmd += ", -" + f.Shorthand
			}
			name, _ := pflag.UnquoteUsage(f)
			if name != "" {
				cmd += " " + name
			}
			usage := f.Usage
			if f.DefValue != "" && f.DefValue != "[]" && f.DefValue != "false" {
				usage += fmt.Sprintf(` (default "%s")`, f.DefValue)
			}
			fmt.Fprintf(w, "        %s\t%s\n", cmd, usage)
		})
		w.Flush()
		fmt.Fprintf(out, usageFormat, meta.AppName, buf.String())
	}
}
