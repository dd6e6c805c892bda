package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"stenod/internal/config"
	"stenod/internal/printer"
)

var versionString = "dev"

// NewRootCmd builds the stenoctl command tree.
func NewRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "stenoctl",
		Short: "stenoctl - inspect steno strokes, outlines and the stroke tape",
		Long: `stenoctl converts between steno notation, raw stroke bits and
dictionary keys, replays keyboard chords through the key map, and reads the
stroke tape recorded by stenod.`,
		Version: versionString,
		// Prevent silent success when unknown flags are passed to root command
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		FParseErrWhitelist: cobra.FParseErrWhitelist{},
		SilenceErrors:      true,
		SilenceUsage:       true,
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: platform data dir)")

	loadConfig := func() (*config.Config, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	root.AddCommand(
		newRenderCmd(),
		newParseCmd(),
		newKeyCmd(),
		newDecodeCmd(),
		newChordCmd(),
		newTapeCmd(loadConfig),
		newConfigCmd(&configPath),
		newStatusCmd(),
	)
	return root
}

// Execute runs the root command. Errors have already been printed by the
// command that failed, or are printed here when they come from Cobra.
func Execute() error {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		out := printer.New(root.OutOrStdout(), root.ErrOrStderr())
		if !isPrinted(err) {
			out.Error("Error: "+err.Error(), "", []string{"Run 'stenoctl --help' for usage."})
		}
		return err
	}
	return nil
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	versionString = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

// printedError marks an error whose details a command already wrote.
type printedError struct{ error }

func (e printedError) Unwrap() error { return e.error }

func isPrinted(err error) bool {
	_, ok := err.(printedError)
	return ok
}

func newPrinter(cmd *cobra.Command) *printer.Printer {
	return printer.New(cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// fail prints a formatted error and returns it marked as printed.
func fail(cmd *cobra.Command, title, explanation string, suggestions ...string) error {
	return printedError{newPrinter(cmd).Error(title, explanation, suggestions)}
}
