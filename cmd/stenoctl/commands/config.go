package commands

import (
	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"stenod/internal/config"
)

func newConfigCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and create the stenod configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	path := func() string {
		if *configPath != "" {
			return *configPath
		}
		return config.FindConfigFile()
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			newPrinter(cmd).Println(path())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as TOML",
		Long: `Print the effective configuration: file values over defaults, with
STENOD_* environment overrides applied.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(path())
			if err != nil {
				return fail(cmd, "Failed to load configuration", err.Error())
			}
			return toml.NewEncoder(cmd.OutOrStdout()).Encode(cfg)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Check the configuration for errors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := path()
			cfg, err := config.Load(p)
			if err != nil {
				return fail(cmd, "Failed to load configuration", err.Error())
			}
			if err := cfg.Validate(); err != nil {
				return fail(cmd, "Invalid configuration", err.Error(),
					"Fix the fields above in "+p+".")
			}
			newPrinter(cmd).Success("%s is valid\n", p)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file if none exists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := path()
			_, created, err := config.LoadOrCreate(p)
			if err != nil {
				return fail(cmd, "Failed to create configuration", err.Error())
			}
			out := newPrinter(cmd)
			if created {
				out.Success("Wrote default configuration to %s\n", p)
			} else {
				out.Warning("Configuration already exists at %s\n", p)
			}
			return nil
		},
	})

	return cmd
}
