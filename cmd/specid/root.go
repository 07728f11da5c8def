package main

import (
	"github.com/spf13/cobra"

	"github.com/banshee-data/specid/internal/version"
)

func newRootCommand() *cobra.Command {
	opts := &globalOptions{}
	ctx := newCommandContext(opts)

	rootCmd := &cobra.Command{
		Use:           "specid",
		Short:         "Name, enumerate and cross-match spectroscopic objects",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "Configuration file path (.json or .toml)")
	flags.StringVar(&opts.dbPath, "db", "", "SQLite database path (overrides database_path)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Print per-slit diagnostics to stderr")
	flags.BoolVar(&opts.json, "json", false, "Write JSON instead of tables")

	rootCmd.AddCommand(newKeyCommand(ctx))
	rootCmd.AddCommand(newConfigKeyCommand(ctx))
	rootCmd.AddCommand(newEnumerateCommand(ctx))
	rootCmd.AddCommand(newMatchCommand(ctx))
	rootCmd.AddCommand(newCompareCommand(ctx))
	rootCmd.AddCommand(newRunsCommand(ctx))
	rootCmd.AddCommand(newMigrateCommand(ctx))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}
