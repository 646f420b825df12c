package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/arbor/internal/cli"
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "arbor",
		Short: "Arbor manages a persistent tree of named nodes",
		Long: `Arbor keeps a forest of named, collapsible nodes and writes every change
through to a key-value store (a JSON file, Redis or BadgerDB).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("dir", ".", "Project directory (config file and file store)")
	rootCmd.PersistentFlags().String("config", "", "Config file (default <dir>/arbor.yaml)")
	rootCmd.PersistentFlags().String("store", "", "Store backend: memory, file, redis or badger")
	rootCmd.PersistentFlags().String("key", "", "Record key holding the tree (default categoryTree)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")

	rootCmd.AddCommand(
		newAddCmd(),
		newRenameCmd(),
		newRmCmd(),
		newToggleCmd(),
		newShowCmd(),
		newFindCmd(),
		newExportCmd(),
		newStoreCmd(),
		newServeCmd(),
		newMCPCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

func optionsFrom(cmd *cobra.Command) cli.Options {
	flags := cmd.Flags()
	dir, _ := flags.GetString("dir")
	configPath, _ := flags.GetString("config")
	store, _ := flags.GetString("store")
	key, _ := flags.GetString("key")
	level, _ := flags.GetString("log-level")
	return cli.Options{
		Dir:        dir,
		ConfigPath: configPath,
		Store:      store,
		Key:        key,
		LogLevel:   level,
	}
}

func openSession(cmd *cobra.Command) (*cli.Session, error) {
	return cli.Open(cmd.Context(), optionsFrom(cmd))
}
