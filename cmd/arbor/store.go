package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/arbor/internal/cli"
	"github.com/aretw0/arbor/pkg/codec"
	"github.com/aretw0/arbor/pkg/ports"
)

func newStoreCmd() *cobra.Command {
	storeCmd := &cobra.Command{
		Use:   "store",
		Short: "Inspect and clean records in the configured store",
		Long:  `List, inspect, and remove the records held by the configured store backend.`,
	}
	storeCmd.AddCommand(newStoreLsCmd(), newStoreInspectCmd(), newStoreRmCmd())
	return storeCmd
}

func newStoreLsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List all stored records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(store ports.BlobStore) error {
				keys, err := store.List(cmd.Context())
				if err != nil {
					return fmt.Errorf("error listing records: %w", err)
				}

				out := cmd.OutOrStdout()
				if len(keys) == 0 {
					fmt.Fprintln(out, "No records found.")
					return nil
				}

				fmt.Fprintln(out, "Records:")
				for _, k := range keys {
					fmt.Fprintln(out, "- "+k)
				}
				return nil
			})
		},
	}
}

func newStoreInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <key>",
		Short: "Decode and print a stored tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			return withStore(cmd, func(store ports.BlobStore) error {
				data, err := store.Load(cmd.Context(), key)
				if err != nil {
					return fmt.Errorf("error loading record '%s': %w", key, err)
				}

				tree, err := codec.Decode(data)
				if err != nil {
					return fmt.Errorf("record '%s': %w", key, err)
				}

				// Pretty print JSON
				pretty, err := json.MarshalIndent(tree, "", "  ")
				if err != nil {
					return fmt.Errorf("error marshaling tree: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(pretty))
				return nil
			})
		},
	}
}

func newStoreRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <key>...",
		Short: "Remove one or more records",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(store ports.BlobStore) error {
				failed := 0
				for _, key := range args {
					if err := store.Delete(cmd.Context(), key); err != nil {
						fmt.Fprintf(cmd.ErrOrStderr(), "Error removing '%s': %v\n", key, err)
						failed++
						continue
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Removed record '%s'\n", key)
				}
				if failed > 0 {
					return fmt.Errorf("%d record(s) could not be removed", failed)
				}
				return nil
			})
		},
	}
}

// withStore opens the configured store without loading a tree.
func withStore(cmd *cobra.Command, fn func(ports.BlobStore) error) error {
	cfg, err := cli.LoadConfig(optionsFrom(cmd))
	if err != nil {
		return err
	}
	logger, err := cli.CreateLogger(cfg.Log)
	if err != nil {
		return err
	}
	store, closeFn, err := cli.OpenStore(cfg, logger)
	if err != nil {
		return err
	}
	defer closeFn()
	return fn(store)
}
