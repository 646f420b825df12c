package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/arbor/internal/cli"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/sanitize"
)

func newAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a node at the root or under --parent",
		Long:  `Adds a node and prints its generated id. With --parent the node is appended to the parent's children and the parent is expanded.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parentID, _ := cmd.Flags().GetString("parent")
			name, err := sanitize.Name(args[0])
			if err != nil {
				return err
			}

			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if parentID != "" {
				if _, ok := s.Engine.FindNode(parentID); !ok {
					return fmt.Errorf("%w: %s", domain.ErrNodeNotFound, parentID)
				}
			}

			before := s.Engine.Tree()
			after := s.Engine.AddNode(cmd.Context(), parentID, name)
			if err := s.SaveErr(); err != nil {
				return fmt.Errorf("failed to save tree: %w", err)
			}
			for _, id := range domain.Diff(before, after).Added {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}
	cmd.Flags().StringP("parent", "p", "", "Parent node id")
	return cmd
}

func newRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename ID NAME",
		Short: "Change the name of a node",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			name, err := sanitize.Name(args[1])
			if err != nil {
				return err
			}

			return mutateExisting(cmd, id, func(s *cli.Session) {
				s.Engine.RenameNode(cmd.Context(), id, name)
			})
		},
	}
}

func newRmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm ID",
		Short: "Delete a node and its whole subtree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			yes, _ := cmd.Flags().GetBool("yes")

			return mutateExisting(cmd, id, func(s *cli.Session) {
				node, _ := s.Engine.FindNode(id)
				total := domain.Count(domain.Tree{node})

				if !yes && cli.IsTerminal(os.Stdin) {
					question := fmt.Sprintf("Delete '%s' and %d descendant(s)?", node.Name, total-1)
					ok, err := cli.Confirm(cmd.InOrStdin(), cmd.ErrOrStderr(), question)
					if err != nil || !ok {
						cli.PrintSystemMessage(cmd.ErrOrStderr(), "Nothing removed.")
						return
					}
				}

				s.Engine.DeleteNode(cmd.Context(), id)
				cli.PrintSystemMessage(cmd.OutOrStdout(), "Removed %d node(s).", total)
			})
		},
	}
	cmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func newToggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle ID",
		Short: "Expand or collapse a node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			return mutateExisting(cmd, id, func(s *cli.Session) {
				s.Engine.ToggleExpand(cmd.Context(), id)
				node, _ := s.Engine.FindNode(id)
				state := "collapsed"
				if node.Expanded {
					state = "expanded"
				}
				fmt.Fprintln(cmd.OutOrStdout(), state)
			})
		},
	}
}

// mutateExisting opens a session, rejects unknown ids and fails when the
// write-through save did not succeed.
func mutateExisting(cmd *cobra.Command, id string, fn func(*cli.Session)) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if _, ok := s.Engine.FindNode(id); !ok {
		return fmt.Errorf("%w: %s", domain.ErrNodeNotFound, id)
	}
	fn(s)
	if err := s.SaveErr(); err != nil {
		return fmt.Errorf("failed to save tree: %w", err)
	}
	return nil
}
