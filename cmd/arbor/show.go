package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/aretw0/arbor/internal/cli"
	"github.com/aretw0/arbor/internal/presentation/graph"
	"github.com/aretw0/arbor/internal/presentation/tui"
	"github.com/aretw0/arbor/pkg/codec"
	"github.com/aretw0/arbor/pkg/domain"
)

func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the tree",
		Long: `Prints the tree. The default tree format hides the children of collapsed nodes
unless --all is set. Other formats always include every node.

Formats: tree, json, yaml, markdown, mermaid.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			showIDs, _ := cmd.Flags().GetBool("ids")
			showAll, _ := cmd.Flags().GetBool("all")

			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			tree := s.Engine.Tree()
			out := cmd.OutOrStdout()

			switch strings.ToLower(format) {
			case "tree", "":
				fmt.Fprint(out, tui.RenderTree(tree, tui.TreeOptions{
					Title:   s.Config.Store.Key,
					ShowIDs: showIDs,
					ShowAll: showAll,
					Profile: termenv.NewOutput(out).Profile,
				}))
			case "markdown", "md":
				md := tui.ToMarkdown(s.Config.Store.Key, tree)
				if f, ok := out.(*os.File); ok && cli.IsTerminal(f) {
					render, err := tui.NewRenderer()
					if err != nil {
						return err
					}
					if md, err = render(md); err != nil {
						return err
					}
				}
				fmt.Fprint(out, md)
			case "mermaid":
				fmt.Fprint(out, graph.GenerateMermaid(tree, nil))
			default:
				f, err := codec.ParseFormat(format)
				if err != nil {
					return err
				}
				data, err := codec.Marshal(tree, f)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, strings.TrimRight(string(data), "\n"))
			}
			return nil
		},
	}
	cmd.Flags().StringP("format", "f", "tree", "Output format: tree, json, yaml, markdown or mermaid")
	cmd.Flags().Bool("ids", false, "Show node ids")
	cmd.Flags().BoolP("all", "a", false, "Show children of collapsed nodes")
	return cmd
}

func newFindCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "find ID",
		Short: "Print a node and its ancestor path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]

			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			node, ok := s.Engine.FindNode(id)
			if !ok {
				return fmt.Errorf("%w: %s", domain.ErrNodeNotFound, id)
			}

			tree := s.Engine.Tree()
			var names []string
			for _, ancestor := range domain.Path(tree, id) {
				if n, ok := domain.FindNode(tree, ancestor); ok {
					names = append(names, n.Name)
				}
			}

			data, err := json.MarshalIndent(node, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Path: %s\n", strings.Join(names, " > "))
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the whole tree as JSON or YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatName, _ := cmd.Flags().GetString("format")
			output, _ := cmd.Flags().GetString("output")

			format, err := codec.ParseFormat(formatName)
			if err != nil {
				return err
			}

			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			data, err := codec.Marshal(s.Engine.Tree(), format)
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			cli.PrintSystemMessage(cmd.ErrOrStderr(), "Exported %d node(s) to %s", domain.Count(s.Engine.Tree()), output)
			return nil
		},
	}
	cmd.Flags().StringP("format", "f", "json", "Export format: json or yaml")
	cmd.Flags().StringP("output", "o", "", "Output file (default stdout)")
	return cmd
}
