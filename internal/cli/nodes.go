package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/vk/fxgraph/internal/port"
	"github.com/vk/fxgraph/internal/registry"
)

func newNodesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "nodes",
		Short: "List registered node definitions with their typed ports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			printNodes(cmd.OutOrStdout(), a.Registry())
			return nil
		},
	}
}

func printNodes(w io.Writer, r *registry.Registry) {
	for _, d := range r.Definitions() {
		purity := ""
		if d.Pure {
			purity = " (pure)"
		}
		fmt.Fprintf(w, "%s%s\n", d.ID, purity)
		if d.Description != "" {
			fmt.Fprintf(w, "    %s\n", d.Description)
		}
		if d.HasConfig() {
			fmt.Fprintf(w, "    config: %s\n", r.TypeName(d.ConfigType))
		}
		for _, p := range d.Inputs {
			printPort(w, r, p)
		}
		for _, p := range d.Outputs {
			printPort(w, r, p)
		}
	}
}

func printPort(w io.Writer, r *registry.Registry, p port.Descriptor) {
	fmt.Fprintf(w, "    %-6s %s: %s\n", p.Direction, p.Name, r.TypeName(p.Type))
}

func newScenesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "scenes",
		Short: "List the built-in scenes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			for _, s := range a.Scenes() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-10s %s\n", s.Name, s.Description)
			}
			return nil
		},
	}
}
