package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vk/fxgraph/internal/compose"
	"github.com/vk/fxgraph/internal/graph"
)

func newSuggestCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Propose node chains whose port types fit together",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			steps, _ := cmd.Flags().GetInt("steps")
			limit, _ := cmd.Flags().GetInt("limit")

			chains := compose.Generate(a.Registry().Definitions(), steps)
			if limit > 0 && len(chains) > limit {
				chains = chains[:limit]
			}

			w := cmd.OutOrStdout()
			for _, c := range chains {
				fmt.Fprintln(w, c)
				g, err := compose.Assemble(c)
				switch {
				case errors.Is(err, graph.ErrInvalidConfig):
					fmt.Fprintln(w, "    needs configuration")
				case err != nil:
					fmt.Fprintf(w, "    cannot assemble: %v\n", err)
				default:
					printSlots(w, g)
				}
			}
			return nil
		},
	}
	cmd.Flags().Int("steps", compose.DefaultSteps, "Maximum number of nodes in a chain.")
	cmd.Flags().Int("limit", 20, "Maximum number of chains to print. 0 prints all.")
	return cmd
}

func printSlots(w io.Writer, g *graph.Graph) {
	names := g.SlotNames()
	if len(names) == 0 {
		fmt.Fprintln(w, "    closed")
		return
	}
	slots := g.Slots()
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = fmt.Sprintf("%s (%s)", n, slots[n].FriendlyName())
	}
	fmt.Fprintf(w, "    slots: %s\n", strings.Join(parts, ", "))
}
