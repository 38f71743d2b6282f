package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vk/fxgraph/internal/app"
	"github.com/vk/fxgraph/internal/evaluator"
	"github.com/vk/fxgraph/internal/graph"
	"github.com/vk/fxgraph/internal/render"
)

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <scene>",
		Short: "Check that a scene's graph is acyclic and fully bound",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			g, _, err := a.BuildScene(args[0])
			if err != nil {
				return err
			}
			if err := g.Validate(); err != nil {
				return &ExitError{Code: 1, Message: err.Error()}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "scene %q is valid\n", args[0])
			return nil
		},
	}
}

func newEvalCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval <scene>",
		Short: "Evaluate a scene and print the requested outputs",
		Example: `  fxgraph eval double
  fxgraph eval shot --set 'aim=[0, 1]' --output json
  fxgraph eval ratio --set divisor=4 --want q.quotient`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			_, res, err := runScene(cmd, a, args[0])
			if err != nil {
				return err
			}
			return render.WriteResult(cmd.OutOrStdout(), res, render.Format(a.Config().Output))
		},
	}
	addRunFlags(cmd)
	cmd.Flags().StringP("output", "o", "text", "Result format. Options: 'text', 'json', 'yaml'.")
	return cmd
}

func newGraphCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph <scene>",
		Short: "Print a scene as a Mermaid flowchart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}

			withEval, _ := cmd.Flags().GetBool("eval")
			if !withEval {
				g, _, err := a.BuildScene(args[0])
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), render.Mermaid(g, nil))
				return nil
			}

			g, res, err := runScene(cmd, a, args[0])
			if g == nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), render.Mermaid(g, overlay(res, err)))
			return err
		},
	}
	addRunFlags(cmd)
	cmd.Flags().Bool("eval", false, "Evaluate the scene first and highlight what ran.")
	return cmd
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringArray("set", nil, "Bind an external slot: slot=EXPR (HCL syntax). Repeatable.")
	cmd.Flags().StringArray("want", nil, "Output to evaluate as instance.port. Repeatable.")
}

func runScene(cmd *cobra.Command, a *app.App, name string) (*graph.Graph, evaluator.Result, error) {
	pairs, _ := cmd.Flags().GetStringArray("set")
	wants, _ := cmd.Flags().GetStringArray("want")

	sets, err := app.ParseAssignments(pairs)
	if err != nil {
		return nil, nil, usageError(err)
	}
	return a.RunScene(cmd.Context(), name, sets, wants)
}

// overlay marks the instances whose outputs are known after a pass, and the
// instance that failed, if any.
func overlay(res evaluator.Result, err error) *render.Overlay {
	o := &render.Overlay{}
	for _, r := range res.Refs() {
		o.Evaluated = append(o.Evaluated, r.Instance)
	}
	var evalErr *graph.EvaluationError
	if errors.As(err, &evalErr) {
		o.Failed = evalErr.Instance
		for _, r := range evalErr.Discarded {
			o.Evaluated = append(o.Evaluated, r.Instance)
		}
	}
	return o
}
