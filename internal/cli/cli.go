package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/vk/fxgraph/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(err error) error {
	return &ExitError{Code: 2, Message: err.Error()}
}

// Execute runs the fxgraph command tree with args. Command output goes to
// outW; logs and diagnostics go to errW.
func Execute(ctx context.Context, args []string, outW, errW io.Writer) error {
	root := NewRootCommand(outW, errW)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// NewRootCommand builds the command tree.
func NewRootCommand(outW, errW io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "fxgraph",
		Short: "fxgraph composes and evaluates typed node graphs",
		Long: `fxgraph builds graphs of typed nodes, wires outputs to inputs whose value
types match exactly, and evaluates only what a requested output depends on.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(outW)
	root.SetErr(errW)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error { return usageError(err) })

	f := root.PersistentFlags()
	f.String("config", "", "Path to an HCL configuration file.")
	f.String("modules-path", "", "Directory with extra node manifests (*.hcl).")
	f.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	f.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	f.Int("workers", 1, "Number of concurrent workers for pure nodes.")

	root.AddCommand(
		newNodesCommand(),
		newScenesCommand(),
		newValidateCommand(),
		newEvalCommand(),
		newGraphCommand(),
		newSuggestCommand(),
		newServeCommand(),
	)
	return root
}

// loadConfig resolves the configuration: defaults, then the --config file,
// then any flag set explicitly on the command line.
func loadConfig(cmd *cobra.Command) (*app.Config, error) {
	cfg := app.DefaultConfig()
	flags := cmd.Flags()

	if path, _ := flags.GetString("config"); path != "" {
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, usageError(fmt.Errorf("failed to read config file: %w", err))
		}
		if err := app.DecodeConfigFile(path, src, &cfg); err != nil {
			return nil, usageError(err)
		}
	}

	str := func(name string, dst *string) {
		if flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}
	str("modules-path", &cfg.ModulesPath)
	str("log-level", &cfg.LogLevel)
	str("log-format", &cfg.LogFormat)
	if flags.Lookup("output") != nil {
		str("output", &cfg.Output)
	}
	if flags.Lookup("listen") != nil {
		str("listen", &cfg.ListenAddr)
	}
	if flags.Changed("workers") {
		cfg.Workers, _ = flags.GetInt("workers")
	}

	c, err := app.NewConfig(cfg)
	if err != nil {
		return nil, usageError(err)
	}
	return c, nil
}

// newApp loads the configuration and constructs the app for cmd.
func newApp(cmd *cobra.Command) (*app.App, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return app.NewApp(cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg)
}
