package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"gptbridge/internal/batch"
	"gptbridge/internal/config"
	"gptbridge/internal/journal"
)

// Options carries the state shared by all subcommands.
type Options struct {
	ConfigPath string
	Profile    string
	LogLevel   string

	cfg config.Config
	log zerolog.Logger
	// getenv is os.Getenv outside tests.
	getenv func(string) string
}

// Execute runs the CLI with args and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := buildRootCmd(&Options{getenv: os.Getenv})
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		if batch.IsConfiguration(err) {
			return 78
		}
		return 1
	}
	return 0
}

// buildRootCmd constructs the Cobra command tree.
func buildRootCmd(opts *Options) *cobra.Command {
	root := &cobra.Command{
		Use:           "gptbridge",
		Short:         "Batch LLM completions through an external tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "Config file (.yaml, .yml, .json, .toml)")
	root.PersistentFlags().StringVarP(&opts.Profile, "profile", "p", "", "Model profile from the config file")
	root.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "Log level: debug|info|warn|error (defaults GPTBRIDGE_LOG_LEVEL or info)")
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return opts.load(cmd.ErrOrStderr())
	}

	root.AddCommand(newGenerateCmd(opts), newServeCmd(opts), newSessionsCmd(opts))

	// completion command
	completionCmd := &cobra.Command{Use: "completion", Short: "Generate the autocompletion script for the specified shell"}
	completionCmd.AddCommand(&cobra.Command{Use: "bash", Short: "Bash completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenBashCompletion(cmd.OutOrStdout()) }})
	completionCmd.AddCommand(&cobra.Command{Use: "zsh", Short: "Zsh completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenZshCompletion(cmd.OutOrStdout()) }})
	completionCmd.AddCommand(&cobra.Command{Use: "fish", Short: "Fish completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenFishCompletion(cmd.OutOrStdout(), true) }})
	completionCmd.AddCommand(&cobra.Command{Use: "powershell", Short: "PowerShell completion", RunE: func(cmd *cobra.Command, args []string) error {
		return root.GenPowerShellCompletionWithDesc(cmd.OutOrStdout())
	}})
	root.AddCommand(completionCmd)

	return root
}

// load resolves config file, environment and profile, then builds the logger.
func (o *Options) load(logOut io.Writer) error {
	var cfg config.Config
	if o.ConfigPath != "" {
		c, err := config.Load(o.ConfigPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c
	}
	cfg.ApplyEnv(o.getenv)
	if o.LogLevel != "" {
		cfg.LogLevel = o.LogLevel
	}
	cfg.ApplyDefaults()
	cfg, err := cfg.Select(o.Profile)
	if err != nil {
		return err
	}
	o.cfg = cfg
	o.log = newLogger(logOut, cfg.LogLevel)
	return nil
}

// newAdapter builds the adapter, attaching the journal when configured.
// The returned close func is never nil.
func (o *Options) newAdapter() (*batch.Adapter, func() error, error) {
	bc, err := o.cfg.BatchConfig()
	if err != nil {
		return nil, nil, err
	}
	opts := []batch.Option{batch.WithLogger(o.log)}
	closeFn := func() error { return nil }
	jp, err := o.cfg.JournalPath()
	if err != nil {
		return nil, nil, err
	}
	if jp != "" {
		store, err := journal.Open(jp)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, batch.WithJournal(store))
		closeFn = store.Close
	}
	a, err := batch.New(bc, opts...)
	if err != nil {
		_ = closeFn()
		return nil, nil, err
	}
	return a, closeFn, nil
}
