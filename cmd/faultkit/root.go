package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/faultkit/dispatch"
	"github.com/wippyai/faultkit/policy"
)

// app is the state shared by all subcommands after configuration loads.
type app struct {
	cfg     *policy.Config
	log     *zap.Logger
	cfgFile string
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var interactive bool

	rootCmd := &cobra.Command{
		Use:   "faultkit",
		Short: "Classify failures and dispatch them by kind",
		Long: `faultkit classifies failures into a fixed taxonomy
(custom, range_violation, undeclared_reference, type_mismatch,
malformed_input, unknown) and dispatches them to handlers configured
per kind in faultkit.yaml.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}
			return a.load(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if interactive {
				return a.runInteractive(cmd)
			}
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default: ./faultkit.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().String("log-format", "console", "Log format (console|json)")
	rootCmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Interactive mode with TUI")

	_ = rootCmd.RegisterFlagCompletionFunc("log-format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{policy.FormatConsole, policy.FormatJSON}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(newClassifyCmd(a))
	rootCmd.AddCommand(newKindsCmd(a))
	rootCmd.AddCommand(newCallCmd(a))
	rootCmd.AddCommand(newInteractiveCmd(a))

	return rootCmd
}

func (a *app) load(cmd *cobra.Command) error {
	cfg, err := policy.Load(a.cfgFile, cmd.Root().PersistentFlags())
	if err != nil {
		return err
	}
	log, err := cfg.Logger()
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.log = log
	dispatch.SetLogger(log)
	return nil
}

// registry builds the policy registry reporting through the configured sinks.
func (a *app) registry() (*dispatch.Registry, error) {
	return a.cfg.Registry(a.cfg.Reporter(a.log, nil))
}
