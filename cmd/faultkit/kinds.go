package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/wippyai/faultkit/errors"
	"github.com/wippyai/faultkit/policy"
)

var kindExamples = map[errors.Kind]string{
	errors.KindCustom:              "tagged application failure",
	errors.KindRangeViolation:      "index 1000 out of range",
	errors.KindUndeclaredReference: "x is not defined",
	errors.KindTypeMismatch:        "undefined is not a function",
	errors.KindMalformedInput:      "Unexpected token } in JSON",
	errors.KindUnknown:             "anything else",
}

func newKindsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List failure kinds and their configured handlers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Kind", "Handler", "Example"})

			for _, k := range errors.Kinds() {
				t.AppendRow(table.Row{string(k), handlerLabel(a.cfg, k), kindExamples[k]})
			}
			t.Render()
			return nil
		},
	}
}

func handlerLabel(cfg *policy.Config, k errors.Kind) string {
	if hc, ok := cfg.Handlers[string(k)]; ok {
		return string(hc.Action)
	}
	return "default (" + string(cfg.Default.Action) + ")"
}
