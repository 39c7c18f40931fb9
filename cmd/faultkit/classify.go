package main

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newClassifyCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "classify <message...>",
		Short: "Print the failure kind of a message",
		Long: `Classify joins its arguments into one failure message and prints the
kind it maps to, using the built-in heuristics plus any rules from the
configuration file.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.cfg.Classifier()
			if err != nil {
				return err
			}

			rec := c.Record(stderrors.New(strings.Join(args, " ")), nil)
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(rec)
			}
			_, err = fmt.Fprintln(out, rec.Kind())
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full failure record as JSON")
	return cmd
}
