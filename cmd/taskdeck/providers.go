package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/taskdeck/taskdeck/internal/integration"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List the supported providers and what each needs to connect.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProviders(cmd)
	},
}

func runProviders(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	for _, p := range integration.Providers() {
		kind := integration.CredentialKindFor(p)
		line := fmt.Sprintf("%-16s %-14s auth=%s", p, p.DisplayName(), kind)
		if fields := integration.RequiredFields(p); len(fields) > 0 {
			line += " fields=" + strings.Join(fields, ",")
		}
		if _, err := fmt.Fprintln(out, line); err != nil {
			return err
		}
	}
	return nil
}
