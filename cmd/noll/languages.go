package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/noll-to/noll/internal/language"
)

func newLanguagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "languages",
		Aliases: []string{"list"},
		Short:   "List supported target languages",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "Supported Languages:")
			for _, l := range language.Supported() {
				marker := ""
				if l.Code == language.Default {
					marker = " (default)"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "  %-22s [%s]%s\n", l.Name, l.Code, marker)
			}
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	return cmd
}
