package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/noll-to/noll/internal/cleanup"
	"github.com/noll-to/noll/internal/version"
)

func execute() {
	cmd := newRootCmd()
	err := cmd.Execute()
	if cleanupErr := cleanup.RunAll(); cleanupErr != nil {
		fmt.Fprintln(os.Stderr, cleanupErr)
		if err == nil {
			err = cleanupErr
		}
	}
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	globals := &globalOptions{}
	translateOpts := translateOptions{}

	cmd := &cobra.Command{
		Use:   "noll",
		Short: "Translate the screenshot on your clipboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				_ = cmd.Usage()
				return fmt.Errorf("unknown command %q for %q", args[0], cmd.CommandPath())
			}
			return runTranslate(cmd, globals, &translateOpts)
		},
		Args:         cobra.ArbitraryArgs,
		SilenceUsage: true,
	}

	cmd.Version = version.Info()
	cmd.SetVersionTemplate("{{.Version}}\n")
	cmd.SetUsageTemplate(rootUsageTemplate)

	addGlobalFlags(cmd.PersistentFlags(), globals)
	addTranslateFlags(cmd.Flags(), &translateOpts)

	cmd.AddCommand(
		newAboutCmd(),
		newTranslateCmd(globals),
		newLoginCmd(globals),
		newLogoutCmd(globals),
		newStatusCmd(globals),
		newLanguagesCmd(),
	)

	cmd.InitDefaultCompletionCmd()
	for _, sub := range cmd.Commands() {
		if sub.Name() == "completion" {
			sub.Short = "Generate the autocompletion script for the specified shell"
			sub.SetUsageTemplate(subcommandUsageTemplate)
			break
		}
	}

	return cmd
}
