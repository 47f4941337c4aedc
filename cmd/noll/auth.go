package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/noll-to/noll/internal/logger"
)

func newLoginCmd(globals *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to Noll in the browser",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := setup(globals, "")
			if err != nil {
				return err
			}
			provider := newProvider(settings, newHTTPClient(settings), cmd.ErrOrStderr())

			ctx, stop := signalContext()
			defer stop()
			ts, err := provider.Login(ctx)
			if err != nil {
				if ctx.Err() != nil {
					logger.Warn("Sign-in canceled")
					return nil
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in to Noll (token %s).\n", logger.MaskToken(ts.AccessToken))
			return nil
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	return cmd
}

func newLogoutCmd(globals *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored Noll session from the keychain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := setup(globals, "")
			if err != nil {
				return err
			}
			provider := newProvider(settings, nil, cmd.ErrOrStderr())
			if err := provider.Logout(); err != nil {
				return fmt.Errorf("error deleting session: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out of Noll.")
			return nil
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	return cmd
}

func newStatusCmd(globals *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show whether a Noll session is stored",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := setup(globals, "")
			if err != nil {
				return err
			}
			st, err := newProvider(settings, nil, cmd.ErrOrStderr()).Status()
			if err != nil {
				return fmt.Errorf("error reading session: %w", err)
			}
			out := cmd.OutOrStdout()
			if !st.SignedIn {
				fmt.Fprintln(out, "Noll session: Not signed in")
				return nil
			}
			fmt.Fprintf(out, "Noll session: Signed in (token %s)\n", st.MaskedToken)
			switch {
			case st.ExpiresAt.IsZero():
				fmt.Fprintln(out, "Expires: unknown")
			case st.Expired && st.CanRefresh:
				fmt.Fprintf(out, "Expired: %s (will refresh on next use)\n", st.ExpiresAt.Local().Format(time.RFC1123))
			case st.Expired:
				fmt.Fprintf(out, "Expired: %s (sign-in required)\n", st.ExpiresAt.Local().Format(time.RFC1123))
			default:
				fmt.Fprintf(out, "Expires: %s\n", st.ExpiresAt.Local().Format(time.RFC1123))
			}
			fmt.Fprintf(out, "API: %s\n", settings.APIURL)
			return nil
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	return cmd
}
