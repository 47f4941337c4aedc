package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/noll-to/noll/internal/controller"
	"github.com/noll-to/noll/internal/files"
	"github.com/noll-to/noll/internal/logger"
	"github.com/noll-to/noll/internal/noll"
)

type translateOptions struct {
	lang string
	out  string
	copy bool
	yes  bool
}

func newTranslateCmd(globals *globalOptions) *cobra.Command {
	opts := translateOptions{}
	cmd := &cobra.Command{
		Use:   "translate",
		Short: "Translate the screenshot on the clipboard (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(cmd, globals, &opts)
		},
		SilenceUsage: true,
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	addTranslateFlags(cmd.Flags(), &opts)
	return cmd
}

func addTranslateFlags(f *pflag.FlagSet, opts *translateOptions) {
	f.StringVarP(&opts.lang, "lang", "l", "", "Target language code or name (default en)")
	f.StringVarP(&opts.out, "out", "o", "", "Save the translated image to this path")
	f.BoolVar(&opts.copy, "copy", false, "Copy the translated image to the clipboard without asking")
	f.BoolVarP(&opts.yes, "yes", "y", false, "Overwrite the output file without asking")
}

func runTranslate(cmd *cobra.Command, globals *globalOptions, opts *translateOptions) error {
	settings, err := setup(globals, opts.lang)
	if err != nil {
		return err
	}

	errOut := cmd.ErrOrStderr()
	client := newHTTPClient(settings)
	ctrl := controller.New(
		newProvider(settings, client, errOut),
		noll.NewClient(settings.APIURL, client),
		newClipboard(),
		newNotifier(),
		settings.TargetLanguage,
	)
	ctrl.PollInterval = settings.PollInterval

	ctx, stop := signalContext()
	defer stop()

	r := newStateRenderer(errOut, isTerminal(int(os.Stderr.Fd())))
	var ready *controller.Ready
	err = ctrl.Run(ctx, func(s controller.State) {
		r.Render(s)
		if rd, ok := s.(controller.Ready); ok {
			ready = &rd
		}
	})
	r.Finish()
	if err != nil {
		if ctx.Err() != nil {
			logger.Warn("Translation canceled", "error", err)
			return nil
		}
		// Already rendered as the error state.
		cmd.SilenceErrors = true
		return err
	}
	if ready == nil {
		return fmt.Errorf("translation finished without a result")
	}
	return deliverResult(ctx, cmd, ctrl, *ready, opts)
}

// deliverResult saves, copies, or streams the translated image depending on
// flags and whether a terminal is attached.
func deliverResult(ctx context.Context, cmd *cobra.Command, ctrl *controller.Controller, ready controller.Ready, opts *translateOptions) error {
	errOut := cmd.ErrOrStderr()
	data, err := ready.Decode()
	if err != nil {
		return err
	}

	if opts.out != "" {
		overwrite := false
		if _, statErr := os.Stat(opts.out); statErr == nil {
			overwrite, err = newConfirmer().ConfirmOverwrite(opts.out, opts.yes)
			if err != nil {
				return err
			}
		}
		path, err := files.SaveImage(opts.out, data, overwrite)
		if err != nil {
			return fmt.Errorf("failed to save image: %w", err)
		}
		fmt.Fprintf(errOut, "Saved %s\n", path)
	}

	doCopy := opts.copy
	if !doCopy && opts.out == "" {
		if !isTerminal(int(os.Stdout.Fd())) {
			// Piped: stream the image itself.
			_, err := cmd.OutOrStdout().Write(data)
			return err
		}
		doCopy, err = newConfirmer().ConfirmCopy()
		if err != nil {
			return err
		}
		if !doCopy {
			fmt.Fprintln(errOut, "Nothing saved. Use --out PATH or --copy.")
			return nil
		}
	}
	if !doCopy {
		return nil
	}

	if _, err := ctrl.CopyResult(ctx, ready); err != nil {
		return err
	}
	fmt.Fprintln(errOut, controller.CopiedMessage)
	return nil
}
