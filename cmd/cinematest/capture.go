package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/networkteam/cinematest"
	"github.com/networkteam/cinematest/session"
)

func captureCmd(flags *globalFlags) *cobra.Command {
	var (
		dedicated bool
		baseURL   string
	)

	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Log in through the login form and persist the browser session",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, closeLog, err := flags.setup(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeLog()

			if err := targetApplication(&cfg, baseURL); err != nil {
				return err
			}

			inst, err := cinematest.NewWithOptions(cfg, cinematest.Options{
				Logger:  logger,
				Session: session.Options{DedicatedProcess: dedicated},
			})
			if err != nil {
				return err
			}
			defer inst.Close()

			if err := inst.Sessions().Capture(cmd.Context()); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), inst.Sessions().StatePath())
			return nil
		},
	}

	cmd.Flags().BoolVar(&dedicated, "dedicated", false, "capture in a separate browser process")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "URL of the running cinema application")

	return cmd
}
