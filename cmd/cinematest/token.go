package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/networkteam/cinematest"
)

func tokenCmd(flags *globalFlags) *cobra.Command {
	var baseURL string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Log in against the JSON API and persist the access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, closeLog, err := flags.setup(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeLog()

			if err := targetApplication(&cfg, baseURL); err != nil {
				return err
			}

			inst, err := cinematest.NewWithOptions(cfg, cinematest.Options{Logger: logger})
			if err != nil {
				return err
			}
			defer inst.Close()

			token, err := inst.Tokens().Authenticate()
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", cfg.TokenPath, token.Timestamp.Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().StringVar(&baseURL, "base-url", "", "URL of the running cinema application")

	return cmd
}
