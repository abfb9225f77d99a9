package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/networkteam/cinematest/dbreset"
)

func resetCmd(flags *globalFlags) *cobra.Command {
	var (
		migrate bool
		show    bool
	)

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Restore the ticket table to the seed rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, closeLog, err := flags.setup(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeLog()

			if !cfg.DB.Enabled() {
				return errors.New("no database configured, set CINEMA_DB_DSN or db.dsn")
			}

			db, err := dbreset.Open(cfg.DB.Driver, cfg.DB.DSN, logger)
			if err != nil {
				return err
			}
			defer db.Close()

			if migrate {
				if err := dbreset.Migrate(cmd.Context(), db); err != nil {
					return err
				}
			}

			resetter, err := dbreset.New(db, dbreset.Options{Dialect: cfg.DB.Dialect, Logger: logger})
			if err != nil {
				return err
			}
			if err := resetter.Reset(cmd.Context()); err != nil {
				return err
			}

			if !show {
				return nil
			}
			rows, err := resetter.Rows(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSEAT\tSCHEDULE\tBILL")
			for _, t := range rows {
				fmt.Fprintf(w, "%d\t%d\t%d\t%d\n", t.ID, t.SeatID, t.ScheduleID, t.BillID)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply the sqlite ticket schema first")
	cmd.Flags().BoolVar(&show, "show", false, "print the rows after the reset")

	return cmd
}
