package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/networkteam/cinematest/dbreset"
	"github.com/networkteam/cinematest/internal/cinemaapp"
)

func serveCmd(flags *globalFlags) *cobra.Command {
	var (
		addr  string
		reset bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the built-in cinema application",
		Long: `Serve the built-in cinema application backed by a sqlite ticket store.
The store is CINEMA_DB_DSN if set, otherwise cinema.db in the working directory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, closeLog, err := flags.setup(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeLog()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			dsn := cfg.DB.DSN
			if dsn == "" {
				dsn = "file:cinema.db"
			}
			db, err := cinemaapp.OpenStore(ctx, dsn, logger)
			if err != nil {
				return err
			}
			defer db.Close()

			if reset {
				resetter, err := dbreset.New(db, dbreset.Options{Logger: logger})
				if err != nil {
					return err
				}
				if err := resetter.Reset(ctx); err != nil {
					return err
				}
			}

			app := cinemaapp.New(cinemaapp.Options{DB: db, Logger: logger})
			defer app.Close()

			srv, err := cinemaapp.Listen(addr, app, logger)
			if err != nil {
				return err
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(srv.Serve)
			g.Go(func() error {
				<-gctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})
			return g.Wait()
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8081", "listen address")
	cmd.Flags().BoolVar(&reset, "reset", true, "restore the seed tickets before serving")

	return cmd
}
