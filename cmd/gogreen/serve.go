package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gogreen-survey/gogreen/src/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the catalog over HTTP",
	Long: `serve loads every release catalog from DATA_PATH, merges them and
answers queries over HTTP until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(
			context.Background(), os.Interrupt, syscall.SIGTERM,
		)
		defer stop()

		entry := &app.APIEntrypoint{}
		if err := entry.Init(ctx); err != nil {
			return err
		}

		errCh := make(chan error, 1)
		go func() { errCh <- entry.Run(ctx) }()

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
		case <-ctx.Done():
		}

		return entry.Close()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
