package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"github.com/tanachan3/looqn-all/internal/web"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the message-generation HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()

		p, closeJournal, err := buildPipeline(ctx)
		if err != nil {
			return err
		}
		defer closeJournal()

		host := serveHost
		if !cmd.Flags().Changed("host") {
			host = cfg.Server.Host
		}
		port := servePort
		if !cmd.Flags().Changed("port") {
			port = cfg.Server.Port
		}

		srv := web.NewServer(p, cfg.Server.RateLimit, cfg.Server.Burst, logger)

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Start(host, port)
		}()
		fmt.Printf("Serving at http://%s:%d\n", host, port)

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-ctx.Done():
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			return srv.Shutdown(shutdownCtx)
		}
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "localhost", "Host to bind")
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")
	rootCmd.AddCommand(serveCmd)
}
