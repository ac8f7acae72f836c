package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"qzft/pkg/distrib"
)

func newWorkerCmd() *cobra.Command {
	var natsURL string

	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Join the NATS evaluation worker pool",
		Long: `worker subscribes to the chunk evaluation subject as part of the
"workers" queue group. Each worker evaluates grid row chunks independently;
run as many as the NATS deployment should fan out to.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			url := cfg.NATS.URL
			if cmd.Flags().Changed("nats") || url == "" {
				url = natsURL
			}

			nc, err := nats.Connect(url)
			if err != nil {
				return err
			}
			defer nc.Close()
			logger.Info("connected to NATS", zap.String("url", url))

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := distrib.RunWorker(ctx, nc, logger); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&natsURL, "nats", nats.DefaultURL, "NATS server URL")
	return cmd
}
