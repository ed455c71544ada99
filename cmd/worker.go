/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/careerlens/apiserver/config"
	"github.com/careerlens/apiserver/internal/ai"
	"github.com/careerlens/apiserver/internal/db"
	"github.com/careerlens/apiserver/internal/mq"
	"github.com/careerlens/apiserver/internal/services"
	"github.com/careerlens/apiserver/internal/store"
	"github.com/careerlens/apiserver/internal/worker"
	"github.com/spf13/cobra"
)

// workerCmd represents the worker command
var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consumes queued match requests and application events",
	Long: `Consumes queued match requests and application events. Usage:

	careerlens worker

Requires MQ_BACKEND=rabbitmq or MQ_BACKEND=pubsub and an AI_PROVIDER.
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		switch cfg.MQ.Backend {
		case config.MQBackendRabbitMQ, config.MQBackendPubSub:
		default:
			return errors.New("the worker needs MQ_BACKEND set to rabbitmq or pubsub")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		scorer, err := ai.NewScorer(ctx, cfg.AI)
		if err != nil {
			return fmt.Errorf("init scorer: %w", err)
		}

		dbConn, err := db.Open(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer dbConn.Close()

		bus, err := mq.Open(ctx, cfg.MQ)
		if err != nil {
			return err
		}
		defer bus.Close()

		dispatcher := services.NewDispatcher(bus, nil, logger)
		jobs := services.NewJobService(store.NewJobRepository(dbConn))
		applications := services.NewApplicationService(store.NewApplicationRepository(dbConn), jobs, dispatcher)
		matches := services.NewMatchService(applications, store.NewMatchRepository(dbConn), scorer, nil, dispatcher)

		logger.WithField("mq_backend", cfg.MQ.Backend).Info("worker started")
		if err := worker.New(bus, matches, logger).Run(ctx); err != nil {
			return fmt.Errorf("worker stopped: %w", err)
		}
		logger.Info("worker stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
