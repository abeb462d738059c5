package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill-amqp/pkg/amqp"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/spf13/cobra"

	jobctrl "ragrouter/src/infrastructure/job"
	"ragrouter/src/log"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start the background query worker",
	RunE:  runWorker,
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

func runWorker(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	app, err := newApplication(cmd.Context(), settings)
	if err != nil {
		return err
	}
	defer app.Close()

	jobService, err := app.jobService(app.system)
	if err != nil {
		return err
	}

	logger := log.NewWatermillAdapter("worker")

	// Initialize AMQP subscriber
	subscriberConfig := amqp.NewDurableQueueConfig(settings.AMQP.URL)
	subscriberConfig.Consume.NoRequeueOnNack = true
	amqpSubscriber, err := amqp.NewSubscriber(subscriberConfig, logger)
	if err != nil {
		return err
	}
	defer amqpSubscriber.Close()

	// Initialize router
	router, err := message.NewRouter(message.RouterConfig{}, logger)
	if err != nil {
		return err
	}

	// Add middleware
	router.AddMiddleware(
		middleware.Recoverer,
		middleware.CorrelationID,
		middleware.Retry{
			MaxRetries:      3,
			InitialInterval: time.Second,
			Logger:          logger,
		}.Middleware,
	)

	// Add handler for processing jobs
	router.AddNoPublisherHandler(
		"query_processor",
		jobctrl.JobsTopic,
		amqpSubscriber,
		jobService.ProcessJobMessage,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- router.Run(ctx)
	}()

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-c:
		log.Info("Shutting down...")
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	cancel()
	<-router.Running()
	log.Info("Router stopped")

	return nil
}
