package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	httpHdlr "ragrouter/handler/http"
	"ragrouter/src/log"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the query API server",
	Long: `The serve command starts an HTTP server that routes questions to the
HR, IT and Finance agents. With --jobs it also accepts background query jobs
backed by PostgreSQL and RabbitMQ.`,
	RunE: RunServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().Bool("jobs", false, "enable the background job routes")
}

func RunServer(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	app, err := newApplication(ctx, settings)
	if err != nil {
		return err
	}
	defer app.Close()

	var jobs httpHdlr.JobQueue
	if enabled, _ := cmd.Flags().GetBool("jobs"); enabled {
		svc, err := app.jobService(nil)
		if err != nil {
			return err
		}
		jobs = svc
	}

	handler := httpHdlr.NewHandler(app.system, jobs)

	r := gin.Default()
	handler.RegisterRoutes(r)

	srv := &http.Server{
		Addr:    ":" + settings.Server.Port,
		Handler: r,
	}

	go func() {
		log.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(err, "Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), settings.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(err, "Server forced to shutdown")
	}

	log.Info("Server exited")
	return nil
}
