package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var enqueueCmd = &cobra.Command{
	Use:   "enqueue <question>",
	Short: "Queue a question for the background worker",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runEnqueue,
}

func init() {
	rootCmd.AddCommand(enqueueCmd)
	enqueueCmd.Flags().BoolP("evaluate", "e", false, "grade the answer once it is produced")
}

func runEnqueue(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	app := &application{settings: settings}
	defer app.Close()

	jobService, err := app.jobService(nil)
	if err != nil {
		return err
	}

	evaluate, _ := cmd.Flags().GetBool("evaluate")
	job, err := jobService.EnqueueQuery(cmd.Context(), strings.Join(args, " "), evaluate)
	if err != nil {
		return fmt.Errorf("failed to enqueue job: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Successfully enqueued job with ID: %d\n", job.ID)
	return nil
}
