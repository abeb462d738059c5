package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"ragrouter/src/core/schema"
	"ragrouter/src/core/system"
)

var demoQueries = []string{
	"How many sick days do I get per year?",
	"My password expired, how do I reset it?",
	"What's the limit for client dinner expenses?",
	"Can I work from home permanently?",
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run a few sample questions, or chat with --interactive",
	RunE:  runDemo,
}

func init() {
	rootCmd.AddCommand(demoCmd)
	demoCmd.Flags().BoolP("interactive", "i", false, "ask questions from stdin until 'quit'")
}

func runDemo(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	app, err := newApplication(cmd.Context(), settings)
	if err != nil {
		return err
	}
	defer app.Close()

	if interactive, _ := cmd.Flags().GetBool("interactive"); interactive {
		return interactiveSession(cmd.Context(), app.system, cmd.InOrStdin(), cmd.OutOrStdout())
	}
	quickDemo(cmd.Context(), app.system, cmd.OutOrStdout())
	return nil
}

func quickDemo(ctx context.Context, p system.Processor, out io.Writer) {
	fmt.Fprintln(out, "Multi-Agent System Quick Demo")
	for i, query := range demoQueries {
		fmt.Fprintf(out, "\n%d. Query: %s\n", i+1, query)
		result := system.SafeProcessQuery(ctx, p, query, true)
		if !result.Successful() {
			fmt.Fprintf(out, "Query %d failed to process\n", i+1)
			continue
		}
		fmt.Fprintln(out, schema.Format(result, false))
	}
}

func interactiveSession(ctx context.Context, p system.Processor, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, "Ask questions about HR, IT, or Finance policies")
	fmt.Fprintln(out, "Type 'quit' to exit")

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "\nYour question: ")
		if !scanner.Scan() {
			break
		}

		query := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(query) {
		case "":
			continue
		case "quit", "exit", "q":
			fmt.Fprintln(out, "Goodbye!")
			return nil
		}

		result := system.SafeProcessQuery(ctx, p, query, true)
		if !result.Successful() {
			fmt.Fprintln(out, schema.Format(result, true))
			continue
		}

		fmt.Fprintf(out, "\nDepartment: %s\n", strings.ToUpper(result.Intent()))
		fmt.Fprintf(out, "Answer: %s\n", result.Answer())
		if result.HasEvaluation() {
			fmt.Fprintf(out, "Quality Score: %.0f/10\n", result.EvaluationScore())
		}
		fmt.Fprintln(out, "\n"+strings.Repeat("-", 50))
	}
	return scanner.Err()
}
