package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"ragrouter/src/core/schema"
	"ragrouter/src/core/system"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer a single question and show routing, sources and quality",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().Bool("json", false, "print the full result as JSON")
	askCmd.Flags().Bool("no-eval", false, "skip answer evaluation")
}

func runAsk(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	app, err := newApplication(cmd.Context(), settings)
	if err != nil {
		return err
	}
	defer app.Close()

	noEval, _ := cmd.Flags().GetBool("no-eval")
	result := system.SafeProcessQuery(cmd.Context(), app.system, strings.Join(args, " "), !noEval)

	out := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	printResult(out, result)
	return nil
}

func printResult(out io.Writer, r *schema.QueryResult) {
	if !r.Successful() {
		fmt.Fprintln(out, schema.Format(r, true))
		return
	}

	fmt.Fprintf(out, "Intent: %s\n", r.Intent())
	fmt.Fprintf(out, "Confidence: %.2f\n", r.Confidence())
	fmt.Fprintf(out, "Agent: %s\n", r.Agent())
	fmt.Fprintf(out, "Answer: %s\n", r.Answer())

	if eval, ok := r.EvaluationData(); ok {
		fmt.Fprintln(out, "\nQuality Evaluation:")
		fmt.Fprintf(out, "  Overall: %d/10\n", eval.Overall)
		fmt.Fprintf(out, "  Relevance: %d/10\n", eval.Relevance)
		fmt.Fprintf(out, "  Completeness: %d/10\n", eval.Completeness)
		fmt.Fprintf(out, "  Accuracy: %d/10\n", eval.Accuracy)
	} else if msg := r.EvaluationError(); msg != "" {
		fmt.Fprintf(out, "\nEvaluation error: %s\n", msg)
	}

	docs := r.SourceDocuments()
	fmt.Fprintf(out, "\nSources (%d):\n", len(docs))
	for _, doc := range docs {
		fmt.Fprintf(out, "  - %s\n", doc.Filename)
	}
}
