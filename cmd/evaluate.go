package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"ragrouter/src/core/schema"
	"ragrouter/src/evaluation"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Measure routing accuracy and answer quality over labelled queries",
	Long: `The evaluate command runs every query of a JSON test file through the
full pipeline with evaluation enabled, then reports classification accuracy,
response success rate, quality scores and per-domain accuracy. --benchmark
and --stress additionally time the pipeline.`,
	RunE: runEvaluate,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)
	evaluateCmd.Flags().StringP("file", "f", "test_queries.json", "JSON file of {query, expected_intent} cases")
	evaluateCmd.Flags().Bool("benchmark", false, "time a fixed set of queries")
	evaluateCmd.Flags().Bool("stress", false, "run ten queries back to back")
	evaluateCmd.Flags().Bool("json", false, "print the suite report as JSON")
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("file")
	cases, err := evaluation.LoadTestCases(path)
	if err != nil {
		return err
	}

	settings, err := loadSettings()
	if err != nil {
		return err
	}

	app, err := newApplication(cmd.Context(), settings)
	if err != nil {
		return err
	}
	defer app.Close()

	out := cmd.OutOrStdout()
	ctx := cmd.Context()

	bar := progressbar.NewOptions(len(cases),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("Evaluating"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	var steps []evaluation.Step
	report, err := evaluation.RunSuite(ctx, app.system, cases, func(s evaluation.Step) {
		steps = append(steps, s)
		_ = bar.Add(1)
	})
	_ = bar.Finish()
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		printSteps(out, steps)
		printReport(out, report)
	}

	if benchmark, _ := cmd.Flags().GetBool("benchmark"); benchmark {
		fmt.Fprintln(out, "\nPerformance Benchmarking")
		fmt.Fprintln(out, strings.Repeat("=", 40))
		timings := evaluation.Benchmark(ctx, app.system, evaluation.BenchmarkQueries, func(t evaluation.Timing) {
			printTiming(out, t)
		})
		fmt.Fprintln(out, "\nPerformance Results:")
		fmt.Fprintf(out, "   Average Response Time: %.2f seconds\n", timings.Average().Seconds())
		fmt.Fprintf(out, "   Success Rate: %.1f%%\n", timings.SuccessRate())
		fmt.Fprintf(out, "   Total Time: %.2f seconds\n", timings.Total.Seconds())
	}

	if stress, _ := cmd.Flags().GetBool("stress"); stress {
		fmt.Fprintf(out, "\nStress Test (%d rapid queries)\n", len(evaluation.StressQueries))
		fmt.Fprintln(out, strings.Repeat("=", 40))
		timings := evaluation.StressTest(ctx, app.system, evaluation.StressQueries, func(t evaluation.Timing) {
			printTiming(out, t)
		})
		fmt.Fprintln(out, "\nStress Test Results:")
		fmt.Fprintf(out, "   Successful Queries: %d/%d\n", timings.Successful, len(timings.Timings))
		fmt.Fprintf(out, "   Total Time: %.2f seconds\n", timings.Total.Seconds())
		if len(timings.Timings) > 0 {
			fmt.Fprintf(out, "   Queries per Second: %.2f\n", float64(len(timings.Timings))/timings.Total.Seconds())
		}
	}

	return nil
}

func printSteps(out io.Writer, steps []evaluation.Step) {
	for _, s := range steps {
		fmt.Fprintf(out, "%2d. %s\n", s.Index, schema.Truncate(s.Case.Query, 60))
		if !s.Succeeded {
			fmt.Fprintf(out, "    Query failed: %s\n", s.Failure)
			continue
		}
		mark := "PASS"
		if !s.Correct {
			mark = "FAIL"
		}
		fmt.Fprintf(out, "    %s expected %s, got %s\n", mark, s.Case.ExpectedIntent, s.Intent)
		if s.Evaluated {
			fmt.Fprintf(out, "    Quality: %.0f/10\n", s.Quality)
		}
	}
}

func printReport(out io.Writer, r *evaluation.Report) {
	fmt.Fprintln(out, "\n"+strings.Repeat("=", 60))
	fmt.Fprintln(out, "EVALUATION SUMMARY")
	fmt.Fprintln(out, strings.Repeat("=", 60))

	fmt.Fprintln(out, "Overall Performance:")
	fmt.Fprintf(out, "   Classification Accuracy: %.1f%% (%d/%d)\n",
		r.ClassificationAccuracy(), r.CorrectClassifications, r.TotalQueries)
	fmt.Fprintf(out, "   Response Success Rate: %.1f%% (%d/%d)\n",
		r.ResponseSuccessRate(), r.SuccessfulResponses, r.TotalQueries)
	if avg, lo, hi, ok := r.QualityStats(); ok {
		fmt.Fprintf(out, "   Average Quality Score: %.1f/10\n", avg)
		fmt.Fprintf(out, "   Quality Range: %.0f-%.0f/10\n", lo, hi)
	}

	fmt.Fprintln(out, "\nPer-Domain Performance:")
	for _, d := range r.Domains() {
		stats := r.ByDomain[d]
		fmt.Fprintf(out, "   %s: %.1f%% (%d/%d)\n", strings.ToUpper(d), stats.Accuracy(), stats.Correct, stats.Total)
	}

	fmt.Fprintln(out, "\nPerformance Grade:")
	fmt.Fprintf(out, "   Overall Grade: %s\n", r.Grade())
}

func printTiming(out io.Writer, t evaluation.Timing) {
	status := "PASS"
	if !t.Succeeded {
		status = "FAIL"
	}
	fmt.Fprintf(out, "%s %s (%.2fs)\n", status, schema.Truncate(t.Query, 40), t.Elapsed.Seconds())
}
