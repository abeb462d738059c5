// Package evaluation measures routing accuracy, answer success and answer
// quality over a labelled set of queries, and times the pipeline.
package evaluation

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"unicode/utf8"

	"ragrouter/src/core/parser"
	"ragrouter/src/core/system"
)

// minAnswerLength is the rune count an answer must exceed to count as a
// successful response.
const minAnswerLength = 20

// TestCase is a query labelled with the intent it should be routed to.
type TestCase struct {
	Query          string `json:"query"`
	ExpectedIntent string `json:"expected_intent"`
}

// LoadTestCases reads a JSON array of test cases from path.
func LoadTestCases(path string) ([]TestCase, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read test cases: %w", err)
	}
	var cases []TestCase
	if err := json.Unmarshal(b, &cases); err != nil {
		return nil, fmt.Errorf("failed to decode test cases: %w", err)
	}
	return cases, nil
}

// DomainStats counts the successful queries expected in one domain.
type DomainStats struct {
	Total   int `json:"total"`
	Correct int `json:"correct"`
}

func (d DomainStats) Accuracy() float64 {
	if d.Total == 0 {
		return 0
	}
	return float64(d.Correct) / float64(d.Total) * 100
}

// Report summarizes a suite run.
type Report struct {
	TotalQueries           int                    `json:"total_queries"`
	CorrectClassifications int                    `json:"correct_classifications"`
	SuccessfulResponses    int                    `json:"successful_responses"`
	QualityScores          []float64              `json:"quality_scores"`
	ByDomain               map[string]DomainStats `json:"by_domain"`
}

func newReport(total int) *Report {
	byDomain := make(map[string]DomainStats, len(parser.Intents))
	for _, intent := range parser.Intents {
		byDomain[string(intent)] = DomainStats{}
	}
	return &Report{
		TotalQueries:  total,
		QualityScores: []float64{},
		ByDomain:      byDomain,
	}
}

// ClassificationAccuracy is the percentage of queries routed as expected.
func (r *Report) ClassificationAccuracy() float64 {
	return percent(r.CorrectClassifications, r.TotalQueries)
}

// ResponseSuccessRate is the percentage of queries with a substantial answer.
func (r *Report) ResponseSuccessRate() float64 {
	return percent(r.SuccessfulResponses, r.TotalQueries)
}

// QualityStats returns the mean, min and max quality score. ok is false when
// no query was evaluated.
func (r *Report) QualityStats() (avg, lo, hi float64, ok bool) {
	if len(r.QualityScores) == 0 {
		return 0, 0, 0, false
	}
	lo, hi = r.QualityScores[0], r.QualityScores[0]
	var sum float64
	for _, s := range r.QualityScores {
		sum += s
		lo = min(lo, s)
		hi = max(hi, s)
	}
	return sum / float64(len(r.QualityScores)), lo, hi, true
}

// Grade rates the classification accuracy.
func (r *Report) Grade() string {
	acc := r.ClassificationAccuracy()
	switch {
	case acc >= 90:
		return "A (Excellent)"
	case acc >= 80:
		return "B (Good)"
	case acc >= 70:
		return "C (Acceptable)"
	default:
		return "D (Needs Improvement)"
	}
}

// Domains lists the domains that saw at least one successful query, sorted.
func (r *Report) Domains() []string {
	var out []string
	for d, s := range r.ByDomain {
		if s.Total > 0 {
			out = append(out, d)
		}
	}
	sort.Strings(out)
	return out
}

// Step is the outcome of a single suite query.
type Step struct {
	Index     int
	Case      TestCase
	Succeeded bool
	Intent    string
	Correct   bool
	Quality   float64
	Evaluated bool
	Failure   string
}

// RunSuite processes every case with evaluation enabled. onStep, if set, is
// called after each query.
func RunSuite(ctx context.Context, p system.Processor, cases []TestCase, onStep func(Step)) (*Report, error) {
	report := newReport(len(cases))

	for i, tc := range cases {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		result := system.SafeProcessQuery(ctx, p, tc.Query, true)
		step := Step{Index: i + 1, Case: tc}

		if !result.Successful() {
			step.Failure = result.FailureMessage()
			if onStep != nil {
				onStep(step)
			}
			continue
		}

		step.Succeeded = true
		step.Intent = result.Intent()
		step.Correct = step.Intent == tc.ExpectedIntent

		stats := report.ByDomain[tc.ExpectedIntent]
		stats.Total++
		if step.Correct {
			report.CorrectClassifications++
			stats.Correct++
		}
		report.ByDomain[tc.ExpectedIntent] = stats

		if utf8.RuneCountInString(result.Answer()) > minAnswerLength {
			report.SuccessfulResponses++
		}

		if result.HasEvaluation() {
			step.Evaluated = true
			step.Quality = result.EvaluationScore()
			report.QualityScores = append(report.QualityScores, step.Quality)
		}

		if onStep != nil {
			onStep(step)
		}
	}

	return report, nil
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}
