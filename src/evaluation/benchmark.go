package evaluation

import (
	"context"
	"time"

	"ragrouter/src/core/system"
)

var (
	BenchmarkQueries = []string{
		"How many vacation days do I get?",
		"My laptop won't connect to WiFi",
		"What's the expense limit for meals?",
		"Can I install Slack on my computer?",
		"What's the parental leave policy?",
	}

	StressQueries = []string{
		"How do I reset my password?",
		"What's the vacation policy?",
		"Can I expense this meal?",
		"My computer is slow",
		"When are reviews done?",
		"How do I submit expenses?",
		"What software is approved?",
		"How much sick leave do I have?",
		"Can I work remotely?",
		"What's the IT helpdesk number?",
	}
)

// Timing is the outcome of one timed query.
type Timing struct {
	Query     string        `json:"query"`
	Intent    string        `json:"intent"`
	Succeeded bool          `json:"succeeded"`
	Elapsed   time.Duration `json:"elapsed"`
}

// TimingReport aggregates timed queries.
type TimingReport struct {
	Timings    []Timing      `json:"timings"`
	Successful int           `json:"successful"`
	Total      time.Duration `json:"total"`
}

func (r *TimingReport) Average() time.Duration {
	if len(r.Timings) == 0 {
		return 0
	}
	return r.Total / time.Duration(len(r.Timings))
}

func (r *TimingReport) SuccessRate() float64 {
	return percent(r.Successful, len(r.Timings))
}

// Benchmark times each query individually without evaluation.
func Benchmark(ctx context.Context, p system.Processor, queries []string, onStep func(Timing)) *TimingReport {
	report := &TimingReport{}
	for _, q := range queries {
		if ctx.Err() != nil {
			break
		}
		start := time.Now()
		result := system.SafeProcessQuery(ctx, p, q, false)
		t := Timing{
			Query:     q,
			Intent:    result.Intent(),
			Succeeded: result.Successful(),
			Elapsed:   time.Since(start),
		}
		report.Timings = append(report.Timings, t)
		report.Total += t.Elapsed
		if t.Succeeded {
			report.Successful++
		}
		if onStep != nil {
			onStep(t)
		}
	}
	return report
}

// StressTest runs queries back to back and reports the wall-clock total.
func StressTest(ctx context.Context, p system.Processor, queries []string, onStep func(Timing)) *TimingReport {
	start := time.Now()
	report := Benchmark(ctx, p, queries, onStep)
	report.Total = time.Since(start)
	return report
}
