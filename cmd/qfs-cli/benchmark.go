package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/talari30/Q-file-share/kem"
	"github.com/talari30/Q-file-share/sign"
)

// benchMessage is the message signed by the benchmark.
var benchMessage = []byte("Q-file-share benchmark message")

// opTiming is one benchmarked operation.
type opTiming struct {
	Name    string
	Average time.Duration
}

// attemptRecorder is a slog.Handler that keeps the attempt count of every
// accepted signature.
type attemptRecorder struct {
	mu       sync.Mutex
	attempts []int
}

func (r *attemptRecorder) Enabled(context.Context, slog.Level) bool { return true }

func (r *attemptRecorder) Handle(_ context.Context, rec slog.Record) error {
	if rec.Message != "signature accepted" {
		return nil
	}
	rec.Attrs(func(attr slog.Attr) bool {
		if attr.Key == "attempts" {
			r.mu.Lock()
			r.attempts = append(r.attempts, int(attr.Value.Int64()))
			r.mu.Unlock()
			return false
		}
		return true
	})
	return nil
}

func (r *attemptRecorder) WithAttrs([]slog.Attr) slog.Handler { return r }
func (r *attemptRecorder) WithGroup(string) slog.Handler      { return r }

// histogram returns counts[i] = number of signatures accepted on attempt i+1.
func (r *attemptRecorder) histogram() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	top := 0
	for _, a := range r.attempts {
		top = max(top, a)
	}
	counts := make([]int, top)
	for _, a := range r.attempts {
		counts[a-1]++
	}
	return counts
}

func (a *app) handleBenchmark(args []string) error {
	config, err := a.parseConfig(args)
	if err != nil {
		return err
	}
	iterations := 10
	if s := getArg(args, "--iterations", "-n"); s != "" {
		if iterations, err = strconv.Atoi(s); err != nil {
			return fmt.Errorf("%w: invalid iteration count %q", errUsage, s)
		}
	}
	iterations = max(iterations, 1)

	fmt.Fprintf(a.stdout, "Q-file-share Benchmark Results\n")
	fmt.Fprintf(a.stdout, "==============================\n")
	fmt.Fprintf(a.stdout, "Encryption level: %s\n", config.KEMLevel)
	fmt.Fprintf(a.stdout, "Signature level:  %s\n", config.SignLevel)
	fmt.Fprintf(a.stdout, "Iterations: %d\n\n", iterations)

	results, recorder, err := a.runBenchmark(config, iterations)
	if err != nil {
		return err
	}
	for _, r := range results {
		fmt.Fprintf(a.stdout, "  %-12s %v (avg)\n", r.Name+":", r.Average)
	}
	hist := recorder.histogram()
	fmt.Fprintf(a.stdout, "\nSigning attempts per signature:\n")
	for i, c := range hist {
		if c > 0 {
			fmt.Fprintf(a.stdout, "  %3d: %d\n", i+1, c)
		}
	}

	if path := getArg(args, "--chart", ""); path != "" {
		if err := renderChart(path, config, results, hist); err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "\nChart: %s\n", path)
	}
	fmt.Fprintln(a.stdout, "\nBenchmark complete!")
	return nil
}

// runBenchmark times every operation iterations times and records how
// many rejection rounds each signature took.
func (a *app) runBenchmark(config CLIConfig, iterations int) ([]opTiming, *attemptRecorder, error) {
	var results []opTiming
	measure := func(name string, op func() error) error {
		var total time.Duration
		for i := 0; i < iterations; i++ {
			start := time.Now()
			if err := op(); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			total += time.Since(start)
		}
		results = append(results, opTiming{Name: name, Average: total / time.Duration(iterations)})
		return nil
	}

	kp, err := kem.GenerateKeyPair(a.rng, config.KEMLevel)
	if err != nil {
		return nil, nil, err
	}
	if err := measure("KeyGen (enc)", func() error {
		_, err := kem.GenerateKeyPair(a.rng, config.KEMLevel)
		return err
	}); err != nil {
		return nil, nil, err
	}
	res, err := kem.Encrypt(a.rng, kp.PublicKey)
	if err != nil {
		return nil, nil, err
	}
	if err := measure("Encrypt", func() error {
		_, err := kem.Encrypt(a.rng, kp.PublicKey)
		return err
	}); err != nil {
		return nil, nil, err
	}
	if err := measure("Decrypt", func() error {
		_, err := kem.Decrypt(kp.SecretKey, &res.Ciphertext)
		return err
	}); err != nil {
		return nil, nil, err
	}

	skp, err := sign.GenerateKeyPair(a.rng, config.SignLevel)
	if err != nil {
		return nil, nil, err
	}
	if err := measure("KeyGen (sig)", func() error {
		_, err := sign.GenerateKeyPair(a.rng, config.SignLevel)
		return err
	}); err != nil {
		return nil, nil, err
	}

	recorder := &attemptRecorder{}
	signOpts := &sign.Options{MaxAttempts: config.MaxAttempts, Logger: slog.New(recorder)}
	sig, err := sign.Sign(a.rng, skp.SecretKey, benchMessage, signOpts)
	if err != nil {
		return nil, nil, err
	}
	if err := measure("Sign", func() error {
		_, err := sign.Sign(a.rng, skp.SecretKey, benchMessage, signOpts)
		return err
	}); err != nil {
		return nil, nil, err
	}
	if err := measure("Verify", func() error {
		if !sign.Verify(skp.PublicKey, benchMessage, sig) {
			return errInvalidSignature
		}
		return nil
	}); err != nil {
		return nil, nil, err
	}
	return results, recorder, nil
}

// renderChart writes an HTML page with the average timings and the
// distribution of signing attempts.
func renderChart(path string, config CLIConfig, results []opTiming, hist []int) error {
	names := make([]string, len(results))
	micros := make([]opts.BarData, len(results))
	for i, r := range results {
		names[i] = r.Name
		micros[i] = opts.BarData{Value: r.Average.Microseconds()}
	}
	timings := charts.NewBar()
	timings.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Average operation time (µs)",
			Subtitle: fmt.Sprintf("%s / %s", config.KEMLevel, config.SignLevel),
		}),
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Q-file-share benchmark", Width: "1200px", Height: "500px"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	timings.SetXAxis(names).
		AddSeries("µs", micros).
		SetSeriesOptions(charts.WithLabelOpts(opts.Label{Show: opts.Bool(true)}))

	labels := make([]string, len(hist))
	counts := make([]opts.BarData, len(hist))
	for i, c := range hist {
		labels[i] = strconv.Itoa(i + 1)
		counts[i] = opts.BarData{Value: c}
	}
	attempts := charts.NewBar()
	attempts.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Signing attempts per signature", Subtitle: string(config.SignLevel)}),
		charts.WithInitializationOpts(opts.Initialization{Width: "1200px", Height: "500px"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside"}, opts.DataZoom{Type: "slider"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	attempts.SetXAxis(labels).
		AddSeries("signatures", counts).
		SetSeriesOptions(charts.WithLabelOpts(opts.Label{Show: opts.Bool(false)}))

	page := components.NewPage()
	page.AddCharts(timings, attempts)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart: %w", err)
	}
	defer f.Close()
	if err := page.Render(f); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}
