package progress

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/nest-oracle/nest-cli/internal/domain/config"
	"github.com/nest-oracle/nest-cli/internal/usecase"
)

// SpinnerSink shows a spinner while use cases wait on the network. When
// disabled (JSON output, dry runs, non-interactive) it only prints errors.
type SpinnerSink struct {
	mu      sync.Mutex
	spinner *spinner.Spinner
	out     io.Writer
	enabled bool
	stage   string
}

// NewSpinnerSink creates the sink used by the CLI.
func NewSpinnerSink(cfg *config.RuntimeConfig) *SpinnerSink {
	return NewSpinnerSinkTo(os.Stderr, !cfg.JSON && !cfg.NonInteractive && !cfg.DryRun)
}

// NewSpinnerSinkTo creates a sink writing to out.
func NewSpinnerSinkTo(out io.Writer, enabled bool) *SpinnerSink {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(out))
	s.HideCursor = false
	return &SpinnerSink{spinner: s, out: out, enabled: enabled}
}

// OnProgress starts or updates the spinner for spinner events and stops it
// otherwise.
func (r *SpinnerSink) OnProgress(_ context.Context, event usecase.ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stage = event.Stage
	if !r.enabled {
		return
	}

	if event.Spinner {
		r.spinner.Suffix = " " + event.Message
		if !r.spinner.Active() {
			r.spinner.Start()
		}
		return
	}
	if r.spinner.Active() {
		r.spinner.Stop()
	}
	if event.Message != "" {
		fmt.Fprintln(r.out, color.New(color.Faint).Sprint(event.Message))
	}
}

// Info prints an info message above the spinner.
func (r *SpinnerSink) Info(message string) {
	if !r.enabled {
		return
	}
	r.printPaused(color.New(color.FgCyan), message)
}

// Error prints an error message above the spinner.
func (r *SpinnerSink) Error(message string) {
	r.printPaused(color.New(color.FgRed), message)
}

func (r *SpinnerSink) printPaused(c *color.Color, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	wasActive := r.spinner.Active()
	if wasActive {
		r.spinner.Stop()
	}
	fmt.Fprintln(r.out, c.Sprint(message))
	if wasActive {
		r.spinner.Start()
	}
}

// Stop clears the spinner; commands call it before rendering results.
func (r *SpinnerSink) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.spinner.Active() {
		r.spinner.Stop()
	}
}

// Stage returns the last stage reported.
func (r *SpinnerSink) Stage() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stage
}

// Ensure SpinnerSink implements ProgressSink
var _ usecase.ProgressSink = (*SpinnerSink)(nil)
