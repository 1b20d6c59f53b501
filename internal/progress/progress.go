package progress

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/schollz/progressbar/v3"
)

// Options configures progress bar behavior
type Options struct {
	Quiet   bool
	Verbose bool
	// Writer receives the bar; nil means stderr
	Writer io.Writer
}

// Manager handles the rename progress bar and cancellation
type Manager struct {
	options    Options
	totalBar   *progressbar.ProgressBar
	cancelFunc context.CancelFunc
	cancelled  bool
	cancelMux  sync.Mutex
	signalChan chan os.Signal
}

// NewManager creates a new progress manager
func NewManager(options Options) *Manager {
	if options.Writer == nil {
		options.Writer = os.Stderr
	}
	return &Manager{
		options:    options,
		signalChan: make(chan os.Signal, 1),
	}
}

// SetupCancellation returns a context cancelled on SIGINT or SIGTERM. The
// rename loop checks it between operations, so an interrupt never splits
// an exchange.
func (pm *Manager) SetupCancellation(ctx context.Context) context.Context {
	ctx, cancel := context.WithCancel(ctx)
	pm.cancelFunc = cancel

	signal.Notify(pm.signalChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-pm.signalChan:
			pm.cancelMux.Lock()
			pm.cancelled = true
			pm.cancelMux.Unlock()
			fmt.Fprintln(pm.options.Writer, "\nInterrupted, stopping after the current rename")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx
}

// IsCancelled checks if the operation was cancelled
func (pm *Manager) IsCancelled() bool {
	pm.cancelMux.Lock()
	defer pm.cancelMux.Unlock()
	return pm.cancelled
}

// Cleanup removes signal handlers
func (pm *Manager) Cleanup() {
	signal.Stop(pm.signalChan)
	if pm.cancelFunc != nil {
		pm.cancelFunc()
	}
}

// InitTotalProgress initializes the bar counting rename operations
func (pm *Manager) InitTotalProgress(total int64, description string) {
	if pm.options.Quiet || total <= 0 {
		return
	}

	pm.totalBar = progressbar.NewOptions64(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(pm.options.Writer),
		progressbar.OptionSetWidth(50),
		progressbar.OptionThrottle(65),
		progressbar.OptionShowCount(),
		progressbar.OptionSetItsString("renames"),
		progressbar.OptionShowIts(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(pm.options.Writer, "\n")
		}),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionFullWidth(),
	)
}

// UpdateTotalProgress advances the bar by n operations
func (pm *Manager) UpdateTotalProgress(n int64) {
	if pm.options.Quiet || pm.totalBar == nil {
		return
	}
	// #nosec G104 - progress bar errors are not critical for functionality
	pm.totalBar.Add64(n)
}

// FinishTotalProgress marks the total progress as complete
func (pm *Manager) FinishTotalProgress() {
	if pm.options.Quiet || pm.totalBar == nil {
		return
	}
	// #nosec G104 - progress bar errors are not critical for functionality
	pm.totalBar.Finish()
	pm.totalBar = nil
}

// PrintVerbose prints verbose information if verbose mode is enabled
func (pm *Manager) PrintVerbose(format string, args ...interface{}) {
	if pm.options.Verbose {
		pm.print(format, args...)
	}
}

// PrintInfo prints informational messages (unless quiet mode)
func (pm *Manager) PrintInfo(format string, args ...interface{}) {
	if !pm.options.Quiet {
		pm.print(format, args...)
	}
}

func (pm *Manager) print(format string, args ...interface{}) {
	// Clear the progress bar before printing to avoid line breaks
	if pm.totalBar != nil {
		// #nosec G104 - progress bar clear is not critical for functionality
		pm.totalBar.Clear()
	}
	fmt.Fprintf(pm.options.Writer, format, args...)
	if len(format) == 0 || format[len(format)-1] != '\n' {
		fmt.Fprintln(pm.options.Writer)
	}
}
