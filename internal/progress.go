package internal

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
)

// UIManager reports progress on stderr. Stdout is reserved for transcripts.
type UIManager interface {
	// NewSteps counts through a fixed number of request steps
	NewSteps(steps int, description string) ProgressBar
	// NewSpinner shows activity for a single request of unknown length
	NewSpinner(description string) ProgressBar

	Verbose(format string, args ...any)
}

// ProgressBar is a step counter or spinner
type ProgressBar interface {
	Step(description string)
	Finish()
}

// StandardUIManager draws on stderr unless quiet
type StandardUIManager struct {
	verbose bool
	quiet   bool
}

func NewUIManager(verbose, quiet bool) UIManager {
	return &StandardUIManager{
		verbose: verbose,
		quiet:   quiet,
	}
}

func (ui *StandardUIManager) NewSteps(steps int, description string) ProgressBar {
	if ui.quiet || ui.verbose {
		return &stepBar{bar: progressbar.DefaultSilent(int64(steps))}
	}

	return &stepBar{bar: progressbar.NewOptions(steps,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(20),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))}
}

func (ui *StandardUIManager) NewSpinner(description string) ProgressBar {
	// debug logs would interleave with the spinner line
	if ui.quiet || ui.verbose {
		return &stepBar{bar: progressbar.DefaultSilent(-1)}
	}

	return &stepBar{bar: progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)}
}

func (ui *StandardUIManager) Verbose(format string, args ...any) {
	if ui.verbose {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

type stepBar struct {
	bar *progressbar.ProgressBar
}

// Step completes the current step and shows description for the next one
func (s *stepBar) Step(description string) {
	_ = s.bar.Add(1)
	s.bar.Describe(description)
}

func (s *stepBar) Finish() {
	_ = s.bar.Finish()
}
