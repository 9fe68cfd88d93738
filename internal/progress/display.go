package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/briandowns/spinner"
)

// Display renders step progress to a writer, normally stderr so that command
// output on stdout stays machine readable.
type Display struct {
	mu           sync.Mutex
	capabilities TerminalCapabilities
	out          io.Writer
	spinner      *spinner.Spinner
	symbols      Symbols
}

// NewDisplay creates a display writing to out.
func NewDisplay(caps TerminalCapabilities, out io.Writer) *Display {
	return &Display{
		capabilities: caps,
		out:          out,
		symbols:      SelectSymbols(caps),
	}
}

// Start begins displaying a step.
func (d *Display) Start(step Step) error {
	if err := step.Validate(); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()

	msg := stepMessage(step)
	if d.capabilities.IsTTY {
		d.spinner = spinner.New(
			spinner.CharSets[d.symbols.SpinnerSet],
			100*time.Millisecond,
			writerOption(d.out),
		)
		d.spinner.Suffix = " " + msg
		d.spinner.Start()
	} else {
		fmt.Fprintln(d.out, msg)
	}
	return nil
}

// Complete stops the spinner and prints the success mark.
func (d *Display) Complete(step Step) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
	fmt.Fprintf(d.out, "%s %s\n", checkmark(d.symbols, d.capabilities.SupportsColor), stepMessage(step))
}

// Fail stops the spinner and prints the failure mark. The error itself is
// left to the caller.
func (d *Display) Fail(step Step) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
	fmt.Fprintf(d.out, "%s %s failed\n", failureMark(d.symbols, d.capabilities.SupportsColor), stepMessage(step))
}

// Run shows step while fn runs and reports its outcome. The error of fn is
// returned unchanged.
func (d *Display) Run(step Step, fn func() error) error {
	if err := d.Start(step); err != nil {
		return err
	}
	if err := fn(); err != nil {
		d.Fail(step)
		return err
	}
	d.Complete(step)
	return nil
}

// Stop halts the spinner without printing a status line.
func (d *Display) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
}

// writerOption lets the spinner check the terminal it actually writes to.
func writerOption(w io.Writer) spinner.Option {
	if f, ok := w.(*os.File); ok {
		return spinner.WithWriterFile(f)
	}
	return spinner.WithWriter(w)
}

func (d *Display) stopLocked() {
	if d.spinner != nil {
		d.spinner.Stop()
		d.spinner = nil
	}
}
