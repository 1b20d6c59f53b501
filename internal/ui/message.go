// Package ui renders plans, reports and diagnostics for the terminal.
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/substantialcattle5/bulkmv/internal/rename"
)

// Printer writes colored messages. Color follows fatih/color's detection
// unless NoColor is set.
type Printer struct {
	Out   io.Writer
	Err   io.Writer
	Quiet bool

	errc  *color.Color
	warnc *color.Color
	okc   *color.Color
	dimc  *color.Color
}

// NewPrinter returns a printer writing to out and err.
func NewPrinter(out, err io.Writer, quiet, noColor bool) *Printer {
	p := &Printer{
		Out:   out,
		Err:   err,
		Quiet: quiet,
		errc:  color.New(color.FgRed, color.Bold),
		warnc: color.New(color.FgYellow),
		okc:   color.New(color.FgGreen),
		dimc:  color.New(color.Faint),
	}
	if noColor {
		for _, c := range []*color.Color{p.errc, p.warnc, p.okc, p.dimc} {
			c.DisableColor()
		}
	}
	return p
}

// Error prints a message prefixed with "error:". It is never silenced.
func (p *Printer) Error(format string, args ...any) {
	p.errc.Fprint(p.Err, "error: ")
	fmt.Fprintf(p.Err, format+"\n", args...)
}

// Warn prints a message prefixed with "warning:".
func (p *Printer) Warn(format string, args ...any) {
	if p.Quiet {
		return
	}
	p.warnc.Fprint(p.Err, "warning: ")
	fmt.Fprintf(p.Err, format+"\n", args...)
}

// Success prints a green status line.
func (p *Printer) Success(format string, args ...any) {
	if p.Quiet {
		return
	}
	p.okc.Fprintf(p.Out, format+"\n", args...)
}

// Conflicts lists every conflict, blocking ones as errors.
func (p *Printer) Conflicts(conflicts []rename.Conflict) {
	for _, c := range conflicts {
		if c.Blocking() {
			p.Error("%s", c.Error())
		} else {
			p.Warn("%s", c.Error())
		}
	}
}

// Failures lists the operations that did not succeed.
func (p *Printer) Failures(failures []rename.Failure) {
	for _, f := range failures {
		p.Error("%s", f.Error())
	}
}

// Summary prints the outcome of an executed plan.
func (p *Printer) Summary(r *rename.Report) {
	p.Conflicts(r.Conflicts)
	p.Failures(r.Failures)
	if p.Quiet {
		return
	}

	parts := []string{fmt.Sprintf("%s renamed", humanize.Comma(int64(r.Renamed)))}
	if r.Exchanged > 0 {
		parts = append(parts, fmt.Sprintf("%s exchanged", humanize.Comma(int64(r.Exchanged))))
	}
	if r.Overwritten > 0 {
		parts = append(parts, fmt.Sprintf("%s overwritten", humanize.Comma(int64(r.Overwritten))))
	}
	if r.Discarded > 0 {
		parts = append(parts, fmt.Sprintf("%s duplicates removed", humanize.Comma(int64(r.Discarded))))
	}
	line := strings.Join(parts, ", ")
	if r.OK() {
		p.okc.Fprintf(p.Out, "%s (%s of %s paths)\n", line, humanize.Comma(int64(r.Completed)), humanize.Comma(int64(r.Changes)))
		return
	}
	p.warnc.Fprintf(p.Out, "%s (%s of %s paths)\n", line, humanize.Comma(int64(r.Completed)), humanize.Comma(int64(r.Changes)))
}
