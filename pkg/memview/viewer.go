// Package memview prints the raw byte layout of Go values.
//
// A report lists a value's name, type, address and size followed by one
// table row per byte in hex, decimal, binary and as an ASCII label.
//
// Two pipelines produce reports. Inspect and friends read the value's own
// memory through internal/rawmem; nothing checks that the span is valid.
// InspectIsolated first serializes the value with pkg/snapshot and shows
// the copy, which is safe but reports the copy's addresses and, for
// containers, its serialized size.
//
//	x := uint16(69)
//	memview.View("x", &x)
package memview

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/willibrandon/memview/pkg/snapshot"
)

// Options configures a Viewer.
type Options struct {
	// Output receives rendered reports.
	Output io.Writer

	// Logger receives diagnostics. Nil discards them.
	Logger *log.Logger

	// Framing is used by ViewIsolated and exposed through Viewer.Framing.
	Framing snapshot.Framing
}

// DefaultOptions writes reports to stdout and warnings to stderr.
func DefaultOptions() Options {
	return Options{
		Output:  os.Stdout,
		Logger:  NewLogger(os.Stderr, log.WarnLevel),
		Framing: snapshot.HeuristicFraming,
	}
}

// CurrentOptions backs the package-level View functions.
var CurrentOptions = loadOptionsFromEnvironment()

// loadOptionsFromEnvironment applies MEMVIEW_FRAMING and MEMVIEW_LOG_LEVEL
// on top of DefaultOptions.
func loadOptionsFromEnvironment() Options {
	options := DefaultOptions()

	if level := os.Getenv("MEMVIEW_LOG_LEVEL"); level != "" {
		if lvl, err := log.ParseLevel(strings.TrimSpace(level)); err == nil {
			options.Logger.SetLevel(lvl)
		} else {
			options.Logger.Warn("ignoring MEMVIEW_LOG_LEVEL", "value", level, "err", err)
		}
	}

	if framing := os.Getenv("MEMVIEW_FRAMING"); framing != "" {
		if f, err := snapshot.ParseFraming(framing); err == nil {
			options.Framing = f
		} else {
			options.Logger.Warn("ignoring MEMVIEW_FRAMING", "err", err)
		}
	}

	return options
}

// NewLogger returns the logger shape used across memview.
func NewLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:  level,
		Prefix: "memview",
	})
}

// Viewer writes reports to one destination.
type Viewer struct {
	out     io.Writer
	logger  *log.Logger
	framing snapshot.Framing
}

// New creates a Viewer. A nil Output falls back to stdout.
func New(opts Options) *Viewer {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Logger == nil {
		opts.Logger = NewLogger(io.Discard, log.FatalLevel)
	}
	return &Viewer{
		out:     opts.Output,
		logger:  opts.Logger,
		framing: opts.Framing,
	}
}

// Default returns a Viewer built from CurrentOptions.
func Default() *Viewer {
	return New(CurrentOptions)
}

// Framing returns the framing this viewer applies to isolated reports.
func (vw *Viewer) Framing() snapshot.Framing {
	return vw.framing
}

// Print renders r.
func (vw *Viewer) Print(r *Report) error {
	md := r.Metadata
	vw.logger.Debug("rendering report",
		"name", md.Name, "type", md.Type, "size", md.Size, "isolated", md.Isolated)

	if md.Isolated && uintptr(md.ContainerLen) != md.Size {
		vw.logger.Debug("isolation header dropped",
			"name", md.Name,
			"header", uintptr(md.ContainerLen)-md.Size,
			"framing", vw.framing)
	}

	if _, err := r.WriteTo(vw.out); err != nil {
		vw.logger.Error("writing report", "name", md.Name, "err", err)
		return err
	}
	return nil
}

// View prints the direct report of *v to the default viewer. Reading
// memory through v is unchecked; see InspectIsolated for the safe path.
// Write errors are logged by Print and returned.
func View[T any](name string, v *T) error {
	return Default().Print(Inspect(name, v))
}

// ViewIsolated prints the isolated report of *v to the default viewer.
// Nothing is printed when v cannot be serialized.
func ViewIsolated[T any](name string, v *T) error {
	vw := Default()
	r, err := InspectIsolated(name, v, vw.Framing())
	if err != nil {
		vw.logger.Error("value not serializable", "name", name, "err", err)
		return err
	}
	return vw.Print(r)
}
