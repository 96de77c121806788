package main

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/willibrandon/memview/pkg/memview"
	"github.com/willibrandon/memview/pkg/snapshot"
	"github.com/willibrandon/memview/pkg/version"
)

type mode int

const (
	modeDirect mode = iota
	modeIsolated
	modeData
)

type request struct {
	name    string
	literal string
	mode    mode
	framing snapshot.Framing
}

type inspectFunc func(req request) (*memview.Report, error)

func parseLiteral[T any](literal string) (T, error) {
	var v T
	if err := yaml.Unmarshal([]byte(literal), &v); err != nil {
		return v, fmt.Errorf("parse %q as %s: %w", literal, memview.TypeName[T](), err)
	}
	return v, nil
}

func inspectValue[T any](req request, v *T) (*memview.Report, error) {
	if req.mode == modeIsolated {
		return memview.InspectIsolated(req.name, v, req.framing)
	}
	return memview.Inspect(req.name, v), nil
}

func scalar[T any]() inspectFunc {
	return func(req request) (*memview.Report, error) {
		if req.mode == modeData {
			return nil, fmt.Errorf("--data needs a slice or string type, not %s", memview.TypeName[T]())
		}
		v, err := parseLiteral[T](req.literal)
		if err != nil {
			return nil, err
		}
		return inspectValue(req, &v)
	}
}

func sliceOf[E any]() inspectFunc {
	return func(req request) (*memview.Report, error) {
		v, err := parseLiteral[[]E](req.literal)
		if err != nil {
			return nil, err
		}
		if req.mode == modeData {
			return memview.InspectSlice(req.name, v), nil
		}
		return inspectValue(req, &v)
	}
}

// text takes the literal verbatim; YAML would reinterpret "69" or "true".
func text(req request) (*memview.Report, error) {
	v := req.literal
	if req.mode == modeData {
		return memview.InspectString(req.name, v), nil
	}
	return inspectValue(req, &v)
}

var inspectors = map[string]inspectFunc{
	"u8":     scalar[uint8](),
	"u16":    scalar[uint16](),
	"u32":    scalar[uint32](),
	"u64":    scalar[uint64](),
	"uint":   scalar[uint](),
	"i8":     scalar[int8](),
	"i16":    scalar[int16](),
	"i32":    scalar[int32](),
	"i64":    scalar[int64](),
	"int":    scalar[int](),
	"f32":    scalar[float32](),
	"f64":    scalar[float64](),
	"bool":   scalar[bool](),
	"string": text,

	"[]u8":     sliceOf[uint8](),
	"[]u16":    sliceOf[uint16](),
	"[]u32":    sliceOf[uint32](),
	"[]u64":    sliceOf[uint64](),
	"[]i8":     sliceOf[int8](),
	"[]i16":    sliceOf[int16](),
	"[]i32":    sliceOf[int32](),
	"[]i64":    sliceOf[int64](),
	"[]f32":    sliceOf[float32](),
	"[]f64":    sliceOf[float64](),
	"[]bool":   sliceOf[bool](),
	"[]string": sliceOf[string](),
}

func typeNames() []string {
	names := make([]string, 0, len(inspectors))
	for name := range inspectors {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// newLogger picks the colored text formatter only when w is a terminal.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	logger := memview.NewLogger(w, level)
	if f, ok := w.(*os.File); !ok || !isatty.IsTerminal(f.Fd()) {
		logger.SetFormatter(log.LogfmtFormatter)
	}
	return logger
}

func run(args []string, stdout, stderr io.Writer) int {
	flags := pflag.NewFlagSet("memview", pflag.ContinueOnError)
	flags.SetOutput(stderr)

	var typeName = flags.StringP("type", "t", "i32", "Type to parse the literal as.  See --list-types.")
	var name = flags.StringP("name", "n", "", "Name shown in the report.  Defaults to the literal.")
	var isolated = flags.BoolP("isolated", "s", false, "Serialize the value and show the copy instead of its memory.")
	var data = flags.BoolP("data", "d", false, "Show the bytes a slice or string points to rather than its header.")
	var framingStr = flags.String("framing", snapshot.HeuristicFraming.String(), "Header rule for --isolated: heuristic or explicit.")
	var levelStr = flags.String("log-level", "warn", "Log level: debug, info, warn, error.")
	var listTypes = flags.Bool("list-types", false, "Print the accepted --type values and exit.")
	var showVersion = flags.BoolP("version", "v", false, "Print version information and exit.")
	var help = flags.BoolP("help", "h", false, "Display help text.")

	flags.Usage = func() {
		fmt.Fprintf(stderr, "memview %s - print the raw byte layout of a value.\n", version.GetVersion())
		fmt.Fprintf(stderr, "\n")
		fmt.Fprintf(stderr, "Usage: memview [options] <literal>\n")
		flags.PrintDefaults()
		fmt.Fprintf(stderr, "\n")
		fmt.Fprintf(stderr, "Literals use YAML syntax: 69, 3.14, true, [69, 255, 70].\n")
		fmt.Fprintf(stderr, "Put -- before a negative literal: memview -t i8 -- -1\n")
	}

	if err := flags.Parse(args); err != nil {
		fmt.Fprintln(stderr, err)
		flags.Usage()
		return 2
	}

	level, err := log.ParseLevel(*levelStr)
	if err != nil {
		fmt.Fprintf(stderr, "invalid --log-level %q: %v\n", *levelStr, err)
		return 2
	}
	logger := newLogger(stderr, level)

	switch {
	case *help:
		flags.Usage()
		return 0
	case *showVersion:
		fmt.Fprintln(stdout, version.GetVersionInfo())
		return 0
	case *listTypes:
		fmt.Fprintln(stdout, strings.Join(typeNames(), "\n"))
		return 0
	}

	if flags.NArg() != 1 {
		logger.Error("expected exactly one literal", "args", flags.Args())
		flags.Usage()
		return 2
	}
	if *isolated && *data {
		logger.Error("--isolated and --data are mutually exclusive")
		return 2
	}

	framing, err := snapshot.ParseFraming(*framingStr)
	if err != nil {
		logger.Error("invalid --framing", "err", err)
		return 2
	}

	inspect, ok := inspectors[*typeName]
	if !ok {
		logger.Error("unknown --type", "type", *typeName, "known", strings.Join(typeNames(), ","))
		return 2
	}

	req := request{
		name:    *name,
		literal: flags.Arg(0),
		framing: framing,
	}
	if req.name == "" {
		req.name = req.literal
	}
	switch {
	case *isolated:
		req.mode = modeIsolated
	case *data:
		req.mode = modeData
	}

	logger.Debug("inspecting", "type", *typeName, "name", req.name, "isolated", *isolated, "data", *data)

	report, err := inspect(req)
	if err != nil {
		logger.Error("inspection failed", "err", err)
		return 1
	}

	vw := memview.New(memview.Options{Output: stdout, Logger: logger, Framing: framing})
	if err := vw.Print(report); err != nil {
		return 1
	}
	return 0
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
