package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/yamitzky/xlowner-go/biff"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var version = "dev"

type options struct {
	setName             *string
	outputPath          string
	dump                bool
	count               bool
	unnumbered          bool
	ignoreTruncatedTail bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("xlsowner", flag.ContinueOnError)
	fs.SetOutput(stderr)

	showVersion := fs.Bool("v", false, "show version")
	fs.BoolVar(showVersion, "version", false, "show version")

	setName := fs.String("s", "", "set the owner name")
	fs.StringVar(setName, "set", "", "set the owner name")

	outputPath := fs.String("o", "", "output path for the rewritten stream")
	fs.StringVar(outputPath, "output", "", "output path for the rewritten stream")

	dump := fs.Bool("dump", false, "dump all records in hex")
	count := fs.Bool("count", false, "count records by type")
	unnumbered := fs.Bool("unnumbered", false, "omit offsets from --dump")
	ignoreTruncatedTail := fs.Bool("ignore-truncated-tail", false, "drop a truncated final record")
	verbose := fs.Bool("verbose", false, "log every record")

	fs.Usage = func() {
		fmt.Fprint(stderr, usageText())
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if *showVersion {
		fmt.Fprintln(stdout, version)
		return 0
	}

	rest := fs.Args()
	if len(rest) != 1 {
		fs.Usage()
		return 2
	}

	opts := options{
		outputPath:          *outputPath,
		dump:                *dump,
		count:               *count,
		unnumbered:          *unnumbered,
		ignoreTruncatedTail: *ignoreTruncatedTail,
	}
	// An explicit empty --set clears the name, so track presence.
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "s" || f.Name == "set" {
			opts.setName = setName
		}
	})

	if opts.setName != nil && opts.outputPath == "" {
		fmt.Fprintln(stderr, "--set requires --output")
		return 2
	}
	if opts.setName != nil && (opts.dump || opts.count) {
		fmt.Fprintln(stderr, "cannot combine --set with --dump or --count")
		return 2
	}

	logger := newLogger(*verbose, stderr)
	defer logger.Sync()

	content, err := readInput(rest[0], stdin)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	if err := process(content, opts, logger, stdout); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

func newLogger(verbose bool, stderr io.Writer) *zap.Logger {
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(stderr),
		level,
	)
	return zap.New(core)
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		content, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return content, nil
	}
	expanded, err := biff.ExpandPath(path)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(expanded)
}

func process(content []byte, opts options, logger *zap.Logger, stdout io.Writer) error {
	if len(content) == 0 {
		return biff.NewBIFFError("File size is 0 bytes")
	}
	if format := biff.InspectFormat(content); format != "biff" {
		return biff.NewBIFFError("%s; not supported", biff.FileFormatDescriptions[format])
	}

	stream, err := biff.ParseStream(content, &biff.StreamOptions{
		Logger:              logger,
		IgnoreTruncatedTail: opts.ignoreTruncatedTail,
	})
	if err != nil {
		return err
	}

	switch {
	case opts.dump:
		stream.Dump(stdout, opts.unnumbered)
		return nil
	case opts.count:
		stream.CountRecords(stdout)
		return nil
	case opts.setName != nil:
		return rewriteOwner(stream, *opts.setName, opts.outputPath, logger, stdout)
	}

	rec, err := stream.WriteAccess()
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, rec.UserName())
	return nil
}

func rewriteOwner(stream *biff.Stream, name, outputPath string, logger *zap.Logger, stdout io.Writer) error {
	rec, err := stream.WriteAccess()
	if errors.Is(err, biff.ErrNoWriteAccess) {
		rec = biff.NewWriteAccessRecord()
	} else if err != nil {
		return err
	}

	previous := rec.UserName()
	if err := rec.SetUserName(name); err != nil {
		return err
	}
	if err := stream.SetWriteAccess(rec); err != nil {
		return err
	}
	logger.Info("owner name changed", zap.String("from", previous), zap.String("to", name))

	if outputPath == "-" {
		_, err := stdout.Write(stream.Bytes())
		return err
	}
	expanded, err := biff.ExpandPath(outputPath)
	if err != nil {
		return err
	}
	return os.WriteFile(expanded, stream.Bytes(), 0o644)
}

func usageText() string {
	return `Usage:

 xlsowner [-h] [-v] [-s NAME -o OUTPUT] [--dump [--unnumbered]] [--count]
          [--ignore-truncated-tail] [--verbose]
          biffstream
positional arguments:

  biffstream            raw BIFF workbook stream, use '-' to read from STDIN
optional arguments:

  -h, --help            show this help message and exit
  -v, --version         show program's version number and exit
  -s NAME, --set NAME   replace the owner name (requires --output)
  -o OUTPUT, --output OUTPUT
                        path for the rewritten stream, '-' for STDOUT
  --dump                dump every record in hex and char format
  --unnumbered          omit offsets from --dump output
  --count               print the number of records of each type
  --ignore-truncated-tail
                        drop a final record cut short by end of file
  --verbose             log every record read
`
}
