// Command hashcheck reports whether a file changed since
// it was last checked, recording its digest in a
// "<path>.hashCheck" sidecar whenever it did.
//
// Exit status is 0 when nothing changed, 1 when a change
// was found and recorded, and 2 on any error.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/byte4ever/hashcheck/checker"
	"github.com/byte4ever/hashcheck/digester"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func usage(w io.Writer) int {
	_, _ = fmt.Fprintf( //nolint:errcheck // nothing left to report to
		w,
		"usage: hashcheck <<pathToFileToCheck>>\n"+
			"\n"+
			"options:\n"+
			"  -h            Print this help message\n"+
			"  -q            Do not output any messages\n"+
			"  -json         Print the result as a JSON object\n"+
			"  -config FILE  Read settings from a YAML file\n"+
			"\n"+
			"algorithms: %s\n",
		strings.Join(digester.Names(), ", "),
	)

	return checker.ExitCode(checker.Result{}, checker.ErrUsage)
}

func run(args []string, stdout, stderr io.Writer) int {
	const errCtx = "hashcheck"

	fs := flag.NewFlagSet("hashcheck", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	quiet := fs.Bool("q", false, "Do not output any messages")
	asJSON := fs.Bool("json", false, "Print the result as a JSON object")
	cfgPath := fs.String("config", "", "Read settings from a YAML file")

	if err := fs.Parse(args); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			_, _ = fmt.Fprintln(stdout, err) //nolint:errcheck // usage follows
		}

		return usage(stdout)
	}

	if fs.NArg() == 0 {
		_, _ = fmt.Fprintln( //nolint:errcheck // usage follows
			stdout, "No path to file to check provided",
		)

		return usage(stdout)
	}

	target := fs.Arg(0)

	cfg := checker.DefaultConfig()

	if *cfgPath != "" {
		loaded, err := checker.LoadConfig(*cfgPath)
		if err != nil {
			_, _ = fmt.Fprintln(stdout, err) //nolint:errcheck // exiting anyway

			return checker.ExitError
		}

		cfg = loaded
	}

	if *quiet {
		cfg.Quiet = true
	}

	if *asJSON {
		cfg.Format = checker.FormatJSON
	}

	lvl, err := cfg.Level()
	if err != nil {
		_, _ = fmt.Fprintln(stdout, err) //nolint:errcheck // exiting anyway

		return checker.ExitError
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(
		stderr, &slog.HandlerOptions{Level: lvl},
	)))

	res, runErr := checker.Run(target, cfg)
	if runErr != nil {
		slog.Debug(errCtx, "error", runErr)
	}

	if err := checker.Report(stdout, res, runErr, cfg); err != nil {
		slog.Error(errCtx, "error", err)

		return checker.ExitError
	}

	return checker.ExitCode(res, runErr)
}
