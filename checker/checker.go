package checker

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/byte4ever/hashcheck/checkfile"
	"github.com/byte4ever/hashcheck/digester"
)

// Process exit statuses.
const (
	ExitMatch    = 0
	ExitMismatch = 1
	ExitError    = 2
)

var (
	// ErrUsage is returned for bad or missing command
	// line arguments.
	ErrUsage = errors.New("usage")

	// ErrTargetOpen is returned when the target file
	// cannot be opened.
	ErrTargetOpen = errors.New("opening target")
)

// Outcome is the verdict of a run.
type Outcome int

const (
	OutcomeError Outcome = iota
	OutcomeMatch
	OutcomeMismatch
)

func (oc Outcome) String() string {
	switch oc {
	case OutcomeMatch:
		return "match"
	case OutcomeMismatch:
		return "mismatch"
	default:
		return "error"
	}
}

// Result holds everything a run learned about its
// target. Fields are filled in as far as the run got
// before any error.
type Result struct {
	Target    string
	CheckFile string
	Algorithm string
	Outcome   Outcome

	// Check is the stored value, zero-filled when the
	// sidecar was missing or truncated.
	Check []byte

	// Digest is the freshly computed digest.
	Digest digester.Digest

	// Written reports whether the sidecar was
	// rewritten.
	Written bool
}

// Run checks target against its sidecar and records the
// fresh digest when they differ. A write failure after a
// mismatch returns the mismatch result together with the
// error.
func Run(target string, cfg Config) (res Result, retErr error) {
	const errCtx = "checking"

	res = Result{
		Target:    target,
		CheckFile: checkfile.Path(target),
		Algorithm: cfg.Algorithm,
	}

	if res.Algorithm == "" {
		res.Algorithm = digester.DefaultAlgorithm
	}

	fi, err := os.Open(target) //nolint:gosec // path is caller-provided by design
	if err != nil {
		return res, fmt.Errorf("%s: %w: %w", errCtx, ErrTargetOpen, err)
	}

	defer func() {
		if closeErr := fi.Close(); closeErr != nil && retErr == nil {
			retErr = fmt.Errorf("%s: %w", errCtx, closeErr)
		}
	}()

	check, err := checkfile.Load(res.CheckFile, checkfile.Size)
	if err != nil {
		return res, fmt.Errorf("%s: %w", errCtx, err)
	}

	res.Check = check

	dg, err := digester.Compute(fi, res.Algorithm, cfg.BufferSize)
	if err != nil {
		return res, fmt.Errorf("%s: %w", errCtx, err)
	}

	res.Digest = dg

	slog.Debug(
		"digest computed",
		"path", target,
		"algorithm", dg.Algorithm(),
		"size", dg.Len(),
	)

	if Match(check, dg.Bytes()) {
		res.Outcome = OutcomeMatch

		return res, nil
	}

	res.Outcome = OutcomeMismatch

	if err := checkfile.Store(res.CheckFile, dg.Bytes()); err != nil {
		return res, fmt.Errorf("%s: %w", errCtx, err)
	}

	res.Written = true

	slog.Debug("check file updated", "path", res.CheckFile)

	return res, nil
}

// Match reports whether the first len(digest) bytes of
// stored equal digest.
//
// The comparison stops at the first differing byte, so
// its timing depends on the data. That is acceptable for
// spotting accidental change; use crypto/subtle instead
// if this is ever used to authenticate content.
func Match(stored, digest []byte) bool {
	if len(stored) < len(digest) {
		return false
	}

	for i := range digest {
		if stored[i] != digest[i] {
			return false
		}
	}

	return true
}

// ExitCode maps a run to its process exit status. A
// mismatch whose sidecar was only partially written
// still exits with ExitMismatch; every other error exits
// with ExitError.
func ExitCode(res Result, err error) int {
	switch {
	case err == nil && res.Outcome == OutcomeMatch:
		return ExitMatch
	case err == nil && res.Outcome == OutcomeMismatch:
		return ExitMismatch
	case res.Outcome == OutcomeMismatch &&
		errors.Is(err, checkfile.ErrShortWrite):
		return ExitMismatch
	default:
		return ExitError
	}
}
