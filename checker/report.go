package checker

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	json "github.com/goccy/go-json"
	"github.com/valyala/fasttemplate"

	"github.com/byte4ever/hashcheck/checkfile"
	"github.com/byte4ever/hashcheck/digester"
)

var (
	matchColor    = color.New(color.FgGreen)
	mismatchColor = color.New(color.FgYellow)
	errorColor    = color.New(color.FgRed, color.Bold)
)

// jsonReport is the object written in FormatJSON.
type jsonReport struct {
	Target    string `json:"target"`
	CheckFile string `json:"check_file"`
	Algorithm string `json:"algorithm"`
	Outcome   string `json:"outcome"`
	Check     string `json:"check,omitempty"`
	Digest    string `json:"digest,omitempty"`
	Written   bool   `json:"written"`
	Error     string `json:"error,omitempty"`
}

// Report writes the result of a run to w in the format
// selected by cfg. Quiet mode drops everything except
// the message describing runErr.
func Report(
	w io.Writer,
	res Result,
	runErr error,
	cfg Config,
) error {
	const errCtx = "reporting"

	var err error

	switch {
	case cfg.Format == FormatJSON && !cfg.Quiet:
		err = writeJSON(w, res, runErr)
	default:
		err = writeText(w, res, runErr, cfg)
	}

	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}

func writeText(
	w io.Writer,
	res Result,
	runErr error,
	cfg Config,
) error {
	vars := templateVars(res)
	lw := lineWriter{w: w}

	if !cfg.Quiet {
		lw.println(nil, render(cfg.Templates.Header, vars))
	}

	if runErr != nil {
		lw.println(errorColor, ErrorMessage(res, runErr))
	}

	if cfg.Quiet || ExitCode(res, runErr) == ExitError {
		return lw.err
	}

	switch res.Outcome {
	case OutcomeMatch:
		lw.println(matchColor, render(cfg.Templates.Match, vars))
	case OutcomeMismatch:
		lw.println(mismatchColor, render(cfg.Templates.Mismatch, vars))
	case OutcomeError:
	}

	return lw.err
}

func writeJSON(w io.Writer, res Result, runErr error) error {
	rep := jsonReport{
		Target:    res.Target,
		CheckFile: res.CheckFile,
		Algorithm: res.Algorithm,
		Outcome:   res.Outcome.String(),
		Check:     checkHex(res),
		Digest:    res.Digest.Hex(),
		Written:   res.Written,
	}

	if runErr != nil {
		rep.Error = ErrorMessage(res, runErr)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(rep)
}

// ErrorMessage returns the one-line, user-facing
// description of a run error.
func ErrorMessage(res Result, err error) string {
	switch {
	case errors.Is(err, ErrTargetOpen):
		return fmt.Sprintf("Could not open [%s]", res.Target)
	case errors.Is(err, digester.ErrAlgorithmUnavailable):
		return fmt.Sprintf(
			"Digest algorithm [%s] is unavailable", res.Algorithm,
		)
	case errors.Is(err, digester.ErrRead):
		return fmt.Sprintf("Could not read [%s]", res.Target)
	case errors.Is(err, checkfile.ErrRead):
		return fmt.Sprintf("Could not read [%s]", res.CheckFile)
	case errors.Is(err, checkfile.ErrWrite):
		return fmt.Sprintf(
			"Could not open [%s] to write hash value", res.CheckFile,
		)
	case errors.Is(err, checkfile.ErrShortWrite):
		return fmt.Sprintf(
			"Could not write the hash value to [%s]", res.CheckFile,
		)
	default:
		return err.Error()
	}
}

// templateVars returns the placeholder values for res.
func templateVars(res Result) map[string]interface{} {
	return map[string]interface{}{
		"target":     res.Target,
		"check_file": res.CheckFile,
		"algorithm":  res.Algorithm,
		"check":      checkHex(res),
		"digest":     res.Digest.Hex(),
	}
}

// checkHex encodes the stored value over the digest's
// reported length. It is empty until a digest exists.
func checkHex(res Result) string {
	n := res.Digest.Len()
	if n == 0 {
		return ""
	}

	check := res.Check
	if n < len(check) {
		check = check[:n]
	}

	return hex.EncodeToString(check)
}

// render substitutes single-brace placeholders. Unknown
// placeholders are kept as-is.
func render(tpl string, vars map[string]interface{}) string {
	return fasttemplate.ExecuteStringStd(tpl, "{", "}", vars)
}

// lineWriter keeps the first write error so callers can
// emit several lines and check once.
type lineWriter struct {
	w   io.Writer
	err error
}

func (lw *lineWriter) println(c *color.Color, line string) {
	if lw.err != nil {
		return
	}

	if c == nil {
		_, lw.err = fmt.Fprintln(lw.w, line)

		return
	}

	_, lw.err = c.Fprintln(lw.w, line)
}
