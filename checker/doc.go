// Package checker decides whether a file changed since it was last checked.
//
// Run opens the target, loads the stored value from its sidecar (see package
// checkfile), computes a fresh digest (see package digester) and compares the
// two. On a mismatch the sidecar is rewritten with the fresh digest, so the
// first run against a new target always reports a mismatch and records a
// baseline. ExitCode maps a run to the process exit status and Report renders
// it as text lines or a JSON object.
package checker
