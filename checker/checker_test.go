package checker_test

import (
	"bytes"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/byte4ever/hashcheck/checker"
	"github.com/byte4ever/hashcheck/checkfile"
	"github.com/byte4ever/hashcheck/digester"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	sha512Empty = "cf83e1357eefb8bdf1542850d66d8007d620e4050b5715dc83f4a921d36ce9ce" +
		"47d0d13c5d85f2b0ff8318d2877eec2f63b931bd47417a81a538327af927da3e"
	sha512ABC = "ddaf35a193617abacc417349ae20413112e6fa4e89a97ea20a9eeee64b55d39a" +
		"2192992a274fc1a836ba3c23a3feebbd454d4423643ce80e2a9ac94fa54ca49f"
)

func TestMain(m *testing.M) {
	color.NoColor = true

	os.Exit(m.Run())
}

// writeTemp creates a temporary file with content and
// returns its path.
func writeTemp(
	tb testing.TB,
	dir string,
	name string,
	content string,
) string {
	tb.Helper()

	pa := filepath.Join(dir, name)
	require.NoError(tb, os.WriteFile(pa, []byte(content), 0o600))

	return pa
}

func readSidecar(tb testing.TB, target string) []byte {
	tb.Helper()

	got, err := os.ReadFile(checkfile.Path(target)) //nolint:gosec // test file
	require.NoError(tb, err)

	return got
}

func TestRun_first_run_records_baseline(t *testing.T) {
	t.Parallel()

	pa := writeTemp(t, t.TempDir(), "data.bin", "abc")

	res, err := checker.Run(pa, checker.DefaultConfig())

	require.NoError(t, err)
	assert.Equal(t, checker.OutcomeMismatch, res.Outcome)
	assert.True(t, res.Written)
	assert.Equal(t, make([]byte, checkfile.Size), res.Check)
	assert.Equal(t, checker.ExitMismatch, checker.ExitCode(res, err))

	side := readSidecar(t, pa)
	assert.Len(t, side, checkfile.Size)
	assert.Equal(t, res.Digest.Bytes(), side)
}

func TestRun_second_run_matches(t *testing.T) {
	t.Parallel()

	pa := writeTemp(t, t.TempDir(), "data.bin", "abc")

	_, err := checker.Run(pa, checker.DefaultConfig())
	require.NoError(t, err)

	before := readSidecar(t, pa)

	res, err := checker.Run(pa, checker.DefaultConfig())

	require.NoError(t, err)
	assert.Equal(t, checker.OutcomeMatch, res.Outcome)
	assert.False(t, res.Written)
	assert.Equal(t, checker.ExitMatch, checker.ExitCode(res, err))
	assert.Equal(t, before, readSidecar(t, pa))
}

func TestRun_changed_content_updates_sidecar(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	pa := writeTemp(t, dir, "data.bin", "version one")

	_, err := checker.Run(pa, checker.DefaultConfig())
	require.NoError(t, err)

	old := readSidecar(t, pa)

	writeTemp(t, dir, "data.bin", "version two")

	res, err := checker.Run(pa, checker.DefaultConfig())

	require.NoError(t, err)
	assert.Equal(t, checker.OutcomeMismatch, res.Outcome)
	assert.Equal(t, old, res.Check)
	assert.True(t, res.Written)

	side := readSidecar(t, pa)
	assert.NotEqual(t, old, side)
	assert.Equal(t, res.Digest.Bytes(), side)
}

func TestRun_short_sidecar_forces_rewrite(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	pa := writeTemp(t, dir, "data.bin", "abc")

	full, err := hex.DecodeString(sha512ABC)
	require.NoError(t, err)

	// The right digest, one byte short.
	writeTemp(t, dir, "data.bin"+checkfile.Suffix, string(full[:63]))

	res, err := checker.Run(pa, checker.DefaultConfig())

	require.NoError(t, err)
	assert.Equal(t, checker.OutcomeMismatch, res.Outcome)
	assert.Equal(t, make([]byte, checkfile.Size), res.Check)
	assert.Equal(t, full, readSidecar(t, pa))
}

func TestRun_empty_target(t *testing.T) {
	t.Parallel()

	pa := writeTemp(t, t.TempDir(), "empty.bin", "")

	res, err := checker.Run(pa, checker.DefaultConfig())

	require.NoError(t, err)
	assert.Equal(t, sha512Empty, res.Digest.Hex())
	assert.Equal(t, checker.OutcomeMismatch, res.Outcome)

	res, err = checker.Run(pa, checker.DefaultConfig())

	require.NoError(t, err)
	assert.Equal(t, checker.OutcomeMatch, res.Outcome)
}

func TestRun_abc_test_vector(t *testing.T) {
	t.Parallel()

	pa := writeTemp(t, t.TempDir(), "abc.txt", "abc")

	res, err := checker.Run(pa, checker.DefaultConfig())

	require.NoError(t, err)
	assert.Equal(t, sha512ABC, res.Digest.Hex())
	assert.Equal(t, sha512ABC, hex.EncodeToString(readSidecar(t, pa)))
}

func TestRun_missing_target(t *testing.T) {
	t.Parallel()

	pa := filepath.Join(t.TempDir(), "absent.bin")

	res, err := checker.Run(pa, checker.DefaultConfig())

	require.Error(t, err)
	assert.ErrorIs(t, err, checker.ErrTargetOpen)
	assert.Equal(t, checker.OutcomeError, res.Outcome)
	assert.Equal(t, checker.ExitError, checker.ExitCode(res, err))
	assert.NoFileExists(t, checkfile.Path(pa))
}

func TestRun_unknown_algorithm(t *testing.T) {
	t.Parallel()

	pa := writeTemp(t, t.TempDir(), "data.bin", "abc")

	cfg := checker.DefaultConfig()
	cfg.Algorithm = "md5"

	res, err := checker.Run(pa, cfg)

	require.Error(t, err)
	assert.ErrorIs(t, err, digester.ErrAlgorithmUnavailable)
	assert.Equal(t, checker.ExitError, checker.ExitCode(res, err))
	assert.NoFileExists(t, checkfile.Path(pa))
}

func TestRun_unreadable_sidecar(t *testing.T) {
	t.Parallel()

	pa := writeTemp(t, t.TempDir(), "data.bin", "abc")
	require.NoError(t, os.Mkdir(checkfile.Path(pa), 0o755))

	res, err := checker.Run(pa, checker.DefaultConfig())

	require.Error(t, err)
	assert.ErrorIs(t, err, checkfile.ErrRead)
	assert.Equal(t, checker.ExitError, checker.ExitCode(res, err))
}

func TestRun_sidecar_cannot_be_created(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	pa := writeTemp(t, dir, "data.bin", "abc")

	// A dangling link reads as absent but cannot be
	// created through.
	require.NoError(t, os.Symlink(
		filepath.Join(dir, "nowhere", "x"),
		checkfile.Path(pa),
	))

	res, err := checker.Run(pa, checker.DefaultConfig())

	require.Error(t, err)
	assert.ErrorIs(t, err, checkfile.ErrWrite)
	assert.Equal(t, checker.OutcomeMismatch, res.Outcome)
	assert.Equal(t, sha512ABC, res.Digest.Hex())
	assert.False(t, res.Written)
	assert.Equal(t, checker.ExitError, checker.ExitCode(res, err))
}

func TestRun_every_algorithm_round_trips(t *testing.T) {
	t.Parallel()

	for _, name := range digester.Names() {
		pa := writeTemp(t, t.TempDir(), "data.bin", "payload")

		cfg := checker.DefaultConfig()
		cfg.Algorithm = name

		res, err := checker.Run(pa, cfg)
		require.NoError(t, err, name)
		assert.Equal(t, checker.OutcomeMismatch, res.Outcome, name)
		assert.Len(t, readSidecar(t, pa), checkfile.Size, name)

		res, err = checker.Run(pa, cfg)
		require.NoError(t, err, name)
		assert.Equal(t, checker.OutcomeMatch, res.Outcome, name)
	}
}

func TestRun_small_buffer_matches_default(t *testing.T) {
	t.Parallel()

	pa := writeTemp(
		t, t.TempDir(), "data.bin",
		string(bytes.Repeat([]byte("xyz"), 5000)),
	)

	_, err := checker.Run(pa, checker.DefaultConfig())
	require.NoError(t, err)

	cfg := checker.DefaultConfig()
	cfg.BufferSize = 3

	res, err := checker.Run(pa, cfg)

	require.NoError(t, err)
	assert.Equal(t, checker.OutcomeMatch, res.Outcome)
}

func TestMatch(t *testing.T) {
	t.Parallel()

	digest := []byte{1, 2, 3}

	assert.True(t, checker.Match([]byte{1, 2, 3}, digest))
	assert.True(t, checker.Match([]byte{1, 2, 3, 0, 0}, digest))
	assert.False(t, checker.Match([]byte{1, 2, 4}, digest))
	assert.False(t, checker.Match([]byte{1, 2}, digest))
	assert.False(t, checker.Match(make([]byte, 3), digest))
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	mismatch := checker.Result{Outcome: checker.OutcomeMismatch}

	tests := []struct {
		name string
		res  checker.Result
		err  error
		want int
	}{
		{"match", checker.Result{Outcome: checker.OutcomeMatch}, nil, 0},
		{"mismatch", mismatch, nil, 1},
		{"short write", mismatch, checkfile.ErrShortWrite, 1},
		{"cannot write", mismatch, checkfile.ErrWrite, 2},
		{"usage", checker.Result{}, checker.ErrUsage, 2},
		{"target", checker.Result{}, checker.ErrTargetOpen, 2},
		{"no outcome", checker.Result{}, nil, 2},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, checker.ExitCode(tt.res, tt.err))
		})
	}
}

func TestOutcome_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "match", checker.OutcomeMatch.String())
	assert.Equal(t, "mismatch", checker.OutcomeMismatch.String())
	assert.Equal(t, "error", checker.OutcomeError.String())
}
