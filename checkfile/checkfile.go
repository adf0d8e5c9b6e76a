package checkfile

import (
	"errors"
	"fmt"
	"io"
	"os"
)

const (
	// Suffix is appended to the target path to name
	// its sidecar.
	Suffix = ".hashCheck"

	// Size is the number of digest bytes stored in a
	// sidecar.
	Size = 64
)

var (
	// ErrRead is returned when a sidecar exists but
	// cannot be read.
	ErrRead = errors.New("reading check file")

	// ErrWrite is returned when a sidecar cannot be
	// opened for writing.
	ErrWrite = errors.New("opening check file for writing")

	// ErrShortWrite is returned when fewer than Size
	// bytes reach the sidecar.
	ErrShortWrite = errors.New("short write to check file")
)

// Path returns the sidecar path for target.
func Path(target string) string {
	return target + Suffix
}

// Load returns the stored value of the sidecar at path
// as a buffer of exactly size bytes. A missing sidecar
// or one holding fewer than size bytes yields an
// all-zero buffer and no error. Only an existing but
// unreadable sidecar is an error.
func Load(path string, size int) (val []byte, retErr error) {
	const errCtx = "loading check value"

	fi, err := os.Open(path) //nolint:gosec // path is caller-provided by design
	if errors.Is(err, os.ErrNotExist) {
		return make([]byte, size), nil
	}

	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", errCtx, ErrRead, err)
	}

	defer func() {
		if closeErr := fi.Close(); closeErr != nil && retErr == nil {
			retErr = fmt.Errorf("%s: %w: %w", errCtx, ErrRead, closeErr)
		}
	}()

	val = make([]byte, size)

	_, err = io.ReadFull(fi, val)

	switch {
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return discardTruncated(val), nil
	case err != nil:
		return nil, fmt.Errorf("%s: %w: %w", errCtx, ErrRead, err)
	}

	return val, nil
}

// discardTruncated zeroes a partially filled value. A
// truncated sidecar is treated exactly like a missing
// one so the next comparison always fails.
func discardTruncated(val []byte) []byte {
	clear(val)

	return val
}

// Store overwrites the sidecar at path with the first
// Size bytes of digest.
func Store(path string, digest []byte) (retErr error) {
	const errCtx = "storing check value"

	fi, err := os.OpenFile( //nolint:gosec // path is caller-provided by design
		path,
		os.O_WRONLY|os.O_CREATE|os.O_TRUNC,
		0o644,
	)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", errCtx, ErrWrite, err)
	}

	defer func() {
		if closeErr := fi.Close(); closeErr != nil && retErr == nil {
			retErr = fmt.Errorf(
				"%s: %w: %w", errCtx, ErrShortWrite, closeErr,
			)
		}
	}()

	out := digest
	if len(out) > Size {
		out = out[:Size]
	}

	n, err := fi.Write(out)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", errCtx, ErrShortWrite, err)
	}

	if n < Size {
		return fmt.Errorf(
			"%s: %w: wrote %d of %d bytes",
			errCtx, ErrShortWrite, n, Size,
		)
	}

	return nil
}
