package digester

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
)

// DefaultBufferSize is the chunk size used when the
// caller passes a non-positive buffer size.
const DefaultBufferSize = 4096

// MaxBufferSize is the largest accepted chunk size.
// Larger values are clamped.
const MaxBufferSize = 1 << 30

// ErrRead is returned when the input stream fails
// mid-read. No partial digest is produced.
var ErrRead = errors.New("reading input")

// Digest is the output of one digest computation.
type Digest struct {
	algorithm string
	sum       []byte
}

// NewDigest returns a Digest holding a copy of sum.
func NewDigest(algorithm string, sum []byte) Digest {
	cp := make([]byte, len(sum))
	copy(cp, sum)

	return Digest{algorithm: algorithm, sum: cp}
}

// Algorithm returns the name of the algorithm that
// produced the digest.
func (dg Digest) Algorithm() string {
	return dg.algorithm
}

// Bytes returns the raw digest.
func (dg Digest) Bytes() []byte {
	return dg.sum
}

// Len returns the digest length reported by the
// algorithm.
func (dg Digest) Len() int {
	return len(dg.sum)
}

// Hex returns the lowercase hex encoding of the digest.
func (dg Digest) Hex() string {
	return hex.EncodeToString(dg.sum)
}

// Compute hashes everything readable from r with the
// named algorithm, feeding it bufSize bytes at a time.
func Compute(
	r io.Reader,
	name string,
	bufSize int,
) (Digest, error) {
	const errCtx = "computing digest"

	alg, err := Lookup(name)
	if err != nil {
		return Digest{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	ha, err := alg.New()
	if err != nil {
		return Digest{}, fmt.Errorf(
			"%s: %w: %w", errCtx, ErrAlgorithmUnavailable, err,
		)
	}

	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}

	if bufSize > MaxBufferSize {
		bufSize = MaxBufferSize
	}

	buf := make([]byte, bufSize)

	for {
		n, rerr := r.Read(buf)
		if n > 0 {
			// hash.Hash writes never fail.
			_, _ = ha.Write(buf[:n]) //nolint:errcheck // see above
		}

		if errors.Is(rerr, io.EOF) {
			break
		}

		if rerr != nil {
			return Digest{}, fmt.Errorf(
				"%s: %w: %w", errCtx, ErrRead, rerr,
			)
		}
	}

	return Digest{algorithm: alg.Name, sum: ha.Sum(nil)}, nil
}

// CalculateDigest computes the digest of the file at
// path.
func CalculateDigest(
	path string,
	name string,
	bufSize int,
) (result Digest, retErr error) {
	const errCtx = "calculating digest"

	fi, err := os.Open(path) //nolint:gosec // path is caller-provided by design
	if err != nil {
		return Digest{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	defer func() {
		if closeErr := fi.Close(); closeErr != nil && retErr == nil {
			retErr = fmt.Errorf("%s: %w", errCtx, closeErr)
		}
	}()

	dg, err := Compute(fi, name, bufSize)
	if err != nil {
		return Digest{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	return dg, nil
}
