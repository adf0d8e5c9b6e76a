package digester

import (
	"crypto/sha512"
	"errors"
	"fmt"
	"hash"
	"io"
	"sort"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// DefaultAlgorithm is the algorithm used when none is
// named.
const DefaultAlgorithm = "sha512"

// ErrAlgorithmUnavailable is returned when a digest
// algorithm name cannot be resolved.
var ErrAlgorithmUnavailable = errors.New("digest algorithm unavailable")

// Algorithm is a named hash constructor.
type Algorithm struct {
	Name string
	New  func() (hash.Hash, error)
}

var registry = map[string]Algorithm{
	"sha512": {
		Name: "sha512",
		New: func() (hash.Hash, error) {
			return sha512.New(), nil
		},
	},
	"sha3-512": {
		Name: "sha3-512",
		New: func() (hash.Hash, error) {
			return sha3.New512(), nil
		},
	},
	"blake2b-512": {
		Name: "blake2b-512",
		New: func() (hash.Hash, error) {
			return blake2b.New512(nil)
		},
	},
	"blake3-512": {
		Name: "blake3-512",
		New: func() (hash.Hash, error) {
			return blake3x512{Hasher: blake3.New()}, nil
		},
	},
}

// Lookup resolves an algorithm by name. An empty name
// selects DefaultAlgorithm.
func Lookup(name string) (Algorithm, error) {
	if name == "" {
		name = DefaultAlgorithm
	}

	alg, ok := registry[name]
	if !ok {
		return Algorithm{}, fmt.Errorf(
			"%w: %q", ErrAlgorithmUnavailable, name,
		)
	}

	return alg, nil
}

// Names returns the registered algorithm names in
// lexical order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// blake3x512 reads 64 bytes from the BLAKE3 extendable
// output instead of the default 32.
type blake3x512 struct {
	*blake3.Hasher
}

func (bx blake3x512) Size() int {
	return 64
}

func (bx blake3x512) Sum(in []byte) []byte {
	out := make([]byte, bx.Size())

	// The XOF reader never fails for in-memory output.
	_, _ = io.ReadFull(bx.Digest(), out) //nolint:errcheck // see above

	return append(in, out...)
}
