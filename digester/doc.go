// Package digester computes fixed-length cryptographic file digests. A digest
// is produced by streaming the input through a hash resolved by name from a
// small registry (sha512 by default), in caller-sized chunks, so files of any
// size are hashed without being loaded into memory.
package digester
