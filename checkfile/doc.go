// Package checkfile reads and writes the sidecar file that holds the last
// accepted digest of a target file. The sidecar lives next to the target at
// "<target>.hashCheck" and contains exactly Size raw bytes: no header, no
// algorithm identifier.
package checkfile
