//go:build !windows

package main

import (
	"os"

	"github.com/google/renameio/v2"
)

// writeFileAtomic writes through a temp file and a rename, so readers never
// see a truncated output.
func writeFileAtomic(filename string, data []byte, perm os.FileMode) error {
	return renameio.WriteFile(filename, data, perm)
}
