//go:build !unix

package mmfile

import "os"

// Map reads the whole file where read-only mappings are not wired up.
func Map(path string) ([]byte, func() error, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return data, func() error { return nil }, nil
}
