package codec

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Algorithm names a stream compression format.
type Algorithm string

const (
	// None passes bytes through unchanged.
	None Algorithm = "none"

	// Bzip2 is the default format.
	Bzip2 Algorithm = "bzip2"

	// Gzip is RFC 1952 gzip.
	Gzip Algorithm = "gzip"

	// Zstd is Zstandard.
	Zstd Algorithm = "zstd"

	// LZ4 is the LZ4 frame format.
	LZ4 Algorithm = "lz4"
)

// Algorithms lists every supported algorithm.
var Algorithms = []Algorithm{None, Bzip2, Gzip, Zstd, LZ4}

// ParseAlgorithm parses an algorithm name. The empty string selects Bzip2.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "bzip2", "bz2":
		return Bzip2, nil
	case "none", "raw":
		return None, nil
	case "gzip", "gz":
		return Gzip, nil
	case "zstd", "zst":
		return Zstd, nil
	case "lz4":
		return LZ4, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
	}
}

// Extension returns the conventional file extension including the dot, or
// "" for None.
func (a Algorithm) Extension() string {
	switch a {
	case Bzip2:
		return ".bz2"
	case Gzip:
		return ".gz"
	case Zstd:
		return ".zst"
	case LZ4:
		return ".lz4"
	default:
		return ""
	}
}

// String implements fmt.Stringer.
func (a Algorithm) String() string {
	return string(a)
}

// DetectAlgorithm guesses the algorithm from a file name's extension.
// Unknown extensions yield None.
func DetectAlgorithm(name string) Algorithm {
	ext := strings.ToLower(filepath.Ext(name))
	for _, a := range Algorithms {
		if a != None && a.Extension() == ext {
			return a
		}
	}
	if ext == ".bzip2" || ext == ".tbz2" || ext == ".tbz" {
		return Bzip2
	}
	return None
}

// TrimExtension removes a's extension from name if present.
func TrimExtension(name string, a Algorithm) string {
	ext := a.Extension()
	if ext != "" && strings.HasSuffix(strings.ToLower(name), ext) {
		return name[:len(name)-len(ext)]
	}
	return name
}
