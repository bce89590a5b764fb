package scanner

import "context"

// ScannedConfig represents a descriptor file found during scanning
type ScannedConfig struct {
	Path string
	Root string
	Size int64
}

// Scanner interface for locating driver descriptors in a catalog root
type Scanner interface {
	// Scan recursively scans a directory for descriptor files
	Scan(ctx context.Context, dir string) ([]ScannedConfig, error)

	// IsConfigFile reports whether a path names a descriptor file
	IsConfigFile(path string) bool
}
