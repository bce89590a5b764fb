package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ralt/mhwd/internal/models"
	"github.com/sirupsen/logrus"
)

// FileSystemScanner implements Scanner interface for filesystem scanning
type FileSystemScanner struct {
	filename string
	report   models.DiagnosticFunc
}

// NewFileSystemScanner creates a scanner looking for files named filename.
// An empty filename selects MHWDCONFIG. Descriptors that cannot be
// followed are reported to report.
func NewFileSystemScanner(filename string, report models.DiagnosticFunc) *FileSystemScanner {
	if filename == "" {
		filename = models.DefaultConfigFilename
	}
	return &FileSystemScanner{filename: filename, report: report}
}

// Scan recursively scans a directory for descriptor files.
// A missing directory is reported as an error wrapping fs.ErrNotExist.
func (s *FileSystemScanner) Scan(ctx context.Context, dir string) ([]ScannedConfig, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory: %w", dir, fs.ErrNotExist)
	}

	var configs []ScannedConfig

	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtrees are skipped, the root itself was checked above
			logrus.Warnf("Failed to read %s: %v", path, err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		// Check context cancellation
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if d.IsDir() || !s.IsConfigFile(path) {
			return nil
		}

		fi, err := descriptorInfo(path, d)
		if err != nil {
			s.report.Report(models.Diagnostic{Kind: models.DiagSkippedFile, Path: path, Err: err})
			return nil
		}
		if fi == nil {
			return nil
		}

		logrus.Debugf("Found descriptor: %s", path)

		configs = append(configs, ScannedConfig{
			Path: path,
			Root: dir,
			Size: fi.Size(),
		})

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to scan directory: %w", err)
	}

	logrus.Debugf("Found %d descriptors in %s", len(configs), dir)
	return configs, nil
}

// IsConfigFile reports whether the base name of path is the descriptor filename
func (s *FileSystemScanner) IsConfigFile(path string) bool {
	return filepath.Base(path) == s.filename
}

// descriptorInfo returns the file info of a descriptor, following symlinks.
// It returns nil for anything that is not a regular file.
func descriptorInfo(path string, d fs.DirEntry) (fs.FileInfo, error) {
	if d.Type()&fs.ModeSymlink != 0 {
		fi, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to follow symlink: %w", err)
		}
		if !fi.Mode().IsRegular() {
			return nil, nil
		}
		return fi, nil
	}

	if !d.Type().IsRegular() {
		return nil, nil
	}
	return d.Info()
}
