// Package parser reads MHWDCONFIG driver descriptors.
//
// The format is line oriented key=value text. A '#' starts a comment
// anywhere on a line, values may be wrapped in double quotes, and a value
// of the form ">file" is replaced by the contents of that file (relative
// to the descriptor's directory) with comments removed and lines joined
// by single spaces.
//
// ClassIDs, VendorIDs and DeviceIDs belong to the current pattern group.
// Setting one of them again while it is already set on the current group
// opens a new group, which is how a single file lists several hardware
// variants.
package parser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ralt/mhwd/internal/models"
	"github.com/sirupsen/logrus"
)

const maxLineSize = 1 << 20

// keyHandler applies one key's value to the config being built
type keyHandler func(cfg *models.Config, value string) error

var keyHandlers = map[string]keyHandler{
	"name": func(cfg *models.Config, v string) error {
		cfg.Name = strings.ToLower(v)
		return nil
	},
	"version": func(cfg *models.Config, v string) error {
		cfg.Version = v
		return nil
	},
	"info": func(cfg *models.Config, v string) error {
		cfg.Info = v
		return nil
	},
	"priority": func(cfg *models.Config, v string) error {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid priority %q", v)
		}
		cfg.Priority = p
		return nil
	},
	"freedriver": func(cfg *models.Config, v string) error {
		cfg.FreeDriver = strings.ToLower(v) == "true"
		return nil
	},
	"classids": func(cfg *models.Config, v string) error {
		p := currentGroup(cfg, func(p *models.HardwarePattern) bool { return len(p.ClassIDs) > 0 })
		p.ClassIDs = splitValues(v)
		return nil
	},
	"vendorids": func(cfg *models.Config, v string) error {
		p := currentGroup(cfg, func(p *models.HardwarePattern) bool { return len(p.VendorIDs) > 0 })
		p.VendorIDs = splitValues(v)
		return nil
	},
	"deviceids": func(cfg *models.Config, v string) error {
		p := currentGroup(cfg, func(p *models.HardwarePattern) bool { return len(p.DeviceIDs) > 0 })
		p.DeviceIDs = splitValues(v)
		return nil
	},
	"blacklistedclassids": func(cfg *models.Config, v string) error {
		lastGroup(cfg).BlacklistedClassIDs = splitValues(v)
		return nil
	},
	"blacklistedvendorids": func(cfg *models.Config, v string) error {
		lastGroup(cfg).BlacklistedVendorIDs = splitValues(v)
		return nil
	},
	"blacklisteddeviceids": func(cfg *models.Config, v string) error {
		lastGroup(cfg).BlacklistedDeviceIDs = splitValues(v)
		return nil
	},
	"mhwd_depends": func(cfg *models.Config, v string) error {
		cfg.Dependencies = splitValues(v)
		return nil
	},
	"mhwd_conflicts": func(cfg *models.Config, v string) error {
		cfg.Conflicts = splitValues(v)
		return nil
	},
}

func init() {
	keyHandlers["mhwddepends"] = keyHandlers["mhwd_depends"]
	keyHandlers["mhwdconflicts"] = keyHandlers["mhwd_conflicts"]
}

// ParseConfig parses a descriptor file for the given bus
func ParseConfig(path string, bus models.BusType) (*models.Config, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, parseError(path, errors.New("file does not exist"))
		}
		return nil, parseError(path, fmt.Errorf("cannot open file: %w", err))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, parseError(path, fmt.Errorf("cannot open file: %w", err))
	}
	defer f.Close()

	return Parse(f, path, bus)
}

// Parse reads a descriptor from r. path is used for error messages and to
// resolve external file references.
func Parse(r io.Reader, path string, bus models.BusType) (*models.Config, error) {
	cfg := &models.Config{
		FreeDriver: true,
		Patterns:   []models.HardwarePattern{{}},
		Bus:        bus,
		ConfigPath: path,
		BasePath:   filepath.Dir(path),
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxLineSize)

	lineNo := 0
	for scanner.Scan() {
		lineNo++

		line := stripComment(scanner.Text())
		if line == "" {
			continue
		}

		key, value, ok := splitKeyValue(line)
		if !ok {
			logrus.Debugf("%s:%d: ignoring line without '='", path, lineNo)
			continue
		}

		if strings.HasPrefix(value, ">") && len(value) > 1 {
			value = readExternalFile(value[1:], cfg.BasePath)
		}

		handler, known := keyHandlers[key]
		if !known {
			logrus.Debugf("%s:%d: ignoring unknown key %q", path, lineNo, key)
			continue
		}
		if err := handler(cfg, value); err != nil {
			return nil, parseError(path, fmt.Errorf("line %d: %w", lineNo, err))
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, parseError(path, fmt.Errorf("cannot read file: %w", err))
	}

	if cfg.Name == "" {
		return nil, parseError(path, errors.New("config name is required"))
	}

	for i := range cfg.Patterns {
		cfg.Patterns[i].Finalize()
	}

	return cfg, nil
}

// currentGroup returns the last pattern group, opening a new one first if
// isSet reports the field about to be written is already populated
func currentGroup(cfg *models.Config, isSet func(*models.HardwarePattern) bool) *models.HardwarePattern {
	if isSet(lastGroup(cfg)) {
		cfg.Patterns = append(cfg.Patterns, models.HardwarePattern{})
	}
	return lastGroup(cfg)
}

func lastGroup(cfg *models.Config) *models.HardwarePattern {
	return &cfg.Patterns[len(cfg.Patterns)-1]
}

func stripComment(line string) string {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}
	return strings.TrimSpace(line)
}

func splitKeyValue(line string) (string, string, bool) {
	key, value, ok := strings.Cut(line, "=")
	if !ok {
		return "", "", false
	}
	key = strings.ToLower(strings.TrimSpace(key))
	value = strings.TrimSpace(trimQuotes(strings.TrimSpace(value)))
	return key, value, true
}

func trimQuotes(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

// splitValues splits a space separated list into lower-cased entries
func splitValues(s string) []string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil
	}
	values := make([]string, len(fields))
	for i, f := range fields {
		values[i] = strings.ToLower(f)
	}
	return values
}

// readExternalFile returns the referenced file's non-comment content joined
// by single spaces. A missing file yields an empty value.
func readExternalFile(name, basePath string) string {
	if !filepath.IsAbs(name) {
		name = filepath.Join(basePath, name)
	}

	data, err := os.ReadFile(name)
	if err != nil {
		logrus.Warnf("Failed to read referenced file %s: %v", name, err)
		return ""
	}

	var parts []string
	for _, line := range strings.Split(string(data), "\n") {
		if line = stripComment(line); line != "" {
			parts = append(parts, line)
		}
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

func parseError(path string, err error) error {
	return &models.MhwdError{
		Type: models.ErrParse,
		Path: path,
		Err:  err,
	}
}
