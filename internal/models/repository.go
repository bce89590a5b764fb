package models

import "path/filepath"

// Default catalog locations
const (
	DefaultPCIConfigDir   = "/var/lib/mhwd/db/pci"
	DefaultUSBConfigDir   = "/var/lib/mhwd/db/usb"
	DefaultPCIDatabaseDir = "/var/lib/mhwd/local/pci"
	DefaultUSBDatabaseDir = "/var/lib/mhwd/local/usb"
	DefaultConfigFilename = "MHWDCONFIG"
)

// RepositoryPaths contains the catalog roots for each bus
type RepositoryPaths struct {
	// Available (system) catalog
	PCIConfigDir string `yaml:"pci_config_dir"`
	USBConfigDir string `yaml:"usb_config_dir"`

	// Installed (local) record
	PCIDatabaseDir string `yaml:"pci_database_dir"`
	USBDatabaseDir string `yaml:"usb_database_dir"`

	// ConfigFilename is the descriptor filename searched for under each root
	ConfigFilename string `yaml:"config_filename"`
}

// DefaultRepositoryPaths returns the standard mhwd locations
func DefaultRepositoryPaths() RepositoryPaths {
	return RepositoryPaths{
		PCIConfigDir:   DefaultPCIConfigDir,
		USBConfigDir:   DefaultUSBConfigDir,
		PCIDatabaseDir: DefaultPCIDatabaseDir,
		USBDatabaseDir: DefaultUSBDatabaseDir,
		ConfigFilename: DefaultConfigFilename,
	}
}

// RepositoryPathsUnder returns the standard layout rooted at dir
// (dir/db/{pci,usb} and dir/local/{pci,usb}).
func RepositoryPathsUnder(dir string) RepositoryPaths {
	return RepositoryPaths{
		PCIConfigDir:   filepath.Join(dir, "db", "pci"),
		USBConfigDir:   filepath.Join(dir, "db", "usb"),
		PCIDatabaseDir: filepath.Join(dir, "local", "pci"),
		USBDatabaseDir: filepath.Join(dir, "local", "usb"),
		ConfigFilename: DefaultConfigFilename,
	}
}

// AvailableRoot returns the system catalog root for a bus
func (p RepositoryPaths) AvailableRoot(bus BusType) string {
	if bus == BusUSB {
		return p.USBConfigDir
	}
	return p.PCIConfigDir
}

// InstalledRoot returns the installed record root for a bus
func (p RepositoryPaths) InstalledRoot(bus BusType) string {
	if bus == BusUSB {
		return p.USBDatabaseDir
	}
	return p.PCIDatabaseDir
}

// Filename returns the descriptor filename, falling back to the default
func (p RepositoryPaths) Filename() string {
	if p.ConfigFilename == "" {
		return DefaultConfigFilename
	}
	return p.ConfigFilename
}
