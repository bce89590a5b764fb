// Package agent defines what the engine hands to the external transaction
// executor. The engine only builds these values; it never runs them.
package agent

// Operation is the kind of transaction requested
type Operation string

const (
	OpInstall Operation = "install"
	OpRemove  Operation = "remove"
	OpUpgrade Operation = "upgrade"
)

// Command is a validated transaction request
type Command struct {
	Operation Operation `json:"operation"`
	// Packages are installed or removed in this order
	Packages []string `json:"packages"`
	// Force removal even if in use
	Force bool `json:"force,omitempty"`
	// Refresh package databases before upgrade
	Refresh bool `json:"refresh,omitempty"`
}

// MakeInstall builds an install command
func MakeInstall(packages []string) Command {
	return Command{Operation: OpInstall, Packages: packages}
}

// MakeRemove builds a remove command
func MakeRemove(packages []string, force bool) Command {
	return Command{Operation: OpRemove, Packages: packages, Force: force}
}

// MakeUpgrade builds a full system upgrade command
func MakeUpgrade(refresh bool) Command {
	return Command{Operation: OpUpgrade, Packages: []string{}, Refresh: refresh}
}
