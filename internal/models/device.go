package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Wildcard matches any ID in a pattern allow-list
const Wildcard = "*"

// BusType represents the hardware bus a device sits on
type BusType int

const (
	BusPCI BusType = iota
	BusUSB
)

// String returns the string representation of BusType
func (b BusType) String() string {
	switch b {
	case BusPCI:
		return "pci"
	case BusUSB:
		return "usb"
	default:
		return "unknown"
	}
}

// ParseBusType converts "pci" or "usb" (any case) into a BusType
func ParseBusType(s string) (BusType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pci":
		return BusPCI, nil
	case "usb":
		return BusUSB, nil
	}
	return BusPCI, fmt.Errorf("unknown bus type %q", s)
}

// Buses lists every supported bus type
var Buses = []BusType{BusPCI, BusUSB}

// Category is the coarse device kind derived from the class ID
type Category int

const (
	CategoryGraphics Category = iota
	CategoryNetwork
	CategoryAudio
	CategoryStorage
	CategoryInput
	CategoryUnknown
)

// String returns the string representation of Category
func (c Category) String() string {
	switch c {
	case CategoryGraphics:
		return "Graphics"
	case CategoryNetwork:
		return "Network"
	case CategoryAudio:
		return "Audio"
	case CategoryStorage:
		return "Storage"
	case CategoryInput:
		return "Input"
	default:
		return "Unknown"
	}
}

// Categories lists every category in display order
var Categories = []Category{
	CategoryGraphics,
	CategoryNetwork,
	CategoryAudio,
	CategoryStorage,
	CategoryInput,
	CategoryUnknown,
}

// PCI and USB assign different meanings to the same base-class byte.
var (
	pciCategories = map[uint8]Category{
		0x01: CategoryStorage,
		0x02: CategoryNetwork,
		0x03: CategoryGraphics,
		0x04: CategoryAudio,
		0x09: CategoryInput,
		0x0d: CategoryNetwork,
	}

	usbCategories = map[uint8]Category{
		0x01: CategoryAudio,
		0x02: CategoryNetwork,
		0x03: CategoryInput,
		0x08: CategoryStorage,
		0x0e: CategoryGraphics,
		0xe0: CategoryNetwork,
	}
)

// DeviceInfo is a snapshot of one device as reported by the enumerator.
// IDs are lower-case 4 digit hexadecimal strings.
type DeviceInfo struct {
	ClassID  string `json:"class_id"`
	VendorID string `json:"vendor_id"`
	DeviceID string `json:"device_id"`

	ClassName  string `json:"class_name,omitempty"`
	VendorName string `json:"vendor_name,omitempty"`
	DeviceName string `json:"device_name,omitempty"`

	SysfsBusID string `json:"sysfs_bus_id,omitempty"`
	SysfsPath  string `json:"sysfs_path,omitempty"`
	Driver     string `json:"driver,omitempty"`
}

// Device is a detected device together with its bus
type Device struct {
	Info DeviceInfo
	Bus  BusType
}

// NewDevice creates a device, normalizing the IDs to lower case
func NewDevice(info DeviceInfo, bus BusType) Device {
	info.ClassID = strings.ToLower(info.ClassID)
	info.VendorID = strings.ToLower(info.VendorID)
	info.DeviceID = strings.ToLower(info.DeviceID)
	return Device{Info: info, Bus: bus}
}

// Category derives the device category from the base-class byte of its class ID
func (d Device) Category() Category {
	if len(d.Info.ClassID) < 2 {
		return CategoryUnknown
	}
	base, err := strconv.ParseUint(d.Info.ClassID[:2], 16, 8)
	if err != nil {
		return CategoryUnknown
	}

	table := pciCategories
	if d.Bus == BusUSB {
		table = usbCategories
	}
	if c, ok := table[uint8(base)]; ok {
		return c
	}
	return CategoryUnknown
}

// String returns a short identification such as "pci 10de:1c82 (0300)"
func (d Device) String() string {
	return fmt.Sprintf("%s %s:%s (%s)", d.Bus, d.Info.VendorID, d.Info.DeviceID, d.Info.ClassID)
}

// HardwarePattern is one AND-group of allowed and blacklisted IDs
type HardwarePattern struct {
	ClassIDs  []string
	VendorIDs []string
	DeviceIDs []string

	BlacklistedClassIDs  []string
	BlacklistedVendorIDs []string
	BlacklistedDeviceIDs []string
}

// Finalize defaults every empty allow-list to the wildcard
func (p *HardwarePattern) Finalize() {
	if len(p.ClassIDs) == 0 {
		p.ClassIDs = []string{Wildcard}
	}
	if len(p.VendorIDs) == 0 {
		p.VendorIDs = []string{Wildcard}
	}
	if len(p.DeviceIDs) == 0 {
		p.DeviceIDs = []string{Wildcard}
	}
}

// Matches reports whether the device passes the class, vendor and device checks of the pattern
func (d Device) Matches(p HardwarePattern) bool {
	return dimensionMatches(d.Info.ClassID, p.ClassIDs, p.BlacklistedClassIDs) &&
		dimensionMatches(d.Info.VendorID, p.VendorIDs, p.BlacklistedVendorIDs) &&
		dimensionMatches(d.Info.DeviceID, p.DeviceIDs, p.BlacklistedDeviceIDs)
}

func dimensionMatches(id string, allow, blacklist []string) bool {
	allowed := false
	for _, a := range allow {
		if a == Wildcard || strings.EqualFold(a, id) {
			allowed = true
			break
		}
	}
	if !allowed {
		return false
	}

	// Blacklists are literal
	for _, b := range blacklist {
		if strings.EqualFold(b, id) {
			return false
		}
	}
	return true
}
