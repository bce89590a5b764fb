package devices

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ralt/mhwd/internal/models"
	"github.com/sirupsen/logrus"
)

// DefaultSysfsRoot is where the kernel exposes the device tree
const DefaultSysfsRoot = "/sys"

// SysfsSource reads PCI and USB devices from sysfs
type SysfsSource struct {
	Root string
}

// NewSysfsSource creates a source rooted at root, or /sys when root is empty
func NewSysfsSource(root string) *SysfsSource {
	if root == "" {
		root = DefaultSysfsRoot
	}
	return &SysfsSource{Root: root}
}

// attribute names per bus
type busLayout struct {
	dir      string
	vendor   string
	device   string
	classID  func(dir string) (uint64, error)
	validate func(name string) bool
}

var layouts = map[models.BusType]busLayout{
	models.BusPCI: {
		dir:    "bus/pci/devices",
		vendor: "vendor",
		device: "device",
		classID: func(dir string) (uint64, error) {
			class, err := readHex(dir, "class")
			if err != nil {
				return 0, err
			}
			// class is 0xCCSSPP, drop the programming interface
			return (class >> 8) & 0xffff, nil
		},
		validate: func(string) bool { return true },
	},
	models.BusUSB: {
		dir:    "bus/usb/devices",
		vendor: "idVendor",
		device: "idProduct",
		classID: func(dir string) (uint64, error) {
			class, err := readHex(dir, "bDeviceClass")
			if err != nil {
				return 0, err
			}
			sub, err := readHex(dir, "bDeviceSubClass")
			if err != nil {
				return 0, err
			}
			return (class << 8) | sub, nil
		},
		// Interfaces (1-1:1.0) carry no device descriptor
		validate: func(name string) bool { return !strings.Contains(name, ":") },
	},
}

// Devices enumerates the devices of one bus. A missing bus directory yields no devices.
func (s *SysfsSource) Devices(ctx context.Context, bus models.BusType) ([]models.Device, error) {
	layout, ok := layouts[bus]
	if !ok {
		return nil, fmt.Errorf("unsupported bus: %s", bus)
	}

	busDir := filepath.Join(s.Root, layout.dir)
	entries, err := os.ReadDir(busDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logrus.Debugf("No %s devices under %s", bus, busDir)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", busDir, err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var devices []models.Device
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := entry.Name()
		if !layout.validate(name) {
			continue
		}

		devPath := filepath.Join(busDir, name)
		info, err := readDevice(devPath, name, layout)
		if err != nil {
			logrus.Debugf("Skipping %s: %v", devPath, err)
			continue
		}
		if info.VendorID == "0000" && info.DeviceID == "0000" {
			continue
		}

		devices = append(devices, models.NewDevice(info, bus))
	}

	logrus.Debugf("Found %d %s devices", len(devices), bus)
	return devices, nil
}

func readDevice(dir, name string, layout busLayout) (models.DeviceInfo, error) {
	vendor, err := readHex(dir, layout.vendor)
	if err != nil {
		return models.DeviceInfo{}, err
	}
	device, err := readHex(dir, layout.device)
	if err != nil {
		return models.DeviceInfo{}, err
	}
	class, err := layout.classID(dir)
	if err != nil {
		return models.DeviceInfo{}, err
	}

	info := models.DeviceInfo{
		ClassID:    toHex(class),
		VendorID:   toHex(vendor),
		DeviceID:   toHex(device),
		SysfsBusID: name,
		SysfsPath:  dir,
	}

	if target, err := os.Readlink(filepath.Join(dir, "driver")); err == nil {
		info.Driver = filepath.Base(target)
	}

	// USB devices name themselves
	info.VendorName = readString(dir, "manufacturer")
	info.DeviceName = readString(dir, "product")

	return info, nil
}

func readHex(dir, attr string) (uint64, error) {
	raw := readString(dir, attr)
	if raw == "" {
		return 0, fmt.Errorf("missing attribute %s", attr)
	}
	v, err := strconv.ParseUint(strings.TrimPrefix(raw, "0x"), 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", attr, raw, err)
	}
	return v, nil
}

func readString(dir, attr string) string {
	data, err := os.ReadFile(filepath.Join(dir, attr))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func toHex(v uint64) string {
	return fmt.Sprintf("%04x", v)
}
