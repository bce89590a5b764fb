package devices

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ralt/mhwd/internal/models"
	"github.com/ralt/mhwd/internal/utils"
	"github.com/sirupsen/logrus"
)

// Snapshot is the on-disk form of an enumeration pass
type Snapshot struct {
	PCI []models.DeviceInfo `json:"pci"`
	USB []models.DeviceInfo `json:"usb"`
}

// SnapshotSource serves devices recorded in a snapshot file.
// Files ending in .gz, .zst or .xz are decompressed.
type SnapshotSource struct {
	Path string
}

// NewSnapshotSource creates a source reading path
func NewSnapshotSource(path string) *SnapshotSource {
	return &SnapshotSource{Path: path}
}

// Devices reads the snapshot and returns the devices of one bus
func (s *SnapshotSource) Devices(ctx context.Context, bus models.BusType) ([]models.Device, error) {
	snap, err := LoadSnapshot(s.Path)
	if err != nil {
		return nil, err
	}

	infos := snap.PCI
	if bus == models.BusUSB {
		infos = snap.USB
	}

	devices := make([]models.Device, 0, len(infos))
	for _, info := range infos {
		devices = append(devices, models.NewDevice(info, bus))
	}
	return devices, nil
}

// LoadSnapshot reads and decodes a snapshot file
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := utils.ReadCompressedFile(path)
	if err != nil {
		return nil, &models.MhwdError{
			Type: models.ErrFileOp,
			Path: path,
			Err:  fmt.Errorf("failed to read snapshot: %w", err),
		}
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, &models.MhwdError{
			Type: models.ErrParse,
			Path: path,
			Err:  fmt.Errorf("failed to decode snapshot: %w", err),
		}
	}
	return &snap, nil
}

// TakeSnapshot enumerates both buses of src
func TakeSnapshot(ctx context.Context, src Source) (*Snapshot, error) {
	snap := &Snapshot{}
	for _, bus := range models.Buses {
		devs, err := src.Devices(ctx, bus)
		if err != nil {
			return nil, fmt.Errorf("failed to enumerate %s devices: %w", bus, err)
		}
		for _, d := range devs {
			if bus == models.BusUSB {
				snap.USB = append(snap.USB, d.Info)
			} else {
				snap.PCI = append(snap.PCI, d.Info)
			}
		}
	}
	return snap, nil
}

// Save writes the snapshot as JSON, compressed according to the path extension
func (s *Snapshot) Save(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	if err := utils.WriteCompressedFile(path, data, 0644); err != nil {
		return &models.MhwdError{
			Type: models.ErrFileOp,
			Path: path,
			Err:  fmt.Errorf("failed to write snapshot: %w", err),
		}
	}

	logrus.Infof("Saved %d PCI and %d USB devices to %s (%s)", len(s.PCI), len(s.USB), path, utils.CodecForPath(path))
	return nil
}
