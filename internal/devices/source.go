// Package devices supplies the detected hardware the catalog matches against.
package devices

import (
	"context"

	"github.com/ralt/mhwd/internal/models"
)

// Source enumerates the devices present on one bus
type Source interface {
	Devices(ctx context.Context, bus models.BusType) ([]models.Device, error)
}

// StaticSource serves a fixed device list
type StaticSource struct {
	PCI []models.Device
	USB []models.Device
}

// NewStaticSource splits devices by bus into a StaticSource
func NewStaticSource(devices ...models.Device) *StaticSource {
	s := &StaticSource{}
	for _, d := range devices {
		if d.Bus == models.BusUSB {
			s.USB = append(s.USB, d)
		} else {
			s.PCI = append(s.PCI, d)
		}
	}
	return s
}

// Devices returns the devices of the requested bus
func (s *StaticSource) Devices(ctx context.Context, bus models.BusType) ([]models.Device, error) {
	if bus == models.BusUSB {
		return s.USB, nil
	}
	return s.PCI, nil
}

// All returns PCI devices followed by USB devices
func All(ctx context.Context, src Source) ([]models.Device, error) {
	var all []models.Device
	for _, bus := range models.Buses {
		devs, err := src.Devices(ctx, bus)
		if err != nil {
			return nil, err
		}
		all = append(all, devs...)
	}
	return all, nil
}
