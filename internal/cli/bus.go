package cli

import (
	"github.com/ralt/mhwd/internal/models"
	"github.com/spf13/cobra"
)

// busFlags are the --pci/--usb selectors shared by most commands
type busFlags struct {
	pci bool
	usb bool
}

func (b *busFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&b.pci, "pci", false, "Use the PCI catalogs")
	cmd.Flags().BoolVar(&b.usb, "usb", false, "Use the USB catalogs")
}

// bus returns the single bus selected, PCI unless --usb was given
func (b *busFlags) bus() models.BusType {
	if b.usb && !b.pci {
		return models.BusUSB
	}
	return models.BusPCI
}

// buses returns every selected bus for listing commands, both when
// neither flag was given
func (b *busFlags) buses() []models.BusType {
	if b.pci == b.usb {
		return models.Buses
	}
	return []models.BusType{b.bus()}
}
