package devices

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ralt/mhwd/internal/models"
)

func writeAttrs(t *testing.T, dir string, attrs map[string]string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create %s: %v", dir, err)
	}
	for name, value := range attrs {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(value+"\n"), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
}

func fakeSysfs(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	gpuDir := filepath.Join(root, "bus/pci/devices/0000:01:00.0")
	writeAttrs(t, gpuDir, map[string]string{
		"vendor": "0x10de",
		"device": "0x1C82",
		"class":  "0x030000",
	})
	driverDir := filepath.Join(root, "bus/pci/drivers/nvidia")
	if err := os.MkdirAll(driverDir, 0755); err != nil {
		t.Fatalf("Failed to create driver dir: %v", err)
	}
	if err := os.Symlink(driverDir, filepath.Join(gpuDir, "driver")); err != nil {
		t.Fatalf("Failed to link driver: %v", err)
	}

	writeAttrs(t, filepath.Join(root, "bus/pci/devices/0000:00:1f.0"), map[string]string{
		"vendor": "0x0000",
		"device": "0x0000",
		"class":  "0x060100",
	})
	writeAttrs(t, filepath.Join(root, "bus/pci/devices/0000:00:02.0"), map[string]string{
		"vendor": "0x8086",
	})

	writeAttrs(t, filepath.Join(root, "bus/usb/devices/1-2"), map[string]string{
		"idVendor":        "046d",
		"idProduct":       "c52b",
		"bDeviceClass":    "e0",
		"bDeviceSubClass": "01",
		"manufacturer":    "Logitech",
		"product":         "Unifying Receiver",
	})
	writeAttrs(t, filepath.Join(root, "bus/usb/devices/1-2:1.0"), map[string]string{
		"bInterfaceClass": "03",
	})

	return root
}

func TestSysfsSourcePCI(t *testing.T) {
	src := NewSysfsSource(fakeSysfs(t))

	devs, err := src.Devices(context.Background(), models.BusPCI)
	if err != nil {
		t.Fatalf("Devices failed: %v", err)
	}
	if len(devs) != 1 {
		t.Fatalf("Expected 1 PCI device (zero IDs and incomplete entries skipped), got %d", len(devs))
	}

	d := devs[0]
	if d.Info.VendorID != "10de" || d.Info.DeviceID != "1c82" || d.Info.ClassID != "0300" {
		t.Errorf("Unexpected IDs: %+v", d.Info)
	}
	if d.Info.Driver != "nvidia" {
		t.Errorf("Expected driver nvidia, got %q", d.Info.Driver)
	}
	if d.Info.SysfsBusID != "0000:01:00.0" {
		t.Errorf("Unexpected bus id %q", d.Info.SysfsBusID)
	}
	if d.Category() != models.CategoryGraphics {
		t.Errorf("Expected Graphics category, got %s", d.Category())
	}
}

func TestSysfsSourceUSB(t *testing.T) {
	src := NewSysfsSource(fakeSysfs(t))

	devs, err := src.Devices(context.Background(), models.BusUSB)
	if err != nil {
		t.Fatalf("Devices failed: %v", err)
	}
	if len(devs) != 1 {
		t.Fatalf("Expected 1 USB device (interfaces skipped), got %d", len(devs))
	}

	d := devs[0]
	if d.Info.ClassID != "e001" || d.Info.VendorID != "046d" || d.Info.DeviceID != "c52b" {
		t.Errorf("Unexpected IDs: %+v", d.Info)
	}
	if d.Info.VendorName != "Logitech" || d.Info.DeviceName != "Unifying Receiver" {
		t.Errorf("Unexpected names: %+v", d.Info)
	}
	if d.Bus != models.BusUSB {
		t.Errorf("Expected USB bus")
	}
}

func TestSysfsSourceMissingBus(t *testing.T) {
	src := NewSysfsSource(t.TempDir())

	devs, err := src.Devices(context.Background(), models.BusPCI)
	if err != nil {
		t.Fatalf("Missing bus directory should not fail: %v", err)
	}
	if len(devs) != 0 {
		t.Errorf("Expected no devices, got %d", len(devs))
	}
}

func TestSnapshotSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	static := NewStaticSource(
		models.NewDevice(models.DeviceInfo{ClassID: "0300", VendorID: "10DE", DeviceID: "1c82"}, models.BusPCI),
		models.NewDevice(models.DeviceInfo{ClassID: "0e00", VendorID: "046d", DeviceID: "0825"}, models.BusUSB),
	)

	snap, err := TakeSnapshot(ctx, static)
	if err != nil {
		t.Fatalf("TakeSnapshot failed: %v", err)
	}

	for _, name := range []string{"devices.json", "devices.json.zst"} {
		path := filepath.Join(t.TempDir(), name)
		if err := snap.Save(path); err != nil {
			t.Fatalf("Save(%s) failed: %v", name, err)
		}

		src := NewSnapshotSource(path)
		all, err := All(ctx, src)
		if err != nil {
			t.Fatalf("All failed: %v", err)
		}
		if len(all) != 2 {
			t.Fatalf("Expected 2 devices from %s, got %d", name, len(all))
		}
		if all[0].Bus != models.BusPCI || all[0].Info.VendorID != "10de" {
			t.Errorf("Unexpected first device %s", all[0])
		}
		if all[1].Bus != models.BusUSB || all[1].Category() != models.CategoryGraphics {
			t.Errorf("Unexpected second device %s", all[1])
		}
	}
}

func TestSnapshotErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadSnapshot(filepath.Join(dir, "missing.json")); err == nil {
		t.Errorf("Expected error for missing snapshot")
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
	_, err := LoadSnapshot(bad)
	if typ, ok := models.TypeOf(err); !ok || typ != models.ErrParse {
		t.Errorf("Expected ErrParse for invalid JSON, got %v", err)
	}
}
