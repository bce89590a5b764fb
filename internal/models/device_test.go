package models

import "testing"

func gpu() Device {
	return NewDevice(DeviceInfo{ClassID: "0300", VendorID: "10DE", DeviceID: "1C82"}, BusPCI)
}

func wildcardPattern() HardwarePattern {
	p := HardwarePattern{}
	p.Finalize()
	return p
}

func TestWildcardPatternMatchesAnyDevice(t *testing.T) {
	devices := []Device{
		gpu(),
		NewDevice(DeviceInfo{ClassID: "0200", VendorID: "8086", DeviceID: "15b8"}, BusPCI),
		NewDevice(DeviceInfo{ClassID: "0e01", VendorID: "046d", DeviceID: "c52b"}, BusUSB),
		NewDevice(DeviceInfo{}, BusUSB),
	}

	for _, d := range devices {
		if !d.Matches(wildcardPattern()) {
			t.Errorf("Wildcard pattern should match %s", d)
		}
	}
}

func TestBlacklistOverridesWildcard(t *testing.T) {
	d := gpu()

	p := wildcardPattern()
	p.BlacklistedVendorIDs = []string{"10de"}
	if d.Matches(p) {
		t.Errorf("Blacklisted vendor should not match")
	}

	p = wildcardPattern()
	p.BlacklistedClassIDs = []string{"0300"}
	if d.Matches(p) {
		t.Errorf("Blacklisted class should not match")
	}

	p = wildcardPattern()
	p.BlacklistedDeviceIDs = []string{"0000", "1c82"}
	if d.Matches(p) {
		t.Errorf("Blacklisted device should not match")
	}
}

func TestBlacklistIsLiteral(t *testing.T) {
	p := wildcardPattern()
	p.BlacklistedVendorIDs = []string{"*"}

	if !gpu().Matches(p) {
		t.Errorf("A '*' entry in a blacklist must not exclude anything")
	}
}

func TestMatchesIgnoresIDCase(t *testing.T) {
	// Built without NewDevice, so the IDs keep their upper case
	d := Device{Info: DeviceInfo{ClassID: "0300", VendorID: "10DE", DeviceID: "1C82"}, Bus: BusPCI}

	p := HardwarePattern{VendorIDs: []string{"10de"}, DeviceIDs: []string{"1c82"}}
	p.Finalize()
	if !d.Matches(p) {
		t.Errorf("Lower-case pattern should match upper-case IDs")
	}

	p.BlacklistedDeviceIDs = []string{"1c82"}
	if d.Matches(p) {
		t.Errorf("Lower-case blacklist should reject upper-case IDs")
	}
}

func TestMatchesRequiresAllDimensions(t *testing.T) {
	tests := []struct {
		name    string
		pattern HardwarePattern
		want    bool
	}{
		{
			name:    "exact ids",
			pattern: HardwarePattern{ClassIDs: []string{"0300"}, VendorIDs: []string{"10de"}, DeviceIDs: []string{"1c82"}},
			want:    true,
		},
		{
			name:    "one of several",
			pattern: HardwarePattern{ClassIDs: []string{"0302", "0300"}, VendorIDs: []string{"*"}, DeviceIDs: []string{"*"}},
			want:    true,
		},
		{
			name:    "wrong vendor",
			pattern: HardwarePattern{ClassIDs: []string{"0300"}, VendorIDs: []string{"1002"}, DeviceIDs: []string{"*"}},
			want:    false,
		},
		{
			name:    "wrong class",
			pattern: HardwarePattern{ClassIDs: []string{"0200"}, VendorIDs: []string{"10de"}, DeviceIDs: []string{"*"}},
			want:    false,
		},
		{
			name:    "wrong device",
			pattern: HardwarePattern{ClassIDs: []string{"*"}, VendorIDs: []string{"*"}, DeviceIDs: []string{"1f08"}},
			want:    false,
		},
		{
			name:    "empty allow-list matches nothing",
			pattern: HardwarePattern{VendorIDs: []string{"*"}, DeviceIDs: []string{"*"}},
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := gpu().Matches(tt.pattern); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCategoryTablesDifferByBus(t *testing.T) {
	tests := []struct {
		classID string
		bus     BusType
		want    Category
	}{
		{"0300", BusPCI, CategoryGraphics},
		{"0200", BusPCI, CategoryNetwork},
		{"0280", BusPCI, CategoryNetwork},
		{"0403", BusPCI, CategoryAudio},
		{"0106", BusPCI, CategoryStorage},
		{"0900", BusPCI, CategoryInput},
		{"0d80", BusPCI, CategoryNetwork},
		{"0600", BusPCI, CategoryUnknown},
		{"0101", BusUSB, CategoryAudio},
		{"0300", BusUSB, CategoryInput},
		{"0200", BusUSB, CategoryNetwork},
		{"0806", BusUSB, CategoryStorage},
		{"0e01", BusUSB, CategoryGraphics},
		{"e001", BusUSB, CategoryNetwork},
		{"0900", BusUSB, CategoryUnknown},
		{"", BusPCI, CategoryUnknown},
		{"zz00", BusPCI, CategoryUnknown},
	}

	for _, tt := range tests {
		d := NewDevice(DeviceInfo{ClassID: tt.classID}, tt.bus)
		if got := d.Category(); got != tt.want {
			t.Errorf("Category(%s, %s) = %s, want %s", tt.bus, tt.classID, got, tt.want)
		}
	}
}

func TestParseBusType(t *testing.T) {
	if b, err := ParseBusType("USB"); err != nil || b != BusUSB {
		t.Errorf("ParseBusType(USB) = %v, %v", b, err)
	}
	if b, err := ParseBusType("pci"); err != nil || b != BusPCI {
		t.Errorf("ParseBusType(pci) = %v, %v", b, err)
	}
	if _, err := ParseBusType("isa"); err == nil {
		t.Errorf("Expected error for unknown bus")
	}
}
