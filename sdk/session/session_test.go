package session

import (
	"testing"

	"github.com/miditape/miditape/sdk/contracts"
)

func devices(names ...string) []contracts.DeviceInfo {
	out := make([]contracts.DeviceInfo, len(names))
	for i, n := range names {
		out[i] = contracts.DeviceInfo{Name: n}
	}
	return out
}

func TestPickDeviceByIndex(t *testing.T) {
	got, err := pickDevice(devices("A", "B", "C"), 1, "")
	if err != nil || got != 1 {
		t.Fatalf("pickDevice = %d, %v; want 1, nil", got, err)
	}
}

func TestPickDeviceByNameSubstring(t *testing.T) {
	got, err := pickDevice(devices("Launchpad Mini", "Arturia KeyLab 61"), 0, "keylab")
	if err != nil || got != 1 {
		t.Fatalf("pickDevice = %d, %v; want 1, nil", got, err)
	}
}

func TestPickDeviceNameOverridesIndex(t *testing.T) {
	got, err := pickDevice(devices("A", "B"), 1, "a")
	if err != nil || got != 0 {
		t.Fatalf("pickDevice = %d, %v; want 0, nil", got, err)
	}
}

func TestPickDeviceNoMatch(t *testing.T) {
	if _, err := pickDevice(devices("A", "B"), 0, "zzz"); err == nil {
		t.Fatal("pickDevice matched a nonexistent name")
	}
}

func TestPickDeviceIndexOutOfRange(t *testing.T) {
	if _, err := pickDevice(devices("A"), 3, ""); err == nil {
		t.Fatal("pickDevice accepted an out-of-range index")
	}
}

func TestPickDeviceEmptyList(t *testing.T) {
	if _, err := pickDevice(nil, 0, ""); err == nil {
		t.Fatal("pickDevice accepted an empty device list")
	}
}
