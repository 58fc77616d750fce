package rompack

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPatch(t *testing.T) {
	rom := make([]byte, 0x100)
	table := []int{
		3, 0x10, 0x02, 0xAA, 0xBB, 0xCC,
		1, 0x00, 0x20, 0xEE,
		0,
	}
	Patch(rom, table, 0)
	if rom[0x12] != 0xAA || rom[0x13] != 0xBB || rom[0x14] != 0xCC {
		t.Fatalf("first patch got % X", rom[0x12:0x15])
	}
	if rom[0x20] != 0xEE {
		t.Fatalf("second patch got %02X", rom[0x20])
	}
}

func TestPatch_Bias(t *testing.T) {
	rom := make([]byte, 0x4000)
	// CPU addresses in the monitor space land in array space through the bias
	table := []int{2, 0xE000, 0x10, 0x12, 0x34, 0}
	Patch(rom, table, -0xE000)
	if rom[0x10] != 0x12 || rom[0x11] != 0x34 {
		t.Fatalf("biased patch got % X", rom[0x10:0x12])
	}
}

func TestPatch_EmptyTable(t *testing.T) {
	rom := make([]byte, 16)
	Patch(rom, nil, 0)
	Patch(rom, []int{0}, 0)
}

func TestValidate(t *testing.T) {
	s := &Set{Basic: make([]byte, BasicSize)}
	if err := s.Validate(); err == nil {
		t.Fatalf("no monitor accepted")
	}
	s.To8Monitor = make([]byte, MonitorSize)
	if err := s.Validate(); err != nil {
		t.Fatalf("valid set rejected: %v", err)
	}
	s.Basic = s.Basic[:100]
	if err := s.Validate(); err == nil {
		t.Fatalf("short basic accepted")
	}
}

func TestMonitor_FlavorSelection(t *testing.T) {
	s := &Set{
		To8Monitor:       []byte{1},
		To8MonitorPatch:  []int{0},
		To8DMonitor:      []byte{2},
		To8DMonitorPatch: []int{0},
	}
	mon, _ := s.Monitor(false)
	if mon[0] != 1 {
		t.Fatalf("TO8 monitor got %d", mon[0])
	}
	mon, _ = s.Monitor(true)
	if mon[0] != 2 {
		t.Fatalf("TO8D monitor got %d", mon[0])
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "basic.rom"), make([]byte, BasicSize), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "to8moniteur.rom"), make([]byte, MonitorSize), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.To8Monitor == nil || s.To8DMonitor != nil {
		t.Fatalf("monitor presence wrong")
	}

	if _, err := Load(t.TempDir()); err == nil {
		t.Fatalf("empty dir accepted")
	}
}
