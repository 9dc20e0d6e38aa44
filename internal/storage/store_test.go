package storage

import (
	"encoding/csv"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/quintel/comptune/internal/blocks"
	"github.com/quintel/comptune/internal/compensator"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s := New(t.TempDir())
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestPresetSaveLoad(t *testing.T) {
	s := newStore(t)
	reg := blocks.Builtin()
	m := compensator.DefaultModel(reg)

	if err := s.SavePreset("tuned.json", m.Preset()); err != nil {
		t.Fatal(err)
	}
	p, err := s.LoadPreset("tuned.json")
	if err != nil {
		t.Fatal(err)
	}
	if p.Version != compensator.PresetVersion || len(p.Blocks) != 5 {
		t.Errorf("unexpected preset: version=%d blocks=%d", p.Version, len(p.Blocks))
	}
	if _, err := compensator.FromPreset(reg, p); err != nil {
		t.Errorf("loaded preset does not rebuild: %v", err)
	}
}

func TestLoadPresetMissing(t *testing.T) {
	s := newStore(t)
	_, err := s.LoadPreset("absent.json")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestLoadPresetAbsolutePath(t *testing.T) {
	s := newStore(t)
	other := filepath.Join(t.TempDir(), "elsewhere.json")
	m := compensator.New(blocks.Builtin())
	m.AddBlock("gain")
	if err := s.SavePreset(other, m.Preset()); err != nil {
		t.Fatal(err)
	}
	if _, err := s.LoadPreset(other); err != nil {
		t.Errorf("absolute path load failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(s.BaseDir(), "elsewhere.json")); err == nil {
		t.Error("absolute path leaked into base dir")
	}
}

func TestAppendSnapshotHeaderOnce(t *testing.T) {
	s := newStore(t)
	entry := SnapshotEntry{
		Timestamp: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Phase1Hz:  -12.5,
		Phase3Hz:  -48.2,
		Blocks:    "gain:{K=1}; sos:{fn=20, zeta=0.55, K=1}",
		Note:      "first pass",
	}
	if err := s.AppendSnapshot(entry); err != nil {
		t.Fatal(err)
	}
	entry.Note = "second pass"
	if err := s.AppendSnapshot(entry); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(filepath.Join(s.BaseDir(), SnapshotLogName))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if strings.Join(rows[0], ",") != "timestamp,phase_1Hz_deg,phase_3Hz_deg,blocks,note" {
		t.Errorf("unexpected header: %v", rows[0])
	}
	if rows[1][0] != "2025-06-01T12:00:00Z" {
		t.Errorf("timestamp not ISO-8601: %v", rows[1][0])
	}
	if rows[2][4] != "second pass" {
		t.Errorf("second row note = %q", rows[2][4])
	}
}
