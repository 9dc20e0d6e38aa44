// Package storage persists presets and the append-only tuning log under a
// base directory.
package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/quintel/comptune/internal/compensator"
)

// SnapshotLogName is the tuning log file inside the base directory.
const SnapshotLogName = "tuning_log.csv"

var snapshotHeader = []string{"timestamp", "phase_1Hz_deg", "phase_3Hz_deg", "blocks", "note"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// BaseDir returns the store's root directory.
func (s *Store) BaseDir() string { return s.baseDir }

// SavePreset writes a preset document as indented JSON. An absolute path is
// used as-is; a bare name lands in the base directory.
func (s *Store) SavePreset(path string, p compensator.Preset) error {
	data, err := compensator.EncodePreset(p)
	if err != nil {
		return err
	}
	return os.WriteFile(s.resolve(path), append(data, '\n'), 0644)
}

// LoadPreset reads and decodes a preset document.
func (s *Store) LoadPreset(path string) (compensator.Preset, error) {
	data, err := os.ReadFile(s.resolve(path))
	if err != nil {
		return compensator.Preset{}, err
	}
	return compensator.DecodePreset(data)
}

// SnapshotEntry is one tuning-log row.
type SnapshotEntry struct {
	Timestamp time.Time
	Phase1Hz  float64
	Phase3Hz  float64
	Blocks    string
	Note      string
}

// AppendSnapshot appends a row to the tuning log, writing the header first
// when the file does not exist yet.
func (s *Store) AppendSnapshot(e SnapshotEntry) error {
	path := filepath.Join(s.baseDir, SnapshotLogName)
	_, statErr := os.Stat(path)
	writeHeader := os.IsNotExist(statErr)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if writeHeader {
		if err := w.Write(snapshotHeader); err != nil {
			return err
		}
	}
	row := []string{
		e.Timestamp.Format(time.RFC3339),
		strconv.FormatFloat(e.Phase1Hz, 'f', 6, 64),
		strconv.FormatFloat(e.Phase3Hz, 'f', 6, 64),
		e.Blocks,
		e.Note,
	}
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("storage: flush snapshot log: %w", err)
	}
	return nil
}

func (s *Store) resolve(path string) string {
	if filepath.IsAbs(path) || filepath.Dir(path) != "." {
		return path
	}
	return filepath.Join(s.baseDir, path)
}
