// Package localstore persists the guest's snapshot as a single JSON file
package localstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"finance-sync-go/internal/models"

	"go.uber.org/zap"
)

// Load reads the guest snapshot at path. A missing file yields the empty
// default shape.
func Load(path string) (models.AppData, error) {
	body, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		zap.L().Debug("No guest data file, starting empty", zap.String("path", path))
		return models.EmptyAppData(), nil
	}
	if err != nil {
		return models.AppData{}, fmt.Errorf("failed to read guest data: %w", err)
	}

	var data models.AppData
	if err := json.Unmarshal(body, &data); err != nil {
		return models.AppData{}, fmt.Errorf("failed to parse guest data %s: %w", path, err)
	}
	return data.Normalize(), nil
}

// Save replaces the file at path with data. The write goes through a
// temporary file in the same directory so a crash never leaves a torn file.
func Save(path string, data models.AppData) error {
	body, err := json.MarshalIndent(data.Normalize(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode guest data: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create guest data dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write guest data: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write guest data: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace guest data: %w", err)
	}
	return nil
}
