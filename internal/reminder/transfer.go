package reminder

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ImportResult counts what an import did.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// isYAML picks the file format from the extension; anything that is not
// .yaml or .yml is JSON.
func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// Export writes every reminder to path and returns how many were written.
func (s *Service) Export(ctx context.Context, path string) (int, error) {
	records, err := s.storage.Load(ctx)
	if err != nil {
		return 0, err
	}
	if records == nil {
		records = []Record{}
	}

	var data []byte
	if isYAML(path) {
		data, err = yaml.Marshal(records)
	} else {
		data, err = json.MarshalIndent(records, "", "  ")
	}
	if err != nil {
		return 0, fmt.Errorf("failed to encode reminders: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return 0, fmt.Errorf("failed to write export file: %w", err)
	}

	s.logger.Info("reminders exported", zap.String("path", path), zap.Int("count", len(records)))
	return len(records), nil
}

// Import reads reminders from path. Records whose ID already exists are
// skipped unless overwrite is set. Every record is validated before any
// is stored; one invalid record fails the whole import.
func (s *Service) Import(ctx context.Context, path string, overwrite bool) (ImportResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ImportResult{}, fmt.Errorf("failed to read import file: %w", err)
	}

	var records []Record
	if isYAML(path) {
		err = yaml.Unmarshal(data, &records)
	} else {
		err = json.Unmarshal(data, &records)
	}
	if err != nil {
		return ImportResult{}, fmt.Errorf("failed to parse import file: %w", err)
	}

	now := s.clock.Now()
	var result ImportResult
	err = s.storage.Update(ctx, func(registry *Registry) error {
		result = ImportResult{}
		for _, rec := range records {
			stored, err := registry.Adopt(rec, overwrite, now)
			if err != nil {
				return err
			}
			if stored {
				result.Imported++
			} else {
				result.Skipped++
			}
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, err
	}

	s.logger.Info("reminders imported",
		zap.String("path", path),
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped))
	return result, nil
}
