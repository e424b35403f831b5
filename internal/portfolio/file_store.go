package portfolio

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore persists the registry as one JSON document with an atomic
// temp-file rename on write.
type FileStore struct {
	filePath string
}

// NewFileStore creates a file-backed registry store at the given path.
func NewFileStore(filePath string) *FileStore {
	if filePath == "" {
		filePath = "portfolio_config.json"
	}
	if dir := filepath.Dir(filePath); dir != "." {
		os.MkdirAll(dir, 0755)
	}
	return &FileStore{filePath: filePath}
}

func (f *FileStore) Load() (*registryState, error) {
	data, err := os.ReadFile(f.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &registryState{}, nil
		}
		return nil, fmt.Errorf("failed to read registry file: %w", err)
	}

	var state registryState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse registry file %s: %w", f.filePath, err)
	}
	return &state, nil
}

func (f *FileStore) Save(state *registryState) error {
	if state == nil {
		return fmt.Errorf("cannot save nil state")
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}

	tempFile := f.filePath + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp registry file: %w", err)
	}
	if err := os.Rename(tempFile, f.filePath); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to replace registry file: %w", err)
	}
	return nil
}
