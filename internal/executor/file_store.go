package executor

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore persists the executor state as one JSON document. Writes go
// through a temp file and rename so a crash never leaves a torn state.
type FileStore struct {
	filePath string
}

// NewFileStore creates a file-backed store at the given path.
func NewFileStore(filePath string) *FileStore {
	if filePath == "" {
		filePath = "executor_state.json"
	}
	if dir := filepath.Dir(filePath); dir != "." {
		os.MkdirAll(dir, 0755)
	}
	return &FileStore{filePath: filePath}
}

// Load reads the persisted state. A missing file yields a fresh empty
// state, not an error.
func (f *FileStore) Load() (*State, error) {
	data, err := os.ReadFile(f.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &State{Positions: make(map[string]*Position)}, nil
		}
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse state file %s: %w", f.filePath, err)
	}
	if state.Positions == nil {
		state.Positions = make(map[string]*Position)
	}
	return &state, nil
}

// Save writes the state atomically.
func (f *FileStore) Save(state *State) error {
	if state == nil {
		return fmt.Errorf("cannot save nil state")
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	tempFile := f.filePath + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp state file: %w", err)
	}
	if err := os.Rename(tempFile, f.filePath); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	return nil
}
