package common

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

func CreateDirectoryIfNotExists(dirPath string, perm os.FileMode) error {
	if _, err := os.Stat(dirPath); os.IsNotExist(err) {
		return os.MkdirAll(dirPath, perm)
	}

	return nil
}

func LoadJson[TReturn any](path string) (*TReturn, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %v. error: %w", path, err)
	}

	defer f.Close()

	var value TReturn

	if err := json.NewDecoder(f).Decode(&value); err != nil {
		return nil, fmt.Errorf("failed to decode %v. error: %w", path, err)
	}

	return &value, nil
}

// SaveJson writes value as indented json, creating parent directories if needed.
func SaveJson(path string, value any, perm os.FileMode) error {
	if err := CreateDirectoryIfNotExists(filepath.Dir(path), 0770); err != nil {
		return fmt.Errorf("failed to create directory for %v. error: %w", path, err)
	}

	bytes, err := json.MarshalIndent(value, "", "\t")
	if err != nil {
		return fmt.Errorf("failed to marshal %v. error: %w", path, err)
	}

	return os.WriteFile(path, bytes, perm)
}
