package report

import (
	"fmt"
	"os"
	"path/filepath"
)

// Storage defines the interface for persisting report files
type Storage interface {
	// Save saves a file and returns the path/filename
	Save(filename string, data []byte) (string, error)

	// Get retrieves a file by path
	Get(path string) ([]byte, error)
}

// LocalStorage implements the Storage interface using a local output directory
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a new LocalStorage instance
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	// Create directory if it doesn't exist
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	return &LocalStorage{
		basePath: basePath,
	}, nil
}

// Save saves a file to the output directory
func (l *LocalStorage) Save(filename string, data []byte) (string, error) {
	path := filepath.Join(l.basePath, filename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing file: %w", err)
	}
	return filename, nil
}

// Get retrieves a file from the output directory
func (l *LocalStorage) Get(path string) ([]byte, error) {
	fullPath := filepath.Join(l.basePath, path)
	data, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return data, nil
}
