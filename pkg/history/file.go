package history

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileBackend appends runs to a JSON Lines file. One line per run,
// append-only, so partial writes from a crash never corrupt earlier
// records.
type FileBackend struct {
	path string
	mu   sync.Mutex
}

// NewFileBackend creates a file backend writing to path. The parent
// directory is created if needed.
func NewFileBackend(path string) (*FileBackend, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}
	return &FileBackend{path: path}, nil
}

// Append writes one run as a JSON line.
func (b *FileBackend) Append(ctx context.Context, run *Run) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}

	f, err := os.OpenFile(b.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open history file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to append run: %w", err)
	}
	return f.Sync()
}

// List reads recorded runs in file order (oldest first). Malformed
// lines are skipped rather than failing the whole listing.
func (b *FileBackend) List(ctx context.Context, limit int) ([]*Run, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	f, err := os.Open(b.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open history file: %w", err)
	}
	defer f.Close()

	var runs []*Run
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var run Run
		if err := json.Unmarshal(line, &run); err != nil {
			continue
		}
		runs = append(runs, &run)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}

	if limit > 0 && len(runs) > limit {
		runs = runs[len(runs)-limit:]
	}
	return runs, nil
}

// Name returns "file".
func (b *FileBackend) Name() string {
	return "file"
}

// Close is a no-op; the file is opened per operation.
func (b *FileBackend) Close() error {
	return nil
}
