package storage

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Engine bundles the storage state of one process: the block-size
// policy, the buffer pool and the data directories. It is passed
// explicitly to every component; there are no package-level singletons.
type Engine struct {
	bm      *BufferManager
	policy  Policy
	log     *slog.Logger
	dataDir string
	tempDir string
}

// NewEngine validates the policy, checks the data directory and
// creates the temp directory for block files. A missing data
// directory is a fatal startup failure.
func NewEngine(dataDir string, policy Policy, log *slog.Logger) (*Engine, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	info, err := os.Stat(dataDir)
	if err != nil {
		return nil, fmt.Errorf("data directory %s: %w", dataDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("data directory %s: not a directory", dataDir)
	}
	tempDir := filepath.Join(dataDir, "temp")
	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		return nil, fmt.Errorf("temp directory: %w", err)
	}
	return &Engine{
		bm:      NewBufferManager(tempDir, policy.BlockCount, log),
		policy:  policy,
		log:     log,
		dataDir: dataDir,
		tempDir: tempDir,
	}, nil
}

func (e *Engine) BufferManager() *BufferManager { return e.bm }
func (e *Engine) Policy() Policy                { return e.policy }
func (e *Engine) DataDir() string               { return e.dataDir }

// CSVPath is the permanent location of a relation's source file.
func (e *Engine) CSVPath(name string) string {
	return filepath.Join(e.dataDir, name+".csv")
}

// TempCSVPath is the spill location for derived relations.
func (e *Engine) TempCSVPath(name string) string {
	return filepath.Join(e.tempDir, name+".csv")
}

// ScriptPath locates a SOURCE script.
func (e *Engine) ScriptPath(name string) string {
	return filepath.Join(e.dataDir, name+".ra")
}

// Shutdown flushes every dirty resident page.
func (e *Engine) Shutdown() {
	e.bm.FlushAll()
}
