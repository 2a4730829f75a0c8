package ops

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/hpungsan/tails/internal/errors"
)

// ExportSchemaVersion is written to the header of every export file.
const ExportSchemaVersion = "1.0"

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	Path string // optional, default: <exports dir>/<scope>-<timestamp>.jsonl
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	Path       string `json:"path"`
	Count      int    `json:"count"`
	ExportedAt int64  `json:"exported_at"`
}

// ExportHeader is the first line of a JSONL export file.
type ExportHeader struct {
	TailsExport   bool   `json:"_tails_export"`
	SchemaVersion string `json:"schema_version"`
	ExportedAt    int64  `json:"exported_at"`
	Scope         string `json:"scope"`
}

// Export writes the history to a JSONL file: a header line, then one clip
// per line, most recent first. The file is written to a temporary name and
// renamed into place so an existing export survives a failed write.
func (s *Session) Export(ctx context.Context, input ExportInput) (*ExportOutput, error) {
	s.mu.Lock()
	entries := s.store.Snapshot()
	cfg := s.cfg
	s.mu.Unlock()

	now := time.Now()
	exportedAt := now.Unix()
	exportsDir := s.exportsDir()

	exportPath := input.Path
	if exportPath == "" {
		if exportsDir == "" {
			return nil, errors.NewInvalidRequest("path is required")
		}
		name := fmt.Sprintf("%s-%s.jsonl", SanitizeForFilename(s.scope), now.Format("2006-01-02T150405"))
		exportPath = filepath.Join(exportsDir, name)
	}

	// Default paths are validated too since the scope is user input
	if err := ValidatePath(exportPath, PathCheckWrite, cfg, exportsDir); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(exportPath), 0700); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export directory: %w", err))
	}

	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := exportPath + "." + hex.EncodeToString(randBytes) + ".tmp"
	file, err := openBackup(tempPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export file: %w", err))
	}

	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	enc := json.NewEncoder(file)
	enc.SetEscapeHTML(false)
	header := ExportHeader{
		TailsExport:   true,
		SchemaVersion: ExportSchemaVersion,
		ExportedAt:    exportedAt,
		Scope:         s.scope,
	}
	if err := enc.Encode(header); err != nil {
		return nil, errors.NewInternal(err)
	}
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, errors.NewCancelled("export")
		}
		if err := enc.Encode(e); err != nil {
			return nil, errors.NewInternal(err)
		}
	}

	if err := file.Sync(); err != nil {
		return nil, errors.NewInternal(err)
	}
	// Close before rename (required on Windows)
	if err := file.Close(); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to close export file: %w", err))
	}
	file = nil

	// os.Rename would follow a symlink at the destination
	if isSymlink(exportPath) {
		return nil, errors.NewInternal(fmt.Errorf("export path is a symlink"))
	}
	if err := os.Rename(tempPath, exportPath); err != nil {
		if runtime.GOOS == "windows" {
			if _, statErr := os.Stat(exportPath); statErr == nil {
				return nil, errors.NewInvalidRequest("export destination already exists; choose a new path or delete the existing file")
			}
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to finalize export: %w", err))
	}

	success = true
	return &ExportOutput{
		Path:       exportPath,
		Count:      len(entries),
		ExportedAt: exportedAt,
	}, nil
}
